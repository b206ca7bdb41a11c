package ingest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/dmorey/pagechat/internal/chat"
	"github.com/dmorey/pagechat/internal/config"
	"github.com/dmorey/pagechat/internal/pager"
	"github.com/dmorey/pagechat/internal/render"
)

type nopTransport struct{}

func (nopTransport) Stream(ctx context.Context, req chat.Request) (io.ReadCloser, error) {
	return nil, errors.New("not used")
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestIngestor(t *testing.T) (*Ingestor, *chat.Session, *pager.Controller) {
	t.Helper()
	session := chat.NewSession(nopTransport{}, "test-model", testLogger())
	pages := &pager.Controller{}
	renderer := &render.PdftoppmRenderer{}
	t.Cleanup(renderer.Close)

	cfg := config.Config{JobTTL: time.Hour, MaxQueueSize: 4}
	in := NewIngestor(session, pages, renderer, cfg, testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	in.Start(ctx)
	t.Cleanup(in.Stop)
	return in, session, pages
}

func waitForJob(t *testing.T, in *Ingestor, id string) JobSnapshot {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		snap := in.GetJob(id).Snapshot()
		if snap.Status == StatusCompleted || snap.Status == StatusFailed {
			return snap
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job %s did not settle in time", id)
	return JobSnapshot{}
}

func TestIngestor_TextUploadInstallsDocument(t *testing.T) {
	in, session, pages := newTestIngestor(t)

	text := "First paragraph about revenue.\n\nSecond paragraph about costs."
	job, err := in.Submit("notes.txt", []byte(text))
	if err != nil {
		t.Fatalf("Submit() error: %v", err)
	}

	snap := waitForJob(t, in, job.ID)
	if snap.Status != StatusCompleted {
		t.Fatalf("expected completed job, got %q (error %q)", snap.Status, snap.Error)
	}
	if snap.PageCount < 1 {
		t.Errorf("expected at least one page, got %d", snap.PageCount)
	}

	doc := session.Document()
	if doc == nil {
		t.Fatal("expected document installed into session")
	}
	if doc.PageCount() != snap.PageCount {
		t.Errorf("session has %d pages, job reports %d", doc.PageCount(), snap.PageCount)
	}
	if pages.Current() != 1 || pages.Total() != snap.PageCount {
		t.Errorf("pager at %d/%d, want 1/%d", pages.Current(), pages.Total(), snap.PageCount)
	}
}

func TestIngestor_UnsupportedExtensionFailsJob(t *testing.T) {
	in, session, _ := newTestIngestor(t)

	job, err := in.Submit("archive.zip", []byte("PK"))
	if err != nil {
		t.Fatalf("Submit() error: %v", err)
	}

	snap := waitForJob(t, in, job.ID)
	if snap.Status != StatusFailed {
		t.Fatalf("expected failed job, got %q", snap.Status)
	}
	if snap.Error == "" {
		t.Error("expected error message on failed job")
	}
	if session.Document() != nil {
		t.Error("failed upload must not install a document")
	}
	msgs := session.Transcript()
	if len(msgs) != 1 || msgs[0].Content != chat.UploadFailedText {
		t.Errorf("expected upload failure notice in transcript, got %v", msgs)
	}
}

func TestIngestor_EmptyFileFailsJob(t *testing.T) {
	in, _, _ := newTestIngestor(t)

	job, err := in.Submit("empty.txt", []byte("   \n\n  "))
	if err != nil {
		t.Fatalf("Submit() error: %v", err)
	}

	snap := waitForJob(t, in, job.ID)
	if snap.Status != StatusFailed {
		t.Fatalf("expected failed job for empty file, got %q", snap.Status)
	}
}

func TestIngestor_SecondUploadReplacesFirst(t *testing.T) {
	in, session, pages := newTestIngestor(t)

	first, err := in.Submit("a.txt", []byte("Alpha document body."))
	if err != nil {
		t.Fatalf("Submit() error: %v", err)
	}
	waitForJob(t, in, first.ID)

	second, err := in.Submit("b.txt", []byte("Beta document body, entirely new."))
	if err != nil {
		t.Fatalf("Submit() error: %v", err)
	}
	snap := waitForJob(t, in, second.ID)
	if snap.Status != StatusCompleted {
		t.Fatalf("expected completed job, got %q (error %q)", snap.Status, snap.Error)
	}

	doc := session.Document()
	if doc == nil {
		t.Fatal("expected replacement document in session")
	}
	text, err := doc.Lookup(1)
	if err != nil {
		t.Fatalf("Lookup(1) error: %v", err)
	}
	if want := "Beta"; !strings.Contains(text, want) {
		t.Errorf("expected page text from second upload, got %q", text)
	}
	if pages.Total() != doc.PageCount() {
		t.Errorf("pager total %d, want %d", pages.Total(), doc.PageCount())
	}
}
