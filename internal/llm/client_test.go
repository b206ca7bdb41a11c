package llm

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmorey/pagechat/internal/chat"
)

func TestClient_StreamSendsAuthAndPayload(t *testing.T) {
	var gotAuth, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "text/event-stream")
		io.WriteString(w, "data: [DONE]\n")
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret-key", NewStats(time.Hour))
	body, err := c.Stream(context.Background(), chat.Request{
		Model:  "test-model",
		Stream: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	io.ReadAll(body)
	body.Close()

	if gotAuth != "Bearer secret-key" {
		t.Errorf("expected bearer auth, got %q", gotAuth)
	}
	if gotPath != "/v1/chat/completions" {
		t.Errorf("expected completions path, got %q", gotPath)
	}
}

func TestClient_NonOKStatusIsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", NewStats(time.Hour))
	_, err := c.Stream(context.Background(), chat.Request{Model: "m", Stream: true})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("expected status 429, got %d", apiErr.StatusCode)
	}
}

func TestClient_StreamRecordsStats(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "data: [DONE]\n")
	}))
	defer srv.Close()

	stats := NewStats(time.Hour)
	c := NewClient(srv.URL, "k", stats)
	body, err := c.Stream(context.Background(), chat.Request{Model: "m", Stream: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	io.ReadAll(body)
	body.Close()
	body.Close() // double close must not double-count

	snap := stats.Snapshot()
	if snap.StreamsStarted != 1 || snap.StreamsFinished != 1 {
		t.Errorf("expected 1 started/finished, got %+v", snap)
	}
	if snap.BytesStreamed != int64(len("data: [DONE]\n")) {
		t.Errorf("expected %d bytes, got %d", len("data: [DONE]\n"), snap.BytesStreamed)
	}
}

func TestClient_CancelledContextFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "data: [DONE]\n")
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", NewStats(time.Hour))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := c.Stream(ctx, chat.Request{Model: "m", Stream: true}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
