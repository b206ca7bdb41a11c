package ingest

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dmorey/pagechat/internal/chat"
	"github.com/dmorey/pagechat/internal/config"
	"github.com/dmorey/pagechat/internal/document"
	"github.com/dmorey/pagechat/internal/pager"
	"github.com/dmorey/pagechat/internal/parser"
	"github.com/dmorey/pagechat/internal/render"
)

// Ingestor runs uploads through parse and index phases, then swaps the
// resulting document into the chat session, pager and renderer together.
type Ingestor struct {
	jobs     *JobStore
	queue    chan *Job
	session  *chat.Session
	pages    *pager.Controller
	renderer *render.PdftoppmRenderer
	log      *slog.Logger
	cfg      config.Config

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewIngestor creates the upload pipeline.
func NewIngestor(session *chat.Session, pages *pager.Controller, renderer *render.PdftoppmRenderer, cfg config.Config, log *slog.Logger) *Ingestor {
	return &Ingestor{
		jobs:     NewJobStore(cfg.JobTTL),
		queue:    make(chan *Job, cfg.MaxQueueSize),
		session:  session,
		pages:    pages,
		renderer: renderer,
		log:      log,
		cfg:      cfg,
	}
}

// Start launches the worker goroutine.
func (in *Ingestor) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	in.cancel = cancel

	in.wg.Add(1)
	go func() {
		defer in.wg.Done()
		for {
			select {
			case <-workerCtx.Done():
				return
			case job, ok := <-in.queue:
				if !ok {
					return
				}
				in.process(workerCtx, job)
			}
		}
	}()

	// Start job store cleanup.
	in.wg.Add(1)
	go func() {
		defer in.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				in.jobs.Cleanup()
			}
		}
	}()
}

// Stop gracefully shuts down the pipeline.
func (in *Ingestor) Stop() {
	if in.cancel != nil {
		in.cancel()
	}
	close(in.queue)
	in.wg.Wait()
}

// Submit registers a new upload and queues it for processing.
func (in *Ingestor) Submit(filename string, data []byte) (*Job, error) {
	job := &Job{
		ID:        generateULID(),
		Status:    StatusQueued,
		Phase:     "queued",
		Filename:  filename,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	job.SetFileData(data)

	in.jobs.Put(job)
	select {
	case in.queue <- job:
		return job, nil
	default:
		job.Fail("queue full")
		return nil, fmt.Errorf("upload queue is full (%d)", cap(in.queue))
	}
}

// GetJob returns a job by ID, or nil if unknown or expired.
func (in *Ingestor) GetJob(id string) *Job {
	return in.jobs.Get(id)
}

func (in *Ingestor) process(ctx context.Context, job *Job) {
	log := in.log.With("job_id", job.ID, "filename", job.Filename)
	start := time.Now()

	job.SetStatus(StatusParsing, "parsing")
	p, err := parser.ForFile(job.Filename)
	if err != nil {
		log.Error("unsupported file", "error", err)
		in.fail(job, err.Error())
		return
	}
	if pp, ok := p.(*parser.PDFParser); ok {
		pp.FallbackPdftotext = in.cfg.PDFFallbackPdftotext
	}
	data := job.FileData()
	pageTexts, err := p.Parse(bytes.NewReader(data), job.Filename)
	if err != nil {
		log.Error("parse failed", "error", err)
		in.fail(job, fmt.Sprintf("parse: %v", err))
		return
	}

	job.SetStatus(StatusIndexing, "indexing")
	doc, err := document.Build(pageTexts)
	if err != nil {
		log.Error("index failed", "error", err)
		in.fail(job, fmt.Sprintf("index: %v", err))
		return
	}

	if err := in.install(doc, job.Filename, data); err != nil {
		log.Error("install failed", "error", err)
		in.fail(job, err.Error())
		return
	}

	job.SetPageCount(doc.PageCount())
	job.SetStatus(StatusCompleted, "done")
	// Drop raw bytes; the renderer keeps its own copy when it needs one.
	job.SetFileData(nil)
	log.Info("upload complete", "pages", doc.PageCount(), "duration", time.Since(start))
}

func (in *Ingestor) fail(job *Job, msg string) {
	job.Fail(msg)
	in.session.NoteUploadFailure()
}

// install swaps the new document into every collaborator. The chat session,
// pager and renderer always describe the same document afterwards.
func (in *Ingestor) install(doc *document.Document, filename string, data []byte) error {
	if strings.EqualFold(filepath.Ext(filename), ".pdf") {
		if err := in.renderer.SetDocument(data); err != nil {
			return fmt.Errorf("renderer: %w", err)
		}
	} else {
		in.renderer.Close()
	}
	in.session.SetDocument(doc)
	in.pages.Reset(doc.PageCount())
	return nil
}
