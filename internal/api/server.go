package api

import (
	"log/slog"
	"net/http"

	"github.com/dmorey/pagechat/internal/chat"
	"github.com/dmorey/pagechat/internal/config"
	"github.com/dmorey/pagechat/internal/ingest"
	"github.com/dmorey/pagechat/internal/llm"
	"github.com/dmorey/pagechat/internal/pager"
	"github.com/dmorey/pagechat/internal/render"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API server for pagechat.
type Server struct {
	router   chi.Router
	session  *chat.Session
	ingestor *ingest.Ingestor
	pages    *pager.Controller
	renderer render.Renderer
	stats    *llm.Stats
	log      *slog.Logger
	cfg      config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(session *chat.Session, ingestor *ingest.Ingestor, pages *pager.Controller, renderer render.Renderer, stats *llm.Stats, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		session:  session,
		ingestor: ingestor,
		pages:    pages,
		renderer: renderer,
		stats:    stats,
		log:      log,
		cfg:      cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints. Auth is disabled when no key is configured.
	r.Group(func(r chi.Router) {
		if s.cfg.PagechatAPIKey != "" {
			r.Use(AuthMiddleware(s.cfg.PagechatAPIKey, s.log))
		}

		r.Post("/api/upload", s.handleUpload)
		r.Get("/api/upload/{jobID}/status", s.handleUploadStatus)

		r.Post("/api/chat", s.handleChat)
		r.Post("/api/chat/cancel", s.handleChatCancel)
		r.Get("/api/transcript", s.handleTranscript)

		r.Get("/api/pages", s.handlePagerState)
		r.Post("/api/pages", s.handlePageNav)
		r.Get("/api/pages/{page}", s.handlePageText)
		r.Get("/api/pages/{page}/image", s.handlePageImage)

		r.Get("/api/stats/llm", s.handleLLMStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
