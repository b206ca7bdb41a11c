package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmorey/pagechat/internal/api"
	"github.com/dmorey/pagechat/internal/chat"
	"github.com/dmorey/pagechat/internal/config"
	"github.com/dmorey/pagechat/internal/ingest"
	"github.com/dmorey/pagechat/internal/llm"
	"github.com/dmorey/pagechat/internal/pager"
	"github.com/dmorey/pagechat/internal/render"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize the chat session and its collaborators.
	stats := llm.NewStats(cfg.StatsWindow)
	client := llm.NewClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, stats)
	session := chat.NewSession(client, cfg.OpenAIModel, log)
	pages := &pager.Controller{}
	renderer := &render.PdftoppmRenderer{}

	// Initialize the upload pipeline.
	ingestor := ingest.NewIngestor(session, pages, renderer, cfg, log)
	ingestor.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(session, ingestor, pages, renderer, stats, log, cfg)

	httpServer := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     srv,
		ReadTimeout: 30 * time.Second,
		// No WriteTimeout: chat responses stream for as long as a turn runs.
		IdleTimeout: 60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		session.Cancel()
		ingestor.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		client.Close()
		renderer.Close()
	}()

	log.Info("starting pagechat", "port", cfg.Port, "model", cfg.OpenAIModel)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
