// Package server is the serving collaborator around the pure engine: it
// accepts vendor documents over HTTP, compiles them, persists the results
// when storage is configured and exposes health and metrics endpoints.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/stattrust/matchup-compiler/internal/pkg/config"
	"github.com/stattrust/matchup-compiler/internal/pkg/notify"
	"github.com/stattrust/matchup-compiler/internal/pkg/storage"
)

// Server wires the engine to its collaborators. Store and Notifier may be
// nil: persistence and alerting are optional, compilation is not.
type Server struct {
	cfg      config.ServerConfig
	defaults config.CompilerConfig
	store    storage.DocumentStorage
	notifier *notify.TelegramNotifier
}

func New(cfg config.ServerConfig, defaults config.CompilerConfig, store storage.DocumentStorage, notifier *notify.TelegramNotifier) *Server {
	return &Server{cfg: cfg, defaults: defaults, store: store, notifier: notifier}
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	// Health endpoints
	mux.HandleFunc("/ping", s.handlePing)
	mux.HandleFunc("/health", s.handleHealth)

	// Metrics endpoint
	mux.HandleFunc("/metrics", s.handleMetrics)

	// Compilation endpoint
	mux.HandleFunc("/compile", s.handleCompile)

	// Stored conversions
	mux.HandleFunc("/documents", s.handleDocuments)
	mux.HandleFunc("/document", s.handleDocument)

	return mux
}

// Run starts the HTTP server in the background and shuts it down when ctx is
// cancelled.
func (s *Server) Run(ctx context.Context, addr string) {
	if s.cfg.ReadHeaderTimeout <= 0 {
		slog.Error("read_header_timeout must be specified in config")
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: s.cfg.ReadHeaderTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	go func() {
		slog.Info("Compile server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Compile server error", "error", err)
		}
	}()
}

// AddrFor builds the listen address from a validated port.
func AddrFor(port int) string {
	if port <= 0 {
		slog.Error("port must be greater than 0")
		os.Exit(1)
	}
	return fmt.Sprintf(":%d", port)
}
