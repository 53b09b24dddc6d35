package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	pkgconfig "github.com/stattrust/matchup-compiler/internal/pkg/config"
	"github.com/stattrust/matchup-compiler/internal/pkg/logging"
	"github.com/stattrust/matchup-compiler/internal/pkg/notify"
	"github.com/stattrust/matchup-compiler/internal/pkg/storage"
	"github.com/stattrust/matchup-compiler/internal/server"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Compile service failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg := pkgconfig.Default()
	if *configPath != "" {
		loaded, err := pkgconfig.Load(*configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	logging.Setup(&cfg.Logging, "compile-service")

	var store storage.DocumentStorage
	if cfg.Postgres.DSN != "" {
		pg, err := storage.NewPostgresDocumentStorage(&cfg.Postgres)
		if err != nil {
			return fmt.Errorf("failed to initialize storage: %w", err)
		}
		defer pg.Close()
		store = pg
	} else {
		slog.Info("No postgres DSN configured, persistence disabled")
	}

	var notifier *notify.TelegramNotifier
	if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != 0 {
		notifier = notify.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.DegradedSections)
		if notifier != nil {
			defer notifier.Stop()
			slog.Info("Telegram alerting enabled", "threshold", cfg.Telegram.DegradedSections)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg.Server, cfg.Compiler, store, notifier)
	srv.Run(ctx, server.AddrFor(cfg.Server.Port))

	<-ctx.Done()
	slog.Info("Shutting down")
	return nil
}
