package logging

import (
	"log/slog"
	"os"
	"strings"

	"github.com/stattrust/matchup-compiler/internal/pkg/config"
)

// Setup configures the global slog logger from config and tags every record
// with the service name. Returns the logger so callers can pass it around,
// though most code uses the slog default.
func Setup(cfg *config.LoggingConfig, serviceName string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler).With("service", serviceName)
	slog.SetDefault(logger)
	return logger
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
