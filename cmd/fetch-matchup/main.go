package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/stattrust/matchup-compiler/internal/fetch"
	pkgconfig "github.com/stattrust/matchup-compiler/internal/pkg/config"
	"github.com/stattrust/matchup-compiler/internal/pkg/logging"
)

const usage = `Usage: fetch-matchup [flags] <url> <output.json>

Captures a raw vendor matchup document for later compilation.

Flags:
  -config path   optional YAML config file
`

func main() {
	if err := run(); err != nil {
		slog.Error("Fetch failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	args := flag.Args()
	if len(args) != 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	url, outputPath := args[0], args[1]

	cfg := pkgconfig.Default()
	if *configPath != "" {
		loaded, err := pkgconfig.Load(*configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	logging.Setup(&cfg.Logging, "fetch-matchup")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := fetch.NewClient(cfg.Fetch)
	raw, err := client.FetchDocument(ctx, url)
	if err != nil {
		return err
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, raw, "", "  "); err != nil {
		return fmt.Errorf("captured document is not valid JSON: %w", err)
	}
	pretty.WriteByte('\n')

	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(outputPath, pretty.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	slog.Info("Raw document captured", "url", url, "output", outputPath, "bytes", pretty.Len())
	return nil
}
