package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/stattrust/matchup-compiler/internal/compiler"
	pkgconfig "github.com/stattrust/matchup-compiler/internal/pkg/config"
	"github.com/stattrust/matchup-compiler/internal/pkg/logging"
	"github.com/stattrust/matchup-compiler/internal/pkg/models"
)

const usage = `Usage: compile [flags] <input.json> <output.json> <HOME_ABBR> <AWAY_ABBR> [SEASON_YEAR]

Compiles a raw vendor matchup document into the canonical v1 schema.

Flags:
  -config path   optional YAML config file
`

func main() {
	if err := run(); err != nil {
		slog.Error("Compile failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	args := flag.Args()
	if len(args) < 4 || len(args) > 5 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	inputPath, outputPath, homeAbbr, awayAbbr := args[0], args[1], args[2], args[3]

	cfg := pkgconfig.Default()
	if *configPath != "" {
		loaded, err := pkgconfig.Load(*configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	logging.Setup(&cfg.Logging, "compile")

	seasonYear := cfg.Compiler.DefaultSeasonYear
	if len(args) == 5 {
		year, err := strconv.Atoi(args[4])
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid SEASON_YEAR %q\n%s", args[4], usage)
			os.Exit(2)
		}
		seasonYear = year
	}

	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	var root any
	if err := json.Unmarshal(data, &root); err != nil {
		return fmt.Errorf("failed to parse input JSON: %w", err)
	}

	tc := models.TeamContext{HomeAbbr: homeAbbr, AwayAbbr: awayAbbr, SeasonYear: seasonYear}
	compiled, diags, err := compiler.Convert(root, tc)
	if err != nil {
		return err
	}

	for _, d := range diags {
		slog.Warn("Section degraded", "section", d.Section, "reason", d.Message)
	}

	out, err := json.MarshalIndent(compiled, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize compiled document: %w", err)
	}
	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(outputPath, append(out, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	slog.Info("Compiled document written",
		"output", outputPath,
		"matchup", awayAbbr+" @ "+homeAbbr,
		"warnings", len(diags))
	return nil
}
