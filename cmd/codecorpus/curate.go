// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/schollz/progressbar/v3"
	flag "github.com/spf13/pflag"

	cerrors "github.com/kraklabs/codecorpus/internal/errors"
	"github.com/kraklabs/codecorpus/internal/output"
	"github.com/kraklabs/codecorpus/internal/ui"
	"github.com/kraklabs/codecorpus/pkg/curate"
	"github.com/kraklabs/codecorpus/pkg/dedup"
	"github.com/kraklabs/codecorpus/pkg/storage"
)

// timeRound keeps durations readable in the summary.
const timeRound = 10 * time.Millisecond

// runCurate executes the 'curate' CLI command, running the full curation
// pipeline over the current repository.
//
// It discovers source files, extracts code units with Tree-sitter, scores
// them for quality, drops duplicates, and writes accepted units as JSON
// batches under the configured output directory.
//
// Flags:
//   - --languages: Comma-separated language subset (default: configured languages)
//   - --batch-size: Units per batch file (default: configured batch size)
//   - --dedup-mode: Duplicate definition, content or structure
//   - --no-cache: Skip loading and saving the persistent duplicate cache
//   - --debug: Enable debug logging
//   - --metrics-addr: HTTP address for Prometheus metrics (default: disabled)
//   - --progress: Show a progress bar on stderr
//   - --json: Print the run summary as JSON
//   - --no-color: Disable colored output
//
// A single SIGINT stops the run after the file in flight and flushes the
// partial batch; a second SIGINT abandons the batch and exits immediately.
//
// Examples:
//
//	codecorpus curate                            Curate with configured defaults
//	codecorpus curate --languages go,python      Curate a language subset
//	codecorpus curate --metrics-addr :9090       Expose Prometheus metrics
func runCurate(args []string, configPath string) {
	fs := flag.NewFlagSet("curate", flag.ExitOnError)
	languages := fs.StringSlice("languages", nil, "Language subset (default: configured languages)")
	batchSize := fs.Int("batch-size", 0, "Units per batch file (default: configured batch size)")
	dedupMode := fs.String("dedup-mode", "", "Duplicate definition: content or structure")
	noCache := fs.Bool("no-cache", false, "Skip the persistent duplicate cache")
	debug := fs.Bool("debug", false, "Enable debug logging")
	metricsAddr := fs.String("metrics-addr", "", "HTTP listen address for Prometheus metrics (empty to disable)")
	progress := fs.Bool("progress", false, "Show a progress bar")
	jsonOutput := fs.Bool("json", false, "Print the run summary as JSON")
	noColor := fs.Bool("no-color", false, "Disable colored output")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: codecorpus curate [options]

Curates the current repository using configuration from
.codecorpus/project.yaml. Batches are written to the configured
output directory (default: .codecorpus/batches/).

Press Ctrl-C once to stop gracefully (the partial batch is kept),
twice to abort without flushing.

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	ui.InitColors(*noColor)

	cfg, err := LoadConfig(configPath)
	if err != nil {
		cerrors.FatalError(err, *jsonOutput)
	}

	// Setup logging
	logLevel := slog.LevelInfo
	if *debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Start Prometheus metrics endpoint (optional)
	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			srv := &http.Server{Addr: *metricsAddr, Handler: mux}
			logger.Info("metrics.http.start", "addr", *metricsAddr, "path", "/metrics")
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Warn("metrics.http.error", "err", err)
			}
		}()
	}

	cwd, err := os.Getwd()
	if err != nil {
		cerrors.FatalError(cerrors.NewInternalError(
			"Cannot determine current directory", err.Error(), "", err), *jsonOutput)
	}

	runCfg, err := buildRunConfig(cfg, cwd, *languages, *batchSize, *dedupMode, *noCache)
	if err != nil {
		cerrors.FatalError(err, *jsonOutput)
	}

	// Progress bar on stderr; created lazily once the file count is known.
	progCfg := NewProgressConfig(*jsonOutput, *noColor)
	var bar *progressbar.ProgressBar
	if *progress && progCfg.Enabled {
		runCfg.OnFile = func(path string, index, total int) {
			if bar == nil {
				bar = NewProgressBar(progCfg, int64(total), "curating")
			}
			_ = bar.Set(index)
		}
	}

	backend := storage.NewLocalBackend(resolvePath(cwd, cfg.Curation.OutputDir))

	pipeline, err := curate.New(runCfg, backend, logger)
	if err != nil {
		cerrors.FatalError(cerrors.NewInternalError(
			"Cannot assemble the curation pipeline", err.Error(), "", err), *jsonOutput)
	}

	// A first SIGINT requests a graceful stop, a second forces an abort.
	token := curate.NewToken()
	sigChan := make(chan os.Signal, 2)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		for sig := range sigChan {
			if token.Request() == 1 {
				logger.Info("curate.signal", "signal", sig.String())
				fmt.Fprintln(os.Stderr, "\nStopping after the current file (press Ctrl-C again to abort)...")
			} else {
				logger.Warn("curate.signal.forced", "signal", sig.String())
				return
			}
		}
	}()

	stats, err := pipeline.Run(context.Background(), token)
	if bar != nil {
		_ = bar.Finish()
	}
	signal.Stop(sigChan)

	if err != nil {
		if errors.Is(err, curate.ErrForced) {
			fmt.Fprintln(os.Stderr, "Aborted. The partial batch was discarded.")
			os.Exit(130)
		}
		cerrors.FatalError(cerrors.NewStorageError(
			"Curation run failed",
			err.Error(),
			"Check free space and permissions on the output directory",
			err,
		), *jsonOutput)
	}

	if *jsonOutput {
		if err := output.JSON(stats); err != nil {
			cerrors.FatalError(err, true)
		}
		os.Exit(exitForStatus(stats.Status))
	}

	printRunSummary(cfg, stats)
	os.Exit(exitForStatus(stats.Status))
}

// buildRunConfig merges the project configuration with command-line
// overrides into a pipeline config.
func buildRunConfig(cfg *Config, root string, languages []string, batchSize int, dedupMode string, noCache bool) (curate.Config, error) {
	langNames := cfg.Languages
	if len(languages) > 0 {
		langNames = languages
	}
	langs, err := parseLanguages(langNames)
	if err != nil {
		return curate.Config{}, err
	}

	modeName := cfg.Curation.DedupMode
	if dedupMode != "" {
		modeName = dedupMode
	}
	mode, err := dedup.ParseMode(modeName)
	if err != nil {
		return curate.Config{}, cerrors.NewInputError(
			"Invalid dedup mode",
			err.Error(),
			"Pass --dedup-mode content or --dedup-mode structure",
		)
	}

	if batchSize == 0 {
		batchSize = cfg.Curation.BatchSize
	}
	if batchSize < 0 {
		return curate.Config{}, cerrors.NewInputError(
			"Invalid batch size",
			"Batch size must be a positive integer",
			"Pass --batch-size with a value greater than zero",
		)
	}

	cachePath := ""
	if cfg.Curation.Cache && !noCache {
		cachePath = CachePath(root)
	}

	fallbackDir := ""
	if cfg.Curation.FallbackDir != "" {
		fallbackDir = resolvePath(root, cfg.Curation.FallbackDir)
	}

	return curate.Config{
		Root:         root,
		Languages:    langs,
		Excludes:     append(curate.DefaultExcludes(), cfg.Exclude...),
		BatchSize:    batchSize,
		Quality:      cfg.Quality,
		DedupMode:    mode,
		CachePath:    cachePath,
		FallbackDir:  fallbackDir,
		FlushRetries: cfg.Curation.FlushRetries,
	}, nil
}

// exitForStatus maps a terminal run status to a process exit code.
// Partial and cancelled runs still produced usable output, so they
// exit zero; only a run that produced nothing usable fails.
func exitForStatus(status curate.Status) int {
	if status == curate.StatusError {
		return cerrors.ExitStorage
	}
	return cerrors.ExitSuccess
}

// printRunSummary prints the curation result to stdout.
func printRunSummary(cfg *Config, stats *curate.RunStats) {
	fmt.Println()
	ui.Header("Curation Complete")
	fmt.Printf("%s %s\n", ui.Label("Project ID:"), cfg.ProjectID)
	fmt.Printf("%s %s\n", ui.Label("Status:"), string(stats.Status))
	fmt.Println()

	ui.SubHeader("Files:")
	fmt.Printf("  Processed:  %s\n", ui.CountText(stats.FilesProcessed))
	fmt.Printf("  Failed:     %s\n", ui.CountText(stats.FilesFailed))
	fmt.Println()

	ui.SubHeader("Units:")
	fmt.Printf("  Extracted:  %s\n", ui.CountText(stats.UnitsExtracted))
	fmt.Printf("  Accepted:   %s\n", ui.CountText(stats.UnitsAccepted))
	fmt.Printf("  Rejected:   %s\n", ui.CountText(stats.QualityRejected))
	fmt.Printf("  Duplicates: %s\n", ui.CountText(stats.DuplicatesSkipped))
	fmt.Println()

	fmt.Printf("%s %s\n", ui.Label("Batches flushed:"), ui.CountText(stats.BatchesFlushed))
	fmt.Printf("%s %s\n", ui.Label("Duration:"), stats.Duration.Round(timeRound))
	fmt.Println()
	fmt.Printf("Batches stored in: %s\n", ui.DimText(cfg.Curation.OutputDir))

	switch stats.Status {
	case curate.StatusSuccess:
		ui.Successf("Curated %d units from %d files", stats.UnitsAccepted, stats.FilesProcessed)
	case curate.StatusPartial:
		ui.Warningf("Completed with %d failed files", stats.FilesFailed)
	case curate.StatusCancelled:
		ui.Warning("Run cancelled; accepted units were flushed")
	case curate.StatusError:
		ui.Error("Run failed; see the log for details")
	}
}
