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

package curate

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/kraklabs/codecorpus/pkg/batch"
	"github.com/kraklabs/codecorpus/pkg/dedup"
	"github.com/kraklabs/codecorpus/pkg/extract"
	"github.com/kraklabs/codecorpus/pkg/quality"
	"github.com/kraklabs/codecorpus/pkg/storage"
)

// Config holds everything a curation run needs beyond its backend.
type Config struct {
	// Root is the repository directory to curate.
	Root string

	// Languages limits discovery; empty means all supported languages.
	Languages []extract.Language

	// Excludes are doublestar globs matched against slash-separated
	// relative paths. Nil means DefaultExcludes.
	Excludes []string

	// BatchSize caps the accumulator; non-positive means
	// batch.DefaultCapacity.
	BatchSize int

	// Quality holds the scoring thresholds.
	Quality quality.Config

	// DedupMode selects the duplicate definition.
	DedupMode dedup.Mode

	// CachePath is the bbolt file for the persistent duplicate cache.
	// Empty disables persistence; the in-memory set still applies within
	// the run.
	CachePath string

	// FallbackDir receives batches when the backend fails past all
	// retries. Empty disables the fallback.
	FallbackDir string

	// FlushRetries is how many times a failed batch write is retried
	// before the fallback. Negative means 0.
	FlushRetries int

	// OnFile, when set, is invoked before each file is processed.
	// Used by the CLI for progress display.
	OnFile func(path string, index, total int)
}

// Pipeline wires discovery, extraction, scoring, deduplication, batching,
// and storage into one run loop.
type Pipeline struct {
	cfg       Config
	backend   storage.Backend
	parser    *extract.Parser
	extractor *extract.Extractor
	scorer    *quality.Scorer
	detector  *dedup.Detector
	acc       *batch.Accumulator
	logger    *slog.Logger
}

// New creates a Pipeline. A nil logger falls back to slog.Default().
func New(cfg Config, backend storage.Backend, logger *slog.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Root == "" {
		return nil, fmt.Errorf("curation root is required")
	}
	if backend == nil {
		return nil, fmt.Errorf("storage backend is required")
	}
	if len(cfg.Languages) == 0 {
		cfg.Languages = extract.Languages()
	}
	if cfg.Excludes == nil {
		cfg.Excludes = DefaultExcludes()
	}
	if cfg.FlushRetries < 0 {
		cfg.FlushRetries = 0
	}

	parser := extract.NewParser()
	detector, err := dedup.NewDetector(cfg.DedupMode, parser)
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		cfg:       cfg,
		backend:   backend,
		parser:    parser,
		extractor: extract.NewExtractor(),
		scorer:    quality.NewScorer(cfg.Quality, parser),
		detector:  detector,
		acc:       batch.NewAccumulator(cfg.BatchSize),
		logger:    logger,
	}, nil
}

// Detector exposes the duplicate detector, mainly for the status command
// and tests.
func (p *Pipeline) Detector() *dedup.Detector {
	return p.detector
}

// Run executes the full curation pass. It always returns stats, also on
// error; Status on the returned stats is terminal.
//
// Cancellation: the first request on token (or ctx expiry) stops the run
// after the file in flight, flushes the partial batch, and reports
// StatusCancelled with a nil error. A second request abandons the batch
// and returns ErrForced.
func (p *Pipeline) Run(ctx context.Context, token *Token) (*RunStats, error) {
	if token == nil {
		token = NewToken()
	}
	curMetrics.init()

	stats := &RunStats{Status: StatusRunning, StartTime: time.Now()}
	defer func() {
		stats.Duration = time.Since(stats.StartTime)
		curMetrics.runDuration.Observe(stats.Duration.Seconds())
	}()

	if err := p.backend.Connect(ctx); err != nil {
		stats.Status = StatusError
		return stats, fmt.Errorf("connect storage: %w", err)
	}

	p.loadCache()

	files, err := Discover(p.cfg.Root, p.cfg.Languages, p.cfg.Excludes)
	if err != nil {
		stats.Status = StatusError
		return stats, err
	}

	p.logger.Info("curate.run.start",
		"root", p.cfg.Root,
		"files", len(files),
		"dedup_mode", string(p.detector.Mode()),
	)

	// Per-file work, flushing, and cache saving must survive ctx expiry:
	// a context cancellation is a graceful stop, and a graceful stop
	// finishes the file in flight and keeps its accepted units. The loop
	// still watches the live ctx to stop before the next file; forced
	// termination goes through the token, checked per unit.
	detached := context.WithoutCancel(ctx)

	ctxNoted := false
	for i, rel := range files {
		if ctx.Err() != nil && !ctxNoted {
			ctxNoted = true
			token.Request()
		}
		if token.Forced() {
			stats.Status = StatusCancelled
			p.logger.Warn("curate.run.forced", "files_processed", stats.FilesProcessed)
			return stats, ErrForced
		}
		if token.Requested() {
			break
		}

		if p.cfg.OnFile != nil {
			p.cfg.OnFile(rel, i, len(files))
		}
		if err := p.processFile(detached, rel, stats, token); err != nil {
			if err == ErrForced {
				stats.Status = StatusCancelled
				return stats, ErrForced
			}
			// Storage exhaustion is the only non-forced error processFile
			// surfaces; everything per-file is logged and counted.
			stats.Status = StatusError
			p.saveCache()
			return stats, err
		}
	}

	// A ctx that expired during the last file still counts as a
	// cancellation request.
	if ctx.Err() != nil && !ctxNoted {
		ctxNoted = true
		token.Request()
	}

	if err := p.flush(detached, stats); err != nil {
		stats.Status = StatusError
		p.saveCache()
		return stats, err
	}
	p.saveCache()

	stats.Status = p.terminalStatus(stats, token, ctxNoted)
	p.logger.Info("curate.run.done",
		"status", string(stats.Status),
		"files_processed", stats.FilesProcessed,
		"files_failed", stats.FilesFailed,
		"units_extracted", stats.UnitsExtracted,
		"units_accepted", stats.UnitsAccepted,
		"quality_rejected", stats.QualityRejected,
		"duplicates_skipped", stats.DuplicatesSkipped,
		"batches_flushed", stats.BatchesFlushed,
	)
	return stats, nil
}

// processFile reads, parses, and filters one file. Read and parse
// failures are counted and swallowed; only forced cancellation and
// storage exhaustion propagate.
func (p *Pipeline) processFile(ctx context.Context, rel string, stats *RunStats, token *Token) error {
	start := time.Now()
	lang := extract.LanguageForPath(rel)

	source, err := os.ReadFile(filepath.Join(p.cfg.Root, rel))
	if err != nil {
		stats.FilesFailed++
		observeFile(time.Since(start), true)
		p.logger.Warn("curate.file.error", "path", rel, "error", err)
		return nil
	}

	tree, err := p.parser.Parse(ctx, source, lang)
	if err != nil {
		stats.FilesFailed++
		observeFile(time.Since(start), true)
		p.logger.Warn("curate.file.error", "path", rel, "error", err)
		return nil
	}
	defer tree.Close()

	units := p.extractor.Extract(tree, source, lang, rel)
	stats.UnitsExtracted += len(units)
	curMetrics.unitsExtracted.Add(float64(len(units)))

	for _, unit := range units {
		if token.Forced() {
			return ErrForced
		}
		if err := p.processUnit(ctx, unit, stats); err != nil {
			return err
		}
	}

	stats.FilesProcessed++
	observeFile(time.Since(start), false)
	return nil
}

// processUnit runs one unit through quality, dedup, and batching.
func (p *Pipeline) processUnit(ctx context.Context, unit extract.CodeUnit, stats *RunStats) error {
	// Unnamed and empty-bodied units are extracted for accurate counts
	// but never enter the corpus.
	if unit.Name == "" || unit.Body == "" {
		stats.QualityRejected++
		curMetrics.qualityRejected.Inc()
		return nil
	}

	verdict := p.scorer.Score(ctx, unit.Text(), unit.Language)
	if !verdict.Accepted {
		stats.QualityRejected++
		curMetrics.qualityRejected.Inc()
		p.logger.Debug("curate.unit.rejected",
			"path", unit.Location.Path,
			"name", unit.Name,
			"score", verdict.Score,
			"reasons", verdict.Reasons,
		)
		return nil
	}

	dup, err := p.detector.CheckAndAdd(ctx, unit)
	if err != nil {
		// A unit that cannot be hashed cannot be safely admitted.
		stats.QualityRejected++
		curMetrics.qualityRejected.Inc()
		p.logger.Warn("curate.dedup.error", "path", unit.Location.Path, "name", unit.Name, "error", err)
		return nil
	}
	if dup {
		stats.DuplicatesSkipped++
		curMetrics.duplicatesSkipped.Inc()
		p.logger.Debug("curate.dup.skip", "path", unit.Location.Path, "name", unit.Name)
		return nil
	}

	stats.UnitsAccepted++
	curMetrics.unitsAccepted.Inc()

	if p.acc.Append(unit) {
		return p.flush(context.WithoutCancel(ctx), stats)
	}
	return nil
}

// flush drains the accumulator through the backend with retries, then the
// fallback directory. Returns an error only when every avenue failed; the
// orchestrator escalates that to a run-level error.
func (p *Pipeline) flush(ctx context.Context, stats *RunStats) error {
	if p.acc.Len() == 0 {
		return nil
	}
	start := time.Now()

	var lastErr error
	for attempt := 0; attempt <= p.cfg.FlushRetries; attempt++ {
		if attempt > 0 {
			curMetrics.flushRetries.Inc()
			p.logger.Warn("curate.flush.retry", "attempt", attempt, "error", lastErr)
		}
		key, err := p.acc.Flush(ctx, p.backend)
		if err == nil {
			stats.BatchesFlushed++
			observeFlush(time.Since(start))
			p.logger.Info("curate.flush.ok", "key", key)
			return nil
		}
		lastErr = err
	}

	if p.cfg.FallbackDir != "" {
		fallback := storage.NewLocalBackend(p.cfg.FallbackDir)
		if err := fallback.Connect(ctx); err == nil {
			if key, err := p.acc.Flush(ctx, fallback); err == nil {
				stats.BatchesFlushed++
				curMetrics.flushFallbacks.Inc()
				observeFlush(time.Since(start))
				p.logger.Warn("curate.flush.fallback", "key", key, "dir", p.cfg.FallbackDir, "error", lastErr)
				return nil
			}
		}
	}

	return fmt.Errorf("storage exhausted after %d retries: %w", p.cfg.FlushRetries, lastErr)
}

// loadCache merges the persistent duplicate cache when configured. A
// corrupt cache costs duplicate suppression, not the run.
func (p *Pipeline) loadCache() {
	if p.cfg.CachePath == "" {
		return
	}
	loaded, err := p.detector.LoadCache(p.cfg.CachePath)
	if err != nil {
		p.logger.Warn("curate.cache.load_error", "path", p.cfg.CachePath, "error", err)
		return
	}
	p.logger.Info("curate.cache.loaded", "path", p.cfg.CachePath, "records", loaded)
}

// saveCache persists the seen set when configured. Runs that end in
// forced termination never get here.
func (p *Pipeline) saveCache() {
	if p.cfg.CachePath == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(p.cfg.CachePath), 0755); err != nil {
		p.logger.Warn("curate.cache.save_error", "path", p.cfg.CachePath, "error", err)
		return
	}
	if err := p.detector.SaveCache(p.cfg.CachePath); err != nil {
		p.logger.Warn("curate.cache.save_error", "path", p.cfg.CachePath, "error", err)
	}
}

// terminalStatus picks the final status from what happened.
func (p *Pipeline) terminalStatus(stats *RunStats, token *Token, ctxCancelled bool) Status {
	switch {
	case token.Requested() || ctxCancelled:
		return StatusCancelled
	case stats.FilesFailed > 0 && stats.FilesProcessed == 0:
		return StatusError
	case stats.FilesFailed > 0:
		return StatusPartial
	default:
		return StatusSuccess
	}
}
