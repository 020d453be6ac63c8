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
	"fmt"
	"os"
	"time"

	flag "github.com/spf13/pflag"

	cerrors "github.com/kraklabs/codecorpus/internal/errors"
	"github.com/kraklabs/codecorpus/internal/output"
	"github.com/kraklabs/codecorpus/internal/ui"
	"github.com/kraklabs/codecorpus/pkg/dedup"
	"github.com/kraklabs/codecorpus/pkg/storage"
)

// StatusResult represents the project status for JSON output.
type StatusResult struct {
	ProjectID    string    `json:"project_id"`
	OutputDir    string    `json:"output_dir"`
	BatchCount   int       `json:"batch_count"`
	BatchKeys    []string  `json:"batch_keys,omitempty"`
	CachePath    string    `json:"cache_path,omitempty"`
	CacheRecords int       `json:"cache_records"`
	Error        string    `json:"error,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// runStatus executes the 'status' CLI command, displaying curation output
// statistics.
//
// It lists the batch files flushed to the output directory and the size of
// the persistent duplicate cache. This helps users verify that curation
// completed and understand how much of the corpus has been collected.
//
// Flags:
//   - --json: Output results as JSON (default: false)
//
// Examples:
//
//	codecorpus status           Display formatted status
//	codecorpus status --json    Output as JSON for programmatic use
func runStatus(args []string, configPath string) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	jsonOutput := fs.Bool("json", false, "Output as JSON")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: codecorpus status [options]

Shows flushed batches and duplicate cache size.

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		cerrors.FatalError(err, *jsonOutput)
	}

	cwd, err := os.Getwd()
	if err != nil {
		cerrors.FatalError(cerrors.NewInternalError(
			"Cannot determine current directory", err.Error(), "", err), *jsonOutput)
	}

	outputDir := resolvePath(cwd, cfg.Curation.OutputDir)
	result := &StatusResult{
		ProjectID: cfg.ProjectID,
		OutputDir: outputDir,
		Timestamp: time.Now(),
	}

	ctx := context.Background()
	backend := storage.NewLocalBackend(outputDir)
	if err := backend.Connect(ctx); err != nil {
		result.Error = fmt.Sprintf("Cannot open output directory: %v", err)
	} else {
		keys, err := backend.ListKeys(ctx, "")
		if err != nil {
			result.Error = fmt.Sprintf("Cannot list batches: %v", err)
		} else {
			result.BatchKeys = keys
			result.BatchCount = len(keys)
		}
		_ = backend.Close()
	}

	// Cache size. A missing cache file reads as zero records, a corrupt
	// one is reported but does not fail the command.
	cachePath := CachePath(cwd)
	if _, err := os.Stat(cachePath); err == nil {
		result.CachePath = cachePath
		detector, err := dedup.NewDetector(dedup.ModeContent, nil)
		if err == nil {
			records, err := detector.LoadCache(cachePath)
			if err != nil {
				result.Error = fmt.Sprintf("Cannot read duplicate cache: %v", err)
			} else {
				result.CacheRecords = records
			}
		}
	}

	if *jsonOutput {
		if err := output.JSON(result); err != nil {
			cerrors.FatalError(err, true)
		}
		return
	}
	printStatus(result)
}

// printStatus prints the status result as formatted text to stdout.
func printStatus(result *StatusResult) {
	ui.Header("CodeCorpus Project Status")
	fmt.Printf("%s %s\n", ui.Label("Project ID:"), result.ProjectID)
	fmt.Printf("%s %s\n", ui.Label("Output Dir:"), ui.DimText(result.OutputDir))
	fmt.Println()

	ui.SubHeader("Batches:")
	if result.BatchCount == 0 {
		fmt.Println("  (none)")
	}
	for _, key := range result.BatchKeys {
		fmt.Printf("  %s\n", key)
	}
	fmt.Printf("\n%s %s\n", ui.Label("Batch count:"), ui.CountText(result.BatchCount))
	fmt.Printf("%s %s\n", ui.Label("Cache records:"), ui.CountText(result.CacheRecords))

	if result.Error != "" {
		fmt.Println()
		ui.Warning(result.Error)
	}
}
