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
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	cerrors "github.com/kraklabs/codecorpus/internal/errors"
	"github.com/kraklabs/codecorpus/internal/ui"
)

// runReset executes the 'reset' CLI command, deleting all curation output.
//
// It removes the batch output directory, the fallback directory, and the
// duplicate cache. The configuration file is kept.
//
// Flags:
//   - --yes: Confirm the reset (required)
//
// Example:
//
//	codecorpus reset --yes
func runReset(args []string, configPath string) {
	fs := flag.NewFlagSet("reset", flag.ExitOnError)
	confirm := fs.Bool("yes", false, "Confirm the reset (required)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: codecorpus reset [options]

Deletes all curated batches and the duplicate cache, keeping the
project configuration. Useful before a clean re-curation.

WARNING: This operation is destructive and cannot be undone!

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if !*confirm {
		cerrors.FatalError(cerrors.NewInputError(
			"Reset requires confirmation",
			"This deletes all curated batches and the duplicate cache",
			"Pass --yes to confirm",
		), false)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		cerrors.FatalError(err, false)
	}

	cwd, err := os.Getwd()
	if err != nil {
		cerrors.FatalError(cerrors.NewInternalError(
			"Cannot determine current directory", err.Error(), "", err), false)
	}

	targets := []string{
		resolvePath(cwd, cfg.Curation.OutputDir),
		CachePath(cwd),
	}
	if cfg.Curation.FallbackDir != "" {
		targets = append(targets, resolvePath(cwd, cfg.Curation.FallbackDir))
	}

	deleted := 0
	for _, target := range targets {
		if _, err := os.Stat(target); os.IsNotExist(err) {
			continue
		}
		fmt.Printf("Deleting %s\n", ui.DimText(target))
		if err := os.RemoveAll(target); err != nil {
			cerrors.FatalError(cerrors.NewStorageError(
				"Cannot delete curation output",
				err.Error(),
				fmt.Sprintf("Check permissions on %s", target),
				err,
			), false)
		}
		deleted++
	}

	if deleted == 0 {
		fmt.Printf("Nothing to reset for project %s\n", cfg.ProjectID)
		return
	}

	ui.Successf("Reset complete for project %s", cfg.ProjectID)
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  codecorpus curate    Re-curate the repository")
}
