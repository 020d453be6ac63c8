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

// Package main implements the codecorpus CLI for curating training corpora
// from source repositories.
//
// Usage:
//
//	codecorpus init                  Create .codecorpus/project.yaml configuration
//	codecorpus curate                Curate the current repository
//	codecorpus status [--json]       Show batch and cache status
//	codecorpus reset --yes           Delete batches and the duplicate cache
package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"
)

// Version information (set via ldflags during build)
var (
	version = "dev"     // Version string
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// main is the entry point for the codecorpus CLI.
//
// It parses global flags and dispatches to command handlers.
//
// Global flags:
//   - --version: Display version information and exit
//   - --config: Path to .codecorpus/project.yaml configuration file
//
// Commands:
//   - init: Create .codecorpus/project.yaml configuration
//   - curate: Run the curation pipeline over the current repository
//   - status: Show flushed batch keys and duplicate cache size
//   - reset: Delete output batches and the duplicate cache (destructive!)
func main() {
	// Global flags
	var (
		showVersion = flag.Bool("version", false, "Show version and exit")
		configPath  = flag.String("config", "", "Path to .codecorpus/project.yaml (default: ./.codecorpus/project.yaml)")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `codecorpus - Code corpus curation

codecorpus extracts functions, methods, and classes from source
repositories, filters them for quality, drops duplicates, and writes
the survivors as JSON batches ready for training-data pipelines.

Usage:
  codecorpus <command> [options]

Commands:
  init          Create .codecorpus/project.yaml configuration
  curate        Curate the current repository
  status        Show batch and cache status
  reset         Delete batches and the duplicate cache (destructive!)

Global Options:
  --config      Path to .codecorpus/project.yaml
  --version     Show version and exit

Examples:
  codecorpus init                              Create configuration interactively
  codecorpus curate                            Curate with configured defaults
  codecorpus curate --languages go,python      Curate a language subset
  codecorpus curate --dedup-mode structure     Drop structural clones too
  codecorpus status --json                     Output status as JSON

Getting Started:
  1. Initialize configuration:  codecorpus init
  2. Curate your repository:    codecorpus curate
  3. Inspect the output:        codecorpus status

Data Storage:
  Batches are written to .codecorpus/batches/ in the repository,
  the duplicate cache to .codecorpus/cache.db.

For detailed command help: codecorpus <command> --help

`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("codecorpus version %s\n", version)
		fmt.Printf("commit: %s\n", commit)
		fmt.Printf("built: %s\n", date)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(1)
	}

	command := args[0]
	cmdArgs := args[1:]

	switch command {
	case "init":
		runInit(cmdArgs)
	case "curate":
		runCurate(cmdArgs, *configPath)
	case "status":
		runStatus(cmdArgs, *configPath)
	case "reset":
		runReset(cmdArgs, *configPath)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}
}
