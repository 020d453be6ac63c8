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
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	flag "github.com/spf13/pflag"
)

// initFlags holds parsed flags for the init command.
type initFlags struct {
	force, nonInteractive bool
	projectID, dedupMode  string
	languages             []string
	batchSize             int
	outputDir             string
}

// runInit executes the 'init' CLI command, creating a
// .codecorpus/project.yaml configuration file.
//
// It creates the configuration directory, generates a default
// configuration, and optionally prompts the user for customization in
// interactive mode.
//
// Flags:
//   - --force: Overwrite existing configuration (default: false)
//   - -y: Non-interactive mode, use all defaults (default: false)
//   - --project-id: Project identifier (default: directory name)
//   - --languages: Languages to curate (default: all supported)
//   - --batch-size: Units per batch file (default: 100)
//   - --dedup-mode: Duplicate definition, content or structure
//   - --output-dir: Directory for batch output
//
// Examples:
//
//	codecorpus init                     Interactive setup
//	codecorpus init -y                  Use all defaults
//	codecorpus init --languages go      Curate Go only
func runInit(args []string) {
	flags := parseInitFlags(args)

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot get current directory: %v\n", err)
		os.Exit(1)
	}

	configPath := ConfigPath(cwd)
	if _, err := os.Stat(configPath); err == nil && !flags.force {
		fmt.Fprintf(os.Stderr, "Error: %s already exists. Use --force to overwrite.\n", configPath)
		os.Exit(1)
	}

	cfg := createInitConfig(cwd, flags)

	if !flags.nonInteractive {
		runInteractiveConfig(bufio.NewReader(os.Stdin), cfg)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	saveInitConfig(cwd, configPath, cfg)
	printNextSteps()
}

func parseInitFlags(args []string) initFlags {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	var f initFlags
	fs.BoolVar(&f.force, "force", false, "Overwrite existing configuration")
	fs.BoolVarP(&f.nonInteractive, "yes", "y", false, "Non-interactive mode (use defaults)")
	fs.StringVar(&f.projectID, "project-id", "", "Project identifier (default: directory name)")
	fs.StringSliceVar(&f.languages, "languages", nil, "Languages to curate (default: all supported)")
	fs.IntVar(&f.batchSize, "batch-size", 0, "Units per batch file")
	fs.StringVar(&f.dedupMode, "dedup-mode", "", "Duplicate definition: content or structure")
	fs.StringVar(&f.outputDir, "output-dir", "", "Directory for batch output")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: codecorpus init [options]

Creates .codecorpus/project.yaml configuration file.

Examples:
  codecorpus init                     # Interactive setup
  codecorpus init -y                  # Use all defaults
  codecorpus init --languages go,python --batch-size 50

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	return f
}

func createInitConfig(cwd string, f initFlags) *Config {
	pid := f.projectID
	if pid == "" {
		pid = filepath.Base(cwd)
	}
	cfg := DefaultConfig(pid)
	if len(f.languages) > 0 {
		cfg.Languages = f.languages
	}
	if f.batchSize > 0 {
		cfg.Curation.BatchSize = f.batchSize
	}
	if f.dedupMode != "" {
		cfg.Curation.DedupMode = f.dedupMode
	}
	if f.outputDir != "" {
		cfg.Curation.OutputDir = f.outputDir
	}
	return cfg
}

func runInteractiveConfig(reader *bufio.Reader, cfg *Config) {
	fmt.Println("CodeCorpus Project Configuration")
	fmt.Println("================================")
	fmt.Println()

	cfg.ProjectID = prompt(reader, "Project ID", cfg.ProjectID)

	fmt.Println()
	fmt.Println("Languages: go, python, javascript, typescript, java")
	langInput := prompt(reader, "Languages (comma-separated)", strings.Join(cfg.Languages, ","))
	cfg.Languages = splitList(langInput)

	fmt.Println()
	fmt.Println("Dedup modes: content (whitespace-insensitive), structure (identifier-insensitive)")
	cfg.Curation.DedupMode = prompt(reader, "Dedup mode", cfg.Curation.DedupMode)

	batchInput := prompt(reader, "Batch size", fmt.Sprintf("%d", cfg.Curation.BatchSize))
	var batchSize int
	if _, err := fmt.Sscanf(batchInput, "%d", &batchSize); err == nil && batchSize > 0 {
		cfg.Curation.BatchSize = batchSize
	}

	fmt.Println()
}

func saveInitConfig(cwd, configPath string, cfg *Config) {
	dir := ConfigDir(cwd)
	if err := os.MkdirAll(dir, 0750); err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot create .codecorpus directory: %v\n", err)
		os.Exit(1)
	}
	if err := SaveConfig(cfg, configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot save configuration: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Created %s\n", configPath)
	addToGitignore(cwd)
}

func printNextSteps() {
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  1. Review and edit .codecorpus/project.yaml if needed")
	fmt.Println("  2. Run 'codecorpus curate' to curate your repository")
	fmt.Println("  3. Run 'codecorpus status' to inspect the output")
}

// prompt displays an interactive prompt and reads user input from stdin.
//
// If the user presses Enter without providing input, the defaultValue is returned.
// This is used during interactive configuration setup.
//
// Parameters:
//   - reader: bufio.Reader for reading from stdin
//   - label: Prompt label to display to the user
//   - defaultValue: Value to return if user presses Enter (shown in brackets)
//
// Returns the user's input or the default value if input is empty.
func prompt(reader *bufio.Reader, label, defaultValue string) string {
	if defaultValue != "" {
		fmt.Printf("%s [%s]: ", label, defaultValue)
	} else {
		fmt.Printf("%s: ", label)
	}

	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(input)

	if input == "" {
		return defaultValue
	}
	return input
}

// splitList splits a comma-separated answer into trimmed entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// addToGitignore adds .codecorpus/ to the project's .gitignore file if not
// already present.
//
// It safely appends the entry to .gitignore, avoiding duplicates. If
// .gitignore does not exist or cannot be modified, the function silently
// returns without error.
//
// Parameters:
//   - dir: Directory containing the .gitignore file
func addToGitignore(dir string) {
	gitignorePath := filepath.Join(dir, ".gitignore")

	// Check if .gitignore exists
	content, err := os.ReadFile(gitignorePath) //nolint:gosec // G304: gitignorePath built from repo dir
	if err != nil {
		if os.IsNotExist(err) {
			// No .gitignore, nothing to do
			return
		}
		return
	}

	// Check if .codecorpus/ is already in .gitignore
	lines := strings.Split(string(content), "\n")
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == ".codecorpus/" || line == ".codecorpus" || line == "/.codecorpus/" || line == "/.codecorpus" {
			return // Already present
		}
	}

	// Append .codecorpus/ to .gitignore
	f, err := os.OpenFile(gitignorePath, os.O_APPEND|os.O_WRONLY, 0600) //nolint:gosec // G304: gitignorePath built from repo dir
	if err != nil {
		return
	}
	defer func() { _ = f.Close() }()

	// Add newline if file doesn't end with one
	if len(content) > 0 && content[len(content)-1] != '\n' {
		_, _ = f.WriteString("\n")
	}

	_, _ = f.WriteString("\n# CodeCorpus output\n.codecorpus/\n")
	fmt.Println("Added .codecorpus/ to .gitignore")
}
