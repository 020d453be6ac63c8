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
	"path/filepath"

	"gopkg.in/yaml.v3"

	cerrors "github.com/kraklabs/codecorpus/internal/errors"
	"github.com/kraklabs/codecorpus/pkg/dedup"
	"github.com/kraklabs/codecorpus/pkg/extract"
	"github.com/kraklabs/codecorpus/pkg/quality"
)

// configDirName is the per-repository directory holding configuration,
// batch output, and the duplicate cache.
const configDirName = ".codecorpus"

// CurationConfig holds the run-level settings for the curate command.
type CurationConfig struct {
	// BatchSize is the number of accepted units per batch file.
	BatchSize int `yaml:"batch_size"`

	// DedupMode is "content" or "structure".
	DedupMode string `yaml:"dedup_mode"`

	// OutputDir receives batch files, relative to the repository root
	// unless absolute.
	OutputDir string `yaml:"output_dir"`

	// FallbackDir receives batches when the output directory fails past
	// all retries.
	FallbackDir string `yaml:"fallback_dir"`

	// FlushRetries is how many times a failed batch write is retried.
	FlushRetries int `yaml:"flush_retries"`

	// Cache enables the persistent duplicate cache across runs.
	Cache bool `yaml:"cache"`
}

// Config is the .codecorpus/project.yaml configuration.
type Config struct {
	ProjectID string   `yaml:"project_id"`
	Languages []string `yaml:"languages"`

	// Exclude globs are added on top of the built-in exclusions
	// (vendor, node_modules, test paths, build artifacts).
	Exclude []string `yaml:"exclude,omitempty"`

	Curation CurationConfig `yaml:"curation"`
	Quality  quality.Config `yaml:"quality"`
}

// DefaultConfig returns the configuration written by 'codecorpus init'
// before any user customization.
func DefaultConfig(projectID string) *Config {
	langs := make([]string, 0, len(extract.Languages()))
	for _, l := range extract.Languages() {
		langs = append(langs, string(l))
	}

	return &Config{
		ProjectID: projectID,
		Languages: langs,
		Curation: CurationConfig{
			BatchSize:    100,
			DedupMode:    string(dedup.ModeContent),
			OutputDir:    filepath.Join(configDirName, "batches"),
			FallbackDir:  filepath.Join(configDirName, "fallback"),
			FlushRetries: 2,
			Cache:        true,
		},
		Quality: quality.DefaultConfig(),
	}
}

// ConfigDir returns the .codecorpus directory for a repository root.
func ConfigDir(root string) string {
	return filepath.Join(root, configDirName)
}

// ConfigPath returns the project.yaml path for a repository root.
func ConfigPath(root string) string {
	return filepath.Join(ConfigDir(root), "project.yaml")
}

// CachePath returns the duplicate cache file for a repository root.
func CachePath(root string) string {
	return filepath.Join(ConfigDir(root), "cache.db")
}

// LoadConfig reads and validates the project configuration. An empty path
// defaults to ./.codecorpus/project.yaml.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, cerrors.NewInternalError(
				"Cannot determine current directory",
				err.Error(),
				"",
				err,
			)
		}
		path = ConfigPath(cwd)
	}

	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from the repo root or --config
	if err != nil {
		if os.IsNotExist(err) {
			return nil, cerrors.NewNotFoundError(
				"No project configuration found",
				fmt.Sprintf("%s does not exist", path),
				"Run 'codecorpus init' to create one",
			)
		}
		return nil, cerrors.NewConfigError(
			"Cannot read project configuration",
			err.Error(),
			fmt.Sprintf("Check permissions on %s", path),
			err,
		)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, cerrors.NewConfigError(
			"Cannot parse project configuration",
			err.Error(),
			fmt.Sprintf("Fix the YAML in %s or run 'codecorpus init --force'", path),
			err,
		)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SaveConfig writes the configuration as YAML.
func SaveConfig(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal configuration: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write configuration: %w", err)
	}
	return nil
}

// Validate checks the fields a typo would most likely corrupt.
func (c *Config) Validate() error {
	if c.ProjectID == "" {
		return cerrors.NewConfigError(
			"Project configuration is missing project_id",
			"project_id must be a non-empty string",
			"Set project_id in .codecorpus/project.yaml",
			nil,
		)
	}
	if _, err := c.ParsedLanguages(); err != nil {
		return err
	}
	if _, err := dedup.ParseMode(c.Curation.DedupMode); err != nil {
		return cerrors.NewConfigError(
			"Invalid dedup_mode in project configuration",
			err.Error(),
			"Set curation.dedup_mode to 'content' or 'structure'",
			err,
		)
	}
	return nil
}

// ParsedLanguages maps the configured language names onto extract
// languages.
func (c *Config) ParsedLanguages() ([]extract.Language, error) {
	return parseLanguages(c.Languages)
}

// parseLanguages validates language names against the supported set.
func parseLanguages(names []string) ([]extract.Language, error) {
	supported := make(map[string]extract.Language, len(extract.Languages()))
	for _, l := range extract.Languages() {
		supported[string(l)] = l
	}

	var langs []extract.Language
	for _, name := range names {
		lang, ok := supported[name]
		if !ok {
			return nil, cerrors.NewInputError(
				fmt.Sprintf("Unsupported language %q", name),
				fmt.Sprintf("Supported languages: %v", extract.Languages()),
				"Use one of the supported language names",
			)
		}
		langs = append(langs, lang)
	}
	return langs, nil
}

// resolvePath anchors a possibly relative configured path at the
// repository root.
func resolvePath(root, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}
