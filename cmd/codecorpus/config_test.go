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
	"errors"
	"os"
	"path/filepath"
	"testing"

	cerrors "github.com/kraklabs/codecorpus/internal/errors"
	"github.com/kraklabs/codecorpus/pkg/curate"
	"github.com/kraklabs/codecorpus/pkg/dedup"
	"github.com/kraklabs/codecorpus/pkg/extract"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig("demo")
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
	if cfg.Curation.BatchSize != 100 {
		t.Errorf("BatchSize = %d, want 100", cfg.Curation.BatchSize)
	}
	if cfg.Curation.DedupMode != string(dedup.ModeContent) {
		t.Errorf("DedupMode = %q, want %q", cfg.Curation.DedupMode, dedup.ModeContent)
	}
	if !cfg.Curation.Cache {
		t.Error("cache must default to enabled")
	}
}

func TestSaveLoadConfigRoundTrip(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(ConfigDir(dir), 0750); err != nil {
		t.Fatal(err)
	}

	cfg := DefaultConfig("roundtrip")
	cfg.Languages = []string{"go", "python"}
	cfg.Exclude = []string{"**/generated/**"}
	cfg.Curation.BatchSize = 25

	path := ConfigPath(dir)
	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.ProjectID != "roundtrip" {
		t.Errorf("ProjectID = %q, want %q", loaded.ProjectID, "roundtrip")
	}
	if len(loaded.Languages) != 2 || loaded.Languages[0] != "go" {
		t.Errorf("Languages = %v, want [go python]", loaded.Languages)
	}
	if loaded.Curation.BatchSize != 25 {
		t.Errorf("BatchSize = %d, want 25", loaded.Curation.BatchSize)
	}
	if loaded.Quality.AcceptThreshold != cfg.Quality.AcceptThreshold {
		t.Errorf("AcceptThreshold = %v, want %v",
			loaded.Quality.AcceptThreshold, cfg.Quality.AcceptThreshold)
	}
}

func TestLoadConfigMissing(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected an error for a missing config")
	}
	var ue *cerrors.UserError
	if !errors.As(err, &ue) {
		t.Fatalf("error type = %T, want *UserError", err)
	}
	if ue.ExitCode != cerrors.ExitNotFound {
		t.Errorf("ExitCode = %d, want %d", ue.ExitCode, cerrors.ExitNotFound)
	}
}

func TestLoadConfigMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "project.yaml")
	if err := os.WriteFile(path, []byte("project_id: [unclosed"), 0600); err != nil {
		t.Fatal(err)
	}

	_, err := LoadConfig(path)
	var ue *cerrors.UserError
	if !errors.As(err, &ue) {
		t.Fatalf("error type = %T, want *UserError", err)
	}
	if ue.ExitCode != cerrors.ExitConfig {
		t.Errorf("ExitCode = %d, want %d", ue.ExitCode, cerrors.ExitConfig)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	t.Run("unknown language", func(t *testing.T) {
		cfg := DefaultConfig("demo")
		cfg.Languages = []string{"cobol"}
		if err := cfg.Validate(); err == nil {
			t.Error("expected a validation error for an unknown language")
		}
	})

	t.Run("unknown dedup mode", func(t *testing.T) {
		cfg := DefaultConfig("demo")
		cfg.Curation.DedupMode = "fuzzy"
		if err := cfg.Validate(); err == nil {
			t.Error("expected a validation error for an unknown dedup mode")
		}
	})

	t.Run("empty project id", func(t *testing.T) {
		cfg := DefaultConfig("")
		if err := cfg.Validate(); err == nil {
			t.Error("expected a validation error for an empty project id")
		}
	})
}

func TestBuildRunConfig(t *testing.T) {
	cfg := DefaultConfig("demo")
	root := t.TempDir()

	t.Run("defaults from config", func(t *testing.T) {
		runCfg, err := buildRunConfig(cfg, root, nil, 0, "", false)
		if err != nil {
			t.Fatal(err)
		}
		if runCfg.BatchSize != 100 {
			t.Errorf("BatchSize = %d, want 100", runCfg.BatchSize)
		}
		if runCfg.DedupMode != dedup.ModeContent {
			t.Errorf("DedupMode = %q, want content", runCfg.DedupMode)
		}
		if runCfg.CachePath == "" {
			t.Error("cache path must be set when caching is enabled")
		}
		if len(runCfg.Languages) != len(extract.Languages()) {
			t.Errorf("Languages = %v, want all supported", runCfg.Languages)
		}
	})

	t.Run("flag overrides win", func(t *testing.T) {
		runCfg, err := buildRunConfig(cfg, root, []string{"go"}, 7, "structure", true)
		if err != nil {
			t.Fatal(err)
		}
		if runCfg.BatchSize != 7 {
			t.Errorf("BatchSize = %d, want 7", runCfg.BatchSize)
		}
		if runCfg.DedupMode != dedup.ModeStructure {
			t.Errorf("DedupMode = %q, want structure", runCfg.DedupMode)
		}
		if runCfg.CachePath != "" {
			t.Error("--no-cache must clear the cache path")
		}
		if len(runCfg.Languages) != 1 || runCfg.Languages[0] != extract.LangGo {
			t.Errorf("Languages = %v, want [go]", runCfg.Languages)
		}
	})

	t.Run("invalid dedup mode", func(t *testing.T) {
		_, err := buildRunConfig(cfg, root, nil, 0, "fuzzy", false)
		var ue *cerrors.UserError
		if !errors.As(err, &ue) || ue.ExitCode != cerrors.ExitInput {
			t.Errorf("err = %v, want input UserError", err)
		}
	})

	t.Run("custom excludes appended", func(t *testing.T) {
		custom := DefaultConfig("demo")
		custom.Exclude = []string{"**/gen/**"}
		runCfg, err := buildRunConfig(custom, root, nil, 0, "", false)
		if err != nil {
			t.Fatal(err)
		}
		want := len(curate.DefaultExcludes()) + 1
		if len(runCfg.Excludes) != want {
			t.Errorf("Excludes = %d globs, want %d", len(runCfg.Excludes), want)
		}
	})
}

func TestExitForStatus(t *testing.T) {
	if got := exitForStatus(curate.StatusError); got != cerrors.ExitStorage {
		t.Errorf("error status exit = %d, want %d", got, cerrors.ExitStorage)
	}
	for _, s := range []curate.Status{curate.StatusSuccess, curate.StatusPartial, curate.StatusCancelled} {
		if got := exitForStatus(s); got != cerrors.ExitSuccess {
			t.Errorf("exitForStatus(%s) = %d, want 0", s, got)
		}
	}
}
