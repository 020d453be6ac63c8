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

package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kraklabs/codecorpus/pkg/extract"
)

// LocalBackend stores batches as JSON files in a directory. Each key maps
// to one file; writes go through a temp file plus rename so readers never
// see a half-written batch.
type LocalBackend struct {
	dir string
}

// NewLocalBackend creates a backend rooted at dir. The directory is
// created on Connect, not here.
func NewLocalBackend(dir string) *LocalBackend {
	return &LocalBackend{dir: dir}
}

// Dir returns the backend's root directory.
func (b *LocalBackend) Dir() string {
	return b.dir
}

// Connect creates the output directory if needed.
func (b *LocalBackend) Connect(ctx context.Context) error {
	if err := os.MkdirAll(b.dir, 0755); err != nil {
		return fmt.Errorf("create output dir %s: %w", b.dir, err)
	}
	return nil
}

// WriteBatch writes the units as an indented JSON array under key.
func (b *LocalBackend) WriteBatch(ctx context.Context, key string, units []extract.CodeUnit) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.Contains(key, string(os.PathSeparator)) || strings.Contains(key, "/") {
		return fmt.Errorf("batch key %q must not contain path separators", key)
	}

	data, err := json.MarshalIndent(units, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal batch %s: %w", key, err)
	}

	path := filepath.Join(b.dir, key)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("write batch %s: %w", key, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("commit batch %s: %w", key, err)
	}
	return nil
}

// ReadBatch loads a previously written batch.
func (b *LocalBackend) ReadBatch(ctx context.Context, key string) ([]extract.CodeUnit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(b.dir, key))
	if err != nil {
		return nil, fmt.Errorf("read batch %s: %w", key, err)
	}

	var units []extract.CodeUnit
	if err := json.Unmarshal(data, &units); err != nil {
		return nil, fmt.Errorf("parse batch %s: %w", key, err)
	}
	return units, nil
}

// ListKeys returns the sorted batch keys with the given prefix. Temp files
// from interrupted writes are not listed.
func (b *LocalBackend) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(b.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}

	var keys []string
	for _, e := range entries {
		if e.IsDir() || strings.HasSuffix(e.Name(), ".tmp") {
			continue
		}
		if strings.HasPrefix(e.Name(), prefix) {
			keys = append(keys, e.Name())
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Close is a no-op for the filesystem backend.
func (b *LocalBackend) Close() error {
	return nil
}
