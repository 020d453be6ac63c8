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
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/kraklabs/codecorpus/pkg/extract"
)

// DefaultExcludes are the glob patterns skipped when a project config does
// not override them. Paths are matched slash-separated, relative to the
// repository root.
func DefaultExcludes() []string {
	return []string{
		"**/.git/**",
		"**/.codecorpus/**",
		"**/vendor/**",
		"**/node_modules/**",
		"**/dist/**",
		"**/build/**",
		"**/target/**",
		"**/__pycache__/**",
		"**/*_test.go",
		"**/*.test.js",
		"**/*.test.ts",
		"**/test/**",
		"**/tests/**",
	}
}

// Discover walks root and returns the relative paths of all source files
// in the requested languages, excluding any path matching an exclusion
// glob. The result is sorted, so runs over the same tree are
// deterministic.
func Discover(root string, langs []extract.Language, excludes []string) ([]string, error) {
	want := make(map[extract.Language]bool, len(langs))
	for _, l := range langs {
		want[l] = true
	}

	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}

		if d.IsDir() {
			if excluded(rel+"/", excludes) {
				return filepath.SkipDir
			}
			return nil
		}

		if excluded(rel, excludes) {
			return nil
		}
		if lang := extract.LanguageForPath(rel); lang != "" && want[lang] {
			paths = append(paths, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discover source files: %w", err)
	}

	sort.Strings(paths)
	return paths, nil
}

// excluded reports whether rel matches any exclusion glob. Directory
// candidates arrive with a trailing slash so "**/vendor/**" prunes the
// vendor directory itself, not only files under it.
func excluded(rel string, excludes []string) bool {
	dir := strings.HasSuffix(rel, "/")
	probe := rel
	if dir {
		// Match the directory as if it had content, then strip for the
		// plain-path match.
		probe = rel + "x"
	}
	for _, pattern := range excludes {
		if ok, err := doublestar.Match(pattern, strings.TrimSuffix(rel, "/")); err == nil && ok {
			return true
		}
		if dir {
			if ok, err := doublestar.Match(pattern, probe); err == nil && ok {
				return true
			}
		}
	}
	return false
}
