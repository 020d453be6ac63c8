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
	"testing"

	"github.com/kraklabs/codecorpus/pkg/extract"
)

// TestDiscover verifies extension filtering, default exclusions, and the
// sorted deterministic ordering.
func TestDiscover(t *testing.T) {
	root := t.TempDir()
	for _, rel := range []string{
		"main.go",
		"sub/app.py",
		"web/index.js",
		"vendor/dep/dep.go",
		"node_modules/pkg/index.js",
		"util_test.go",
		"tests/fixture.py",
		"README.md",
		"Makefile",
	} {
		writeFile(t, root, rel, "// placeholder\n")
	}

	paths, err := Discover(root, extract.Languages(), DefaultExcludes())
	if err != nil {
		t.Fatalf("discover: %v", err)
	}

	want := []string{"main.go", "sub/app.py", "web/index.js"}
	if len(paths) != len(want) {
		t.Fatalf("paths = %v, want %v", paths, want)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("paths[%d] = %q, want %q", i, paths[i], want[i])
		}
	}
}

// TestDiscover_LanguageSubset verifies discovery honors the requested
// language list.
func TestDiscover_LanguageSubset(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.go", "package a\n")
	writeFile(t, root, "b.py", "x = 1\n")

	paths, err := Discover(root, []extract.Language{extract.LangPython}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 1 || paths[0] != "b.py" {
		t.Errorf("paths = %v, want [b.py]", paths)
	}
}

// TestDiscover_CustomExcludes verifies user globs are applied.
func TestDiscover_CustomExcludes(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "keep.go", "package a\n")
	writeFile(t, root, "generated/gen.go", "package gen\n")
	writeFile(t, root, "proto.pb.go", "package a\n")

	paths, err := Discover(root, extract.Languages(), []string{"**/generated/**", "**/*.pb.go"})
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 1 || paths[0] != "keep.go" {
		t.Errorf("paths = %v, want [keep.go]", paths)
	}
}

func TestToken(t *testing.T) {
	token := NewToken()

	if token.Requested() || token.Forced() {
		t.Error("fresh token must be unrequested")
	}
	if n := token.Request(); n != 1 {
		t.Errorf("first request count = %d, want 1", n)
	}
	if !token.Requested() || token.Forced() {
		t.Error("one request: requested but not forced")
	}
	if n := token.Request(); n != 2 {
		t.Errorf("second request count = %d, want 2", n)
	}
	if !token.Forced() {
		t.Error("two requests must read as forced")
	}
}
