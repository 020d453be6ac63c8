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
	"os"
	"path/filepath"
	"testing"

	"github.com/kraklabs/codecorpus/pkg/extract"
)

func testUnits() []extract.CodeUnit {
	return []extract.CodeUnit{
		{
			Kind:      extract.KindFunction,
			Name:      "first",
			Signature: "func first() int",
			Body:      "{\n\treturn 1\n}",
			Language:  extract.LangGo,
			Location:  extract.Location{Path: "a.go", StartLine: 3, EndLine: 5},
		},
		{
			Kind:     extract.KindMethod,
			Name:     "second",
			Body:     "{\n\treturn 2\n}",
			Language: extract.LangGo,
			Location: extract.Location{Path: "b.go", StartLine: 10, EndLine: 12},
		},
	}
}

// TestLocalBackend_WriteReadRoundTrip verifies that a batch reads back
// with unit order and fields intact.
func TestLocalBackend_WriteReadRoundTrip(t *testing.T) {
	b := NewLocalBackend(filepath.Join(t.TempDir(), "batches"))
	ctx := context.Background()

	if err := b.Connect(ctx); err != nil {
		t.Fatalf("connect: %v", err)
	}

	units := testUnits()
	if err := b.WriteBatch(ctx, "units-go-20250101T120000-0001.json", units); err != nil {
		t.Fatalf("write batch: %v", err)
	}

	got, err := b.ReadBatch(ctx, "units-go-20250101T120000-0001.json")
	if err != nil {
		t.Fatalf("read batch: %v", err)
	}
	if len(got) != len(units) {
		t.Fatalf("round trip length = %d, want %d", len(got), len(units))
	}
	for i := range units {
		if got[i] != units[i] {
			t.Errorf("unit[%d] = %+v, want %+v", i, got[i], units[i])
		}
	}
}

// TestLocalBackend_ListKeys verifies sorting, prefix filtering, and that
// temp files from interrupted writes are invisible.
func TestLocalBackend_ListKeys(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "batches")
	b := NewLocalBackend(dir)
	ctx := context.Background()

	if err := b.Connect(ctx); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"units-go-b.json", "units-go-a.json", "units-python-c.json"} {
		if err := b.WriteBatch(ctx, key, testUnits()); err != nil {
			t.Fatalf("write %s: %v", key, err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "units-go-partial.json.tmp"), []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}

	keys, err := b.ListKeys(ctx, "units-go-")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"units-go-a.json", "units-go-b.json"}
	if len(keys) != len(want) {
		t.Fatalf("keys = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("keys[%d] = %q, want %q", i, keys[i], want[i])
		}
	}
}

// TestLocalBackend_ListKeysNoDir verifies that listing before any write is
// an empty result, not an error.
func TestLocalBackend_ListKeysNoDir(t *testing.T) {
	b := NewLocalBackend(filepath.Join(t.TempDir(), "never-created"))
	keys, err := b.ListKeys(context.Background(), "")
	if err != nil {
		t.Fatalf("list on missing dir: %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("keys = %v, want empty", keys)
	}
}

// TestLocalBackend_RejectsPathKeys verifies keys cannot escape the
// backend directory.
func TestLocalBackend_RejectsPathKeys(t *testing.T) {
	b := NewLocalBackend(t.TempDir())
	ctx := context.Background()
	if err := b.Connect(ctx); err != nil {
		t.Fatal(err)
	}
	if err := b.WriteBatch(ctx, "../escape.json", testUnits()); err == nil {
		t.Error("expected error for key containing path separator")
	}
}
