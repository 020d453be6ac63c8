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

// Package batch groups accepted code units into fixed-size batches and
// flushes them to a storage backend. Batches are immutable once written;
// sequence numbers increase monotonically within a run so key order
// reflects flush order.
package batch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kraklabs/codecorpus/pkg/extract"
	"github.com/kraklabs/codecorpus/pkg/storage"
)

// DefaultCapacity is the batch size used when none is configured.
const DefaultCapacity = 100

// Accumulator collects accepted units up to a capacity. It does not flush
// by itself; the orchestrator calls Flush when Append reports the batch is
// full and once more at end of run.
type Accumulator struct {
	mu       sync.Mutex
	capacity int
	units    []extract.CodeUnit
	seq      int

	// now is stubbed in tests for deterministic keys.
	now func() time.Time
}

// NewAccumulator creates an Accumulator with the given capacity. A
// non-positive capacity gets DefaultCapacity.
func NewAccumulator(capacity int) *Accumulator {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Accumulator{
		capacity: capacity,
		units:    make([]extract.CodeUnit, 0, capacity),
		now:      time.Now,
	}
}

// Append adds a unit and reports whether the batch has reached capacity.
func (a *Accumulator) Append(unit extract.CodeUnit) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.units = append(a.units, unit)
	return len(a.units) >= a.capacity
}

// Len returns the number of buffered units.
func (a *Accumulator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.units)
}

// Flush writes the buffered units to the backend and resets the buffer.
// An empty buffer is a no-op returning an empty key. On write failure the
// buffer is left intact so the caller can retry or redirect the same
// batch elsewhere.
func (a *Accumulator) Flush(ctx context.Context, backend storage.Backend) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.units) == 0 {
		return "", nil
	}

	key := a.key()
	if err := backend.WriteBatch(ctx, key, a.units); err != nil {
		return "", fmt.Errorf("flush batch %s: %w", key, err)
	}

	a.seq++
	a.units = make([]extract.CodeUnit, 0, a.capacity)
	return key, nil
}

// key names the pending batch: units-<language-or-mixed>-<timestamp>-<seq>.json.
// Caller holds the lock.
func (a *Accumulator) key() string {
	label := "mixed"
	if lang := a.soleLanguage(); lang != "" {
		label = string(lang)
	}
	stamp := a.now().UTC().Format("20060102T150405")
	return fmt.Sprintf("units-%s-%s-%04d.json", label, stamp, a.seq)
}

// soleLanguage returns the language shared by every buffered unit, or ""
// when the batch spans languages.
func (a *Accumulator) soleLanguage() extract.Language {
	lang := a.units[0].Language
	for _, u := range a.units[1:] {
		if u.Language != lang {
			return ""
		}
	}
	return lang
}
