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

package dedup

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"

	"github.com/kraklabs/codecorpus/pkg/extract"
)

// Mode selects the duplicate definition.
type Mode string

const (
	// ModeContent treats units as duplicates when their text matches after
	// whitespace normalization.
	ModeContent Mode = "content"

	// ModeStructure treats units as duplicates when their syntax trees
	// match after identifiers and literals are elided. Catches renamed
	// copies; costs one extra parse per unit.
	ModeStructure Mode = "structure"
)

// ParseMode validates a mode string from configuration.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeContent, ModeStructure:
		return Mode(s), nil
	case "":
		return ModeContent, nil
	default:
		return "", fmt.Errorf("unknown dedup mode %q (want %q or %q)", s, ModeContent, ModeStructure)
	}
}

// Record is what the detector remembers about a seen unit: enough to
// answer "where did the original come from" when auditing a skip.
type Record struct {
	Hash          string `json:"hash"`
	FirstSeenPath string `json:"first_seen_path"`
	Language      string `json:"language"`
}

// Detector tracks which units have been seen within and across runs.
//
// Keys are language-namespaced, so an identical shape in two languages is
// never a cross-language duplicate. All methods are safe for concurrent
// use; CheckAndAdd performs the membership test and the insert under one
// lock so two goroutines holding identical units cannot both see "new".
type Detector struct {
	mu     sync.Mutex
	mode   Mode
	seen   map[string]Record
	parser *extract.Parser
}

// NewDetector creates a Detector. The parser is required for
// ModeStructure and ignored for ModeContent.
func NewDetector(mode Mode, parser *extract.Parser) (*Detector, error) {
	if mode == "" {
		mode = ModeContent
	}
	if mode == ModeStructure && parser == nil {
		return nil, fmt.Errorf("structure mode requires a parser")
	}
	return &Detector{
		mode:   mode,
		seen:   make(map[string]Record),
		parser: parser,
	}, nil
}

// Mode returns the duplicate definition in effect.
func (d *Detector) Mode() Mode {
	return d.mode
}

// Key computes the unit's duplicate key without touching detector state.
func (d *Detector) Key(ctx context.Context, unit extract.CodeUnit) (string, error) {
	var payload string
	switch d.mode {
	case ModeStructure:
		canon, err := d.canonicalize(ctx, unit)
		if err != nil {
			return "", err
		}
		payload = canon
	default:
		payload = normalizeWhitespace(unit.Text())
	}

	sum := sha256.Sum256([]byte(string(unit.Language) + "\x00" + string(d.mode) + "\x00" + payload))
	return string(unit.Language) + ":" + hex.EncodeToString(sum[:]), nil
}

// CheckAndAdd reports whether the unit was already seen and, if not,
// records it. The two steps are atomic with respect to other callers.
func (d *Detector) CheckAndAdd(ctx context.Context, unit extract.CodeUnit) (bool, error) {
	key, err := d.Key(ctx, unit)
	if err != nil {
		return false, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, dup := d.seen[key]; dup {
		return true, nil
	}
	d.seen[key] = Record{Hash: key, FirstSeenPath: unit.Location.Path, Language: string(unit.Language)}
	return false, nil
}

// IsDuplicate reports whether the unit has been seen, without recording it.
func (d *Detector) IsDuplicate(ctx context.Context, unit extract.CodeUnit) (bool, error) {
	key, err := d.Key(ctx, unit)
	if err != nil {
		return false, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	_, dup := d.seen[key]
	return dup, nil
}

// Add records the unit unconditionally.
func (d *Detector) Add(ctx context.Context, unit extract.CodeUnit) error {
	key, err := d.Key(ctx, unit)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.seen[key] = Record{Hash: key, FirstSeenPath: unit.Location.Path, Language: string(unit.Language)}
	return nil
}

// AddBatch records every unit in the slice, stopping at the first hashing
// failure.
func (d *Detector) AddBatch(ctx context.Context, units []extract.CodeUnit) error {
	for _, u := range units {
		if err := d.Add(ctx, u); err != nil {
			return err
		}
	}
	return nil
}

// Seen returns the number of distinct keys recorded.
func (d *Detector) Seen() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}

// Clear forgets all recorded keys.
func (d *Detector) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seen = make(map[string]Record)
}

// canonicalize parses the unit and serializes its tree shape with
// identifiers and literals elided.
func (d *Detector) canonicalize(ctx context.Context, unit extract.CodeUnit) (string, error) {
	input := extract.FragmentInput(unit.Text(), unit.Language)

	tree, err := d.parser.Parse(ctx, []byte(input), unit.Language)
	if err != nil {
		return "", fmt.Errorf("structure hash of %s:%d: %w", unit.Location.Path, unit.Location.StartLine, err)
	}
	defer tree.Close()

	var b strings.Builder
	serializeNode(tree.RootNode(), &b)
	return b.String(), nil
}

// normalizeWhitespace collapses every whitespace run to a single space, so
// formatting-only variants of a unit hash identically.
func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
