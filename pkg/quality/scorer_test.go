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

package quality

import (
	"context"
	"testing"

	"github.com/kraklabs/codecorpus/pkg/extract"
)

func newTestScorer(t *testing.T) *Scorer {
	t.Helper()
	return NewScorer(DefaultConfig(), extract.NewParser())
}

func hasReason(v Verdict, reason string) bool {
	for _, r := range v.Reasons {
		if r == reason {
			return true
		}
	}
	return false
}

// TestScorer_AcceptsRealFunction verifies that an ordinary well-formed
// function clears every check with no reasons reported.
func TestScorer_AcceptsRealFunction(t *testing.T) {
	code := `func sumPositive(values []int) int {
	total := 0
	for _, v := range values {
		if v > 0 {
			total += v
		}
	}
	return total
}`
	v := newTestScorer(t).Score(context.Background(), code, extract.LangGo)

	if !v.Accepted {
		t.Fatalf("expected accept, got score %f reasons %v", v.Score, v.Reasons)
	}
	if v.Score != 100 {
		t.Errorf("score = %f, want 100", v.Score)
	}
	if len(v.Reasons) != 0 {
		t.Errorf("accepted verdict should carry no reasons, got %v", v.Reasons)
	}
}

// TestScorer_RejectsPassOnlyStub covers the canonical low-value unit: a
// one-line Python stub. It trips the size floors before anything else runs.
func TestScorer_RejectsPassOnlyStub(t *testing.T) {
	v := newTestScorer(t).Score(context.Background(), "def f(): pass", extract.LangPython)

	if v.Accepted {
		t.Fatal("expected reject")
	}
	if !hasReason(v, ReasonLength) || !hasReason(v, ReasonLines) {
		t.Errorf("reasons = %v, want both size floors", v.Reasons)
	}
}

// TestScorer_RejectsBannedMarkers verifies the marker scan is
// case-insensitive and disqualifying on its own.
func TestScorer_RejectsBannedMarkers(t *testing.T) {
	code := `func processOrders(orders []Order) error {
	// todo: handle the partial-shipment case
	for _, o := range orders {
		dispatch(o)
	}
	return nil
}`
	v := newTestScorer(t).Score(context.Background(), code, extract.LangGo)

	if v.Accepted {
		t.Fatal("expected reject")
	}
	if !hasReason(v, ReasonBanned) {
		t.Errorf("reasons = %v, want %s", v.Reasons, ReasonBanned)
	}
}

// TestScorer_RejectsBoilerplateBody verifies that a body doing no real
// work is rejected even when it clears the size floors.
func TestScorer_RejectsBoilerplateBody(t *testing.T) {
	code := `func (c *Client) DefaultRegionIdentifier() string {
	return defaultRegionIdentifier

}`
	v := newTestScorer(t).Score(context.Background(), code, extract.LangGo)

	if v.Accepted {
		t.Fatal("expected reject")
	}
	if !hasReason(v, ReasonBoiler) {
		t.Errorf("reasons = %v, want %s", v.Reasons, ReasonBoiler)
	}
}

// TestScorer_RejectsGarbledCode verifies the re-parse gate: text that no
// longer parses as the claimed language is rejected.
func TestScorer_RejectsGarbledCode(t *testing.T) {
	code := "func broken(((((\n]]] ??? @@@ ;;; %%%\n))) [[[ !!! === |||\n&&& ^^^ ~~~ ``` $$$"
	v := newTestScorer(t).Score(context.Background(), code, extract.LangGo)

	if v.Accepted {
		t.Fatal("expected reject")
	}
	if !hasReason(v, ReasonParse) {
		t.Errorf("reasons = %v, want %s", v.Reasons, ReasonParse)
	}
}

// TestScorer_SoftFailureCompensates verifies that one narrow soft miss is
// survivable: an assignment-only function has zero control keywords but is
// still worth keeping.
func TestScorer_SoftFailureCompensates(t *testing.T) {
	code := `func applyDefaults(s *Settings) {
	s.Host = defaultHost
	s.Port = defaultPort
	s.Timeout = defaultTimeout
	s.Retries = defaultRetries
}`
	v := newTestScorer(t).Score(context.Background(), code, extract.LangGo)

	if !v.Accepted {
		t.Fatalf("expected accept, got score %f reasons %v", v.Score, v.Reasons)
	}
	if v.Score != 100-softPenalty {
		t.Errorf("score = %f, want %f", v.Score, 100-softPenalty)
	}
	if len(v.Reasons) != 0 {
		t.Errorf("accepted verdict should carry no reasons, got %v", v.Reasons)
	}
}

// TestScorer_TwoSoftFailuresReject verifies that soft misses accumulate:
// no control flow plus comment-dominated text drops below the threshold.
func TestScorer_TwoSoftFailuresReject(t *testing.T) {
	code := `func applyFallbacks(c *Config) {
	// The host fallback mirrors the production loadbalancer entry and
	// must stay aligned with the fleet inventory exported by operations.
	c.Host = fallbackHost
	// Ports below 1024 are reserved and rejected at bind time, so the
	// fallback always points above the privileged span.
	c.Port = fallbackPort
}`
	v := newTestScorer(t).Score(context.Background(), code, extract.LangGo)

	if v.Accepted {
		t.Fatalf("expected reject, got score %f", v.Score)
	}
	if !hasReason(v, ReasonKeywords) || !hasReason(v, ReasonContent) {
		t.Errorf("reasons = %v, want both soft checks", v.Reasons)
	}
}

// TestScorer_JavaMethodFragment verifies that a bare method body, which is
// not legal at the top level of a compilation unit, still passes the
// re-parse via the class wrapper.
func TestScorer_JavaMethodFragment(t *testing.T) {
	code := `public int addAll(java.util.List<Integer> values) {
    int total = 0;
    for (int v : values) {
        total += v;
    }
    return total;
}`
	v := newTestScorer(t).Score(context.Background(), code, extract.LangJava)

	if !v.Accepted {
		t.Fatalf("expected accept, got score %f reasons %v", v.Score, v.Reasons)
	}
}

// TestScorer_PythonMultilineBody runs the real extraction-to-scoring path:
// the block slice of a multi-line Python function loses its first line's
// indent, and the scorer must still validate it.
func TestScorer_PythonMultilineBody(t *testing.T) {
	source := `def collect_values(items):
    results = []
    for item in items:
        if item.enabled:
            results.append(item.value)
    return results
`
	parser := extract.NewParser()
	tree, err := parser.Parse(context.Background(), []byte(source), extract.LangPython)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	defer tree.Close()

	units := extract.NewExtractor().Extract(tree, []byte(source), extract.LangPython, "collect.py")
	if len(units) != 1 {
		t.Fatalf("expected 1 unit, got %d", len(units))
	}

	v := NewScorer(DefaultConfig(), parser).Score(context.Background(), units[0].Text(), extract.LangPython)
	if !v.Accepted {
		t.Fatalf("expected accept, got score %f reasons %v", v.Score, v.Reasons)
	}
}

// TestScorer_UnsupportedLanguage verifies the guard for units whose
// language has no registered grammar.
func TestScorer_UnsupportedLanguage(t *testing.T) {
	code := "SELECT id, name FROM accounts\nWHERE active = true\nORDER BY name ASC;"
	v := newTestScorer(t).Score(context.Background(), code, extract.Language("sql"))

	if v.Accepted {
		t.Fatal("expected reject")
	}
	if !hasReason(v, ReasonUnsupported) {
		t.Errorf("reasons = %v, want %s", v.Reasons, ReasonUnsupported)
	}
}

// TestScorer_ZeroConfigUsesDefaults verifies that an empty Config is
// backfilled with the stock thresholds.
func TestScorer_ZeroConfigUsesDefaults(t *testing.T) {
	s := NewScorer(Config{}, extract.NewParser())

	if s.cfg.MinLength != DefaultConfig().MinLength {
		t.Errorf("MinLength = %d, want %d", s.cfg.MinLength, DefaultConfig().MinLength)
	}
	if s.cfg.AcceptThreshold != DefaultConfig().AcceptThreshold {
		t.Errorf("AcceptThreshold = %f, want %f", s.cfg.AcceptThreshold, DefaultConfig().AcceptThreshold)
	}

	v := s.Score(context.Background(), "def g(): ...", extract.LangPython)
	if v.Accepted {
		t.Error("short stub should be rejected under defaults")
	}
}

func TestTrivialBody(t *testing.T) {
	tests := []struct {
		name string
		code string
		want bool
	}{
		{"empty block", "func f() {\n}", true},
		{"bare return", "func f() {\n\treturn\n}", true},
		{"return constant", "func f() int {\n\treturn 0\n}", true},
		{"return field", "func f() int {\n\treturn s.count\n}", true},
		{"python pass", "def f():\npass", true},
		{"python ellipsis", "def f():\n...", true},
		{"return expression", "func f() int {\n\treturn a + b\n}", false},
		{"two statements", "func f() {\n\tx := 1\n\tuse(x)\n}", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := trivialBody(tt.code); got != tt.want {
				t.Errorf("trivialBody(%q) = %v, want %v", tt.code, got, tt.want)
			}
		})
	}
}
