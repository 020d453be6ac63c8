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
	"regexp"
	"strings"
	"unicode"

	"github.com/kraklabs/codecorpus/pkg/extract"
)

// Verdict is the outcome of scoring one code unit. Reasons lists the names
// of failed checks and is empty when the unit is accepted.
type Verdict struct {
	Score    float64  `json:"score"`
	Accepted bool     `json:"accepted"`
	Reasons  []string `json:"reasons,omitempty"`
}

// Check names reported in Verdict.Reasons.
const (
	ReasonLength      = "length_floor"
	ReasonLines       = "line_floor"
	ReasonBanned      = "banned_pattern"
	ReasonParse       = "syntactic_validity"
	ReasonKeywords    = "keyword_density"
	ReasonBoiler      = "boilerplate"
	ReasonContent     = "content_ratio"
	ReasonUnsupported = "unsupported_language"
)

// Config holds the scoring thresholds. Zero values are replaced by the
// defaults from DefaultConfig, so a partially filled Config is usable.
type Config struct {
	// MinLength is the minimum count of non-whitespace characters.
	MinLength int `yaml:"min_length"`
	// MinLines is the minimum count of non-blank lines.
	MinLines int `yaml:"min_lines"`
	// AcceptThreshold is the score at or above which a unit is accepted.
	AcceptThreshold float64 `yaml:"accept_threshold"`
	// KeywordDensity is the minimum control keywords per non-blank line.
	KeywordDensity float64 `yaml:"keyword_density"`
	// ContentRatio is the minimum fraction of characters that are neither
	// whitespace nor comment text.
	ContentRatio float64 `yaml:"content_ratio"`
	// MaxErrorCoverage is the maximum fraction of a re-parsed unit that
	// may be covered by syntax error nodes.
	MaxErrorCoverage float64 `yaml:"max_error_coverage"`
	// BannedPatterns are case-insensitive substrings whose presence
	// disqualifies a unit outright.
	BannedPatterns []string `yaml:"banned_patterns"`
}

// DefaultConfig returns the stock thresholds.
func DefaultConfig() Config {
	return Config{
		MinLength:        40,
		MinLines:         3,
		AcceptThreshold:  75,
		KeywordDensity:   0.1,
		ContentRatio:     0.45,
		MaxErrorCoverage: 0.2,
		BannedPatterns: []string{
			"TODO", "FIXME", "XXX",
			"NotImplemented", "UnsupportedOperation",
		},
	}
}

// softPenalty is subtracted per failed compensatable check. One soft
// failure leaves the score above the default threshold, two do not.
const softPenalty = 15.0

// hardPenalty is subtracted per failed disqualifying check.
const hardPenalty = 50.0

// Scorer evaluates code units against a fixed battery of checks.
//
// Hard checks (size floors, banned patterns, syntactic validity,
// boilerplate) disqualify on their own. Soft checks (keyword density,
// content ratio) only subtract from the score, so a unit that narrowly
// misses one of them can still be accepted.
type Scorer struct {
	cfg    Config
	parser *extract.Parser
	banned []string
}

// NewScorer creates a Scorer. The parser is used by the syntactic-validity
// check to re-parse each unit in isolation; it may be shared with the
// extraction stage.
func NewScorer(cfg Config, parser *extract.Parser) *Scorer {
	def := DefaultConfig()
	if cfg.MinLength <= 0 {
		cfg.MinLength = def.MinLength
	}
	if cfg.MinLines <= 0 {
		cfg.MinLines = def.MinLines
	}
	if cfg.AcceptThreshold <= 0 {
		cfg.AcceptThreshold = def.AcceptThreshold
	}
	if cfg.KeywordDensity <= 0 {
		cfg.KeywordDensity = def.KeywordDensity
	}
	if cfg.ContentRatio <= 0 {
		cfg.ContentRatio = def.ContentRatio
	}
	if cfg.MaxErrorCoverage <= 0 {
		cfg.MaxErrorCoverage = def.MaxErrorCoverage
	}
	if cfg.BannedPatterns == nil {
		cfg.BannedPatterns = def.BannedPatterns
	}

	banned := make([]string, len(cfg.BannedPatterns))
	for i, p := range cfg.BannedPatterns {
		banned[i] = strings.ToLower(p)
	}

	return &Scorer{cfg: cfg, parser: parser, banned: banned}
}

// Score evaluates one unit's rendered text. Checks run cheapest first and
// scoring stops at the first hard failure, so most rejects never reach the
// re-parse.
func (s *Scorer) Score(ctx context.Context, code string, lang extract.Language) Verdict {
	score := 100.0
	var reasons []string

	fail := func(reason string, penalty float64) {
		score -= penalty
		reasons = append(reasons, reason)
	}

	// Size floors and banned patterns are nearly free; evaluate all three
	// before bailing so the verdict names every cheap failure at once.
	if countNonSpace(code) < s.cfg.MinLength {
		fail(ReasonLength, hardPenalty)
	}
	if countNonBlankLines(code) < s.cfg.MinLines {
		fail(ReasonLines, hardPenalty)
	}
	if s.containsBanned(code) {
		fail(ReasonBanned, hardPenalty)
	}
	if len(reasons) > 0 {
		return Verdict{Score: clamp(score), Accepted: false, Reasons: reasons}
	}

	if !s.parser.Supported(lang) {
		fail(ReasonUnsupported, hardPenalty)
		return Verdict{Score: clamp(score), Accepted: false, Reasons: reasons}
	}

	if !s.reparses(ctx, code, lang) {
		fail(ReasonParse, hardPenalty)
		return Verdict{Score: clamp(score), Accepted: false, Reasons: reasons}
	}

	if trivialBody(code) {
		fail(ReasonBoiler, hardPenalty)
		return Verdict{Score: clamp(score), Accepted: false, Reasons: reasons}
	}

	if s.keywordDensity(code, lang) < s.cfg.KeywordDensity {
		fail(ReasonKeywords, softPenalty)
	}
	if s.contentRatio(code, lang) < s.cfg.ContentRatio {
		fail(ReasonContent, softPenalty)
	}

	score = clamp(score)
	if score >= s.cfg.AcceptThreshold {
		// Accepted despite a narrow soft miss; reasons are reported only
		// for rejections.
		return Verdict{Score: score, Accepted: true}
	}
	return Verdict{Score: score, Accepted: false, Reasons: reasons}
}

// reparses checks that the unit parses as a standalone fragment. The unit
// is prepared with FragmentInput (indent repair, Java class shell) and
// re-fed to the grammar; it passes when error nodes cover at most
// MaxErrorCoverage of the input. The tolerance absorbs zero-width
// missing-token errors that block slicing introduces without letting
// genuinely garbled text through.
func (s *Scorer) reparses(ctx context.Context, code string, lang extract.Language) bool {
	input := extract.FragmentInput(code, lang)

	tree, err := s.parser.Parse(ctx, []byte(input), lang)
	if err != nil {
		return false
	}
	defer tree.Close()

	return extract.ErrorCoverage(tree, len(input)) <= s.cfg.MaxErrorCoverage
}

// trivialReturn matches a return of a bare operand: no calls, arithmetic,
// or comparisons.
var trivialReturn = regexp.MustCompile(`^return(\s+[\w."']+)?;?$`)

// trivialBody reports whether the unit does no real work: an empty block,
// a lone pass/ellipsis, or a single bare return.
func trivialBody(code string) bool {
	inner := code
	if open := strings.Index(inner, "{"); open >= 0 {
		if close := strings.LastIndex(inner, "}"); close > open {
			inner = inner[open+1 : close]
		}
	} else if head, rest, ok := strings.Cut(inner, "\n"); ok && strings.HasSuffix(strings.TrimSpace(head), ":") {
		inner = rest
	}

	var stmts []string
	for _, line := range strings.Split(inner, "\n") {
		t := strings.TrimSpace(line)
		if t == "" {
			continue
		}
		stmts = append(stmts, t)
	}

	switch len(stmts) {
	case 0:
		return true
	case 1:
		t := stmts[0]
		return t == "pass" || t == "..." || trivialReturn.MatchString(t)
	default:
		return false
	}
}

func (s *Scorer) containsBanned(code string) bool {
	lower := strings.ToLower(code)
	for _, p := range s.banned {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// keywordDensity counts whole-word control keywords per non-blank line.
func (s *Scorer) keywordDensity(code string, lang extract.Language) float64 {
	keywords := controlKeywords[lang]
	if len(keywords) == 0 {
		return 0
	}

	want := make(map[string]bool, len(keywords))
	for _, k := range keywords {
		want[k] = true
	}

	count := 0
	for _, word := range splitWords(code) {
		if want[word] {
			count++
		}
	}

	lines := countNonBlankLines(code)
	if lines == 0 {
		return 0
	}
	return float64(count) / float64(lines)
}

// contentRatio returns the fraction of characters that are neither
// whitespace nor comment text.
func (s *Scorer) contentRatio(code string, lang extract.Language) float64 {
	if len(code) == 0 {
		return 0
	}
	stripped := stripComments(code, lang)
	return float64(countNonSpace(stripped)) / float64(len(code))
}

// stripComments removes line comments and, where the language has them,
// /* */ block comments. String literals containing comment markers are a
// known imprecision the ratio threshold absorbs.
func stripComments(code string, lang extract.Language) string {
	if hasBlockComments(lang) {
		for {
			open := strings.Index(code, "/*")
			if open < 0 {
				break
			}
			close := strings.Index(code[open+2:], "*/")
			if close < 0 {
				code = code[:open]
				break
			}
			code = code[:open] + code[open+2+close+2:]
		}
	}

	marker := lineCommentMarkers[lang]
	lines := strings.Split(code, "\n")
	for i, line := range lines {
		if idx := strings.Index(line, marker); idx >= 0 {
			lines[i] = line[:idx]
		}
	}
	return strings.Join(lines, "\n")
}

// splitWords breaks code into identifier-like tokens.
func splitWords(code string) []string {
	return strings.FieldsFunc(code, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
}

func countNonSpace(s string) int {
	n := 0
	for _, r := range s {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}

func countNonBlankLines(s string) int {
	n := 0
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			n++
		}
	}
	return n
}

func clamp(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
