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

package extract

import (
	"fmt"
	"strings"
)

// FragmentInput prepares a unit's rendered text for stand-alone parsing.
// Two adjustments make a sliced-out fragment grammatical again: Python
// blocks get the first-line indent rebuilt (the block slice starts
// mid-line, so the header's body loses its indentation), and Java members
// get wrapped in a class shell because they are not legal at the top level
// of a compilation unit.
//
// Both the quality filter's validity re-parse and the structure-mode
// duplicate hash go through this, so the two stages always see the same
// tree for the same unit.
func FragmentInput(code string, lang Language) string {
	if lang == LangPython {
		code = normalizeIndent(code)
	}
	if wrap := ReparseWrap(lang); wrap != "%s" {
		code = fmt.Sprintf(wrap, code)
	}
	return code
}

// normalizeIndent rebuilds a header-plus-block fragment whose block lost
// the leading indent of its first line. The remaining lines are dedented
// to the block's shallowest level and the whole block re-indented
// uniformly, restoring a parseable suite.
func normalizeIndent(code string) string {
	head, rest, ok := strings.Cut(code, "\n")
	if !ok || !strings.HasSuffix(strings.TrimSpace(head), ":") {
		return code
	}

	lines := strings.Split(rest, "\n")
	depth := -1
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := len(line) - len(strings.TrimLeft(line, " \t"))
		if depth < 0 || indent < depth {
			depth = indent
		}
	}
	if depth < 0 {
		depth = 0
	}

	var b strings.Builder
	b.WriteString(head)
	for i, line := range lines {
		b.WriteByte('\n')
		if strings.TrimSpace(line) == "" {
			continue
		}
		b.WriteString("    ")
		if i == 0 {
			b.WriteString(line)
		} else if len(line) >= depth {
			b.WriteString(line[depth:])
		} else {
			b.WriteString(strings.TrimLeft(line, " \t"))
		}
	}
	return b.String()
}
