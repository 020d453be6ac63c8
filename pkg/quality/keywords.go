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
	"github.com/kraklabs/codecorpus/pkg/extract"
)

// controlKeywords lists the control-flow and declaration keywords counted
// by the structural-complexity check. This is a textual heuristic, not
// real cyclomatic complexity; it only needs to separate straight-line
// assignment blobs from code with actual structure.
var controlKeywords = map[extract.Language][]string{
	extract.LangGo: {
		"if", "else", "for", "switch", "select", "case", "range",
		"return", "defer", "go",
	},
	extract.LangPython: {
		"if", "elif", "else", "for", "while", "match", "case",
		"return", "yield", "try", "except", "with", "raise",
	},
	extract.LangJavaScript: {
		"if", "else", "for", "while", "switch", "case",
		"return", "yield", "try", "catch", "throw", "await",
	},
	extract.LangTypeScript: {
		"if", "else", "for", "while", "switch", "case",
		"return", "yield", "try", "catch", "throw", "await",
	},
	extract.LangJava: {
		"if", "else", "for", "while", "switch", "case",
		"return", "try", "catch", "throw", "do",
	},
}

// lineCommentMarkers maps each language to its line-comment prefix, used
// by the meaningful-content check to discount comment text.
var lineCommentMarkers = map[extract.Language]string{
	extract.LangGo:         "//",
	extract.LangPython:     "#",
	extract.LangJavaScript: "//",
	extract.LangTypeScript: "//",
	extract.LangJava:       "//",
}

// hasBlockComments reports whether the language supports /* */ comments.
func hasBlockComments(lang extract.Language) bool {
	return lang != extract.LangPython
}
