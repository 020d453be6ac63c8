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
	sitter "github.com/smacker/go-tree-sitter"
)

// ErrorCoverage returns the fraction of the source (0.0-1.0) covered by
// error nodes in the tree. Zero-width missing-token errors contribute
// nothing, so recoverable indentation or separator glitches score near 0
// while genuinely garbled input scores high.
func ErrorCoverage(tree *sitter.Tree, sourceLen int) float64 {
	if tree == nil || sourceLen == 0 {
		return 0
	}
	root := tree.RootNode()
	if root == nil || !root.HasError() {
		return 0
	}

	errorBytes := countErrorBytes(root)
	if errorBytes > sourceLen {
		errorBytes = sourceLen
	}
	return float64(errorBytes) / float64(sourceLen)
}

// countErrorBytes sums the byte spans of error nodes. Nested error nodes
// are not double-counted: once a node is an error its whole span counts
// and descent stops.
func countErrorBytes(node *sitter.Node) int {
	if node == nil {
		return 0
	}
	if node.IsError() {
		return int(node.EndByte() - node.StartByte())
	}
	if !node.HasError() {
		return 0
	}

	total := 0
	for i := 0; i < int(node.ChildCount()); i++ {
		total += countErrorBytes(node.Child(i))
	}
	return total
}
