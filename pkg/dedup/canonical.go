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
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// identifierKinds are grammar node kinds elided to a single marker in the
// canonical serialization, so renaming a variable does not change the
// structure hash. The set is the union across supported grammars; unknown
// kinds in one grammar simply never match.
var identifierKinds = map[string]bool{
	"identifier":                            true,
	"field_identifier":                      true,
	"type_identifier":                       true,
	"package_identifier":                    true,
	"property_identifier":                   true,
	"shorthand_property_identifier":         true,
	"shorthand_property_identifier_pattern": true,
	"statement_identifier":                  true,
	"label_name":                            true,
}

// literalKinds are node kinds elided to a literal marker.
var literalKinds = map[string]bool{
	"int_literal":                    true,
	"float_literal":                  true,
	"imaginary_literal":              true,
	"rune_literal":                   true,
	"interpreted_string_literal":     true,
	"raw_string_literal":             true,
	"integer":                        true,
	"float":                          true,
	"string":                         true,
	"number":                         true,
	"regex":                          true,
	"template_string":                true,
	"string_literal":                 true,
	"character_literal":              true,
	"decimal_integer_literal":        true,
	"hex_integer_literal":            true,
	"octal_integer_literal":          true,
	"binary_integer_literal":         true,
	"decimal_floating_point_literal": true,
	"true":                           true,
	"false":                          true,
	"none":                           true,
	"null":                           true,
	"null_literal":                   true,
	"nil":                            true,
	"undefined":                      true,
}

// commentKinds are dropped from the serialization entirely.
var commentKinds = map[string]bool{
	"comment":       true,
	"line_comment":  true,
	"block_comment": true,
}

// serializeNode writes a canonical S-expression of the named tree: node
// kinds in structural positions, "$" for identifiers, "#" for literals,
// comments omitted. Two units serialize identically exactly when their
// trees match up to naming, literal values, spacing, and comments.
// Anonymous tokens (operators, punctuation) are not part of the named
// tree, so operator-only variants of an expression hash together.
func serializeNode(node *sitter.Node, b *strings.Builder) {
	if node == nil {
		return
	}

	kind := node.Type()
	switch {
	case commentKinds[kind]:
		return
	case identifierKinds[kind]:
		b.WriteByte('$')
		return
	case literalKinds[kind]:
		b.WriteByte('#')
		return
	}

	b.WriteByte('(')
	b.WriteString(kind)
	for i := 0; i < int(node.NamedChildCount()); i++ {
		b.WriteByte(' ')
		serializeNode(node.NamedChild(i), b)
	}
	b.WriteByte(')')
}
