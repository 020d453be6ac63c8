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
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// Extractor turns a syntax tree plus its raw source into a uniform list of
// CodeUnits. One depth-first traversal serves every supported grammar; all
// per-language variation lives in the languageSpecs table.
type Extractor struct{}

// NewExtractor creates an Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// walkContext carries state through one file's traversal.
type walkContext struct {
	spec   *languageSpec
	source []byte
	lang   Language
	path   string
	units  []CodeUnit
}

// Extract returns all code units found in the tree, in source order.
// The raw source is required because the tree stores only byte ranges.
//
// Malformed files are handled gracefully: error nodes are never extracted
// themselves, but the traversal descends into them so well-formed units
// inside or after a syntax error are still found.
func (e *Extractor) Extract(tree *sitter.Tree, source []byte, lang Language, path string) []CodeUnit {
	spec := specFor(lang)
	if spec == nil || tree == nil {
		return nil
	}

	ctx := &walkContext{
		spec:   spec,
		source: source,
		lang:   lang,
		path:   path,
	}
	e.walk(tree.RootNode(), ctx, 0)
	return ctx.units
}

// walk visits node and all descendants. classDepth counts enclosing
// class-like nodes so function definitions inside a class become methods.
//
// The traversal always recurses into matched nodes: methods nested inside
// classes inside modules must all be found, so a match never terminates
// descent.
func (e *Extractor) walk(node *sitter.Node, ctx *walkContext, classDepth int) {
	if node == nil {
		return
	}

	nodeType := node.Type()

	// Only named nodes can match a rule: anonymous keyword tokens share
	// their type string with the construct they introduce (Python's
	// "lambda" token inside a lambda node).
	if rule, ok := ctx.spec.rules[nodeType]; ok && node.IsNamed() && !node.IsError() && !node.IsMissing() {
		ctx.units = append(ctx.units, e.buildUnit(node, rule, ctx, classDepth))
	}

	if ctx.spec.classKinds[nodeType] {
		classDepth++
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		e.walk(node.Child(i), ctx, classDepth)
	}
}

// buildUnit assembles a CodeUnit from a matched node according to its rule.
func (e *Extractor) buildUnit(node *sitter.Node, rule nodeRule, ctx *walkContext, classDepth int) CodeUnit {
	name := ""
	if rule.NameField != "" {
		if nameNode := node.ChildByFieldName(rule.NameField); nameNode != nil {
			name = e.slice(nameNode, ctx)
		}
	}

	// Anonymous forms are extracted rather than dropped so run statistics
	// stay accurate; the empty name routes them to rejection downstream.
	kind := rule.Kind
	if name == "" {
		kind = KindUnknown
	} else if kind == KindFunction && classDepth > 0 {
		kind = KindMethod
	}

	var body, signature string
	if rule.BodyField != "" {
		if bodyNode := node.ChildByFieldName(rule.BodyField); bodyNode != nil {
			body = e.slice(bodyNode, ctx)
			if bodyNode.StartByte() > node.StartByte() {
				signature = strings.TrimSpace(string(ctx.source[node.StartByte():bodyNode.StartByte()]))
			}
		}
	}
	if body == "" {
		// Grammar has no separate block for this node (or the block is
		// missing): the whole node is the body, with no header concept.
		body = e.slice(node, ctx)
		signature = ""
	}

	return CodeUnit{
		Kind:          kind,
		Name:          name,
		Signature:     signature,
		Body:          body,
		Documentation: e.documentation(node, ctx),
		Language:      ctx.lang,
		Location: Location{
			Path:      ctx.path,
			StartLine: int(node.StartPoint().Row) + 1,
			EndLine:   int(node.EndPoint().Row) + 1,
		},
	}
}

// documentation returns the comment text attached immediately above the
// unit, or "". A comment is attached only when it is contiguous: no blank
// line or unrelated statement between the comment and the unit. Stacked
// contiguous comments are collected as one block.
func (e *Extractor) documentation(node *sitter.Node, ctx *walkContext) string {
	anchor := node

	// Declarations like Go's type_spec sit inside a wrapper node that
	// starts on the same line; the doc comment precedes the wrapper.
	for anchor.PrevNamedSibling() == nil {
		parent := anchor.Parent()
		if parent == nil || parent.StartPoint().Row != anchor.StartPoint().Row {
			break
		}
		anchor = parent
	}

	var comments []string
	wantRow := int(anchor.StartPoint().Row) - 1

	for prev := anchor.PrevNamedSibling(); prev != nil; prev = prev.PrevNamedSibling() {
		if !ctx.spec.commentKinds[prev.Type()] {
			break
		}
		if int(prev.EndPoint().Row) < wantRow {
			break // blank line between comment and unit
		}
		comments = append(comments, e.slice(prev, ctx))
		wantRow = int(prev.StartPoint().Row) - 1
	}

	if len(comments) == 0 {
		return ""
	}

	// Collected bottom-up; restore source order.
	for i, j := 0, len(comments)-1; i < j; i, j = i+1, j-1 {
		comments[i], comments[j] = comments[j], comments[i]
	}
	return strings.Join(comments, "\n")
}

// slice returns the verbatim source text spanned by a node.
func (e *Extractor) slice(node *sitter.Node, ctx *walkContext) string {
	return string(ctx.source[node.StartByte():node.EndByte()])
}
