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

// nodeRule describes how one grammar node kind maps onto a CodeUnit.
// Adding a language means adding table rows here, not new control flow:
// the extractor's traversal consults these rules and nothing else.
type nodeRule struct {
	// Kind is the unit classification for this node kind. Matched nodes
	// whose name resolves empty are downgraded to KindUnknown.
	Kind UnitKind

	// BodyField is the grammar field holding the unit's implementation
	// block. Empty means the grammar has no separate block for this node
	// and the whole node is the body (e.g. Go type specs).
	BodyField string

	// NameField is the grammar field holding the identifier. Empty marks
	// an inherently anonymous form (lambdas, function literals).
	NameField string
}

// languageSpec is the per-language extraction policy consulted by the
// single shared traversal in Extractor.
type languageSpec struct {
	// rules maps grammar node-kind strings to extraction rules.
	rules map[string]nodeRule

	// classKinds are the node kinds that establish "inside a class"
	// context; function-like units found beneath one become methods.
	classKinds map[string]bool

	// commentKinds are the node kinds treated as documentation when
	// contiguous with the unit below them.
	commentKinds map[string]bool

	// reparseWrap is a format template applied before validity re-parsing.
	// Java method bodies are not legal at the top level of a compilation
	// unit, so they get wrapped in a class shell.
	reparseWrap string
}

var languageSpecs = map[Language]*languageSpec{
	LangGo: {
		rules: map[string]nodeRule{
			"function_declaration": {Kind: KindFunction, BodyField: "body", NameField: "name"},
			"method_declaration":   {Kind: KindMethod, BodyField: "body", NameField: "name"},
			"func_literal":         {Kind: KindFunction, BodyField: "body"},
			"type_spec":            {Kind: KindClass, NameField: "name"},
		},
		classKinds:   map[string]bool{},
		commentKinds: map[string]bool{"comment": true},
		reparseWrap:  "%s",
	},
	LangPython: {
		rules: map[string]nodeRule{
			"function_definition": {Kind: KindFunction, BodyField: "body", NameField: "name"},
			"class_definition":    {Kind: KindClass, BodyField: "body", NameField: "name"},
			"lambda":              {Kind: KindFunction, BodyField: "body"},
		},
		classKinds:   map[string]bool{"class_definition": true},
		commentKinds: map[string]bool{"comment": true},
		reparseWrap:  "%s",
	},
	LangJavaScript: {
		rules: map[string]nodeRule{
			"function_declaration":           {Kind: KindFunction, BodyField: "body", NameField: "name"},
			"generator_function_declaration": {Kind: KindFunction, BodyField: "body", NameField: "name"},
			"function_expression":            {Kind: KindFunction, BodyField: "body", NameField: "name"},
			"arrow_function":                 {Kind: KindFunction, BodyField: "body"},
			"method_definition":              {Kind: KindMethod, BodyField: "body", NameField: "name"},
			"class_declaration":              {Kind: KindClass, BodyField: "body", NameField: "name"},
		},
		classKinds:   map[string]bool{"class_declaration": true},
		commentKinds: map[string]bool{"comment": true},
		reparseWrap:  "%s",
	},
	LangTypeScript: {
		rules: map[string]nodeRule{
			"function_declaration":           {Kind: KindFunction, BodyField: "body", NameField: "name"},
			"generator_function_declaration": {Kind: KindFunction, BodyField: "body", NameField: "name"},
			"function_expression":            {Kind: KindFunction, BodyField: "body", NameField: "name"},
			"arrow_function":                 {Kind: KindFunction, BodyField: "body"},
			"method_definition":              {Kind: KindMethod, BodyField: "body", NameField: "name"},
			"class_declaration":              {Kind: KindClass, BodyField: "body", NameField: "name"},
			"interface_declaration":          {Kind: KindClass, BodyField: "body", NameField: "name"},
		},
		classKinds:   map[string]bool{"class_declaration": true, "interface_declaration": true},
		commentKinds: map[string]bool{"comment": true},
		reparseWrap:  "%s",
	},
	LangJava: {
		rules: map[string]nodeRule{
			"method_declaration":      {Kind: KindMethod, BodyField: "body", NameField: "name"},
			"constructor_declaration": {Kind: KindMethod, BodyField: "body", NameField: "name"},
			"class_declaration":       {Kind: KindClass, BodyField: "body", NameField: "name"},
			"interface_declaration":   {Kind: KindClass, BodyField: "body", NameField: "name"},
			"lambda_expression":       {Kind: KindFunction, BodyField: "body"},
		},
		classKinds:   map[string]bool{"class_declaration": true, "interface_declaration": true},
		commentKinds: map[string]bool{"line_comment": true, "block_comment": true},
		reparseWrap:  "class __codecorpus_check { %s }",
	},
}

// specFor returns the extraction policy for a language, or nil when the
// language is unsupported.
func specFor(lang Language) *languageSpec {
	return languageSpecs[lang]
}

// ReparseWrap returns the validity-check wrapper template for a language.
// The template contains exactly one %s verb. Unsupported languages get the
// identity template.
func ReparseWrap(lang Language) string {
	if spec := specFor(lang); spec != nil {
		return spec.reparseWrap
	}
	return "%s"
}
