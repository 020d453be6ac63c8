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
	"path/filepath"
	"strings"
)

// Language identifies the grammar that produced a code unit. It drives all
// per-language policy downstream: extraction rules, quality keyword tables,
// and duplicate-hash namespacing.
type Language string

// Supported languages. Each maps to a Tree-sitter grammar.
const (
	LangGo         Language = "go"
	LangPython     Language = "python"
	LangJavaScript Language = "javascript"
	LangTypeScript Language = "typescript"
	LangJava       Language = "java"
)

// Languages returns all supported languages in stable order.
func Languages() []Language {
	return []Language{LangGo, LangPython, LangJavaScript, LangTypeScript, LangJava}
}

// LanguageForPath detects the language of a source file from its extension.
// Returns "" for unsupported extensions.
func LanguageForPath(path string) Language {
	ext := strings.ToLower(filepath.Ext(path))

	langMap := map[string]Language{
		".go":   LangGo,
		".py":   LangPython,
		".js":   LangJavaScript,
		".jsx":  LangJavaScript,
		".mjs":  LangJavaScript,
		".ts":   LangTypeScript,
		".tsx":  LangTypeScript,
		".java": LangJava,
	}

	return langMap[ext]
}

// Extensions returns the file extensions handled by the given languages.
func Extensions(langs []Language) []string {
	extMap := map[Language][]string{
		LangGo:         {".go"},
		LangPython:     {".py"},
		LangJavaScript: {".js", ".jsx", ".mjs"},
		LangTypeScript: {".ts", ".tsx"},
		LangJava:       {".java"},
	}

	var exts []string
	for _, lang := range langs {
		exts = append(exts, extMap[lang]...)
	}
	return exts
}

// UnitKind classifies an extracted code unit.
type UnitKind string

const (
	// KindFunction is a free-standing function.
	KindFunction UnitKind = "function"

	// KindMethod is a function attached to a type or declared inside a class.
	KindMethod UnitKind = "method"

	// KindClass is a class, struct, or interface declaration.
	KindClass UnitKind = "class"

	// KindUnknown marks anonymous or otherwise unclassifiable units. These
	// are still extracted (so run statistics stay accurate) and rejected by
	// the quality filter downstream.
	KindUnknown UnitKind = "unknown"
)

// Location records where a unit came from. It is provenance metadata only
// and never participates in duplicate hashing.
type Location struct {
	Path      string `json:"path"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
}

// CodeUnit is the atomic extracted item: one function, method, or class
// together with its rendered header and any attached documentation.
type CodeUnit struct {
	Kind UnitKind `json:"kind"`

	// Name is the unit's identifier. Empty for anonymous forms (lambdas,
	// function literals); an empty name routes the unit to rejection rather
	// than dropping it silently.
	Name string `json:"name"`

	// Signature is the rendered header text: modifiers, parameter list, and
	// return type. Empty for grammars without a header concept.
	Signature string `json:"signature"`

	// Body is the exact source slice of the unit's implementation,
	// verbatim and never re-indented.
	Body string `json:"body"`

	// Documentation is the comment text attached immediately above the unit
	// in source, or empty.
	Documentation string `json:"documentation,omitempty"`

	Language Language `json:"language"`
	Location Location `json:"location"`
}

// Text returns the signature and body joined as the scoring and hashing
// input. Units without a signature contribute the body alone.
func (u CodeUnit) Text() string {
	if u.Signature == "" {
		return u.Body
	}
	return u.Signature + "\n" + u.Body
}
