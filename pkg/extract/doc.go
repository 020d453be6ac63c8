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

// Package extract turns source files into uniform CodeUnit records.
//
// Parsing uses Tree-sitter grammars for Go, Python, JavaScript, TypeScript,
// and Java. Extraction is a single depth-first traversal driven by a
// per-language table mapping grammar node kinds to unit kinds; supporting a
// new language means registering its grammar in Parser and adding rows to
// the table in languages.go.
//
// Extracted units carry the verbatim body slice, a rendered signature, any
// contiguous preceding documentation comment, and source provenance. Units
// the grammar cannot name (lambdas, function literals) are extracted with
// an empty name and KindUnknown so downstream statistics stay accurate.
//
// Tree-sitter never fails on malformed input; it produces a tree with
// error nodes instead. The extractor skips the error nodes themselves but
// still descends into them, so well-formed units near a syntax error are
// recovered.
package extract
