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
	"context"
	"fmt"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Parser wraps one Tree-sitter parser per supported language.
//
// Tree-sitter parsers are stateful, so Parser serializes access with a
// mutex. The curation pipeline is single-threaded within a run, but the
// duplicate detector's structure-hash mode re-parses through the same
// instance, and callers may share a Parser across parallel runs.
type Parser struct {
	mu      sync.Mutex
	parsers map[Language]*sitter.Parser
}

// NewParser creates a Parser with all supported grammars registered.
func NewParser() *Parser {
	grammars := map[Language]*sitter.Language{
		LangGo:         golang.GetLanguage(),
		LangPython:     python.GetLanguage(),
		LangJavaScript: javascript.GetLanguage(),
		LangTypeScript: typescript.GetLanguage(),
		LangJava:       java.GetLanguage(),
	}

	parsers := make(map[Language]*sitter.Parser, len(grammars))
	for lang, grammar := range grammars {
		p := sitter.NewParser()
		p.SetLanguage(grammar)
		parsers[lang] = p
	}

	return &Parser{parsers: parsers}
}

// Parse produces a concrete syntax tree for the given source. Tree-sitter
// is error-tolerant: malformed input yields a tree containing error nodes,
// never a parse failure. An error is returned only for unsupported
// languages or internal parser faults.
//
// The caller owns the returned tree and must Close it.
func (p *Parser) Parse(ctx context.Context, source []byte, lang Language) (*sitter.Tree, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	parser, ok := p.parsers[lang]
	if !ok {
		return nil, fmt.Errorf("unsupported language: %s", lang)
	}

	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse: %w", err)
	}
	return tree, nil
}

// Supported reports whether the parser has a grammar for lang.
func (p *Parser) Supported(lang Language) bool {
	_, ok := p.parsers[lang]
	return ok
}
