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
	"strings"
	"testing"
)

// extractAll parses source and returns every unit found in it.
func extractAll(t *testing.T, source string, lang Language) []CodeUnit {
	t.Helper()

	parser := NewParser()
	tree, err := parser.Parse(context.Background(), []byte(source), lang)
	if err != nil {
		t.Fatalf("parse %s source: %v", lang, err)
	}
	defer tree.Close()

	return NewExtractor().Extract(tree, []byte(source), lang, "test."+string(lang))
}

// findUnit returns the first unit with the given name, or fails the test.
func findUnit(t *testing.T, units []CodeUnit, name string) CodeUnit {
	t.Helper()
	for _, u := range units {
		if u.Name == name {
			return u
		}
	}
	t.Fatalf("unit %q not found; got %d units", name, len(units))
	return CodeUnit{}
}

// TestExtract_GoFunctionsAndMethods verifies the basic Go unit kinds:
// free functions, methods with receivers, and type declarations.
func TestExtract_GoFunctionsAndMethods(t *testing.T) {
	source := `package main

// Server holds the listener state.
type Server struct {
	port int
}

// Start begins accepting connections.
func (s *Server) Start() error {
	return s.listen()
}

func NewServer(port int) *Server {
	return &Server{port: port}
}
`
	units := extractAll(t, source, LangGo)

	server := findUnit(t, units, "Server")
	if server.Kind != KindClass {
		t.Errorf("Server kind = %s, want %s", server.Kind, KindClass)
	}
	if server.Documentation != "// Server holds the listener state." {
		t.Errorf("Server documentation = %q", server.Documentation)
	}

	start := findUnit(t, units, "Start")
	if start.Kind != KindMethod {
		t.Errorf("Start kind = %s, want %s", start.Kind, KindMethod)
	}
	if !strings.Contains(start.Signature, "(s *Server)") {
		t.Errorf("Start signature missing receiver: %q", start.Signature)
	}
	if !strings.HasPrefix(start.Body, "{") {
		t.Errorf("Start body should be the block slice, got %q", start.Body)
	}

	ns := findUnit(t, units, "NewServer")
	if ns.Kind != KindFunction {
		t.Errorf("NewServer kind = %s, want %s", ns.Kind, KindFunction)
	}
	if ns.Documentation != "" {
		t.Errorf("NewServer should have no documentation, got %q", ns.Documentation)
	}
	if ns.Location.StartLine != 13 {
		t.Errorf("NewServer start line = %d, want 13", ns.Location.StartLine)
	}
}

// TestExtract_GoNestedFunctionLiteral verifies that anonymous function
// literals are extracted as unnamed KindUnknown units rather than dropped.
func TestExtract_GoNestedFunctionLiteral(t *testing.T) {
	source := `package main

func outer() {
	inner := func() int {
		return 42
	}
	_ = inner()
}
`
	units := extractAll(t, source, LangGo)

	findUnit(t, units, "outer")

	foundAnon := false
	for _, u := range units {
		if u.Name == "" && u.Kind == KindUnknown {
			foundAnon = true
			if !strings.Contains(u.Body, "return 42") {
				t.Errorf("anonymous unit body = %q", u.Body)
			}
		}
	}
	if !foundAnon {
		t.Error("expected anonymous function literal to be extracted")
	}
}

// TestExtract_PythonClassAndMethods verifies that functions declared inside
// a class become methods and that the class itself is extracted.
func TestExtract_PythonClassAndMethods(t *testing.T) {
	source := `class Stack:
    """LIFO container."""

    def push(self, item):
        self.items.append(item)

    def pop(self):
        return self.items.pop()


def standalone():
    return 1
`
	units := extractAll(t, source, LangPython)

	stack := findUnit(t, units, "Stack")
	if stack.Kind != KindClass {
		t.Errorf("Stack kind = %s, want %s", stack.Kind, KindClass)
	}

	push := findUnit(t, units, "push")
	if push.Kind != KindMethod {
		t.Errorf("push kind = %s, want %s", push.Kind, KindMethod)
	}
	if !strings.HasPrefix(push.Signature, "def push(self, item):") {
		t.Errorf("push signature = %q", push.Signature)
	}

	standalone := findUnit(t, units, "standalone")
	if standalone.Kind != KindFunction {
		t.Errorf("standalone kind = %s, want %s", standalone.Kind, KindFunction)
	}
}

// TestExtract_PythonLambda verifies that lambdas come out unnamed with
// KindUnknown.
func TestExtract_PythonLambda(t *testing.T) {
	source := "double = lambda x: x * 2\n"
	units := extractAll(t, source, LangPython)

	if len(units) != 1 {
		t.Fatalf("expected 1 unit, got %d", len(units))
	}
	if units[0].Kind != KindUnknown || units[0].Name != "" {
		t.Errorf("lambda = kind %s name %q, want unknown/empty", units[0].Kind, units[0].Name)
	}
	// The unit must come from the lambda node, not the keyword token that
	// shares its type string.
	if units[0].Body != "x * 2" {
		t.Errorf("lambda body = %q, want %q", units[0].Body, "x * 2")
	}
}

// TestExtract_JavaScriptForms covers declarations, class methods, and
// anonymous arrow functions.
func TestExtract_JavaScriptForms(t *testing.T) {
	source := `// Parses a hex color string.
function parseColor(s) {
  return parseInt(s.slice(1), 16);
}

class Point {
  scale(f) {
    this.x *= f;
    this.y *= f;
  }
}

const double = (x) => x * 2;
`
	units := extractAll(t, source, LangJavaScript)

	pc := findUnit(t, units, "parseColor")
	if pc.Kind != KindFunction {
		t.Errorf("parseColor kind = %s, want %s", pc.Kind, KindFunction)
	}
	if pc.Documentation != "// Parses a hex color string." {
		t.Errorf("parseColor documentation = %q", pc.Documentation)
	}

	scale := findUnit(t, units, "scale")
	if scale.Kind != KindMethod {
		t.Errorf("scale kind = %s, want %s", scale.Kind, KindMethod)
	}

	point := findUnit(t, units, "Point")
	if point.Kind != KindClass {
		t.Errorf("Point kind = %s, want %s", point.Kind, KindClass)
	}

	foundArrow := false
	for _, u := range units {
		if u.Kind == KindUnknown && strings.Contains(u.Body, "x * 2") {
			foundArrow = true
		}
	}
	if !foundArrow {
		t.Error("expected anonymous arrow function to be extracted as unknown")
	}
}

// TestExtract_JavaMembers covers methods, constructors, and interfaces.
func TestExtract_JavaMembers(t *testing.T) {
	source := `/** Accumulates integers. */
public class Counter {
    private int total;

    public Counter(int start) {
        this.total = start;
    }

    public int add(int n) {
        total += n;
        return total;
    }
}

interface Resettable {
    void reset();
}
`
	units := extractAll(t, source, LangJava)

	counter := findUnit(t, units, "Counter")
	if counter.Kind != KindClass {
		t.Errorf("Counter kind = %s, want %s", counter.Kind, KindClass)
	}
	if counter.Documentation != "/** Accumulates integers. */" {
		t.Errorf("Counter documentation = %q", counter.Documentation)
	}

	add := findUnit(t, units, "add")
	if add.Kind != KindMethod {
		t.Errorf("add kind = %s, want %s", add.Kind, KindMethod)
	}
	if !strings.Contains(add.Signature, "public int add(int n)") {
		t.Errorf("add signature = %q", add.Signature)
	}

	iface := findUnit(t, units, "Resettable")
	if iface.Kind != KindClass {
		t.Errorf("Resettable kind = %s, want %s", iface.Kind, KindClass)
	}
}

// TestExtract_DocCommentContiguity verifies the blank-line rule: a comment
// separated from the unit by an empty line is not attached, and stacked
// contiguous comments are joined in source order.
func TestExtract_DocCommentContiguity(t *testing.T) {
	source := `package main

// detached comment

func first() {
	work()
}

// line one
// line two
func second() {
	work()
}
`
	units := extractAll(t, source, LangGo)

	first := findUnit(t, units, "first")
	if first.Documentation != "" {
		t.Errorf("first should have no documentation, got %q", first.Documentation)
	}

	second := findUnit(t, units, "second")
	want := "// line one\n// line two"
	if second.Documentation != want {
		t.Errorf("second documentation = %q, want %q", second.Documentation, want)
	}
}

// TestExtract_SyntaxErrorRecovery verifies that a malformed region does
// not block extraction of well-formed units elsewhere in the file. The
// garbled declaration sits after the function: an incomplete var before
// it would swallow the function header into its own error recovery.
func TestExtract_SyntaxErrorRecovery(t *testing.T) {
	source := `package main

func good() int {
	return 1
}

var broken =
`
	units := extractAll(t, source, LangGo)

	good := findUnit(t, units, "good")
	if good.Kind != KindFunction {
		t.Errorf("good kind = %s, want %s", good.Kind, KindFunction)
	}
	if !strings.Contains(good.Body, "return 1") {
		t.Errorf("good body = %q", good.Body)
	}
	for _, u := range units {
		if strings.Contains(u.Body, "var broken") {
			t.Errorf("malformed region extracted as a unit: %+v", u)
		}
	}
}

// TestExtract_UnitsInSourceOrder verifies that extraction order follows
// source order, which downstream batching depends on for determinism.
func TestExtract_UnitsInSourceOrder(t *testing.T) {
	source := `package main

func alpha() { work() }

func beta() { work() }

func gamma() { work() }
`
	units := extractAll(t, source, LangGo)

	var names []string
	for _, u := range units {
		names = append(names, u.Name)
	}
	want := []string{"alpha", "beta", "gamma"}
	if len(names) != len(want) {
		t.Fatalf("got %d units %v, want %v", len(names), names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("unit[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

// TestErrorCoverage_ValidAndGarbled exercises the re-parse support used by
// the quality filter.
func TestErrorCoverage_ValidAndGarbled(t *testing.T) {
	parser := NewParser()

	valid := []byte("package main\n\nfunc main() {\n\tprintln(\"ok\")\n}\n")
	tree, err := parser.Parse(context.Background(), valid, LangGo)
	if err != nil {
		t.Fatalf("parse valid: %v", err)
	}
	defer tree.Close()
	if cov := ErrorCoverage(tree, len(valid)); cov != 0 {
		t.Errorf("valid source coverage = %f, want 0", cov)
	}

	garbled := []byte("@@@ ]]] ??? ;;; )))")
	tree2, err := parser.Parse(context.Background(), garbled, LangGo)
	if err != nil {
		t.Fatalf("parse garbled: %v", err)
	}
	defer tree2.Close()
	if cov := ErrorCoverage(tree2, len(garbled)); cov < 0.5 {
		t.Errorf("garbled source coverage = %f, want >= 0.5", cov)
	}
}
