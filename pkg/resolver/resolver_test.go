package resolver

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/riftlang/rift/pkg/errdefs"
)

// fakeNode is a handwritten syntax tree node for resolver tests.
type fakeNode struct {
	kind     string
	fields   map[string]*fakeNode
	children []*fakeNode
	start    int
	end      int
}

func (f *fakeNode) Kind() string { return f.kind }

func (f *fakeNode) ChildByField(name string) Node {
	child, ok := f.fields[name]
	if !ok || child == nil {
		return nil
	}
	return child
}

func (f *fakeNode) ChildCount() int { return len(f.children) }

func (f *fakeNode) Child(i int) Node {
	if i < 0 || i >= len(f.children) {
		return nil
	}
	return f.children[i]
}

func (f *fakeNode) StartByte() int { return f.start }
func (f *fakeNode) EndByte() int   { return f.end }

// fakeAdapter returns a prebuilt tree regardless of source.
type fakeAdapter struct {
	root *fakeNode
	err  error
}

func (a *fakeAdapter) Parse(ctx context.Context, source []byte) (Node, error) {
	if a.err != nil {
		return nil, a.err
	}
	return a.root, nil
}

// span creates an import node whose "name" field covers source[start:end].
func importNode(kind string, start, end int) *fakeNode {
	return &fakeNode{
		kind: kind,
		fields: map[string]*fakeNode{
			"name": {kind: "dotted_name", start: start, end: end},
		},
	}
}

func TestResolveCollectsImports(t *testing.T) {
	// Source layout: "import numpy\nimport pandas\n"
	source := "import numpy\nimport pandas\n"
	root := &fakeNode{
		kind: "module",
		children: []*fakeNode{
			importNode("import_statement", 7, 12),
			importNode("import_statement", 20, 26),
		},
	}

	registry := NewRegistry()
	registry.Register("python", &fakeAdapter{root: root})

	deps, err := New(registry).Resolve(context.Background(), "python", source)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}

	want := []string{"numpy", "pandas"}
	if len(deps) != len(want) {
		t.Fatalf("got %d deps, want %d: %v", len(deps), len(want), deps)
	}
	for i, dep := range deps {
		if dep != want[i] {
			t.Errorf("deps[%d] = %q, want %q", i, dep, want[i])
		}
	}
}

func TestResolveUnknownLanguage(t *testing.T) {
	registry := NewRegistry()
	_, err := New(registry).Resolve(context.Background(), "cobol", "whatever")
	if err == nil {
		t.Fatal("expected error for unregistered language")
	}
	if errdefs.KindOf(err) != errdefs.KindUnsupportedLanguage {
		t.Errorf("got kind %q, want %q", errdefs.KindOf(err), errdefs.KindUnsupportedLanguage)
	}
	if !strings.Contains(err.Error(), "cobol") {
		t.Errorf("error %q should name the language", err)
	}
}

func TestResolvePreservesDuplicates(t *testing.T) {
	source := "import os\nimport os\n"
	root := &fakeNode{
		kind: "module",
		children: []*fakeNode{
			importNode("import_statement", 7, 9),
			importNode("import_statement", 17, 19),
		},
	}

	registry := NewRegistry()
	registry.Register("python", &fakeAdapter{root: root})

	deps, err := New(registry).Resolve(context.Background(), "python", source)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if len(deps) != 2 || deps[0] != "os" || deps[1] != "os" {
		t.Errorf("duplicates must be preserved, got %v", deps)
	}
}

func TestResolveNestedImports(t *testing.T) {
	// An import inside a function body is still collected, and traversal
	// order is depth-first pre-order.
	source := "import a\ndef f():\n    import b\nimport c\n"
	root := &fakeNode{
		kind: "module",
		children: []*fakeNode{
			importNode("import_statement", 7, 8),
			{
				kind: "function_definition",
				children: []*fakeNode{
					importNode("import_statement", 29, 30),
				},
			},
			importNode("import_statement", 38, 39),
		},
	}

	registry := NewRegistry()
	registry.Register("python", &fakeAdapter{root: root})

	deps, err := New(registry).Resolve(context.Background(), "python", source)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}

	want := []string{"a", "b", "c"}
	if len(deps) != 3 {
		t.Fatalf("got %v, want %v", deps, want)
	}
	for i := range want {
		if deps[i] != want[i] {
			t.Errorf("deps[%d] = %q, want %q", i, deps[i], want[i])
		}
	}
}

func TestResolveImportWithoutName(t *testing.T) {
	// Import nodes lacking a "name" field contribute nothing.
	root := &fakeNode{
		kind: "source_file",
		children: []*fakeNode{
			{kind: "import_declaration"},
			importNode("import_declaration", 8, 11),
		},
	}

	registry := NewRegistry()
	registry.Register("go", &fakeAdapter{root: root})

	deps, err := New(registry).Resolve(context.Background(), "go", `import "fmt"`)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if len(deps) != 1 || deps[0] != `fmt` {
		t.Errorf("got %v, want [fmt]", deps)
	}
}

func TestResolveNoImports(t *testing.T) {
	root := &fakeNode{
		kind: "module",
		children: []*fakeNode{
			{kind: "expression_statement"},
		},
	}

	registry := NewRegistry()
	registry.Register("python", &fakeAdapter{root: root})

	deps, err := New(registry).Resolve(context.Background(), "python", "print('hi')")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if len(deps) != 0 {
		t.Errorf("got %v, want no deps", deps)
	}
}

func TestResolveParseError(t *testing.T) {
	parseErr := errors.New("parser blew up")
	registry := NewRegistry()
	registry.Register("python", &fakeAdapter{err: parseErr})

	_, err := New(registry).Resolve(context.Background(), "python", "x")
	if !errors.Is(err, parseErr) {
		t.Errorf("got %v, want wrapped parse error", err)
	}
}

func TestRegistryAliases(t *testing.T) {
	adapter := &fakeAdapter{root: &fakeNode{kind: "program"}}
	registry := NewRegistry()
	registry.Register("javascript", adapter)
	registry.Alias("js", "javascript")

	got, ok := registry.Get("js")
	if !ok {
		t.Fatal("alias lookup failed")
	}
	if got != adapter {
		t.Error("alias resolved to a different adapter")
	}

	if _, ok := registry.Get("javascript"); !ok {
		t.Error("canonical name lookup failed")
	}
}

func TestRegistryLanguages(t *testing.T) {
	registry := NewRegistry()
	registry.Register("python", &fakeAdapter{})
	registry.Register("go", &fakeAdapter{})
	registry.Alias("js", "javascript")

	langs := registry.Languages()
	if len(langs) != 2 || langs[0] != "go" || langs[1] != "python" {
		t.Errorf("got %v, want sorted canonical names without aliases", langs)
	}
}

func TestDefaultRegistryCoverage(t *testing.T) {
	registry := NewDefaultRegistry()
	for _, lang := range []string{"python", "javascript", "js", "go", "cpp", "java", "php", "rust"} {
		if _, ok := registry.Get(lang); !ok {
			t.Errorf("default registry missing %q", lang)
		}
	}
}
