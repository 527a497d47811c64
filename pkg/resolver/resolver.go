// Package resolver extracts declared dependencies from guest-language code
// snippets by walking their concrete syntax trees.
package resolver

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/riftlang/rift/pkg/errdefs"
)

// Node is the minimal view of a concrete syntax tree node needed for
// dependency scanning. Byte offsets index into the source the node was
// parsed from.
type Node interface {
	// Kind returns the syntactic kind of the node, e.g. "import_statement".
	Kind() string

	// ChildByField returns the child bound to the given field name, or nil.
	ChildByField(name string) Node

	// ChildCount returns the number of children, named and anonymous.
	ChildCount() int

	// Child returns the i-th child.
	Child(i int) Node

	// StartByte returns the byte offset where the node's span begins.
	StartByte() int

	// EndByte returns the byte offset just past the node's span.
	EndByte() int
}

// Adapter parses source text for one guest language.
type Adapter interface {
	// Parse parses source and returns the root of its syntax tree.
	Parse(ctx context.Context, source []byte) (Node, error)
}

// Registry maps guest language names to their syntax tree adapters.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]Adapter
	aliases  map[string]string
}

// NewRegistry creates an empty adapter registry.
func NewRegistry() *Registry {
	return &Registry{
		adapters: make(map[string]Adapter),
		aliases:  make(map[string]string),
	}
}

// Register binds an adapter to a language name. Re-registering a language
// replaces the previous adapter.
func (r *Registry) Register(language string, adapter Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[language] = adapter
}

// Alias makes alias resolve to the adapter registered under language.
func (r *Registry) Alias(alias, language string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.aliases[alias] = language
}

// Get returns the adapter for a language, resolving aliases.
func (r *Registry) Get(language string) (Adapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if canonical, ok := r.aliases[language]; ok {
		language = canonical
	}
	adapter, ok := r.adapters[language]
	return adapter, ok
}

// Languages returns the registered canonical language names, sorted.
func (r *Registry) Languages() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolver scans snippets for import-like declarations.
type Resolver struct {
	registry *Registry
}

// New creates a resolver backed by the given adapter registry.
func New(registry *Registry) *Resolver {
	return &Resolver{registry: registry}
}

// Resolve parses code with the adapter registered for language and returns
// the textual span of the "name" child of every import node, in depth-first
// pre-order. Duplicates are preserved; installation downstream must be
// idempotent.
func (r *Resolver) Resolve(ctx context.Context, language, code string) ([]string, error) {
	adapter, ok := r.registry.Get(language)
	if !ok {
		return nil, errdefs.NewUnsupportedLanguage(language)
	}

	source := []byte(code)
	root, err := adapter.Parse(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("parsing %s snippet: %w", language, err)
	}

	var deps []string
	collectImports(root, source, &deps)
	return deps, nil
}

// collectImports walks the tree in pre-order, appending the source span of
// the "name" child of every import node. Import nodes without a "name"
// field are skipped.
func collectImports(node Node, source []byte, deps *[]string) {
	if node == nil {
		return
	}
	kind := node.Kind()
	if kind == "import_statement" || kind == "import_declaration" {
		if name := node.ChildByField("name"); name != nil {
			start, end := name.StartByte(), name.EndByte()
			if start >= 0 && end <= len(source) && start <= end {
				*deps = append(*deps, string(source[start:end]))
			}
		}
	}
	for i := 0; i < node.ChildCount(); i++ {
		collectImports(node.Child(i), source, deps)
	}
}
