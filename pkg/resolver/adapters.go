package resolver

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/php"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/rust"
)

// sitterAdapter parses source with a tree-sitter grammar.
type sitterAdapter struct {
	language *sitter.Language
}

// NewTreeSitterAdapter wraps a tree-sitter grammar as an Adapter.
func NewTreeSitterAdapter(language *sitter.Language) Adapter {
	return &sitterAdapter{language: language}
}

func (a *sitterAdapter) Parse(ctx context.Context, source []byte) (Node, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(a.language)
	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, err
	}
	return sitterNode{n: tree.RootNode()}, nil
}

// sitterNode adapts *sitter.Node to the Node interface.
type sitterNode struct {
	n *sitter.Node
}

func (s sitterNode) Kind() string {
	return s.n.Type()
}

func (s sitterNode) ChildByField(name string) Node {
	child := s.n.ChildByFieldName(name)
	if child == nil {
		return nil
	}
	return sitterNode{n: child}
}

func (s sitterNode) ChildCount() int {
	return int(s.n.ChildCount())
}

func (s sitterNode) Child(i int) Node {
	child := s.n.Child(i)
	if child == nil {
		return nil
	}
	return sitterNode{n: child}
}

func (s sitterNode) StartByte() int {
	return int(s.n.StartByte())
}

func (s sitterNode) EndByte() int {
	return int(s.n.EndByte())
}

// NewDefaultRegistry returns a registry with adapters for every supported
// guest language. Registering a new language is one line here.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("python", NewTreeSitterAdapter(python.GetLanguage()))
	r.Register("javascript", NewTreeSitterAdapter(javascript.GetLanguage()))
	r.Register("go", NewTreeSitterAdapter(golang.GetLanguage()))
	r.Register("cpp", NewTreeSitterAdapter(cpp.GetLanguage()))
	r.Register("java", NewTreeSitterAdapter(java.GetLanguage()))
	r.Register("php", NewTreeSitterAdapter(php.GetLanguage()))
	r.Register("rust", NewTreeSitterAdapter(rust.GetLanguage()))
	r.Alias("js", "javascript")
	return r
}
