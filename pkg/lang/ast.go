package lang

// Node is implemented by every AST variant. The interpreter switches on the
// concrete type; there is no shared behavior beyond membership.
type Node interface {
	node()
}

// Program is the root of a parsed source unit. Its children are scheduled as
// independent concurrent units of work by the interpreter.
type Program struct {
	Children []Node
}

// Rift declares a named body of statements. Declaring registers the body;
// it never executes it.
type Rift struct {
	Name string
	Body []Node
}

// Fuse embeds a foreign-language snippet to be executed through that
// language's toolchain.
type Fuse struct {
	Language string
	Code     string
}

// Task declares a named body, like Rift but with lower lookup precedence.
type Task struct {
	Name string
	Body []Node
}

// Target sets the translation target language for the optimize path.
type Target struct {
	Language string
}

// Deploy ships the compiled payload to the sinks matched by Selector.
type Deploy struct {
	Selector string
	Config   map[string]string
}

// Let binds a literal value to a variable name.
type Let struct {
	Name  string
	Value Node
}

// Call executes a registered rift or task, or the builtin optimize.
type Call struct {
	Name string
	Args []Node
}

// If runs Then when Cond is a nonzero number literal, Else otherwise.
type If struct {
	Cond Node
	Then []Node
	Else []Node
}

// While runs Body while Cond is a nonzero number literal, up to the
// interpreter's iteration ceiling.
type While struct {
	Cond Node
	Body []Node
}

// Number is an integer literal.
type Number struct {
	Value int
}

// String is a string literal with escapes already resolved.
type String struct {
	Value string
}

// Identifier is a variable reference in expression position.
type Identifier struct {
	Name string
}

func (*Program) node()    {}
func (*Rift) node()       {}
func (*Fuse) node()       {}
func (*Task) node()       {}
func (*Target) node()     {}
func (*Deploy) node()     {}
func (*Let) node()        {}
func (*Call) node()       {}
func (*If) node()         {}
func (*While) node()      {}
func (*Number) node()     {}
func (*String) node()     {}
func (*Identifier) node() {}
