package lang

import (
	"strings"
	"testing"

	"github.com/riftlang/rift/pkg/errdefs"
)

func mustParse(t *testing.T, src string) *Program {
	t.Helper()
	program, err := ParseSource(src)
	if err != nil {
		t.Fatalf("ParseSource(%q) error = %v", src, err)
	}
	return program
}

func TestParseRift(t *testing.T) {
	program := mustParse(t, `@rift hello { @fuse "python" { "print('hi')" } }`)

	if len(program.Children) != 1 {
		t.Fatalf("children = %d, want 1", len(program.Children))
	}
	rift, ok := program.Children[0].(*Rift)
	if !ok {
		t.Fatalf("child type = %T, want *Rift", program.Children[0])
	}
	if rift.Name != "hello" {
		t.Errorf("rift.Name = %q, want hello", rift.Name)
	}
	if len(rift.Body) != 1 {
		t.Fatalf("body = %d statements, want 1", len(rift.Body))
	}
	fuse, ok := rift.Body[0].(*Fuse)
	if !ok {
		t.Fatalf("body[0] type = %T, want *Fuse", rift.Body[0])
	}
	if fuse.Language != "python" || fuse.Code != "print('hi')" {
		t.Errorf("fuse = %+v", fuse)
	}
}

func TestParseTaskWithTargetAndCall(t *testing.T) {
	program := mustParse(t, `@task speedup { @target "rust" call optimize with hello; }`)

	task, ok := program.Children[0].(*Task)
	if !ok {
		t.Fatalf("child type = %T, want *Task", program.Children[0])
	}
	if task.Name != "speedup" {
		t.Errorf("task.Name = %q", task.Name)
	}
	if len(task.Body) != 2 {
		t.Fatalf("body = %d statements, want 2", len(task.Body))
	}

	target, ok := task.Body[0].(*Target)
	if !ok || target.Language != "rust" {
		t.Errorf("body[0] = %#v, want Target rust", task.Body[0])
	}

	call, ok := task.Body[1].(*Call)
	if !ok {
		t.Fatalf("body[1] type = %T, want *Call", task.Body[1])
	}
	if call.Name != "optimize" {
		t.Errorf("call.Name = %q, want optimize", call.Name)
	}
	if len(call.Args) != 1 {
		t.Fatalf("args = %d, want 1", len(call.Args))
	}
	if id, ok := call.Args[0].(*Identifier); !ok || id.Name != "hello" {
		t.Errorf("args[0] = %#v, want Identifier hello", call.Args[0])
	}
}

func TestParseLet(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want Node
	}{
		{"number", `let x = 5;`, &Number{Value: 5}},
		{"string", `let s = "hi";`, &String{Value: "hi"}},
		{"identifier", `let y = x;`, &Identifier{Name: "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			program := mustParse(t, tt.src)
			let, ok := program.Children[0].(*Let)
			if !ok {
				t.Fatalf("child type = %T, want *Let", program.Children[0])
			}
			switch want := tt.want.(type) {
			case *Number:
				got, ok := let.Value.(*Number)
				if !ok || got.Value != want.Value {
					t.Errorf("value = %#v, want %#v", let.Value, want)
				}
			case *String:
				got, ok := let.Value.(*String)
				if !ok || got.Value != want.Value {
					t.Errorf("value = %#v, want %#v", let.Value, want)
				}
			case *Identifier:
				got, ok := let.Value.(*Identifier)
				if !ok || got.Name != want.Name {
					t.Errorf("value = %#v, want %#v", let.Value, want)
				}
			}
		})
	}
}

func TestParseDeploy(t *testing.T) {
	program := mustParse(t, `@deploy "all" { api_key = "xyz"; contract = "0x123"; }`)

	deploy, ok := program.Children[0].(*Deploy)
	if !ok {
		t.Fatalf("child type = %T, want *Deploy", program.Children[0])
	}
	if deploy.Selector != "all" {
		t.Errorf("selector = %q, want all", deploy.Selector)
	}
	if deploy.Config["api_key"] != "xyz" || deploy.Config["contract"] != "0x123" {
		t.Errorf("config = %v", deploy.Config)
	}
}

func TestParseIfElse(t *testing.T) {
	program := mustParse(t, `if 1 { let x = 1; } else { let x = 2; }`)

	stmt, ok := program.Children[0].(*If)
	if !ok {
		t.Fatalf("child type = %T, want *If", program.Children[0])
	}
	cond, ok := stmt.Cond.(*Number)
	if !ok || cond.Value != 1 {
		t.Errorf("cond = %#v, want Number 1", stmt.Cond)
	}
	if len(stmt.Then) != 1 || len(stmt.Else) != 1 {
		t.Errorf("then = %d, else = %d statements, want 1 each", len(stmt.Then), len(stmt.Else))
	}
}

func TestParseWhile(t *testing.T) {
	program := mustParse(t, `while 0 { call tick; }`)

	stmt, ok := program.Children[0].(*While)
	if !ok {
		t.Fatalf("child type = %T, want *While", program.Children[0])
	}
	if len(stmt.Body) != 1 {
		t.Errorf("body = %d statements, want 1", len(stmt.Body))
	}
}

func TestParseCallArgList(t *testing.T) {
	program := mustParse(t, `call job 1, "two", three;`)

	call := program.Children[0].(*Call)
	if len(call.Args) != 3 {
		t.Fatalf("args = %d, want 3", len(call.Args))
	}
	if n, ok := call.Args[0].(*Number); !ok || n.Value != 1 {
		t.Errorf("args[0] = %#v", call.Args[0])
	}
	if s, ok := call.Args[1].(*String); !ok || s.Value != "two" {
		t.Errorf("args[1] = %#v", call.Args[1])
	}
	if id, ok := call.Args[2].(*Identifier); !ok || id.Name != "three" {
		t.Errorf("args[2] = %#v", call.Args[2])
	}
}

func TestParseCallNoArgs(t *testing.T) {
	program := mustParse(t, `call hello;`)

	call := program.Children[0].(*Call)
	if call.Name != "hello" || len(call.Args) != 0 {
		t.Errorf("call = %+v, want hello with no args", call)
	}
}

func TestParseBareLiteral(t *testing.T) {
	program := mustParse(t, `42;`)

	n, ok := program.Children[0].(*Number)
	if !ok || n.Value != 42 {
		t.Errorf("child = %#v, want Number 42", program.Children[0])
	}
}

func TestParseMultipleStatements(t *testing.T) {
	src := `
// setup
let count = 3;
@rift web { @fuse "javascript" { "console.log('up')" } }
call web;
`
	program := mustParse(t, src)
	if len(program.Children) != 3 {
		t.Fatalf("children = %d, want 3", len(program.Children))
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"missing semicolon", `let x = 5`, `expected ";"`},
		{"stray brace", `}`, "invalid expression"},
		{"decimal literal", `let x = 4.5;`, "invalid number literal"},
		{"call at eof", `call`, "end of input"},
		{"unclosed block", `@rift r { let x = 1;`, "end of input"},
		{"fuse code not quoted", `@fuse "python" { code }`, "quoted fuse code"},
		{"deploy bad value", `@deploy "all" { key = { }`, "invalid config value"},
		{"lone else", `else { }`, "unexpected keyword"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSource(tt.src)
			if err == nil {
				t.Fatalf("ParseSource(%q) error = nil, want parse error", tt.src)
			}
			if !errdefs.IsKind(err, errdefs.KindParse) {
				t.Errorf("error kind = %q, want parse_error", errdefs.KindOf(err))
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want substring %q", err, tt.want)
			}
		})
	}
}

func TestParseSkipsComments(t *testing.T) {
	program := mustParse(t, "let x = 1; // trailing\n// full line\nlet y = 2;")
	if len(program.Children) != 2 {
		t.Fatalf("children = %d, want 2", len(program.Children))
	}
}

func TestParseEmptySource(t *testing.T) {
	program := mustParse(t, "   \n  ")
	if len(program.Children) != 0 {
		t.Errorf("children = %d, want 0", len(program.Children))
	}
}
