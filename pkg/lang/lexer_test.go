package lang

import (
	"strings"
	"testing"

	"github.com/riftlang/rift/pkg/errdefs"
)

func TestTokenizeBasic(t *testing.T) {
	input := `@rift test { @fuse "python" { "print('hello')" } }`
	tokens, err := Tokenize(input)
	if err != nil {
		t.Fatalf("Tokenize() error = %v", err)
	}

	if len(tokens) != 9 {
		t.Fatalf("len(tokens) = %d, want 9", len(tokens))
	}
	if tokens[0].Value != "@rift" || tokens[0].Kind != TokenKeyword {
		t.Errorf("tokens[0] = %+v, want keyword @rift", tokens[0])
	}
	if tokens[1].Value != "test" || tokens[1].Kind != TokenIdentifier {
		t.Errorf("tokens[1] = %+v, want identifier test", tokens[1])
	}
}

func TestTokenizeStringEscaping(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"newline", `"hello\nworld"`, "hello\nworld"},
		{"tab", `"a\tb"`, "a\tb"},
		{"backslash", `"c:\\path"`, `c:\path`},
		{"quote", `"say \"hi\""`, `say "hi"`},
		{"unknown escape kept", `"100\%"`, `100\%`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := Tokenize(tt.input)
			if err != nil {
				t.Fatalf("Tokenize() error = %v", err)
			}
			if len(tokens) != 1 {
				t.Fatalf("len(tokens) = %d, want 1", len(tokens))
			}
			if tokens[0].Kind != TokenString || tokens[0].Value != tt.want {
				t.Errorf("token = %+v, want string %q", tokens[0], tt.want)
			}
		})
	}
}

func TestTokenizeNumbers(t *testing.T) {
	tokens, err := Tokenize("123 45.67")
	if err != nil {
		t.Fatalf("Tokenize() error = %v", err)
	}

	if len(tokens) != 2 {
		t.Fatalf("len(tokens) = %d, want 2", len(tokens))
	}
	if tokens[0].Value != "123" || tokens[0].Kind != TokenNumber {
		t.Errorf("tokens[0] = %+v, want number 123", tokens[0])
	}
	if tokens[1].Value != "45.67" || tokens[1].Kind != TokenNumber {
		t.Errorf("tokens[1] = %+v, want number 45.67", tokens[1])
	}
}

func TestTokenizeComments(t *testing.T) {
	tokens, err := Tokenize("test // this is a comment\n@rift")
	if err != nil {
		t.Fatalf("Tokenize() error = %v", err)
	}

	if len(tokens) != 3 {
		t.Fatalf("len(tokens) = %d, want 3", len(tokens))
	}
	if tokens[1].Kind != TokenComment {
		t.Errorf("tokens[1].Kind = %q, want comment", tokens[1].Kind)
	}
	if tokens[1].Value != " this is a comment" {
		t.Errorf("tokens[1].Value = %q", tokens[1].Value)
	}
	if tokens[2].Value != "@rift" || tokens[2].Line != 2 {
		t.Errorf("tokens[2] = %+v, want @rift on line 2", tokens[2])
	}
}

func TestTokenizeUnexpectedCharacter(t *testing.T) {
	_, err := Tokenize("test $ invalid")
	if err == nil {
		t.Fatal("Tokenize() error = nil, want parse error")
	}
	if !errdefs.IsKind(err, errdefs.KindParse) {
		t.Errorf("error kind = %q, want parse_error", errdefs.KindOf(err))
	}
	if !strings.Contains(err.Error(), "line 1") {
		t.Errorf("error %q should carry the position", err)
	}
}

func TestTokenizeUnterminatedString(t *testing.T) {
	_, err := Tokenize(`let x = "oops`)
	if err == nil {
		t.Fatal("Tokenize() error = nil, want parse error")
	}
	if !strings.Contains(err.Error(), "unterminated string") {
		t.Errorf("error = %q, want unterminated string", err)
	}
}

func TestTokenizeEmpty(t *testing.T) {
	for _, input := range []string{"", "   ", "\n\t  \n"} {
		tokens, err := Tokenize(input)
		if err != nil {
			t.Errorf("Tokenize(%q) error = %v", input, err)
		}
		if len(tokens) != 0 {
			t.Errorf("Tokenize(%q) = %d tokens, want 0", input, len(tokens))
		}
	}
}

func TestTokenizePositions(t *testing.T) {
	tokens, err := Tokenize("let x = 5;\nlet y = 6;")
	if err != nil {
		t.Fatalf("Tokenize() error = %v", err)
	}

	// 5 tokens per line.
	if len(tokens) != 10 {
		t.Fatalf("len(tokens) = %d, want 10", len(tokens))
	}
	if tokens[0].Line != 1 || tokens[0].Column != 1 {
		t.Errorf("tokens[0] at %d:%d, want 1:1", tokens[0].Line, tokens[0].Column)
	}
	if tokens[5].Line != 2 || tokens[5].Column != 1 {
		t.Errorf("tokens[5] at %d:%d, want 2:1", tokens[5].Line, tokens[5].Column)
	}
	if tokens[3].Value != "5" || tokens[3].Column != 9 {
		t.Errorf("tokens[3] = %+v, want 5 at column 9", tokens[3])
	}
}

func TestTokenizeKeywords(t *testing.T) {
	input := "@rift @fuse @task @target @deploy let call if else while with optimize"
	tokens, err := Tokenize(input)
	if err != nil {
		t.Fatalf("Tokenize() error = %v", err)
	}

	if len(tokens) != 12 {
		t.Fatalf("len(tokens) = %d, want 12", len(tokens))
	}
	for _, tok := range tokens {
		if tok.Kind != TokenKeyword {
			t.Errorf("token %q kind = %q, want keyword", tok.Value, tok.Kind)
		}
	}

	// A keyword prefix with a suffix is a plain identifier.
	tokens, err = Tokenize("@rift2 letme")
	if err != nil {
		t.Fatalf("Tokenize() error = %v", err)
	}
	for _, tok := range tokens {
		if tok.Kind != TokenIdentifier {
			t.Errorf("token %q kind = %q, want identifier", tok.Value, tok.Kind)
		}
	}
}

func TestTokenizeSymbols(t *testing.T) {
	tokens, err := Tokenize("{};=,()")
	if err != nil {
		t.Fatalf("Tokenize() error = %v", err)
	}

	want := []string{"{", "}", ";", "=", ",", "(", ")"}
	if len(tokens) != len(want) {
		t.Fatalf("len(tokens) = %d, want %d", len(tokens), len(want))
	}
	for i, w := range want {
		if tokens[i].Kind != TokenSymbol || tokens[i].Value != w {
			t.Errorf("tokens[%d] = %+v, want symbol %q", i, tokens[i], w)
		}
	}
}
