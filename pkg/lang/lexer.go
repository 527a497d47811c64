package lang

import (
	"strings"
	"unicode"

	"github.com/riftlang/rift/pkg/errdefs"
)

// Tokenize scans source text into a token stream. Comments are kept in the
// stream as TokenComment tokens; the parser skips them. Whitespace separates
// tokens and is never emitted.
func Tokenize(input string) ([]Token, error) {
	if strings.TrimSpace(input) == "" {
		return nil, nil
	}

	lx := &lexer{input: []rune(input), line: 1, column: 1}
	return lx.run()
}

type lexer struct {
	input  []rune
	pos    int
	line   int
	column int
}

func (lx *lexer) run() ([]Token, error) {
	var tokens []Token

	for lx.pos < len(lx.input) {
		ch := lx.input[lx.pos]

		switch {
		case ch == ' ' || ch == '\t':
			lx.advance()

		case ch == '\n':
			lx.pos++
			lx.line++
			lx.column = 1

		case ch == '\r':
			lx.pos++

		case ch == '/' && lx.peekAt(1) == '/':
			tokens = append(tokens, lx.scanComment())

		case isSymbol(ch):
			tokens = append(tokens, Token{Kind: TokenSymbol, Value: string(ch), Line: lx.line, Column: lx.column})
			lx.advance()

		case ch == '"':
			tok, err := lx.scanString()
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)

		case ch >= '0' && ch <= '9':
			tokens = append(tokens, lx.scanNumber())

		case unicode.IsLetter(ch) || ch == '@' || ch == '_':
			tokens = append(tokens, lx.scanWord())

		default:
			return nil, errdefs.NewParse("unexpected character %q at line %d, column %d", string(ch), lx.line, lx.column)
		}
	}

	return tokens, nil
}

func (lx *lexer) advance() {
	lx.pos++
	lx.column++
}

func (lx *lexer) peekAt(offset int) rune {
	if lx.pos+offset >= len(lx.input) {
		return 0
	}
	return lx.input[lx.pos+offset]
}

func (lx *lexer) scanComment() Token {
	line, column := lx.line, lx.column
	lx.advance()
	lx.advance()

	var text strings.Builder
	for lx.pos < len(lx.input) && lx.input[lx.pos] != '\n' && lx.input[lx.pos] != '\r' {
		text.WriteRune(lx.input[lx.pos])
		lx.advance()
	}

	return Token{Kind: TokenComment, Value: text.String(), Line: line, Column: column}
}

func (lx *lexer) scanString() (Token, error) {
	line, column := lx.line, lx.column
	lx.advance()

	var value strings.Builder
	escaped := false

	for lx.pos < len(lx.input) {
		ch := lx.input[lx.pos]
		lx.advance()

		if escaped {
			switch ch {
			case 'n':
				value.WriteRune('\n')
			case 't':
				value.WriteRune('\t')
			case 'r':
				value.WriteRune('\r')
			case '\\':
				value.WriteRune('\\')
			case '"':
				value.WriteRune('"')
			default:
				value.WriteRune('\\')
				value.WriteRune(ch)
			}
			escaped = false
			continue
		}

		switch ch {
		case '\\':
			escaped = true
		case '"':
			return Token{Kind: TokenString, Value: value.String(), Line: line, Column: column}, nil
		case '\n':
			lx.line++
			lx.column = 1
			value.WriteRune(ch)
		default:
			value.WriteRune(ch)
		}
	}

	return Token{}, errdefs.NewParse("unterminated string starting at line %d, column %d", line, column)
}

func (lx *lexer) scanNumber() Token {
	line, column := lx.line, lx.column

	var number strings.Builder
	for lx.pos < len(lx.input) {
		ch := lx.input[lx.pos]
		if (ch < '0' || ch > '9') && ch != '.' {
			break
		}
		number.WriteRune(ch)
		lx.advance()
	}

	return Token{Kind: TokenNumber, Value: number.String(), Line: line, Column: column}
}

func (lx *lexer) scanWord() Token {
	line, column := lx.line, lx.column

	var word strings.Builder
	word.WriteRune(lx.input[lx.pos])
	lx.advance()

	for lx.pos < len(lx.input) {
		ch := lx.input[lx.pos]
		if !unicode.IsLetter(ch) && !unicode.IsDigit(ch) && ch != '_' {
			break
		}
		word.WriteRune(ch)
		lx.advance()
	}

	kind := TokenIdentifier
	if IsKeyword(word.String()) {
		kind = TokenKeyword
	}

	return Token{Kind: kind, Value: word.String(), Line: line, Column: column}
}

func isSymbol(ch rune) bool {
	switch ch {
	case '{', '}', ';', '=', ',', '(', ')':
		return true
	}
	return false
}
