// Package lang implements the Rift source language front end: the token
// stream, the lexer, the AST node types, and the parser that produces them.
package lang

// TokenKind classifies a lexed token.
type TokenKind string

const (
	TokenKeyword    TokenKind = "keyword"
	TokenIdentifier TokenKind = "identifier"
	TokenString     TokenKind = "string"
	TokenNumber     TokenKind = "number"
	TokenSymbol     TokenKind = "symbol"
	TokenComment    TokenKind = "comment"
)

// Token is a single lexed unit with its source position. Column counts from 1
// and points at the first character of the token.
type Token struct {
	Kind   TokenKind
	Value  string
	Line   int
	Column int
}

// keywords are the reserved words of the language. Directives start with '@';
// the rest are bare words.
var keywords = map[string]bool{
	"@rift":    true,
	"@fuse":    true,
	"@task":    true,
	"@target":  true,
	"@deploy":  true,
	"let":      true,
	"call":     true,
	"if":       true,
	"else":     true,
	"while":    true,
	"with":     true,
	"optimize": true,
}

// IsKeyword reports whether word is reserved.
func IsKeyword(word string) bool {
	return keywords[word]
}
