package lang

import (
	"strconv"

	"github.com/riftlang/rift/pkg/errdefs"
)

// ParseSource tokenizes and parses src in one step.
func ParseSource(src string) (*Program, error) {
	tokens, err := Tokenize(src)
	if err != nil {
		return nil, err
	}
	return Parse(tokens)
}

// Parse builds a Program from a token stream. Comment tokens are skipped.
// Stray semicolons are empty statements and ignored.
func Parse(tokens []Token) (*Program, error) {
	kept := make([]Token, 0, len(tokens))
	for _, tok := range tokens {
		if tok.Kind != TokenComment {
			kept = append(kept, tok)
		}
	}

	p := &parser{tokens: kept}
	program := &Program{}

	for !p.atEnd() {
		if p.atSymbol(";") {
			p.pos++
			continue
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		program.Children = append(program.Children, stmt)
	}

	return program, nil
}

type parser struct {
	tokens []Token
	pos    int
}

func (p *parser) atEnd() bool {
	return p.pos >= len(p.tokens)
}

func (p *parser) peek() (Token, bool) {
	if p.atEnd() {
		return Token{}, false
	}
	return p.tokens[p.pos], true
}

func (p *parser) next() (Token, error) {
	if p.atEnd() {
		return Token{}, errdefs.NewParse("unexpected end of input")
	}
	tok := p.tokens[p.pos]
	p.pos++
	return tok, nil
}

func (p *parser) atSymbol(sym string) bool {
	tok, ok := p.peek()
	return ok && tok.Kind == TokenSymbol && tok.Value == sym
}

func (p *parser) atKeyword(word string) bool {
	tok, ok := p.peek()
	return ok && tok.Kind == TokenKeyword && tok.Value == word
}

func (p *parser) expectSymbol(sym string) error {
	tok, err := p.next()
	if err != nil {
		return errdefs.NewParse("expected %q, got end of input", sym)
	}
	if tok.Kind != TokenSymbol || tok.Value != sym {
		return errdefs.NewParse("expected %q, got %q at line %d, column %d", sym, tok.Value, tok.Line, tok.Column)
	}
	return nil
}

func (p *parser) expectIdentifier(what string) (Token, error) {
	tok, err := p.next()
	if err != nil {
		return Token{}, errdefs.NewParse("expected %s, got end of input", what)
	}
	if tok.Kind != TokenIdentifier {
		return Token{}, errdefs.NewParse("expected %s, got %q at line %d, column %d", what, tok.Value, tok.Line, tok.Column)
	}
	return tok, nil
}

// expectName accepts an identifier or string token, for positions where the
// surface syntax allows either a bare word or a quoted name.
func (p *parser) expectName(what string) (Token, error) {
	tok, err := p.next()
	if err != nil {
		return Token{}, errdefs.NewParse("expected %s, got end of input", what)
	}
	if tok.Kind != TokenIdentifier && tok.Kind != TokenString {
		return Token{}, errdefs.NewParse("expected %s, got %q at line %d, column %d", what, tok.Value, tok.Line, tok.Column)
	}
	return tok, nil
}

func (p *parser) parseStatement() (Node, error) {
	tok, _ := p.peek()

	if tok.Kind == TokenKeyword {
		switch tok.Value {
		case "@rift":
			return p.parseRift()
		case "@task":
			return p.parseTask()
		case "@fuse":
			return p.parseFuse()
		case "@target":
			return p.parseTarget()
		case "@deploy":
			return p.parseDeploy()
		case "let":
			return p.parseLet()
		case "call":
			return p.parseCall()
		case "if":
			return p.parseIf()
		case "while":
			return p.parseWhile()
		default:
			return nil, errdefs.NewParse("unexpected keyword %q at line %d, column %d", tok.Value, tok.Line, tok.Column)
		}
	}

	// Bare literals parse fine; the interpreter rejects them at statement
	// position.
	return p.parseExpression()
}

func (p *parser) parseBlock() ([]Node, error) {
	if err := p.expectSymbol("{"); err != nil {
		return nil, err
	}

	var body []Node
	for !p.atSymbol("}") {
		if p.atEnd() {
			return nil, errdefs.NewParse("unexpected end of input, expected \"}\"")
		}
		if p.atSymbol(";") {
			p.pos++
			continue
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)
	}

	p.pos++
	return body, nil
}

func (p *parser) parseRift() (Node, error) {
	p.pos++
	name, err := p.expectIdentifier("rift name")
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &Rift{Name: name.Value, Body: body}, nil
}

func (p *parser) parseTask() (Node, error) {
	p.pos++
	name, err := p.expectIdentifier("task name")
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &Task{Name: name.Value, Body: body}, nil
}

func (p *parser) parseFuse() (Node, error) {
	p.pos++
	lang, err := p.expectName("fuse language")
	if err != nil {
		return nil, err
	}
	if err := p.expectSymbol("{"); err != nil {
		return nil, err
	}
	code, err := p.next()
	if err != nil {
		return nil, errdefs.NewParse("expected fuse code, got end of input")
	}
	if code.Kind != TokenString {
		return nil, errdefs.NewParse("expected quoted fuse code, got %q at line %d, column %d", code.Value, code.Line, code.Column)
	}
	if err := p.expectSymbol("}"); err != nil {
		return nil, err
	}
	return &Fuse{Language: lang.Value, Code: code.Value}, nil
}

func (p *parser) parseTarget() (Node, error) {
	p.pos++
	lang, err := p.expectName("target language")
	if err != nil {
		return nil, err
	}
	return &Target{Language: lang.Value}, nil
}

func (p *parser) parseDeploy() (Node, error) {
	p.pos++
	selector, err := p.expectName("deploy target")
	if err != nil {
		return nil, err
	}
	if err := p.expectSymbol("{"); err != nil {
		return nil, err
	}

	config := make(map[string]string)
	for !p.atSymbol("}") {
		if p.atEnd() {
			return nil, errdefs.NewParse("unexpected end of input in deploy config")
		}
		key, err := p.expectIdentifier("config key")
		if err != nil {
			return nil, err
		}
		if err := p.expectSymbol("="); err != nil {
			return nil, err
		}
		value, err := p.next()
		if err != nil {
			return nil, errdefs.NewParse("expected config value, got end of input")
		}
		if value.Kind != TokenString && value.Kind != TokenNumber && value.Kind != TokenIdentifier {
			return nil, errdefs.NewParse("invalid config value %q at line %d, column %d", value.Value, value.Line, value.Column)
		}
		config[key.Value] = value.Value
		if p.atSymbol(";") {
			p.pos++
		}
	}

	p.pos++
	return &Deploy{Selector: selector.Value, Config: config}, nil
}

func (p *parser) parseLet() (Node, error) {
	p.pos++
	name, err := p.expectIdentifier("variable name")
	if err != nil {
		return nil, err
	}
	if err := p.expectSymbol("="); err != nil {
		return nil, err
	}
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expectSymbol(";"); err != nil {
		return nil, err
	}
	return &Let{Name: name.Value, Value: value}, nil
}

func (p *parser) parseCall() (Node, error) {
	p.pos++
	name, err := p.next()
	if err != nil {
		return nil, errdefs.NewParse("expected call target, got end of input")
	}
	// Keywords are allowed so the builtin shows up as "call optimize".
	if name.Kind != TokenIdentifier && name.Kind != TokenKeyword {
		return nil, errdefs.NewParse("expected call target, got %q at line %d, column %d", name.Value, name.Line, name.Column)
	}

	if p.atKeyword("with") {
		p.pos++
	}

	var args []Node
	for !p.atSymbol(";") {
		if p.atEnd() {
			return nil, errdefs.NewParse("expected \";\" after call, got end of input")
		}
		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.atSymbol(",") {
			p.pos++
		}
	}

	p.pos++
	return &Call{Name: name.Value, Args: args}, nil
}

func (p *parser) parseIf() (Node, error) {
	p.pos++
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	var elseBody []Node
	if p.atKeyword("else") {
		p.pos++
		elseBody, err = p.parseBlock()
		if err != nil {
			return nil, err
		}
	}

	return &If{Cond: cond, Then: then, Else: elseBody}, nil
}

func (p *parser) parseWhile() (Node, error) {
	p.pos++
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &While{Cond: cond, Body: body}, nil
}

func (p *parser) parseExpression() (Node, error) {
	tok, err := p.next()
	if err != nil {
		return nil, errdefs.NewParse("expected expression, got end of input")
	}

	switch tok.Kind {
	case TokenNumber:
		n, convErr := strconv.Atoi(tok.Value)
		if convErr != nil {
			return nil, errdefs.NewParse("invalid number literal %q at line %d, column %d", tok.Value, tok.Line, tok.Column)
		}
		return &Number{Value: n}, nil
	case TokenString:
		return &String{Value: tok.Value}, nil
	case TokenIdentifier:
		return &Identifier{Name: tok.Value}, nil
	default:
		return nil, errdefs.NewParse("invalid expression %q at line %d, column %d", tok.Value, tok.Line, tok.Column)
	}
}
