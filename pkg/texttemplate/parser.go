// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package texttemplate

import (
	"regexp"
	"strings"

	"carvel.dev/tempita/pkg/filepos"
)

var (
	forInRe   = regexp.MustCompile(`\s+in\s+`)
	varNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

type ParserOpts struct {
	KeepWhitespace bool
	LineOffset     int
}

// Parser turns the token stream into a tree of nodes
// by recursive descent over a cursor into the tokens.
type Parser struct {
	opts ParserOpts

	associatedName string
	tokens         []Token
	pos            int
}

func NewParser(opts ParserOpts) *Parser {
	return &Parser{opts: opts}
}

func (p *Parser) Parse(dataBs []byte, associatedName string) (*NodeRoot, error) {
	tokens, err := Lex(string(dataBs), LexOpts{
		Name:           associatedName,
		TrimWhitespace: !p.opts.KeepWhitespace,
		LineOffset:     p.opts.LineOffset,
	})
	if err != nil {
		return nil, err
	}
	return p.ParseTokens(tokens, associatedName)
}

// ParseTokens builds the tree from already lexed (and possibly trimmed) tokens.
func (p *Parser) ParseTokens(tokens []Token, associatedName string) (*NodeRoot, error) {
	p.associatedName = associatedName
	p.tokens = tokens
	p.pos = 0

	var nodes []Node
	for !p.done() {
		node, err := p.parseExpr(nil)
		if err != nil {
			return nil, err
		}
		if node != nil {
			nodes = append(nodes, node)
		}
	}
	return &NodeRoot{Items: nodes}, nil
}

type parseContext []string

func (c parseContext) with(marker string) parseContext {
	result := make(parseContext, 0, len(c)+1)
	return append(append(result, c...), marker)
}

func (c parseContext) has(marker string) bool {
	for _, m := range c {
		if m == marker {
			return true
		}
	}
	return false
}

func (p *Parser) done() bool { return p.pos >= len(p.tokens) }

func (p *Parser) peek() Token { return p.tokens[p.pos] }

func (p *Parser) next() Token {
	tok := p.tokens[p.pos]
	p.pos++
	return tok
}

// parseExpr consumes one node (which may be a whole block). Empty
// literals left behind by trimming yield a nil node.
func (p *Parser) parseExpr(ctx parseContext) (Node, error) {
	tok := p.peek()
	if !tok.Directive {
		p.pos++
		if len(tok.Text) == 0 {
			return nil, nil
		}
		return &NodeText{Content: tok.Text}, nil
	}

	meta := DirectiveMeta{tok.Text}

	switch {
	case meta.IsPy():
		p.pos++
		return p.parsePy(tok)

	case meta.IsLoopControl():
		p.pos++
		if !ctx.has("for") {
			return nil, p.newError(tok.Position, "%s outside of for loop", tok.Text)
		}
		if tok.Text == "continue" {
			return &NodeContinue{Position: tok.Position}, nil
		}
		return &NodeBreak{Position: tok.Position}, nil

	case meta.IsIf():
		return p.parseCond(ctx)

	case meta.IsElif() || meta.IsElse():
		return nil, p.newError(tok.Position, "%s outside of an if block", meta.Keyword())

	case meta.IsBareHeader():
		return nil, p.newError(tok.Position, "%s with no expression", tok.Text)

	case meta.IsEnd():
		return nil, p.newError(tok.Position, "Unexpected %s", tok.Text)

	case meta.IsFor():
		return p.parseFor(ctx)

	case meta.IsDefault():
		p.pos++
		return p.parseDefault(tok)

	case meta.IsInherit():
		p.pos++
		return &NodeInherit{Position: tok.Position, Code: strings.TrimSpace(tok.Text[len("inherit"):])}, nil

	case meta.IsComment():
		p.pos++
		return &NodeComment{Position: tok.Position, Content: tok.Text}, nil

	default:
		p.pos++
		return p.parseSubstitution(tok)
	}
}

func (p *Parser) parsePy(tok Token) (Node, error) {
	code := strings.TrimLeft(tok.Text[len("py:"):], " \t")

	if strings.HasPrefix(code, "\n") || strings.HasPrefix(code, "\r") {
		code = strings.TrimLeft(code, "\r\n")
		code = strings.ReplaceAll(code, "\r\n", "\n")
		code = strings.ReplaceAll(code, "\r", "\n")
		code += "\n"
	} else if strings.ContainsAny(code, "\r\n") {
		return nil, p.newError(tok.Position, "Multi-line py blocks must start with a newline")
	}

	return &NodePy{Position: tok.Position, Code: code}, nil
}

func (p *Parser) parseCond(ctx parseContext) (Node, error) {
	start := p.peek().Position
	ctx = ctx.with("if")

	cond := &NodeCond{Position: start}

	for {
		if p.done() {
			return nil, p.newError(start, "No {{endif}}")
		}

		tok := p.peek()
		meta := DirectiveMeta{tok.Text}

		if tok.Directive && meta.Text == "endif" {
			p.pos++
			return cond, nil
		}

		branch, err := p.parseBranch(ctx, start)
		if err != nil {
			return nil, err
		}
		cond.Branches = append(cond.Branches, branch)
	}
}

// parseBranch consumes one if/elif/else header and its body, stopping
// before the next branch header or endif.
func (p *Parser) parseBranch(ctx parseContext, condStart *filepos.Position) (*NodeBranch, error) {
	tok := p.next()
	meta := DirectiveMeta{tok.Text}

	branch := &NodeBranch{Position: tok.Position}

	switch {
	case meta.IsIf():
		branch.Kind = BranchIf
		branch.Cond = meta.HeaderExpr("if")
	case meta.IsElif():
		branch.Kind = BranchElif
		branch.Cond = meta.HeaderExpr("elif")
	case meta.IsElse():
		branch.Kind = BranchElse
	default:
		return nil, p.newError(tok.Position, "Unexpected %s in an if block", quoteRepr(tok.Text))
	}

	if branch.Kind != BranchElse && len(branch.Cond) == 0 {
		return nil, p.newError(tok.Position, "%s with no expression", branch.Kind)
	}

	for {
		if p.done() {
			return nil, p.newError(condStart, "No {{endif}}")
		}

		next := p.peek()
		if next.Directive {
			nextMeta := DirectiveMeta{next.Text}
			if next.Text == "endif" || nextMeta.IsElif() || nextMeta.IsElse() {
				return branch, nil
			}
		}

		node, err := p.parseExpr(ctx)
		if err != nil {
			return nil, err
		}
		if node != nil {
			branch.Body = append(branch.Body, node)
		}
	}
}

func (p *Parser) parseFor(ctx parseContext) (Node, error) {
	tok := p.next()
	ctx = ctx.with("for")

	header := DirectiveMeta{tok.Text}.HeaderExpr("for")

	loc := forInRe.FindStringIndex(header)
	if loc == nil {
		return nil, p.newError(tok.Position, `Bad for (no "in") in %s`, quoteRepr(header))
	}

	varsStr := header[:loc[0]]
	if strings.Contains(varsStr, "(") {
		return nil, p.newError(tok.Position,
			"You cannot have () in the variable section of a for loop (%s)", quoteRepr(varsStr))
	}

	var vars []string
	for _, v := range strings.Split(varsStr, ",") {
		if v = strings.TrimSpace(v); len(v) > 0 {
			vars = append(vars, v)
		}
	}
	if len(vars) == 0 {
		return nil, p.newError(tok.Position, "No variables in for loop (%s)", quoteRepr(header))
	}

	node := &NodeFor{
		Position: tok.Position,
		Vars:     vars,
		Iterable: strings.TrimSpace(header[loc[1]:]),
	}

	for {
		if p.done() {
			return nil, p.newError(tok.Position, "No {{endfor}}")
		}

		if next := p.peek(); next.Directive && next.Text == "endfor" {
			p.pos++
			return node, nil
		}

		child, err := p.parseExpr(ctx)
		if err != nil {
			return nil, err
		}
		if child != nil {
			node.Body = append(node.Body, child)
		}
	}
}

func (p *Parser) parseDefault(tok Token) (Node, error) {
	rest := strings.TrimSpace(tok.Text[len("default"):])

	pieces := strings.SplitN(rest, "=", 2)
	if len(pieces) == 1 {
		return nil, p.newError(tok.Position,
			"Expression must be {{default var=value}}; no = found in %s", quoteRepr(rest))
	}

	varName := strings.TrimSpace(pieces[0])
	if strings.Contains(varName, ",") {
		return nil, p.newError(tok.Position, "{{default x, y = ...}} is not supported")
	}
	if !varNameRe.MatchString(varName) {
		return nil, p.newError(tok.Position, "Not a valid variable name for {{default}}: %s", quoteRepr(varName))
	}

	return &NodeDefault{Position: tok.Position, Var: varName, Code: strings.TrimSpace(pieces[1])}, nil
}

func (p *Parser) parseSubstitution(tok Token) (Node, error) {
	pieces := splitFilters(tok.Text)

	node := &NodeExpr{Position: tok.Position, Code: strings.TrimSpace(pieces[0])}

	for _, piece := range pieces[1:] {
		piece = strings.TrimSpace(piece)
		switch {
		case len(piece) == 0:
			return nil, p.newError(tok.Position, "Empty filter in %s", quoteRepr(tok.Text))
		case isQuoted(piece):
			node.Filters = append(node.Filters, Filter{Literal: true, Content: piece[1 : len(piece)-1]})
		default:
			node.Filters = append(node.Filters, Filter{Content: piece})
		}
	}

	return node, nil
}

func (p *Parser) newError(pos *filepos.Position, msg string, args ...interface{}) *Error {
	return newError(ParseError, pos, p.associatedName, msg, args...)
}

// splitFilters splits an expression on `|` characters that are not
// inside quotes or brackets.
func splitFilters(code string) []string {
	var pieces []string
	var quote rune
	var escaped bool
	depth := 0
	last := 0

	for i, ch := range code {
		if quote != 0 {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == quote:
				quote = 0
			}
			continue
		}

		switch ch {
		case '"', '\'':
			quote = ch
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			if depth > 0 {
				depth--
			}
		case '|':
			if depth == 0 {
				pieces = append(pieces, code[last:i])
				last = i + 1
			}
		}
	}

	return append(pieces, code[last:])
}

func isQuoted(s string) bool {
	return len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0]
}
