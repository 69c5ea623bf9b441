// Copyright 2025 EngFlow Inc. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package parser turns a token stream into a tree of runtime Values: nested
// Cons lists terminated by Null, with literals allocated directly and
// reader-level quote sugar ('x) expanded into (quote x).
//
// Parsing uses a shift/reduce stack rather than recursion: each TokenOpen
// pushes a new list-in-progress frame, each TokenClose pops and reduces it
// into a single Cons-chain Value, and the top-level Parse result is the
// slice of forms reduced back to stack depth zero.
package parser

import (
	"fmt"

	"github.com/go-scm/goscm/internal/arena"
	"github.com/go-scm/goscm/internal/lexer"
	"github.com/go-scm/goscm/internal/value"
)

// SyntaxError reports a structurally malformed program: unbalanced
// parentheses or a misplaced dot.
type SyntaxError struct {
	Pos    int
	Reason string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("Syntax error: %s", e.Reason)
}

// frame accumulates the elements of one open list, plus the improper-list
// tail once a '.' has been seen inside it. quotes holds the quote-expansion
// count that was pending when the list was opened: it belongs to the reduced
// list as a whole, not to the first element inside it, so it is stashed here
// and re-applied when the frame is reduced.
type frame struct {
	elems    []*value.Value
	dotTail  *value.Value // set once a TokenDot has been reduced, nil otherwise
	sawDot   bool
	quotes   int
	openedAt int
}

// Parser converts a Token stream into top-level Values, allocating every
// node through an arena.Arena so the result participates in the same
// mark-sweep lifecycle as everything else the interpreter builds.
type Parser struct {
	a      *arena.Arena
	tokens []lexer.Token
	pos    int

	stack    []*frame
	topLevel []*value.Value
	// pendingQuotes counts consecutive TokenQuote markers seen since the
	// last shifted element, so 'x and ''x expand correctly.
	pendingQuotes int
}

// New constructs a Parser over tokens, allocating reduced Values through a.
func New(a *arena.Arena, tokens []lexer.Token) *Parser {
	return &Parser{a: a, tokens: tokens}
}

// Parse tokenizes-then-parses src in one call, the common case for drivers
// that don't need to reuse a Parser across incremental reads.
func Parse(a *arena.Arena, src string) ([]*value.Value, error) {
	tokens, err := lexer.Tokenize(src)
	if err != nil {
		return nil, err
	}
	return New(a, tokens).Parse()
}

// Parse consumes the whole token stream and returns the top-level forms it
// reduces to, in source order.
func (p *Parser) Parse() ([]*value.Value, error) {
	for p.pos < len(p.tokens) {
		tok := p.tokens[p.pos]
		switch tok.Type {
		case lexer.TokenOpen:
			p.pos++
			p.stack = append(p.stack, &frame{openedAt: tok.Pos, quotes: p.pendingQuotes})
			p.pendingQuotes = 0

		case lexer.TokenClose:
			if len(p.stack) == 0 {
				return nil, &SyntaxError{Pos: tok.Pos, Reason: "too many close parentheses"}
			}
			if p.pendingQuotes != 0 {
				return nil, &SyntaxError{Pos: tok.Pos, Reason: "expected a value after '''"}
			}
			p.pos++
			list, err := p.reduceTop()
			if err != nil {
				return nil, err
			}
			if err := p.shift(list); err != nil {
				return nil, err
			}

		case lexer.TokenQuote:
			p.pos++
			p.pendingQuotes++

		case lexer.TokenDot:
			if len(p.stack) == 0 || len(p.stack[len(p.stack)-1].elems) == 0 {
				return nil, &SyntaxError{Pos: tok.Pos, Reason: "misplaced '.'"}
			}
			p.pos++
			p.stack[len(p.stack)-1].sawDot = true

		default:
			v, err := p.literal(tok)
			if err != nil {
				return nil, err
			}
			p.pos++
			if err := p.shift(v); err != nil {
				return nil, err
			}
		}
	}

	if len(p.stack) != 0 {
		return nil, &SyntaxError{Pos: p.stack[len(p.stack)-1].openedAt, Reason: "not enough close parentheses"}
	}
	if p.pendingQuotes != 0 {
		return nil, &SyntaxError{Pos: p.tokens[len(p.tokens)-1].Pos, Reason: "expected a value after '''"}
	}
	return p.topLevel, nil
}

// literal allocates a leaf Value for a non-structural token.
func (p *Parser) literal(tok lexer.Token) (*value.Value, error) {
	switch tok.Type {
	case lexer.TokenInt:
		var n int64
		neg := false
		text := tok.Text
		if len(text) > 0 && (text[0] == '+' || text[0] == '-') {
			neg = text[0] == '-'
			text = text[1:]
		}
		for _, c := range []byte(text) {
			n = n*10 + int64(c-'0')
		}
		if neg {
			n = -n
		}
		return p.a.NewInt(n), nil
	case lexer.TokenDouble:
		d, err := parseFloat(tok.Text)
		if err != nil {
			return nil, &SyntaxError{Pos: tok.Pos, Reason: err.Error()}
		}
		return p.a.NewDouble(d), nil
	case lexer.TokenStr:
		return p.a.NewStr(tok.Text), nil
	case lexer.TokenSymbol:
		return p.a.NewSymbol(tok.Text), nil
	case lexer.TokenBool:
		return p.a.NewBool(tok.Text == "#t"), nil
	default:
		return nil, &SyntaxError{Pos: tok.Pos, Reason: "unexpected token " + tok.Type.String()}
	}
}

// parseFloat implements the implicit-leading/trailing-zero number grammar
// (".5", "-.25", "3.") without pulling in strconv's stricter format, so the
// lexer's accepted lexeme set and the parser's accepted literal set stay in
// lockstep by construction.
func parseFloat(text string) (float64, error) {
	neg := false
	if len(text) > 0 && (text[0] == '+' || text[0] == '-') {
		neg = text[0] == '-'
		text = text[1:]
	}
	var whole, frac float64
	var fracDiv float64 = 1
	seenDot := false
	for _, c := range []byte(text) {
		switch {
		case c == '.':
			if seenDot {
				return 0, fmt.Errorf("invalid double literal")
			}
			seenDot = true
		case c >= '0' && c <= '9':
			d := float64(c - '0')
			if !seenDot {
				whole = whole*10 + d
			} else {
				fracDiv *= 10
				frac += d / fracDiv
			}
		default:
			return 0, fmt.Errorf("invalid double literal")
		}
	}
	result := whole + frac
	if neg {
		result = -result
	}
	return result, nil
}

// shift places a fully-formed Value v: if quotes are pending, wraps it in
// the corresponding number of (quote ...) forms (innermost first, since 'x
// quotes whatever comes immediately after it); then either appends it to
// the frame on top of the stack, or - if the stack is empty - emits it as a
// completed top-level form.
func (p *Parser) shift(v *value.Value) error {
	for ; p.pendingQuotes > 0; p.pendingQuotes-- {
		v = p.a.List(p.a.NewSymbol("quote"), v)
	}
	if len(p.stack) == 0 {
		p.topLevel = append(p.topLevel, v)
		return nil
	}
	top := p.stack[len(p.stack)-1]
	if top.sawDot {
		if top.dotTail != nil {
			return &SyntaxError{Reason: "more than one value after '.'"}
		}
		top.dotTail = v
		return nil
	}
	top.elems = append(top.elems, v)
	return nil
}

// reduceTop pops the stack's top frame and builds the Cons chain it
// describes: a proper list if no dot was seen, or an improper list ending
// in dotTail otherwise. The frame's stashed quote count becomes pending
// again, so the shift that follows wraps the whole reduced list - '(1 2)
// is (quote (1 2)), not ((quote 1) 2).
func (p *Parser) reduceTop() (*value.Value, error) {
	top := p.stack[len(p.stack)-1]
	p.stack = p.stack[:len(p.stack)-1]
	p.pendingQuotes = top.quotes

	if top.sawDot && top.dotTail == nil {
		return nil, &SyntaxError{Pos: top.openedAt, Reason: "expected a value after '.'"}
	}

	tail := p.a.NewNull()
	if top.sawDot {
		tail = top.dotTail
	}
	result := tail
	for i := len(top.elems) - 1; i >= 0; i-- {
		result = p.a.NewCons(top.elems[i], result)
	}
	return result, nil
}
