package percolate

import (
	"fmt"
	"strings"

	h3 "github.com/uber/h3-go/v4"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokLParen
	tokRParen
	tokStar
	tokAnd
	tokOr
	tokNot
	tokH3In
	tokLLWithin
	tokColon
	tokEq
	tokLt
	tokLe
	tokGt
	tokGe
	tokIdent
	tokPhrase
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

// nonIdentRunes are the characters that terminate a bare identifier,
// per spec.md §4.5's NON_IDENT set.
const nonIdentRunes = "\\ \t\n\"():*<>="

func isIdentRune(r rune) bool {
	return !strings.ContainsRune(nonIdentRunes, r)
}

// lex tokenizes s per the grammar in spec.md §4.5. Reserved words
// (AND, OR, NOT, H3IN, LLWITHIN) are recognized case-sensitively.
func lex(s string) ([]token, error) {
	var toks []token
	runes := []rune(s)
	i := 0
	for i < len(runes) {
		r := runes[i]
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			i++
		case r == '(':
			toks = append(toks, token{tokLParen, "(", i})
			i++
		case r == ')':
			toks = append(toks, token{tokRParen, ")", i})
			i++
		case r == '*':
			toks = append(toks, token{tokStar, "*", i})
			i++
		case r == ':':
			toks = append(toks, token{tokColon, ":", i})
			i++
		case r == '=':
			toks = append(toks, token{tokEq, "=", i})
			i++
		case r == '<':
			if i+1 < len(runes) && runes[i+1] == '=' {
				toks = append(toks, token{tokLe, "<=", i})
				i += 2
			} else {
				toks = append(toks, token{tokLt, "<", i})
				i++
			}
		case r == '>':
			if i+1 < len(runes) && runes[i+1] == '=' {
				toks = append(toks, token{tokGe, ">=", i})
				i += 2
			} else {
				toks = append(toks, token{tokGt, ">", i})
				i++
			}
		case r == '"':
			start := i
			i++
			var sb strings.Builder
			closed := false
			for i < len(runes) {
				if runes[i] == '\\' && i+1 < len(runes) {
					sb.WriteRune(runes[i+1])
					i += 2
					continue
				}
				if runes[i] == '"' {
					i++
					closed = true
					break
				}
				sb.WriteRune(runes[i])
				i++
			}
			if !closed {
				return nil, fmt.Errorf("unterminated quoted string at position %d", start)
			}
			toks = append(toks, token{tokPhrase, sb.String(), start})
		default:
			start := i
			for i < len(runes) && isIdentRune(runes[i]) {
				i++
			}
			if i == start {
				return nil, fmt.Errorf("unexpected character %q at position %d", r, i)
			}
			text := string(runes[start:i])
			toks = append(toks, token{identKind(text), text, start})
		}
	}
	toks = append(toks, token{tokEOF, "", len(runes)})
	return toks, nil
}

func identKind(text string) tokenKind {
	switch text {
	case "AND":
		return tokAnd
	case "OR":
		return tokOr
	case "NOT":
		return tokNot
	case "H3IN":
		return tokH3In
	case "LLWITHIN":
		return tokLLWithin
	default:
		return tokIdent
	}
}

// parser is a recursive-descent parser over the token stream produced
// by lex, implementing the grammar and lowering rules of spec.md §4.5.
type parser struct {
	toks []token
	pos  int
	errs []string
}

func (p *parser) cur() token {
	return p.toks[p.pos]
}

func (p *parser) advance() token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *parser) fail(format string, args ...any) {
	p.errs = append(p.errs, fmt.Sprintf(format, args...))
}

// ParseQuery parses s into a CNF Query per the grammar in spec.md
// §4.5. On failure, the returned error is a *ParseError carrying one
// diagnostic line per problem encountered.
func ParseQuery(s string) (*Query, error) {
	toks, err := lex(s)
	if err != nil {
		return nil, newParseError(err.Error())
	}
	p := &parser{toks: toks}
	q := p.parseOr()
	if p.cur().kind != tokEOF {
		p.fail("unexpected trailing input at position %d: %q", p.cur().pos, p.cur().text)
	}
	if len(p.errs) > 0 {
		return nil, newParseError(p.errs...)
	}
	return q, nil
}

func (p *parser) parseOr() *Query {
	left := p.parseAnd()
	for p.cur().kind == tokOr {
		p.advance()
		right := p.parseAnd()
		left = Or(left, right)
	}
	return left
}

func (p *parser) parseAnd() *Query {
	left := p.parseUnary()
	for p.cur().kind == tokAnd {
		p.advance()
		right := p.parseUnary()
		left = And(left, right)
	}
	return left
}

func (p *parser) parseUnary() *Query {
	negations := 0
	for p.cur().kind == tokNot {
		p.advance()
		negations++
	}
	q := p.parseAtomOrGroup()
	if negations%2 == 1 {
		q = Negate(q)
	}
	return q
}

func (p *parser) parseAtomOrGroup() *Query {
	if p.cur().kind == tokLParen {
		p.advance()
		var q *Query
		if op := p.cur().kind; op == tokAnd || op == tokOr {
			// Prefix form "(AND q1 q2 …)" / "(OR q1 q2 …)", as printed by
			// Query.String and Clause.String.
			p.advance()
			var operands []*Query
			for p.cur().kind != tokRParen && p.cur().kind != tokEOF {
				operands = append(operands, p.parseUnary())
			}
			if op == tokAnd {
				q = And(operands...)
			} else {
				q = Or(operands...)
			}
		} else {
			q = p.parseOr()
		}
		if p.cur().kind != tokRParen {
			p.fail("expected ')' at position %d, found %q", p.cur().pos, p.cur().text)
			return q
		}
		p.advance()
		return q
	}
	return p.parseAtom()
}

func (p *parser) parseAtom() *Query {
	identTok := p.cur()
	if identTok.kind != tokIdent {
		p.fail("expected field identifier at position %d, found %q", identTok.pos, identTok.text)
		p.advance()
		return &Query{}
	}
	p.advance()

	opTok := p.advance()
	var opStr string
	switch opTok.kind {
	case tokColon:
		opStr = ":"
	case tokEq:
		opStr = "="
	case tokLt:
		opStr = "<"
	case tokLe:
		opStr = "<="
	case tokGt:
		opStr = ">"
	case tokGe:
		opStr = ">="
	case tokH3In:
		opStr = "H3IN"
	case tokLLWithin:
		opStr = "LLWITHIN"
	default:
		p.fail("expected operator at position %d, found %q", opTok.pos, opTok.text)
		return &Query{}
	}

	// A "~" before the field marks a negated literal, as printed by
	// Literal.String.
	field, negated := strings.CutPrefix(identTok.text, "~")
	value, isPrefix := p.parseFValue()
	q := atomToQuery(field, opStr, value, isPrefix)
	if negated {
		q = Negate(q)
	}
	return q
}

func (p *parser) parseFValue() (string, bool) {
	t := p.cur()
	switch t.kind {
	case tokPhrase:
		p.advance()
		if p.cur().kind == tokStar {
			p.advance()
			return t.text, true
		}
		return t.text, false
	case tokIdent:
		p.advance()
		if p.cur().kind == tokStar {
			p.advance()
			return t.text, true
		}
		return t.text, false
	default:
		p.fail("expected value at position %d, found %q", t.pos, t.text)
		return "", false
	}
}

// atomToQuery lowers one parsed atom to its CNF query, per the
// lowering rules of spec.md §4.5.
func atomToQuery(field, op, value string, isPrefix bool) *Query {
	if isPrefix {
		return PrefixQ(field, value)
	}
	switch op {
	case "H3IN":
		if cell, err := h3.IndexFromString(value); err == nil {
			return H3InsideQ(field, cell)
		}
		return TermQ(field, value)
	case "LLWITHIN":
		if center, radius, ok := parseLatLngWithin(value); ok {
			return LatLngWithinQ(field, center, radius)
		}
		return TermQ(field, value)
	case "<", "<=", "=", ">=", ">":
		if pivot, ok := parseOrderedPivot(value); ok {
			return OrderedQ(field, pivot, orderingFromOp(op))
		}
		return TermQ(field, value)
	default:
		return TermQ(field, value)
	}
}

func orderingFromOp(op string) Ordering {
	switch op {
	case "<":
		return OpLT
	case "<=":
		return OpLE
	case "=":
		return OpEQ
	case ">=":
		return OpGE
	case ">":
		return OpGT
	default:
		return OpEQ
	}
}
