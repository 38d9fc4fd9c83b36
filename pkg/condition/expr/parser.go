package expr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-extparams/pkg/condition"
)

// Parse turns a textual condition into a condition tree.
//
// Supported syntax:
//   - comparisons: `direction == "Import"`, `amount < 2`, `amount >= 1.5`
//   - negated equality: `mode != "fast"` (shorthand for `!(mode == "fast")`)
//   - boolean composition: `a == 1 && (b < 2 || !(c == "x"))`
//   - constants: `true` (empty and) and `false` (empty or)
//   - quoted parameter ids for ids that are not plain words:
//     "`1st id` == 1"
//
// Bare words on the right-hand side of a comparison are read as strings.
func Parse(input string) (condition.Condition, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return nil, errors.New("condition/expr: empty expression")
	}

	tokens, err := tokenize(trimmed)
	if err != nil {
		return nil, err
	}

	stream := &tokenStream{tokens: tokens}
	node, err := parseOr(stream)
	if err != nil {
		return nil, err
	}
	if stream.pos < len(stream.tokens) {
		return nil, fmt.Errorf("condition/expr: unexpected token %q", stream.tokens[stream.pos].raw)
	}
	return node, nil
}

// MustParse is Parse for static expressions; it panics on error.
func MustParse(input string) condition.Condition {
	cond, err := Parse(input)
	if err != nil {
		panic(err)
	}
	return cond
}

type tokenKind int

const (
	tokenIdentifier tokenKind = iota
	tokenString
	tokenNumber
	tokenBool
	tokenEq
	tokenNeq
	tokenLess
	tokenLessEq
	tokenGreater
	tokenGreaterEq
	tokenAnd
	tokenOr
	tokenNot
	tokenLParen
	tokenRParen
)

type token struct {
	kind tokenKind
	raw  string
}

func tokenize(input string) ([]token, error) {
	var tokens []token
	i := 0

	next := func() byte {
		if i >= len(input) {
			return 0
		}
		return input[i]
	}

	for i < len(input) {
		ch := input[i]
		if isSpace(ch) {
			i++
			continue
		}

		switch ch {
		case '(':
			i++
			tokens = append(tokens, token{kind: tokenLParen, raw: "("})
		case ')':
			i++
			tokens = append(tokens, token{kind: tokenRParen, raw: ")"})
		case '!':
			i++
			if next() == '=' {
				i++
				tokens = append(tokens, token{kind: tokenNeq, raw: "!="})
				continue
			}
			tokens = append(tokens, token{kind: tokenNot, raw: "!"})
		case '=':
			i++
			if next() != '=' {
				return nil, errors.New("condition/expr: unexpected '='; use '=='")
			}
			i++
			tokens = append(tokens, token{kind: tokenEq, raw: "=="})
		case '<':
			i++
			if next() == '=' {
				i++
				tokens = append(tokens, token{kind: tokenLessEq, raw: "<="})
				continue
			}
			tokens = append(tokens, token{kind: tokenLess, raw: "<"})
		case '>':
			i++
			if next() == '=' {
				i++
				tokens = append(tokens, token{kind: tokenGreaterEq, raw: ">="})
				continue
			}
			tokens = append(tokens, token{kind: tokenGreater, raw: ">"})
		case '&':
			i++
			if next() != '&' {
				return nil, errors.New("condition/expr: unexpected '&'; use '&&'")
			}
			i++
			tokens = append(tokens, token{kind: tokenAnd, raw: "&&"})
		case '|':
			i++
			if next() != '|' {
				return nil, errors.New("condition/expr: unexpected '|'; use '||'")
			}
			i++
			tokens = append(tokens, token{kind: tokenOr, raw: "||"})
		case '`':
			end := strings.IndexByte(input[i+1:], '`')
			if end < 0 {
				return nil, errors.New("condition/expr: unterminated quoted parameter")
			}
			if end == 0 {
				return nil, errors.New("condition/expr: empty quoted parameter")
			}
			tokens = append(tokens, token{kind: tokenIdentifier, raw: input[i+1 : i+1+end]})
			i += end + 2
		case '"', '\'':
			value, end, err := readString(input, i)
			if err != nil {
				return nil, err
			}
			i = end
			tokens = append(tokens, token{kind: tokenString, raw: value})
		default:
			start := i
			for i < len(input) && !isSpace(input[i]) && !isDelimiter(input[i]) {
				i++
			}
			raw := input[start:i]
			switch {
			case raw == "true" || raw == "false":
				tokens = append(tokens, token{kind: tokenBool, raw: raw})
			case looksLikeNumber(raw):
				if _, err := strconv.ParseFloat(raw, 64); err != nil {
					return nil, fmt.Errorf("condition/expr: invalid number literal %q", raw)
				}
				tokens = append(tokens, token{kind: tokenNumber, raw: raw})
			default:
				tokens = append(tokens, token{kind: tokenIdentifier, raw: raw})
			}
		}
	}

	return tokens, nil
}

func readString(input string, start int) (string, int, error) {
	quote := input[start]
	escaped := false
	for i := start + 1; i < len(input); i++ {
		c := input[i]
		if escaped {
			escaped = false
			continue
		}
		if c == '\\' {
			escaped = true
			continue
		}
		if c != quote {
			continue
		}
		body := input[start+1 : i]
		if quote == '\'' {
			body = strings.ReplaceAll(body, `\'`, `'`)
			body = strings.ReplaceAll(body, `"`, `\"`)
		}
		value, err := strconv.Unquote(`"` + body + `"`)
		if err != nil {
			return "", 0, fmt.Errorf("condition/expr: invalid string literal: %w", err)
		}
		return value, i + 1, nil
	}
	return "", 0, errors.New("condition/expr: unterminated string literal")
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isDelimiter(c byte) bool {
	switch c {
	case '(', ')', '!', '=', '<', '>', '&', '|', '"', '\'', '`':
		return true
	default:
		return false
	}
}

func looksLikeNumber(raw string) bool {
	if raw == "" {
		return false
	}
	ch := raw[0]
	return (ch >= '0' && ch <= '9') || ch == '-' || ch == '+' || ch == '.'
}

type tokenStream struct {
	tokens []token
	pos    int
}

func parseOr(stream *tokenStream) (condition.Condition, error) {
	first, err := parseAnd(stream)
	if err != nil {
		return nil, err
	}
	children := []condition.Condition{first}
	for stream.match(tokenOr) {
		next, err := parseAnd(stream)
		if err != nil {
			return nil, err
		}
		children = append(children, next)
	}
	if len(children) == 1 {
		return first, nil
	}
	return condition.Or{Children: children}, nil
}

func parseAnd(stream *tokenStream) (condition.Condition, error) {
	first, err := parseUnary(stream)
	if err != nil {
		return nil, err
	}
	children := []condition.Condition{first}
	for stream.match(tokenAnd) {
		next, err := parseUnary(stream)
		if err != nil {
			return nil, err
		}
		children = append(children, next)
	}
	if len(children) == 1 {
		return first, nil
	}
	return condition.And{Children: children}, nil
}

func parseUnary(stream *tokenStream) (condition.Condition, error) {
	if stream.match(tokenNot) {
		inner, err := parseUnary(stream)
		if err != nil {
			return nil, err
		}
		return condition.Not{Child: inner}, nil
	}
	return parsePrimary(stream)
}

func parsePrimary(stream *tokenStream) (condition.Condition, error) {
	if stream.match(tokenLParen) {
		inner, err := parseOr(stream)
		if err != nil {
			return nil, err
		}
		if !stream.match(tokenRParen) {
			return nil, errors.New("condition/expr: missing closing ')'")
		}
		return inner, nil
	}

	if tok, ok := stream.consume(tokenBool); ok {
		if tok.raw == "true" {
			return condition.And{}, nil
		}
		return condition.Or{}, nil
	}

	ident, ok := stream.consume(tokenIdentifier)
	if !ok {
		if stream.pos >= len(stream.tokens) {
			return nil, errors.New("condition/expr: unexpected end of expression")
		}
		return nil, fmt.Errorf("condition/expr: expected parameter, got %q", stream.tokens[stream.pos].raw)
	}

	if stream.pos >= len(stream.tokens) {
		return nil, fmt.Errorf("condition/expr: missing operator after %q", ident.raw)
	}
	opTok := stream.tokens[stream.pos]
	var (
		op      condition.Operator
		negated bool
	)
	switch opTok.kind {
	case tokenEq:
		op = condition.OpEqual
	case tokenNeq:
		op, negated = condition.OpEqual, true
	case tokenLess:
		op = condition.OpLess
	case tokenLessEq:
		op = condition.OpLessEqual
	case tokenGreater:
		op = condition.OpGreater
	case tokenGreaterEq:
		op = condition.OpGreaterEqual
	default:
		return nil, fmt.Errorf("condition/expr: expected comparison operator after %q, got %q", ident.raw, opTok.raw)
	}
	stream.pos++

	value, err := stream.consumeLiteral()
	if err != nil {
		return nil, err
	}

	var cmp condition.Condition = condition.Comparison{
		Parameter: ident.raw,
		Operator:  op,
		Value:     value,
	}
	if negated {
		cmp = condition.Not{Child: cmp}
	}
	return cmp, nil
}

func (s *tokenStream) match(kind tokenKind) bool {
	if s.pos >= len(s.tokens) || s.tokens[s.pos].kind != kind {
		return false
	}
	s.pos++
	return true
}

func (s *tokenStream) consume(kind tokenKind) (token, bool) {
	if s.pos >= len(s.tokens) || s.tokens[s.pos].kind != kind {
		return token{}, false
	}
	out := s.tokens[s.pos]
	s.pos++
	return out, true
}

func (s *tokenStream) consumeLiteral() (string, error) {
	if s.pos >= len(s.tokens) {
		return "", errors.New("condition/expr: missing literal")
	}
	tok := s.tokens[s.pos]
	s.pos++
	switch tok.kind {
	case tokenString, tokenNumber, tokenBool, tokenIdentifier:
		return tok.raw, nil
	default:
		return "", fmt.Errorf("condition/expr: expected literal, got %q", tok.raw)
	}
}
