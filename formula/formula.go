// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package formula

import (
	"errors"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// ErrCannotEvaluate means the formula does not apply to the given bindings.
var ErrCannotEvaluate = errors.New("cannot evaluate formula")

// MaxMagnitude bounds results. Larger values are not meaningful dollar
// amounts and would not survive conversion to int64.
const MaxMagnitude = 1e15

// Only numbers, operators, parentheses, and whitespace survive substitution
var allowed = regexp.MustCompile(`^[\d\s+\-*/().]+$`)

// Evaluate substitutes bindings into expr and computes the arithmetic result.
// A name bound to nil that appears in expr makes the whole formula inapplicable.
func Evaluate(expr string, bindings map[string]*float64) (float64, error) {
	names := make([]string, 0, len(bindings))
	for name := range bindings {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		word := regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\b`)
		if !word.MatchString(expr) {
			continue
		}
		value := bindings[name]
		if value == nil {
			return 0, ErrCannotEvaluate
		}
		literal := strconv.FormatFloat(*value, 'f', -1, 64)
		if *value < 0 {
			literal = "(" + literal + ")"
		}
		expr = word.ReplaceAllLiteralString(expr, literal)
	}

	if !allowed.MatchString(expr) {
		return 0, ErrCannotEvaluate
	}

	p := &parser{src: expr}
	result, err := p.parse()
	if err != nil {
		return 0, ErrCannotEvaluate
	}
	if math.IsNaN(result) || math.IsInf(result, 0) || math.Abs(result) > MaxMagnitude {
		return 0, ErrCannotEvaluate
	}
	return result, nil
}

var (
	errSyntax         = errors.New("syntax error")
	errDivisionByZero = errors.New("division by zero")
)

// parser is a recursive-descent evaluator over numeric literals and + - * / ( ).
//
//	expr   = term { ("+" | "-") term }
//	term   = unary { ("*" | "/") unary }
//	unary  = ("+" | "-") unary | primary
//	primary = number | "(" expr ")"
type parser struct {
	src string
	pos int
}

func (p *parser) parse() (float64, error) {
	v, err := p.expr()
	if err != nil {
		return 0, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return 0, errSyntax
	}
	return v, nil
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) && strings.IndexByte(" \t\r\n\f\v", p.src[p.pos]) >= 0 {
		p.pos++
	}
}

// peek returns the next non-space byte, or 0 at end of input
func (p *parser) peek() byte {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) expr() (float64, error) {
	left, err := p.term()
	if err != nil {
		return 0, err
	}
	for {
		op := p.peek()
		if op != '+' && op != '-' {
			return left, nil
		}
		p.pos++
		right, err := p.term()
		if err != nil {
			return 0, err
		}
		if op == '+' {
			left += right
		} else {
			left -= right
		}
	}
}

func (p *parser) term() (float64, error) {
	left, err := p.unary()
	if err != nil {
		return 0, err
	}
	for {
		op := p.peek()
		if op != '*' && op != '/' {
			return left, nil
		}
		p.pos++
		right, err := p.unary()
		if err != nil {
			return 0, err
		}
		if op == '*' {
			left *= right
		} else {
			if right == 0 {
				return 0, errDivisionByZero
			}
			left /= right
		}
	}
}

func (p *parser) unary() (float64, error) {
	switch p.peek() {
	case '-':
		p.pos++
		v, err := p.unary()
		return -v, err
	case '+':
		p.pos++
		return p.unary()
	}
	return p.primary()
}

func (p *parser) primary() (float64, error) {
	if p.peek() == '(' {
		p.pos++
		v, err := p.expr()
		if err != nil {
			return 0, err
		}
		if p.peek() != ')' {
			return 0, errSyntax
		}
		p.pos++
		return v, nil
	}
	return p.number()
}

func (p *parser) number() (float64, error) {
	p.skipSpace()
	start := p.pos
	dots := 0
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == '.' {
			dots++
		} else if c < '0' || c > '9' {
			break
		}
		p.pos++
	}
	lit := p.src[start:p.pos]
	if lit == "" || lit == "." || dots > 1 {
		return 0, errSyntax
	}
	return strconv.ParseFloat(lit, 64)
}
