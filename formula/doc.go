// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package formula evaluates the arithmetic impact formulas stored with ballot
measures.

	v, err := formula.Evaluate("monthlyRent * 0.05 * 12", map[string]*float64{"monthlyRent": &rent})

Names are replaced as whole words by their bound values. The result must then
be plain arithmetic: numbers, whitespace, + - * / and parentheses. Anything
else, including a referenced name bound to nil, fails with ErrCannotEvaluate.
Nothing is ever executed as code.
*/
package formula
