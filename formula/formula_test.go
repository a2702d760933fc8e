// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package formula

import (
	"errors"
	"testing"
)

func num(v float64) *float64 { return &v }

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name     string
		expr     string
		bindings map[string]*float64
		want     float64
	}{
		{"rent cap", "monthlyRent * 0.05 * 12", map[string]*float64{"monthlyRent": num(2000)}, 1200},
		{"precedence", "2 + 3 * 4", nil, 14},
		{"left associative subtraction", "10 - 4 - 3", nil, 3},
		{"left associative division", "100 / 10 / 5", nil, 2},
		{"parentheses", "(2 + 3) * 4", nil, 20},
		{"unary minus", "-householdSize * 150", map[string]*float64{"householdSize": num(3)}, -450},
		{"negative binding", "2 - homeValue", map[string]*float64{"homeValue": num(-5)}, 7},
		{"leading decimal", ".5 * 10", nil, 5},
		{"unused null binding", "homeValue * 0.001", map[string]*float64{"homeValue": num(500000), "monthlyRent": nil}, 500},
		{"repeated variable", "householdSize * householdSize", map[string]*float64{"householdSize": num(4)}, 16},
		{"whitespace", "  1\t+\n2 ", nil, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(tt.expr, tt.bindings)
			if err != nil {
				t.Fatalf("Evaluate(%q) error: %v", tt.expr, err)
			}
			if got != tt.want {
				t.Errorf("Evaluate(%q) = %v, want %v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestEvaluate_CannotEvaluate(t *testing.T) {
	tests := []struct {
		name     string
		expr     string
		bindings map[string]*float64
	}{
		{"null referenced variable", "monthlyRent * 0.05 * 12", map[string]*float64{"monthlyRent": nil}},
		{"unknown identifier", "income * 0.1", map[string]*float64{"monthlyRent": num(100)}},
		{"statement injection", "monthlyRent; DROP", map[string]*float64{"monthlyRent": num(100)}},
		{"function call", "Math.max(1, 2)", nil},
		{"comma", "1, 2", nil},
		{"exponent operator", "2 ** 3", nil},
		{"division by zero", "monthlyRent / 0", map[string]*float64{"monthlyRent": num(100)}},
		{"zero divided by zero", "0 / (2 - 2)", nil},
		{"empty", "", nil},
		{"only whitespace", "   ", nil},
		{"unbalanced open", "(1 + 2", nil},
		{"unbalanced close", "1 + 2)", nil},
		{"two decimal points", "1.2.3 + 1", nil},
		{"adjacent numbers", "1 2", nil},
		{"dangling operator", "1 +", nil},
		{"lone dot", ". + 1", nil},
		{"beyond max magnitude", "homeValue * 1000", map[string]*float64{"homeValue": num(9e18)}},
		{"huge negative", "-1000000000000000 * 10", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Evaluate(tt.expr, tt.bindings)
			if !errors.Is(err, ErrCannotEvaluate) {
				t.Errorf("Evaluate(%q) error = %v, want ErrCannotEvaluate", tt.expr, err)
			}
		})
	}
}

func TestEvaluate_WholeWordSubstitution(t *testing.T) {
	// "rent" is bound to nil but only appears inside "monthlyRent"
	bindings := map[string]*float64{
		"rent":        nil,
		"monthlyRent": num(1000),
	}
	got, err := Evaluate("monthlyRent * 2", bindings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 2000 {
		t.Errorf("got %v, want 2000", got)
	}
}

func TestEvaluate_Deterministic(t *testing.T) {
	bindings := map[string]*float64{
		"homeValue":     num(750000),
		"monthlyRent":   nil,
		"householdSize": num(3),
	}
	first, err := Evaluate("homeValue * 0.0012 - householdSize * 40", bindings)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 50; i++ {
		got, err := Evaluate("homeValue * 0.0012 - householdSize * 40", bindings)
		if err != nil || got != first {
			t.Fatalf("run %d: got (%v, %v), want (%v, nil)", i, got, err, first)
		}
	}
}
