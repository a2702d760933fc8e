// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package impact

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/affectme/formula"
	"github.com/danielhkuo/affectme/models"
)

// NoImpactExplanation is used when no formula contributes to the total.
const NoImpactExplanation = "No direct financial impact calculated"

// Bindings builds the formula variables from the numeric profile fields.
// Absent fields bind to nil.
func Bindings(p models.ImpactProfile) map[string]*float64 {
	return map[string]*float64{
		"homeValue":     toFloat(p.HomeValue),
		"monthlyRent":   toFloat(p.MonthlyRent),
		"householdSize": toFloat(p.HouseholdSize),
	}
}

func toFloat(v *int64) *float64 {
	if v == nil {
		return nil
	}
	f := float64(*v)
	return &f
}

// Calculate evaluates every eligible formula of the measure and sums the
// results. The explanation comes from the last formula that contributed.
func Calculate(measure models.MeasureDetail, profile models.ImpactProfile) models.ImpactResult {
	bindings := Bindings(profile)

	total := 0.0
	explanation := NoImpactExplanation
	for _, rule := range measure.ImpactFormula {
		if !eligible(rule.ImpactFormula, bindings) {
			continue
		}
		amount, err := formula.Evaluate(rule.Formula, bindings)
		if err != nil || math.Abs(total+amount) > formula.MaxMagnitude {
			continue
		}
		total += amount
		explanation = rule.Description
	}

	return models.ImpactResult{
		MeasureID:   measure.ID,
		Impact:      FormatCurrency(total),
		Amount:      int64(math.Round(total)),
		Direction:   Direction(total),
		Explanation: explanation,
	}
}

// eligible reports whether every required variable is bound
func eligible(f models.ImpactFormula, bindings map[string]*float64) bool {
	for _, name := range f.Requires {
		if bindings[name] == nil {
			return false
		}
	}
	return true
}

// Direction classifies an amount by its sign.
func Direction(amount float64) string {
	switch {
	case amount > 0:
		return models.DirectionPositive
	case amount < 0:
		return models.DirectionNegative
	default:
		return models.DirectionNeutral
	}
}

// FormatCurrency renders the whole-dollar magnitude of amount, e.g. "$1,500/year".
// The sign is carried by Direction.
func FormatCurrency(amount float64) string {
	dollars := int64(math.Round(math.Min(math.Abs(amount), formula.MaxMagnitude)))
	if dollars >= 1000 {
		return fmt.Sprintf("$%s/year", humanize.Comma(dollars))
	}
	return fmt.Sprintf("$%d/year", dollars)
}

// Neutral is the zero-impact result for a measure that could not be calculated.
func Neutral(measureID string) models.ImpactResult {
	return models.ImpactResult{
		MeasureID:   measureID,
		Impact:      FormatCurrency(0),
		Amount:      0,
		Direction:   models.DirectionNeutral,
		Explanation: NoImpactExplanation,
	}
}
