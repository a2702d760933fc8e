// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package impact

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/danielhkuo/affectme/models"
)

func i64(v int64) *int64 { return &v }

func rentCapMeasure() models.MeasureDetail {
	return models.MeasureDetail{
		Measure: models.Measure{ID: "measure-1", Code: "Prop 33", Category: models.CategoryHousing},
		ImpactFormula: models.FormulaSet{
			{Name: "rent", ImpactFormula: models.ImpactFormula{
				Formula:     "monthlyRent * 0.05 * 12",
				Requires:    []string{"monthlyRent"},
				Description: "Annual savings from 5% rent cap",
			}},
		},
	}
}

func TestCalculate_Renter(t *testing.T) {
	profile := models.ImpactProfile{MonthlyRent: i64(2000), HouseholdSize: i64(2)}

	got := Calculate(rentCapMeasure(), profile)
	want := models.ImpactResult{
		MeasureID:   "measure-1",
		Impact:      "$1,200/year",
		Amount:      1200,
		Direction:   models.DirectionPositive,
		Explanation: "Annual savings from 5% rent cap",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Calculate() mismatch (-want +got):\n%s", diff)
	}
}

func TestCalculate_OwnerIneligible(t *testing.T) {
	profile := models.ImpactProfile{HomeValue: i64(500000), HouseholdSize: i64(2)}

	got := Calculate(rentCapMeasure(), profile)
	want := models.ImpactResult{
		MeasureID:   "measure-1",
		Impact:      "$0/year",
		Amount:      0,
		Direction:   models.DirectionNeutral,
		Explanation: NoImpactExplanation,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Calculate() mismatch (-want +got):\n%s", diff)
	}
}

func TestCalculate_SumsAndLastExplanationWins(t *testing.T) {
	measure := models.MeasureDetail{
		Measure: models.Measure{ID: "measure-7"},
		ImpactFormula: models.FormulaSet{
			{Name: "household", ImpactFormula: models.ImpactFormula{
				Formula:     "householdSize * 100",
				Requires:    []string{"householdSize"},
				Description: "Household credit",
			}},
			{Name: "broken", ImpactFormula: models.ImpactFormula{
				Formula:     "householdSize / 0",
				Requires:    []string{"householdSize"},
				Description: "Never contributes",
			}},
			{Name: "property", ImpactFormula: models.ImpactFormula{
				Formula:     "-homeValue * 0.001",
				Requires:    []string{"homeValue"},
				Description: "Property tax increase",
			}},
			{Name: "rent", ImpactFormula: models.ImpactFormula{
				Formula:     "monthlyRent * 12",
				Requires:    []string{"monthlyRent"},
				Description: "Rent effect",
			}},
		},
	}
	profile := models.ImpactProfile{HomeValue: i64(800000), HouseholdSize: i64(3)}

	got := Calculate(measure, profile)
	if got.Amount != -500 {
		t.Errorf("Amount = %d, want -500", got.Amount)
	}
	if got.Direction != models.DirectionNegative {
		t.Errorf("Direction = %s, want negative", got.Direction)
	}
	if got.Impact != "$500/year" {
		t.Errorf("Impact = %s, want $500/year", got.Impact)
	}
	if got.Explanation != "Property tax increase" {
		t.Errorf("Explanation = %q, want last contributing description", got.Explanation)
	}
}

func TestCalculate_RequiresUnboundVariable(t *testing.T) {
	// requires lists a variable that is not part of the profile bindings
	measure := models.MeasureDetail{
		Measure: models.Measure{ID: "m"},
		ImpactFormula: models.FormulaSet{
			{Name: "wage", ImpactFormula: models.ImpactFormula{
				Formula:     "hourlyWage * 2080",
				Requires:    []string{"hourlyWage"},
				Description: "Wage increase",
			}},
		},
	}
	got := Calculate(measure, models.ImpactProfile{HouseholdSize: i64(1)})
	if got.Direction != models.DirectionNeutral || got.Explanation != NoImpactExplanation {
		t.Errorf("expected neutral default, got %+v", got)
	}
}

func TestCalculate_DirectionUsesUnroundedTotal(t *testing.T) {
	measure := models.MeasureDetail{
		Measure: models.Measure{ID: "m"},
		ImpactFormula: models.FormulaSet{
			{Name: "tiny", ImpactFormula: models.ImpactFormula{
				Formula:     "householdSize * 0.1",
				Requires:    []string{"householdSize"},
				Description: "Tiny effect",
			}},
		},
	}
	got := Calculate(measure, models.ImpactProfile{HouseholdSize: i64(2)})
	if got.Amount != 0 {
		t.Errorf("Amount = %d, want 0", got.Amount)
	}
	if got.Direction != models.DirectionPositive {
		t.Errorf("Direction = %s, want positive", got.Direction)
	}
}

func TestCalculate_OutOfRangeAmountsAreSkipped(t *testing.T) {
	measure := models.MeasureDetail{
		Measure: models.Measure{ID: "m"},
		ImpactFormula: models.FormulaSet{
			{Name: "bond", ImpactFormula: models.ImpactFormula{
				Formula:     "homeValue * 1000",
				Requires:    []string{"homeValue"},
				Description: "Bond repayment",
			}},
		},
	}

	got := Calculate(measure, models.ImpactProfile{HomeValue: i64(9e18)})
	want := Neutral("m")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Calculate() mismatch (-want +got):\n%s", diff)
	}
}

func TestCalculate_TotalStaysInRange(t *testing.T) {
	rule := func(name, desc string) models.NamedFormula {
		return models.NamedFormula{Name: name, ImpactFormula: models.ImpactFormula{
			Formula:     "homeValue * 1000",
			Requires:    []string{"homeValue"},
			Description: desc,
		}}
	}
	measure := models.MeasureDetail{
		Measure:       models.Measure{ID: "m"},
		ImpactFormula: models.FormulaSet{rule("first", "First"), rule("second", "Second")},
	}

	// each rule alone is 6e14; together they would pass the bound
	got := Calculate(measure, models.ImpactProfile{HomeValue: i64(600_000_000_000)})
	if got.Amount != 600_000_000_000_000 || got.Direction != models.DirectionPositive {
		t.Errorf("expected only the first contribution, got %+v", got)
	}
	if got.Explanation != "First" {
		t.Errorf("Explanation = %q, want First", got.Explanation)
	}
}

func TestCalculate_Idempotent(t *testing.T) {
	profile := models.ImpactProfile{MonthlyRent: i64(2350), HouseholdSize: i64(4)}
	first := Calculate(rentCapMeasure(), profile)
	second := Calculate(rentCapMeasure(), profile)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("repeated Calculate() differs:\n%s", diff)
	}
}

func TestDirection(t *testing.T) {
	tests := []struct {
		amount float64
		want   string
	}{
		{1200, models.DirectionPositive},
		{0, models.DirectionNeutral},
		{-450, models.DirectionNegative},
	}
	for _, tt := range tests {
		if got := Direction(tt.amount); got != tt.want {
			t.Errorf("Direction(%v) = %s, want %s", tt.amount, got, tt.want)
		}
	}
}

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		amount float64
		want   string
	}{
		{1500, "$1,500/year"},
		{45, "$45/year"},
		{999.4, "$999/year"},
		{999.6, "$1,000/year"},
		{-450, "$450/year"},
		{-1234567, "$1,234,567/year"},
		{0, "$0/year"},
		{9e18, "$1,000,000,000,000,000/year"},
	}
	for _, tt := range tests {
		if got := FormatCurrency(tt.amount); got != tt.want {
			t.Errorf("FormatCurrency(%v) = %q, want %q", tt.amount, got, tt.want)
		}
	}
}
