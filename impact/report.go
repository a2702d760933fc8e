// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package impact

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/danielhkuo/affectme/metrics"
	"github.com/danielhkuo/affectme/models"
)

// MeasureReader loads a measure together with its formulas.
type MeasureReader interface {
	GetMeasure(ctx context.Context, id string) (models.MeasureDetail, error)
}

// Reporter computes the impact of every measure on a ballot.
type Reporter struct {
	measures    MeasureReader
	metrics     *metrics.Collector
	concurrency int
}

func NewReporter(measures MeasureReader, m *metrics.Collector, concurrency int) *Reporter {
	if concurrency <= 0 {
		concurrency = 8
	}
	return &Reporter{measures: measures, metrics: m, concurrency: concurrency}
}

// CalculateByID loads the measure and calculates its impact. Lookup errors
// are returned unchanged so callers can detect not-found.
func (r *Reporter) CalculateByID(ctx context.Context, measureID string, profile models.ImpactProfile) (models.ImpactResult, error) {
	detail, err := r.measures.GetMeasure(ctx, measureID)
	if err != nil {
		return models.ImpactResult{}, err
	}
	result := Calculate(detail, profile)
	r.metrics.ImpactCalculated(result.Direction)
	return result, nil
}

// Report fans out one calculation per measure and returns the results in
// the order of measures. A measure that fails to load gets a neutral result.
func (r *Reporter) Report(ctx context.Context, measures []models.Measure, profile models.ImpactProfile) []models.MeasureWithImpact {
	results := make([]models.MeasureWithImpact, len(measures))

	var g errgroup.Group
	g.SetLimit(r.concurrency)
	for i, m := range measures {
		g.Go(func() error {
			result, err := r.CalculateByID(ctx, m.ID, profile)
			if err != nil {
				slog.Warn("impact calculation failed, using neutral placeholder",
					"measure_id", m.ID,
					"error", err,
				)
				result = Neutral(m.ID)
			}
			results[i] = models.MeasureWithImpact{Measure: m, Impact: result}
			return nil
		})
	}
	_ = g.Wait()

	return results
}
