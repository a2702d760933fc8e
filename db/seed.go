// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/danielhkuo/affectme/models"
)

//go:embed seed.yaml
var defaultSeed []byte

type seedFile struct {
	Ballots []seedBallot `yaml:"ballots"`
}

type seedBallot struct {
	ID           string        `yaml:"id"`
	State        string        `yaml:"state"`
	County       string        `yaml:"county"`
	ElectionDate string        `yaml:"election_date"`
	Measures     []seedMeasure `yaml:"measures"`
}

type seedMeasure struct {
	ID       string            `yaml:"id"`
	Code     string            `yaml:"code"`
	Title    string            `yaml:"title"`
	Summary  string            `yaml:"summary"`
	Category string            `yaml:"category"`
	Formulas models.FormulaSet `yaml:"impact_formula"`
}

// ParseSeed decodes a YAML seed document into ballots and their measures.
// Ballots without an id get a random one.
func ParseSeed(data []byte) ([]models.Ballot, [][]models.MeasureDetail, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, nil, fmt.Errorf("failed to parse seed: %w", err)
	}

	ballots := make([]models.Ballot, 0, len(f.Ballots))
	measures := make([][]models.MeasureDetail, 0, len(f.Ballots))
	for _, sb := range f.Ballots {
		if sb.ID == "" {
			sb.ID = uuid.NewString()
		}
		ballots = append(ballots, models.Ballot{
			ID:           sb.ID,
			State:        sb.State,
			County:       sb.County,
			ElectionDate: sb.ElectionDate,
		})

		details := make([]models.MeasureDetail, 0, len(sb.Measures))
		for _, sm := range sb.Measures {
			if sm.ID == "" {
				return nil, nil, fmt.Errorf("measure %q on ballot %s has no id", sm.Code, sb.ID)
			}
			details = append(details, models.MeasureDetail{
				Measure: models.Measure{
					ID:       sm.ID,
					BallotID: sb.ID,
					Code:     sm.Code,
					Title:    sm.Title,
					Summary:  sm.Summary,
					Category: sm.Category,
				},
				ImpactFormula: sm.Formulas,
			})
		}
		measures = append(measures, details)
	}
	return ballots, measures, nil
}

// Seed loads the embedded default ballots. Ballots that already exist for
// the same state and county are skipped.
func Seed(ctx context.Context, store *Store) error {
	return SeedFrom(ctx, store, defaultSeed)
}

// SeedFrom loads ballots from a YAML seed document
func SeedFrom(ctx context.Context, store *Store, data []byte) error {
	ballots, measures, err := ParseSeed(data)
	if err != nil {
		return err
	}

	for i, b := range ballots {
		_, err := store.GetBallot(ctx, b.State, b.County)
		if err == nil {
			slog.Info("ballot already seeded", "state", b.State, "county", b.County)
			continue
		}
		if !errors.Is(err, ErrNotFound) {
			return err
		}

		if err := store.InsertBallot(ctx, b, measures[i]); err != nil {
			return err
		}
		slog.Info("ballot seeded", "ballot_id", b.ID, "measures", len(measures[i]))
	}
	return nil
}
