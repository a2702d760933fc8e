// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/danielhkuo/affectme/models"
)

// ErrNotFound is returned when a ballot, measure, or profile does not exist.
var ErrNotFound = errors.New("record not found")

// Store is the relational record store for ballots, measures, and profiles.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// GetBallot finds the ballot for a state and county
func (s *Store) GetBallot(ctx context.Context, state, county string) (models.Ballot, error) {
	var b models.Ballot
	err := s.db.QueryRowContext(ctx, `
		SELECT id, state, county, election_date
		FROM ballot
		WHERE state = $1 AND county = $2
	`, state, county).Scan(&b.ID, &b.State, &b.County, &b.ElectionDate)
	if err == sql.ErrNoRows {
		return models.Ballot{}, ErrNotFound
	}
	if err != nil {
		return models.Ballot{}, fmt.Errorf("failed to query ballot: %w", err)
	}
	return b, nil
}

// ListMeasures returns the measures of a ballot in ballot order
func (s *Store) ListMeasures(ctx context.Context, ballotID string) ([]models.Measure, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, ballot_id, code, title, summary, category
		FROM measure
		WHERE ballot_id = $1
		ORDER BY sort_order, id
	`, ballotID)
	if err != nil {
		return nil, fmt.Errorf("failed to query measures: %w", err)
	}
	defer rows.Close()

	measures := []models.Measure{}
	for rows.Next() {
		var m models.Measure
		if err := rows.Scan(&m.ID, &m.BallotID, &m.Code, &m.Title, &m.Summary, &m.Category); err != nil {
			return nil, fmt.Errorf("failed to scan measure: %w", err)
		}
		measures = append(measures, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read measures: %w", err)
	}
	return measures, nil
}

// GetMeasure loads a measure and decodes its impact formulas
func (s *Store) GetMeasure(ctx context.Context, id string) (models.MeasureDetail, error) {
	var d models.MeasureDetail
	var formulas sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, ballot_id, code, title, summary, category, impact_formula
		FROM measure
		WHERE id = $1
	`, id).Scan(&d.ID, &d.BallotID, &d.Code, &d.Title, &d.Summary, &d.Category, &formulas)
	if err == sql.ErrNoRows {
		return models.MeasureDetail{}, ErrNotFound
	}
	if err != nil {
		return models.MeasureDetail{}, fmt.Errorf("failed to query measure: %w", err)
	}

	d.ImpactFormula = models.FormulaSet{}
	if formulas.Valid && formulas.String != "" {
		if err := json.Unmarshal([]byte(formulas.String), &d.ImpactFormula); err != nil {
			return models.MeasureDetail{}, fmt.Errorf("measure %s has invalid impact formulas: %w", id, err)
		}
	}
	return d, nil
}

// InsertBallot stores a ballot with its measures in one transaction.
// Measures keep their slice order.
func (s *Store) InsertBallot(ctx context.Context, b models.Ballot, measures []models.MeasureDetail) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO ballot (id, state, county, election_date)
		VALUES ($1, $2, $3, $4)
	`, b.ID, b.State, b.County, b.ElectionDate)
	if err != nil {
		return fmt.Errorf("failed to insert ballot: %w", err)
	}

	for i, m := range measures {
		formulas, err := json.Marshal(m.ImpactFormula)
		if err != nil {
			return fmt.Errorf("failed to encode formulas for %s: %w", m.ID, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO measure (id, ballot_id, sort_order, code, title, summary, category, impact_formula)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, m.ID, b.ID, i, m.Code, m.Title, m.Summary, m.Category, string(formulas))
		if err != nil {
			return fmt.Errorf("failed to insert measure %s: %w", m.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit ballot: %w", err)
	}
	return nil
}

// GetProfileByUser loads the civic profile of a user
func (s *Store) GetProfileByUser(ctx context.Context, userID string) (models.CivicProfile, error) {
	var p models.CivicProfile
	var incomeRange, jobSector sql.NullString
	var householdSize sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, zip_code, housing_status, home_value, monthly_rent,
		       income_range, job_sector, household_size
		FROM user_profile
		WHERE user_id = $1
	`, userID).Scan(
		&p.ID, &p.UserID, &p.ZipCode, &p.HousingStatus, &p.HomeValue, &p.MonthlyRent,
		&incomeRange, &jobSector, &householdSize,
	)
	if err == sql.ErrNoRows {
		return models.CivicProfile{}, ErrNotFound
	}
	if err != nil {
		return models.CivicProfile{}, fmt.Errorf("failed to query profile: %w", err)
	}

	p.IncomeRange = models.DefaultIncomeRange
	if incomeRange.Valid && incomeRange.String != "" {
		p.IncomeRange = incomeRange.String
	}
	p.JobSector = models.DefaultJobSector
	if jobSector.Valid && jobSector.String != "" {
		p.JobSector = jobSector.String
	}
	p.HouseholdSize = models.DefaultHouseholdSize
	if householdSize.Valid {
		p.HouseholdSize = int(householdSize.Int64)
	}
	return p, nil
}

// UpsertProfile inserts the profile or fully replaces the existing one with the same id
func (s *Store) UpsertProfile(ctx context.Context, p models.CivicProfile) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_profile (id, user_id, zip_code, housing_status, home_value, monthly_rent,
		                          income_range, job_sector, household_size)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
		    zip_code = excluded.zip_code,
		    housing_status = excluded.housing_status,
		    home_value = excluded.home_value,
		    monthly_rent = excluded.monthly_rent,
		    income_range = excluded.income_range,
		    job_sector = excluded.job_sector,
		    household_size = excluded.household_size,
		    updated_at = CURRENT_TIMESTAMP
	`, p.ID, p.UserID, p.ZipCode, p.HousingStatus, nullInt(p.HomeValue), nullInt(p.MonthlyRent),
		p.IncomeRange, p.JobSector, p.HouseholdSize)
	if err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}
	return nil
}

func nullInt(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
