// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "encoding/json"

// Housing status constants
const (
	HousingRenter = "renter"
	HousingOwner  = "owner"
)

// Impact direction constants
const (
	DirectionPositive = "positive"
	DirectionNegative = "negative"
	DirectionNeutral  = "neutral"
)

// Measure category constants
const (
	CategoryHousing         = "housing"
	CategoryTax             = "tax"
	CategoryEducation       = "education"
	CategoryTransportation  = "transportation"
	CategoryHealthcare      = "healthcare"
	CategoryEnvironment     = "environment"
	CategoryCriminalJustice = "criminal_justice"
	CategoryLabor           = "labor"
	CategoryOther           = "other"
)

// Profile defaults used when a stored record is missing a field
const (
	DefaultIncomeRange   = "50k-75k"
	DefaultJobSector     = "other"
	DefaultHouseholdSize = 1
)

// Domain types

type Ballot struct {
	ID           string `json:"id"`
	State        string `json:"state"`
	County       string `json:"county"`
	ElectionDate string `json:"electionDate"` // YYYY-MM-DD
}

type Measure struct {
	ID       string `json:"id"`
	BallotID string `json:"-"`
	Code     string `json:"code"`
	Title    string `json:"title"`
	Summary  string `json:"summary"`
	Category string `json:"category"`
}

type MeasureDetail struct {
	Measure
	ImpactFormula FormulaSet `json:"impactFormula"`
}

type ImpactFormula struct {
	Formula     string   `json:"formula" yaml:"formula"`
	Requires    []string `json:"requires" yaml:"requires"`
	Description string   `json:"description" yaml:"description"`
}

// CivicProfile is a user's self-reported situation. Only one of HomeValue and
// MonthlyRent is set, selected by HousingStatus.
type CivicProfile struct {
	ID            string `json:"id"`
	UserID        string `json:"userId"`
	ZipCode       string `json:"zipCode"`
	HousingStatus string `json:"housingStatus"`
	HomeValue     *int64 `json:"homeValue"`
	MonthlyRent   *int64 `json:"monthlyRent"`
	IncomeRange   string `json:"incomeRange"`
	JobSector     string `json:"jobSector"`
	HouseholdSize int    `json:"householdSize"`
}

// ImpactProfile is the subset of a profile the impact calculation reads.
type ImpactProfile struct {
	HousingStatus string `json:"housingStatus" validate:"omitempty,oneof=renter owner"`
	HomeValue     *int64 `json:"homeValue" validate:"omitnil,min=0"`
	MonthlyRent   *int64 `json:"monthlyRent" validate:"omitnil,min=0"`
	IncomeRange   string `json:"incomeRange"`
	HouseholdSize *int64 `json:"householdSize" validate:"omitnil,min=1"`
}

type ImpactResult struct {
	MeasureID   string `json:"measureId"`
	Impact      string `json:"impact"`
	Amount      int64  `json:"amount"`
	Direction   string `json:"direction"`
	Explanation string `json:"explanation"`
}

type MeasureWithImpact struct {
	Measure Measure      `json:"measure"`
	Impact  ImpactResult `json:"impact"`
}

// Request types

type CalculateImpactRequest struct {
	MeasureID string        `json:"measureId" validate:"required"`
	Profile   ImpactProfile `json:"profile"`
}

type ImpactReportRequest struct {
	State   string        `json:"state" validate:"required"`
	County  string        `json:"county" validate:"required"`
	Profile ImpactProfile `json:"profile"`
}

// ProfileInput is a full civic profile without the server-assigned id.
type ProfileInput struct {
	ZipCode       string `json:"zipCode" validate:"required,max=10"`
	HousingStatus string `json:"housingStatus" validate:"required,oneof=renter owner"`
	HomeValue     *int64 `json:"homeValue" validate:"omitnil,min=0"`
	MonthlyRent   *int64 `json:"monthlyRent" validate:"omitnil,min=0"`
	IncomeRange   string `json:"incomeRange" validate:"required,oneof=under-25k 25k-50k 50k-75k 75k-100k 100k-150k 150k-200k over-200k"`
	JobSector     string `json:"jobSector" validate:"required,oneof=tech healthcare education retail hospitality manufacturing finance government construction other"`
	HouseholdSize int    `json:"householdSize" validate:"required,min=1,max=20"`
}

type ChatPart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ChatMessage accepts either plain content or typed parts.
type ChatMessage struct {
	Role    string     `json:"role"`
	Content string     `json:"content,omitempty"`
	Parts   []ChatPart `json:"parts,omitempty"`
}

// Text returns the message content, joining text parts when Content is empty.
func (m ChatMessage) Text() string {
	if m.Content != "" {
		return m.Content
	}
	var text string
	for _, p := range m.Parts {
		if p.Type == "text" {
			text += p.Text
		}
	}
	return text
}

type ChatRequest struct {
	Messages  []ChatMessage `json:"messages" validate:"required,min=1"`
	Profile   *CivicProfile `json:"profile,omitempty"`
	MeasureID string        `json:"measureId,omitempty"`
}

// Response types

type BallotMeasuresResponse struct {
	BallotID string    `json:"ballotId"`
	Measures []Measure `json:"measures"`
}

type ImpactReportResponse struct {
	BallotID string              `json:"ballotId"`
	Impacts  []MeasureWithImpact `json:"impacts"`
}

// Memory is the provider record verbatim, or null.
type MemoryDebugResponse struct {
	Memory json.RawMessage `json:"memory"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
