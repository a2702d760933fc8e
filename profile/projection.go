// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package profile

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/danielhkuo/affectme/models"
)

// Metadata keys written by ToMemoryRecord
const (
	keyZipCode       = "zipCode"
	keyHousingStatus = "housingStatus"
	keyHomeValue     = "homeValue"
	keyMonthlyRent   = "monthlyRent"
	keyIncomeRange   = "incomeRange"
	keyJobSector     = "jobSector"
	keyHouseholdSize = "householdSize"
)

// ProfileID is the stable record key for a user's profile
func ProfileID(userID string) string {
	return "profile-" + userID
}

// Normalize clears the housing amount that does not match HousingStatus.
func Normalize(p models.CivicProfile) models.CivicProfile {
	switch p.HousingStatus {
	case models.HousingRenter:
		p.HomeValue = nil
	case models.HousingOwner:
		p.MonthlyRent = nil
	}
	return p
}

// FromInput builds the stored profile for a validated input
func FromInput(userID string, in models.ProfileInput) models.CivicProfile {
	return Normalize(models.CivicProfile{
		ID:            ProfileID(userID),
		UserID:        userID,
		ZipCode:       in.ZipCode,
		HousingStatus: in.HousingStatus,
		HomeValue:     in.HomeValue,
		MonthlyRent:   in.MonthlyRent,
		IncomeRange:   in.IncomeRange,
		JobSector:     in.JobSector,
		HouseholdSize: in.HouseholdSize,
	})
}

// ImpactInputs is the subset of p read by the impact calculator
func ImpactInputs(p models.CivicProfile) models.ImpactProfile {
	size := int64(p.HouseholdSize)
	return models.ImpactProfile{
		HousingStatus: p.HousingStatus,
		HomeValue:     p.HomeValue,
		MonthlyRent:   p.MonthlyRent,
		IncomeRange:   p.IncomeRange,
		HouseholdSize: &size,
	}
}

func housingPhrase(p models.CivicProfile) string {
	if p.HousingStatus == models.HousingRenter {
		return fmt.Sprintf("Renter paying $%d/month", deref(p.MonthlyRent))
	}
	return fmt.Sprintf("Homeowner with property valued at $%d", deref(p.HomeValue))
}

// ToMemoryRecord projects p into the text and metadata stored with the
// memory provider. The sentence order is stable.
func ToMemoryRecord(p models.CivicProfile) (string, map[string]any) {
	text := strings.Join([]string{
		"Location: ZIP " + p.ZipCode,
		"Housing: " + housingPhrase(p),
		"Income: " + p.IncomeRange,
		"Job sector: " + p.JobSector,
		"Household size: " + strconv.Itoa(p.HouseholdSize),
	}, ". ")

	meta := map[string]any{
		keyZipCode:       p.ZipCode,
		keyHousingStatus: p.HousingStatus,
		keyHomeValue:     deref(p.HomeValue),
		keyMonthlyRent:   deref(p.MonthlyRent),
		keyIncomeRange:   p.IncomeRange,
		keyJobSector:     p.JobSector,
		keyHouseholdSize: p.HouseholdSize,
	}
	return text, meta
}

// FromMemoryRecord rebuilds a profile from metadata written by
// ToMemoryRecord. It never fails: missing or malformed keys take defaults,
// and zero housing amounts read back as absent.
func FromMemoryRecord(id, userID string, meta map[string]any) models.CivicProfile {
	p := models.CivicProfile{
		ID:            id,
		UserID:        userID,
		ZipCode:       stringField(meta, keyZipCode, ""),
		HousingStatus: stringField(meta, keyHousingStatus, models.HousingRenter),
		IncomeRange:   stringField(meta, keyIncomeRange, models.DefaultIncomeRange),
		JobSector:     stringField(meta, keyJobSector, models.DefaultJobSector),
		HouseholdSize: models.DefaultHouseholdSize,
	}

	if v, ok := intField(meta, keyHomeValue); ok && v != 0 {
		p.HomeValue = &v
	}
	if v, ok := intField(meta, keyMonthlyRent); ok && v != 0 {
		p.MonthlyRent = &v
	}
	if v, ok := intField(meta, keyHouseholdSize); ok {
		p.HouseholdSize = int(v)
	}
	return Normalize(p)
}

// HasProfileFields reports whether meta carries a projected profile rather
// than other memory metadata such as a summarizer timestamp.
func HasProfileFields(meta map[string]any) bool {
	_, zip := meta[keyZipCode]
	_, housing := meta[keyHousingStatus]
	return zip || housing
}

// PromptContext renders p for a chat system prompt
func PromptContext(p models.CivicProfile) string {
	return strings.Join([]string{
		"User Profile:",
		"- Location: ZIP " + p.ZipCode,
		"- Housing: " + housingPhrase(p),
		"- Income: " + p.IncomeRange,
		"- Job sector: " + p.JobSector,
		"- Household size: " + strconv.Itoa(p.HouseholdSize),
	}, "\n")
}

func deref(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}

func stringField(meta map[string]any, key, def string) string {
	switch v := meta[key].(type) {
	case string:
		if v != "" {
			return v
		}
	case nil:
	default:
		if key == keyZipCode {
			return fmt.Sprint(v)
		}
	}
	return def
}

// intField accepts the numeric shapes metadata takes after a JSON round trip
func intField(meta map[string]any, key string) (int64, bool) {
	switch v := meta[key].(type) {
	case int:
		return int64(v), true
	case int64:
		return v, true
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return int64(v), true
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n, true
		}
		if f, err := v.Float64(); err == nil {
			return int64(f), true
		}
	case string:
		if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			return n, true
		}
	}
	return 0, false
}
