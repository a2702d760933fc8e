// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielhkuo/affectme/impact"
	"github.com/danielhkuo/affectme/models"
	"github.com/danielhkuo/affectme/testutil"
	"github.com/google/go-cmp/cmp"
)

func TestCalculateImpact(t *testing.T) {
	h, _ := newImpactHandler(t)

	testCases := []struct {
		name     string
		request  models.CalculateImpactRequest
		expected models.ImpactResult
	}{
		{
			name: "renter gets rent cap savings",
			request: models.CalculateImpactRequest{
				MeasureID: "measure-1",
				Profile:   models.ImpactProfile{MonthlyRent: i64(2000), HouseholdSize: i64(2)},
			},
			expected: models.ImpactResult{
				MeasureID:   "measure-1",
				Impact:      "$1,200/year",
				Amount:      1200,
				Direction:   models.DirectionPositive,
				Explanation: "Annual savings from 5% rent cap",
			},
		},
		{
			name: "owner is not eligible for rent rule",
			request: models.CalculateImpactRequest{
				MeasureID: "measure-1",
				Profile:   models.ImpactProfile{HomeValue: i64(500000), HouseholdSize: i64(2)},
			},
			expected: models.ImpactResult{
				MeasureID:   "measure-1",
				Impact:      "$0/year",
				Amount:      0,
				Direction:   models.DirectionNeutral,
				Explanation: "No direct financial impact calculated",
			},
		},
		{
			name: "owner pays property tax",
			request: models.CalculateImpactRequest{
				MeasureID: "measure-2",
				Profile:   models.ImpactProfile{HomeValue: i64(500000)},
			},
			expected: models.ImpactResult{
				MeasureID:   "measure-2",
				Impact:      "$600/year",
				Amount:      -600,
				Direction:   models.DirectionNegative,
				Explanation: "Estimated annual property tax increase from new bonds",
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/calculate-impact", tc.request, nil)
			w := httptest.NewRecorder()

			h.CalculateImpact(w, req)

			testutil.AssertStatus(t, w, http.StatusOK)
			var got models.ImpactResult
			testutil.AssertJSON(t, w, &got)
			if diff := cmp.Diff(tc.expected, got); diff != "" {
				t.Errorf("impact mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCalculateImpact_Errors(t *testing.T) {
	h, _ := newImpactHandler(t)

	testCases := []struct {
		name           string
		body           interface{}
		expectedStatus int
		expectedMsg    string
	}{
		{"unknown measure", models.CalculateImpactRequest{MeasureID: "measure-404"}, http.StatusNotFound, "Measure not found"},
		{"missing measure id", models.CalculateImpactRequest{}, http.StatusBadRequest, "measureId is required"},
		{"negative rent", map[string]any{"measureId": "measure-1", "profile": map[string]any{"monthlyRent": -1}}, http.StatusBadRequest, "monthlyRent must be at least 0"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/calculate-impact", tc.body, nil)
			w := httptest.NewRecorder()

			h.CalculateImpact(w, req)

			testutil.AssertStatus(t, w, tc.expectedStatus)
			var resp models.ErrorResponse
			testutil.AssertJSON(t, w, &resp)
			if !strings.Contains(resp.Message, tc.expectedMsg) {
				t.Errorf("Expected message containing %q, got %q", tc.expectedMsg, resp.Message)
			}
		})
	}

	t.Run("invalid JSON", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/calculate-impact", strings.NewReader("{nope"))
		w := httptest.NewRecorder()
		h.CalculateImpact(w, req)
		testutil.AssertStatus(t, w, http.StatusBadRequest)
	})
}

func TestImpactReport(t *testing.T) {
	h, _ := newImpactHandler(t)

	body := models.ImpactReportRequest{
		State:   "CA",
		County:  "Los Angeles",
		Profile: models.ImpactProfile{HousingStatus: "renter", MonthlyRent: i64(2000), HouseholdSize: i64(2)},
	}
	req := testutil.MakeRequest("POST", "/impacts", body, nil)
	w := httptest.NewRecorder()

	h.ImpactReport(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)
	var resp models.ImpactReportResponse
	testutil.AssertJSON(t, w, &resp)

	if resp.BallotID != seededBallotID {
		t.Errorf("Expected ballotId %s, got %s", seededBallotID, resp.BallotID)
	}

	want := []struct {
		id     string
		amount int64
		dir    string
	}{
		{"measure-1", 1200, models.DirectionPositive},
		{"measure-2", 0, models.DirectionNeutral},
		{"measure-3", 0, models.DirectionNeutral},
		{"measure-4", -50, models.DirectionNegative},
		{"measure-5", -360, models.DirectionNegative},
		{"measure-6", 0, models.DirectionNeutral},
		{"measure-7", -240, models.DirectionNegative},
		{"measure-8", 0, models.DirectionNeutral},
	}
	if len(resp.Impacts) != len(want) {
		t.Fatalf("Expected %d impacts, got %d", len(want), len(resp.Impacts))
	}
	for i, w := range want {
		got := resp.Impacts[i]
		if got.Measure.ID != w.id || got.Impact.MeasureID != w.id {
			t.Errorf("impact %d: expected %s, got measure %s / impact %s", i, w.id, got.Measure.ID, got.Impact.MeasureID)
		}
		if got.Impact.Amount != w.amount || got.Impact.Direction != w.dir {
			t.Errorf("%s: expected %d %s, got %d %s", w.id, w.amount, w.dir, got.Impact.Amount, got.Impact.Direction)
		}
	}
}

func TestImpactReport_UnreadableMeasureGetsPlaceholder(t *testing.T) {
	store := testutil.SetupSeededStore(t)
	measures := &failingMeasures{MeasureReader: store, failID: "measure-5"}
	h := NewImpactHandler(store, impact.NewReporter(measures, nil, 4))

	body := models.ImpactReportRequest{State: "CA", County: "Los Angeles", Profile: models.ImpactProfile{HouseholdSize: i64(1)}}
	req := testutil.MakeRequest("POST", "/impacts", body, nil)
	w := httptest.NewRecorder()

	h.ImpactReport(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)
	var resp models.ImpactReportResponse
	testutil.AssertJSON(t, w, &resp)
	if len(resp.Impacts) != 8 {
		t.Fatalf("Expected 8 impacts, got %d", len(resp.Impacts))
	}

	found := false
	for _, mi := range resp.Impacts {
		if mi.Measure.ID != "measure-5" {
			continue
		}
		found = true
		if diff := cmp.Diff(impact.Neutral("measure-5"), mi.Impact); diff != "" {
			t.Errorf("placeholder mismatch (-want +got):\n%s", diff)
		}
		if mi.Impact.Impact != "$0/year" {
			t.Errorf("Expected $0/year, got %q", mi.Impact.Impact)
		}
	}
	if !found {
		t.Error("measure-5 missing from report")
	}
}

func TestImpactReport_Errors(t *testing.T) {
	h, _ := newImpactHandler(t)

	testCases := []struct {
		name           string
		body           models.ImpactReportRequest
		expectedStatus int
	}{
		{"unknown ballot", models.ImpactReportRequest{State: "NV", County: "Clark"}, http.StatusNotFound},
		{"missing county", models.ImpactReportRequest{State: "CA"}, http.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/impacts", tc.body, nil)
			w := httptest.NewRecorder()
			h.ImpactReport(w, req)
			testutil.AssertStatus(t, w, tc.expectedStatus)
		})
	}
}
