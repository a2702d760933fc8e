// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielhkuo/affectme/memory"
	"github.com/danielhkuo/affectme/models"
	"github.com/danielhkuo/affectme/testutil"
	"github.com/google/go-cmp/cmp"
)

func renterInput() models.ProfileInput {
	return models.ProfileInput{
		ZipCode:       "90012",
		HousingStatus: "renter",
		MonthlyRent:   i64(2000),
		IncomeRange:   "50k-75k",
		JobSector:     "tech",
		HouseholdSize: 2,
	}
}

func TestSaveProfile(t *testing.T) {
	mem := testutil.NewFakeMemory()
	h, store := newProfileHandler(t, mem)

	req := asUser(testutil.MakeRequest("POST", "/memory/profile", renterInput(), nil), "user-1")
	w := httptest.NewRecorder()

	h.SaveProfile(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)
	var got models.CivicProfile
	testutil.AssertJSON(t, w, &got)

	want := models.CivicProfile{
		ID:            "profile-user-1",
		UserID:        "user-1",
		ZipCode:       "90012",
		HousingStatus: "renter",
		MonthlyRent:   i64(2000),
		IncomeRange:   "50k-75k",
		JobSector:     "tech",
		HouseholdSize: 2,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}

	stored, err := store.GetProfileByUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetProfileByUser() error = %v", err)
	}
	if diff := cmp.Diff(want, stored); diff != "" {
		t.Errorf("stored profile mismatch (-want +got):\n%s", diff)
	}

	adds := mem.Adds()
	if len(adds) != 1 {
		t.Fatalf("Expected 1 memory add, got %d", len(adds))
	}
	if adds[0].ResourceID != memory.ResourceID("user-1") {
		t.Errorf("Expected resource %s, got %s", memory.ResourceID("user-1"), adds[0].ResourceID)
	}
	if !strings.Contains(adds[0].Text, "Housing: Renter paying $2000/month") {
		t.Errorf("Unexpected memory text %q", adds[0].Text)
	}
}

func TestSaveProfile_MemoryDownStillSaves(t *testing.T) {
	mem := testutil.NewFakeMemory()
	mem.Err = memory.ErrUnavailable
	h, store := newProfileHandler(t, mem)

	req := asUser(testutil.MakeRequest("POST", "/memory/profile", renterInput(), nil), "user-1")
	w := httptest.NewRecorder()

	h.SaveProfile(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)
	if _, err := store.GetProfileByUser(context.Background(), "user-1"); err != nil {
		t.Errorf("Expected profile in store, got %v", err)
	}

	// reads fall back to the store while memory is down
	w = httptest.NewRecorder()
	h.GetProfile(w, asUser(httptest.NewRequest("GET", "/memory/profile", nil), "user-1"))
	testutil.AssertStatus(t, w, http.StatusOK)
	var got models.CivicProfile
	testutil.AssertJSON(t, w, &got)
	if got.ZipCode != "90012" {
		t.Errorf("Expected zip 90012, got %q", got.ZipCode)
	}
}

func TestSaveProfile_Errors(t *testing.T) {
	h, _ := newProfileHandler(t, testutil.NewFakeMemory())

	owner := renterInput()
	owner.HousingStatus = "owner"
	owner.MonthlyRent = nil

	badSector := renterInput()
	badSector.JobSector = "astronaut"

	testCases := []struct {
		name           string
		userID         string
		body           interface{}
		expectedStatus int
		expectedMsg    string
	}{
		{"no session", "", renterInput(), http.StatusUnauthorized, ""},
		{"owner without home value", "user-1", owner, http.StatusBadRequest, "homeValue is required for owners"},
		{"unknown job sector", "user-1", badSector, http.StatusBadRequest, "jobSector must be one of"},
		{"missing zip", "user-1", map[string]any{"housingStatus": "renter"}, http.StatusBadRequest, "zipCode is required"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/memory/profile", tc.body, nil)
			if tc.userID != "" {
				req = asUser(req, tc.userID)
			}
			w := httptest.NewRecorder()

			h.SaveProfile(w, req)

			testutil.AssertStatus(t, w, tc.expectedStatus)
			if tc.expectedMsg == "" {
				return
			}
			var resp models.ErrorResponse
			testutil.AssertJSON(t, w, &resp)
			if !strings.Contains(resp.Message, tc.expectedMsg) {
				t.Errorf("Expected message containing %q, got %q", tc.expectedMsg, resp.Message)
			}
		})
	}
}

func TestGetProfile(t *testing.T) {
	mem := testutil.NewFakeMemory()
	h, _ := newProfileHandler(t, mem)

	t.Run("not found", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.GetProfile(w, asUser(httptest.NewRequest("GET", "/memory/profile", nil), "nobody"))
		testutil.AssertStatus(t, w, http.StatusNotFound)
	})

	t.Run("no session", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.GetProfile(w, httptest.NewRequest("GET", "/memory/profile", nil))
		testutil.AssertStatus(t, w, http.StatusUnauthorized)
	})

	t.Run("after save", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.SaveProfile(w, asUser(testutil.MakeRequest("POST", "/memory/profile", renterInput(), nil), "user-2"))
		testutil.AssertStatus(t, w, http.StatusOK)

		w = httptest.NewRecorder()
		h.GetProfile(w, asUser(httptest.NewRequest("GET", "/memory/profile", nil), "user-2"))
		testutil.AssertStatus(t, w, http.StatusOK)

		var got models.CivicProfile
		testutil.AssertJSON(t, w, &got)
		if got.ID != "profile-user-2" || got.HouseholdSize != 2 || got.MonthlyRent == nil || *got.MonthlyRent != 2000 {
			t.Errorf("Unexpected profile %+v", got)
		}
	})
}

func TestMemoryDebug(t *testing.T) {
	mem := testutil.NewFakeMemory()
	h, _ := newProfileHandler(t, mem)

	t.Run("no memory yet", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.MemoryDebug(w, asUser(httptest.NewRequest("GET", "/memory/debug", nil), "user-1"))

		testutil.AssertStatus(t, w, http.StatusOK)
		if got := strings.TrimSpace(w.Body.String()); got != `{"memory":null}` {
			t.Errorf("Expected null memory, got %s", got)
		}
	})

	t.Run("raw record", func(t *testing.T) {
		mem.SetRecord("user-1", memory.Record{ID: "civic-profile-user-1", Text: "Renter in 90012", Raw: json.RawMessage(`{"resource_id":"civic-profile-user-1","text":"Renter in 90012"}`)})

		w := httptest.NewRecorder()
		h.MemoryDebug(w, asUser(httptest.NewRequest("GET", "/memory/debug", nil), "user-1"))

		testutil.AssertStatus(t, w, http.StatusOK)
		var resp map[string]map[string]string
		testutil.AssertJSON(t, w, &resp)
		if resp["memory"]["text"] != "Renter in 90012" {
			t.Errorf("Expected raw record passthrough, got %v", resp)
		}
	})

	t.Run("provider down", func(t *testing.T) {
		down := testutil.NewFakeMemory()
		down.Err = errors.New("connection refused")
		h, _ := newProfileHandler(t, down)

		w := httptest.NewRecorder()
		h.MemoryDebug(w, asUser(httptest.NewRequest("GET", "/memory/debug", nil), "user-1"))

		testutil.AssertStatus(t, w, http.StatusOK)
		if got := strings.TrimSpace(w.Body.String()); got != `{"memory":null}` {
			t.Errorf("Expected null memory, got %s", got)
		}
	})
}
