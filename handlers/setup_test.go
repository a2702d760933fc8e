// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/danielhkuo/affectme/db"
	"github.com/danielhkuo/affectme/impact"
	"github.com/danielhkuo/affectme/middleware"
	"github.com/danielhkuo/affectme/models"
	"github.com/danielhkuo/affectme/profile"
	"github.com/danielhkuo/affectme/testutil"
)

const seededBallotID = "ballot-2026-general"

func i64(v int64) *int64 { return &v }

// asUser attaches a session user to the request the way RequireSession does
func asUser(r *http.Request, userID string) *http.Request {
	return r.WithContext(middleware.WithUserID(r.Context(), userID))
}

// failingMeasures fails GetMeasure for one id, as when a measure goes
// away between listing and loading
type failingMeasures struct {
	impact.MeasureReader
	failID string
}

func (f *failingMeasures) GetMeasure(ctx context.Context, id string) (models.MeasureDetail, error) {
	if id == f.failID {
		return models.MeasureDetail{}, errors.New("measure unavailable")
	}
	return f.MeasureReader.GetMeasure(ctx, id)
}

func newImpactHandler(t *testing.T) (*ImpactHandler, *db.Store) {
	t.Helper()
	store := testutil.SetupSeededStore(t)
	return NewImpactHandler(store, impact.NewReporter(store, nil, 4)), store
}

func newProfileHandler(t *testing.T, mem *testutil.FakeMemory) (*ProfileHandler, *db.Store) {
	t.Helper()
	store := db.NewStore(testutil.SetupTestDB(t))
	return NewProfileHandler(profile.NewService(store, mem, time.Second), mem), store
}
