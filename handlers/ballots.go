// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/affectme/db"
	"github.com/danielhkuo/affectme/middleware"
	"github.com/danielhkuo/affectme/models"
)

type BallotHandler struct {
	store *db.Store
}

func NewBallotHandler(store *db.Store) *BallotHandler {
	return &BallotHandler{store: store}
}

// GetBallot handles GET /ballots?state=&county=
func (h *BallotHandler) GetBallot(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")
	county := r.URL.Query().Get("county")
	if state == "" || county == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Missing required params: state and county")
		return
	}

	ballot, err := h.store.GetBallot(r.Context(), state, county)
	if errors.Is(err, db.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Ballot not found")
		return
	}
	if err != nil {
		slog.Error("failed to get ballot", "state", state, "county", county, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to get ballot")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, ballot)
}

// ListMeasures handles GET /ballots/{id}/measures. An unknown ballot has no measures.
func (h *BallotHandler) ListMeasures(w http.ResponseWriter, r *http.Request) {
	ballotID := r.PathValue("id")
	if ballotID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "ballot ID required")
		return
	}

	measures, err := h.store.ListMeasures(r.Context(), ballotID)
	if err != nil {
		slog.Error("failed to list measures", "ballot_id", ballotID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to list measures")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.BallotMeasuresResponse{
		BallotID: ballotID,
		Measures: measures,
	})
}

// GetMeasure handles GET /measures/{id}
func (h *BallotHandler) GetMeasure(w http.ResponseWriter, r *http.Request) {
	measureID := r.PathValue("id")

	measure, err := h.store.GetMeasure(r.Context(), measureID)
	if errors.Is(err, db.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Measure not found")
		return
	}
	if err != nil {
		slog.Error("failed to get measure", "measure_id", measureID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to get measure")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, measure)
}
