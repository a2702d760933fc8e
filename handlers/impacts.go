// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/affectme/db"
	"github.com/danielhkuo/affectme/impact"
	"github.com/danielhkuo/affectme/middleware"
	"github.com/danielhkuo/affectme/models"
)

type ImpactHandler struct {
	store    *db.Store
	reporter *impact.Reporter
}

func NewImpactHandler(store *db.Store, reporter *impact.Reporter) *ImpactHandler {
	return &ImpactHandler{store: store, reporter: reporter}
}

// CalculateImpact handles POST /calculate-impact
func (h *ImpactHandler) CalculateImpact(w http.ResponseWriter, r *http.Request) {
	var req models.CalculateImpactRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if err := middleware.ValidateStruct(req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.reporter.CalculateByID(r.Context(), req.MeasureID, req.Profile)
	if errors.Is(err, db.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Measure not found")
		return
	}
	if err != nil {
		slog.Error("failed to calculate impact", "measure_id", req.MeasureID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to calculate impact")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, result)
}

// ImpactReport handles POST /impacts: one impact per measure on the
// ballot for state and county, in ballot order.
func (h *ImpactHandler) ImpactReport(w http.ResponseWriter, r *http.Request) {
	var req models.ImpactReportRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if err := middleware.ValidateStruct(req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	ballot, err := h.store.GetBallot(r.Context(), req.State, req.County)
	if errors.Is(err, db.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Ballot not found")
		return
	}
	if err != nil {
		slog.Error("failed to get ballot", "state", req.State, "county", req.County, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to get ballot")
		return
	}

	measures, err := h.store.ListMeasures(r.Context(), ballot.ID)
	if err != nil {
		slog.Error("failed to list measures", "ballot_id", ballot.ID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to list measures")
		return
	}

	impacts := h.reporter.Report(r.Context(), measures, req.Profile)

	slog.Info("impact report computed", "ballot_id", ballot.ID, "measures", len(impacts))

	middleware.JSONResponse(w, http.StatusOK, models.ImpactReportResponse{
		BallotID: ballot.ID,
		Impacts:  impacts,
	})
}
