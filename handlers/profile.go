// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/affectme/memory"
	"github.com/danielhkuo/affectme/middleware"
	"github.com/danielhkuo/affectme/models"
	"github.com/danielhkuo/affectme/profile"
)

type ProfileHandler struct {
	profiles *profile.Service
	memories memory.Provider
}

func NewProfileHandler(profiles *profile.Service, memories memory.Provider) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, memories: memories}
}

// SaveProfile handles POST /memory/profile. The profile is fully replaced.
func (h *ProfileHandler) SaveProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req models.ProfileInput
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if err := middleware.ValidateStruct(req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	p, err := h.profiles.Save(r.Context(), userID, req)
	if err != nil {
		slog.Error("failed to save profile", "user_id", userID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to save profile")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, p)
}

// GetProfile handles GET /memory/profile
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	p, err := h.profiles.Load(r.Context(), userID)
	if errors.Is(err, profile.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Profile not found")
		return
	}
	if err != nil {
		slog.Error("failed to load profile", "user_id", userID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to load profile")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, p)
}

// MemoryDebug handles GET /memory/debug: the provider's record verbatim, or null
func (h *ProfileHandler) MemoryDebug(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var resp models.MemoryDebugResponse
	rec, err := h.memories.Get(r.Context(), userID)
	switch {
	case err != nil:
		slog.Debug("memory debug read failed", "user_id", userID, "error", err)
	case rec == nil:
	case len(rec.Raw) > 0:
		resp.Memory = rec.Raw
	default:
		raw, err := json.Marshal(map[string]any{"id": rec.ID, "text": rec.Text, "title": rec.Title, "metadata": rec.Metadata})
		if err == nil {
			resp.Memory = raw
		}
	}

	middleware.JSONResponse(w, http.StatusOK, resp)
}
