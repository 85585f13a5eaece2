package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/gymsaathiide/gymaccess/internal/response"
)

func gymIDParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "gymID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// GetQRConfig returns the gym's QR setup, creating the secret lazily.
func (h *Handlers) GetQRConfig(w http.ResponseWriter, r *http.Request) {
	gymID, ok := gymIDParam(r)
	if !ok {
		response.BadRequest(w, "Invalid gym id")
		return
	}

	cfg, err := h.qrConfig.GetOrCreateConfig(r.Context(), gymID)
	if err != nil {
		response.DomainError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, cfg)
}

// RotateQRSecret replaces the gym's secret, invalidating every previously
// rendered QR image for that gym.
func (h *Handlers) RotateQRSecret(w http.ResponseWriter, r *http.Request) {
	gymID, ok := gymIDParam(r)
	if !ok {
		response.BadRequest(w, "Invalid gym id")
		return
	}

	cfg, err := h.qrConfig.RotateSecret(r.Context(), gymID)
	if err != nil {
		response.DomainError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, cfg)
}

type setEnabledRequest struct {
	Enabled *bool `json:"enabled"`
}

// SetQREnabled pauses or resumes QR check-in without touching the secret.
func (h *Handlers) SetQREnabled(w http.ResponseWriter, r *http.Request) {
	gymID, ok := gymIDParam(r)
	if !ok {
		response.BadRequest(w, "Invalid gym id")
		return
	}

	var req setEnabledRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Enabled == nil {
		response.BadRequest(w, "Body must include enabled")
		return
	}

	cfg, err := h.qrConfig.SetEnabled(r.Context(), gymID, *req.Enabled)
	if err != nil {
		response.DomainError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, cfg)
}

// ListTodaySessions is the admin read over the gym-local day.
func (h *Handlers) ListTodaySessions(w http.ResponseWriter, r *http.Request) {
	gymID, ok := gymIDParam(r)
	if !ok {
		response.BadRequest(w, "Invalid gym id")
		return
	}

	sessions, err := h.attendance.ListTodaySessions(r.Context(), gymID)
	if err != nil {
		response.DomainError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, sessions)
}
