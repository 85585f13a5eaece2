package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gymsaathiide/gymaccess/internal/domain"
	"github.com/gymsaathiide/gymaccess/internal/response"
)

type scanRequest struct {
	QRPayload string `json:"qr_payload"`
}

type sessionResponse struct {
	Status  string                    `json:"status"`
	Session *domain.AttendanceSession `json:"session"`
}

// Scan handles a member-scanned QR payload.
func (h *Handlers) Scan(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)
	if claims == nil {
		response.Unauthorized(w, "Member session required")
		return
	}

	var req scanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.DomainError(w, domain.ErrInvalidQR)
		return
	}

	session, err := h.attendance.HandleScan(r.Context(), claims.Sub, req.QRPayload)
	if err != nil {
		response.DomainError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, sessionResponse{Status: "checked_in", Session: session})
}

// Checkout handles the explicit check-out button.
func (h *Handlers) Checkout(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)
	if claims == nil {
		response.Unauthorized(w, "Member session required")
		return
	}

	session, err := h.attendance.HandleCheckout(r.Context(), claims.Sub)
	if err != nil {
		response.DomainError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, sessionResponse{Status: "checked_out", Session: session})
}

// Status reports the caller's attendance state for the gym-local day.
func (h *Handlers) Status(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)
	if claims == nil {
		response.Unauthorized(w, "Member session required")
		return
	}

	status, err := h.attendance.TodayStatus(r.Context(), claims.Sub)
	if err != nil {
		response.DomainError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, status)
}
