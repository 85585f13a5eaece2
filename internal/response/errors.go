package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gymsaathiide/gymaccess/internal/domain"
	"github.com/gymsaathiide/gymaccess/pkg/logger"
)

// ErrorResponse is the JSON error envelope. Code is stable for clients;
// Error is the human message.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

func WriteError(w http.ResponseWriter, statusCode int, message, code string) {
	WriteJSON(w, statusCode, ErrorResponse{Error: message, Code: code})
}

const (
	CodeUnauthorized  = "UNAUTHORIZED"
	CodeForbidden     = "FORBIDDEN"
	CodeInvalidInput  = "INVALID_INPUT"
	CodeRateLimit     = "RATE_LIMIT_EXCEEDED"
	CodeInternalError = "INTERNAL_ERROR"
)

func BadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, message, CodeInvalidInput)
}

func Unauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, message, CodeUnauthorized)
}

func Forbidden(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusForbidden, message, CodeForbidden)
}

func InternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, message, CodeInternalError)
}

func RateLimit(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusTooManyRequests, message, CodeRateLimit)
}

// statusByCode maps business outcomes to HTTP statuses.
var statusByCode = map[string]int{
	"INVALID_QR":           http.StatusBadRequest,
	"QR_NOT_CONFIGURED":    http.StatusNotFound,
	"QR_DISABLED":          http.StatusForbidden,
	"NOT_A_MEMBER_HERE":    http.StatusNotFound,
	"MEMBER_NOT_FOUND":     http.StatusNotFound,
	"WRONG_GYM":            http.StatusForbidden,
	"MEMBER_INACTIVE":      http.StatusForbidden,
	"NO_ACTIVE_MEMBERSHIP": http.StatusForbidden,
	"PLAN_DISALLOWS_QR":    http.StatusForbidden,
	"ALREADY_IN_GYM":       http.StatusConflict,
	"NOT_IN_GYM":           http.StatusConflict,
	"GYM_NOT_FOUND":        http.StatusNotFound,
}

// DomainError writes a typed business error, or a generic 500 for
// anything that is not one (storage and infrastructure failures).
func DomainError(w http.ResponseWriter, err error) {
	var derr *domain.Error
	if errors.As(err, &derr) {
		status, ok := statusByCode[derr.Code]
		if !ok {
			status = http.StatusBadRequest
		}
		WriteError(w, status, derr.Message, derr.Code)
		return
	}
	InternalError(w, "Something went wrong. Please try again.")
}
