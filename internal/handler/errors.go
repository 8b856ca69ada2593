package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pkordes/flightlog/internal/domain"
)

// Error codes carried in ErrorDetail.Code.
const (
	codeNotFound   = "not_found"
	codeValidation = "validation_error"
	codeConflict   = "conflict"
	codeUpstream   = "upstream_error"
	codeInternal   = "internal_error"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail is a machine-readable code plus a human-readable message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("writing response body", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: ErrorDetail{Code: code, Message: message}})
}

// writeInternal logs err and answers 500 without leaking its text.
func writeInternal(w http.ResponseWriter, r *http.Request, err error) {
	slog.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	writeError(w, http.StatusInternalServerError, codeInternal, "internal server error")
}

// validationMessage extracts the human-readable part of a wrapped
// domain.ErrValidation.
// e.g. "service.LogbookService.AddFlight: validation error: El número de vuelo es obligatorio."
// → "El número de vuelo es obligatorio."
func validationMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	marker := domain.ErrValidation.Error() + ": "
	if i := strings.LastIndex(msg, marker); i >= 0 {
		return msg[i+len(marker):]
	}
	return msg
}

// decodeJSON reads a single JSON object from the request body into dst.
// Bodies cut short by the size limit are reported with 413.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, codeValidation, "request body too large")
			return false
		}
		writeError(w, http.StatusUnprocessableEntity, codeValidation, "malformed JSON body")
		return false
	}
	return true
}
