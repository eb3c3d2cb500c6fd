package handler

// RESPONSE HELPERS:
// Every handler answers through writeJSON / writeError so the client always
// gets the same envelope.
//
// CONSISTENT RESULT FORMAT:
// The stores report success or failure with a reason string, and the API
// keeps that shape:
//
//	{"success": true, ...}
//	{"success": false, "error": "Invalid email or password", "code": "unauthorized"}
//
// "error" is the human-readable reason, meant to be shown as is.
// "code" is the machine-readable category.

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/sakif/modernshop/internal/apperror"
)

// maxBodyBytes caps request bodies. The largest legitimate one is a checkout form.
const maxBodyBytes = 1 << 20

// ErrorResponse is the failure envelope returned by every endpoint.
type ErrorResponse struct {
	Success bool   `json:"success"`         // always false
	Error   string `json:"error"`           // reason, shown to the user
	Code    string `json:"code"`            // machine-readable category (e.g. "not_found")
	Field   string `json:"field,omitempty"` // input field at fault, when known
}

// writeJSON sends data as JSON with the given status code.
// Headers and status must be set before the body is written.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to an HTTP status and sends the failure envelope.
//
// ERROR MAPPING:
// errors.Is walks the chain, so a taxonomy error like ErrInvalidCredentials
// matches its category ErrUnauthorized here:
//
//	AppError{Err: ErrInvalidCredentials} → ErrInvalidCredentials → ErrUnauthorized ✓
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status, code := statusFor(err)
		writeJSON(w, status, ErrorResponse{
			Error: appErr.Message,
			Code:  code,
			Field: appErr.Field,
		})
		return
	}

	// Unknown error: never expose internals (SQL, paths, addresses) to the client.
	slog.Error("unhandled error", slog.String("error", err.Error()))
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error: "An internal error occurred",
		Code:  "internal_error",
	})
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, apperror.ErrValidation):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, apperror.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, apperror.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, apperror.ErrConflict):
		return http.StatusConflict, "conflict"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// decodeJSON reads a JSON body into v. Any decoding problem is a validation
// error the client can fix.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperror.ValidationFailed("body", fmt.Sprintf("invalid JSON body: %v", err))
	}
	return nil
}

// successResponse is the body of operations that only report success.
type successResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
