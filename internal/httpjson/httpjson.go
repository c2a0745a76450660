// Package httpjson holds the JSON response helpers shared by the handlers.
package httpjson

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/ayush/swapspace/internal/common"
)

// maxBodyBytes bounds request bodies; item payloads are a few short strings.
const maxBodyBytes = 1 << 20

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Write writes v as JSON with the given status code.
func Write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Error writes {"error": msg} with the given status code.
func Error(w http.ResponseWriter, status int, msg string) {
	Write(w, status, ErrorResponse{Error: msg})
}

// Decode reads a JSON body into v. Unknown fields are ignored.
func Decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return common.Validation("invalid request body")
	}
	return nil
}

// Status maps a service error onto an HTTP status code and a one-line
// message safe to show to clients.
func Status(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrValidation):
		return http.StatusBadRequest, common.ValidationMessage(err)
	case errors.Is(err, common.ErrDuplicateIdentity):
		return http.StatusBadRequest, "Email or username already in use"
	case errors.Is(err, common.ErrInvalidCredentials):
		return http.StatusBadRequest, "Invalid email or password"
	case errors.Is(err, common.ErrTokenMissing):
		return http.StatusUnauthorized, "Access denied"
	case common.IsTokenError(err):
		return http.StatusForbidden, "Invalid token"
	case errors.Is(err, common.ErrForbidden):
		return http.StatusForbidden, "Unauthorized"
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound, "not found"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

// Fail writes the response for err, preferring notFoundMsg for ErrNotFound.
func Fail(w http.ResponseWriter, err error, notFoundMsg string) {
	status, msg := Status(err)
	if status == http.StatusNotFound && notFoundMsg != "" {
		msg = notFoundMsg
	}
	Error(w, status, msg)
}
