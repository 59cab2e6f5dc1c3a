// Package shared holds the response helpers every handler uses: JSON
// encoding and the single place where domain error codes become HTTP
// status codes.
package shared

import (
	"encoding/json"
	"net/http"

	dErrors "mintgate/pkg/domain-errors"
)

// ErrorResponse is the wire shape of every error the API returns.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a domain error into an HTTP response. Errors without
// a recognized code are reported as 500 without leaking their message.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	status, ok := statusOf(code)
	if !ok {
		WriteJSON(w, http.StatusInternalServerError, ErrorResponse{
			Code:    string(dErrors.CodeInternal),
			Message: "internal error",
		})
		return
	}
	WriteJSON(w, status, ErrorResponse{
		Code:    string(code),
		Message: err.Error(),
	})
}

func statusOf(code dErrors.Code) (int, bool) {
	switch code {
	case dErrors.CodeBadRequest, dErrors.CodeInvalidInput:
		return http.StatusBadRequest, true
	case dErrors.CodeNotFound:
		return http.StatusNotFound, true
	case dErrors.CodeConflict:
		return http.StatusConflict, true
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized, true
	case dErrors.CodeForbidden:
		return http.StatusForbidden, true
	case dErrors.CodeLimitExceeded:
		return http.StatusUnprocessableEntity, true
	case dErrors.CodeInvariantViolation:
		return http.StatusConflict, true
	default:
		return 0, false
	}
}
