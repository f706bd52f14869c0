// Package shared holds the JSON response helpers used by all HTTP handlers
// so error envelopes stay uniform across modules.
package shared

import (
	"encoding/json"
	"net/http"

	dErrors "idmonitor/pkg/domain-errors"
)

// ErrorResponse is the uniform JSON error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

// WriteError translates a domain error into the uniform JSON error envelope.
// Internal errors hide their message from clients.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	status := dErrors.ToHTTPStatus(code)

	resp := ErrorResponse{Error: string(code)}
	if status < http.StatusInternalServerError {
		resp.Message = err.Error()
	}
	WriteJSON(w, status, resp)
}
