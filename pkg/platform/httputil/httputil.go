// Package httputil writes JSON responses and domain errors.
package httputil

import (
	"encoding/json"
	"net/http"

	dErrors "rolodex/pkg/domain-errors"
)

// ErrorResponse is the body written for every failed request.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError renders err as an ErrorResponse. Errors without a domain code are
// treated as internal. Internal errors never expose their cause: the
// description is always the default internal message.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeInternal
	message := dErrors.DefaultInternalMessage
	if de, ok := dErrors.As(err); ok {
		code = dErrors.PublicCode(de.Code)
		if code != dErrors.CodeInternal {
			message = de.Message
		}
	}
	WriteJSON(w, dErrors.StatusFor(code), ErrorResponse{
		Error:            string(code),
		ErrorDescription: message,
	})
}
