package httputil

import (
	"encoding/json"
	"log"
	"net/http"
)

// ErrorResponse is the envelope for failures carrying a single message.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// FieldErrorResponse is the envelope for validation failures, keyed by field.
type FieldErrorResponse struct {
	Success bool              `json:"success"`
	Errors  map[string]string `json:"errors"`
}

// RespondJSON sends a JSON response with the given status code.
// Logs encoding errors to avoid silent failures.
func RespondJSON(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("ERROR: failed to encode JSON response: %v", err)
	}
}

// RespondError sends a failure envelope with a single message.
func RespondError(w http.ResponseWriter, message string, statusCode int) {
	RespondJSON(w, ErrorResponse{Success: false, Message: message}, statusCode)
}

// RespondFieldErrors sends a 422 failure envelope with field-keyed messages.
func RespondFieldErrors(w http.ResponseWriter, errors map[string]string) {
	RespondJSON(w, FieldErrorResponse{Success: false, Errors: errors}, http.StatusUnprocessableEntity)
}
