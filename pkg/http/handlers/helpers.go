package handlers

import (
	"encoding/json"
	"net/http"

	apperrors "pulsetrack-go/pkg/errors"
)

// Response is the JSON envelope for successful responses
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(&Response{
		Success: true,
		Data:    data,
		Message: message,
	})
}

func decodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperrors.ValidationErrorf("INVALID_JSON", "invalid request body").Wrap(err)
	}
	return nil
}
