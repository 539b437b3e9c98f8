package utils

import (
	"encoding/json"
	"log"
	"net/http"

	"stayops-backend/internal/apperr"
)

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[HTTP] encode response: %v", err)
	}
}

// WriteError maps a classified error to an HTTP status. Internal errors
// are logged in full and returned as an opaque 500.
func WriteError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		status, message = http.StatusNotFound, err.Error()
	case apperr.KindForbidden:
		status, message = http.StatusForbidden, err.Error()
	case apperr.KindStateConflict:
		status, message = http.StatusConflict, err.Error()
	case apperr.KindValidation:
		status, message = http.StatusUnprocessableEntity, err.Error()
	default:
		log.Printf("[HTTP] internal error: %v", err)
	}

	WriteJSON(w, status, map[string]string{"error": message})
}
