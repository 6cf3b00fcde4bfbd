package handler

import (
	"encoding/json"
	"net/http"
)

// respondJSON writes a JSON response with the given status
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// renderJSONError renders an error as JSON
func renderJSONError(w http.ResponseWriter, message string, status int) {
	respondJSON(w, status, map[string]interface{}{
		"error":  message,
		"status": status,
	})
}
