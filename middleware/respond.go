package middleware

import (
	"encoding/json"
	"net/http"
)

// sendJSONError sends a simple structured JSON error message.
func sendJSONError(w http.ResponseWriter, msg string, code int) {
	sendJSON(w, code, map[string]string{"error": msg})
}

// sendDetailedError sends a 422 response containing a list of validation errors.
func sendDetailedError(w http.ResponseWriter, errors []ValidationError) {
	sendJSON(w, http.StatusUnprocessableEntity, map[string]any{
		"status": "error",
		"errors": errors,
	})
}

func sendJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
