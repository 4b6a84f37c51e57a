package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/selular-pos/till/internal/backoffice"
)

// writeJSON writes v as the JSON response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeRemoteError surfaces a back office failure. Server-reported errors keep
// the server's literal message and arrive as 502; transport errors are logged
// and collapsed to a generic 502 so internals never leak to the UI.
func writeRemoteError(w http.ResponseWriter, op string, err error) {
	var apiErr *backoffice.APIError
	if errors.As(err, &apiErr) {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": apiErr.Message})
		return
	}
	log.Printf("ERROR: %s: %v", op, err)
	writeJSON(w, http.StatusBadGateway, map[string]string{"error": "back office unavailable"})
}
