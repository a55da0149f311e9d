package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/huntworks/trailhunt/internal/game"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func readJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeDomainError maps engine errors onto HTTP statuses: precondition
// failures keep their message, missing rows become 404, anything else is
// an opaque 500.
func writeDomainError(w http.ResponseWriter, err error) {
	var pe *game.PreconditionError
	switch {
	case errors.As(err, &pe):
		status := http.StatusConflict
		if strings.HasSuffix(pe.Message, "not found") {
			status = http.StatusNotFound
		}
		writeError(w, status, pe.Message)
	case errors.Is(err, game.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
