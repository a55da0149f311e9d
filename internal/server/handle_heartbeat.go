package server

import (
	"net/http"

	"github.com/huntworks/trailhunt/internal/events"
)

// handleHeartbeat records a liveness beat for the calling team. The
// scanner app posts here every few seconds; the presence tracker turns
// gaps into disconnect events.
func handleHeartbeat(presence *events.Presence) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g, team := gameFrom(r), teamFrom(r)
		presence.Heartbeat(g.Slug, team.ID)
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
