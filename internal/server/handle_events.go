package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/huntworks/trailhunt/internal/events"
	"github.com/huntworks/trailhunt/internal/game"
)

var allEventKinds = []events.Kind{
	events.KindScan,
	events.KindLeaderboard,
	events.KindChat,
	events.KindGameStatus,
	events.KindTeamJoined,
	events.KindTeamConnection,
}

// handleEvents streams the game's live events over SSE. EventSource cannot
// set headers, so the session token travels as a query parameter. An
// optional kinds parameter narrows the subscription, e.g.
// ?kinds=leaderboard,chat.
func handleEvents(sessions *game.SessionRegistry, bus *events.Bus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		if token == "" {
			writeError(w, http.StatusUnauthorized, "token query parameter required")
			return
		}

		g := gameFrom(r)

		team, err := sessions.Validate(r.Context(), token)
		if errors.Is(err, game.ErrInvalidSession) || (err == nil && team.GameID != g.ID) {
			writeError(w, http.StatusUnauthorized, "invalid session token")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		kinds := allEventKinds
		if raw := r.URL.Query().Get("kinds"); raw != "" {
			kinds = kinds[:0:0]
			for _, k := range strings.Split(raw, ",") {
				if k = strings.TrimSpace(k); k != "" {
					kinds = append(kinds, events.Kind(k))
				}
			}
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			writeError(w, http.StatusInternalServerError, "streaming not supported")
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		flusher.Flush()

		sub := bus.Subscribe(g.Slug, kinds...)
		defer bus.Unsubscribe(sub)

		ping := time.NewTicker(30 * time.Second)
		defer ping.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case env := <-sub.C:
				fmt.Fprintf(w, "event: %s\ndata: %s\n\n", env.Kind, env.Data)
				flusher.Flush()
			case <-ping.C:
				fmt.Fprintf(w, ": ping\n\n")
				flusher.Flush()
			}
		}
	}
}
