package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/huntworks/trailhunt/internal/events"
)

const maxChatLength = 500

type ChatRequest struct {
	Message string `json:"message"`
}

// ChatEvent is broadcast on the chat topic of the game.
type ChatEvent struct {
	TeamID   string    `json:"teamId"`
	TeamName string    `json:"teamName"`
	Message  string    `json:"message"`
	SentAt   time.Time `json:"sentAt"`
}

// handleChat fans a team's message out to every listener of the game.
// Messages are ephemeral; nothing is persisted.
func handleChat(bus *events.Bus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ChatRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		req.Message = strings.TrimSpace(req.Message)
		if req.Message == "" {
			writeError(w, http.StatusBadRequest, "message is required")
			return
		}
		if len(req.Message) > maxChatLength {
			writeError(w, http.StatusBadRequest, "message too long")
			return
		}

		g, team := gameFrom(r), teamFrom(r)
		bus.Publish(g.Slug, events.KindChat, ChatEvent{
			TeamID:   team.ID,
			TeamName: team.Name,
			Message:  req.Message,
			SentAt:   time.Now(),
		})

		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
