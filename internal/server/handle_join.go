package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/huntworks/trailhunt/internal/game"
)

type JoinRequest struct {
	TeamCode string `json:"teamCode"`
}

type JoinResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	TeamID    string    `json:"teamId"`
	TeamName  string    `json:"teamName"`
	GameName  string    `json:"gameName"`
}

func handleJoin(sessions *game.SessionRegistry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req JoinRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		req.TeamCode = strings.TrimSpace(req.TeamCode)
		if req.TeamCode == "" {
			writeError(w, http.StatusBadRequest, "teamCode is required")
			return
		}

		g := gameFrom(r)

		team, sess, err := sessions.Join(r.Context(), g.Slug, req.TeamCode)
		if errors.Is(err, game.ErrInvalidJoin) {
			// One message regardless of which part was wrong.
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, JoinResponse{
			Token:     sess.Token,
			ExpiresAt: sess.ExpiresAt,
			TeamID:    team.ID,
			TeamName:  team.Name,
			GameName:  g.Name,
		})
	}
}

func handleLogout(sessions *game.SessionRegistry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := sessions.Logout(r.Context(), bearerToken(r)); err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
