package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/huntworks/trailhunt/internal/game"
)

// handleLeaderboard serves the public standings for a game. No session is
// required: spectators hit this from the projector view.
func handleLeaderboard(board *game.Leaderboard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := board.Standings(r.Context(), gameFrom(r).ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, entries)
	}
}

// handleAdminLeaderboard is the admin view, addressed by game id instead
// of slug and available in any game status.
func handleAdminLeaderboard(board *game.Leaderboard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := board.Standings(r.Context(), chi.URLParam(r, "gameID"))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, entries)
	}
}
