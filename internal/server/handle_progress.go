package server

import (
	"net/http"

	"github.com/huntworks/trailhunt/internal/game"
)

type WinnerResponse struct {
	IsWinner bool `json:"isWinner"`
}

func handleProgress(engine *game.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tp, err := engine.Progress(r.Context(), teamFrom(r).ID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, tp)
	}
}

func handleWinner(engine *game.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		won, err := engine.CheckWinner(r.Context(), teamFrom(r).ID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, WinnerResponse{IsWinner: won})
	}
}
