package server

import (
	"net/http"
	"strings"

	"github.com/huntworks/trailhunt/internal/game"
)

type HintRequest struct {
	NodeKey string `json:"nodeKey"`
}

type HintResponse struct {
	Hint string `json:"hint"`
	Cost int    `json:"cost"`
}

func handleHint(engine *game.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req HintRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		req.NodeKey = strings.TrimSpace(req.NodeKey)
		if req.NodeKey == "" {
			writeError(w, http.StatusBadRequest, "nodeKey is required")
			return
		}

		hint, cost, err := engine.RevealHint(r.Context(), teamFrom(r).ID, req.NodeKey)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, HintResponse{Hint: hint, Cost: cost})
	}
}
