package server

import (
	"net/http"
	"strings"

	"github.com/huntworks/trailhunt/internal/game"
)

type ScanRequest struct {
	NodeKey  string `json:"nodeKey"`
	Password string `json:"password"`
}

func handleScan(engine *game.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ScanRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		req.NodeKey = strings.TrimSpace(req.NodeKey)
		if req.NodeKey == "" {
			writeError(w, http.StatusBadRequest, "nodeKey is required")
			return
		}

		team := teamFrom(r)
		meta := game.ClientMeta{
			IP:        r.RemoteAddr,
			UserAgent: r.UserAgent(),
		}

		// Rejections (unknown node, illegal transition, inactive game) are
		// part of the result, not HTTP errors: the scanner UI renders them.
		res, err := engine.RecordScan(r.Context(), team.ID, req.NodeKey, req.Password, meta)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, res)
	}
}
