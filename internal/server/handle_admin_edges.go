package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/huntworks/trailhunt/internal/game"
)

// AdminEdgeItem is a directed transition between two nodes.
type AdminEdgeItem struct {
	ID            string    `json:"id"`
	From          string    `json:"from"`
	To            string    `json:"to"`
	ConditionKind string    `json:"conditionKind"`
	SortOrder     int       `json:"sortOrder"`
	CreatedAt     time.Time `json:"createdAt"`
}

func edgeItem(e game.Edge) AdminEdgeItem {
	return AdminEdgeItem{
		ID:            e.ID,
		From:          e.From,
		To:            e.To,
		ConditionKind: string(e.Condition.Kind),
		SortOrder:     e.SortOrder,
		CreatedAt:     e.CreatedAt,
	}
}

// AdminEdgeRequest is the request body for creating an edge. From and To
// are node ids. Password is required when conditionKind is "password".
type AdminEdgeRequest struct {
	From          string `json:"from"`
	To            string `json:"to"`
	ConditionKind string `json:"conditionKind"`
	Password      string `json:"password"`
	SortOrder     int    `json:"sortOrder"`
}

func (req *AdminEdgeRequest) validate() string {
	if req.From == "" || req.To == "" {
		return "from and to are required"
	}
	if req.From == req.To {
		return "from and to must differ"
	}
	switch game.ConditionKind(req.ConditionKind) {
	case "":
		req.ConditionKind = string(game.ConditionAlways)
	case game.ConditionAlways:
	case game.ConditionPassword:
		if req.Password == "" {
			return "password is required for a password condition"
		}
	default:
		return "conditionKind must be always or password"
	}
	return ""
}

func handleAdminListEdges(store game.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID := chi.URLParam(r, "gameID")

		if _, err := store.GameByID(r.Context(), gameID); errors.Is(err, game.ErrNotFound) {
			writeError(w, http.StatusNotFound, "game not found")
			return
		} else if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		edges, err := store.ListEdges(r.Context(), gameID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		out := []AdminEdgeItem{}
		for _, e := range edges {
			out = append(out, edgeItem(e))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func handleAdminCreateEdge(store game.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g, status, msg := draftGame(r, store, chi.URLParam(r, "gameID"))
		if msg != "" {
			writeError(w, status, msg)
			return
		}

		var req AdminEdgeRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if msg := req.validate(); msg != "" {
			writeError(w, http.StatusBadRequest, msg)
			return
		}

		// Both endpoints must be nodes of this game.
		for _, id := range []string{req.From, req.To} {
			n, err := store.NodeByID(r.Context(), id)
			if errors.Is(err, game.ErrNotFound) || (err == nil && n.GameID != g.ID) {
				writeError(w, http.StatusBadRequest, "node not found")
				return
			}
			if err != nil {
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}
		}

		cond := game.EdgeCondition{Kind: game.ConditionKind(req.ConditionKind)}
		if cond.Kind == game.ConditionPassword {
			hash, err := game.HashPassword(req.Password)
			if err != nil {
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}
			cond.PasswordHash = hash
		}

		e, err := store.CreateEdge(r.Context(), game.Edge{
			GameID:    g.ID,
			From:      req.From,
			To:        req.To,
			Condition: cond,
			SortOrder: req.SortOrder,
		})
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusCreated, edgeItem(e))
	}
}

func handleAdminDeleteEdge(store game.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, status, msg := draftGame(r, store, chi.URLParam(r, "gameID")); msg != "" {
			writeError(w, status, msg)
			return
		}

		err := store.DeleteEdge(r.Context(), chi.URLParam(r, "edgeID"))
		if errors.Is(err, game.ErrNotFound) {
			writeError(w, http.StatusNotFound, "edge not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
