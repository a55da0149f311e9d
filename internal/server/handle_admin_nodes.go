package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/huntworks/trailhunt/internal/game"
)

// AdminNodeItem is a node as the admin sees it, including authoring-only
// fields players never receive.
type AdminNodeItem struct {
	ID          string          `json:"id"`
	Key         string          `json:"key"`
	Title       string          `json:"title"`
	Content     game.Content    `json:"content"`
	HasPassword bool            `json:"hasPassword"`
	IsStart     bool            `json:"isStart"`
	IsEnd       bool            `json:"isEnd"`
	Points      int             `json:"points"`
	Hint        string          `json:"hint,omitempty"`
	AdminNote   string          `json:"adminNote,omitempty"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

func nodeItem(n game.Node) AdminNodeItem {
	return AdminNodeItem{
		ID:          n.ID,
		Key:         n.Key,
		Title:       n.Title,
		Content:     n.Content,
		HasPassword: n.RequiresPassword(),
		IsStart:     n.IsStart,
		IsEnd:       n.IsEnd,
		Points:      n.Points,
		Hint:        n.Hint,
		AdminNote:   n.AdminNote,
		Metadata:    n.Metadata,
		CreatedAt:   n.CreatedAt,
	}
}

// AdminNodeRequest is the request body for creating/updating a node. On
// update, an empty password leaves the existing gate untouched.
type AdminNodeRequest struct {
	Key       string          `json:"key"`
	Title     string          `json:"title"`
	Content   game.Content    `json:"content"`
	Password  string          `json:"password"`
	IsStart   bool            `json:"isStart"`
	IsEnd     bool            `json:"isEnd"`
	Points    int             `json:"points"`
	Hint      string          `json:"hint"`
	AdminNote string          `json:"adminNote"`
	Metadata  json.RawMessage `json:"metadata"`
}

var validContentKinds = map[game.ContentKind]bool{
	game.ContentText:  true,
	game.ContentImage: true,
	game.ContentVideo: true,
	game.ContentAudio: true,
	game.ContentLink:  true,
}

func (req *AdminNodeRequest) validate() string {
	req.Key = strings.TrimSpace(req.Key)
	req.Title = strings.TrimSpace(req.Title)
	if req.Key == "" {
		return "key is required"
	}
	if req.Title == "" {
		return "title is required"
	}
	if req.Content.Kind == "" {
		req.Content.Kind = game.ContentText
	}
	if !validContentKinds[req.Content.Kind] {
		return "content kind must be text, image, video, audio, or link"
	}
	if req.Points < 0 {
		return "points must not be negative"
	}
	return ""
}

// draftGame loads the game and rejects graph mutations once it has left
// the draft state.
func draftGame(r *http.Request, store game.Store, gameID string) (game.Game, int, string) {
	g, err := store.GameByID(r.Context(), gameID)
	if errors.Is(err, game.ErrNotFound) {
		return game.Game{}, http.StatusNotFound, "game not found"
	}
	if err != nil {
		return game.Game{}, http.StatusInternalServerError, "internal error"
	}
	if g.Status != game.StatusDraft {
		return game.Game{}, http.StatusConflict, "game is not a draft"
	}
	return g, 0, ""
}

func handleAdminListNodes(store game.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID := chi.URLParam(r, "gameID")

		if _, err := store.GameByID(r.Context(), gameID); errors.Is(err, game.ErrNotFound) {
			writeError(w, http.StatusNotFound, "game not found")
			return
		} else if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		nodes, err := store.ListNodes(r.Context(), gameID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		out := []AdminNodeItem{}
		for _, n := range nodes {
			out = append(out, nodeItem(n))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func handleAdminCreateNode(store game.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g, status, msg := draftGame(r, store, chi.URLParam(r, "gameID"))
		if msg != "" {
			writeError(w, status, msg)
			return
		}

		var req AdminNodeRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if msg := req.validate(); msg != "" {
			writeError(w, http.StatusBadRequest, msg)
			return
		}

		if _, err := store.NodeByKey(r.Context(), g.ID, req.Key); err == nil {
			writeError(w, http.StatusConflict, "node key already in use")
			return
		} else if !errors.Is(err, game.ErrNotFound) {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		var hash string
		if req.Password != "" {
			var err error
			if hash, err = game.HashPassword(req.Password); err != nil {
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}
		}

		n, err := store.CreateNode(r.Context(), game.Node{
			GameID:       g.ID,
			Key:          req.Key,
			Title:        req.Title,
			Content:      req.Content,
			PasswordHash: hash,
			IsStart:      req.IsStart,
			IsEnd:        req.IsEnd,
			Points:       req.Points,
			Hint:         req.Hint,
			AdminNote:    req.AdminNote,
			Metadata:     req.Metadata,
		})
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusCreated, nodeItem(n))
	}
}

func handleAdminUpdateNode(store game.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g, status, msg := draftGame(r, store, chi.URLParam(r, "gameID"))
		if msg != "" {
			writeError(w, status, msg)
			return
		}

		n, err := store.NodeByID(r.Context(), chi.URLParam(r, "nodeID"))
		if errors.Is(err, game.ErrNotFound) || (err == nil && n.GameID != g.ID) {
			writeError(w, http.StatusNotFound, "node not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		var req AdminNodeRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if msg := req.validate(); msg != "" {
			writeError(w, http.StatusBadRequest, msg)
			return
		}

		if other, err := store.NodeByKey(r.Context(), g.ID, req.Key); err == nil && other.ID != n.ID {
			writeError(w, http.StatusConflict, "node key already in use")
			return
		} else if err != nil && !errors.Is(err, game.ErrNotFound) {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		n.Key = req.Key
		n.Title = req.Title
		n.Content = req.Content
		n.IsStart = req.IsStart
		n.IsEnd = req.IsEnd
		n.Points = req.Points
		n.Hint = req.Hint
		n.AdminNote = req.AdminNote
		n.Metadata = req.Metadata
		if req.Password != "" {
			hash, err := game.HashPassword(req.Password)
			if err != nil {
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}
			n.PasswordHash = hash
		}

		if err := store.UpdateNode(r.Context(), n); err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, nodeItem(n))
	}
}

func handleAdminDeleteNode(store game.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g, status, msg := draftGame(r, store, chi.URLParam(r, "gameID"))
		if msg != "" {
			writeError(w, status, msg)
			return
		}

		n, err := store.NodeByID(r.Context(), chi.URLParam(r, "nodeID"))
		if errors.Is(err, game.ErrNotFound) || (err == nil && n.GameID != g.ID) {
			writeError(w, http.StatusNotFound, "node not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		if err := store.DeleteNode(r.Context(), n.ID); err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
