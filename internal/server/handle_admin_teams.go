package server

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/huntworks/trailhunt/internal/game"
)

// AdminTeamItem represents a team within a game.
type AdminTeamItem struct {
	ID          string    `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	StartNodeID string    `json:"startNodeId,omitempty"`
	LogoURL     string    `json:"logoUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

func teamItem(t game.Team) AdminTeamItem {
	return AdminTeamItem{
		ID:          t.ID,
		Code:        t.Code,
		Name:        t.Name,
		StartNodeID: t.StartNodeID,
		LogoURL:     t.LogoURL,
		CreatedAt:   t.CreatedAt,
	}
}

// AdminTeamRequest is the request body for creating/updating a team. The
// code is auto-generated if blank and immutable after creation.
type AdminTeamRequest struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	LogoURL string `json:"logoUrl"`
}

func (req *AdminTeamRequest) validate() string {
	req.Code = strings.ToUpper(strings.TrimSpace(req.Code))
	req.Name = strings.TrimSpace(req.Name)
	req.LogoURL = strings.TrimSpace(req.LogoURL)
	if req.Name == "" {
		return "name is required"
	}
	return ""
}

func generateTeamCode() string {
	b := make([]byte, 3)
	rand.Read(b)
	return strings.ToUpper(hex.EncodeToString(b))
}

func handleAdminListTeams(store game.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID := chi.URLParam(r, "gameID")

		if _, err := store.GameByID(r.Context(), gameID); errors.Is(err, game.ErrNotFound) {
			writeError(w, http.StatusNotFound, "game not found")
			return
		} else if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		teams, err := store.ListTeams(r.Context(), gameID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		out := []AdminTeamItem{}
		for _, t := range teams {
			out = append(out, teamItem(t))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func handleAdminCreateTeam(store game.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID := chi.URLParam(r, "gameID")

		g, err := store.GameByID(r.Context(), gameID)
		if errors.Is(err, game.ErrNotFound) {
			writeError(w, http.StatusNotFound, "game not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		var req AdminTeamRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if msg := req.validate(); msg != "" {
			writeError(w, http.StatusBadRequest, msg)
			return
		}

		code := req.Code
		if code == "" {
			code = generateTeamCode()
		}
		if _, err := store.TeamByCode(r.Context(), g.ID, code); err == nil {
			writeError(w, http.StatusConflict, "team code already in use")
			return
		} else if !errors.Is(err, game.ErrNotFound) {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		// Spread teams evenly across start nodes.
		nodes, err := store.ListNodes(r.Context(), g.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		var starts []game.Node
		for _, n := range nodes {
			if n.IsStart {
				starts = append(starts, n)
			}
		}
		teams, err := store.ListTeams(r.Context(), g.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		t, err := store.CreateTeam(r.Context(), game.Team{
			GameID:      g.ID,
			Code:        code,
			Name:        req.Name,
			StartNodeID: game.AssignStartNode(starts, teams),
			LogoURL:     req.LogoURL,
		})
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusCreated, teamItem(t))
	}
}

func handleAdminUpdateTeam(store game.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID := chi.URLParam(r, "gameID")
		teamID := chi.URLParam(r, "teamID")

		var req AdminTeamRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if msg := req.validate(); msg != "" {
			writeError(w, http.StatusBadRequest, msg)
			return
		}

		t, err := store.TeamByID(r.Context(), teamID)
		if errors.Is(err, game.ErrNotFound) || (err == nil && t.GameID != gameID) {
			writeError(w, http.StatusNotFound, "team not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		t.Name = req.Name
		t.LogoURL = req.LogoURL
		if err := store.UpdateTeam(r.Context(), t); err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, teamItem(t))
	}
}

func handleAdminDeleteTeam(store game.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID := chi.URLParam(r, "gameID")
		teamID := chi.URLParam(r, "teamID")

		t, err := store.TeamByID(r.Context(), teamID)
		if errors.Is(err, game.ErrNotFound) || (err == nil && t.GameID != gameID) {
			writeError(w, http.StatusNotFound, "team not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		// A team that has scanned is part of the game's history.
		scans, err := store.ScansByTeam(r.Context(), t.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if len(scans) > 0 {
			writeError(w, http.StatusConflict, "cannot delete a team with recorded scans")
			return
		}

		if err := store.DeleteTeam(r.Context(), t.ID); err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
