package server

import (
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/huntworks/trailhunt/internal/events"
	"github.com/huntworks/trailhunt/internal/game"
)

// GameSettingsDTO is the wire form of game settings. The bonus window is
// carried in whole seconds.
type GameSettingsDTO struct {
	RankingMode         string  `json:"rankingMode"`
	BasePoints          int     `json:"basePoints"`
	TimeBonus           bool    `json:"timeBonus"`
	TimeBonusWindowSecs int     `json:"timeBonusWindowSecs"`
	TimeBonusMultiplier float64 `json:"timeBonusMultiplier"`
	RandomMode          bool    `json:"randomMode"`
	HintCost            int     `json:"hintCost"`
}

func (d GameSettingsDTO) toSettings() game.Settings {
	return game.Settings{
		RankingMode:         game.RankingMode(d.RankingMode),
		BasePoints:          d.BasePoints,
		TimeBonus:           d.TimeBonus,
		TimeBonusWindow:     time.Duration(d.TimeBonusWindowSecs) * time.Second,
		TimeBonusMultiplier: d.TimeBonusMultiplier,
		RandomMode:          d.RandomMode,
		HintCost:            d.HintCost,
	}
}

func settingsDTO(s game.Settings) GameSettingsDTO {
	return GameSettingsDTO{
		RankingMode:         string(s.RankingMode),
		BasePoints:          s.BasePoints,
		TimeBonus:           s.TimeBonus,
		TimeBonusWindowSecs: int(s.TimeBonusWindow / time.Second),
		TimeBonusMultiplier: s.TimeBonusMultiplier,
		RandomMode:          s.RandomMode,
		HintCost:            s.HintCost,
	}
}

// AdminGameSummary is returned in the list endpoint.
type AdminGameSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Status    string    `json:"status"`
	TeamCount int       `json:"teamCount"`
	NodeCount int       `json:"nodeCount"`
	CreatedAt time.Time `json:"createdAt"`
}

// AdminGameDetail is the full game including settings.
type AdminGameDetail struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Slug      string          `json:"slug"`
	Status    string          `json:"status"`
	Settings  GameSettingsDTO `json:"settings"`
	CreatedAt time.Time       `json:"createdAt"`
}

func gameDetail(g game.Game) AdminGameDetail {
	return AdminGameDetail{
		ID:        g.ID,
		Name:      g.Name,
		Slug:      g.Slug,
		Status:    string(g.Status),
		Settings:  settingsDTO(g.Settings),
		CreatedAt: g.CreatedAt,
	}
}

// AdminGameRequest is the request body for creating/updating a game.
type AdminGameRequest struct {
	Name     string          `json:"name"`
	Slug     string          `json:"slug"`
	Settings GameSettingsDTO `json:"settings"`
}

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

var validRankingModes = map[string]bool{
	string(game.RankByPoints): true,
	string(game.RankByNodes):  true,
	string(game.RankByTime):   true,
}

func (req *AdminGameRequest) validate() string {
	req.Name = strings.TrimSpace(req.Name)
	req.Slug = strings.TrimSpace(strings.ToLower(req.Slug))
	if req.Name == "" {
		return "name is required"
	}
	if req.Slug == "" {
		return "slug is required"
	}
	if !slugPattern.MatchString(req.Slug) {
		return "slug must be lowercase letters, digits, and hyphens"
	}
	if req.Settings.RankingMode == "" {
		req.Settings.RankingMode = string(game.RankByPoints)
	}
	if !validRankingModes[req.Settings.RankingMode] {
		return "rankingMode must be points, nodes, or time"
	}
	if req.Settings.BasePoints < 0 || req.Settings.HintCost < 0 {
		return "point values must not be negative"
	}
	if req.Settings.TimeBonus {
		if req.Settings.TimeBonusWindowSecs <= 0 {
			return "timeBonusWindowSecs must be positive when timeBonus is on"
		}
		if req.Settings.TimeBonusMultiplier <= 1 {
			return "timeBonusMultiplier must be greater than 1"
		}
	}
	return ""
}

func handleAdminListGames(store game.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		games, err := store.ListGames(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		out := []AdminGameSummary{}
		for _, g := range games {
			teams, err := store.ListTeams(r.Context(), g.ID)
			if err != nil {
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}
			nodes, err := store.ListNodes(r.Context(), g.ID)
			if err != nil {
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}
			out = append(out, AdminGameSummary{
				ID:        g.ID,
				Name:      g.Name,
				Slug:      g.Slug,
				Status:    string(g.Status),
				TeamCount: len(teams),
				NodeCount: len(nodes),
				CreatedAt: g.CreatedAt,
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func handleAdminCreateGame(store game.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AdminGameRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if msg := req.validate(); msg != "" {
			writeError(w, http.StatusBadRequest, msg)
			return
		}

		if _, err := store.GameBySlug(r.Context(), req.Slug); err == nil {
			writeError(w, http.StatusConflict, "slug already in use")
			return
		} else if !errors.Is(err, game.ErrNotFound) {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		g, err := store.CreateGame(r.Context(), game.Game{
			Name:     req.Name,
			Slug:     req.Slug,
			Status:   game.StatusDraft,
			Settings: req.Settings.toSettings(),
		})
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusCreated, gameDetail(g))
	}
}

func handleAdminGetGame(store game.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g, err := store.GameByID(r.Context(), chi.URLParam(r, "gameID"))
		if errors.Is(err, game.ErrNotFound) {
			writeError(w, http.StatusNotFound, "game not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, gameDetail(g))
	}
}

func handleAdminUpdateGame(store game.Store, board *game.Leaderboard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID := chi.URLParam(r, "gameID")

		var req AdminGameRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if msg := req.validate(); msg != "" {
			writeError(w, http.StatusBadRequest, msg)
			return
		}

		g, err := store.GameByID(r.Context(), gameID)
		if errors.Is(err, game.ErrNotFound) {
			writeError(w, http.StatusNotFound, "game not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		if other, err := store.GameBySlug(r.Context(), req.Slug); err == nil && other.ID != g.ID {
			writeError(w, http.StatusConflict, "slug already in use")
			return
		} else if err != nil && !errors.Is(err, game.ErrNotFound) {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		g.Name = req.Name
		g.Slug = req.Slug
		g.Settings = req.Settings.toSettings()
		if err := store.UpdateGame(r.Context(), g); err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		// Settings changes can reorder standings.
		board.Invalidate(g.ID)

		writeJSON(w, http.StatusOK, gameDetail(g))
	}
}

func handleAdminDeleteGame(store game.Store, board *game.Leaderboard) http.HandlerFunc {
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
		if g.Status == game.StatusActive {
			writeError(w, http.StatusConflict, "cannot delete an active game")
			return
		}

		if err := store.DeleteGame(r.Context(), gameID); err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		board.Invalidate(gameID)

		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func handleAdminActivateGame(store game.Store, bus *events.Bus) http.HandlerFunc {
	check := game.NewValidator(store)
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
		if g.Status != game.StatusDraft {
			writeError(w, http.StatusConflict, "game is not a draft")
			return
		}

		// A game without a complete graph must never go live.
		if err := check.CanActivate(r.Context(), g.ID); err != nil {
			writeDomainError(w, err)
			return
		}

		if err := store.SetGameStatus(r.Context(), g.ID, game.StatusActive); err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		g.Status = game.StatusActive
		publishGameStatus(bus, g)

		writeJSON(w, http.StatusOK, gameDetail(g))
	}
}

func handleAdminCompleteGame(store game.Store, bus *events.Bus) http.HandlerFunc {
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
		if g.Status != game.StatusActive {
			writeError(w, http.StatusConflict, "game is not active")
			return
		}

		if err := store.SetGameStatus(r.Context(), g.ID, game.StatusCompleted); err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		g.Status = game.StatusCompleted
		publishGameStatus(bus, g)

		writeJSON(w, http.StatusOK, gameDetail(g))
	}
}

func publishGameStatus(bus *events.Bus, g game.Game) {
	bus.Publish(g.Slug, events.KindGameStatus, map[string]string{
		"gameId": g.ID,
		"status": string(g.Status),
	})
}
