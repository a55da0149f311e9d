package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/huntworks/trailhunt/internal/game"
)

type ctxKey int

const (
	ctxKeyGame ctxKey = iota
	ctxKeyTeam
	ctxKeyAdmin
)

// gameMiddleware resolves the {gameSlug} path segment and stores the game
// in the request context. Unknown slugs are a uniform 404; storage faults
// stay a 500 so an outage never reads as a missing game.
func gameMiddleware(check game.Validator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			slug := chi.URLParam(r, "gameSlug")
			if slug == "" {
				writeError(w, http.StatusNotFound, "game not found")
				return
			}

			g, err := check.GameBySlug(r.Context(), slug)
			if err != nil {
				writeDomainError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyGame, g)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// teamAuthMiddleware validates the Bearer token, checks the team belongs
// to the routed game, and stores the team in the context. Validation
// slides the session expiry forward.
func teamAuthMiddleware(sessions *game.SessionRegistry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				writeError(w, http.StatusUnauthorized, "authorization token required")
				return
			}

			team, err := sessions.Validate(r.Context(), token)
			if errors.Is(err, game.ErrInvalidSession) {
				writeError(w, http.StatusUnauthorized, "invalid session token")
				return
			}
			if err != nil {
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}
			if team.GameID != gameFrom(r).ID {
				writeError(w, http.StatusUnauthorized, "invalid session token")
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyTeam, team)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func adminAuthMiddleware(store game.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := adminFromRequest(r, store)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "not authenticated")
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyAdmin, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if after, ok := strings.CutPrefix(h, "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	return ""
}

func gameFrom(r *http.Request) game.Game {
	return r.Context().Value(ctxKeyGame).(game.Game)
}

func teamFrom(r *http.Request) game.Team {
	return r.Context().Value(ctxKeyTeam).(game.Team)
}

func adminFrom(r *http.Request) adminSession {
	return r.Context().Value(ctxKeyAdmin).(adminSession)
}
