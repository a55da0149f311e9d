package server

import (
	"database/sql"
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"

	"github.com/huntworks/trailhunt/internal/events"
	"github.com/huntworks/trailhunt/internal/game"
)

// Services bundles everything the HTTP layer depends on. main wires it
// once; tests assemble smaller versions.
type Services struct {
	Logger   *slog.Logger
	DB       *sql.DB
	Store    game.Store
	Engine   *game.Engine
	Sessions *game.SessionRegistry
	Board    *game.Leaderboard
	Bus      *events.Bus
	Presence *events.Presence
	SPADir   string
}

func addRoutes(r chi.Router, svc Services) {
	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", handleSwaggerUI())
	r.Get("/healthz", handleHealth(svc.Logger, svc.DB))

	// Player routes; {gameSlug} is resolved by gameMiddleware.
	r.Route("/api/{gameSlug}", func(r chi.Router) {
		r.Use(gameMiddleware(game.NewValidator(svc.Store)))
		r.Post("/join", handleJoin(svc.Sessions))
		r.Get("/game/leaderboard", handleLeaderboard(svc.Board))
		r.Get("/game/events", handleEvents(svc.Sessions, svc.Bus))

		// Everything below requires a team session token.
		r.Group(func(r chi.Router) {
			r.Use(teamAuthMiddleware(svc.Sessions))
			r.Post("/game/scan", handleScan(svc.Engine))
			r.Get("/game/progress", handleProgress(svc.Engine))
			r.Get("/game/winner", handleWinner(svc.Engine))
			r.Post("/game/hint", handleHint(svc.Engine))
			r.Post("/game/chat", handleChat(svc.Bus))
			r.Post("/game/heartbeat", handleHeartbeat(svc.Presence))
			r.Post("/logout", handleLogout(svc.Sessions))
		})
	})

	r.Post("/api/admin/login", handleAdminLogin(svc.Store))
	r.Post("/api/admin/logout", handleAdminLogout(svc.Store))
	r.Get("/api/admin/me", handleAdminMe(svc.Store))

	r.Route("/api/admin/games", func(r chi.Router) {
		r.Use(adminAuthMiddleware(svc.Store))

		r.Get("/", handleAdminListGames(svc.Store))
		r.Post("/", handleAdminCreateGame(svc.Store))
		r.Get("/{gameID}", handleAdminGetGame(svc.Store))
		r.Put("/{gameID}", handleAdminUpdateGame(svc.Store, svc.Board))
		r.Delete("/{gameID}", handleAdminDeleteGame(svc.Store, svc.Board))
		r.Post("/{gameID}/activate", handleAdminActivateGame(svc.Store, svc.Bus))
		r.Post("/{gameID}/complete", handleAdminCompleteGame(svc.Store, svc.Bus))
		r.Get("/{gameID}/leaderboard", handleAdminLeaderboard(svc.Board))

		r.Get("/{gameID}/nodes", handleAdminListNodes(svc.Store))
		r.Post("/{gameID}/nodes", handleAdminCreateNode(svc.Store))
		r.Put("/{gameID}/nodes/{nodeID}", handleAdminUpdateNode(svc.Store))
		r.Delete("/{gameID}/nodes/{nodeID}", handleAdminDeleteNode(svc.Store))

		r.Get("/{gameID}/edges", handleAdminListEdges(svc.Store))
		r.Post("/{gameID}/edges", handleAdminCreateEdge(svc.Store))
		r.Delete("/{gameID}/edges/{edgeID}", handleAdminDeleteEdge(svc.Store))

		r.Get("/{gameID}/teams", handleAdminListTeams(svc.Store))
		r.Post("/{gameID}/teams", handleAdminCreateTeam(svc.Store))
		r.Put("/{gameID}/teams/{teamID}", handleAdminUpdateTeam(svc.Store))
		r.Delete("/{gameID}/teams/{teamID}", handleAdminDeleteTeam(svc.Store))
	})

	if svc.SPADir != "" {
		if info, err := os.Stat(svc.SPADir); err == nil && info.IsDir() {
			svc.Logger.Info("serving SPA", "dir", svc.SPADir)
			r.NotFound(handleSPA(svc.SPADir))
		}
	}
}
