package server

import (
	"context"
	"errors"
	"log/slog"

	"github.com/huntworks/trailhunt/internal/game"
)

const (
	seedAdminEmail    = "admin@trailhunt.local"
	seedAdminPassword = "change-me"
)

// SeedDemo creates a default admin and a small demo hunt on an empty
// database. Idempotent: does nothing once any game exists.
func SeedDemo(ctx context.Context, logger *slog.Logger, store game.Store) error {
	existing, err := store.ListGames(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	if _, _, err := store.AdminByEmail(ctx, seedAdminEmail); errors.Is(err, game.ErrNotFound) {
		hash, err := game.HashPassword(seedAdminPassword)
		if err != nil {
			return err
		}
		if _, err := store.CreateAdmin(ctx, seedAdminEmail, hash); err != nil {
			return err
		}
		logger.Warn("default admin created, change the password", "email", seedAdminEmail)
	} else if err != nil {
		return err
	}

	g, err := store.CreateGame(ctx, game.Game{
		Name:   "Demo Hunt",
		Slug:   "demo",
		Status: game.StatusActive,
		Settings: game.Settings{
			RankingMode: game.RankByPoints,
			BasePoints:  100,
			HintCost:    25,
		},
	})
	if err != nil {
		return err
	}

	gateHash, err := game.HashPassword("ADVENTURE")
	if err != nil {
		return err
	}

	mkNode := func(n game.Node) (game.Node, error) {
		n.GameID = g.ID
		return store.CreateNode(ctx, n)
	}

	s, err := mkNode(game.Node{
		Key: "node-s", Title: "The Old Gate", Points: 100,
		IsStart: true, PasswordHash: gateHash,
		Hint:    "Look under the arch",
		Content: game.Content{Kind: game.ContentText, Body: "Welcome, adventurers. Find the fountain."},
	})
	if err != nil {
		return err
	}
	b, err := mkNode(game.Node{
		Key: "node-b", Title: "Fountain Square", Points: 150,
		Content: game.Content{Kind: game.ContentText, Body: "The tower shows the hour. Go there."},
	})
	if err != nil {
		return err
	}
	c, err := mkNode(game.Node{
		Key: "node-c", Title: "Clock Tower", Points: 150,
		Content: game.Content{Kind: game.ContentText, Body: "Behind the hedge lies the garden."},
	})
	if err != nil {
		return err
	}
	d, err := mkNode(game.Node{
		Key: "node-d", Title: "Hidden Garden", Points: 300,
		IsEnd:   true,
		Content: game.Content{Kind: game.ContentText, Body: "You made it. Well done!"},
	})
	if err != nil {
		return err
	}

	for _, pair := range [][2]game.Node{{s, b}, {b, c}, {c, d}} {
		if _, err := store.CreateEdge(ctx, game.Edge{
			GameID:    g.ID,
			From:      pair[0].ID,
			To:        pair[1].ID,
			Condition: game.EdgeCondition{Kind: game.ConditionAlways},
		}); err != nil {
			return err
		}
	}

	for _, team := range []struct{ code, name string }{
		{"ALPHA", "Alpha"},
		{"BRAVO", "Bravo"},
	} {
		if _, err := store.CreateTeam(ctx, game.Team{
			GameID:      g.ID,
			Code:        team.code,
			Name:        team.name,
			StartNodeID: s.ID,
		}); err != nil {
			return err
		}
	}

	logger.Info("demo game seeded", "slug", g.Slug)
	return nil
}
