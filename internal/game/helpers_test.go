package game

import (
	"context"
	"testing"
	"time"

	"github.com/huntworks/trailhunt/internal/database"
	"github.com/huntworks/trailhunt/internal/events"
	"github.com/huntworks/trailhunt/internal/migrations"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	db, err := database.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := migrations.Run(db); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	return NewSQLiteStore(db)
}

func newTestEngine(t *testing.T) (*Engine, *SQLiteStore, *events.Bus, *Leaderboard) {
	t.Helper()
	store := newTestStore(t)
	bus := events.NewBus()
	board := NewLeaderboard(store, 3*time.Second)
	return NewEngine(store, bus, board), store, bus, board
}

// demoHunt is the seeded trail: start S (password "ADVENTURE", 100 pts) →
// B (150) → C (150) → end D (300, no outgoing edges).
type demoHunt struct {
	game       Game
	s, b, c, d Node
	alpha      Team
}

func seedDemoHunt(t *testing.T, store *SQLiteStore, settings Settings) demoHunt {
	t.Helper()
	ctx := context.Background()

	g, err := store.CreateGame(ctx, Game{
		Name:     "Demo Hunt",
		Slug:     "demo",
		Status:   StatusActive,
		Settings: settings,
	})
	if err != nil {
		t.Fatalf("create game: %v", err)
	}

	hash, err := HashPassword("ADVENTURE")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	mkNode := func(key, title string, points int, opts Node) Node {
		opts.GameID = g.ID
		opts.Key = key
		opts.Title = title
		opts.Points = points
		n, err := store.CreateNode(ctx, opts)
		if err != nil {
			t.Fatalf("create node %s: %v", key, err)
		}
		return n
	}

	s := mkNode("node-s", "The Old Gate", 100, Node{IsStart: true, PasswordHash: hash, Hint: "Look under the arch"})
	b := mkNode("node-b", "Fountain Square", 150, Node{})
	c := mkNode("node-c", "Clock Tower", 150, Node{})
	d := mkNode("node-d", "Hidden Garden", 300, Node{IsEnd: true})

	mkEdge := func(from, to Node, cond EdgeCondition, order int) {
		if _, err := store.CreateEdge(ctx, Edge{
			GameID: g.ID, From: from.ID, To: to.ID, Condition: cond, SortOrder: order,
		}); err != nil {
			t.Fatalf("create edge: %v", err)
		}
	}
	mkEdge(s, b, EdgeCondition{Kind: ConditionAlways}, 0)
	mkEdge(b, c, EdgeCondition{Kind: ConditionAlways}, 0)
	mkEdge(c, d, EdgeCondition{Kind: ConditionAlways}, 0)

	alpha, err := store.CreateTeam(ctx, Team{
		GameID: g.ID, Code: "ALPHA", Name: "Alpha", StartNodeID: s.ID,
	})
	if err != nil {
		t.Fatalf("create team: %v", err)
	}

	return demoHunt{game: g, s: s, b: b, c: c, d: d, alpha: alpha}
}

func addTeam(t *testing.T, store *SQLiteStore, gameID, code, name, startNodeID string) Team {
	t.Helper()
	team, err := store.CreateTeam(context.Background(), Team{
		GameID: gameID, Code: code, Name: name, StartNodeID: startNodeID,
	})
	if err != nil {
		t.Fatalf("create team %s: %v", code, err)
	}
	return team
}

func mustScan(t *testing.T, e *Engine, teamID, nodeKey, password string) ScanResult {
	t.Helper()
	res, err := e.RecordScan(context.Background(), teamID, nodeKey, password, ClientMeta{})
	if err != nil {
		t.Fatalf("scan %s: %v", nodeKey, err)
	}
	if !res.Success {
		t.Fatalf("scan %s failed: %+v", nodeKey, res)
	}
	return res
}
