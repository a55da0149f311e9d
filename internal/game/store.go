package game

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a row is absent. Callers decide whether
// absence is an error; the store never treats it as a fault.
var ErrNotFound = errors.New("not found")

// Store is the persistence contract the engine consumes. Implementations
// must not expose partial writes; sqlite with WAL satisfies this.
type Store interface {
	CreateGame(ctx context.Context, g Game) (Game, error)
	GameByID(ctx context.Context, id string) (Game, error)
	GameBySlug(ctx context.Context, slug string) (Game, error)
	ListGames(ctx context.Context) ([]Game, error)
	UpdateGame(ctx context.Context, g Game) error
	SetGameStatus(ctx context.Context, id string, status GameStatus) error
	DeleteGame(ctx context.Context, id string) error

	CreateNode(ctx context.Context, n Node) (Node, error)
	NodeByID(ctx context.Context, id string) (Node, error)
	NodeByKey(ctx context.Context, gameID, key string) (Node, error)
	ListNodes(ctx context.Context, gameID string) ([]Node, error)
	UpdateNode(ctx context.Context, n Node) error
	DeleteNode(ctx context.Context, id string) error

	CreateEdge(ctx context.Context, e Edge) (Edge, error)
	ListEdges(ctx context.Context, gameID string) ([]Edge, error)
	// OutEdges returns the outgoing edges of a node ordered by sort order,
	// then creation order.
	OutEdges(ctx context.Context, gameID, fromNodeID string) ([]Edge, error)
	DeleteEdge(ctx context.Context, id string) error

	CreateTeam(ctx context.Context, t Team) (Team, error)
	TeamByID(ctx context.Context, id string) (Team, error)
	TeamByCode(ctx context.Context, gameID, code string) (Team, error)
	ListTeams(ctx context.Context, gameID string) ([]Team, error)
	UpdateTeam(ctx context.Context, t Team) error
	DeleteTeam(ctx context.Context, id string) error

	CreateScan(ctx context.Context, s Scan) (Scan, error)
	// ScansByTeam returns a team's scans ordered oldest first.
	ScansByTeam(ctx context.Context, teamID string) ([]Scan, error)
	ScansByGame(ctx context.Context, gameID string) ([]Scan, error)

	// CreateHintUsage records a hint reveal; created is false when the team
	// already used the hint for that node (no second deduction).
	CreateHintUsage(ctx context.Context, h HintUsage) (created bool, err error)
	// HintCosts returns each team's total hint deduction for a game.
	HintCosts(ctx context.Context, gameID string) (map[string]int, error)

	CreateSession(ctx context.Context, s TeamSession) error
	SessionByToken(ctx context.Context, token string) (TeamSession, error)
	ExtendSession(ctx context.Context, token string, until time.Time) error
	DeleteSession(ctx context.Context, token string) error
	DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error)

	CreateAdmin(ctx context.Context, email, passwordHash string) (string, error)
	AdminByEmail(ctx context.Context, email string) (id, passwordHash string, err error)
	CreateAdminSession(ctx context.Context, adminID string) (string, error)
	AdminBySession(ctx context.Context, sessionID string) (id, email string, err error)
	DeleteAdminSession(ctx context.Context, sessionID string) error
}
