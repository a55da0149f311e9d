package game

import (
	"encoding/json"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type GameStatus string

const (
	StatusDraft     GameStatus = "draft"
	StatusActive    GameStatus = "active"
	StatusCompleted GameStatus = "completed"
)

type RankingMode string

const (
	RankByPoints RankingMode = "points"
	RankByNodes  RankingMode = "nodes"
	RankByTime   RankingMode = "time"
)

// Settings are the per-game rules the engine consults on every scan.
type Settings struct {
	RankingMode         RankingMode   `json:"rankingMode"`
	BasePoints          int           `json:"basePoints"`
	TimeBonus           bool          `json:"timeBonus"`
	TimeBonusWindow     time.Duration `json:"timeBonusWindow"`
	TimeBonusMultiplier float64       `json:"timeBonusMultiplier"`
	RandomMode          bool          `json:"randomMode"`
	HintCost            int           `json:"hintCost"`
}

type Game struct {
	ID        string
	Name      string
	Slug      string
	Status    GameStatus
	Settings  Settings
	CreatedAt time.Time
}

type ContentKind string

const (
	ContentText  ContentKind = "text"
	ContentImage ContentKind = "image"
	ContentVideo ContentKind = "video"
	ContentAudio ContentKind = "audio"
	ContentLink  ContentKind = "link"
)

type Content struct {
	Kind ContentKind `json:"kind"`
	URL  string      `json:"url,omitempty"`
	Body string      `json:"body,omitempty"`
}

// Node is a scannable checkpoint. Key is the QR payload, unique per game.
type Node struct {
	ID           string
	GameID       string
	Key          string
	Title        string
	Content      Content
	PasswordHash string // empty means no password gate
	IsStart      bool
	IsEnd        bool
	Points       int
	Hint         string
	AdminNote    string
	Metadata     json.RawMessage
	CreatedAt    time.Time
}

// RequiresPassword reports whether the node itself is content-gated.
func (n Node) RequiresPassword() bool { return n.PasswordHash != "" }

// CheckPassword verifies a supplied password against the node's hash.
func (n Node) CheckPassword(password string) bool {
	if n.PasswordHash == "" {
		return true
	}
	return bcrypt.CompareHashAndPassword([]byte(n.PasswordHash), []byte(password)) == nil
}

type ConditionKind string

const (
	ConditionAlways   ConditionKind = "always"
	ConditionPassword ConditionKind = "password"
)

// EdgeCondition is a closed sum: either always passable, or gated on a
// password whose bcrypt hash is stored.
type EdgeCondition struct {
	Kind         ConditionKind
	PasswordHash string
}

// Satisfied reports whether the condition passes with the supplied password.
func (c EdgeCondition) Satisfied(password string) bool {
	switch c.Kind {
	case ConditionPassword:
		return bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(password)) == nil
	default:
		return true
	}
}

// Edge is a directed legal transition between two nodes of the same game.
type Edge struct {
	ID        string
	GameID    string
	From      string // node id
	To        string // node id
	Condition EdgeCondition
	SortOrder int
	CreatedAt time.Time
}

type Team struct {
	ID          string
	GameID      string
	Code        string // unique per game, stored upper-case
	Name        string
	StartNodeID string // empty if unassigned
	LogoURL     string
	CreatedAt   time.Time
}

// Scan is an immutable record of a team reaching a node. A team's ordered
// scan sequence is the authoritative progress record; current position is
// always derived from it, never stored.
type Scan struct {
	ID        string
	GameID    string
	TeamID    string
	NodeID    string
	IP        string
	UserAgent string
	Points    int
	CreatedAt time.Time
}

type HintUsage struct {
	ID        string
	GameID    string
	TeamID    string
	NodeID    string
	Cost      int
	CreatedAt time.Time
}

type TeamSession struct {
	ID        string
	TeamID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// LeaderboardEntry is a derived standing; never persisted.
type LeaderboardEntry struct {
	Rank        int       `json:"rank"`
	TeamID      string    `json:"teamId"`
	TeamName    string    `json:"teamName"`
	LogoURL     string    `json:"logoUrl,omitempty"`
	NodesFound  int       `json:"nodesFound"`
	Points      int       `json:"points"`
	CurrentClue string    `json:"currentClue,omitempty"`
	LastScanAt  time.Time `json:"lastScanAt"`
	Finished    bool      `json:"finished"`
}

// HashPassword bcrypt-hashes a node, edge, or admin password.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(h), err
}
