package game

import (
	"context"
	"sync"
	"time"

	"github.com/huntworks/trailhunt/internal/events"
)

// Engine turns raw "team scanned node" events into validated state
// transitions, scoring, win detection, and bus publications. One instance
// owns all game state for the deployment.
type Engine struct {
	store Store
	check Validator
	board *Leaderboard
	bus   *events.Bus
	now   func() time.Time

	mu        sync.Mutex
	teamLocks map[string]*sync.Mutex
}

func NewEngine(store Store, bus *events.Bus, board *Leaderboard) *Engine {
	return &Engine{
		store:     store,
		check:     NewValidator(store),
		board:     board,
		bus:       bus,
		now:       time.Now,
		teamLocks: make(map[string]*sync.Mutex),
	}
}

// lockTeam returns the mutex serializing all mutations of one team's scan
// history. Scans from different teams stay independent.
func (e *Engine) lockTeam(teamID string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	m, ok := e.teamLocks[teamID]
	if !ok {
		m = &sync.Mutex{}
		e.teamLocks[teamID] = m
	}
	return m
}

// NodeView is the public projection of a node: everything a team may see,
// nothing an admin authored for themselves.
type NodeView struct {
	Key              string  `json:"key"`
	Title            string  `json:"title"`
	Content          Content `json:"content"`
	Points           int     `json:"points"`
	RequiresPassword bool    `json:"requiresPassword,omitempty"`
	Hint             bool    `json:"hasHint,omitempty"`
}

func viewOf(n Node) NodeView {
	return NodeView{
		Key:              n.Key,
		Title:            n.Title,
		Content:          n.Content,
		Points:           n.Points,
		RequiresPassword: n.RequiresPassword(),
		Hint:             n.Hint != "",
	}
}

func viewsOf(nodes []Node) []NodeView {
	views := make([]NodeView, len(nodes))
	for i, n := range nodes {
		views[i] = viewOf(n)
	}
	return views
}

// TeamProgress is the full derived state of one team.
type TeamProgress struct {
	Team        Team       `json:"team"`
	Scans       []Scan     `json:"scans"`
	CurrentNode *NodeView  `json:"currentNode"`
	NextClue    string     `json:"nextClue,omitempty"`
	NextNodes   []NodeView `json:"nextNodes"`
	TotalPoints int        `json:"totalPoints"`
	NodesFound  int        `json:"nodesFound"`
	IsFinished  bool       `json:"isFinished"`
}

// Progress derives a team's position, score, and legal next moves from its
// scan log.
func (e *Engine) Progress(ctx context.Context, teamID string) (TeamProgress, error) {
	team, g, err := e.check.TeamAndGame(ctx, teamID)
	if err != nil {
		return TeamProgress{}, err
	}

	scans, nodes, nodesByID, edges, err := e.loadGameState(ctx, g.ID, team.ID)
	if err != nil {
		return TeamProgress{}, err
	}
	hintCosts, err := e.store.HintCosts(ctx, g.ID)
	if err != nil {
		return TeamProgress{}, err
	}

	prog := deriveProgress(g, team, scans, nodes, nodesByID, edges)

	tp := TeamProgress{
		Team:        team,
		Scans:       scans,
		NextNodes:   viewsOf(prog.nextNodes),
		TotalPoints: prog.points - hintCosts[team.ID],
		NodesFound:  prog.nodesFound,
		IsFinished:  prog.finished,
	}
	if n, ok := nodesByID[prog.currentNodeID]; ok {
		v := viewOf(n)
		tp.CurrentNode = &v
	}
	if len(prog.nextNodes) > 0 {
		tp.NextClue = prog.nextNodes[0].Title
	}
	if tp.Scans == nil {
		tp.Scans = []Scan{}
	}
	if tp.NextNodes == nil {
		tp.NextNodes = []NodeView{}
	}
	return tp, nil
}

// CheckWinner reports whether the team was the first to finish its game.
// Ties go to the earliest completion timestamp, then team id.
func (e *Engine) CheckWinner(ctx context.Context, teamID string) (bool, error) {
	team, g, err := e.check.TeamAndGame(ctx, teamID)
	if err != nil {
		return false, err
	}

	nodes, err := e.store.ListNodes(ctx, g.ID)
	if err != nil {
		return false, err
	}
	nodesByID := make(map[string]Node, len(nodes))
	for _, n := range nodes {
		nodesByID[n.ID] = n
	}
	teams, err := e.store.ListTeams(ctx, g.ID)
	if err != nil {
		return false, err
	}
	allScans, err := e.store.ScansByGame(ctx, g.ID)
	if err != nil {
		return false, err
	}
	byTeam := make(map[string][]Scan)
	for _, sc := range allScans {
		byTeam[sc.TeamID] = append(byTeam[sc.TeamID], sc)
	}

	var winnerID string
	var winnerAt time.Time
	for _, t := range teams {
		scans := byTeam[t.ID]
		prog := deriveProgress(g, t, scans, nodes, nodesByID, nil)
		if !prog.finished {
			continue
		}
		finishedAt := scans[len(scans)-1].CreatedAt
		if winnerID == "" || finishedAt.Before(winnerAt) ||
			(finishedAt.Equal(winnerAt) && t.ID < winnerID) {
			winnerID = t.ID
			winnerAt = finishedAt
		}
	}

	return winnerID == team.ID, nil
}

// RevealHint returns a node's hint and records the deduction, once per
// team and node. The node must be already scanned or among the team's
// current next moves.
func (e *Engine) RevealHint(ctx context.Context, teamID, nodeKey string) (string, int, error) {
	team, g, err := e.check.TeamAndGame(ctx, teamID)
	if err != nil {
		return "", 0, err
	}
	if err := e.check.RequireStatus(g, StatusActive); err != nil {
		return "", 0, err
	}

	node, found, err := NewGraph(e.store, g.ID).NodeByKey(ctx, nodeKey)
	if err != nil {
		return "", 0, err
	}
	if !found {
		return "", 0, precondition("node not found")
	}
	if node.Hint == "" {
		return "", 0, precondition("node has no hint")
	}

	scans, nodes, nodesByID, edges, err := e.loadGameState(ctx, g.ID, team.ID)
	if err != nil {
		return "", 0, err
	}
	prog := deriveProgress(g, team, scans, nodes, nodesByID, edges)

	allowed := false
	for _, sc := range scans {
		if sc.NodeID == node.ID {
			allowed = true
		}
	}
	for _, n := range prog.nextNodes {
		if n.ID == node.ID {
			allowed = true
		}
	}
	if !allowed {
		return "", 0, precondition("hint not available for this node")
	}

	created, err := e.store.CreateHintUsage(ctx, HintUsage{
		GameID: g.ID,
		TeamID: team.ID,
		NodeID: node.ID,
		Cost:   g.Settings.HintCost,
	})
	if err != nil {
		return "", 0, err
	}
	if created {
		e.board.Invalidate(g.ID)
		e.publishLeaderboard(ctx, g)
	}
	return node.Hint, g.Settings.HintCost, nil
}

// loadGameState fetches the pieces every derivation needs.
func (e *Engine) loadGameState(ctx context.Context, gameID, teamID string) ([]Scan, []Node, map[string]Node, []Edge, error) {
	scans, err := e.store.ScansByTeam(ctx, teamID)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	nodes, err := e.store.ListNodes(ctx, gameID)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	edges, err := e.store.ListEdges(ctx, gameID)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	nodesByID := make(map[string]Node, len(nodes))
	for _, n := range nodes {
		nodesByID[n.ID] = n
	}
	return scans, nodes, nodesByID, edges, nil
}

func (e *Engine) publishLeaderboard(ctx context.Context, g Game) {
	entries, err := e.board.Standings(ctx, g.ID)
	if err != nil {
		return
	}
	e.bus.Publish(g.Slug, events.KindLeaderboard, entries)
}
