package game

import (
	"context"
	"errors"
	"math"

	"github.com/huntworks/trailhunt/internal/events"
)

// ClientMeta is recorded with each scan for auditing.
type ClientMeta struct {
	IP        string
	UserAgent string
}

// ScanResult is the structured outcome of a scan attempt. Validation
// failures come back with Success=false and a specific message; they are
// never error values. Only infrastructure faults surface as errors.
type ScanResult struct {
	Success          bool       `json:"success"`
	Message          string     `json:"message,omitempty"`
	Duplicate        bool       `json:"duplicate,omitempty"`
	PasswordRequired bool       `json:"passwordRequired,omitempty"`
	PointsAwarded    int        `json:"pointsAwarded"`
	GameComplete     bool       `json:"isGameComplete"`
	Node             *NodeView  `json:"node,omitempty"`
	NextNodes        []NodeView `json:"nextNodes,omitempty"`
}

func scanFailure(msg string) ScanResult {
	return ScanResult{Success: false, Message: msg}
}

// ScanEvent is published on the scan topic after a successful scan.
type ScanEvent struct {
	TeamID    string `json:"teamId"`
	TeamName  string `json:"teamName"`
	NodeKey   string `json:"nodeKey"`
	NodeTitle string `json:"nodeTitle"`
	Points    int    `json:"points"`
	Finished  bool   `json:"finished"`
}

// RecordScan decides whether the team's attempt to register the node is
// legal and, if so, applies it: one scan row, cache invalidation, and scan
// plus leaderboard events. Scanning the same node twice is a no-op success
// carrying the originally awarded points.
func (e *Engine) RecordScan(ctx context.Context, teamID, nodeKey, password string, meta ClientMeta) (ScanResult, error) {
	team, err := e.store.TeamByID(ctx, teamID)
	if errors.Is(err, ErrNotFound) {
		return scanFailure("team not found"), nil
	}
	if err != nil {
		return ScanResult{}, err
	}

	g, err := e.store.GameByID(ctx, team.GameID)
	if errors.Is(err, ErrNotFound) {
		return scanFailure("game not found"), nil
	}
	if err != nil {
		return ScanResult{}, err
	}
	if g.Status != StatusActive {
		return scanFailure("game is not active"), nil
	}

	// Key lookup is scoped to the team's game, so a QR code from another
	// game resolves to nothing here.
	graph := NewGraph(e.store, g.ID)
	node, found, err := graph.NodeByKey(ctx, nodeKey)
	if err != nil {
		return ScanResult{}, err
	}
	if !found {
		return scanFailure("node not found"), nil
	}

	// The read-check-write sequence below must be atomic per team.
	lock := e.lockTeam(team.ID)
	lock.Lock()
	defer lock.Unlock()

	scans, nodes, nodesByID, edges, err := e.loadGameState(ctx, g.ID, team.ID)
	if err != nil {
		return ScanResult{}, err
	}

	// Duplicate suppression: a replayed scan must never double-score.
	for _, sc := range scans {
		if sc.NodeID == node.ID {
			prog := deriveProgress(g, team, scans, nodes, nodesByID, edges)
			v := viewOf(node)
			return ScanResult{
				Success:       true,
				Duplicate:     true,
				PointsAwarded: sc.Points,
				GameComplete:  prog.finished,
				Node:          &v,
				NextNodes:     viewsOf(prog.nextNodes),
			}, nil
		}
	}

	if !g.Settings.RandomMode {
		ok, err := legalMove(ctx, graph, team, node, scans, password)
		if err != nil {
			return ScanResult{}, err
		}
		if !ok {
			return scanFailure("illegal transition"), nil
		}
	}

	// The node's own password gate is independent of edge conditions; a
	// miss is a re-prompt, not a validation failure.
	if node.RequiresPassword() && !node.CheckPassword(password) {
		return ScanResult{PasswordRequired: true, Message: "password required"}, nil
	}

	points := node.Points
	if points == 0 {
		points = g.Settings.BasePoints
	}
	if bonus, ok := e.timeBonus(g, scans); ok {
		points = int(math.Round(float64(points) * bonus))
	}

	sc, err := e.store.CreateScan(ctx, Scan{
		GameID:    g.ID,
		TeamID:    team.ID,
		NodeID:    node.ID,
		IP:        meta.IP,
		UserAgent: meta.UserAgent,
		Points:    points,
		CreatedAt: e.now(),
	})
	if err != nil {
		return ScanResult{}, err
	}

	scans = append(scans, sc)
	prog := deriveProgress(g, team, scans, nodes, nodesByID, edges)

	e.board.Invalidate(g.ID)
	e.bus.Publish(g.Slug, events.KindScan, ScanEvent{
		TeamID:    team.ID,
		TeamName:  team.Name,
		NodeKey:   node.Key,
		NodeTitle: node.Title,
		Points:    points,
		Finished:  prog.finished,
	})
	e.publishLeaderboard(ctx, g)

	v := viewOf(node)
	return ScanResult{
		Success:       true,
		PointsAwarded: points,
		GameComplete:  prog.finished,
		Node:          &v,
		NextNodes:     viewsOf(prog.nextNodes),
	}, nil
}

// legalMove checks graph legality: the very first scan must hit the
// assigned start node; afterwards an edge from the current node whose
// condition is satisfied must exist.
func legalMove(ctx context.Context, graph Graph, team Team, node Node, scans []Scan, password string) (bool, error) {
	if len(scans) == 0 {
		return team.StartNodeID != "" && node.ID == team.StartNodeID, nil
	}

	out, err := graph.OutEdges(ctx, scans[len(scans)-1].NodeID)
	if err != nil {
		return false, err
	}
	for _, edge := range out {
		if edge.To == node.ID && edge.Condition.Satisfied(password) {
			return true, nil
		}
	}
	return false, nil
}

// timeBonus returns the multiplier when the game rewards fast transitions
// and the gap since the previous scan is within the window. The first scan
// has no previous scan and never earns a bonus.
func (e *Engine) timeBonus(g Game, scans []Scan) (float64, bool) {
	if !g.Settings.TimeBonus || g.Settings.TimeBonusWindow <= 0 || len(scans) == 0 {
		return 0, false
	}
	last := scans[len(scans)-1].CreatedAt
	if e.now().Sub(last) <= g.Settings.TimeBonusWindow {
		return g.Settings.TimeBonusMultiplier, true
	}
	return 0, false
}
