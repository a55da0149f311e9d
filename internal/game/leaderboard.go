package game

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Leaderboard computes ranked standings from scan history, with a short
// per-game cache to absorb read bursts during live events. Any write that
// affects scoring must call Invalidate, so staleness is bounded by the
// smaller of the TTL and the next write.
type Leaderboard struct {
	store Store
	ttl   time.Duration
	now   func() time.Time

	mu    sync.RWMutex
	cache map[string]cachedBoard
}

type cachedBoard struct {
	entries    []LeaderboardEntry
	computedAt time.Time
}

func NewLeaderboard(store Store, ttl time.Duration) *Leaderboard {
	return &Leaderboard{
		store: store,
		ttl:   ttl,
		now:   time.Now,
		cache: make(map[string]cachedBoard),
	}
}

// Invalidate drops the cached standings for a game.
func (l *Leaderboard) Invalidate(gameID string) {
	l.mu.Lock()
	delete(l.cache, gameID)
	l.mu.Unlock()
}

// Standings returns the ranked entries for a game, newest ranks 1..N.
func (l *Leaderboard) Standings(ctx context.Context, gameID string) ([]LeaderboardEntry, error) {
	l.mu.RLock()
	if c, ok := l.cache[gameID]; ok && l.now().Sub(c.computedAt) < l.ttl {
		entries := make([]LeaderboardEntry, len(c.entries))
		copy(entries, c.entries)
		l.mu.RUnlock()
		return entries, nil
	}
	l.mu.RUnlock()

	entries, err := l.compute(ctx, gameID)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.cache[gameID] = cachedBoard{entries: entries, computedAt: l.now()}
	l.mu.Unlock()

	out := make([]LeaderboardEntry, len(entries))
	copy(out, entries)
	return out, nil
}

func (l *Leaderboard) compute(ctx context.Context, gameID string) ([]LeaderboardEntry, error) {
	g, err := l.store.GameByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	nodes, err := l.store.ListNodes(ctx, gameID)
	if err != nil {
		return nil, err
	}
	edges, err := l.store.ListEdges(ctx, gameID)
	if err != nil {
		return nil, err
	}
	teams, err := l.store.ListTeams(ctx, gameID)
	if err != nil {
		return nil, err
	}
	scans, err := l.store.ScansByGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	hintCosts, err := l.store.HintCosts(ctx, gameID)
	if err != nil {
		return nil, err
	}

	nodesByID := make(map[string]Node, len(nodes))
	for _, n := range nodes {
		nodesByID[n.ID] = n
	}
	byTeam := make(map[string][]Scan)
	for _, sc := range scans {
		byTeam[sc.TeamID] = append(byTeam[sc.TeamID], sc)
	}

	entries := make([]LeaderboardEntry, 0, len(teams))
	for _, t := range teams {
		ts := byTeam[t.ID]
		prog := deriveProgress(g, t, ts, nodes, nodesByID, edges)

		e := LeaderboardEntry{
			TeamID:     t.ID,
			TeamName:   t.Name,
			LogoURL:    t.LogoURL,
			NodesFound: prog.nodesFound,
			Points:     prog.points - hintCosts[t.ID],
			Finished:   prog.finished,
		}
		if len(ts) > 0 {
			e.LastScanAt = ts[len(ts)-1].CreatedAt
		}
		if len(prog.nextNodes) > 0 {
			e.CurrentClue = prog.nextNodes[0].Title
		}
		entries = append(entries, e)
	}

	sortEntries(entries, g.Settings.RankingMode)
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

// sortEntries orders finished teams first, then by ranking mode, tie-broken
// by earlier last scan and finally team id so the order is always total.
func sortEntries(entries []LeaderboardEntry, mode RankingMode) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Finished != b.Finished {
			return a.Finished
		}
		switch mode {
		case RankByNodes:
			if a.NodesFound != b.NodesFound {
				return a.NodesFound > b.NodesFound
			}
		case RankByTime:
			// Teams that never scanned sort last.
			if a.LastScanAt.IsZero() != b.LastScanAt.IsZero() {
				return !a.LastScanAt.IsZero()
			}
			if !a.LastScanAt.Equal(b.LastScanAt) {
				return a.LastScanAt.Before(b.LastScanAt)
			}
		default: // points, or any unrecognized mode
			if a.Points != b.Points {
				return a.Points > b.Points
			}
		}
		if a.LastScanAt.IsZero() != b.LastScanAt.IsZero() {
			return !a.LastScanAt.IsZero()
		}
		if !a.LastScanAt.Equal(b.LastScanAt) {
			return a.LastScanAt.Before(b.LastScanAt)
		}
		return a.TeamID < b.TeamID
	})
}
