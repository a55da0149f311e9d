package game

import (
	"context"
	"errors"
)

// Graph is a read-only, per-request view of one game's nodes and edges.
// Absence is reported with found=false, not an error; callers decide
// whether a missing node matters.
type Graph struct {
	store  Store
	gameID string
}

func NewGraph(store Store, gameID string) Graph {
	return Graph{store: store, gameID: gameID}
}

func (g Graph) NodeByKey(ctx context.Context, key string) (Node, bool, error) {
	n, err := g.store.NodeByKey(ctx, g.gameID, key)
	if errors.Is(err, ErrNotFound) {
		return Node{}, false, nil
	}
	if err != nil {
		return Node{}, false, err
	}
	return n, true, nil
}

func (g Graph) Nodes(ctx context.Context) ([]Node, error) {
	return g.store.ListNodes(ctx, g.gameID)
}

func (g Graph) StartNodes(ctx context.Context) ([]Node, error) {
	return g.filterNodes(ctx, func(n Node) bool { return n.IsStart })
}

func (g Graph) EndNodes(ctx context.Context) ([]Node, error) {
	return g.filterNodes(ctx, func(n Node) bool { return n.IsEnd })
}

func (g Graph) filterNodes(ctx context.Context, keep func(Node) bool) ([]Node, error) {
	all, err := g.store.ListNodes(ctx, g.gameID)
	if err != nil {
		return nil, err
	}
	var out []Node
	for _, n := range all {
		if keep(n) {
			out = append(out, n)
		}
	}
	return out, nil
}

// OutEdges returns the legal next moves from a node, ordered by sort order
// then creation order.
func (g Graph) OutEdges(ctx context.Context, nodeID string) ([]Edge, error) {
	return g.store.OutEdges(ctx, g.gameID, nodeID)
}

func (g Graph) NodeCount(ctx context.Context) (int, error) {
	all, err := g.store.ListNodes(ctx, g.gameID)
	if err != nil {
		return 0, err
	}
	return len(all), nil
}
