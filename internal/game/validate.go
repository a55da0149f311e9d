package game

import (
	"context"
	"errors"
)

// PreconditionError is a caller-visible validation failure. Its message is
// surfaced verbatim to clients; it is never an infrastructure fault.
type PreconditionError struct {
	Message string
}

func (e *PreconditionError) Error() string { return e.Message }

func precondition(msg string) error { return &PreconditionError{Message: msg} }

// IsPrecondition reports whether err is a validation failure rather than an
// infrastructure fault.
func IsPrecondition(err error) bool {
	var pe *PreconditionError
	return errors.As(err, &pe)
}

// Validator holds the shared existence and status checks every component
// routes through, so failure messages stay consistent game-wide.
type Validator struct {
	store Store
}

func NewValidator(store Store) Validator {
	return Validator{store: store}
}

func (v Validator) TeamByID(ctx context.Context, teamID string) (Team, error) {
	t, err := v.store.TeamByID(ctx, teamID)
	if errors.Is(err, ErrNotFound) {
		return Team{}, precondition("team not found")
	}
	return t, err
}

func (v Validator) GameByID(ctx context.Context, gameID string) (Game, error) {
	g, err := v.store.GameByID(ctx, gameID)
	if errors.Is(err, ErrNotFound) {
		return Game{}, precondition("game not found")
	}
	return g, err
}

func (v Validator) GameBySlug(ctx context.Context, slug string) (Game, error) {
	g, err := v.store.GameBySlug(ctx, slug)
	if errors.Is(err, ErrNotFound) {
		return Game{}, precondition("game not found")
	}
	return g, err
}

// TeamAndGame resolves a team together with its game.
func (v Validator) TeamAndGame(ctx context.Context, teamID string) (Team, Game, error) {
	t, err := v.TeamByID(ctx, teamID)
	if err != nil {
		return Team{}, Game{}, err
	}
	g, err := v.GameByID(ctx, t.GameID)
	if err != nil {
		return Team{}, Game{}, err
	}
	return t, g, nil
}

// RequireStatus fails with a specific message when the game's status is not
// in the allowed set.
func (v Validator) RequireStatus(g Game, allowed ...GameStatus) error {
	for _, s := range allowed {
		if g.Status == s {
			return nil
		}
	}
	if g.Status != StatusActive {
		return precondition("game is not active")
	}
	return precondition("game status " + string(g.Status) + " not allowed")
}

// CanActivate checks the draft→active transition: at least one node, one
// start node, and one end node. The first unmet condition's message is
// returned.
func (v Validator) CanActivate(ctx context.Context, gameID string) error {
	graph := NewGraph(v.store, gameID)

	count, err := graph.NodeCount(ctx)
	if err != nil {
		return err
	}
	if count == 0 {
		return precondition("game has no nodes")
	}

	starts, err := graph.StartNodes(ctx)
	if err != nil {
		return err
	}
	if len(starts) == 0 {
		return precondition("game has no start node")
	}

	ends, err := graph.EndNodes(ctx)
	if err != nil {
		return err
	}
	if len(ends) == 0 {
		return precondition("game has no end node")
	}
	return nil
}
