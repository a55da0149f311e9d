package game

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/huntworks/trailhunt/internal/events"
)

// ErrInvalidJoin covers game-not-found, game-not-active, and bad team code
// alike, so a failed join does not reveal which part was wrong.
var ErrInvalidJoin = errors.New("invalid game or team code")

// ErrInvalidSession covers unknown and expired tokens uniformly.
var ErrInvalidSession = errors.New("invalid or expired session")

// SessionRegistry issues, validates, extends, and expires per-team tokens.
type SessionRegistry struct {
	store Store
	bus   *events.Bus
	ttl   time.Duration
	now   func() time.Time
}

func NewSessionRegistry(store Store, bus *events.Bus, ttl time.Duration) *SessionRegistry {
	return &SessionRegistry{store: store, bus: bus, ttl: ttl, now: time.Now}
}

// Join resolves the game by slug and the team by code (case-insensitive)
// and issues a fresh session token. The game must be active.
func (r *SessionRegistry) Join(ctx context.Context, gameSlug, teamCode string) (Team, TeamSession, error) {
	g, err := r.store.GameBySlug(ctx, gameSlug)
	if errors.Is(err, ErrNotFound) {
		return Team{}, TeamSession{}, ErrInvalidJoin
	}
	if err != nil {
		return Team{}, TeamSession{}, err
	}
	if g.Status != StatusActive {
		return Team{}, TeamSession{}, ErrInvalidJoin
	}

	code := strings.ToUpper(strings.TrimSpace(teamCode))
	team, err := r.store.TeamByCode(ctx, g.ID, code)
	if errors.Is(err, ErrNotFound) {
		return Team{}, TeamSession{}, ErrInvalidJoin
	}
	if err != nil {
		return Team{}, TeamSession{}, err
	}

	sess := TeamSession{
		TeamID:    team.ID,
		Token:     uuid.NewString(),
		ExpiresAt: r.now().Add(r.ttl),
	}
	if err := r.store.CreateSession(ctx, sess); err != nil {
		return Team{}, TeamSession{}, err
	}

	r.bus.Publish(g.Slug, events.KindTeamJoined, map[string]string{
		"teamId":   team.ID,
		"teamName": team.Name,
	})

	return team, sess, nil
}

// Validate looks up a non-expired session and slides its expiry forward by
// the registry's window (renew-on-use).
func (r *SessionRegistry) Validate(ctx context.Context, token string) (Team, error) {
	sess, err := r.store.SessionByToken(ctx, token)
	if errors.Is(err, ErrNotFound) {
		return Team{}, ErrInvalidSession
	}
	if err != nil {
		return Team{}, err
	}
	if !sess.ExpiresAt.After(r.now()) {
		return Team{}, ErrInvalidSession
	}

	if err := r.store.ExtendSession(ctx, token, r.now().Add(r.ttl)); err != nil {
		return Team{}, err
	}

	team, err := r.store.TeamByID(ctx, sess.TeamID)
	if errors.Is(err, ErrNotFound) {
		return Team{}, ErrInvalidSession
	}
	return team, err
}

// Logout deletes the session. Logging out twice is not an error.
func (r *SessionRegistry) Logout(ctx context.Context, token string) error {
	return r.store.DeleteSession(ctx, token)
}

// SweepExpired removes expired rows. Skipping a sweep is harmless; stale
// rows just wait for the next one.
func (r *SessionRegistry) SweepExpired(ctx context.Context) (int64, error) {
	return r.store.DeleteExpiredSessions(ctx, r.now())
}
