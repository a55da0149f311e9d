package game

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/huntworks/trailhunt/internal/events"
)

func newTestRegistry(t *testing.T) (*SessionRegistry, *SQLiteStore, demoHunt) {
	t.Helper()
	store := newTestStore(t)
	h := seedDemoHunt(t, store, Settings{})
	return NewSessionRegistry(store, events.NewBus(), 48*time.Hour), store, h
}

func TestJoinIssuesSession(t *testing.T) {
	reg, _, h := newTestRegistry(t)
	ctx := context.Background()

	// Codes are case-insensitive.
	team, sess, err := reg.Join(ctx, "demo", "alpha")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if team.ID != h.alpha.ID {
		t.Errorf("expected team %s, got %s", h.alpha.ID, team.ID)
	}
	if sess.Token == "" {
		t.Error("expected a session token")
	}
	if !sess.ExpiresAt.After(time.Now().Add(47 * time.Hour)) {
		t.Errorf("expected ~48h expiry, got %v", sess.ExpiresAt)
	}
}

func TestJoinFailuresAreUniform(t *testing.T) {
	reg, store, h := newTestRegistry(t)
	ctx := context.Background()

	if _, _, err := reg.Join(ctx, "no-such-game", "ALPHA"); !errors.Is(err, ErrInvalidJoin) {
		t.Errorf("unknown game: expected ErrInvalidJoin, got %v", err)
	}
	if _, _, err := reg.Join(ctx, "demo", "NOPE"); !errors.Is(err, ErrInvalidJoin) {
		t.Errorf("bad code: expected ErrInvalidJoin, got %v", err)
	}

	if err := store.SetGameStatus(ctx, h.game.ID, StatusDraft); err != nil {
		t.Fatalf("set status: %v", err)
	}
	if _, _, err := reg.Join(ctx, "demo", "ALPHA"); !errors.Is(err, ErrInvalidJoin) {
		t.Errorf("inactive game: expected ErrInvalidJoin, got %v", err)
	}
}

func TestValidateSlidesExpiry(t *testing.T) {
	reg, store, _ := newTestRegistry(t)
	ctx := context.Background()

	now := time.Now()
	reg.now = func() time.Time { return now }

	_, sess, err := reg.Join(ctx, "demo", "ALPHA")
	if err != nil {
		t.Fatalf("join: %v", err)
	}

	now = now.Add(24 * time.Hour)
	if _, err := reg.Validate(ctx, sess.Token); err != nil {
		t.Fatalf("validate: %v", err)
	}

	stored, err := store.SessionByToken(ctx, sess.Token)
	if err != nil {
		t.Fatalf("session lookup: %v", err)
	}
	// Renew-on-use: expiry moved to now+48h, past the original window.
	if !stored.ExpiresAt.After(sess.ExpiresAt.Add(12 * time.Hour)) {
		t.Errorf("expiry not extended: %v vs original %v", stored.ExpiresAt, sess.ExpiresAt)
	}
}

func TestValidateExpiredOrUnknownUniform(t *testing.T) {
	reg, _, _ := newTestRegistry(t)
	ctx := context.Background()

	now := time.Now()
	reg.now = func() time.Time { return now }

	_, sess, err := reg.Join(ctx, "demo", "ALPHA")
	if err != nil {
		t.Fatalf("join: %v", err)
	}

	now = now.Add(72 * time.Hour)
	if _, err := reg.Validate(ctx, sess.Token); !errors.Is(err, ErrInvalidSession) {
		t.Errorf("expired token: expected ErrInvalidSession, got %v", err)
	}
	if _, err := reg.Validate(ctx, "bogus"); !errors.Is(err, ErrInvalidSession) {
		t.Errorf("unknown token: expected ErrInvalidSession, got %v", err)
	}
}

func TestLogoutIdempotent(t *testing.T) {
	reg, _, _ := newTestRegistry(t)
	ctx := context.Background()

	_, sess, err := reg.Join(ctx, "demo", "ALPHA")
	if err != nil {
		t.Fatalf("join: %v", err)
	}

	if err := reg.Logout(ctx, sess.Token); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if err := reg.Logout(ctx, sess.Token); err != nil {
		t.Fatalf("second logout must not fail: %v", err)
	}
	if _, err := reg.Validate(ctx, sess.Token); !errors.Is(err, ErrInvalidSession) {
		t.Errorf("expected session gone after logout, got %v", err)
	}
}

func TestSweepExpired(t *testing.T) {
	reg, _, _ := newTestRegistry(t)
	ctx := context.Background()

	now := time.Now()
	reg.now = func() time.Time { return now }

	if _, _, err := reg.Join(ctx, "demo", "ALPHA"); err != nil {
		t.Fatalf("join: %v", err)
	}

	if n, err := reg.SweepExpired(ctx); err != nil || n != 0 {
		t.Errorf("expected nothing to sweep, got n=%d err=%v", n, err)
	}

	now = now.Add(72 * time.Hour)
	if n, err := reg.SweepExpired(ctx); err != nil || n != 1 {
		t.Errorf("expected one swept row, got n=%d err=%v", n, err)
	}
}

func TestJoinPublishesTeamJoined(t *testing.T) {
	store := newTestStore(t)
	seedDemoHunt(t, store, Settings{})
	bus := events.NewBus()
	reg := NewSessionRegistry(store, bus, 48*time.Hour)

	sub := bus.Subscribe("demo", events.KindTeamJoined)
	defer bus.Unsubscribe(sub)

	if _, _, err := reg.Join(context.Background(), "demo", "ALPHA"); err != nil {
		t.Fatalf("join: %v", err)
	}

	select {
	case env := <-sub.C:
		if env.Kind != events.KindTeamJoined {
			t.Errorf("expected team-joined, got %q", env.Kind)
		}
	default:
		t.Error("expected a team-joined event")
	}
}
