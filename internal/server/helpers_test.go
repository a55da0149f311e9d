package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/huntworks/trailhunt/internal/database"
	"github.com/huntworks/trailhunt/internal/events"
	"github.com/huntworks/trailhunt/internal/game"
	"github.com/huntworks/trailhunt/internal/migrations"
)

// newTestEnv builds the full service graph on an in-memory database,
// seeded with the demo hunt, and a router with all routes attached.
func newTestEnv(t *testing.T) (Services, *chi.Mux) {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := migrations.Run(db); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := game.NewSQLiteStore(db)
	bus := events.NewBus()
	board := game.NewLeaderboard(store, 50*time.Millisecond)

	if err := SeedDemo(ctx, logger, store); err != nil {
		t.Fatalf("seed demo: %v", err)
	}

	svc := Services{
		Logger:   logger,
		DB:       db,
		Store:    store,
		Engine:   game.NewEngine(store, bus, board),
		Sessions: game.NewSessionRegistry(store, bus, 48*time.Hour),
		Board:    board,
		Bus:      bus,
		Presence: events.NewPresence(bus, time.Minute),
	}

	r := chi.NewRouter()
	addRoutes(r, svc)
	return svc, r
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any, opts ...func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()

	var buf io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		buf = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, buf)
	for _, opt := range opts {
		opt(req)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func withBearer(token string) func(*http.Request) {
	return func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

// joinDemoTeam joins the seeded demo game and returns the session token.
func joinDemoTeam(t *testing.T, r http.Handler, code string) string {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/demo/join", JoinRequest{TeamCode: code})
	if w.Code != http.StatusOK {
		t.Fatalf("join: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := decode[JoinResponse](t, w)
	if resp.Token == "" {
		t.Fatal("join: expected a session token")
	}
	return resp.Token
}
