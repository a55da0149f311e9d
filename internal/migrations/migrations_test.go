package migrations_test

import (
	"context"
	"testing"

	"github.com/huntworks/trailhunt/internal/database"
	"github.com/huntworks/trailhunt/internal/migrations"
)

func TestMigrations(t *testing.T) {
	db, err := database.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	defer db.Close()

	if err := migrations.Run(db); err != nil {
		t.Fatalf("running migrations: %v", err)
	}

	want := []string{"games", "nodes", "edges", "teams", "scans", "hint_usages", "team_sessions", "admins", "admin_sessions"}

	for _, table := range want {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q not found: %v", table, err)
		}
	}

	// The scan log must carry the awarded points; the leaderboard sums them.
	var count int
	err = db.QueryRow(
		"SELECT count(*) FROM pragma_table_info('scans') WHERE name='points'",
	).Scan(&count)
	if err != nil || count != 1 {
		t.Errorf("scans.points column missing (count=%d, err=%v)", count, err)
	}
}

func TestMigrationsIdempotent(t *testing.T) {
	db, err := database.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	defer db.Close()

	if err := migrations.Run(db); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := migrations.Run(db); err != nil {
		t.Fatalf("second run (should be no-op): %v", err)
	}
}
