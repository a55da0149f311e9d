package game

import (
	"context"
	"strings"
	"testing"
)

func TestCorruptedScanTimestampSurfaces(t *testing.T) {
	engine, store, _, _ := newTestEngine(t)
	hunt := seedDemoHunt(t, store, Settings{})
	ctx := context.Background()

	mustScan(t, engine, hunt.alpha.ID, "node-s", "ADVENTURE")

	// A mangled created_at must become an error, not a zero time that
	// silently reorders the scan log.
	if _, err := store.db.ExecContext(ctx, `UPDATE scans SET created_at = 'yesterday'`); err != nil {
		t.Fatalf("corrupt row: %v", err)
	}

	_, err := store.ScansByTeam(ctx, hunt.alpha.ID)
	if err == nil {
		t.Fatal("expected an error reading a corrupted timestamp")
	}
	if !strings.Contains(err.Error(), "malformed timestamp") {
		t.Errorf("expected a malformed timestamp error, got %v", err)
	}
}
