package server

import (
	"context"
	"net/http"
	"testing"

	"github.com/huntworks/trailhunt/internal/game"
)

// adminLogin authenticates as the seeded admin and returns the session
// cookie to attach to subsequent requests.
func adminLogin(t *testing.T, r http.Handler) func(*http.Request) {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/admin/login", AdminLoginRequest{
		Email:    seedAdminEmail,
		Password: seedAdminPassword,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	cookies := w.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("login: expected a session cookie")
	}
	cookie := cookies[0]
	return func(req *http.Request) {
		req.AddCookie(cookie)
	}
}

func TestAdminLoginBadCredentials(t *testing.T) {
	_, r := newTestEnv(t)

	w := doJSON(t, r, http.MethodPost, "/api/admin/login", AdminLoginRequest{
		Email:    seedAdminEmail,
		Password: "wrong",
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong password: expected 401, got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/api/admin/login", AdminLoginRequest{
		Email:    "nobody@example.com",
		Password: "wrong",
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unknown email: expected 401, got %d", w.Code)
	}
}

func TestAdminMeAndLogout(t *testing.T) {
	_, r := newTestEnv(t)
	auth := adminLogin(t, r)

	w := doJSON(t, r, http.MethodGet, "/api/admin/me", nil, auth)
	if w.Code != http.StatusOK {
		t.Fatalf("me: expected 200, got %d", w.Code)
	}
	if me := decode[AdminMeResponse](t, w); me.Email != seedAdminEmail {
		t.Errorf("expected %s, got %s", seedAdminEmail, me.Email)
	}

	if w := doJSON(t, r, http.MethodPost, "/api/admin/logout", nil, auth); w.Code != http.StatusOK {
		t.Fatalf("logout: expected 200, got %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodGet, "/api/admin/me", nil, auth); w.Code != http.StatusUnauthorized {
		t.Errorf("me after logout: expected 401, got %d", w.Code)
	}
}

func TestAdminRoutesRequireAuth(t *testing.T) {
	_, r := newTestEnv(t)

	w := doJSON(t, r, http.MethodGet, "/api/admin/games", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestAdminGameLifecycle(t *testing.T) {
	_, r := newTestEnv(t)
	auth := adminLogin(t, r)

	// Create a draft game.
	w := doJSON(t, r, http.MethodPost, "/api/admin/games", AdminGameRequest{
		Name: "Night Hunt",
		Slug: "night-hunt",
		Settings: GameSettingsDTO{
			RankingMode: "points",
			BasePoints:  50,
		},
	}, auth)
	if w.Code != http.StatusCreated {
		t.Fatalf("create game: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	g := decode[AdminGameDetail](t, w)
	if g.Status != "draft" {
		t.Fatalf("expected draft status, got %s", g.Status)
	}
	base := "/api/admin/games/" + g.ID

	// An empty graph must not go live; the refusal names the first gap.
	w = doJSON(t, r, http.MethodPost, base+"/activate", nil, auth)
	if w.Code != http.StatusConflict {
		t.Fatalf("activate empty: expected 409, got %d: %s", w.Code, w.Body.String())
	}

	mkNode := func(req AdminNodeRequest) AdminNodeItem {
		t.Helper()
		w := doJSON(t, r, http.MethodPost, base+"/nodes", req, auth)
		if w.Code != http.StatusCreated {
			t.Fatalf("create node %s: expected 201, got %d: %s", req.Key, w.Code, w.Body.String())
		}
		return decode[AdminNodeItem](t, w)
	}

	start := mkNode(AdminNodeRequest{Key: "gate", Title: "Gate", IsStart: true, Points: 10})

	w = doJSON(t, r, http.MethodPost, base+"/activate", nil, auth)
	if w.Code != http.StatusConflict {
		t.Fatalf("activate without end: expected 409, got %d", w.Code)
	}

	end := mkNode(AdminNodeRequest{Key: "vault", Title: "Vault", IsEnd: true, Points: 20})

	w = doJSON(t, r, http.MethodPost, base+"/edges", AdminEdgeRequest{
		From: start.ID, To: end.ID,
	}, auth)
	if w.Code != http.StatusCreated {
		t.Fatalf("create edge: expected 201, got %d: %s", w.Code, w.Body.String())
	}

	// Teams get codes and start nodes assigned automatically.
	w = doJSON(t, r, http.MethodPost, base+"/teams", AdminTeamRequest{Name: "Owls"}, auth)
	if w.Code != http.StatusCreated {
		t.Fatalf("create team: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	team := decode[AdminTeamItem](t, w)
	if team.Code == "" {
		t.Error("expected an auto-generated team code")
	}
	if team.StartNodeID != start.ID {
		t.Errorf("expected start node %s, got %s", start.ID, team.StartNodeID)
	}

	// Now the graph is complete.
	w = doJSON(t, r, http.MethodPost, base+"/activate", nil, auth)
	if w.Code != http.StatusOK {
		t.Fatalf("activate: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if g := decode[AdminGameDetail](t, w); g.Status != "active" {
		t.Fatalf("expected active, got %s", g.Status)
	}

	// Graph mutations are locked once live.
	w = doJSON(t, r, http.MethodPost, base+"/nodes", AdminNodeRequest{Key: "late", Title: "Late"}, auth)
	if w.Code != http.StatusConflict {
		t.Errorf("node on active game: expected 409, got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, base+"/complete", nil, auth)
	if w.Code != http.StatusOK {
		t.Fatalf("complete: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodDelete, base, nil, auth)
	if w.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	w = doJSON(t, r, http.MethodGet, base, nil, auth)
	if w.Code != http.StatusNotFound {
		t.Errorf("get after delete: expected 404, got %d", w.Code)
	}
}

func TestAdminCreateGameDuplicateSlug(t *testing.T) {
	_, r := newTestEnv(t)
	auth := adminLogin(t, r)

	w := doJSON(t, r, http.MethodPost, "/api/admin/games", AdminGameRequest{
		Name: "Copycat", Slug: "demo",
	}, auth)
	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d: %s", w.Code, w.Body.String())
	}
}

func TestAdminDeleteActiveGameBlocked(t *testing.T) {
	svc, r := newTestEnv(t)
	auth := adminLogin(t, r)

	demo := findDemoGame(t, svc)
	w := doJSON(t, r, http.MethodDelete, "/api/admin/games/"+demo.ID, nil, auth)
	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
}

func TestAdminTeamDeleteBlockedAfterScan(t *testing.T) {
	svc, r := newTestEnv(t)
	auth := adminLogin(t, r)

	token := joinDemoTeam(t, r, "alpha")
	w := doJSON(t, r, http.MethodPost, "/api/demo/game/scan",
		ScanRequest{NodeKey: "node-s", Password: "ADVENTURE"}, withBearer(token))
	if w.Code != http.StatusOK {
		t.Fatalf("scan: expected 200, got %d", w.Code)
	}

	demo := findDemoGame(t, svc)
	teams, err := svc.Store.ListTeams(context.Background(), demo.ID)
	if err != nil {
		t.Fatalf("list teams: %v", err)
	}
	var alphaID string
	for _, team := range teams {
		if team.Code == "ALPHA" {
			alphaID = team.ID
		}
	}

	w = doJSON(t, r, http.MethodDelete, "/api/admin/games/"+demo.ID+"/teams/"+alphaID, nil, auth)
	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d: %s", w.Code, w.Body.String())
	}
}

func TestAdminLeaderboardByGameID(t *testing.T) {
	svc, r := newTestEnv(t)
	auth := adminLogin(t, r)

	demo := findDemoGame(t, svc)
	w := doJSON(t, r, http.MethodGet, "/api/admin/games/"+demo.ID+"/leaderboard", nil, auth)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if entries := decode[[]game.LeaderboardEntry](t, w); len(entries) != 2 {
		t.Errorf("expected 2 entries, got %d", len(entries))
	}
}

func findDemoGame(t *testing.T, svc Services) game.Game {
	t.Helper()
	g, err := svc.Store.GameBySlug(context.Background(), "demo")
	if err != nil {
		t.Fatalf("load demo game: %v", err)
	}
	return g
}
