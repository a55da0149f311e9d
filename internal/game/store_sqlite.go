package game

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SQLiteStore implements Store on database/sql with the libSQL driver.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Fixed-width millisecond layout, matching sqlite's strftime('%f') so text
// comparison orders chronologically.
const timeLayout = "2006-01-02T15:04:05.000Z"

func fmtTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseTime rejects unparseable timestamps instead of zeroing them; a
// corrupted created_at would silently reorder the scan log otherwise.
func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed timestamp %q: %w", s, err)
	}
	return t, nil
}

func newID() string { return uuid.NewString() }

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (s *SQLiteStore) CreateGame(ctx context.Context, g Game) (Game, error) {
	if g.ID == "" {
		g.ID = newID()
	}
	if g.Status == "" {
		g.Status = StatusDraft
	}
	var createdAt string
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO games (id, name, slug, status, ranking_mode, base_points,
			time_bonus, time_bonus_window_secs, time_bonus_multiplier, random_mode, hint_cost)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING created_at
	`, g.ID, g.Name, g.Slug, string(g.Status), string(g.Settings.RankingMode), g.Settings.BasePoints,
		boolInt(g.Settings.TimeBonus), int(g.Settings.TimeBonusWindow/time.Second),
		g.Settings.TimeBonusMultiplier, boolInt(g.Settings.RandomMode), g.Settings.HintCost,
	).Scan(&createdAt)
	if err != nil {
		return Game{}, err
	}
	g.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return Game{}, err
	}
	return g, nil
}

const gameColumns = `id, name, slug, status, ranking_mode, base_points,
	time_bonus, time_bonus_window_secs, time_bonus_multiplier, random_mode, hint_cost, created_at`

func scanGame(row interface{ Scan(...any) error }) (Game, error) {
	var g Game
	var status, mode, createdAt string
	var bonus, windowSecs, random int
	err := row.Scan(&g.ID, &g.Name, &g.Slug, &status, &mode, &g.Settings.BasePoints,
		&bonus, &windowSecs, &g.Settings.TimeBonusMultiplier, &random, &g.Settings.HintCost, &createdAt)
	if err != nil {
		return g, err
	}
	g.Status = GameStatus(status)
	g.Settings.RankingMode = RankingMode(mode)
	g.Settings.TimeBonus = bonus == 1
	g.Settings.TimeBonusWindow = time.Duration(windowSecs) * time.Second
	g.Settings.RandomMode = random == 1
	g.CreatedAt, err = parseTime(createdAt)
	return g, err
}

func (s *SQLiteStore) GameByID(ctx context.Context, id string) (Game, error) {
	g, err := scanGame(s.db.QueryRowContext(ctx, `SELECT `+gameColumns+` FROM games WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return g, ErrNotFound
	}
	return g, err
}

func (s *SQLiteStore) GameBySlug(ctx context.Context, slug string) (Game, error) {
	g, err := scanGame(s.db.QueryRowContext(ctx, `SELECT `+gameColumns+` FROM games WHERE slug = ?`, slug))
	if errors.Is(err, sql.ErrNoRows) {
		return g, ErrNotFound
	}
	return g, err
}

func (s *SQLiteStore) ListGames(ctx context.Context) ([]Game, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+gameColumns+` FROM games ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var games []Game
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		games = append(games, g)
	}
	return games, rows.Err()
}

func (s *SQLiteStore) UpdateGame(ctx context.Context, g Game) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE games SET name = ?, slug = ?, status = ?, ranking_mode = ?, base_points = ?,
			time_bonus = ?, time_bonus_window_secs = ?, time_bonus_multiplier = ?,
			random_mode = ?, hint_cost = ?
		WHERE id = ?
	`, g.Name, g.Slug, string(g.Status), string(g.Settings.RankingMode), g.Settings.BasePoints,
		boolInt(g.Settings.TimeBonus), int(g.Settings.TimeBonusWindow/time.Second),
		g.Settings.TimeBonusMultiplier, boolInt(g.Settings.RandomMode), g.Settings.HintCost, g.ID)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

func (s *SQLiteStore) SetGameStatus(ctx context.Context, id string, status GameStatus) error {
	res, err := s.db.ExecContext(ctx, `UPDATE games SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

func (s *SQLiteStore) DeleteGame(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM games WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

func checkAffected(res sql.Result) error {
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) CreateNode(ctx context.Context, n Node) (Node, error) {
	if n.ID == "" {
		n.ID = newID()
	}
	if n.Content.Kind == "" {
		n.Content.Kind = ContentText
	}
	if len(n.Metadata) == 0 {
		n.Metadata = json.RawMessage(`{}`)
	}
	var createdAt string
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO nodes (id, game_id, node_key, title, content_kind, content_url, content_body,
			password_hash, is_start, is_end, points, hint, admin_note, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, NULLIF(?, ''), ?, ?, ?, ?, ?, ?)
		RETURNING created_at
	`, n.ID, n.GameID, n.Key, n.Title, string(n.Content.Kind), n.Content.URL, n.Content.Body,
		n.PasswordHash, boolInt(n.IsStart), boolInt(n.IsEnd), n.Points, n.Hint, n.AdminNote, string(n.Metadata),
	).Scan(&createdAt)
	if err != nil {
		return Node{}, err
	}
	n.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return Node{}, err
	}
	return n, nil
}

const nodeColumns = `id, game_id, node_key, title, content_kind, content_url, content_body,
	COALESCE(password_hash, ''), is_start, is_end, points, hint, admin_note, metadata, created_at`

func scanNode(row interface{ Scan(...any) error }) (Node, error) {
	var n Node
	var kind, metadata, createdAt string
	var isStart, isEnd int
	err := row.Scan(&n.ID, &n.GameID, &n.Key, &n.Title, &kind, &n.Content.URL, &n.Content.Body,
		&n.PasswordHash, &isStart, &isEnd, &n.Points, &n.Hint, &n.AdminNote, &metadata, &createdAt)
	if err != nil {
		return n, err
	}
	n.Content.Kind = ContentKind(kind)
	n.IsStart = isStart == 1
	n.IsEnd = isEnd == 1
	n.Metadata = json.RawMessage(metadata)
	n.CreatedAt, err = parseTime(createdAt)
	return n, err
}

func (s *SQLiteStore) NodeByID(ctx context.Context, id string) (Node, error) {
	n, err := scanNode(s.db.QueryRowContext(ctx, `SELECT `+nodeColumns+` FROM nodes WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return n, ErrNotFound
	}
	return n, err
}

func (s *SQLiteStore) NodeByKey(ctx context.Context, gameID, key string) (Node, error) {
	n, err := scanNode(s.db.QueryRowContext(ctx,
		`SELECT `+nodeColumns+` FROM nodes WHERE game_id = ? AND node_key = ?`, gameID, key))
	if errors.Is(err, sql.ErrNoRows) {
		return n, ErrNotFound
	}
	return n, err
}

func (s *SQLiteStore) ListNodes(ctx context.Context, gameID string) ([]Node, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+nodeColumns+` FROM nodes WHERE game_id = ? ORDER BY created_at, rowid`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var nodes []Node
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

func (s *SQLiteStore) UpdateNode(ctx context.Context, n Node) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE nodes SET title = ?, content_kind = ?, content_url = ?, content_body = ?,
			password_hash = NULLIF(?, ''), is_start = ?, is_end = ?, points = ?,
			hint = ?, admin_note = ?, metadata = ?
		WHERE id = ?
	`, n.Title, string(n.Content.Kind), n.Content.URL, n.Content.Body, n.PasswordHash,
		boolInt(n.IsStart), boolInt(n.IsEnd), n.Points, n.Hint, n.AdminNote, string(n.Metadata), n.ID)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

func (s *SQLiteStore) DeleteNode(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM nodes WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

func (s *SQLiteStore) CreateEdge(ctx context.Context, e Edge) (Edge, error) {
	if e.ID == "" {
		e.ID = newID()
	}
	if e.Condition.Kind == "" {
		e.Condition.Kind = ConditionAlways
	}
	var createdAt string
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO edges (id, game_id, from_node, to_node, condition, password_hash, sort_order)
		VALUES (?, ?, ?, ?, ?, NULLIF(?, ''), ?)
		RETURNING created_at
	`, e.ID, e.GameID, e.From, e.To, string(e.Condition.Kind), e.Condition.PasswordHash, e.SortOrder,
	).Scan(&createdAt)
	if err != nil {
		return Edge{}, err
	}
	e.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return Edge{}, err
	}
	return e, nil
}

const edgeColumns = `id, game_id, from_node, to_node, condition, COALESCE(password_hash, ''), sort_order, created_at`

func scanEdge(row interface{ Scan(...any) error }) (Edge, error) {
	var e Edge
	var cond, createdAt string
	err := row.Scan(&e.ID, &e.GameID, &e.From, &e.To, &cond, &e.Condition.PasswordHash, &e.SortOrder, &createdAt)
	if err != nil {
		return e, err
	}
	e.Condition.Kind = ConditionKind(cond)
	e.CreatedAt, err = parseTime(createdAt)
	return e, err
}

func (s *SQLiteStore) ListEdges(ctx context.Context, gameID string) ([]Edge, error) {
	return s.queryEdges(ctx,
		`SELECT `+edgeColumns+` FROM edges WHERE game_id = ? ORDER BY sort_order, created_at, rowid`, gameID)
}

func (s *SQLiteStore) OutEdges(ctx context.Context, gameID, fromNodeID string) ([]Edge, error) {
	return s.queryEdges(ctx,
		`SELECT `+edgeColumns+` FROM edges WHERE game_id = ? AND from_node = ? ORDER BY sort_order, created_at, rowid`,
		gameID, fromNodeID)
}

func (s *SQLiteStore) queryEdges(ctx context.Context, query string, args ...any) ([]Edge, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var edges []Edge
	for rows.Next() {
		e, err := scanEdge(rows)
		if err != nil {
			return nil, err
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

func (s *SQLiteStore) DeleteEdge(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM edges WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

func (s *SQLiteStore) CreateTeam(ctx context.Context, t Team) (Team, error) {
	if t.ID == "" {
		t.ID = newID()
	}
	var createdAt string
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO teams (id, game_id, code, name, start_node_id, logo_url)
		VALUES (?, ?, ?, ?, NULLIF(?, ''), ?)
		RETURNING created_at
	`, t.ID, t.GameID, t.Code, t.Name, t.StartNodeID, t.LogoURL).Scan(&createdAt)
	if err != nil {
		return Team{}, err
	}
	t.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return Team{}, err
	}
	return t, nil
}

const teamColumns = `id, game_id, code, name, COALESCE(start_node_id, ''), logo_url, created_at`

func scanTeam(row interface{ Scan(...any) error }) (Team, error) {
	var t Team
	var createdAt string
	err := row.Scan(&t.ID, &t.GameID, &t.Code, &t.Name, &t.StartNodeID, &t.LogoURL, &createdAt)
	if err != nil {
		return t, err
	}
	t.CreatedAt, err = parseTime(createdAt)
	return t, err
}

func (s *SQLiteStore) TeamByID(ctx context.Context, id string) (Team, error) {
	t, err := scanTeam(s.db.QueryRowContext(ctx, `SELECT `+teamColumns+` FROM teams WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return t, ErrNotFound
	}
	return t, err
}

func (s *SQLiteStore) TeamByCode(ctx context.Context, gameID, code string) (Team, error) {
	t, err := scanTeam(s.db.QueryRowContext(ctx,
		`SELECT `+teamColumns+` FROM teams WHERE game_id = ? AND code = ?`, gameID, code))
	if errors.Is(err, sql.ErrNoRows) {
		return t, ErrNotFound
	}
	return t, err
}

func (s *SQLiteStore) ListTeams(ctx context.Context, gameID string) ([]Team, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+teamColumns+` FROM teams WHERE game_id = ? ORDER BY created_at, rowid`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teams []Team
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, err
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

func (s *SQLiteStore) UpdateTeam(ctx context.Context, t Team) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE teams SET code = ?, name = ?, start_node_id = NULLIF(?, ''), logo_url = ?
		WHERE id = ?
	`, t.Code, t.Name, t.StartNodeID, t.LogoURL, t.ID)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

func (s *SQLiteStore) DeleteTeam(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM teams WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

func (s *SQLiteStore) CreateScan(ctx context.Context, sc Scan) (Scan, error) {
	if sc.ID == "" {
		sc.ID = newID()
	}
	if sc.CreatedAt.IsZero() {
		sc.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO scans (id, game_id, team_id, node_id, ip, user_agent, points, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, sc.ID, sc.GameID, sc.TeamID, sc.NodeID, sc.IP, sc.UserAgent, sc.Points, fmtTime(sc.CreatedAt))
	if err != nil {
		return Scan{}, err
	}
	return sc, nil
}

const scanColumns = `id, game_id, team_id, node_id, ip, user_agent, points, created_at`

func scanScan(row interface{ Scan(...any) error }) (Scan, error) {
	var sc Scan
	var createdAt string
	err := row.Scan(&sc.ID, &sc.GameID, &sc.TeamID, &sc.NodeID, &sc.IP, &sc.UserAgent, &sc.Points, &createdAt)
	if err != nil {
		return sc, err
	}
	sc.CreatedAt, err = parseTime(createdAt)
	return sc, err
}

func (s *SQLiteStore) ScansByTeam(ctx context.Context, teamID string) ([]Scan, error) {
	return s.queryScans(ctx,
		`SELECT `+scanColumns+` FROM scans WHERE team_id = ? ORDER BY created_at, rowid`, teamID)
}

func (s *SQLiteStore) ScansByGame(ctx context.Context, gameID string) ([]Scan, error) {
	return s.queryScans(ctx,
		`SELECT `+scanColumns+` FROM scans WHERE game_id = ? ORDER BY created_at, rowid`, gameID)
}

func (s *SQLiteStore) queryScans(ctx context.Context, query string, args ...any) ([]Scan, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scans []Scan
	for rows.Next() {
		sc, err := scanScan(rows)
		if err != nil {
			return nil, err
		}
		scans = append(scans, sc)
	}
	return scans, rows.Err()
}

func (s *SQLiteStore) CreateHintUsage(ctx context.Context, h HintUsage) (bool, error) {
	if h.ID == "" {
		h.ID = newID()
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO hint_usages (id, game_id, team_id, node_id, cost)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (team_id, node_id) DO NOTHING
	`, h.ID, h.GameID, h.TeamID, h.NodeID, h.Cost)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (s *SQLiteStore) HintCosts(ctx context.Context, gameID string) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT team_id, SUM(cost) FROM hint_usages WHERE game_id = ? GROUP BY team_id
	`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	costs := make(map[string]int)
	for rows.Next() {
		var teamID string
		var total int
		if err := rows.Scan(&teamID, &total); err != nil {
			return nil, err
		}
		costs[teamID] = total
	}
	return costs, rows.Err()
}

func (s *SQLiteStore) CreateSession(ctx context.Context, sess TeamSession) error {
	if sess.ID == "" {
		sess.ID = newID()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO team_sessions (id, team_id, token, expires_at)
		VALUES (?, ?, ?, ?)
	`, sess.ID, sess.TeamID, sess.Token, fmtTime(sess.ExpiresAt))
	return err
}

func (s *SQLiteStore) SessionByToken(ctx context.Context, token string) (TeamSession, error) {
	var sess TeamSession
	var expiresAt, createdAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, team_id, token, expires_at, created_at
		FROM team_sessions WHERE token = ?
	`, token).Scan(&sess.ID, &sess.TeamID, &sess.Token, &expiresAt, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return sess, ErrNotFound
	}
	if err != nil {
		return sess, err
	}
	sess.ExpiresAt, err = parseTime(expiresAt)
	if err != nil {
		return sess, err
	}
	sess.CreatedAt, err = parseTime(createdAt)
	return sess, err
}

func (s *SQLiteStore) ExtendSession(ctx context.Context, token string, until time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE team_sessions SET expires_at = ? WHERE token = ?`, fmtTime(until), token)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

func (s *SQLiteStore) DeleteSession(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM team_sessions WHERE token = ?`, token)
	return err
}

func (s *SQLiteStore) DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM team_sessions WHERE expires_at < ?`, fmtTime(before))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *SQLiteStore) CreateAdmin(ctx context.Context, email, passwordHash string) (string, error) {
	id := newID()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO admins (id, email, password_hash) VALUES (?, ?, ?)
	`, id, email, passwordHash)
	return id, err
}

func (s *SQLiteStore) AdminByEmail(ctx context.Context, email string) (string, string, error) {
	var id, hash string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, password_hash FROM admins WHERE email = ?`, email).Scan(&id, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", ErrNotFound
	}
	return id, hash, err
}

func (s *SQLiteStore) CreateAdminSession(ctx context.Context, adminID string) (string, error) {
	id := newID()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO admin_sessions (id, admin_id) VALUES (?, ?)`, id, adminID)
	return id, err
}

func (s *SQLiteStore) AdminBySession(ctx context.Context, sessionID string) (string, string, error) {
	var id, email string
	err := s.db.QueryRowContext(ctx, `
		SELECT a.id, a.email
		FROM admin_sessions s
		JOIN admins a ON a.id = s.admin_id
		WHERE s.id = ?
	`, sessionID).Scan(&id, &email)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", ErrNotFound
	}
	return id, email, err
}

func (s *SQLiteStore) DeleteAdminSession(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM admin_sessions WHERE id = ?`, sessionID)
	return err
}
