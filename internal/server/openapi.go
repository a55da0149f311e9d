package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"
	"github.com/swaggest/swgui/v5emb"

	"github.com/huntworks/trailhunt/internal/game"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "TrailHunt API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Backend API for the TrailHunt scavenger hunt engine.")

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Returns the health status of backend dependencies.")
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealthz)

	// POST /api/{gameSlug}/join
	postJoin, _ := r.NewOperationContext(http.MethodPost, "/api/{gameSlug}/join")
	postJoin.SetSummary("Join a game")
	postJoin.SetDescription("Team joins a game using its team code. Returns a session token.")
	postJoin.AddReqStructure(JoinRequest{})
	postJoin.AddRespStructure(JoinResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postJoin.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postJoin.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(postJoin)

	// POST /api/{gameSlug}/game/scan
	postScan, _ := r.NewOperationContext(http.MethodPost, "/api/{gameSlug}/game/scan")
	postScan.SetSummary("Record a scan")
	postScan.SetDescription("Registers a scanned node for the team. Rejections come back inside the result. Requires Bearer token.")
	postScan.AddReqStructure(ScanRequest{})
	postScan.AddRespStructure(game.ScanResult{}, openapi.WithHTTPStatus(http.StatusOK))
	postScan.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(postScan)

	// GET /api/{gameSlug}/game/progress
	getProgress, _ := r.NewOperationContext(http.MethodGet, "/api/{gameSlug}/game/progress")
	getProgress.SetSummary("Get team progress")
	getProgress.SetDescription("Returns the team's derived position, score, and legal next moves. Requires Bearer token.")
	getProgress.AddRespStructure(game.TeamProgress{}, openapi.WithHTTPStatus(http.StatusOK))
	getProgress.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(getProgress)

	// GET /api/{gameSlug}/game/winner
	getWinner, _ := r.NewOperationContext(http.MethodGet, "/api/{gameSlug}/game/winner")
	getWinner.SetSummary("Check winner")
	getWinner.SetDescription("Reports whether the team was the first to finish. Requires Bearer token.")
	getWinner.AddRespStructure(WinnerResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getWinner.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(getWinner)

	// GET /api/{gameSlug}/game/leaderboard
	getBoard, _ := r.NewOperationContext(http.MethodGet, "/api/{gameSlug}/game/leaderboard")
	getBoard.SetSummary("Get leaderboard")
	getBoard.SetDescription("Returns the current standings. Public; no session required.")
	getBoard.AddRespStructure([]game.LeaderboardEntry{}, openapi.WithHTTPStatus(http.StatusOK))
	getBoard.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getBoard)

	// POST /api/{gameSlug}/game/hint
	postHint, _ := r.NewOperationContext(http.MethodPost, "/api/{gameSlug}/game/hint")
	postHint.SetSummary("Reveal a hint")
	postHint.SetDescription("Returns a node's hint and deducts the game's hint cost once per node. Requires Bearer token.")
	postHint.AddReqStructure(HintRequest{})
	postHint.AddRespStructure(HintResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postHint.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	postHint.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(postHint)

	// POST /api/{gameSlug}/game/chat
	postChat, _ := r.NewOperationContext(http.MethodPost, "/api/{gameSlug}/game/chat")
	postChat.SetSummary("Send a chat message")
	postChat.SetDescription("Broadcasts a message to the game's event stream. Requires Bearer token.")
	postChat.AddReqStructure(ChatRequest{})
	postChat.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
	postChat.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	_ = r.AddOperation(postChat)

	// POST /api/{gameSlug}/game/heartbeat
	postBeat, _ := r.NewOperationContext(http.MethodPost, "/api/{gameSlug}/game/heartbeat")
	postBeat.SetSummary("Heartbeat")
	postBeat.SetDescription("Marks the team as connected. Requires Bearer token.")
	postBeat.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(postBeat)

	// GET /api/{gameSlug}/game/events
	getEvents, _ := r.NewOperationContext(http.MethodGet, "/api/{gameSlug}/game/events")
	getEvents.SetSummary("SSE event stream")
	getEvents.SetDescription("Server-Sent Events stream of live game updates. Pass token, and optionally kinds, as query parameters.")
	getEvents.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("text/event-stream"))
	_ = r.AddOperation(getEvents)

	// POST /api/{gameSlug}/logout
	postLogout, _ := r.NewOperationContext(http.MethodPost, "/api/{gameSlug}/logout")
	postLogout.SetSummary("Logout")
	postLogout.SetDescription("Invalidates the team session. Requires Bearer token.")
	postLogout.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(postLogout)

	// POST /api/admin/login
	postAdminLogin, _ := r.NewOperationContext(http.MethodPost, "/api/admin/login")
	postAdminLogin.SetSummary("Admin login")
	postAdminLogin.SetDescription("Authenticate with email and password. Sets admin_session cookie.")
	postAdminLogin.AddReqStructure(AdminLoginRequest{})
	postAdminLogin.AddRespStructure(AdminMeResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postAdminLogin.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(postAdminLogin)

	// POST /api/admin/logout
	postAdminLogout, _ := r.NewOperationContext(http.MethodPost, "/api/admin/logout")
	postAdminLogout.SetSummary("Admin logout")
	postAdminLogout.SetDescription("Clears admin session and cookie.")
	postAdminLogout.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(postAdminLogout)

	// GET /api/admin/me
	getMe, _ := r.NewOperationContext(http.MethodGet, "/api/admin/me")
	getMe.SetSummary("Current admin")
	getMe.SetDescription("Returns the currently authenticated admin. Requires admin_session cookie.")
	getMe.AddRespStructure(AdminMeResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getMe.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(getMe)

	// GET /api/admin/games
	listGames, _ := r.NewOperationContext(http.MethodGet, "/api/admin/games")
	listGames.SetSummary("List games")
	listGames.SetDescription("Returns all games with team and node counts. Requires admin_session cookie.")
	listGames.AddRespStructure([]AdminGameSummary{}, openapi.WithHTTPStatus(http.StatusOK))
	listGames.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(listGames)

	// POST /api/admin/games
	createGame, _ := r.NewOperationContext(http.MethodPost, "/api/admin/games")
	createGame.SetSummary("Create game")
	createGame.SetDescription("Creates a game in draft state. Requires admin_session cookie.")
	createGame.AddReqStructure(AdminGameRequest{})
	createGame.AddRespStructure(AdminGameDetail{}, openapi.WithHTTPStatus(http.StatusCreated))
	createGame.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	createGame.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(createGame)

	// GET /api/admin/games/{gameID}
	getGame, _ := r.NewOperationContext(http.MethodGet, "/api/admin/games/{gameID}")
	getGame.SetSummary("Get game")
	getGame.SetDescription("Returns a game with its settings. Requires admin_session cookie.")
	getGame.AddRespStructure(AdminGameDetail{}, openapi.WithHTTPStatus(http.StatusOK))
	getGame.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getGame)

	// PUT /api/admin/games/{gameID}
	updateGame, _ := r.NewOperationContext(http.MethodPut, "/api/admin/games/{gameID}")
	updateGame.SetSummary("Update game")
	updateGame.SetDescription("Updates a game's name, slug, and settings. Requires admin_session cookie.")
	updateGame.AddReqStructure(AdminGameRequest{})
	updateGame.AddRespStructure(AdminGameDetail{}, openapi.WithHTTPStatus(http.StatusOK))
	updateGame.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	updateGame.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(updateGame)

	// DELETE /api/admin/games/{gameID}
	deleteGame, _ := r.NewOperationContext(http.MethodDelete, "/api/admin/games/{gameID}")
	deleteGame.SetSummary("Delete game")
	deleteGame.SetDescription("Deletes a non-active game and everything in it. Requires admin_session cookie.")
	deleteGame.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
	deleteGame.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	deleteGame.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(deleteGame)

	// POST /api/admin/games/{gameID}/activate
	activateGame, _ := r.NewOperationContext(http.MethodPost, "/api/admin/games/{gameID}/activate")
	activateGame.SetSummary("Activate game")
	activateGame.SetDescription("Moves a draft game live. Fails unless the graph has nodes, a start, and an end. Requires admin_session cookie.")
	activateGame.AddRespStructure(AdminGameDetail{}, openapi.WithHTTPStatus(http.StatusOK))
	activateGame.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	activateGame.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(activateGame)

	// POST /api/admin/games/{gameID}/complete
	completeGame, _ := r.NewOperationContext(http.MethodPost, "/api/admin/games/{gameID}/complete")
	completeGame.SetSummary("Complete game")
	completeGame.SetDescription("Ends an active game. Requires admin_session cookie.")
	completeGame.AddRespStructure(AdminGameDetail{}, openapi.WithHTTPStatus(http.StatusOK))
	completeGame.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	completeGame.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(completeGame)

	// GET /api/admin/games/{gameID}/leaderboard
	adminBoard, _ := r.NewOperationContext(http.MethodGet, "/api/admin/games/{gameID}/leaderboard")
	adminBoard.SetSummary("Admin leaderboard")
	adminBoard.SetDescription("Returns standings by game id in any status. Requires admin_session cookie.")
	adminBoard.AddRespStructure([]game.LeaderboardEntry{}, openapi.WithHTTPStatus(http.StatusOK))
	adminBoard.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(adminBoard)

	// GET /api/admin/games/{gameID}/nodes
	listNodes, _ := r.NewOperationContext(http.MethodGet, "/api/admin/games/{gameID}/nodes")
	listNodes.SetSummary("List nodes")
	listNodes.SetDescription("Returns the game's nodes including authoring fields. Requires admin_session cookie.")
	listNodes.AddRespStructure([]AdminNodeItem{}, openapi.WithHTTPStatus(http.StatusOK))
	listNodes.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(listNodes)

	// POST /api/admin/games/{gameID}/nodes
	createNode, _ := r.NewOperationContext(http.MethodPost, "/api/admin/games/{gameID}/nodes")
	createNode.SetSummary("Create node")
	createNode.SetDescription("Creates a node in a draft game. Requires admin_session cookie.")
	createNode.AddReqStructure(AdminNodeRequest{})
	createNode.AddRespStructure(AdminNodeItem{}, openapi.WithHTTPStatus(http.StatusCreated))
	createNode.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	createNode.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(createNode)

	// PUT /api/admin/games/{gameID}/nodes/{nodeID}
	updateNode, _ := r.NewOperationContext(http.MethodPut, "/api/admin/games/{gameID}/nodes/{nodeID}")
	updateNode.SetSummary("Update node")
	updateNode.SetDescription("Updates a node in a draft game. An empty password keeps the existing gate. Requires admin_session cookie.")
	updateNode.AddReqStructure(AdminNodeRequest{})
	updateNode.AddRespStructure(AdminNodeItem{}, openapi.WithHTTPStatus(http.StatusOK))
	updateNode.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(updateNode)

	// DELETE /api/admin/games/{gameID}/nodes/{nodeID}
	deleteNode, _ := r.NewOperationContext(http.MethodDelete, "/api/admin/games/{gameID}/nodes/{nodeID}")
	deleteNode.SetSummary("Delete node")
	deleteNode.SetDescription("Deletes a node and its edges from a draft game. Requires admin_session cookie.")
	deleteNode.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
	deleteNode.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(deleteNode)

	// GET /api/admin/games/{gameID}/edges
	listEdges, _ := r.NewOperationContext(http.MethodGet, "/api/admin/games/{gameID}/edges")
	listEdges.SetSummary("List edges")
	listEdges.SetDescription("Returns the game's directed edges. Requires admin_session cookie.")
	listEdges.AddRespStructure([]AdminEdgeItem{}, openapi.WithHTTPStatus(http.StatusOK))
	listEdges.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(listEdges)

	// POST /api/admin/games/{gameID}/edges
	createEdge, _ := r.NewOperationContext(http.MethodPost, "/api/admin/games/{gameID}/edges")
	createEdge.SetSummary("Create edge")
	createEdge.SetDescription("Creates a directed edge between two nodes of a draft game. Requires admin_session cookie.")
	createEdge.AddReqStructure(AdminEdgeRequest{})
	createEdge.AddRespStructure(AdminEdgeItem{}, openapi.WithHTTPStatus(http.StatusCreated))
	createEdge.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	_ = r.AddOperation(createEdge)

	// DELETE /api/admin/games/{gameID}/edges/{edgeID}
	deleteEdge, _ := r.NewOperationContext(http.MethodDelete, "/api/admin/games/{gameID}/edges/{edgeID}")
	deleteEdge.SetSummary("Delete edge")
	deleteEdge.SetDescription("Deletes an edge from a draft game. Requires admin_session cookie.")
	deleteEdge.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
	deleteEdge.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(deleteEdge)

	// GET /api/admin/games/{gameID}/teams
	listTeams, _ := r.NewOperationContext(http.MethodGet, "/api/admin/games/{gameID}/teams")
	listTeams.SetSummary("List teams")
	listTeams.SetDescription("Returns the game's teams. Requires admin_session cookie.")
	listTeams.AddRespStructure([]AdminTeamItem{}, openapi.WithHTTPStatus(http.StatusOK))
	listTeams.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(listTeams)

	// POST /api/admin/games/{gameID}/teams
	createTeam, _ := r.NewOperationContext(http.MethodPost, "/api/admin/games/{gameID}/teams")
	createTeam.SetSummary("Create team")
	createTeam.SetDescription("Creates a team. Auto-generates the code if blank and assigns a start node round-robin. Requires admin_session cookie.")
	createTeam.AddReqStructure(AdminTeamRequest{})
	createTeam.AddRespStructure(AdminTeamItem{}, openapi.WithHTTPStatus(http.StatusCreated))
	createTeam.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	createTeam.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(createTeam)

	// PUT /api/admin/games/{gameID}/teams/{teamID}
	updateTeam, _ := r.NewOperationContext(http.MethodPut, "/api/admin/games/{gameID}/teams/{teamID}")
	updateTeam.SetSummary("Update team")
	updateTeam.SetDescription("Updates a team's name and logo. The code is immutable. Requires admin_session cookie.")
	updateTeam.AddReqStructure(AdminTeamRequest{})
	updateTeam.AddRespStructure(AdminTeamItem{}, openapi.WithHTTPStatus(http.StatusOK))
	updateTeam.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(updateTeam)

	// DELETE /api/admin/games/{gameID}/teams/{teamID}
	deleteTeamOp, _ := r.NewOperationContext(http.MethodDelete, "/api/admin/games/{gameID}/teams/{teamID}")
	deleteTeamOp.SetSummary("Delete team")
	deleteTeamOp.SetDescription("Deletes a team. Blocked once the team has recorded scans. Requires admin_session cookie.")
	deleteTeamOp.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
	deleteTeamOp.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	deleteTeamOp.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(deleteTeamOp)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}

func handleSwaggerUI() http.HandlerFunc {
	h := v5emb.New("TrailHunt API", "/openapi.json", "/docs")
	return h.ServeHTTP
}
