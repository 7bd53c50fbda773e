package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, swaggerEnabled bool, metricsHandler http.Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if metricsHandler != nil {
		mux.Handle("GET /metrics", metricsHandler)
	}
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerPublicRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/teams", handler.ListTeams)
	mux.HandleFunc("GET /v1/teams/{teamID}/players", handler.ListPlayersByTeam)
	mux.HandleFunc("GET /v1/games", handler.ListGames)
	mux.HandleFunc("GET /v1/games/{gameID}/standings", handler.GetGameStandings)
	mux.HandleFunc("GET /v1/leaderboard", handler.GetLeaderboard)
	mux.HandleFunc("GET /v1/scores/recent", handler.ListRecentScores)
	mux.HandleFunc("GET /v1/snapshots", handler.ListSnapshots)
	mux.HandleFunc("GET /v1/snapshots/{day}", handler.GetSnapshot)
}

func registerAdminRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/admin/rounds/resolve", RequireAuth(verifier, http.HandlerFunc(handler.ResolveRound)))
	mux.Handle("POST /v1/admin/scores", RequireAuth(verifier, http.HandlerFunc(handler.AddPoints)))
	mux.Handle("POST /v1/admin/scores/team", RequireAuth(verifier, http.HandlerFunc(handler.AddTeamPoints)))
	mux.Handle("POST /v1/admin/scores/{entryID}/undo", RequireAuth(verifier, http.HandlerFunc(handler.UndoEntry)))
	// Locks the day for good; there is no unlock route.
	mux.Handle("POST /v1/admin/days/{day}/reveal", RequireAuth(verifier, http.HandlerFunc(handler.RevealDay)))
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/reconcile", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunReconcileJob)))
}
