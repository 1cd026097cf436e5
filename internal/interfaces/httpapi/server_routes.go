package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerPublicLeagueRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/teams", handler.ListTeams)
	mux.HandleFunc("GET /v1/teams/{tag}", handler.GetTeam)
	mux.HandleFunc("GET /v1/teams/{tag}/challenges", handler.ListTeamChallenges)
	mux.HandleFunc("GET /v1/challenges/{challengeID}", handler.GetChallenge)
	mux.HandleFunc("GET /v1/seasons/{season}/ratings", handler.ListSeasonRatings)
}

func registerAdminRoutes(mux *http.ServeMux, handler *Handler, adminToken string) {
	mux.Handle("POST /v1/admin/seasons/{season}/ratings/recalculate",
		RequireAdminToken(adminToken, http.HandlerFunc(handler.RecalculateSeasonRatings)))
}
