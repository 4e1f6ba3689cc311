package handlers

import "net/http"

// RegisterRoutes mounts the JSON API on mux
func RegisterRoutes(mux *http.ServeMux, mw *Middleware, auth *AuthHandler, health *HealthHandler) {
	mux.HandleFunc("POST /api/auth/register", mw.RateLimit(auth.Register))
	mux.HandleFunc("POST /api/auth/login", mw.RateLimit(auth.Login))
	mux.HandleFunc("POST /api/auth/logout", mw.RequireSession(auth.Logout))
	mux.HandleFunc("GET /api/auth/me", mw.RequireSession(auth.Me))
	mux.HandleFunc("GET /api/auth/api-key", mw.RequireSession(auth.GetAPIKey))
	mux.HandleFunc("PUT /api/auth/api-key", mw.RequireSession(auth.UpdateAPIKey))

	mux.HandleFunc("GET /api/health", mw.OptionalSession(health.Health))
	mux.HandleFunc("POST /api/generate-test-case", health.GenerateNotImplemented)

	// Anything else under /api/ gets a JSON 404
	mux.HandleFunc("/api/", health.NotFound)
}
