package handlers

import (
	"fmt"
	"net/http"
	"time"
)

// HealthHandler serves the liveness endpoint and the API fallbacks
type HealthHandler struct {
	environment string
	version     string
	now         func() time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(environment, version string) *HealthHandler {
	return &HealthHandler{environment: environment, version: version, now: time.Now}
}

// Health handles GET /api/health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	_, authenticated := IdentityFromContext(r.Context())
	respondWithJSON(w, http.StatusOK, map[string]any{
		"status":        "OK",
		"message":       "Test Case Generator API is running",
		"timestamp":     h.now().UTC().Format(time.RFC3339),
		"environment":   h.environment,
		"version":       h.version,
		"authenticated": authenticated,
	})
}

// GenerateNotImplemented handles POST /api/generate-test-case. Generation
// runs client-side with the user's own key.
func (h *HealthHandler) GenerateNotImplemented(w http.ResponseWriter, r *http.Request) {
	respondWithError(w, http.StatusNotImplemented, "Not Implemented",
		"Server-side generation not implemented. Use client-side generation with your own API key.")
}

// NotFound handles any unmatched /api/ path
func (h *HealthHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusNotFound, map[string]any{
		"error":   "API endpoint not found",
		"message": fmt.Sprintf("The endpoint %s %s was not found", r.Method, r.URL.Path),
		"path":    r.URL.Path,
	})
}
