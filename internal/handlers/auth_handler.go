package handlers

import (
	"log/slog"
	"net/http"

	"testcasegen/internal/models"
	"testcasegen/internal/security"
	"testcasegen/internal/service"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authService   *service.AuthService
	secureCookies bool
	logger        *slog.Logger
}

// NewAuthHandler creates a new auth handler. secureCookies forces the Secure
// flag regardless of request scheme.
func NewAuthHandler(authService *service.AuthService, secureCookies bool, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		authService:   authService,
		secureCookies: secureCookies,
		logger:        logger,
	}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type apiKeyRequest struct {
	APIKey string `json:"apiKey"`
}

type authResponse struct {
	Success   bool               `json:"success"`
	Message   string             `json:"message"`
	User      models.AccountView `json:"user"`
	SessionID string             `json:"sessionId"`
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrValidationFailed, "Request body must be JSON with email and password")
		return
	}

	result, err := h.authService.Register(req.Email, req.Password)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	http.SetCookie(w, security.CreateSessionCookie(r, result.Token, result.ExpiresAt, h.secureCookies))
	respondWithJSON(w, http.StatusCreated, authResponse{
		Success:   true,
		Message:   "User registered successfully",
		User:      result.Account,
		SessionID: result.Token,
	})
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrValidationFailed, "Request body must be JSON with email and password")
		return
	}

	result, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	http.SetCookie(w, security.CreateSessionCookie(r, result.Token, result.ExpiresAt, h.secureCookies))
	respondWithJSON(w, http.StatusOK, authResponse{
		Success:   true,
		Message:   "Login successful",
		User:      result.Account,
		SessionID: result.Token,
	})
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.authService.Logout(TokenFromContext(r.Context())); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	http.SetCookie(w, security.CreateDeleteCookie(r, h.secureCookies))
	respondWithJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Logged out successfully",
	})
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		writeServiceError(w, h.logger, service.ErrUnauthenticated)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    identity,
	})
}

// GetAPIKey handles GET /api/auth/api-key
func (h *AuthHandler) GetAPIKey(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		writeServiceError(w, h.logger, service.ErrUnauthenticated)
		return
	}

	secret, found, err := h.authService.GetSecret(identity.ID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	body := map[string]any{
		"success":   true,
		"hasApiKey": found,
	}
	if found {
		body["apiKey"] = secret
	}
	respondWithJSON(w, http.StatusOK, body)
}

// UpdateAPIKey handles PUT /api/auth/api-key
func (h *AuthHandler) UpdateAPIKey(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		writeServiceError(w, h.logger, service.ErrUnauthenticated)
		return
	}

	var req apiKeyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrValidationFailed, "Request body must be JSON with apiKey")
		return
	}

	if err := h.authService.UpdateSecret(identity.ID, req.APIKey); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "API key updated successfully",
	})
}
