package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"testcasegen/internal/service"
	"testcasegen/internal/validation"
)

// errorResponse is the JSON body of every failed request
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func respondWithJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondWithError(w http.ResponseWriter, status int, title, message string) {
	respondWithJSON(w, status, errorResponse{Error: title, Message: message})
}

// writeServiceError maps an AuthService error to its HTTP response. Details
// of infrastructure failures are logged and never sent to the client.
func writeServiceError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var vErr *validation.ValidationError
	switch {
	case errors.As(err, &vErr):
		respondWithError(w, http.StatusBadRequest, ErrValidationFailed, vErr.Message)
	case errors.Is(err, service.ErrDuplicateAccount):
		respondWithError(w, http.StatusBadRequest, "Registration failed", "An account with this email already exists")
	case errors.Is(err, service.ErrInvalidCredentials):
		respondWithError(w, http.StatusUnauthorized, "Login failed", "Invalid email or password")
	case errors.Is(err, service.ErrUnauthenticated):
		respondWithError(w, http.StatusUnauthorized, ErrAuthenticationRequired, "No session provided")
	case errors.Is(err, service.ErrInvalidSession):
		respondWithError(w, http.StatusUnauthorized, ErrInvalidSessionTitle, "Session expired or invalid")
	case errors.Is(err, service.ErrAccountNotFound):
		respondWithError(w, http.StatusNotFound, "Account not found", "The account no longer exists")
	case errors.Is(err, service.ErrRateLimited):
		respondWithError(w, http.StatusTooManyRequests, ErrTooManyAttempts, "Please try again later")
	default:
		var svcErr *service.ServiceError
		if errors.As(err, &svcErr) {
			logger.Error("service failure", "op", svcErr.Op, "error", svcErr.Err)
		} else {
			logger.Error("unexpected error", "error", err)
		}
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, service.ErrServiceUnavailable.Error())
	}
}

// decodeJSON reads a size-limited JSON body into v
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}
