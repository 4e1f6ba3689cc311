package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"testcasegen/internal/service"
	"testcasegen/internal/validation"
)

func TestRespondWithErrorWritesStatusAndBody(t *testing.T) {
	recorder := httptest.NewRecorder()

	respondWithError(recorder, 418, "Teapot", "short and stout")

	if recorder.Code != 418 {
		t.Fatalf("expected status 418, got %d", recorder.Code)
	}
	if ct := recorder.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected JSON content type, got %q", ct)
	}

	var body errorResponse
	if err := json.NewDecoder(recorder.Body).Decode(&body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body.Error != "Teapot" || body.Message != "short and stout" {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestWriteServiceErrorStatusCodes(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		code  int
		title string
	}{
		{"validation", &validation.ValidationError{Field: "email", Message: "invalid email format"}, http.StatusBadRequest, ErrValidationFailed},
		{"duplicate", service.ErrDuplicateAccount, http.StatusBadRequest, "Registration failed"},
		{"credentials", service.ErrInvalidCredentials, http.StatusUnauthorized, "Login failed"},
		{"no session", service.ErrUnauthenticated, http.StatusUnauthorized, ErrAuthenticationRequired},
		{"invalid session", service.ErrInvalidSession, http.StatusUnauthorized, ErrInvalidSessionTitle},
		{"wrapped invalid session", fmt.Errorf("gate: %w", service.ErrInvalidSession), http.StatusUnauthorized, ErrInvalidSessionTitle},
		{"account gone", service.ErrAccountNotFound, http.StatusNotFound, "Account not found"},
		{"rate limited", service.ErrRateLimited, http.StatusTooManyRequests, ErrTooManyAttempts},
		{"infrastructure", &service.ServiceError{Op: "login", Err: errors.New("db down")}, http.StatusInternalServerError, ErrInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			writeServiceError(recorder, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)), tt.err)

			if recorder.Code != tt.code {
				t.Errorf("status = %d, want %d", recorder.Code, tt.code)
			}
			var body errorResponse
			if err := json.NewDecoder(recorder.Body).Decode(&body); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}
			if body.Error != tt.title {
				t.Errorf("error = %q, want %q", body.Error, tt.title)
			}
		})
	}
}

func TestWriteServiceErrorLogsDetailNotClient(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	recorder := httptest.NewRecorder()
	writeServiceError(recorder, logger, &service.ServiceError{Op: "login", Err: errors.New("boom: /var/lib/db locked")})

	if strings.Contains(recorder.Body.String(), "boom") {
		t.Fatalf("internal detail leaked to client: %q", recorder.Body.String())
	}
	if !strings.Contains(buf.String(), "boom") {
		t.Fatalf("expected log to include error, got %q", buf.String())
	}
}
