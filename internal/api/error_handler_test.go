package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/taskhive/task-api/internal/core/domain"
)

func renderError(t *testing.T, err error) (int, map[string]any) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := NewHTTPErrorHandler(zerolog.Nop())
	handler(err, c)

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	return rec.Code, body
}

func TestErrorHandler_DomainErrors(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{domain.ErrValidation, http.StatusBadRequest},
		{domain.ErrDuplicateUser, http.StatusBadRequest},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{domain.ErrInvalidToken, http.StatusForbidden},
		{domain.ErrUserNotFound, http.StatusNotFound},
		{domain.ErrTaskNotFound, http.StatusNotFound},
		{domain.ErrTooManyAttempts, http.StatusTooManyRequests},
	}
	for _, tc := range cases {
		code, body := renderError(t, tc.err)
		if code != tc.code {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.code, code)
		}
		if int(body["status"].(float64)) != tc.code {
			t.Fatalf("%v: envelope status %v does not match %d", tc.err, body["status"], tc.code)
		}
	}
}

func TestErrorHandler_EnvelopeShape(t *testing.T) {
	code, body := renderError(t, domain.ErrTaskNotFound)
	if code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", code)
	}
	if body["message"] != "task not found" {
		t.Fatalf("unexpected message: %v", body["message"])
	}
	ts, ok := body["timestamp"].(string)
	if !ok {
		t.Fatalf("missing timestamp: %+v", body)
	}
	if _, err := time.Parse(time.RFC3339, ts); err != nil {
		t.Fatalf("timestamp not RFC3339: %v", err)
	}
}

func TestErrorHandler_EchoHTTPError(t *testing.T) {
	code, body := renderError(t, echo.NewHTTPError(http.StatusForbidden, "forbidden"))
	if code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", code)
	}
	if body["message"] != "forbidden" {
		t.Fatalf("unexpected message: %v", body["message"])
	}
}

func TestErrorHandler_UnexpectedError(t *testing.T) {
	// Internal details must never leak to the client.
	code, body := renderError(t, errors.New("pq: connection refused on shard 3"))
	if code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", code)
	}
	if body["message"] != "internal server error" {
		t.Fatalf("internal detail leaked: %v", body["message"])
	}
}
