package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"not found", NotFound("patient %s not found", "p1"), KindNotFound},
		{"invalid", Invalid("capacity must be positive"), KindInvalid},
		{"conflict", Conflict("room is full"), KindConflict},
		{"internal", Internal(errors.New("db down"), "query failed"), KindInternal},
		{"plain error", errors.New("anything"), KindInternal},
		{"wrapped", fmt.Errorf("admit: %w", Conflict("room is full")), KindConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Internal(cause, "ping failed")
	if !errors.Is(err, cause) {
		t.Error("expected wrapped cause to be reachable via errors.Is")
	}
}

func doRequest(t *testing.T, err error, dev bool) (*httptest.ResponseRecorder, map[string]string) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	HTTPErrorHandler(zerolog.Nop(), dev)(err, c)

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return rec, body
}

func TestHTTPErrorHandler_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", NotFound("bill not found"), http.StatusNotFound},
		{"invalid", Invalid("bad input"), http.StatusBadRequest},
		{"conflict", Conflict("already discharged"), http.StatusConflict},
		{"internal", Internal(errors.New("boom"), "oops"), http.StatusInternalServerError},
		{"echo error", echo.NewHTTPError(http.StatusForbidden, "nope"), http.StatusForbidden},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := doRequest(t, tt.err, false)
			if rec.Code != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, rec.Code)
			}
		})
	}
}

func TestHTTPErrorHandler_HidesInternalDetail(t *testing.T) {
	rec, body := doRequest(t, Internal(errors.New("password=hunter2"), "query failed"), false)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if body["error"] != "internal server error" {
		t.Errorf("internal detail leaked: %q", body["error"])
	}
}

func TestHTTPErrorHandler_DevShowsDetail(t *testing.T) {
	_, body := doRequest(t, Internal(errors.New("boom"), "query failed"), true)
	if body["error"] == "internal server error" {
		t.Error("expected detail in dev mode")
	}
}
