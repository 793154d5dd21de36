package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func contextWithRole(c echo.Context, role string) {
	ctx := context.WithValue(c.Request().Context(), UserRoleKey, role)
	c.SetRequest(c.Request().WithContext(ctx))
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name     string
		userRole string
		required []string
		allowed  bool
	}{
		{"exact match", RoleReception, []string{RoleReception}, true},
		{"one of several", RoleBilling, []string{RoleReception, RoleBilling}, true},
		{"admin bypasses", RoleAdmin, []string{RoleClinical}, true},
		{"wrong role", RoleClinical, []string{RoleBilling}, false},
		{"no role", "", []string{RoleReception}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			contextWithRole(c, tt.userRole)

			handler := func(c echo.Context) error {
				return c.String(http.StatusOK, "ok")
			}
			err := RequireRole(tt.required...)(handler)(c)

			if tt.allowed && err != nil {
				t.Errorf("expected access, got %v", err)
			}
			if !tt.allowed {
				httpErr, ok := err.(*echo.HTTPError)
				if !ok || httpErr.Code != http.StatusForbidden {
					t.Errorf("expected 403, got %v", err)
				}
			}
		})
	}
}
