package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pkordes/vacation-catalog/backend/internal/middleware"
)

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name     string
		role     string
		loggedIn string
		caller   string
		wantCode int
		wantMsg  string
	}{
		{"admin ok", middleware.RoleAdmin, "true", "admin", http.StatusOK, ""},
		{"admin not logged in", middleware.RoleAdmin, "false", "admin", http.StatusUnauthorized, "Access denied. User is not login"},
		{"admin header missing", middleware.RoleAdmin, "", "admin", http.StatusUnauthorized, "Access denied. User is not login"},
		{"admin wrong role", middleware.RoleAdmin, "true", "user", http.StatusUnauthorized, "Access denied. User is not admin"},
		{"user ok", middleware.RoleUser, "true", "user", http.StatusOK, ""},
		{"user wrong role", middleware.RoleUser, "true", "admin", http.StatusUnauthorized, "Access denied. User is not login"},
		{"user not logged in", middleware.RoleUser, "false", "user", http.StatusUnauthorized, "Access denied. User is not login"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := middleware.RequireRole(middleware.HeaderAuthorizer, tc.role)(trivialHandler)

			req := httptest.NewRequest(http.MethodGet, "/admin/vacations", nil)
			if tc.loggedIn != "" {
				req.Header.Set(middleware.HeaderLoggedIn, tc.loggedIn)
			}
			req.Header.Set(middleware.HeaderRole, tc.caller)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tc.wantCode, rec.Code)
			if tc.wantMsg != "" {
				assert.JSONEq(t, `{"message":"`+tc.wantMsg+`"}`, rec.Body.String())
			}
		})
	}
}

func TestRequireRole_CustomAuthorizer(t *testing.T) {
	always := func(*http.Request) (bool, string) { return true, middleware.RoleAdmin }
	h := middleware.RequireRole(always, middleware.RoleAdmin)(trivialHandler)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/reports", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}
