package middleware

import (
	"net/http"
	"strings"
)

// Header names set by the client after login.
const (
	HeaderLoggedIn = "loggedIn"
	HeaderRole     = "role"
)

// Roles understood by RequireRole.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Authorizer reports whether the caller is logged in and which role it holds.
// It is the seam where a real credential verifier plugs in.
type Authorizer func(r *http.Request) (loggedIn bool, role string)

// HeaderAuthorizer trusts the loggedIn and role request headers.
func HeaderAuthorizer(r *http.Request) (bool, string) {
	loggedIn := strings.EqualFold(strings.TrimSpace(r.Header.Get(HeaderLoggedIn)), "true")
	return loggedIn, strings.TrimSpace(r.Header.Get(HeaderRole))
}

// RequireRole rejects with 401 any request whose caller is not logged in
// with the given role.
func RequireRole(auth Authorizer, role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			loggedIn, got := auth(r)
			switch {
			case !loggedIn:
				writeMessage(w, http.StatusUnauthorized, "Access denied. User is not login")
			case got != role && role == RoleAdmin:
				writeMessage(w, http.StatusUnauthorized, "Access denied. User is not admin")
			case got != role:
				writeMessage(w, http.StatusUnauthorized, "Access denied. User is not login")
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}
