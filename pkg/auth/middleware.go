package auth

import (
	"log/slog"
	"net/http"
	"slices"
	"strings"
)

const bearerPrefix = "Bearer "

// Middleware rejects requests without a valid bearer token and stores the
// caller's Principal in the request context. Browsers cannot set headers on
// a websocket upgrade, so the token is also read from ?access_token=.
func Middleware(v *Verifier) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			tokenStr := r.URL.Query().Get("access_token")
			if header := r.Header.Get("Authorization"); header != "" {
				if !strings.HasPrefix(header, bearerPrefix) {
					http.Error(w, "Malformed authorization header", http.StatusUnauthorized)
					return
				}
				tokenStr = strings.TrimPrefix(header, bearerPrefix)
			}
			if tokenStr == "" {
				http.Error(w, "Missing bearer token", http.StatusUnauthorized)
				return
			}

			p, err := v.Parse(tokenStr)
			if err != nil {
				slog.DebugContext(r.Context(), "rejected token", "error", err)
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		}
		return http.HandlerFunc(fn)
	}
}

// RequireRoles only lets through callers in one of roles.
func RequireRoles(roles ...Role) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			p, ok := FromContext(r.Context())
			if !ok {
				http.Error(w, "Missing bearer token", http.StatusUnauthorized)
				return
			}
			if !slices.Contains(roles, p.Role) {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(fn)
	}
}

// RoleScopes enforces the roles an operation declares as security scopes.
// The router stores them in the request context under key; an operation
// with no scopes is open to every authenticated caller.
func RoleScopes(key any) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			scopes, _ := r.Context().Value(key).([]string)
			if len(scopes) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			roles := make([]Role, len(scopes))
			for i, s := range scopes {
				roles[i] = Role(s)
			}
			RequireRoles(roles...)(next).ServeHTTP(w, r)
		}
		return http.HandlerFunc(fn)
	}
}
