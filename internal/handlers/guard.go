package handlers

import (
	"net/http"

	"github.com/cargoline/apiserver/internal/session"
	"github.com/cargoline/apiserver/types"
)

// RequireRole rejects requests without a session (401) or whose session
// has a different role (403). It only reads the request context.
func RequireRole(role types.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := session.FromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			if sess.Role != role {
				writeError(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
