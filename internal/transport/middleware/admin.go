package middleware

import (
	"net/http"

	"github.com/heartmarshall/kiddict-backend/pkg/ctxutil"
)

// RequireAdmin rejects requests whose caller is not an admin with 403.
// It must run after Auth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !ctxutil.IsAdminCtx(r.Context()) {
			writeError(w, http.StatusForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
