package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/heartmarshall/kiddict-backend/pkg/ctxutil"
)

// SessionHeader carries the dictionary session between requests.
const SessionHeader = "X-Session-Id"

// Session puts the caller's session ID in the context, minting a new one when
// the header is missing or malformed. The ID is echoed in the response.
func Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(r.Header.Get(SessionHeader))
		if err != nil || id == uuid.Nil {
			id = uuid.New()
		}
		w.Header().Set(SessionHeader, id.String())
		next.ServeHTTP(w, r.WithContext(ctxutil.WithSessionID(r.Context(), id)))
	})
}
