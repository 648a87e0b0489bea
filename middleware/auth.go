package middleware

import (
	"net/http"

	"github.com/iaconlabs/doze/request"
)

// Authenticated rejects requests whose session is missing or not
// authenticated with 401 Unauthorized. The session itself comes from the
// SessionFromContext function of the application config, so the middleware
// that establishes it must run before the Application.
func Authenticated() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			req, ok := request.FromRequest(r)
			if !ok {
				sendJSONError(w, "doze request not found", http.StatusInternalServerError)
				return
			}
			if !req.SessionAuthenticated() {
				sendJSONError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
