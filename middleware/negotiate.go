package middleware

import (
	"context"
	"net/http"

	"github.com/iaconlabs/doze/mediatype"
	"github.com/iaconlabs/doze/request"
	"github.com/iaconlabs/doze/router"
)

// Accepts returns a middleware that negotiates the response media type
// among names, in order of preference. Requests that accept none of them get
// 406 Not Acceptable, unless ignoreUnacceptable is set, in which case the
// first name is used. Names not present in the registry are skipped. The
// choice is available to handlers through Negotiated.
func Accepts(ignoreUnacceptable bool, names ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			req, ok := request.FromRequest(r)
			if !ok {
				sendJSONError(w, "doze request not found", http.StatusInternalServerError)
				return
			}

			w.Header().Add("Vary", "Accept")

			candidates := req.MediaTypes().MediaTypes(names...)
			chosen, err := req.Negotiator(ignoreUnacceptable).ChooseMediaType(candidates...)
			if err != nil {
				sendJSON(w, http.StatusNotAcceptable, map[string]any{
					"error":     "Not Acceptable",
					"available": names,
				})
				return
			}

			ctx := context.WithValue(r.Context(), router.NegotiatedKey, chosen)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Negotiated returns the media type chosen by Accepts.
func Negotiated(r *http.Request) (*mediatype.MediaType, bool) {
	mt, ok := r.Context().Value(router.NegotiatedKey).(*mediatype.MediaType)
	return mt, ok
}
