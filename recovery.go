package doze

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/iaconlabs/doze/middleware"
	"github.com/iaconlabs/doze/request"
)

// Recovery returns a middleware that recovers from panics, logs the error,
// and returns an Internal Server Error (500) to the client. Panics include
// configuration errors surfacing while a request is served, such as a nil
// session function. If stack is true, the stack trace is included in the log
// and the response. A nil logger means slog.Default().
func Recovery(logger *slog.Logger, stack bool) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					message := fmt.Sprintf("PANIC RECOVERED: %v", err)

					attrs := []any{
						slog.String("request_id", middleware.GetRequestID(r)),
						slog.String("method", r.Method),
					}
					if req, ok := request.FromRequest(r); ok {
						attrs = append(attrs, slog.String("path", req.DecodedPath()))
					}
					if stack {
						attrs = append(attrs, slog.String("stack", string(debug.Stack())))
					}
					logger.ErrorContext(r.Context(), message, attrs...)

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)

					body := `{"error": "Internal Server Error"}`
					if stack {
						body = fmt.Sprintf(`{"error": %q}`, message+"\n\n"+string(debug.Stack()))
					}
					_, _ = w.Write([]byte(body))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
