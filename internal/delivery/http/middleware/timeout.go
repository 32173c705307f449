package middleware

import (
	"context"
	"net/http"
	"time"
)

// Timeout returns a middleware that bounds request handling time via the
// request context. Handlers observe cancellation cooperatively.
func Timeout(duration time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), duration)
			defer cancel()

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
