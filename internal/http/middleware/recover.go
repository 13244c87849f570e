package middleware

import (
	"net/http"

	"github.com/davidbz/porco/internal/observability"
)

// Recover creates a middleware that converts handler panics into 500
// responses instead of tearing down the connection.
func Recover() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					observability.FromContext(r.Context()).Error("handler panic recovered",
						observability.Any("panic", rec),
						observability.String("path", r.URL.Path),
					)
					http.Error(w, "internal server error", http.StatusInternalServerError)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
