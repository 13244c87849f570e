package middleware

import (
	"net/http"

	"github.com/rs/cors"

	"github.com/davidbz/porco/internal/config"
)

// CORS applies cross-origin request handling driven by the server
// configuration. A nil configuration disables the middleware entirely,
// leaving responses without CORS headers.
func CORS(cfg *config.CORSConfig) Middleware {
	if cfg == nil {
		return passthrough
	}

	return cors.New(corsOptions(cfg)).Handler
}

func passthrough(next http.Handler) http.Handler {
	return next
}

// corsOptions translates the env-driven configuration into rs/cors options.
func corsOptions(cfg *config.CORSConfig) cors.Options {
	return cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   cfg.AllowedMethods,
		AllowedHeaders:   cfg.AllowedHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	}
}
