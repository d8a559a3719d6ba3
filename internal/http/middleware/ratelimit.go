package middleware

import (
	"net/http"

	"github.com/corstar/site-intake/internal/ratelimit"
	"github.com/corstar/site-intake/pkg/logging"
)

// RateLimit rejects a client that was accepted within the limiter's window.
// Limiter errors are logged and the request is let through.
func RateLimit(limiter ratelimit.Limiter, message string, logger *logging.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := ratelimit.ClientKey(r)
			allowed, err := limiter.Allow(r.Context(), key)
			if err != nil {
				logger.Warn("rate limiter unavailable, allowing request", "error", err, "path", r.URL.Path)
			}
			if !allowed {
				WriteError(w, http.StatusTooManyRequests, message)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
