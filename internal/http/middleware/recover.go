package middleware

import (
	"net/http"

	"github.com/corstar/site-intake/pkg/logging"
)

// UnexpectedErrorMessage is returned for malformed bodies and recovered panics.
const UnexpectedErrorMessage = "An unexpected error occurred"

// Recover turns a panic into the JSON 500 envelope.
func Recover(logger *logging.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					logger.Error("panic serving request", "panic", rec, "path", r.URL.Path)
					WriteError(w, http.StatusInternalServerError, UnexpectedErrorMessage)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
