package middleware

import "net/http"

// MethodNotAllowedMessage is the body text of a 405.
const MethodNotAllowedMessage = "Method not allowed"

// RequireMethod rejects any other method with a JSON 405.
func RequireMethod(method string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != method {
				WriteError(w, http.StatusMethodNotAllowed, MethodNotAllowedMessage)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
