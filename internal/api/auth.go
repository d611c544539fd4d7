package api

import "net/http"

// APIKeyMiddleware wraps next with API key authentication.
//
// Behaviour:
//   - If mode != "apikey" or key == "", all requests are allowed (pass-through).
//   - Otherwise the value of header is compared to key; a missing, empty, or
//     incorrect key returns 401 with a JSON error body.
func APIKeyMiddleware(mode, header, key string, next http.Handler) http.Handler {
	// Non-apikey modes or unconfigured key → allow everything.
	if mode != "apikey" || key == "" {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(header) != key {
			jsonErr(w, http.StatusUnauthorized, "invalid api key")
			return
		}
		next.ServeHTTP(w, r)
	})
}
