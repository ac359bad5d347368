package httpx

import (
	"net/http"
	"strings"

	"bookcatalog/internal/platform/crypto"
)

// BearerToken extracts the token of an "Authorization: Bearer" header.
func BearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// AuthMiddleware requires a valid bearer token and stores its user in the
// request context.
func AuthMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, username, ok := authenticate(secret, r)
			if !ok {
				w.Header().Set("WWW-Authenticate", `Bearer realm="bookcatalog"`)
				JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), userID, username)))
		})
	}
}

func authenticate(secret string, r *http.Request) (int64, string, bool) {
	token, ok := BearerToken(r)
	if !ok {
		return 0, "", false
	}
	claims, err := crypto.ParseToken(secret, token)
	if err != nil {
		return 0, "", false
	}
	userID, err := claims.UserID()
	if err != nil {
		return 0, "", false
	}
	return userID, claims.Username, true
}
