package httpx

import (
	"context"
	"net/http"
	"strings"

	"postboard/internal/shared/jwt"
)

type ctxKey string

const userKey ctxKey = "uid"

// DevUser is attached to requests when no JWT secret is configured.
const DevUser = "dev"

func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// AuthMiddleware validates HS256 bearer tokens against secret. An empty secret
// is dev mode: every request passes as DevUser.
func AuthMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, DevUser)))
				return
			}
			tok := BearerToken(r)
			if tok == "" {
				WriteError(w, http.StatusUnauthorized, ErrUnauthorized, "missing_bearer")
				return
			}
			uid, err := jwt.Parse(tok, secret)
			if err != nil {
				WriteError(w, http.StatusUnauthorized, ErrUnauthorized, "invalid_token")
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, uid)))
		})
	}
}

func UserFromCtx(r *http.Request) (string, error) {
	v, _ := r.Context().Value(userKey).(string)
	if v == "" {
		return "", ErrUnauthorized
	}
	return v, nil
}
