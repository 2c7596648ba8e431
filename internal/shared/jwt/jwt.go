package jwt

import (
	"errors"
	"time"

	jw "github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrNoSubject    = errors.New("no subject")
)

// Parse validates an HS256 JWT and returns the "sub" claim.
func Parse(tok, secret string) (string, error) {
	t, err := jw.Parse(tok, func(t *jw.Token) (any, error) {
		return []byte(secret), nil
	}, jw.WithValidMethods([]string{jw.SigningMethodHS256.Alg()}))
	if err != nil || !t.Valid {
		return "", ErrInvalidToken
	}
	mc, ok := t.Claims.(jw.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	uid, _ := mc["sub"].(string)
	if uid == "" {
		return "", ErrNoSubject
	}
	return uid, nil
}

// Sign issues an HS256 token for sub. ttl <= 0 means no expiry.
func Sign(sub, secret string, ttl time.Duration) (string, error) {
	claims := jw.MapClaims{"sub": sub, "iat": time.Now().Unix()}
	if ttl > 0 {
		claims["exp"] = time.Now().Add(ttl).Unix()
	}
	return jw.NewWithClaims(jw.SigningMethodHS256, claims).SignedString([]byte(secret))
}
