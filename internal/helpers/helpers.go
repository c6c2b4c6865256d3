package helpers

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
)

func StringTrim(s string) string {
	return strings.TrimSpace(s)
}

// TokenVerifier checks bearer tokens against either a remote JWKS or a
// shared HMAC secret. Built once at startup; the JWKS refreshes itself in
// the background rather than being fetched per request.
type TokenVerifier struct {
	jwks   *keyfunc.JWKS
	secret []byte
}

func NewTokenVerifier(jwksURL, hmacSecret string) (*TokenVerifier, error) {
	if jwksURL != "" {
		jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
			RefreshInterval:   time.Hour,
			RefreshRateLimit:  5 * time.Minute,
			RefreshUnknownKID: true,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to fetch JWKS: %v", err)
		}
		return &TokenVerifier{jwks: jwks}, nil
	}

	if hmacSecret == "" {
		return nil, errors.New("either a JWKS URL or an HMAC secret is required")
	}
	return &TokenVerifier{secret: []byte(hmacSecret)}, nil
}

// Close stops the JWKS background refresh.
func (v *TokenVerifier) Close() {
	if v.jwks != nil {
		v.jwks.EndBackground()
	}
}

// Verify parses and validates a bearer token, returning its claims.
func (v *TokenVerifier) Verify(tokenStr string) (*CustomClaims, error) {
	kf := v.hmacKeyfunc
	if v.jwks != nil {
		kf = v.jwks.Keyfunc
	}

	token, err := jwt.ParseWithClaims(tokenStr, &CustomClaims{}, kf)
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %v", err)
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid or expired token")
	}
	return claims, nil
}

func (v *TokenVerifier) hmacKeyfunc(t *jwt.Token) (interface{}, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
	}
	return v.secret, nil
}
