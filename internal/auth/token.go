package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"
)

// CookieName is the cookie carrying the opaque session token.
const CookieName = "auth_token"

const tokenBytes = 32

const (
	sessionTTL  = 24 * time.Hour
	rememberTTL = 30 * 24 * time.Hour
)

// NewToken returns a cryptographically random opaque session token,
// hex-encoded (64 characters).
func NewToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// SessionTTL returns how long the session cookie should live: one day by
// default, thirty days when the caller asked to be remembered.
func SessionTTL(remember bool) time.Duration {
	if remember {
		return rememberTTL
	}
	return sessionTTL
}

// SessionCookie builds the auth_token cookie delivered alongside a freshly
// issued token. The token is never readable by client script, travels only
// over secure transport and is not sent cross-site.
func SessionCookie(token string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	}
}

// ClearSessionCookie builds the expired cookie sent on logout.
func ClearSessionCookie() *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	}
}
