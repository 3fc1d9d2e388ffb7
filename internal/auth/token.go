package auth

import (
	"net/http"
	"strings"
	"time"
)

// CookieName is the cookie carrying the access token.
const CookieName = "access_token"

const bearerScheme = "bearer"

// ExtractAccessToken reads the token from the auth cookie, falling back to an
// "Authorization: Bearer" header. The scheme is matched case-insensitively.
func ExtractAccessToken(r *http.Request) string {
	if cookie, err := r.Cookie(CookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	scheme, token, ok := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " ")
	if !ok || !strings.EqualFold(scheme, bearerScheme) {
		return ""
	}
	return strings.TrimSpace(token)
}

// TokenCookie builds the HttpOnly cookie handed out on signup and login.
func TokenCookie(token string, ttl time.Duration, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ExpiredCookie clears the auth cookie on logout or account deletion.
func ExpiredCookie(secure bool) *http.Cookie {
	c := TokenCookie("", 0, secure)
	c.MaxAge = -1
	return c
}
