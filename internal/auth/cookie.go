package auth

import (
	"net/http"
	"strings"
	"time"
)

// TokenCookieName is the cookie that carries the credential for browser
// callers. Non-browser callers use an Authorization bearer header instead.
const TokenCookieName = "token"

// SetTokenCookie attaches the credential to the response as an HTTP-only,
// same-site, path-scoped cookie whose max-age matches the credential TTL.
// Client script cannot read it.
func SetTokenCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearTokenCookie deletes the client-held credential. The token itself
// stays cryptographically valid until expiry; this is advisory logout, not
// revocation.
func ClearTokenCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// TokenFromRequest extracts the raw credential from the token cookie or an
// Authorization bearer header. Both paths must work: page loads carry the
// cookie, report and export callers send the header.
func TokenFromRequest(r *http.Request) (string, bool) {
	if c, err := r.Cookie(TokenCookieName); err == nil && c.Value != "" {
		return c.Value, true
	}
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		if token := strings.TrimSpace(header[len("Bearer "):]); token != "" {
			return token, true
		}
	}
	return "", false
}
