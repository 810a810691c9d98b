package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
)

type sessionContextKey struct{}

// SessionFrom returns the verified session attached by the gate, if any.
func SessionFrom(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionContextKey{}).(Session)
	return s, ok
}

// WithSession returns a context carrying the given session. Exposed for
// handler tests.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, s)
}

// LoginPath is where unauthenticated page navigations are redirected.
const LoginPath = "/login"

// allowList holds paths that bypass verification entirely: the login
// endpoint, the token-validation endpoint, the login page, health probes,
// and static assets. Entries ending in "/" match by prefix.
var allowList = []string{
	"/auth/login",
	"/auth/validate",
	LoginPath,
	"/healthz",
	"/readyz",
	"/static/",
}

func allowListed(path string) bool {
	for _, p := range allowList {
		if strings.HasSuffix(p, "/") {
			if strings.HasPrefix(path, p) {
				return true
			}
		} else if path == p {
			return true
		}
	}
	return false
}

// Gate is the request interceptor run before every protected handler.
// Allow-listed paths pass through untouched. Everything else needs a
// syntactically present token that verifies; on failure, page navigations
// get a redirect to the login page (clearing a stale cookie when one was
// presented) while API callers get a bare 401 body.
func (a *Authenticator) Gate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if allowListed(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		token, present := TokenFromRequest(r)
		if !present {
			rejectRequest(w, r, false)
			return
		}

		session, err := a.Verify(token)
		if err != nil {
			slog.WarnContext(r.Context(), "Credential rejected",
				"path", r.URL.Path,
				"method", r.Method)
			rejectRequest(w, r, true)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
	})
}

// rejectRequest applies the dual failure behavior: redirect for page
// navigations, JSON 401 for API calls.
func rejectRequest(w http.ResponseWriter, r *http.Request, tokenPresented bool) {
	if wantsHTML(r) {
		if tokenPresented {
			ClearTokenCookie(w)
		}
		http.Redirect(w, r, LoginPath, http.StatusSeeOther)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "Unauthorized"})
}

// wantsHTML distinguishes browser page navigation from JSON API calls.
func wantsHTML(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "text/html") && !strings.Contains(accept, "application/json")
}
