// Package http is the API surface: JSON endpoints for the ledger streams
// behind the auth gate, the login page, and health probes.
package http

import (
	"context"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"

	"floatdesk/internal/auth"
	"floatdesk/internal/ledger"
	applog "floatdesk/internal/log"
	appweb "floatdesk/web"
)

type Server struct {
	http.Server
	templates   *template.Template
	auth        *auth.Authenticator
	ledger      *ledger.Service
	rateLimiter *rateLimiter

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run
// http.Server. Every route except the allow-listed ones sits behind the
// auth gate.
func NewServer(addr string, authn *auth.Authenticator, svc *ledger.Service) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr: addr,
		},
		auth:        authn,
		ledger:      svc,
		rateLimiter: newRateLimiter(),
	}
	s.Server.Handler = authn.Gate(mux)

	// Parse embedded templates at startup.
	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		slog.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600, immutable")
			static.ServeHTTP(w, r)
		}))
	} else {
		slog.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/login", s.withSecurityHeaders(s.handleLoginPage))
	mux.HandleFunc("/auth/login", s.withSecurityHeaders(s.handleLogin))
	mux.HandleFunc("/auth/validate", s.withSecurityHeaders(s.handleValidate))
	mux.HandleFunc("/auth/logout", s.withSecurityHeaders(s.handleLogout))

	mux.HandleFunc("/balances", s.withSecurityHeaders(s.handleBalances))
	mux.HandleFunc("/cash", s.withSecurityHeaders(s.handleCash))
	mux.HandleFunc("/debts", s.withSecurityHeaders(s.handleDebts))
	mux.HandleFunc("/debts/", s.withSecurityHeaders(s.handleSettleDebt))
	mux.HandleFunc("/incomes", s.withSecurityHeaders(s.handleIncomes))
	mux.HandleFunc("/commissions", s.withSecurityHeaders(s.handleCommissions))
	mux.HandleFunc("/dashboard/stats", s.withSecurityHeaders(s.handleDashboardStats))
	mux.HandleFunc("/", s.withSecurityHeaders(s.handleIndex))

	return s
}

// withSecurityHeaders sets defensive response headers and applies the
// per-IP rate limit to mutating requests.
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "no-referrer")

		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			if !s.rateLimiter.allow(clientIP(r)) {
				slog.WarnContext(r.Context(), "Rate limit exceeded",
					applog.FieldClientIP, clientIP(r),
					applog.FieldPath, r.URL.Path)
				respondErrorMessage(w, http.StatusTooManyRequests, "Too many requests")
				return
			}
		}

		next(w, r)
	}
}

// Shutdown stops the rate limiter cleanup goroutine and the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
