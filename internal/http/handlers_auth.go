package http

import (
	"errors"
	"log/slog"
	"net/http"

	"floatdesk/internal/auth"
	"floatdesk/internal/core"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Token    string `json:"token"`
}

// handleLogin exchanges credentials for a session token. The token travels
// both ways: as an HttpOnly cookie for the browser and in the body for
// bearer clients. A failed login sets no cookie.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	token, session, err := s.auth.Issue(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, core.ErrInvalidCredentials) {
			slog.WarnContext(r.Context(), "Login rejected", "username", req.Username)
			respondErrorMessage(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		respondError(w, r, err)
		return
	}

	auth.SetTokenCookie(w, token, s.auth.TTL())
	slog.InfoContext(r.Context(), "Login succeeded", "username", session.Username)
	respondJSON(w, http.StatusOK, loginResponse{
		ID:       session.ID,
		Username: session.Username,
		Role:     session.Role,
		Token:    token,
	})
}

// handleValidate reports whether the presented credential is currently
// valid. It is allow-listed, so it checks the token itself and always
// answers JSON, never a redirect.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	token, ok := auth.TokenFromRequest(r)
	if !ok {
		respondErrorMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	session, err := s.auth.Verify(token)
	if err != nil {
		respondErrorMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	respondJSON(w, http.StatusOK, session)
}

// handleLogout clears the client-held cookie. The token itself stays valid
// until expiry; there is no server-side revocation.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	auth.ClearTokenCookie(w)
	respondJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	if s.templates == nil {
		http.Error(w, "templates unavailable", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, "login.html", nil); err != nil {
		slog.ErrorContext(r.Context(), "Failed rendering login page", "error", err)
	}
}
