// Package auth implements the stateless session credential: a signed,
// time-bounded token issued at login and verified on every protected
// request. There is no server-side session state; logout is advisory and
// only clears the client-held cookie.
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"floatdesk/internal/core"
)

// User is a stored account with a bcrypt password hash.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	Role         string
}

// Session is the decoded credential payload attached to a request after
// verification. Read-only for the duration of one request.
type Session struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Claims is the signed token payload.
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// UserStore looks up accounts by username. Implementations return
// core.ErrNotFound for unknown usernames.
type UserStore interface {
	Lookup(ctx context.Context, username string) (User, error)
}

// Authenticator issues and verifies credentials with a symmetric HMAC secret.
type Authenticator struct {
	secret []byte
	ttl    time.Duration
	users  UserStore
}

func NewAuthenticator(secret string, ttl time.Duration, users UserStore) *Authenticator {
	return &Authenticator{
		secret: []byte(secret),
		ttl:    ttl,
		users:  users,
	}
}

// TTL returns the credential lifetime, which also bounds the cookie max-age.
func (a *Authenticator) TTL() time.Duration {
	return a.ttl
}

// Issue validates the username/password pair against the user store and
// returns a signed token plus the session it encodes. Every failure mode
// (unknown user, wrong password, store error) collapses into
// core.ErrInvalidCredentials so callers learn nothing about which part
// failed.
func (a *Authenticator) Issue(ctx context.Context, username, password string) (string, Session, error) {
	user, err := a.users.Lookup(ctx, username)
	if err != nil {
		return "", Session{}, core.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", Session{}, core.ErrInvalidCredentials
	}

	now := time.Now()
	claims := &Claims{
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", Session{}, fmt.Errorf("sign credential: %w", err)
	}

	return token, Session{ID: user.ID, Username: user.Username, Role: user.Role}, nil
}

// Verify checks signature and expiry and returns the decoded session. Any
// failure (bad signature, expired, malformed payload, missing required
// fields) is reported uniformly as core.ErrUnauthorized to avoid oracle
// leakage.
func (a *Authenticator) Verify(rawToken string) (Session, error) {
	token, err := jwt.ParseWithClaims(rawToken, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return Session{}, core.ErrUnauthorized
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return Session{}, core.ErrUnauthorized
	}
	if claims.Subject == "" || claims.Username == "" || claims.Role == "" {
		return Session{}, core.ErrUnauthorized
	}

	return Session{ID: claims.Subject, Username: claims.Username, Role: claims.Role}, nil
}
