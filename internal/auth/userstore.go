package auth

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"floatdesk/internal/core"
)

// StaticUserStore holds a single in-memory account. It backs the memory
// data backend and keeps the single-admin placeholder policy explicit
// without baking the credential comparison into the authenticator, so a
// database-backed store can replace it without redesign.
type StaticUserStore struct {
	user User
}

// NewStaticUserStore hashes the given password and stores one admin
// account under it.
func NewStaticUserStore(username, password string) (*StaticUserStore, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}
	return &StaticUserStore{
		user: User{
			ID:           "1",
			Username:     username,
			PasswordHash: string(hash),
			Role:         core.RoleAdmin,
		},
	}, nil
}

func (s *StaticUserStore) Lookup(ctx context.Context, username string) (User, error) {
	if username != s.user.Username {
		return User{}, core.ErrNotFound
	}
	return s.user, nil
}
