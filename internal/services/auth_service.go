package services

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"vinylhub/internal/domain"
	"vinylhub/internal/repos"
)

var ErrMissingCredentials = errors.New("username and password are required")

type AuthService struct {
	Users *repos.UserRepo
}

func NewAuthService(users *repos.UserRepo) *AuthService { return &AuthService{Users: users} }

// Login matches the username case-insensitively and the password exactly.
// Passwords stored as bcrypt hashes by the maintenance commands are compared as hashes.
func (s *AuthService) Login(ctx context.Context, username, password string) (domain.SessionUser, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	password = strings.TrimSpace(password)
	if username == "" || password == "" {
		return domain.SessionUser{}, ErrMissingCredentials
	}
	users, err := s.Users.ByUsername(ctx, username)
	if err != nil {
		return domain.SessionUser{}, err
	}
	for _, u := range users {
		if passwordMatches(u.Password, password) {
			return domain.SessionUser{ID: u.ID, Username: u.Username}, nil
		}
	}
	return domain.SessionUser{}, domain.ErrBadCredentials
}

// Register stores a new user with the password as typed.
func (s *AuthService) Register(ctx context.Context, username, password string) (domain.SessionUser, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return domain.SessionUser{}, ErrMissingCredentials
	}
	u, err := s.Users.Create(ctx, username, password)
	if err != nil {
		return domain.SessionUser{}, err
	}
	return domain.SessionUser{ID: u.ID, Username: u.Username}, nil
}

// IsBcryptHash reports whether stored looks like a bcrypt hash ($2a$, $2b$ or $2y$, 60 bytes).
func IsBcryptHash(stored string) bool {
	if len(stored) != 60 {
		return false
	}
	switch stored[:4] {
	case "$2a$", "$2b$", "$2y$":
		return true
	}
	return false
}

func passwordMatches(stored, given string) bool {
	if IsBcryptHash(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(given)) == nil
	}
	return stored == given
}
