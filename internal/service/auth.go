// Authentication business logic.

package service

import (
	"context"
	"log/slog"

	"github.com/smorgan/blog-api/internal/apperror"
	"github.com/smorgan/blog-api/internal/auth"
)

// AdminCredentials is the single configured login. The password arrives as
// a bcrypt hash from the environment, so there is no literal credential in
// the codebase, and rotating it is a config change plus restart.
type AdminCredentials struct {
	Username     string
	PasswordHash string
}

// Enabled reports whether a usable credential was configured. When false,
// Login always fails and the server has effectively no writable surface.
func (c AdminCredentials) Enabled() bool {
	return c.Username != "" && c.PasswordHash != ""
}

// AuthService verifies the admin credential and issues bearer tokens.
//
// This is a single-operator API: there is one subject, and any token it
// holds grants full access to the protected routes. Claims still carry the
// subject so per-route checks can be added without changing the token
// format.
type AuthService struct {
	creds     AdminCredentials
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
func NewAuthService(
	creds AdminCredentials,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		creds:     creds,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// Login checks the username/password pair against the configured credential
// and returns a signed token on success.
//
// Every failure (unknown username, wrong password, login disabled) returns
// the same apperror.ErrUnauthorized so the response doesn't reveal which
// part was wrong. The bcrypt compare runs in constant time.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	if !s.creds.Enabled() {
		s.logger.Warn("login attempted but no admin credential is configured")
		return "", apperror.Unauthorized("invalid credentials")
	}
	if username != s.creds.Username {
		s.logger.Warn("login rejected: unknown username", slog.String("username", username))
		return "", apperror.Unauthorized("invalid credentials")
	}
	if err := s.passwords.Verify(s.creds.PasswordHash, password); err != nil {
		s.logger.Warn("login rejected: wrong password", slog.String("username", username))
		return "", apperror.Unauthorized("invalid credentials")
	}

	token, err := s.tokens.Issue(username)
	if err != nil {
		s.logger.Error("failed to issue token", slog.String("error", err.Error()))
		return "", err
	}

	s.logger.Info("login succeeded", slog.String("username", username))
	return token, nil
}
