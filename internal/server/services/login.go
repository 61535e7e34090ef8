package services

import (
	"context"
	"errors"
	"fmt"

	"siams/internal/server/auth"
	"siams/internal/server/models"
	"siams/internal/shared"
)

// Session is the artifact of a successful login: the signed claim token plus
// the claims themselves for the caller's convenience.
type Session struct {
	Token    string
	Username string
	Role     models.Role
}

// Login verifies the credentials and gating flags and issues a session.
// A missing user, a soft-deleted user, and a wrong password all fail with
// the same InvalidCredentials so nothing about account existence leaks.
// An unconfirmed email fails distinctly with EmailNotConfirmed — at that
// point the credential check has already passed.
func (s *AccountService) Login(ctx context.Context, username, password string) (*Session, error) {

	user, err := s.repos.Users(s.db).GetActiveByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, shared.ErrorNotFound) {
			s.recordFailedLogin(ctx, username, nil)
			return nil, shared.ErrorInvalidCredentials
		}
		return nil, dependency(err)
	}

	if !s.hasher.Verify(password, user.Salt, user.PasswordHash) {
		s.recordFailedLogin(ctx, username, &user.ID)
		return nil, shared.ErrorInvalidCredentials
	}

	if !user.IsEmailConfirmed {
		s.metrics.RecordLoginFailure("email_not_confirmed")
		return nil, shared.ErrorEmailNotConfirmed
	}

	token, err := auth.GenerateToken(user.Username, user.Role, s.sessionSecret, s.sessionTTL)
	if err != nil {
		return nil, dependency(err)
	}

	s.metrics.RecordLogin()
	s.logger.Info(ctx, "user logged in", "username", user.Username, "role", string(user.Role))

	return &Session{Token: token, Username: user.Username, Role: user.Role}, nil
}

// recordFailedLogin keeps brute-force attempts visible without gating the
// response on the audit store.
func (s *AccountService) recordFailedLogin(ctx context.Context, username string, userID *string) {
	s.metrics.RecordLoginFailure("invalid_credentials")
	s.auditBestEffort(ctx,
		fmt.Sprintf("Failed login attempt for username '%s'.", username), username, userID)
}
