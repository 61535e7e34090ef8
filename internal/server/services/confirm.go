package services

import (
	"context"
	"errors"
	"fmt"

	"siams/internal/dbx"
	"siams/internal/shared"
)

// ConfirmEmail consumes an outstanding confirmation token. The token is
// cleared on success, so replaying the same token fails with UserNotFound —
// the operation is naturally safe against replay.
func (s *AccountService) ConfirmEmail(ctx context.Context, token, email string) error {

	if token == "" || email == "" {
		return shared.ErrorInvalidRequest
	}

	user, err := s.repos.Users(s.db).GetByEmailAndToken(ctx, email, token)
	if err != nil {
		if errors.Is(err, shared.ErrorNotFound) {
			return shared.ErrorUserNotFound
		}
		return dependency(err)
	}

	user.IsEmailConfirmed = true
	user.EmailConfirmationToken = nil

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repos.Users(tx).Update(ctx, user); err != nil {
			return err
		}
		return s.appendAudit(ctx,
			tx, fmt.Sprintf("User '%s' confirmed their email address.", user.Username), user.Username, &user.ID)
	})
	if err != nil {
		if errors.Is(err, shared.ErrorDependencyFailure) {
			return err
		}
		return dependency(err)
	}

	s.metrics.RecordConfirmation()
	s.logger.Info(ctx, "email confirmed", "username", user.Username)

	return nil
}
