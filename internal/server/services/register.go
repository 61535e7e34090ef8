package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"siams/internal/dbx"
	"siams/internal/randx"
	"siams/internal/server/mailer"
	"siams/internal/server/models"
	"siams/internal/server/passwords"
	"siams/internal/shared"
)

// confirmationTokenBytes sized for 128 bits of entropy.
const confirmationTokenBytes = 16

const maxUsernameLength = 50

// RegistrationResult reports a completed registration. EmailSent is false
// when the user row was committed but the confirmation mail could not be
// delivered; the account exists and the mail can be resent.
type RegistrationResult struct {
	User      *models.User
	EmailSent bool
}

// Register creates a new unconfirmed account. Checks run in a fixed order
// and the first failing one wins, with no side effects beyond the audit
// entry recording the rejected attempt. The new user is never auto-logged-in.
func (s *AccountService) Register(ctx context.Context, username, password, email string) (*RegistrationResult, error) {

	if username == "" || len(username) > maxUsernameLength || email == "" {
		return nil, shared.ErrorInvalidRequest
	}

	if err := passwords.ValidatePolicy(password); err != nil {
		s.metrics.RecordRegistrationFailure("weak_password")
		s.auditBestEffort(ctx,
			fmt.Sprintf("Failed registration attempt for username '%s' / email '%s': weak password.", username, email),
			username, nil)
		return nil, err
	}

	if err := s.checkUsernameFree(ctx, username); err != nil {
		if errors.Is(err, shared.ErrorUsernameTaken) {
			s.metrics.RecordRegistrationFailure("username_taken")
			s.auditBestEffort(ctx,
				fmt.Sprintf("Failed registration attempt for username '%s' / email '%s': username already exists.", username, email),
				username, nil)
		}
		return nil, err
	}

	if err := s.checkEmailFree(ctx, email); err != nil {
		if errors.Is(err, shared.ErrorEmailTaken) {
			s.metrics.RecordRegistrationFailure("email_taken")
			s.auditBestEffort(ctx,
				fmt.Sprintf("Failed registration attempt for username '%s' / email '%s': email already exists.", username, email),
				username, nil)
		}
		return nil, err
	}

	token, err := randx.MakeRandHexString(confirmationTokenBytes)
	if err != nil {
		return nil, dependency(err)
	}

	hash, salt, err := s.hasher.Hash(password)
	if err != nil {
		return nil, dependency(err)
	}

	user := &models.User{
		ID:                     uuid.New().String(),
		Username:               username,
		Email:                  email,
		PasswordHash:           hash,
		Salt:                   salt,
		Role:                   models.RoleUser,
		IsEmailConfirmed:       false,
		EmailConfirmationToken: &token,
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repos.Users(tx).Create(ctx, user); err != nil {
			return err
		}
		return s.appendAudit(ctx,
			tx, fmt.Sprintf("User '%s' registered.", username), username, &user.ID)
	})
	if err != nil {
		// The unique indexes decide concurrent races: a loser surfaces here
		// as a taken error even though the pre-check passed.
		if errors.Is(err, shared.ErrorUsernameTaken) || errors.Is(err, shared.ErrorEmailTaken) {
			s.metrics.RecordRegistrationFailure("lost_race")
			return nil, err
		}
		if errors.Is(err, shared.ErrorDependencyFailure) {
			return nil, err
		}
		return nil, dependency(err)
	}

	s.metrics.RecordRegistration()
	s.logger.Info(ctx, "user registered", "username", username)

	result := &RegistrationResult{User: user, EmailSent: true}

	subject, body := mailer.ConfirmationEmail(s.baseURL, email, token)
	if err := s.notifier.Send(ctx, email, subject, body); err != nil {
		// The account is committed; a failed mail is recoverable by resend.
		s.logger.Warn(ctx, "confirmation email failed", "username", username, "error", err.Error())
		result.EmailSent = false
	}

	return result, nil
}

func (s *AccountService) checkUsernameFree(ctx context.Context, username string) error {
	_, err := s.repos.Users(s.db).GetByUsername(ctx, username)
	if err == nil {
		return shared.ErrorUsernameTaken
	}
	if errors.Is(err, shared.ErrorNotFound) {
		return nil
	}
	return dependency(err)
}

func (s *AccountService) checkEmailFree(ctx context.Context, email string) error {
	_, err := s.repos.Users(s.db).GetByEmail(ctx, email)
	if err == nil {
		return shared.ErrorEmailTaken
	}
	if errors.Is(err, shared.ErrorNotFound) {
		return nil
	}
	return dependency(err)
}
