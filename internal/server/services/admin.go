package services

import (
	"context"
	"errors"
	"fmt"

	"siams/internal/dbx"
	"siams/internal/server/models"
	"siams/internal/shared"
)

// RequestAdmin moves the actor from Normal to Pending. From any other state
// it is a no-op that mutates nothing and logs nothing: an admin gets
// AlreadyAdmin, a user with an open request gets RequestPending.
func (s *AccountService) RequestAdmin(ctx context.Context, actorUsername string) error {

	user, err := s.repos.Users(s.db).GetActiveByUsername(ctx, actorUsername)
	if err != nil {
		if errors.Is(err, shared.ErrorNotFound) {
			return shared.ErrorUserNotFound
		}
		return dependency(err)
	}

	switch user.ElevationState() {
	case models.AdminStateAdmin:
		return shared.ErrorAlreadyAdmin
	case models.AdminStatePending:
		return shared.ErrorRequestPending
	}

	user.IsAdminRequested = true

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repos.Users(tx).Update(ctx, user); err != nil {
			return err
		}
		return s.appendAudit(ctx,
			tx, fmt.Sprintf("User '%s' requested admin access.", user.Username), user.Username, &user.ID)
	})
	if err != nil {
		if errors.Is(err, shared.ErrorDependencyFailure) {
			return err
		}
		return dependency(err)
	}

	s.metrics.RecordAdminDecision("requested")
	s.logger.Info(ctx, "admin access requested", "username", user.Username)

	return nil
}

// ApproveAdminRequest promotes a Pending target to Admin. The caller must
// hold the Admin role; that check is part of the contract, not left to
// routing.
func (s *AccountService) ApproveAdminRequest(ctx context.Context, adminUsername, targetUserID string) error {
	return s.decideAdminRequest(ctx, adminUsername, targetUserID, true)
}

// RejectAdminRequest clears a Pending target's request without a role
// change.
func (s *AccountService) RejectAdminRequest(ctx context.Context, adminUsername, targetUserID string) error {
	return s.decideAdminRequest(ctx, adminUsername, targetUserID, false)
}

func (s *AccountService) decideAdminRequest(ctx context.Context, adminUsername, targetUserID string, approve bool) error {

	admin, err := s.requireAdmin(ctx, adminUsername)
	if err != nil {
		return err
	}

	target, err := s.repos.Users(s.db).GetByID(ctx, targetUserID)
	if err != nil {
		if errors.Is(err, shared.ErrorNotFound) {
			return shared.ErrorUserNotFound
		}
		return dependency(err)
	}

	if target.ElevationState() != models.AdminStatePending {
		return shared.ErrorInvalidState
	}

	var action, decision string
	if approve {
		target.Role = models.RoleAdmin
		target.IsAdminRequested = false
		action = fmt.Sprintf("User '%s' was approved for admin access by '%s'.", target.Username, admin.Username)
		decision = "approved"
	} else {
		target.IsAdminRequested = false
		action = fmt.Sprintf("User '%s' was rejected for admin access by '%s'.", target.Username, admin.Username)
		decision = "rejected"
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repos.Users(tx).Update(ctx, target); err != nil {
			return err
		}
		return s.appendAudit(ctx, tx, action, admin.Username, &target.ID)
	})
	if err != nil {
		if errors.Is(err, shared.ErrorDependencyFailure) {
			return err
		}
		return dependency(err)
	}

	s.metrics.RecordAdminDecision(decision)
	s.logger.Info(ctx, "admin request decided",
		"target", target.Username, "admin", admin.Username, "decision", decision)

	return nil
}

// requireAdmin resolves the acting user and verifies the Admin role.
func (s *AccountService) requireAdmin(ctx context.Context, username string) (*models.User, error) {
	user, err := s.repos.Users(s.db).GetActiveByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, shared.ErrorNotFound) {
			return nil, shared.ErrorUnauthorized
		}
		return nil, dependency(err)
	}
	if user.Role != models.RoleAdmin {
		return nil, shared.ErrorUnauthorized
	}
	return user, nil
}
