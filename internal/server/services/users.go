package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"siams/internal/dbx"
	"siams/internal/server/models"
	"siams/internal/shared"
)

// ListUsers returns all non-deleted users for the admin overview.
func (s *AccountService) ListUsers(ctx context.Context, adminUsername string) ([]*models.User, error) {
	if _, err := s.requireAdmin(ctx, adminUsername); err != nil {
		return nil, err
	}

	list, err := s.repos.Users(s.db).List(ctx)
	if err != nil {
		return nil, dependency(err)
	}
	return list, nil
}

// UserUpdate carries the fields an admin may rewrite on a user record.
type UserUpdate struct {
	Username string
	Email    string
	Role     models.Role
}

// UpdateUser rewrites a user's username, email, and role. Renames run
// through the same case-insensitive uniqueness checks as registration.
func (s *AccountService) UpdateUser(ctx context.Context, adminUsername, targetUserID string, update UserUpdate) error {

	admin, err := s.requireAdmin(ctx, adminUsername)
	if err != nil {
		return err
	}

	if update.Username == "" || len(update.Username) > maxUsernameLength || update.Email == "" {
		return shared.ErrorInvalidRequest
	}
	if _, err := models.ParseRole(string(update.Role)); err != nil {
		return shared.ErrorInvalidRequest
	}

	target, err := s.repos.Users(s.db).GetByID(ctx, targetUserID)
	if err != nil {
		if errors.Is(err, shared.ErrorNotFound) {
			return shared.ErrorUserNotFound
		}
		return dependency(err)
	}

	if !strings.EqualFold(update.Username, target.Username) {
		if err := s.checkUsernameFree(ctx, update.Username); err != nil {
			return err
		}
	}
	if !strings.EqualFold(update.Email, target.Email) {
		if err := s.checkEmailFree(ctx, update.Email); err != nil {
			return err
		}
	}

	target.Username = update.Username
	target.Email = update.Email
	target.Role = update.Role
	if target.Role == models.RoleAdmin {
		// an admin cannot simultaneously have a pending request
		target.IsAdminRequested = false
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repos.Users(tx).Update(ctx, target); err != nil {
			return err
		}
		return s.appendAudit(ctx,
			tx, fmt.Sprintf("User '%s' updated by '%s'.", target.Username, admin.Username), admin.Username, &target.ID)
	})
	if err != nil {
		if errors.Is(err, shared.ErrorUsernameTaken) || errors.Is(err, shared.ErrorEmailTaken) {
			return err
		}
		if errors.Is(err, shared.ErrorDependencyFailure) {
			return err
		}
		return dependency(err)
	}

	s.logger.Info(ctx, "user updated", "target", target.Username, "admin", admin.Username)

	return nil
}

// SoftDeleteUser marks a user deleted. The row is retained so audit entries
// keep a subject, and the username/email stay reserved. Deleting an already
// deleted user is InvalidState.
func (s *AccountService) SoftDeleteUser(ctx context.Context, adminUsername, targetUserID string) error {

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

	if target.IsDeleted {
		return shared.ErrorInvalidState
	}

	target.IsDeleted = true

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repos.Users(tx).Update(ctx, target); err != nil {
			return err
		}
		return s.appendAudit(ctx,
			tx, fmt.Sprintf("User '%s' deleted by '%s'.", target.Username, admin.Username), admin.Username, &target.ID)
	})
	if err != nil {
		if errors.Is(err, shared.ErrorDependencyFailure) {
			return err
		}
		return dependency(err)
	}

	s.logger.Info(ctx, "user soft-deleted", "target", target.Username, "admin", admin.Username)

	return nil
}

// ListLogs returns the newest audit entries for the admin review screen.
func (s *AccountService) ListLogs(ctx context.Context, adminUsername string, limit int) ([]*models.LogEntry, error) {
	if _, err := s.requireAdmin(ctx, adminUsername); err != nil {
		return nil, err
	}

	if limit <= 0 || limit > 500 {
		limit = 100
	}

	entries, err := s.repos.AuditLog(s.db).List(ctx, limit)
	if err != nil {
		return nil, dependency(err)
	}
	return entries, nil
}
