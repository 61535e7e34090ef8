// Package services contains the account core's business logic: registration,
// email confirmation, login, the admin elevation state machine, and the
// admin user-management operations. Every state-changing workflow appends its
// audit entry in the same transaction as the state change, so the entry is
// durable before the workflow reports success.
package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"siams/internal/dbx"
	"siams/internal/logging"
	"siams/internal/server/config"
	"siams/internal/server/mailer"
	"siams/internal/server/metrics"
	"siams/internal/server/models"
	"siams/internal/server/passwords"
	"siams/internal/server/repositories/repomanager"
	"siams/internal/shared"
)

// AccountService provides the authentication and authorization operations:
//   - Register / ConfirmEmail: account creation and email gating
//   - Login: credential verification and session claim issuance
//   - RequestAdmin / ApproveAdminRequest / RejectAdminRequest: elevation
//   - ListUsers / UpdateUser / SoftDeleteUser / ListLogs: admin management
type AccountService struct {
	db            *sql.DB
	repos         repomanager.RepositoryManager
	hasher        *passwords.Hasher
	notifier      mailer.Notifier
	logger        logging.Logger
	metrics       *metrics.Collector
	sessionSecret []byte
	sessionTTL    time.Duration
	baseURL       string
}

// NewAccountService constructs an AccountService from its collaborators and
// the server config.
func NewAccountService(
	db *sql.DB,
	repos repomanager.RepositoryManager,
	hasher *passwords.Hasher,
	notifier mailer.Notifier,
	logger logging.Logger,
	m *metrics.Collector,
	cfg *config.Config,
) *AccountService {
	return &AccountService{
		db:            db,
		repos:         repos,
		hasher:        hasher,
		notifier:      notifier,
		logger:        logger.With("module", "accounts"),
		metrics:       m,
		sessionSecret: []byte(cfg.SessionSecret),
		sessionTTL:    cfg.SessionTTL,
		baseURL:       cfg.BaseURL,
	}
}

// appendAudit writes a single audit entry through the given handle, which
// may be the shared connection or an open transaction.
func (s *AccountService) appendAudit(ctx context.Context, db dbx.DBTX, action, performedBy string, userID *string) error {
	entry := &models.LogEntry{
		Action:      action,
		PerformedBy: performedBy,
		UserID:      userID,
	}
	if err := s.repos.AuditLog(db).Append(ctx, entry); err != nil {
		return dependency(err)
	}
	return nil
}

// auditBestEffort records failure-path entries (failed logins, rejected
// registrations). The attempt outcome is already decided, so an audit store
// outage downgrades to a warning instead of masking it.
func (s *AccountService) auditBestEffort(ctx context.Context, action, performedBy string, userID *string) {
	if err := s.appendAudit(ctx, s.db, action, performedBy, userID); err != nil {
		s.logger.Warn(ctx, "audit append failed", "action", action, "error", err.Error())
	}
}

// dependency marks an infrastructure failure so callers can distinguish it
// from the user-facing validation errors via errors.Is.
func dependency(err error) error {
	return fmt.Errorf("%w: %v", shared.ErrorDependencyFailure, err)
}
