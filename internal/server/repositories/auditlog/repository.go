// Package auditlog persists the append-only audit trail. Entries are created
// once and never updated or deleted; List exists only for the admin review
// screen, never for authorization decisions.
package auditlog

import (
	"context"

	"siams/internal/server/models"
)

type Repository interface {
	// Append inserts an entry and fills in its ID and timestamp.
	Append(ctx context.Context, entry *models.LogEntry) error

	// List returns up to limit entries, newest first.
	List(ctx context.Context, limit int) ([]*models.LogEntry, error)
}
