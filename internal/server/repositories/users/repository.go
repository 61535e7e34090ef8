// Package users persists User records. The store is the single source of
// truth for username/email uniqueness: pre-checks in the workflows are
// advisory, the unique indexes decide concurrent races.
package users

import (
	"context"

	"siams/internal/server/models"
)

type Repository interface {
	// Create inserts a new user. A username/email unique violation comes
	// back as shared.ErrorUsernameTaken / shared.ErrorEmailTaken.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetByID returns a user regardless of deletion state.
	GetByID(ctx context.Context, id string) (*models.User, error)

	// GetByUsername matches case-insensitively across all rows, including
	// soft-deleted ones. Used for uniqueness checks.
	GetByUsername(ctx context.Context, username string) (*models.User, error)

	// GetByEmail matches case-insensitively across all rows, including
	// soft-deleted ones. Used for uniqueness checks.
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// GetActiveByUsername matches the exact username and excludes
	// soft-deleted rows. Used by login so deleted accounts are
	// indistinguishable from absent ones.
	GetActiveByUsername(ctx context.Context, username string) (*models.User, error)

	// GetByEmailAndToken matches a user with an outstanding confirmation
	// token. A consumed token no longer matches anything.
	GetByEmailAndToken(ctx context.Context, email, token string) (*models.User, error)

	// Update rewrites the mutable fields of an existing user. Unique
	// violations map the same way as Create.
	Update(ctx context.Context, user *models.User) error

	// List returns all non-deleted users ordered by username.
	List(ctx context.Context) ([]*models.User, error)
}
