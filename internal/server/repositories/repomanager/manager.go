// Package repomanager constructs the repositories over a shared database
// handle and owns schema migration at startup.
package repomanager

import (
	"context"
	"database/sql"

	"siams/internal/dbx"
	"siams/internal/server/repositories/auditlog"
	"siams/internal/server/repositories/users"
)

// RepositoryManager hands out repositories bound to an arbitrary dbx.DBTX,
// so a workflow can run several writes against one transaction handle.
type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	Conn() *sql.DB
	Users(db dbx.DBTX) users.Repository
	AuditLog(db dbx.DBTX) auditlog.Repository
}
