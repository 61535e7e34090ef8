package auditlog

import (
	"context"
	"database/sql"
	"fmt"

	"siams/internal/dbx"
	"siams/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Append(ctx context.Context, entry *models.LogEntry) error {

	query :=
		`INSERT INTO logs (action, performed_by, user_id)
         VALUES ($1, $2, $3)
		 RETURNING id, timestamp
		 `

	err := r.db.QueryRowContext(ctx, query,
		entry.Action, entry.PerformedBy, entry.UserID).Scan(&entry.ID, &entry.Timestamp)

	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) List(ctx context.Context, limit int) ([]*models.LogEntry, error) {

	query :=
		`SELECT id, action, timestamp, performed_by, user_id FROM logs
		 ORDER BY timestamp DESC, id DESC
		 LIMIT $1
		 `

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.LogEntry
	for rows.Next() {
		entry := &models.LogEntry{}
		var userID sql.NullString
		if err := rows.Scan(&entry.ID, &entry.Action, &entry.Timestamp, &entry.PerformedBy, &userID); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if userID.Valid {
			entry.UserID = &userID.String
		}
		result = append(result, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}
