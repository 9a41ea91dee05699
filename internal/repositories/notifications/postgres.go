// Package notifications provides the PostgreSQL-backed repository for
// notification records and the per-account preference record.
package notifications

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/revpay/internal/common"
	"github.com/dmitrijs2005/revpay/internal/dbx"
	"github.com/dmitrijs2005/revpay/internal/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, n *models.Notification) (*models.Notification, error) {
	query := `
		INSERT INTO notifications (account_id, notification_type, message, read)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query, n.AccountID, n.Type, n.Message, n.Read).
		Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("error creating notification: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Notification, error) {
	query := `
		SELECT id, account_id, notification_type, message, read, created_at
		FROM notifications WHERE id = $1
	`
	n := &models.Notification{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&n.ID, &n.AccountID, &n.Type, &n.Message, &n.Read, &n.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) ListByAccount(ctx context.Context, accountID string, onlyUnread bool) ([]*models.Notification, error) {
	query := `
		SELECT id, account_id, notification_type, message, read, created_at
		FROM notifications
		WHERE account_id = $1 AND notification_type <> 'PREFERENCE' AND ($2 = false OR read = false)
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, accountID, onlyUnread)
	if err != nil {
		return nil, fmt.Errorf("failed to select notifications: %w", err)
	}
	defer rows.Close()

	var result []*models.Notification
	for rows.Next() {
		n := &models.Notification{}
		if err := rows.Scan(&n.ID, &n.AccountID, &n.Type, &n.Message, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) SetRead(ctx context.Context, id string, read bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE notifications SET read = $2 WHERE id = $1`, id, read)
	if err != nil {
		return fmt.Errorf("error updating notification: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) GetPreference(ctx context.Context, accountID string) (*models.Notification, error) {
	query := `
		SELECT id, account_id, notification_type, message, read, created_at
		FROM notifications
		WHERE account_id = $1 AND notification_type = 'PREFERENCE'
	`
	n := &models.Notification{}
	err := r.db.QueryRowContext(ctx, query, accountID).
		Scan(&n.ID, &n.AccountID, &n.Type, &n.Message, &n.Read, &n.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) UpsertPreference(ctx context.Context, accountID, message string) error {
	query := `
		INSERT INTO notifications (account_id, notification_type, message, read)
		VALUES ($1, 'PREFERENCE', $2, true)
		ON CONFLICT (account_id, notification_type) WHERE notification_type = 'PREFERENCE'
		DO UPDATE SET message = EXCLUDED.message
	`
	if _, err := r.db.ExecContext(ctx, query, accountID, message); err != nil {
		return fmt.Errorf("error saving notification preferences: %w", err)
	}
	return nil
}
