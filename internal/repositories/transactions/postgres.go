// Package transactions provides the PostgreSQL-backed repository for
// transaction records, including the conditional settlement update that
// makes request settlement single-winner.
package transactions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/revpay/internal/common"
	"github.com/dmitrijs2005/revpay/internal/dbx"
	"github.com/dmitrijs2005/revpay/internal/models"
)

// PostgresRepository implements transaction storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, tx *models.Transaction) (*models.Transaction, error) {
	query := `
		INSERT INTO transactions (sender_id, receiver_id, amount, tx_type, status, note)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	receiver := sql.NullString{String: tx.ReceiverID, Valid: tx.ReceiverID != ""}
	err := r.db.QueryRowContext(ctx, query,
		tx.SenderID, receiver, tx.Amount, tx.Type, tx.Status, tx.Note).
		Scan(&tx.ID, &tx.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("error creating transaction: %w", err)
	}
	return tx, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Transaction, error) {
	query := `
		SELECT id, sender_id, receiver_id, amount, tx_type, status, note, created_at
		FROM transactions WHERE id = $1
	`
	tx := &models.Transaction{}
	var receiver sql.NullString
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&tx.ID, &tx.SenderID, &receiver, &tx.Amount, &tx.Type, &tx.Status, &tx.Note, &tx.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}
	tx.ReceiverID = receiver.String
	return tx, nil
}

// Settle flips the record out of PENDING exactly once. Whoever's update
// matches first wins; everyone else gets ErrAlreadyProcessed.
func (r *PostgresRepository) Settle(ctx context.Context, id string, status models.TransactionStatus, txType models.TransactionType) error {
	query := `
		UPDATE transactions SET status = $2, tx_type = $3
		WHERE id = $1 AND status = 'PENDING'
	`
	res, err := r.db.ExecContext(ctx, query, id, status, txType)
	if err != nil {
		return fmt.Errorf("error settling transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrAlreadyProcessed
	}
	return nil
}

func (r *PostgresRepository) ListPendingRequests(ctx context.Context, payerID string) ([]*models.Transaction, error) {
	query := `
		SELECT id, sender_id, receiver_id, amount, tx_type, status, note, created_at
		FROM transactions
		WHERE receiver_id = $1 AND tx_type = 'REQUEST' AND status = 'PENDING'
		ORDER BY created_at ASC
	`
	rows, err := r.db.QueryContext(ctx, query, payerID)
	if err != nil {
		return nil, fmt.Errorf("failed to select pending requests: %w", err)
	}
	defer rows.Close()

	var result []*models.Transaction
	for rows.Next() {
		item := &models.Transaction{}
		var receiver sql.NullString
		if err := rows.Scan(
			&item.ID, &item.SenderID, &receiver, &item.Amount,
			&item.Type, &item.Status, &item.Note, &item.CreatedAt,
		); err != nil {
			return nil, err
		}
		item.ReceiverID = receiver.String
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) ListByParticipant(ctx context.Context, accountID string) ([]*models.Transaction, error) {
	query := `
		SELECT t.id, t.sender_id, t.receiver_id, t.amount, t.tx_type, t.status, t.note, t.created_at,
		       s.email, COALESCE(r.email, '')
		FROM transactions t
		JOIN accounts s ON s.id = t.sender_id
		LEFT JOIN accounts r ON r.id = t.receiver_id
		WHERE t.sender_id = $1 OR t.receiver_id = $1
		ORDER BY t.created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to select transactions: %w", err)
	}
	defer rows.Close()

	var result []*models.Transaction
	for rows.Next() {
		item := &models.Transaction{}
		var receiver sql.NullString
		if err := rows.Scan(
			&item.ID, &item.SenderID, &receiver, &item.Amount,
			&item.Type, &item.Status, &item.Note, &item.CreatedAt,
			&item.SenderEmail, &item.ReceiverEmail,
		); err != nil {
			return nil, err
		}
		item.ReceiverID = receiver.String
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
