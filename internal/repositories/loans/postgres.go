// Package loans provides the PostgreSQL-backed repository for loan
// applications.
package loans

import (
	"context"
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

func (r *PostgresRepository) Create(ctx context.Context, loan *models.Loan) (*models.Loan, error) {
	query := `
		INSERT INTO loans (account_id, amount, purpose, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query, loan.AccountID, loan.Amount, loan.Purpose, loan.Status).
		Scan(&loan.ID, &loan.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("error creating loan application: %w", err)
	}
	return loan, nil
}

func (r *PostgresRepository) ListByAccount(ctx context.Context, accountID string) ([]*models.Loan, error) {
	query := `
		SELECT id, account_id, amount, purpose, status, created_at
		FROM loans WHERE account_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to select loans: %w", err)
	}
	defer rows.Close()

	var result []*models.Loan
	for rows.Next() {
		loan := &models.Loan{}
		if err := rows.Scan(&loan.ID, &loan.AccountID, &loan.Amount, &loan.Purpose, &loan.Status, &loan.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, loan)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, id string, status models.LoanStatus) error {
	res, err := r.db.ExecContext(ctx, `UPDATE loans SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("error updating loan status: %w", err)
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
