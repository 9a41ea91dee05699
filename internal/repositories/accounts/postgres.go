// Package accounts provides the PostgreSQL-backed repository for account
// records, including the conditional balance updates the ledger relies on.
package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/revpay/internal/common"
	"github.com/dmitrijs2005/revpay/internal/dbx"
	"github.com/dmitrijs2005/revpay/internal/models"
	"github.com/shopspring/decimal"
)

// PostgresRepository implements account storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const accountColumns = `id, full_name, email, phone, account_type, business_name,
		balance, password_hash, pin_hash, failed_logins, locked, created_at`

func (r *PostgresRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	query := `
		INSERT INTO accounts (full_name, email, phone, account_type, business_name, password_hash, pin_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		account.FullName, account.Email, account.Phone, account.Type,
		account.BusinessName, account.PasswordHash, account.PINHash).
		Scan(&account.ID, &account.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("error creating account: %w", err)
	}
	account.Balance = decimal.Zero
	return account, nil
}

func (r *PostgresRepository) getByColumn(ctx context.Context, column, value string) (*models.Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM accounts WHERE %s = $1`, accountColumns, column)

	account := &models.Account{}
	var businessName sql.NullString
	err := r.db.QueryRowContext(ctx, query, value).Scan(
		&account.ID, &account.FullName, &account.Email, &account.Phone,
		&account.Type, &businessName, &account.Balance,
		&account.PasswordHash, &account.PINHash,
		&account.FailedLogins, &account.Locked, &account.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}
	account.BusinessName = businessName.String
	return account, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	return r.getByColumn(ctx, "id", id)
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	return r.getByColumn(ctx, "email", email)
}

func (r *PostgresRepository) GetByPhone(ctx context.Context, phone string) (*models.Account, error) {
	return r.getByColumn(ctx, "phone", phone)
}

// Credit adds amount to the balance. The account must exist.
func (r *PostgresRepository) Credit(ctx context.Context, id string, amount decimal.Decimal) error {
	query := `UPDATE accounts SET balance = balance + $2 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, amount)
	if err != nil {
		return fmt.Errorf("error crediting account: %w", err)
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

// Debit subtracts amount guarded by the current balance, so two concurrent
// debits cannot both pass a stale balance check.
func (r *PostgresRepository) Debit(ctx context.Context, id string, amount decimal.Decimal) error {
	query := `UPDATE accounts SET balance = balance - $2 WHERE id = $1 AND balance >= $2`
	res, err := r.db.ExecContext(ctx, query, id, amount)
	if err != nil {
		return fmt.Errorf("error debiting account: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 1 {
		return nil
	}

	// No row matched: either the account is missing or the balance is short.
	var exists bool
	err = r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("error checking account: %w", err)
	}
	if !exists {
		return common.ErrNotFound
	}
	return common.ErrInsufficientBalance
}

func (r *PostgresRepository) UpdateSecurity(ctx context.Context, account *models.Account) error {
	query := `
		UPDATE accounts
		SET password_hash = $2, pin_hash = $3, failed_logins = $4, locked = $5
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query,
		account.ID, account.PasswordHash, account.PINHash, account.FailedLogins, account.Locked)
	if err != nil {
		return fmt.Errorf("error updating account security state: %w", err)
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
