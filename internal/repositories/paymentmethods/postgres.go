// Package paymentmethods provides the PostgreSQL-backed repository for
// stored funding sources (cards and bank accounts).
package paymentmethods

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

const methodColumns = `id, account_id, method_type, encrypted_number, nonce,
		card_type, expiry_date, bank_name, is_default, created_at`

func (r *PostgresRepository) Create(ctx context.Context, pm *models.PaymentMethod) (*models.PaymentMethod, error) {
	query := `
		INSERT INTO payment_methods
			(account_id, method_type, encrypted_number, nonce, card_type, expiry_date, bank_name, is_default)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		pm.AccountID, pm.Type, pm.EncryptedNumber, pm.Nonce,
		pm.CardType, pm.ExpiryDate, pm.BankName, pm.Default).
		Scan(&pm.ID, &pm.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("error creating payment method: %w", err)
	}
	return pm, nil
}

func (r *PostgresRepository) GetByIDAndAccount(ctx context.Context, id, accountID string) (*models.PaymentMethod, error) {
	query := fmt.Sprintf(`SELECT %s FROM payment_methods WHERE id = $1 AND account_id = $2`, methodColumns)

	pm := &models.PaymentMethod{}
	err := r.db.QueryRowContext(ctx, query, id, accountID).Scan(
		&pm.ID, &pm.AccountID, &pm.Type, &pm.EncryptedNumber, &pm.Nonce,
		&pm.CardType, &pm.ExpiryDate, &pm.BankName, &pm.Default, &pm.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}
	return pm, nil
}

func (r *PostgresRepository) ListByAccount(ctx context.Context, accountID string) ([]*models.PaymentMethod, error) {
	query := fmt.Sprintf(`SELECT %s FROM payment_methods WHERE account_id = $1 ORDER BY created_at ASC`, methodColumns)

	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to select payment methods: %w", err)
	}
	defer rows.Close()

	var result []*models.PaymentMethod
	for rows.Next() {
		pm := &models.PaymentMethod{}
		if err := rows.Scan(
			&pm.ID, &pm.AccountID, &pm.Type, &pm.EncryptedNumber, &pm.Nonce,
			&pm.CardType, &pm.ExpiryDate, &pm.BankName, &pm.Default, &pm.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, pm)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM payment_methods WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting payment method: %w", err)
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

func (r *PostgresRepository) ClearDefault(ctx context.Context, accountID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE payment_methods SET is_default = false WHERE account_id = $1 AND is_default`, accountID)
	if err != nil {
		return fmt.Errorf("error clearing default payment method: %w", err)
	}
	return nil
}

func (r *PostgresRepository) MarkDefault(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE payment_methods SET is_default = true WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error marking default payment method: %w", err)
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
