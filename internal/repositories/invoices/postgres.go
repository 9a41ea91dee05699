// Package invoices provides the PostgreSQL-backed repository for invoices.
package invoices

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/revpay/internal/dbx"
	"github.com/dmitrijs2005/revpay/internal/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, inv *models.Invoice) (*models.Invoice, error) {
	query := `
		INSERT INTO invoices
			(business_id, transaction_id, customer_info, items, payment_terms, total_amount, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		inv.BusinessID, inv.TransactionID, inv.CustomerInfo, inv.Items,
		inv.PaymentTerms, inv.TotalAmount, inv.Status).
		Scan(&inv.ID, &inv.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("error creating invoice: %w", err)
	}
	return inv, nil
}

func (r *PostgresRepository) ListByBusiness(ctx context.Context, businessID string) ([]*models.Invoice, error) {
	query := `
		SELECT id, business_id, transaction_id, customer_info, items, payment_terms, total_amount, status, created_at
		FROM invoices WHERE business_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, businessID)
	if err != nil {
		return nil, fmt.Errorf("failed to select invoices: %w", err)
	}
	defer rows.Close()

	var result []*models.Invoice
	for rows.Next() {
		inv := &models.Invoice{}
		if err := rows.Scan(
			&inv.ID, &inv.BusinessID, &inv.TransactionID, &inv.CustomerInfo,
			&inv.Items, &inv.PaymentTerms, &inv.TotalAmount, &inv.Status, &inv.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
