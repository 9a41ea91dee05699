package invoices

import (
	"context"

	"github.com/dmitrijs2005/revpay/internal/models"
)

// Repository is the persistent store contract for invoices.
type Repository interface {
	Create(ctx context.Context, inv *models.Invoice) (*models.Invoice, error)
	ListByBusiness(ctx context.Context, businessID string) ([]*models.Invoice, error)
}
