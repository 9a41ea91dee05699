package paymentmethods

import (
	"context"

	"github.com/dmitrijs2005/revpay/internal/models"
)

// Repository is the persistent store contract for payment methods.
type Repository interface {
	Create(ctx context.Context, pm *models.PaymentMethod) (*models.PaymentMethod, error)
	GetByIDAndAccount(ctx context.Context, id, accountID string) (*models.PaymentMethod, error)
	ListByAccount(ctx context.Context, accountID string) ([]*models.PaymentMethod, error)
	Delete(ctx context.Context, id string) error

	// ClearDefault unsets the default flag on every method of the account.
	ClearDefault(ctx context.Context, accountID string) error

	// MarkDefault sets the default flag on one method.
	MarkDefault(ctx context.Context, id string) error
}
