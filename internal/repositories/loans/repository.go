package loans

import (
	"context"

	"github.com/dmitrijs2005/revpay/internal/models"
)

// Repository is the persistent store contract for loan applications.
type Repository interface {
	Create(ctx context.Context, loan *models.Loan) (*models.Loan, error)
	ListByAccount(ctx context.Context, accountID string) ([]*models.Loan, error)
	UpdateStatus(ctx context.Context, id string, status models.LoanStatus) error
}
