package securityquestions

import (
	"context"

	"github.com/dmitrijs2005/revpay/internal/models"
)

// Repository is the persistent store contract for security questions.
type Repository interface {
	Create(ctx context.Context, q *models.SecurityQuestion) (*models.SecurityQuestion, error)
	ListByAccount(ctx context.Context, accountID string) ([]*models.SecurityQuestion, error)
}
