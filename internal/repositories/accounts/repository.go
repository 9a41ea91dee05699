package accounts

import (
	"context"

	"github.com/dmitrijs2005/revpay/internal/models"
	"github.com/shopspring/decimal"
)

// Repository is the persistent store contract for accounts. Balance
// mutations are conditional at the store level so that a debit can never
// observe a stale balance.
type Repository interface {
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	GetByID(ctx context.Context, id string) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	GetByPhone(ctx context.Context, phone string) (*models.Account, error)

	// Credit adds amount to the account's balance.
	Credit(ctx context.Context, id string, amount decimal.Decimal) error

	// Debit subtracts amount if and only if the current balance covers it,
	// returning common.ErrInsufficientBalance otherwise.
	Debit(ctx context.Context, id string, amount decimal.Decimal) error

	// UpdateSecurity persists the account's security state: password hash,
	// PIN hash, failed-login counter, and locked flag.
	UpdateSecurity(ctx context.Context, account *models.Account) error
}
