package transactions

import (
	"context"

	"github.com/dmitrijs2005/revpay/internal/models"
)

// Repository is the persistent store contract for transaction records.
type Repository interface {
	Create(ctx context.Context, tx *models.Transaction) (*models.Transaction, error)
	GetByID(ctx context.Context, id string) (*models.Transaction, error)

	// Settle transitions a PENDING request to a terminal status (and type)
	// with an atomic check-and-set: if the record is no longer PENDING,
	// common.ErrAlreadyProcessed is returned and nothing changes.
	Settle(ctx context.Context, id string, status models.TransactionStatus, txType models.TransactionType) error

	// ListPendingRequests returns PENDING REQUEST records addressed to the
	// given payer account.
	ListPendingRequests(ctx context.Context, payerID string) ([]*models.Transaction, error)

	// ListByParticipant returns every transaction where the account is sender
	// or receiver, newest first, with counterparty emails populated.
	ListByParticipant(ctx context.Context, accountID string) ([]*models.Transaction, error)
}
