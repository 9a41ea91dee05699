package notifications

import (
	"context"

	"github.com/dmitrijs2005/revpay/internal/models"
)

// Repository is the persistent store contract for notification records.
// The per-account preference record (type PREFERENCE) lives in the same
// table and is managed through GetPreference/UpsertPreference.
type Repository interface {
	Create(ctx context.Context, n *models.Notification) (*models.Notification, error)
	GetByID(ctx context.Context, id string) (*models.Notification, error)
	ListByAccount(ctx context.Context, accountID string, onlyUnread bool) ([]*models.Notification, error)
	SetRead(ctx context.Context, id string, read bool) error
	GetPreference(ctx context.Context, accountID string) (*models.Notification, error)
	UpsertPreference(ctx context.Context, accountID, message string) error
}
