// Package notify stores and lists per-account notifications and the
// notification preference record. It is the sink the wallet posts
// transaction alerts to.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/revpay/internal/common"
	"github.com/dmitrijs2005/revpay/internal/models"
	"github.com/dmitrijs2005/revpay/internal/repositories/repomanager"
)

// defaultPreferences enables every notification kind for new accounts.
var defaultPreferences = []models.NotificationType{
	models.NotificationAlert,
	models.NotificationTransaction,
	models.NotificationSecurity,
}

// Service persists notifications, honoring the account's preference record:
// a disabled kind is dropped silently.
type Service struct {
	repomanager repomanager.RepositoryManager
}

func NewService(m repomanager.RepositoryManager) *Service {
	return &Service{repomanager: m}
}

// Notify records a notification for the account unless the account has
// disabled that kind.
func (s *Service) Notify(ctx context.Context, accountID string, kind models.NotificationType, message string) error {
	enabled, err := s.Preferences(ctx, accountID)
	if err != nil {
		return err
	}
	if !enabled[kind] {
		return nil
	}
	_, err = s.repomanager.Notifications(s.repomanager.DB()).Create(ctx, &models.Notification{
		AccountID: accountID,
		Type:      kind,
		Message:   message,
	})
	return err
}

// List returns the account's notifications, optionally unread only. The
// preference record is never included.
func (s *Service) List(ctx context.Context, accountID string, onlyUnread bool) ([]*models.Notification, error) {
	return s.repomanager.Notifications(s.repomanager.DB()).ListByAccount(ctx, accountID, onlyUnread)
}

// MarkRead flags a notification as read. Only the owning account may mark
// its notifications; anyone else gets ErrUnauthorized.
func (s *Service) MarkRead(ctx context.Context, accountID, id string) error {
	repo := s.repomanager.Notifications(s.repomanager.DB())
	n, err := repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if n.AccountID != accountID {
		return common.ErrUnauthorized
	}
	return repo.SetRead(ctx, id, true)
}

// Preferences reports which notification kinds the account has enabled.
// Accounts without a stored preference record get the defaults.
func (s *Service) Preferences(ctx context.Context, accountID string) (map[models.NotificationType]bool, error) {
	enabled := make(map[models.NotificationType]bool, len(defaultPreferences))

	pref, err := s.repomanager.Notifications(s.repomanager.DB()).GetPreference(ctx, accountID)
	if errors.Is(err, common.ErrNotFound) {
		for _, kind := range defaultPreferences {
			enabled[kind] = true
		}
		return enabled, nil
	}
	if err != nil {
		return nil, err
	}

	for _, part := range strings.Split(pref.Message, ",") {
		if part = strings.TrimSpace(part); part != "" {
			enabled[models.NotificationType(part)] = true
		}
	}
	return enabled, nil
}

// SetPreferences stores the account's enabled notification kinds. The set is
// serialized into the single PREFERENCE record's message.
func (s *Service) SetPreferences(ctx context.Context, accountID string, enabled map[models.NotificationType]bool) error {
	var parts []string
	for _, kind := range defaultPreferences {
		if enabled[kind] {
			parts = append(parts, string(kind))
		}
	}
	message := strings.Join(parts, ",")
	if err := s.repomanager.Notifications(s.repomanager.DB()).UpsertPreference(ctx, accountID, message); err != nil {
		return fmt.Errorf("error saving preferences: %w", err)
	}
	return nil
}
