package wallet

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/revpay/internal/common"
	"github.com/dmitrijs2005/revpay/internal/dbx"
	"github.com/dmitrijs2005/revpay/internal/logging"
	"github.com/dmitrijs2005/revpay/internal/models"
	"github.com/dmitrijs2005/revpay/internal/repositories/repomanager"
	"github.com/shopspring/decimal"
)

// Notifier is the fire-and-forget notification sink the wallet posts to.
// Delivery failures are logged, never propagated to the caller.
type Notifier interface {
	Notify(ctx context.Context, accountID string, kind models.NotificationType, message string) error
}

// Service drives the transaction lifecycle: SEND and WITHDRAW execute
// synchronously and are terminal at creation; a REQUEST is created PENDING
// and settles exactly once via AcceptRequest or DeclineRequest.
type Service struct {
	repomanager repomanager.RepositoryManager
	ledger      *Ledger
	notifier    Notifier
	logger      logging.Logger
}

// NewService constructs the wallet service. notifier may be nil.
func NewService(m repomanager.RepositoryManager, ledger *Ledger, notifier Notifier, logger logging.Logger) *Service {
	return &Service{
		repomanager: m,
		ledger:      ledger,
		notifier:    notifier,
		logger:      logger,
	}
}

// Ledger exposes the underlying ledger for callers that need raw
// credit/debit access.
func (s *Service) Ledger() *Ledger {
	return s.ledger
}

// ResolveIdentifier finds an account by email first, then by phone.
func (s *Service) ResolveIdentifier(ctx context.Context, identifier string) (*models.Account, error) {
	repo := s.repomanager.Accounts(s.repomanager.DB())
	account, err := repo.GetByEmail(ctx, identifier)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}
	return repo.GetByPhone(ctx, identifier)
}

// GetAccount loads an account by identifier.
func (s *Service) GetAccount(ctx context.Context, accountID string) (*models.Account, error) {
	return s.repomanager.Accounts(s.repomanager.DB()).GetByID(ctx, accountID)
}

// Deposit adds external funds to the account.
func (s *Service) Deposit(ctx context.Context, accountID string, amount decimal.Decimal) error {
	if err := s.ledger.Credit(ctx, accountID, amount); err != nil {
		return err
	}
	s.notify(ctx, accountID, models.NotificationTransaction,
		fmt.Sprintf("Deposited %s to your wallet", amount.StringFixed(2)))
	return nil
}

// SendMoney resolves the receiver by email or phone, transfers the amount,
// and records a COMPLETED SEND. The balance check and the debit happen
// against the sender's balance at execution time.
func (s *Service) SendMoney(ctx context.Context, senderID, receiverIdentifier string, amount decimal.Decimal, note string) (*models.Transaction, error) {
	if !amount.IsPositive() {
		return nil, common.ErrInvalidAmount
	}
	receiver, err := s.ResolveIdentifier(ctx, receiverIdentifier)
	if err != nil {
		return nil, err
	}
	if receiver.ID == senderID {
		return nil, common.ErrInvalidTarget
	}

	var created *models.Transaction
	err = s.ledger.withAccountsLocked(func() error {
		return s.repomanager.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
			if err := s.ledger.transferTx(ctx, tx, senderID, receiver.ID, amount); err != nil {
				return err
			}
			var txErr error
			created, txErr = s.repomanager.Transactions(tx).Create(ctx, &models.Transaction{
				SenderID:   senderID,
				ReceiverID: receiver.ID,
				Amount:     amount,
				Type:       models.TransactionSend,
				Status:     models.StatusCompleted,
				Note:       note,
			})
			return txErr
		})
	}, senderID, receiver.ID)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, senderID, models.NotificationTransaction,
		fmt.Sprintf("You sent %s to %s", amount.StringFixed(2), receiver.Email))
	s.notify(ctx, receiver.ID, models.NotificationTransaction,
		fmt.Sprintf("You received %s", amount.StringFixed(2)))
	return created, nil
}

// RequestMoney resolves the payer by email or phone and records a PENDING
// REQUEST with sender=requester and receiver=payer. No balance is touched.
func (s *Service) RequestMoney(ctx context.Context, requesterID, payerIdentifier string, amount decimal.Decimal, note string) (*models.Transaction, error) {
	if !amount.IsPositive() {
		return nil, common.ErrInvalidAmount
	}
	payer, err := s.ResolveIdentifier(ctx, payerIdentifier)
	if err != nil {
		return nil, err
	}
	if payer.ID == requesterID {
		return nil, common.ErrInvalidTarget
	}

	created, err := s.repomanager.Transactions(s.repomanager.DB()).Create(ctx, &models.Transaction{
		SenderID:   requesterID,
		ReceiverID: payer.ID,
		Amount:     amount,
		Type:       models.TransactionRequest,
		Status:     models.StatusPending,
		Note:       note,
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, payer.ID, models.NotificationTransaction,
		fmt.Sprintf("Money request for %s awaiting your approval", amount.StringFixed(2)))
	return created, nil
}

// AcceptRequest settles a pending request: the payer (the recorded receiver)
// pays the requester, and the record is rewritten to COMPLETED SEND. The
// status check-and-set is atomic, so a request settles at most once. An
// insufficient balance rolls the settlement back and leaves the request
// PENDING.
func (s *Service) AcceptRequest(ctx context.Context, requestID, payerID string) error {
	request, err := s.loadRequestForSettlement(ctx, requestID, payerID)
	if err != nil {
		return err
	}

	err = s.ledger.withAccountsLocked(func() error {
		return s.repomanager.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
			settled := request.Settled(true)
			if err := s.repomanager.Transactions(tx).Settle(ctx, request.ID, settled.Status, settled.Type); err != nil {
				return err
			}
			return s.ledger.transferTx(ctx, tx, payerID, request.SenderID, request.Amount)
		})
	}, payerID, request.SenderID)
	if err != nil {
		return err
	}

	s.notify(ctx, request.SenderID, models.NotificationTransaction,
		fmt.Sprintf("Your request for %s was accepted", request.Amount.StringFixed(2)))
	s.notify(ctx, payerID, models.NotificationTransaction,
		fmt.Sprintf("You paid %s for a money request", request.Amount.StringFixed(2)))
	return nil
}

// DeclineRequest marks a pending request DECLINED. No balance moves.
func (s *Service) DeclineRequest(ctx context.Context, requestID, payerID string) error {
	request, err := s.loadRequestForSettlement(ctx, requestID, payerID)
	if err != nil {
		return err
	}

	settled := request.Settled(false)
	if err := s.repomanager.Transactions(s.repomanager.DB()).Settle(ctx, request.ID, settled.Status, settled.Type); err != nil {
		return err
	}

	s.notify(ctx, request.SenderID, models.NotificationTransaction,
		fmt.Sprintf("Your request for %s was declined", request.Amount.StringFixed(2)))
	return nil
}

// WithdrawMoney debits the account and records a COMPLETED WITHDRAW with no
// receiver.
func (s *Service) WithdrawMoney(ctx context.Context, accountID string, amount decimal.Decimal, note string) (*models.Transaction, error) {
	if !amount.IsPositive() {
		return nil, common.ErrInvalidAmount
	}

	var created *models.Transaction
	err := s.ledger.withAccountsLocked(func() error {
		return s.repomanager.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
			if err := s.repomanager.Accounts(tx).Debit(ctx, accountID, amount); err != nil {
				return err
			}
			var txErr error
			created, txErr = s.repomanager.Transactions(tx).Create(ctx, &models.Transaction{
				SenderID: accountID,
				Amount:   amount,
				Type:     models.TransactionWithdraw,
				Status:   models.StatusCompleted,
				Note:     note,
			})
			return txErr
		})
	}, accountID)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, accountID, models.NotificationTransaction,
		fmt.Sprintf("You withdrew %s", amount.StringFixed(2)))
	return created, nil
}

// PendingRequests lists the PENDING requests awaiting the payer's decision.
func (s *Service) PendingRequests(ctx context.Context, payerID string) ([]*models.Transaction, error) {
	return s.repomanager.Transactions(s.repomanager.DB()).ListPendingRequests(ctx, payerID)
}

// loadRequestForSettlement loads a request and checks that the acting payer
// is its recorded receiver and that it is still settleable.
func (s *Service) loadRequestForSettlement(ctx context.Context, requestID, payerID string) (*models.Transaction, error) {
	request, err := s.repomanager.Transactions(s.repomanager.DB()).GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.ReceiverID != payerID {
		return nil, common.ErrUnauthorized
	}
	if request.Type != models.TransactionRequest || request.Terminal() {
		return nil, common.ErrAlreadyProcessed
	}
	return request, nil
}

func (s *Service) notify(ctx context.Context, accountID string, kind models.NotificationType, message string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, accountID, kind, message); err != nil && s.logger != nil {
		s.logger.Warn(ctx, "notification delivery failed", "account_id", accountID, "error", err)
	}
}
