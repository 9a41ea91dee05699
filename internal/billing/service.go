// Package billing covers the account-adjacent money features: stored payment
// methods (with encrypted numbers), business invoices, and loan applications.
package billing

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/revpay/internal/common"
	"github.com/dmitrijs2005/revpay/internal/cryptox"
	"github.com/dmitrijs2005/revpay/internal/dbx"
	"github.com/dmitrijs2005/revpay/internal/models"
	"github.com/dmitrijs2005/revpay/internal/repositories/repomanager"
	"github.com/shopspring/decimal"
)

// Service manages payment methods, invoices, and loans. Card and bank
// account numbers are stored AES-GCM encrypted with the service key.
type Service struct {
	repomanager   repomanager.RepositoryManager
	encryptionKey []byte
}

// NewService constructs the billing service. key must be a valid AES key
// (16, 24, or 32 bytes).
func NewService(m repomanager.RepositoryManager, key []byte) *Service {
	return &Service{repomanager: m, encryptionKey: key}
}

// AddMethodParams describes a payment method to store.
type AddMethodParams struct {
	AccountID   string
	Type        models.PaymentMethodType
	Number      string
	CardType    string
	ExpiryDate  string
	BankName    string
	MakeDefault bool
}

// AddPaymentMethod encrypts the number and stores the method. The account's
// first method becomes the default automatically; MakeDefault moves the flag.
func (s *Service) AddPaymentMethod(ctx context.Context, params AddMethodParams) (*models.PaymentMethod, error) {
	number := strings.ReplaceAll(params.Number, " ", "")
	if number == "" {
		return nil, common.ErrInvalidTarget
	}

	ciphertext, nonce, err := cryptox.EncryptField(number, s.encryptionKey)
	if err != nil {
		return nil, common.ErrInternal
	}

	var created *models.PaymentMethod
	err = s.repomanager.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.PaymentMethods(tx)

		existing, txErr := repo.ListByAccount(ctx, params.AccountID)
		if txErr != nil {
			return txErr
		}
		makeDefault := params.MakeDefault || len(existing) == 0

		created, txErr = repo.Create(ctx, &models.PaymentMethod{
			AccountID:       params.AccountID,
			Type:            params.Type,
			EncryptedNumber: ciphertext,
			Nonce:           nonce,
			CardType:        params.CardType,
			ExpiryDate:      params.ExpiryDate,
			BankName:        params.BankName,
		})
		if txErr != nil {
			return txErr
		}
		if makeDefault {
			if txErr = repo.ClearDefault(ctx, params.AccountID); txErr != nil {
				return txErr
			}
			if txErr = repo.MarkDefault(ctx, created.ID); txErr != nil {
				return txErr
			}
			created.Default = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// ListPaymentMethods returns the account's stored methods.
func (s *Service) ListPaymentMethods(ctx context.Context, accountID string) ([]*models.PaymentMethod, error) {
	return s.repomanager.PaymentMethods(s.repomanager.DB()).ListByAccount(ctx, accountID)
}

// SetDefaultPaymentMethod moves the default flag to the given method. The
// method must belong to the account.
func (s *Service) SetDefaultPaymentMethod(ctx context.Context, accountID, methodID string) error {
	return s.repomanager.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.PaymentMethods(tx)
		if _, err := repo.GetByIDAndAccount(ctx, methodID, accountID); err != nil {
			return err
		}
		if err := repo.ClearDefault(ctx, accountID); err != nil {
			return err
		}
		return repo.MarkDefault(ctx, methodID)
	})
}

// RemovePaymentMethod deletes a method the account owns.
func (s *Service) RemovePaymentMethod(ctx context.Context, accountID, methodID string) error {
	repo := s.repomanager.PaymentMethods(s.repomanager.DB())
	if _, err := repo.GetByIDAndAccount(ctx, methodID, accountID); err != nil {
		return err
	}
	return repo.Delete(ctx, methodID)
}

// MaskedNumber decrypts a stored number and masks all but the last four
// digits.
func (s *Service) MaskedNumber(pm *models.PaymentMethod) (string, error) {
	number, err := cryptox.DecryptField(pm.EncryptedNumber, pm.Nonce, s.encryptionKey)
	if err != nil {
		return "", common.ErrInternal
	}
	if len(number) <= 4 {
		return number, nil
	}
	return strings.Repeat("*", len(number)-4) + number[len(number)-4:], nil
}

// CreateInvoice issues an invoice from a business account for one of its
// transactions. Personal accounts cannot issue invoices.
func (s *Service) CreateInvoice(ctx context.Context, businessID, transactionID, customerInfo, items, paymentTerms string, total decimal.Decimal) (*models.Invoice, error) {
	if !total.IsPositive() {
		return nil, common.ErrInvalidAmount
	}
	account, err := s.repomanager.Accounts(s.repomanager.DB()).GetByID(ctx, businessID)
	if err != nil {
		return nil, err
	}
	if account.Type != models.AccountBusiness {
		return nil, common.ErrUnauthorized
	}
	if _, err := s.repomanager.Transactions(s.repomanager.DB()).GetByID(ctx, transactionID); err != nil {
		return nil, err
	}

	return s.repomanager.Invoices(s.repomanager.DB()).Create(ctx, &models.Invoice{
		BusinessID:    businessID,
		TransactionID: transactionID,
		CustomerInfo:  customerInfo,
		Items:         items,
		PaymentTerms:  paymentTerms,
		TotalAmount:   total,
		Status:        models.InvoiceUnpaid,
	})
}

// ListInvoices returns the invoices issued by a business account.
func (s *Service) ListInvoices(ctx context.Context, businessID string) ([]*models.Invoice, error) {
	return s.repomanager.Invoices(s.repomanager.DB()).ListByBusiness(ctx, businessID)
}

// ApplyForLoan records a PENDING loan application.
func (s *Service) ApplyForLoan(ctx context.Context, accountID string, amount decimal.Decimal, purpose string) (*models.Loan, error) {
	if !amount.IsPositive() {
		return nil, common.ErrInvalidAmount
	}
	return s.repomanager.Loans(s.repomanager.DB()).Create(ctx, &models.Loan{
		AccountID: accountID,
		Amount:    amount,
		Purpose:   purpose,
		Status:    models.LoanPending,
	})
}

// ListLoans returns the account's loan applications.
func (s *Service) ListLoans(ctx context.Context, accountID string) ([]*models.Loan, error) {
	return s.repomanager.Loans(s.repomanager.DB()).ListByAccount(ctx, accountID)
}

// ReviewLoan settles a loan application as approved or rejected.
func (s *Service) ReviewLoan(ctx context.Context, loanID string, approve bool) error {
	status := models.LoanRejected
	if approve {
		status = models.LoanApproved
	}
	return s.repomanager.Loans(s.repomanager.DB()).UpdateStatus(ctx, loanID, status)
}
