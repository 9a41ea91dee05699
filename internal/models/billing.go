package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus is the payment state of an invoice.
type InvoiceStatus string

const (
	InvoiceUnpaid InvoiceStatus = "UNPAID"
	InvoicePaid   InvoiceStatus = "PAID"
)

// Invoice is issued by a business account, linked to the transaction it
// bills for.
type Invoice struct {
	ID            string
	BusinessID    string
	TransactionID string
	CustomerInfo  string
	Items         string
	PaymentTerms  string
	TotalAmount   decimal.Decimal
	Status        InvoiceStatus
	CreatedAt     time.Time
}

// LoanStatus is the review state of a loan application.
type LoanStatus string

const (
	LoanPending  LoanStatus = "PENDING"
	LoanApproved LoanStatus = "APPROVED"
	LoanRejected LoanStatus = "REJECTED"
)

// Loan is a business loan application.
type Loan struct {
	ID        string
	AccountID string
	Amount    decimal.Decimal
	Purpose   string
	Status    LoanStatus
	CreatedAt time.Time
}
