package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the kind of money movement a record describes.
type TransactionType string

const (
	TransactionSend     TransactionType = "SEND"
	TransactionRequest  TransactionType = "REQUEST"
	TransactionWithdraw TransactionType = "WITHDRAW"
)

// TransactionStatus is the lifecycle state of a transaction record.
// COMPLETED and DECLINED are terminal.
type TransactionStatus string

const (
	StatusPending   TransactionStatus = "PENDING"
	StatusCompleted TransactionStatus = "COMPLETED"
	StatusDeclined  TransactionStatus = "DECLINED"
)

// Transaction is an immutable ledger record. SEND and WITHDRAW are created
// already COMPLETED; a REQUEST is created PENDING and settles exactly once.
// ReceiverID is empty for withdrawals. Amount is always positive.
//
// SenderEmail and ReceiverEmail are denormalized for history rendering and
// export; they are populated by history queries, not stored on the record.
type Transaction struct {
	ID         string
	SenderID   string
	ReceiverID string
	Amount     decimal.Decimal
	Type       TransactionType
	Status     TransactionStatus
	Note       string
	CreatedAt  time.Time

	SenderEmail   string
	ReceiverEmail string
}

// Settled returns a copy of the request transitioned to its terminal state.
// Accepted requests are rewritten to SEND so that, once settled, the record
// is indistinguishable from a direct send.
func (t Transaction) Settled(accepted bool) Transaction {
	out := t
	if accepted {
		out.Status = StatusCompleted
		out.Type = TransactionSend
	} else {
		out.Status = StatusDeclined
	}
	return out
}

// Terminal reports whether no further transition is permitted.
func (t Transaction) Terminal() bool {
	return t.Status == StatusCompleted || t.Status == StatusDeclined
}
