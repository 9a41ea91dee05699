// Package models defines the persistent domain records shared by
// repositories and services.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType distinguishes personal wallets from business accounts.
type AccountType string

const (
	AccountPersonal AccountType = "PERSONAL"
	AccountBusiness AccountType = "BUSINESS"
)

// Account holds a user's identity, wallet balance, and security state.
// Balance is a fixed-precision decimal and must never go negative; it is
// mutated only through the ledger. Email and phone are each globally unique.
type Account struct {
	ID           string
	FullName     string
	Email        string
	Phone        string
	Type         AccountType
	BusinessName string
	Balance      decimal.Decimal
	PasswordHash string
	PINHash      string
	FailedLogins int
	Locked       bool
	CreatedAt    time.Time
}
