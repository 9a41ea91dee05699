// Package common defines shared constants and sentinel errors used across
// RevPay components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrInternal     = errors.New("internal error")
	ErrUnauthorized = errors.New("unauthorized")

	// Validation errors.
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidPINFormat = errors.New("pin must be exactly 4 digits")
	ErrInvalidTarget    = errors.New("invalid target account")

	// Ledger errors.
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrLockTimeout         = errors.New("account busy, try again")

	// Authentication errors.
	ErrAccountLocked      = errors.New("account locked")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")

	// Request settlement errors.
	ErrAlreadyProcessed = errors.New("request already processed")

	// Export errors.
	ErrExport = errors.New("export failed")
)
