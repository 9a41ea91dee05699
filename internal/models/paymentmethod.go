package models

import "time"

// PaymentMethodType distinguishes stored cards from bank accounts.
type PaymentMethodType string

const (
	MethodCard PaymentMethodType = "CARD"
	MethodBank PaymentMethodType = "BANK_ACCOUNT"
)

// PaymentMethod is a stored funding source. The card or bank account number
// is kept AES-GCM encrypted; Nonce is required to decrypt it. At most one
// method per account carries Default=true.
type PaymentMethod struct {
	ID              string
	AccountID       string
	Type            PaymentMethodType
	EncryptedNumber []byte
	Nonce           []byte
	CardType        string
	ExpiryDate      string
	BankName        string
	Default         bool
	CreatedAt       time.Time
}
