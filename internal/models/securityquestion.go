package models

// SecurityQuestion holds one of an account's registered questions. The
// answer is stored as a one-way hash of its trimmed, lowercased form.
type SecurityQuestion struct {
	ID         string
	AccountID  string
	Question   string
	AnswerHash string
}
