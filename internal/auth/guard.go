// Package auth implements the authentication guard: credential checks with
// lockout tracking, transaction-PIN verification, one-time codes, and the
// security-question gate for password resets. Session tokens are minted and
// parsed in jwt.go.
package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/revpay/internal/common"
	"github.com/dmitrijs2005/revpay/internal/cryptox"
	"github.com/dmitrijs2005/revpay/internal/dbx"
	"github.com/dmitrijs2005/revpay/internal/models"
	"github.com/dmitrijs2005/revpay/internal/repositories/repomanager"
)

var pinPattern = regexp.MustCompile(`^\d{4}$`)

// oneTimeCodeLength is the number of digits in an issued code.
const oneTimeCodeLength = 6

// Guard performs credential verification and account lockout bookkeeping.
// One-time codes live in process memory, keyed by account: issuing overwrites
// any prior code, a successful verification consumes it.
type Guard struct {
	repomanager       repomanager.RepositoryManager
	maxFailedAttempts int
	secretKey         []byte
	sessionValidity   time.Duration

	mu    sync.Mutex
	codes map[string]string
}

// NewGuard constructs a Guard. Accounts lock after maxFailedAttempts
// consecutive failed logins. secretKey signs the session tokens issued on
// login, valid for sessionValidity.
func NewGuard(m repomanager.RepositoryManager, maxFailedAttempts int, secretKey []byte, sessionValidity time.Duration) *Guard {
	return &Guard{
		repomanager:       m,
		maxFailedAttempts: maxFailedAttempts,
		secretKey:         secretKey,
		sessionValidity:   sessionValidity,
		codes:             make(map[string]string),
	}
}

// RegisterParams carries everything needed to open an account.
type RegisterParams struct {
	FullName     string
	Email        string
	Phone        string
	Type         models.AccountType
	BusinessName string
	Password     string
	PIN          string

	// SecurityQuestions maps question text to the expected answer. All
	// registered questions must be answered to authorize a password reset.
	SecurityQuestions map[string]string
}

// Register creates an account with hashed credentials and its security
// questions in one transaction. The PIN must be exactly 4 digits.
func (g *Guard) Register(ctx context.Context, params RegisterParams) (*models.Account, error) {
	if !pinPattern.MatchString(params.PIN) {
		return nil, common.ErrInvalidPINFormat
	}

	passwordHash, err := cryptox.HashSecret(params.Password)
	if err != nil {
		return nil, common.ErrInternal
	}
	pinHash, err := cryptox.HashSecret(params.PIN)
	if err != nil {
		return nil, common.ErrInternal
	}

	account := &models.Account{
		FullName:     params.FullName,
		Email:        params.Email,
		Phone:        params.Phone,
		Type:         params.Type,
		BusinessName: params.BusinessName,
		PasswordHash: passwordHash,
		PINHash:      pinHash,
	}

	var created *models.Account
	err = g.repomanager.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		var txErr error
		created, txErr = g.repomanager.Accounts(tx).Create(ctx, account)
		if txErr != nil {
			return txErr
		}
		questions := g.repomanager.SecurityQuestions(tx)
		for question, answer := range params.SecurityQuestions {
			answerHash, hashErr := cryptox.HashSecret(normalizeAnswer(answer))
			if hashErr != nil {
				return common.ErrInternal
			}
			if _, txErr = questions.Create(ctx, &models.SecurityQuestion{
				AccountID:  created.ID,
				Question:   question,
				AnswerHash: answerHash,
			}); txErr != nil {
				return txErr
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// FindByIdentifier resolves an account by email first, then by phone.
func (g *Guard) FindByIdentifier(ctx context.Context, identifier string) (*models.Account, error) {
	repo := g.repomanager.Accounts(g.repomanager.DB())

	account, err := repo.GetByEmail(ctx, identifier)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}
	return repo.GetByPhone(ctx, identifier)
}

// Login looks the account up by email or phone and verifies the password.
// A locked account rejects login even with the correct password. Each
// password mismatch increments the failed-login counter; reaching the
// configured maximum sets the locked flag. A successful login resets the
// counter to zero and returns a signed session token alongside the account.
func (g *Guard) Login(ctx context.Context, identifier, password string) (*models.Account, string, error) {
	account, err := g.FindByIdentifier(ctx, identifier)
	if err != nil {
		return nil, "", err
	}

	if account.Locked {
		return nil, "", common.ErrAccountLocked
	}

	repo := g.repomanager.Accounts(g.repomanager.DB())

	if !cryptox.VerifySecret(password, account.PasswordHash) {
		account.FailedLogins++
		if account.FailedLogins >= g.maxFailedAttempts {
			account.Locked = true
		}
		if updErr := repo.UpdateSecurity(ctx, account); updErr != nil {
			return nil, "", updErr
		}
		if account.Locked {
			return nil, "", fmt.Errorf("%w: account locked after %d failed attempts", common.ErrInvalidCredentials, g.maxFailedAttempts)
		}
		return nil, "", fmt.Errorf("%w: attempts left: %d", common.ErrInvalidCredentials, g.maxFailedAttempts-account.FailedLogins)
	}

	if account.FailedLogins != 0 {
		account.FailedLogins = 0
		if err := repo.UpdateSecurity(ctx, account); err != nil {
			return nil, "", err
		}
	}

	token, err := GenerateToken(account.ID, g.secretKey, g.sessionValidity)
	if err != nil {
		return nil, "", err
	}
	return account, token, nil
}

// VerifySession validates a session token and returns the account ID it was
// issued for.
func (g *Guard) VerifySession(token string) (string, error) {
	return GetAccountIDFromToken(token, g.secretKey)
}

// VerifyPIN checks the supplied transaction PIN against the account's stored
// hash. Callers cap verification at a few attempts per operation and abort the
// operation on exhaustion; PIN failures never touch the login lockout counter.
func (g *Guard) VerifyPIN(account *models.Account, pin string) (bool, error) {
	if !pinPattern.MatchString(pin) {
		return false, common.ErrInvalidPINFormat
	}
	return cryptox.VerifySecret(pin, account.PINHash), nil
}

// IssueOneTimeCode generates a random 6-digit code for the account,
// replacing any previously issued code.
func (g *Guard) IssueOneTimeCode(accountID string) (string, error) {
	code, err := common.MakeRandDigitCode(oneTimeCodeLength)
	if err != nil {
		return "", common.ErrInternal
	}

	g.mu.Lock()
	g.codes[accountID] = code
	g.mu.Unlock()

	return code, nil
}

// VerifyOneTimeCode reports whether code matches the account's active code.
// A match consumes the code; a mismatch leaves it in place.
func (g *Guard) VerifyOneTimeCode(accountID, code string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	active, ok := g.codes[accountID]
	if !ok || active != code {
		return false
	}
	delete(g.codes, accountID)
	return true
}

// VerifySecurityAnswer checks one answer against the stored hash for the
// named question. Comparison is case-insensitive and whitespace-trimmed.
func (g *Guard) VerifySecurityAnswer(ctx context.Context, accountID, question, answer string) (bool, error) {
	stored, err := g.repomanager.SecurityQuestions(g.repomanager.DB()).ListByAccount(ctx, accountID)
	if err != nil {
		return false, err
	}
	for _, q := range stored {
		if q.Question == question {
			return cryptox.VerifySecret(normalizeAnswer(answer), q.AnswerHash), nil
		}
	}
	return false, common.ErrNotFound
}

// AuthorizePasswordReset verifies the supplied answers against every
// registered security question. All questions must be answered correctly;
// a missing or wrong answer yields ErrUnauthorized.
func (g *Guard) AuthorizePasswordReset(ctx context.Context, accountID string, answers map[string]string) error {
	stored, err := g.repomanager.SecurityQuestions(g.repomanager.DB()).ListByAccount(ctx, accountID)
	if err != nil {
		return err
	}
	if len(stored) == 0 {
		return common.ErrUnauthorized
	}
	for _, q := range stored {
		answer, ok := answers[q.Question]
		if !ok || !cryptox.VerifySecret(normalizeAnswer(answer), q.AnswerHash) {
			return common.ErrUnauthorized
		}
	}
	return nil
}

// ResetPassword replaces the account's password hash. Lock state and the
// transaction PIN are left untouched.
func (g *Guard) ResetPassword(ctx context.Context, account *models.Account, newPassword string) error {
	hash, err := cryptox.HashSecret(newPassword)
	if err != nil {
		return common.ErrInternal
	}
	account.PasswordHash = hash
	return g.repomanager.Accounts(g.repomanager.DB()).UpdateSecurity(ctx, account)
}

func normalizeAnswer(answer string) string {
	return strings.ToLower(strings.TrimSpace(answer))
}
