// Package cli implements the interactive console for RevPay: registration
// and login, money operations gated by the transaction PIN, history and
// export, notifications, payment methods, invoices, and loans.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/dmitrijs2005/revpay/internal/auth"
	"github.com/dmitrijs2005/revpay/internal/logging"
	"github.com/dmitrijs2005/revpay/internal/models"
	"github.com/dmitrijs2005/revpay/internal/wallet"
	"github.com/shopspring/decimal"
)

// pinAttempts caps PIN verification per money operation. Exhaustion aborts
// the operation; it never locks the account.
const pinAttempts = 3

var errPINExhausted = errors.New("pin attempts exhausted, operation cancelled")

// AuthService is the slice of the authentication guard the console uses.
type AuthService interface {
	Register(ctx context.Context, params auth.RegisterParams) (*models.Account, error)
	Login(ctx context.Context, identifier, password string) (*models.Account, string, error)
	VerifySession(token string) (string, error)
	VerifyPIN(account *models.Account, pin string) (bool, error)
	IssueOneTimeCode(accountID string) (string, error)
	VerifyOneTimeCode(accountID, code string) bool
	AuthorizePasswordReset(ctx context.Context, accountID string, answers map[string]string) error
	ResetPassword(ctx context.Context, account *models.Account, newPassword string) error
}

// WalletService is the slice of the wallet core the console uses.
type WalletService interface {
	GetAccount(ctx context.Context, accountID string) (*models.Account, error)
	ResolveIdentifier(ctx context.Context, identifier string) (*models.Account, error)
	Deposit(ctx context.Context, accountID string, amount decimal.Decimal) error
	SendMoney(ctx context.Context, senderID, receiverIdentifier string, amount decimal.Decimal, note string) (*models.Transaction, error)
	RequestMoney(ctx context.Context, requesterID, payerIdentifier string, amount decimal.Decimal, note string) (*models.Transaction, error)
	AcceptRequest(ctx context.Context, requestID, payerID string) error
	DeclineRequest(ctx context.Context, requestID, payerID string) error
	WithdrawMoney(ctx context.Context, accountID string, amount decimal.Decimal, note string) (*models.Transaction, error)
	PendingRequests(ctx context.Context, payerID string) ([]*models.Transaction, error)
	History(ctx context.Context, accountID string, filter wallet.HistoryFilter) iter.Seq2[*models.Transaction, error]
}

// NotifyService is the notification surface the console uses.
type NotifyService interface {
	List(ctx context.Context, accountID string, onlyUnread bool) ([]*models.Notification, error)
	MarkRead(ctx context.Context, accountID, id string) error
	Preferences(ctx context.Context, accountID string) (map[models.NotificationType]bool, error)
	SetPreferences(ctx context.Context, accountID string, enabled map[models.NotificationType]bool) error
}

// Exporter stores a rendered history export and returns its location
// (object key or file path).
type Exporter interface {
	Upload(ctx context.Context, accountID string, transactions iter.Seq2[*models.Transaction, error]) (string, error)
}

// App holds the console state: wired services, the input reader, and the
// logged-in account.
type App struct {
	auth     AuthService
	wallet   WalletService
	notify   NotifyService
	billing  BillingService
	exporter Exporter
	local    Exporter
	logger   logging.Logger

	reader *bufio.Reader
	out    io.Writer

	account *models.Account
	token   string
}

// NewApp wires the console against the given services.
func NewApp(authSvc AuthService, walletSvc WalletService, notifySvc NotifyService, billingSvc BillingService, exporter Exporter, local Exporter, logger logging.Logger, in io.Reader, out io.Writer) *App {
	return &App{
		auth:     authSvc,
		wallet:   walletSvc,
		notify:   notifySvc,
		billing:  billingSvc,
		exporter: exporter,
		local:    local,
		logger:   logger,
		reader:   bufio.NewReader(in),
		out:      out,
	}
}

// isLoggedIn reports whether a session is active. An expired session token
// logs the account out.
func (a *App) isLoggedIn() bool {
	if a.account == nil {
		return false
	}
	if _, err := a.auth.VerifySession(a.token); err != nil {
		a.account = nil
		a.token = ""
		fmt.Fprintln(a.out, "Session expired. Please log in again.")
		return false
	}
	return true
}

func (a *App) status() string {
	if a.account == nil {
		return "not logged in"
	}
	return a.account.Email
}

// refreshAccount reloads the logged-in account so the prompt shows the
// current balance.
func (a *App) refreshAccount(ctx context.Context) {
	if a.account == nil {
		return
	}
	account, err := a.wallet.GetAccount(ctx, a.account.ID)
	if err != nil {
		a.logger.Warn(ctx, "account refresh failed", "error", err)
		return
	}
	a.account = account
}
