package wallet

// Shared in-memory test doubles. fakeStore emulates the persistent store
// with the same semantics the repositories guarantee: conditional debits,
// single-winner settlement, and transactional rollback.

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/revpay/internal/common"
	"github.com/dmitrijs2005/revpay/internal/dbx"
	"github.com/dmitrijs2005/revpay/internal/models"
	accountsrepo "github.com/dmitrijs2005/revpay/internal/repositories/accounts"
	invoicesrepo "github.com/dmitrijs2005/revpay/internal/repositories/invoices"
	loansrepo "github.com/dmitrijs2005/revpay/internal/repositories/loans"
	notificationsrepo "github.com/dmitrijs2005/revpay/internal/repositories/notifications"
	paymentmethodsrepo "github.com/dmitrijs2005/revpay/internal/repositories/paymentmethods"
	questionsrepo "github.com/dmitrijs2005/revpay/internal/repositories/securityquestions"
	transactionsrepo "github.com/dmitrijs2005/revpay/internal/repositories/transactions"
	"github.com/shopspring/decimal"
)

type fakeStore struct {
	mu           sync.Mutex
	txMu         sync.Mutex
	accounts     map[string]*models.Account
	transactions map[string]*models.Transaction
	nextAccount  int
	nextTx       int
	now          time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		accounts:     make(map[string]*models.Account),
		transactions: make(map[string]*models.Transaction),
		now:          time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (s *fakeStore) addAccount(email string, balance decimal.Decimal) *models.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextAccount++
	a := &models.Account{
		ID:      fmt.Sprintf("acc-%d", s.nextAccount),
		Email:   email,
		Phone:   fmt.Sprintf("+1555%04d", s.nextAccount),
		Type:    models.AccountPersonal,
		Balance: balance,
	}
	s.accounts[a.ID] = a
	return a
}

func (s *fakeStore) balance(id string) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accounts[id].Balance
}

func (s *fakeStore) transaction(id string) *models.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *s.transactions[id]
	return &cp
}

// tick advances the fake clock so created records get distinct timestamps.
func (s *fakeStore) tick() time.Time {
	s.now = s.now.Add(time.Minute)
	return s.now
}

func (s *fakeStore) snapshot() (map[string]*models.Account, map[string]*models.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	accounts := make(map[string]*models.Account, len(s.accounts))
	for k, v := range s.accounts {
		cp := *v
		accounts[k] = &cp
	}
	transactions := make(map[string]*models.Transaction, len(s.transactions))
	for k, v := range s.transactions {
		cp := *v
		transactions[k] = &cp
	}
	return accounts, transactions
}

func (s *fakeStore) restore(accounts map[string]*models.Account, transactions map[string]*models.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts = accounts
	s.transactions = transactions
}

// --- repositories over fakeStore ---

type fakeWalletAccounts struct{ s *fakeStore }

func (f *fakeWalletAccounts) Create(ctx context.Context, a *models.Account) (*models.Account, error) {
	return nil, common.ErrInternal
}

func (f *fakeWalletAccounts) GetByID(ctx context.Context, id string) (*models.Account, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	a, ok := f.s.accounts[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeWalletAccounts) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, a := range f.s.accounts {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeWalletAccounts) GetByPhone(ctx context.Context, phone string) (*models.Account, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, a := range f.s.accounts {
		if a.Phone == phone {
			cp := *a
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeWalletAccounts) Credit(ctx context.Context, id string, amount decimal.Decimal) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	a, ok := f.s.accounts[id]
	if !ok {
		return common.ErrNotFound
	}
	a.Balance = a.Balance.Add(amount)
	return nil
}

func (f *fakeWalletAccounts) Debit(ctx context.Context, id string, amount decimal.Decimal) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	a, ok := f.s.accounts[id]
	if !ok {
		return common.ErrNotFound
	}
	if a.Balance.LessThan(amount) {
		return common.ErrInsufficientBalance
	}
	a.Balance = a.Balance.Sub(amount)
	return nil
}

func (f *fakeWalletAccounts) UpdateSecurity(ctx context.Context, account *models.Account) error {
	return nil
}

type fakeWalletTransactions struct{ s *fakeStore }

func (f *fakeWalletTransactions) Create(ctx context.Context, t *models.Transaction) (*models.Transaction, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.s.nextTx++
	cp := *t
	cp.ID = fmt.Sprintf("tx-%d", f.s.nextTx)
	cp.CreatedAt = f.s.tick()
	f.s.transactions[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeWalletTransactions) GetByID(ctx context.Context, id string) (*models.Transaction, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	t, ok := f.s.transactions[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeWalletTransactions) Settle(ctx context.Context, id string, status models.TransactionStatus, txType models.TransactionType) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	t, ok := f.s.transactions[id]
	if !ok {
		return common.ErrNotFound
	}
	if t.Status != models.StatusPending {
		return common.ErrAlreadyProcessed
	}
	t.Status = status
	t.Type = txType
	return nil
}

func (f *fakeWalletTransactions) ListPendingRequests(ctx context.Context, payerID string) ([]*models.Transaction, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []*models.Transaction
	for _, t := range f.s.transactions {
		if t.ReceiverID == payerID && t.Type == models.TransactionRequest && t.Status == models.StatusPending {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeWalletTransactions) ListByParticipant(ctx context.Context, accountID string) ([]*models.Transaction, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []*models.Transaction
	for _, t := range f.s.transactions {
		if t.SenderID != accountID && t.ReceiverID != accountID {
			continue
		}
		cp := *t
		if a, ok := f.s.accounts[cp.SenderID]; ok {
			cp.SenderEmail = a.Email
		}
		if a, ok := f.s.accounts[cp.ReceiverID]; ok {
			cp.ReceiverEmail = a.Email
		}
		out = append(out, &cp)
	}
	// newest first
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].CreatedAt.After(out[i].CreatedAt) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

type fakeWalletRepoManager struct {
	s *fakeStore
}

func newFakeWalletRepoManager() *fakeWalletRepoManager {
	return &fakeWalletRepoManager{s: newFakeStore()}
}

func (m *fakeWalletRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeWalletRepoManager) DB() dbx.DBTX                                 { return nil }

// WithinTx emulates a serializable transaction: callers run one at a time,
// and the store is restored from a snapshot if fn fails.
func (m *fakeWalletRepoManager) WithinTx(ctx context.Context, fn func(ctx context.Context, db dbx.DBTX) error) error {
	m.s.txMu.Lock()
	defer m.s.txMu.Unlock()
	accounts, transactions := m.s.snapshot()
	if err := fn(ctx, nil); err != nil {
		m.s.restore(accounts, transactions)
		return err
	}
	return nil
}

func (m *fakeWalletRepoManager) Accounts(db dbx.DBTX) accountsrepo.Repository {
	return &fakeWalletAccounts{s: m.s}
}

func (m *fakeWalletRepoManager) Transactions(db dbx.DBTX) transactionsrepo.Repository {
	return &fakeWalletTransactions{s: m.s}
}

func (m *fakeWalletRepoManager) Notifications(db dbx.DBTX) notificationsrepo.Repository { return nil }
func (m *fakeWalletRepoManager) PaymentMethods(db dbx.DBTX) paymentmethodsrepo.Repository {
	return nil
}
func (m *fakeWalletRepoManager) SecurityQuestions(db dbx.DBTX) questionsrepo.Repository { return nil }
func (m *fakeWalletRepoManager) Invoices(db dbx.DBTX) invoicesrepo.Repository           { return nil }
func (m *fakeWalletRepoManager) Loans(db dbx.DBTX) loansrepo.Repository                 { return nil }

// recordingNotifier captures notifications for assertions.
type recordingNotifier struct {
	mu       sync.Mutex
	messages map[string][]string
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{messages: make(map[string][]string)}
}

func (n *recordingNotifier) Notify(ctx context.Context, accountID string, kind models.NotificationType, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages[accountID] = append(n.messages[accountID], message)
	return nil
}

func (n *recordingNotifier) count(accountID string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.messages[accountID])
}

func newTestService(t *testing.T) (*Service, *fakeWalletRepoManager, *recordingNotifier) {
	t.Helper()
	rm := newFakeWalletRepoManager()
	notifier := newRecordingNotifier()
	ledger := NewLedger(rm, time.Second)
	return NewService(rm, ledger, notifier, nil), rm, notifier
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
