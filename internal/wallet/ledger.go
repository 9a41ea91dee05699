// Package wallet implements the wallet core: atomic ledger operations over
// account balances, the SEND/REQUEST/WITHDRAW transaction lifecycle, and the
// history query and export engine.
//
// Balance mutations are serialized per account with a bounded keyed lock, and
// the store applies them conditionally, so a debit can never act on a stale
// balance even under concurrent callers.
package wallet

import (
	"context"
	"time"

	"github.com/dmitrijs2005/revpay/internal/common"
	"github.com/dmitrijs2005/revpay/internal/dbx"
	"github.com/dmitrijs2005/revpay/internal/repositories/repomanager"
	"github.com/shopspring/decimal"
)

// DefaultLockTimeout bounds how long a ledger operation waits for a
// contended account before failing with ErrLockTimeout.
const DefaultLockTimeout = 3 * time.Second

// Ledger performs the atomic balance mutations. All reads-then-writes for a
// given account go through its per-account lock; transfers take both locks in
// account-ID order.
type Ledger struct {
	repomanager repomanager.RepositoryManager
	locks       *keyMutex
	lockTimeout time.Duration
}

// NewLedger constructs a Ledger. A non-positive lockTimeout falls back to
// DefaultLockTimeout.
func NewLedger(m repomanager.RepositoryManager, lockTimeout time.Duration) *Ledger {
	if lockTimeout <= 0 {
		lockTimeout = DefaultLockTimeout
	}
	return &Ledger{
		repomanager: m,
		locks:       newKeyMutex(),
		lockTimeout: lockTimeout,
	}
}

// Credit increases the account's balance by amount.
func (l *Ledger) Credit(ctx context.Context, accountID string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return common.ErrInvalidAmount
	}
	if err := l.locks.Lock(accountID, l.lockTimeout); err != nil {
		return err
	}
	defer l.locks.Unlock(accountID)

	return l.repomanager.Accounts(l.repomanager.DB()).Credit(ctx, accountID, amount)
}

// Debit decreases the account's balance by amount. The store applies the
// subtraction only if the balance covers it, so concurrent debits cannot
// overdraw the account.
func (l *Ledger) Debit(ctx context.Context, accountID string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return common.ErrInvalidAmount
	}
	if err := l.locks.Lock(accountID, l.lockTimeout); err != nil {
		return err
	}
	defer l.locks.Unlock(accountID)

	return l.repomanager.Accounts(l.repomanager.DB()).Debit(ctx, accountID, amount)
}

// Transfer moves amount from one account to another as a single atomic unit:
// either both balance changes apply or neither does. Self-transfer is
// rejected with ErrInvalidTarget.
func (l *Ledger) Transfer(ctx context.Context, fromID, toID string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return common.ErrInvalidAmount
	}
	if fromID == toID {
		return common.ErrInvalidTarget
	}
	if err := l.locks.LockOrdered(l.lockTimeout, fromID, toID); err != nil {
		return err
	}
	defer l.locks.UnlockOrdered(fromID, toID)

	return l.repomanager.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		return l.transferTx(ctx, tx, fromID, toID, amount)
	})
}

// transferTx applies the debit/credit pair on an already-open transaction.
// Callers hold the locks for both accounts.
func (l *Ledger) transferTx(ctx context.Context, tx dbx.DBTX, fromID, toID string, amount decimal.Decimal) error {
	repo := l.repomanager.Accounts(tx)
	if err := repo.Debit(ctx, fromID, amount); err != nil {
		return err
	}
	return repo.Credit(ctx, toID, amount)
}

// withAccountsLocked runs fn while holding the locks for the given accounts,
// acquired in a total order.
func (l *Ledger) withAccountsLocked(fn func() error, accountIDs ...string) error {
	if err := l.locks.LockOrdered(l.lockTimeout, accountIDs...); err != nil {
		return err
	}
	defer l.locks.UnlockOrdered(accountIDs...)
	return fn()
}
