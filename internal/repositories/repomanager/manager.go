package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/revpay/internal/dbx"
	"github.com/dmitrijs2005/revpay/internal/repositories/accounts"
	"github.com/dmitrijs2005/revpay/internal/repositories/invoices"
	"github.com/dmitrijs2005/revpay/internal/repositories/loans"
	"github.com/dmitrijs2005/revpay/internal/repositories/notifications"
	"github.com/dmitrijs2005/revpay/internal/repositories/paymentmethods"
	"github.com/dmitrijs2005/revpay/internal/repositories/securityquestions"
	"github.com/dmitrijs2005/revpay/internal/repositories/transactions"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	// DB returns the manager's own connection for single-statement work.
	DB() dbx.DBTX
	// WithinTx runs fn inside a transaction, passing the transactional DBTX.
	WithinTx(ctx context.Context, fn func(ctx context.Context, db dbx.DBTX) error) error
	Accounts(db dbx.DBTX) accounts.Repository
	Transactions(db dbx.DBTX) transactions.Repository
	Notifications(db dbx.DBTX) notifications.Repository
	PaymentMethods(db dbx.DBTX) paymentmethods.Repository
	SecurityQuestions(db dbx.DBTX) securityquestions.Repository
	Invoices(db dbx.DBTX) invoices.Repository
	Loans(db dbx.DBTX) loans.Repository
}
