// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/revpay/internal/dbx"
	"github.com/dmitrijs2005/revpay/internal/migrations"
	"github.com/dmitrijs2005/revpay/internal/repositories/accounts"
	"github.com/dmitrijs2005/revpay/internal/repositories/invoices"
	"github.com/dmitrijs2005/revpay/internal/repositories/loans"
	"github.com/dmitrijs2005/revpay/internal/repositories/notifications"
	"github.com/dmitrijs2005/revpay/internal/repositories/paymentmethods"
	"github.com/dmitrijs2005/revpay/internal/repositories/securityquestions"
	"github.com/dmitrijs2005/revpay/internal/repositories/transactions"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repository implementations
// and exposes schema migration and transaction hooks.
type PostgresRepositoryManager struct {
	db *sql.DB
}

func (m *PostgresRepositoryManager) DB() dbx.DBTX {
	return m.db
}

// WithinTx runs fn inside a database transaction. The transaction is rolled
// back if fn returns an error or panics, committed otherwise.
func (m *PostgresRepositoryManager) WithinTx(ctx context.Context, fn func(ctx context.Context, db dbx.DBTX) error) error {
	return dbx.WithTx(ctx, m.db, nil, fn)
}

// Accounts returns an accounts.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Accounts(db dbx.DBTX) accounts.Repository {
	return accounts.NewPostgresRepository(db)
}

// Transactions returns a transactions.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Transactions(db dbx.DBTX) transactions.Repository {
	return transactions.NewPostgresRepository(db)
}

// Notifications returns a notifications.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Notifications(db dbx.DBTX) notifications.Repository {
	return notifications.NewPostgresRepository(db)
}

// PaymentMethods returns a paymentmethods.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) PaymentMethods(db dbx.DBTX) paymentmethods.Repository {
	return paymentmethods.NewPostgresRepository(db)
}

// SecurityQuestions returns a securityquestions.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) SecurityQuestions(db dbx.DBTX) securityquestions.Repository {
	return securityquestions.NewPostgresRepository(db)
}

// Invoices returns an invoices.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Invoices(db dbx.DBTX) invoices.Repository {
	return invoices.NewPostgresRepository(db)
}

// Loans returns a loans.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Loans(db dbx.DBTX) loans.Repository {
	return loans.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetDialect("pgx")
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return err
	}
	return nil
}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
func NewPostgresRepositoryManager(db *sql.DB) (RepositoryManager, error) {
	return &PostgresRepositoryManager{db: db}, nil
}
