package invoices

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/revpay/internal/models"
	"github.com/shopspring/decimal"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	total := decimal.RequireFromString("150.00")
	mock.ExpectQuery(`INSERT INTO invoices .* RETURNING id, created_at`).
		WithArgs("biz-1", "tx-1", "ACME Corp", "Consulting x3", "NET 30", total, models.InvoiceUnpaid).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("inv-1", time.Now()))

	inv, err := repo.Create(context.Background(), &models.Invoice{
		BusinessID:    "biz-1",
		TransactionID: "tx-1",
		CustomerInfo:  "ACME Corp",
		Items:         "Consulting x3",
		PaymentTerms:  "NET 30",
		TotalAmount:   total,
		Status:        models.InvoiceUnpaid,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inv.ID != "inv-1" {
		t.Fatalf("unexpected invoice: %+v", inv)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListByBusiness_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT .* FROM invoices WHERE business_id = \$1`).
		WithArgs("biz-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "business_id", "transaction_id", "customer_info", "items",
			"payment_terms", "total_amount", "status", "created_at",
		}).
			AddRow("inv-2", "biz-1", "tx-2", "ACME Corp", "Support", "NET 15", "50.00", "UNPAID", time.Now()).
			AddRow("inv-1", "biz-1", "tx-1", "ACME Corp", "Consulting x3", "NET 30", "150.00", "PAID", time.Now().Add(-time.Hour)))

	list, err := repo.ListByBusiness(context.Background(), "biz-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 2 || list[0].ID != "inv-2" || list[1].Status != models.InvoicePaid {
		t.Fatalf("unexpected list: %+v", list)
	}
}
