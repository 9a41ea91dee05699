package transactions

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/revpay/internal/common"
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

func TestCreate_WithdrawHasNullReceiver(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	amount := decimal.RequireFromString("10")
	mock.ExpectQuery(`INSERT INTO transactions .* RETURNING id, created_at`).
		WithArgs("a1", nil, amount, "WITHDRAW", "COMPLETED", "").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("t1", time.Now()))

	tx, err := repo.Create(context.Background(), &models.Transaction{
		SenderID: "a1",
		Amount:   amount,
		Type:     models.TransactionWithdraw,
		Status:   models.StatusCompleted,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tx.ID != "t1" {
		t.Fatalf("unexpected id: %q", tx.ID)
	}
}

func TestSettle_FirstWins(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE transactions SET status = \$2, tx_type = \$3\s+WHERE id = \$1 AND status = 'PENDING'`).
		WithArgs("t1", "COMPLETED", "SEND").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Settle(context.Background(), "t1", models.StatusCompleted, models.TransactionSend)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSettle_AlreadyProcessed(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE transactions SET status = \$2, tx_type = \$3`).
		WithArgs("t1", "DECLINED", "REQUEST").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Settle(context.Background(), "t1", models.StatusDeclined, models.TransactionRequest)
	if !errors.Is(err, common.ErrAlreadyProcessed) {
		t.Fatalf("want ErrAlreadyProcessed, got %v", err)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT .* FROM transactions WHERE id = \$1`).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "ghost")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestListByParticipant_PopulatesEmails(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{
		"id", "sender_id", "receiver_id", "amount", "tx_type", "status", "note", "created_at",
		"sender_email", "receiver_email",
	}).AddRow(
		"t2", "a1", "a2", "40", "SEND", "COMPLETED", "lunch", time.Now(),
		"alice@example.com", "bob@example.com",
	).AddRow(
		"t1", "a1", nil, "10", "WITHDRAW", "COMPLETED", "", time.Now().Add(-time.Hour),
		"alice@example.com", "",
	)

	mock.ExpectQuery(`SELECT t\.id, .* FROM transactions t\s+JOIN accounts s`).
		WithArgs("a1").
		WillReturnRows(rows)

	got, err := repo.ListByParticipant(context.Background(), "a1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("want 2 rows, got %d", len(got))
	}
	if got[0].ReceiverEmail != "bob@example.com" {
		t.Fatalf("unexpected first row: %+v", got[0])
	}
	if got[1].ReceiverID != "" || got[1].ReceiverEmail != "" {
		t.Fatalf("withdrawal should have no receiver: %+v", got[1])
	}
}
