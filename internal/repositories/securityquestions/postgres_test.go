package securityquestions

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/revpay/internal/models"
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

	mock.ExpectQuery(`INSERT INTO security_questions .* RETURNING id`).
		WithArgs("a1", "First pet?", "hash").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("q1"))

	q, err := repo.Create(context.Background(), &models.SecurityQuestion{
		AccountID:  "a1",
		Question:   "First pet?",
		AnswerHash: "hash",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.ID != "q1" {
		t.Fatalf("unexpected question: %+v", q)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListByAccount_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT .* FROM security_questions WHERE account_id = \$1`).
		WithArgs("a1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "account_id", "question", "answer_hash"}).
			AddRow("q1", "a1", "First pet?", "h1").
			AddRow("q2", "a1", "Mother's maiden name?", "h2"))

	list, err := repo.ListByAccount(context.Background(), "a1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 2 || list[1].Question != "Mother's maiden name?" {
		t.Fatalf("unexpected list: %+v", list)
	}
}

func TestListByAccount_QueryError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT .* FROM security_questions WHERE account_id = \$1`).
		WithArgs("a1").
		WillReturnError(errors.New("connection reset"))

	if _, err := repo.ListByAccount(context.Background(), "a1"); err == nil {
		t.Fatal("expected error, got nil")
	}
}
