// Package securityquestions provides the PostgreSQL-backed repository for
// per-account security questions used to gate password resets.
package securityquestions

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/revpay/internal/dbx"
	"github.com/dmitrijs2005/revpay/internal/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, q *models.SecurityQuestion) (*models.SecurityQuestion, error) {
	query := `
		INSERT INTO security_questions (account_id, question, answer_hash)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query, q.AccountID, q.Question, q.AnswerHash).Scan(&q.ID)
	if err != nil {
		return nil, fmt.Errorf("error creating security question: %w", err)
	}
	return q, nil
}

func (r *PostgresRepository) ListByAccount(ctx context.Context, accountID string) ([]*models.SecurityQuestion, error) {
	query := `
		SELECT id, account_id, question, answer_hash
		FROM security_questions WHERE account_id = $1
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to select security questions: %w", err)
	}
	defer rows.Close()

	var result []*models.SecurityQuestion
	for rows.Next() {
		q := &models.SecurityQuestion{}
		if err := rows.Scan(&q.ID, &q.AccountID, &q.Question, &q.AnswerHash); err != nil {
			return nil, err
		}
		result = append(result, q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
