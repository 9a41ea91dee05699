package wallet

import (
	"context"
	"iter"
	"strings"
	"time"

	"github.com/dmitrijs2005/revpay/internal/models"
)

// HistoryFilter narrows a history query. Zero-value fields pass everything;
// set fields combine with logical AND. NoteContains matches case-insensitive
// substrings of the note.
type HistoryFilter struct {
	From         time.Time
	To           time.Time
	Type         models.TransactionType
	Status       models.TransactionStatus
	NoteContains string
}

// Matches reports whether the transaction passes every set predicate.
func (f HistoryFilter) Matches(t *models.Transaction) bool {
	if !f.From.IsZero() && t.CreatedAt.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && t.CreatedAt.After(f.To) {
		return false
	}
	if f.Type != "" && t.Type != f.Type {
		return false
	}
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.NoteContains != "" &&
		!strings.Contains(strings.ToLower(t.Note), strings.ToLower(f.NoteContains)) {
		return false
	}
	return true
}

// History returns the account's transactions (as sender or receiver) that
// pass the filter, newest first. The sequence is lazy and restartable: each
// range performs an independent query, and breaking out early stops the pass.
// A query failure is yielded as the error of the pair.
func (s *Service) History(ctx context.Context, accountID string, filter HistoryFilter) iter.Seq2[*models.Transaction, error] {
	return func(yield func(*models.Transaction, error) bool) {
		records, err := s.repomanager.Transactions(s.repomanager.DB()).ListByParticipant(ctx, accountID)
		if err != nil {
			yield(nil, err)
			return
		}
		for _, t := range records {
			if !filter.Matches(t) {
				continue
			}
			if !yield(t, nil) {
				return
			}
		}
	}
}
