package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/revpay/internal/models"
	"github.com/dmitrijs2005/revpay/internal/wallet"
)

const dateInputLayout = "2006-01-02"

// historyFilterPrompt collects the optional filters for a history query.
func (a *App) historyFilterPrompt() (wallet.HistoryFilter, error) {
	var filter wallet.HistoryFilter

	from, err := GetSimpleText(a.reader, "From date YYYY-MM-DD (empty for no limit)", a.out)
	if err != nil {
		return filter, err
	}
	if from != "" {
		t, err := time.Parse(dateInputLayout, from)
		if err != nil {
			return filter, fmt.Errorf("invalid date %q", from)
		}
		filter.From = t
	}

	to, err := GetSimpleText(a.reader, "To date YYYY-MM-DD (empty for no limit)", a.out)
	if err != nil {
		return filter, err
	}
	if to != "" {
		t, err := time.Parse(dateInputLayout, to)
		if err != nil {
			return filter, fmt.Errorf("invalid date %q", to)
		}
		// inclusive end of day
		filter.To = t.Add(24*time.Hour - time.Nanosecond)
	}

	kind, err := GetSimpleText(a.reader, "Type SEND/REQUEST/WITHDRAW (empty for all)", a.out)
	if err != nil {
		return filter, err
	}
	filter.Type = models.TransactionType(kind)

	status, err := GetSimpleText(a.reader, "Status PENDING/COMPLETED/DECLINED (empty for all)", a.out)
	if err != nil {
		return filter, err
	}
	filter.Status = models.TransactionStatus(status)

	note, err := GetSimpleText(a.reader, "Note contains (empty for all)", a.out)
	if err != nil {
		return filter, err
	}
	filter.NoteContains = note

	return filter, nil
}

// History prints the filtered transaction history, newest first.
func (a *App) ShowHistory(ctx context.Context) error {
	filter, err := a.historyFilterPrompt()
	if err != nil {
		fmt.Fprintf(a.out, "%v\n", err)
		return err
	}

	count := 0
	for record, err := range a.wallet.History(ctx, a.account.ID, filter) {
		if err != nil {
			fmt.Fprintf(a.out, "History query failed: %v\n", err)
			return err
		}
		counterparty := record.ReceiverEmail
		if counterparty == "" {
			counterparty = "N/A"
		}
		fmt.Fprintf(a.out, "%s  %-8s %-9s %10s  %s -> %s  %s  %q\n",
			record.CreatedAt.Format("2006-01-02 15:04"),
			record.Type, record.Status, record.Amount.StringFixed(2),
			record.SenderEmail, counterparty, record.ID, record.Note)
		count++
	}
	if count == 0 {
		fmt.Fprintln(a.out, "No transactions match.")
	}
	return nil
}

// Export renders the filtered history as CSV, stores it remotely or locally,
// and prints the resulting location.
func (a *App) Export(ctx context.Context) error {
	filter, err := a.historyFilterPrompt()
	if err != nil {
		fmt.Fprintf(a.out, "%v\n", err)
		return err
	}

	dest, err := GetSimpleText(a.reader, "Destination (s3/file, empty for s3)", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "%v\n", err)
		return err
	}
	exporter := a.exporter
	if dest == "file" {
		exporter = a.local
	}

	key, err := exporter.Upload(ctx, a.account.ID, a.wallet.History(ctx, a.account.ID, filter))
	if err != nil {
		fmt.Fprintf(a.out, "Export failed: %v\n", err)
		return err
	}
	fmt.Fprintf(a.out, "Exported to %s\n", key)
	return nil
}
