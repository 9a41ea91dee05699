package cli

import (
	"context"
	"fmt"
)

// Balance shows the current balance.
func (a *App) Balance(ctx context.Context) error {
	a.refreshAccount(ctx)
	fmt.Fprintf(a.out, "Balance: %s\n", a.account.Balance.StringFixed(2))
	return nil
}

// Deposit adds funds from outside the platform.
func (a *App) Deposit(ctx context.Context) error {
	amount, err := GetAmount(a.reader, "Amount to deposit", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "%v\n", err)
		return err
	}
	if err := a.wallet.Deposit(ctx, a.account.ID, amount); err != nil {
		fmt.Fprintf(a.out, "Deposit failed: %v\n", err)
		return err
	}
	a.refreshAccount(ctx)
	fmt.Fprintf(a.out, "Deposited. Balance: %s\n", a.account.Balance.StringFixed(2))
	return nil
}

// Send transfers money to another user, gated by the transaction PIN.
func (a *App) Send(ctx context.Context) error {
	receiver, err := GetSimpleText(a.reader, "Receiver email or phone", a.out)
	if err != nil {
		return err
	}
	amount, err := GetAmount(a.reader, "Amount", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "%v\n", err)
		return err
	}
	note, err := GetSimpleText(a.reader, "Note (optional)", a.out)
	if err != nil {
		return err
	}

	if err := a.requirePIN(ctx); err != nil {
		return err
	}

	record, err := a.wallet.SendMoney(ctx, a.account.ID, receiver, amount, note)
	if err != nil {
		fmt.Fprintf(a.out, "Send failed: %v\n", err)
		return err
	}
	a.refreshAccount(ctx)
	fmt.Fprintf(a.out, "Sent %s (transaction %s). Balance: %s\n",
		amount.StringFixed(2), record.ID, a.account.Balance.StringFixed(2))
	return nil
}

// Request asks another user for money.
func (a *App) Request(ctx context.Context) error {
	payer, err := GetSimpleText(a.reader, "Payer email or phone", a.out)
	if err != nil {
		return err
	}
	amount, err := GetAmount(a.reader, "Amount", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "%v\n", err)
		return err
	}
	note, err := GetSimpleText(a.reader, "Note (optional)", a.out)
	if err != nil {
		return err
	}

	record, err := a.wallet.RequestMoney(ctx, a.account.ID, payer, amount, note)
	if err != nil {
		fmt.Fprintf(a.out, "Request failed: %v\n", err)
		return err
	}
	fmt.Fprintf(a.out, "Request %s created, awaiting the payer.\n", record.ID)
	return nil
}

// Pending lists money requests awaiting this account's decision.
func (a *App) Pending(ctx context.Context) error {
	pending, err := a.wallet.PendingRequests(ctx, a.account.ID)
	if err != nil {
		fmt.Fprintf(a.out, "Could not list requests: %v\n", err)
		return err
	}
	if len(pending) == 0 {
		fmt.Fprintln(a.out, "No pending requests.")
		return nil
	}
	for _, r := range pending {
		fmt.Fprintf(a.out, "%s  %s  from %s  %q\n", r.ID, r.Amount.StringFixed(2), r.SenderID, r.Note)
	}
	return nil
}

// Accept settles a pending request, gated by the transaction PIN.
func (a *App) Accept(ctx context.Context) error {
	id, err := GetSimpleText(a.reader, "Request ID to accept", a.out)
	if err != nil {
		return err
	}
	if err := a.requirePIN(ctx); err != nil {
		return err
	}
	if err := a.wallet.AcceptRequest(ctx, id, a.account.ID); err != nil {
		fmt.Fprintf(a.out, "Accept failed: %v\n", err)
		return err
	}
	a.refreshAccount(ctx)
	fmt.Fprintf(a.out, "Request settled. Balance: %s\n", a.account.Balance.StringFixed(2))
	return nil
}

// Decline rejects a pending request.
func (a *App) Decline(ctx context.Context) error {
	id, err := GetSimpleText(a.reader, "Request ID to decline", a.out)
	if err != nil {
		return err
	}
	if err := a.wallet.DeclineRequest(ctx, id, a.account.ID); err != nil {
		fmt.Fprintf(a.out, "Decline failed: %v\n", err)
		return err
	}
	fmt.Fprintln(a.out, "Request declined.")
	return nil
}

// Withdraw moves funds out of the wallet, gated by the transaction PIN.
func (a *App) Withdraw(ctx context.Context) error {
	amount, err := GetAmount(a.reader, "Amount to withdraw", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "%v\n", err)
		return err
	}
	note, err := GetSimpleText(a.reader, "Note (optional)", a.out)
	if err != nil {
		return err
	}

	if err := a.requirePIN(ctx); err != nil {
		return err
	}

	if _, err := a.wallet.WithdrawMoney(ctx, a.account.ID, amount, note); err != nil {
		fmt.Fprintf(a.out, "Withdrawal failed: %v\n", err)
		return err
	}
	a.refreshAccount(ctx)
	fmt.Fprintf(a.out, "Withdrawn. Balance: %s\n", a.account.Balance.StringFixed(2))
	return nil
}
