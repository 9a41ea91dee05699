package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs. The real App
// satisfies it; tests can provide a stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	ForgotPassword(ctx context.Context) error
	Balance(ctx context.Context) error
	Deposit(ctx context.Context) error
	Send(ctx context.Context) error
	Request(ctx context.Context) error
	Pending(ctx context.Context) error
	Accept(ctx context.Context) error
	Decline(ctx context.Context) error
	Withdraw(ctx context.Context) error
	ShowHistory(ctx context.Context) error
	Export(ctx context.Context) error
	Notifications(ctx context.Context) error
	Preferences(ctx context.Context) error
	Methods(ctx context.Context) error
	AddMethod(ctx context.Context) error
	Invoices(ctx context.Context) error
	Loans(ctx context.Context) error
}

// runREPL reads a command per line and dispatches to the app. Unknown
// commands are reported back. The loop exits on scanner EOF or "exit"/"quit".
// Handler errors are already reported to the user by the handlers, so the
// loop ignores them and keeps going.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("revpay> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: balance, deposit, send, request, pending, accept, decline, withdraw, history, export, notifications, prefs, methods, addmethod, invoices, loans, logout, exit")
			} else {
				printlnFn("Available commands: register, login, forgot, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "forgot":
			_ = a.ForgotPassword(ctx)

		case "exit", "quit":
			return

		default:
			if !a.isLoggedIn() {
				printlnFn("Please log in first (register, login, forgot, exit).")
				continue
			}
			switch cmd {
			case "balance":
				_ = a.Balance(ctx)
			case "deposit":
				_ = a.Deposit(ctx)
			case "send":
				_ = a.Send(ctx)
			case "request":
				_ = a.Request(ctx)
			case "pending":
				_ = a.Pending(ctx)
			case "accept":
				_ = a.Accept(ctx)
			case "decline":
				_ = a.Decline(ctx)
			case "withdraw":
				_ = a.Withdraw(ctx)
			case "history":
				_ = a.ShowHistory(ctx)
			case "export":
				_ = a.Export(ctx)
			case "notifications":
				_ = a.Notifications(ctx)
			case "prefs":
				_ = a.Preferences(ctx)
			case "methods":
				_ = a.Methods(ctx)
			case "addmethod":
				_ = a.AddMethod(ctx)
			case "invoices":
				_ = a.Invoices(ctx)
			case "loans":
				_ = a.Loans(ctx)
			case "logout":
				_ = a.Logout(ctx)
			default:
				printlnFn(fmt.Sprintf("Unknown command: %s", cmd))
			}
		}
	}
}

// Run starts the console loop reading from the app's input.
func (a *App) Run(ctx context.Context) {
	scanner := bufio.NewScanner(a.reader)
	runREPL(ctx, a, a.status, scanner)
}
