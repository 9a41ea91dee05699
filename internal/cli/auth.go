package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/revpay/internal/auth"
	"github.com/dmitrijs2005/revpay/internal/models"
)

// Register walks through account creation: identity, password, transaction
// PIN, and security questions.
func (a *App) Register(ctx context.Context) error {
	fullName, err := GetSimpleText(a.reader, "Full name", a.out)
	if err != nil {
		return err
	}
	email, err := GetSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	phone, err := GetSimpleText(a.reader, "Phone", a.out)
	if err != nil {
		return err
	}

	accountType := models.AccountPersonal
	businessName := ""
	kind, err := GetSimpleText(a.reader, "Account type (personal/business)", a.out)
	if err != nil {
		return err
	}
	if kind == "business" {
		accountType = models.AccountBusiness
		if businessName, err = GetSimpleText(a.reader, "Business name", a.out); err != nil {
			return err
		}
	}

	password, err := GetSecret("Enter password", a.out)
	if err != nil {
		return err
	}
	pin, err := GetSecret("Choose a 4-digit transaction PIN", a.out)
	if err != nil {
		return err
	}

	questions := make(map[string]string)
	for {
		question, err := GetSimpleText(a.reader, "Security question (empty line to finish)", a.out)
		if err != nil || question == "" {
			break
		}
		answer, err := GetSimpleText(a.reader, "Answer", a.out)
		if err != nil {
			return err
		}
		questions[question] = answer
	}

	account, err := a.auth.Register(ctx, auth.RegisterParams{
		FullName:          fullName,
		Email:             email,
		Phone:             phone,
		Type:              accountType,
		BusinessName:      businessName,
		Password:          password,
		PIN:               pin,
		SecurityQuestions: questions,
	})
	if err != nil {
		fmt.Fprintf(a.out, "Registration failed: %v\n", err)
		return err
	}

	fmt.Fprintf(a.out, "Welcome, %s! Your account is ready.\n", account.FullName)
	return nil
}

// Login authenticates by email or phone.
func (a *App) Login(ctx context.Context) error {
	identifier, err := GetSimpleText(a.reader, "Email or phone", a.out)
	if err != nil {
		return err
	}
	password, err := GetSecret("Enter password", a.out)
	if err != nil {
		return err
	}

	account, token, err := a.auth.Login(ctx, identifier, password)
	if err != nil {
		fmt.Fprintf(a.out, "Login failed: %v\n", err)
		return err
	}

	a.account = account
	a.token = token
	fmt.Fprintf(a.out, "Logged in as %s. Balance: %s\n", account.Email, account.Balance.StringFixed(2))
	return nil
}

// Logout clears the session.
func (a *App) Logout(ctx context.Context) error {
	a.account = nil
	a.token = ""
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

// ForgotPassword gates a password reset behind the account's security
// questions and a one-time code.
func (a *App) ForgotPassword(ctx context.Context) error {
	identifier, err := GetSimpleText(a.reader, "Email or phone", a.out)
	if err != nil {
		return err
	}
	account, err := a.wallet.ResolveIdentifier(ctx, identifier)
	if err != nil {
		fmt.Fprintln(a.out, "Account not found.")
		return err
	}

	answers := make(map[string]string)
	for {
		question, err := GetSimpleText(a.reader, "Security question you registered (empty line to finish)", a.out)
		if err != nil || question == "" {
			break
		}
		answer, err := GetSimpleText(a.reader, "Answer", a.out)
		if err != nil {
			return err
		}
		answers[question] = answer
	}

	if err := a.auth.AuthorizePasswordReset(ctx, account.ID, answers); err != nil {
		fmt.Fprintf(a.out, "Security answers did not match: %v\n", err)
		return err
	}

	code, err := a.auth.IssueOneTimeCode(account.ID)
	if err != nil {
		return err
	}
	// Without an SMS/email gateway the code is shown on the console.
	fmt.Fprintf(a.out, "Your one-time code: %s\n", code)

	entered, err := GetSimpleText(a.reader, "Enter the one-time code", a.out)
	if err != nil {
		return err
	}
	if !a.auth.VerifyOneTimeCode(account.ID, entered) {
		fmt.Fprintln(a.out, "Invalid code.")
		return fmt.Errorf("invalid one-time code")
	}

	newPassword, err := GetSecret("New password", a.out)
	if err != nil {
		return err
	}
	if err := a.auth.ResetPassword(ctx, account, newPassword); err != nil {
		fmt.Fprintf(a.out, "Password reset failed: %v\n", err)
		return err
	}
	fmt.Fprintln(a.out, "Password updated.")
	return nil
}

// requirePIN prompts for the transaction PIN, allowing pinAttempts tries.
// Exhaustion aborts the operation without touching the login lockout.
func (a *App) requirePIN(ctx context.Context) error {
	for attempt := 1; attempt <= pinAttempts; attempt++ {
		pin, err := GetSecret("Transaction PIN", a.out)
		if err != nil {
			return err
		}
		ok, err := a.auth.VerifyPIN(a.account, pin)
		if err != nil {
			fmt.Fprintf(a.out, "%v\n", err)
			continue
		}
		if ok {
			return nil
		}
		fmt.Fprintf(a.out, "Wrong PIN. Attempts left: %d\n", pinAttempts-attempt)
	}
	fmt.Fprintln(a.out, "Too many wrong PIN entries.")
	return errPINExhausted
}
