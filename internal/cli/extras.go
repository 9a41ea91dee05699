package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/revpay/internal/billing"
	"github.com/dmitrijs2005/revpay/internal/models"
	"github.com/shopspring/decimal"
)

// BillingService is the slice of the billing service the console uses.
type BillingService interface {
	AddPaymentMethod(ctx context.Context, params billing.AddMethodParams) (*models.PaymentMethod, error)
	ListPaymentMethods(ctx context.Context, accountID string) ([]*models.PaymentMethod, error)
	SetDefaultPaymentMethod(ctx context.Context, accountID, methodID string) error
	RemovePaymentMethod(ctx context.Context, accountID, methodID string) error
	MaskedNumber(pm *models.PaymentMethod) (string, error)
	CreateInvoice(ctx context.Context, businessID, transactionID, customerInfo, items, paymentTerms string, total decimal.Decimal) (*models.Invoice, error)
	ListInvoices(ctx context.Context, businessID string) ([]*models.Invoice, error)
	ApplyForLoan(ctx context.Context, accountID string, amount decimal.Decimal, purpose string) (*models.Loan, error)
	ListLoans(ctx context.Context, accountID string) ([]*models.Loan, error)
}

// Notifications lists unread notifications and marks them read.
func (a *App) Notifications(ctx context.Context) error {
	unread, err := a.notify.List(ctx, a.account.ID, true)
	if err != nil {
		fmt.Fprintf(a.out, "Could not list notifications: %v\n", err)
		return err
	}
	if len(unread) == 0 {
		fmt.Fprintln(a.out, "No new notifications.")
		return nil
	}
	for _, n := range unread {
		fmt.Fprintf(a.out, "[%s] %s\n", n.Type, n.Message)
		if err := a.notify.MarkRead(ctx, a.account.ID, n.ID); err != nil {
			a.logger.Warn(ctx, "mark read failed", "id", n.ID, "error", err)
		}
	}
	return nil
}

// Preferences toggles which notification kinds the account receives.
func (a *App) Preferences(ctx context.Context) error {
	current, err := a.notify.Preferences(ctx, a.account.ID)
	if err != nil {
		fmt.Fprintf(a.out, "Could not load preferences: %v\n", err)
		return err
	}

	kinds := []models.NotificationType{
		models.NotificationAlert,
		models.NotificationTransaction,
		models.NotificationSecurity,
	}
	enabled := make(map[models.NotificationType]bool, len(kinds))
	for _, kind := range kinds {
		state := "off"
		if current[kind] {
			state = "on"
		}
		answer, err := GetSimpleText(a.reader, fmt.Sprintf("%s notifications (currently %s), enable? y/n", kind, state), a.out)
		if err != nil {
			return err
		}
		enabled[kind] = strings.EqualFold(answer, "y") || strings.EqualFold(answer, "yes")
	}

	if err := a.notify.SetPreferences(ctx, a.account.ID, enabled); err != nil {
		fmt.Fprintf(a.out, "Could not save preferences: %v\n", err)
		return err
	}
	fmt.Fprintln(a.out, "Preferences saved.")
	return nil
}

// Methods lists stored payment methods with masked numbers.
func (a *App) Methods(ctx context.Context) error {
	methods, err := a.billing.ListPaymentMethods(ctx, a.account.ID)
	if err != nil {
		fmt.Fprintf(a.out, "Could not list payment methods: %v\n", err)
		return err
	}
	if len(methods) == 0 {
		fmt.Fprintln(a.out, "No payment methods on file.")
		return nil
	}
	for _, pm := range methods {
		masked, err := a.billing.MaskedNumber(pm)
		if err != nil {
			masked = "<unreadable>"
		}
		def := ""
		if pm.Default {
			def = "  (default)"
		}
		fmt.Fprintf(a.out, "%s  %-12s %s%s\n", pm.ID, pm.Type, masked, def)
	}
	return nil
}

// AddMethod stores a new card or bank account.
func (a *App) AddMethod(ctx context.Context) error {
	kind, err := GetSimpleText(a.reader, "Method type (card/bank)", a.out)
	if err != nil {
		return err
	}

	params := billing.AddMethodParams{AccountID: a.account.ID}
	switch strings.ToLower(kind) {
	case "card":
		params.Type = models.MethodCard
		if params.Number, err = GetSimpleText(a.reader, "Card number", a.out); err != nil {
			return err
		}
		if params.CardType, err = GetSimpleText(a.reader, "Card type (VISA/MC/...)", a.out); err != nil {
			return err
		}
		if params.ExpiryDate, err = GetSimpleText(a.reader, "Expiry (MM/YY)", a.out); err != nil {
			return err
		}
	case "bank":
		params.Type = models.MethodBank
		if params.Number, err = GetSimpleText(a.reader, "Account number", a.out); err != nil {
			return err
		}
		if params.BankName, err = GetSimpleText(a.reader, "Bank name", a.out); err != nil {
			return err
		}
	default:
		fmt.Fprintln(a.out, "Unknown method type.")
		return fmt.Errorf("unknown method type %q", kind)
	}

	def, err := GetSimpleText(a.reader, "Make default? y/n", a.out)
	if err != nil {
		return err
	}
	params.MakeDefault = strings.EqualFold(def, "y")

	if _, err := a.billing.AddPaymentMethod(ctx, params); err != nil {
		fmt.Fprintf(a.out, "Could not store the method: %v\n", err)
		return err
	}
	fmt.Fprintln(a.out, "Payment method stored.")
	return nil
}

// Invoices lists invoices for business accounts or creates a new one.
func (a *App) Invoices(ctx context.Context) error {
	if a.account.Type != models.AccountBusiness {
		fmt.Fprintln(a.out, "Invoices are available to business accounts only.")
		return nil
	}

	action, err := GetSimpleText(a.reader, "list or create?", a.out)
	if err != nil {
		return err
	}

	if strings.EqualFold(action, "create") {
		transactionID, err := GetSimpleText(a.reader, "Transaction ID to bill", a.out)
		if err != nil {
			return err
		}
		customer, err := GetSimpleText(a.reader, "Customer info", a.out)
		if err != nil {
			return err
		}
		items, err := GetSimpleText(a.reader, "Items", a.out)
		if err != nil {
			return err
		}
		terms, err := GetSimpleText(a.reader, "Payment terms", a.out)
		if err != nil {
			return err
		}
		total, err := GetAmount(a.reader, "Total amount", a.out)
		if err != nil {
			fmt.Fprintf(a.out, "%v\n", err)
			return err
		}
		inv, err := a.billing.CreateInvoice(ctx, a.account.ID, transactionID, customer, items, terms, total)
		if err != nil {
			fmt.Fprintf(a.out, "Could not create invoice: %v\n", err)
			return err
		}
		fmt.Fprintf(a.out, "Invoice %s created.\n", inv.ID)
		return nil
	}

	invoices, err := a.billing.ListInvoices(ctx, a.account.ID)
	if err != nil {
		fmt.Fprintf(a.out, "Could not list invoices: %v\n", err)
		return err
	}
	if len(invoices) == 0 {
		fmt.Fprintln(a.out, "No invoices.")
		return nil
	}
	for _, inv := range invoices {
		fmt.Fprintf(a.out, "%s  %-6s %10s  %s\n", inv.ID, inv.Status, inv.TotalAmount.StringFixed(2), inv.CustomerInfo)
	}
	return nil
}

// Loans applies for a loan or lists applications.
func (a *App) Loans(ctx context.Context) error {
	action, err := GetSimpleText(a.reader, "list or apply?", a.out)
	if err != nil {
		return err
	}

	if strings.EqualFold(action, "apply") {
		amount, err := GetAmount(a.reader, "Loan amount", a.out)
		if err != nil {
			fmt.Fprintf(a.out, "%v\n", err)
			return err
		}
		purpose, err := GetSimpleText(a.reader, "Purpose", a.out)
		if err != nil {
			return err
		}
		loan, err := a.billing.ApplyForLoan(ctx, a.account.ID, amount, purpose)
		if err != nil {
			fmt.Fprintf(a.out, "Application failed: %v\n", err)
			return err
		}
		fmt.Fprintf(a.out, "Application %s submitted.\n", loan.ID)
		return nil
	}

	loans, err := a.billing.ListLoans(ctx, a.account.ID)
	if err != nil {
		fmt.Fprintf(a.out, "Could not list loans: %v\n", err)
		return err
	}
	if len(loans) == 0 {
		fmt.Fprintln(a.out, "No loan applications.")
		return nil
	}
	for _, loan := range loans {
		fmt.Fprintf(a.out, "%s  %-8s %10s  %s\n", loan.ID, loan.Status, loan.Amount.StringFixed(2), loan.Purpose)
	}
	return nil
}
