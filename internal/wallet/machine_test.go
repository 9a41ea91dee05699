package wallet

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/dmitrijs2005/revpay/internal/common"
	"github.com/dmitrijs2005/revpay/internal/models"
)

func TestSendMoney(t *testing.T) {
	svc, rm, notifier := newTestService(t)
	a := rm.s.addAccount("a@example.com", dec("100"))
	b := rm.s.addAccount("b@example.com", dec("0"))

	created, err := svc.SendMoney(context.Background(), a.ID, "b@example.com", dec("40"), "lunch")
	if err != nil {
		t.Fatalf("SendMoney error: %v", err)
	}

	if created.Type != models.TransactionSend || created.Status != models.StatusCompleted {
		t.Fatalf("record = %s/%s, want SEND/COMPLETED", created.Type, created.Status)
	}
	if created.ReceiverID != b.ID {
		t.Fatalf("receiver = %q, want %q", created.ReceiverID, b.ID)
	}
	if !rm.s.balance(a.ID).Equal(dec("60")) || !rm.s.balance(b.ID).Equal(dec("40")) {
		t.Fatal("balances not moved")
	}
	if notifier.count(a.ID) != 1 || notifier.count(b.ID) != 1 {
		t.Error("both parties should be notified once")
	}
}

func TestSendMoney_ByPhone(t *testing.T) {
	svc, rm, _ := newTestService(t)
	a := rm.s.addAccount("a@example.com", dec("100"))
	b := rm.s.addAccount("b@example.com", dec("0"))

	if _, err := svc.SendMoney(context.Background(), a.ID, b.Phone, dec("1"), ""); err != nil {
		t.Fatalf("SendMoney by phone error: %v", err)
	}
}

func TestSendMoney_ReceiverNotFound(t *testing.T) {
	svc, rm, _ := newTestService(t)
	a := rm.s.addAccount("a@example.com", dec("100"))

	_, err := svc.SendMoney(context.Background(), a.ID, "ghost@example.com", dec("1"), "")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestSendMoney_SelfRejected(t *testing.T) {
	svc, rm, _ := newTestService(t)
	a := rm.s.addAccount("a@example.com", dec("100"))

	_, err := svc.SendMoney(context.Background(), a.ID, "a@example.com", dec("1"), "")
	if !errors.Is(err, common.ErrInvalidTarget) {
		t.Fatalf("error = %v, want ErrInvalidTarget", err)
	}
}

func TestSendMoney_InsufficientLeavesNoRecord(t *testing.T) {
	svc, rm, _ := newTestService(t)
	a := rm.s.addAccount("a@example.com", dec("10"))
	rm.s.addAccount("b@example.com", dec("0"))

	_, err := svc.SendMoney(context.Background(), a.ID, "b@example.com", dec("11"), "")
	if !errors.Is(err, common.ErrInsufficientBalance) {
		t.Fatalf("error = %v, want ErrInsufficientBalance", err)
	}
	if len(rm.s.transactions) != 0 {
		t.Fatal("failed send left a record")
	}
	if !rm.s.balance(a.ID).Equal(dec("10")) {
		t.Fatal("balance mutated")
	}
}

func TestRequestMoney(t *testing.T) {
	svc, rm, notifier := newTestService(t)
	requester := rm.s.addAccount("req@example.com", dec("0"))
	payer := rm.s.addAccount("payer@example.com", dec("100"))

	created, err := svc.RequestMoney(context.Background(), requester.ID, "payer@example.com", dec("25"), "rent")
	if err != nil {
		t.Fatalf("RequestMoney error: %v", err)
	}

	if created.Type != models.TransactionRequest || created.Status != models.StatusPending {
		t.Fatalf("record = %s/%s, want REQUEST/PENDING", created.Type, created.Status)
	}
	if created.SenderID != requester.ID || created.ReceiverID != payer.ID {
		t.Fatal("request parties recorded wrong way around")
	}
	// No balance touched at creation.
	if !rm.s.balance(payer.ID).Equal(dec("100")) || !rm.s.balance(requester.ID).Equal(dec("0")) {
		t.Fatal("request creation moved a balance")
	}
	if notifier.count(payer.ID) != 1 {
		t.Error("payer should be notified")
	}
}

func TestRequestMoney_SelfRejected(t *testing.T) {
	svc, rm, _ := newTestService(t)
	a := rm.s.addAccount("a@example.com", dec("0"))

	if _, err := svc.RequestMoney(context.Background(), a.ID, "a@example.com", dec("1"), ""); !errors.Is(err, common.ErrInvalidTarget) {
		t.Fatalf("error = %v, want ErrInvalidTarget", err)
	}
}

func TestAcceptRequest(t *testing.T) {
	svc, rm, _ := newTestService(t)
	requester := rm.s.addAccount("req@example.com", dec("0"))
	payer := rm.s.addAccount("payer@example.com", dec("100"))

	created, err := svc.RequestMoney(context.Background(), requester.ID, "payer@example.com", dec("25"), "")
	if err != nil {
		t.Fatalf("RequestMoney error: %v", err)
	}

	if err := svc.AcceptRequest(context.Background(), created.ID, payer.ID); err != nil {
		t.Fatalf("AcceptRequest error: %v", err)
	}

	settled := rm.s.transaction(created.ID)
	if settled.Type != models.TransactionSend || settled.Status != models.StatusCompleted {
		t.Fatalf("settled record = %s/%s, want SEND/COMPLETED", settled.Type, settled.Status)
	}
	if !rm.s.balance(payer.ID).Equal(dec("75")) || !rm.s.balance(requester.ID).Equal(dec("25")) {
		t.Fatal("settlement balances wrong")
	}
}

func TestAcceptRequest_Unauthorized(t *testing.T) {
	svc, rm, _ := newTestService(t)
	requester := rm.s.addAccount("req@example.com", dec("0"))
	rm.s.addAccount("payer@example.com", dec("100"))
	other := rm.s.addAccount("other@example.com", dec("100"))

	created, _ := svc.RequestMoney(context.Background(), requester.ID, "payer@example.com", dec("25"), "")

	if err := svc.AcceptRequest(context.Background(), created.ID, other.ID); !errors.Is(err, common.ErrUnauthorized) {
		t.Fatalf("error = %v, want ErrUnauthorized", err)
	}
	if got := rm.s.transaction(created.ID); got.Status != models.StatusPending {
		t.Fatal("unauthorized accept mutated the request")
	}
}

func TestAcceptRequest_AlreadyProcessed(t *testing.T) {
	svc, rm, _ := newTestService(t)
	requester := rm.s.addAccount("req@example.com", dec("0"))
	payer := rm.s.addAccount("payer@example.com", dec("100"))

	created, _ := svc.RequestMoney(context.Background(), requester.ID, "payer@example.com", dec("25"), "")

	if err := svc.AcceptRequest(context.Background(), created.ID, payer.ID); err != nil {
		t.Fatalf("first accept error: %v", err)
	}
	if err := svc.AcceptRequest(context.Background(), created.ID, payer.ID); !errors.Is(err, common.ErrAlreadyProcessed) {
		t.Fatalf("second accept error = %v, want ErrAlreadyProcessed", err)
	}

	// State and balances unchanged by the failed second accept.
	if !rm.s.balance(payer.ID).Equal(dec("75")) || !rm.s.balance(requester.ID).Equal(dec("25")) {
		t.Fatal("second accept moved balances")
	}
}

func TestAcceptRequest_InsufficientLeavesPending(t *testing.T) {
	svc, rm, _ := newTestService(t)
	requester := rm.s.addAccount("req@example.com", dec("0"))
	payer := rm.s.addAccount("payer@example.com", dec("10"))

	created, _ := svc.RequestMoney(context.Background(), requester.ID, "payer@example.com", dec("25"), "")

	if err := svc.AcceptRequest(context.Background(), created.ID, payer.ID); !errors.Is(err, common.ErrInsufficientBalance) {
		t.Fatalf("error = %v, want ErrInsufficientBalance", err)
	}

	// The request stays PENDING; decline is not forced.
	if got := rm.s.transaction(created.ID); got.Status != models.StatusPending || got.Type != models.TransactionRequest {
		t.Fatalf("record = %s/%s, want REQUEST/PENDING", got.Type, got.Status)
	}
	if !rm.s.balance(payer.ID).Equal(dec("10")) {
		t.Fatal("failed settlement mutated balance")
	}
}

func TestDeclineRequest(t *testing.T) {
	svc, rm, _ := newTestService(t)
	requester := rm.s.addAccount("req@example.com", dec("0"))
	payer := rm.s.addAccount("payer@example.com", dec("100"))

	created, _ := svc.RequestMoney(context.Background(), requester.ID, "payer@example.com", dec("25"), "")

	if err := svc.DeclineRequest(context.Background(), created.ID, payer.ID); err != nil {
		t.Fatalf("DeclineRequest error: %v", err)
	}

	declined := rm.s.transaction(created.ID)
	if declined.Status != models.StatusDeclined || declined.Type != models.TransactionRequest {
		t.Fatalf("record = %s/%s, want REQUEST/DECLINED", declined.Type, declined.Status)
	}
	if !rm.s.balance(payer.ID).Equal(dec("100")) {
		t.Fatal("decline moved a balance")
	}

	if err := svc.AcceptRequest(context.Background(), created.ID, payer.ID); !errors.Is(err, common.ErrAlreadyProcessed) {
		t.Fatalf("accept after decline error = %v, want ErrAlreadyProcessed", err)
	}
}

// Two concurrent accepts of one request: exactly one settles.
func TestAcceptRequest_SingleWinner(t *testing.T) {
	svc, rm, _ := newTestService(t)
	requester := rm.s.addAccount("req@example.com", dec("0"))
	payer := rm.s.addAccount("payer@example.com", dec("100"))

	created, _ := svc.RequestMoney(context.Background(), requester.ID, "payer@example.com", dec("25"), "")

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- svc.AcceptRequest(context.Background(), created.ID, payer.ID)
		}()
	}
	wg.Wait()
	close(errs)

	var ok, processed int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, common.ErrAlreadyProcessed):
			processed++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || processed != 1 {
		t.Fatalf("ok = %d, processed = %d; want 1 and 1", ok, processed)
	}
	if !rm.s.balance(payer.ID).Equal(dec("75")) {
		t.Fatalf("payer balance = %s, want 75 (settled exactly once)", rm.s.balance(payer.ID))
	}
}

func TestWithdrawMoney(t *testing.T) {
	svc, rm, _ := newTestService(t)
	a := rm.s.addAccount("a@example.com", dec("50"))

	created, err := svc.WithdrawMoney(context.Background(), a.ID, dec("20"), "atm")
	if err != nil {
		t.Fatalf("WithdrawMoney error: %v", err)
	}

	if created.Type != models.TransactionWithdraw || created.Status != models.StatusCompleted {
		t.Fatalf("record = %s/%s, want WITHDRAW/COMPLETED", created.Type, created.Status)
	}
	if created.ReceiverID != "" {
		t.Fatal("withdrawal must have no receiver")
	}
	if !rm.s.balance(a.ID).Equal(dec("30")) {
		t.Fatalf("balance = %s, want 30", rm.s.balance(a.ID))
	}
}

func TestWithdrawMoney_Insufficient(t *testing.T) {
	svc, rm, _ := newTestService(t)
	a := rm.s.addAccount("a@example.com", dec("50"))

	if _, err := svc.WithdrawMoney(context.Background(), a.ID, dec("1000"), ""); !errors.Is(err, common.ErrInsufficientBalance) {
		t.Fatalf("error = %v, want ErrInsufficientBalance", err)
	}
	if !rm.s.balance(a.ID).Equal(dec("50")) || len(rm.s.transactions) != 0 {
		t.Fatal("failed withdrawal mutated state")
	}
}

func TestPendingRequests(t *testing.T) {
	svc, rm, _ := newTestService(t)
	requester := rm.s.addAccount("req@example.com", dec("0"))
	payer := rm.s.addAccount("payer@example.com", dec("100"))

	first, _ := svc.RequestMoney(context.Background(), requester.ID, "payer@example.com", dec("5"), "")
	second, _ := svc.RequestMoney(context.Background(), requester.ID, "payer@example.com", dec("7"), "")
	_ = svc.DeclineRequest(context.Background(), first.ID, payer.ID)

	pending, err := svc.PendingRequests(context.Background(), payer.ID)
	if err != nil {
		t.Fatalf("PendingRequests error: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != second.ID {
		t.Fatalf("pending = %+v, want just %s", pending, second.ID)
	}
}

func TestDeposit(t *testing.T) {
	svc, rm, notifier := newTestService(t)
	a := rm.s.addAccount("a@example.com", dec("0"))

	if err := svc.Deposit(context.Background(), a.ID, dec("99.99")); err != nil {
		t.Fatalf("Deposit error: %v", err)
	}
	if !rm.s.balance(a.ID).Equal(dec("99.99")) {
		t.Fatal("deposit not applied")
	}
	if notifier.count(a.ID) != 1 {
		t.Error("depositor should be notified")
	}
}

// End-to-end walk: A=100, B=0; A sends 40; B requests 25 from A; A accepts;
// A withdraws 1000 and fails.
func TestWalletScenario(t *testing.T) {
	svc, rm, _ := newTestService(t)
	ctx := context.Background()
	a := rm.s.addAccount("a@example.com", dec("100"))
	b := rm.s.addAccount("b@example.com", dec("0"))

	send, err := svc.SendMoney(ctx, a.ID, "b@example.com", dec("40"), "")
	if err != nil {
		t.Fatalf("SendMoney error: %v", err)
	}
	if !rm.s.balance(a.ID).Equal(dec("60")) || !rm.s.balance(b.ID).Equal(dec("40")) {
		t.Fatal("after send: wrong balances")
	}
	if got := rm.s.transaction(send.ID); got.Type != models.TransactionSend || got.Status != models.StatusCompleted {
		t.Fatal("after send: wrong record")
	}

	request, err := svc.RequestMoney(ctx, b.ID, "a@example.com", dec("25"), "")
	if err != nil {
		t.Fatalf("RequestMoney error: %v", err)
	}
	if err := svc.AcceptRequest(ctx, request.ID, a.ID); err != nil {
		t.Fatalf("AcceptRequest error: %v", err)
	}
	if !rm.s.balance(a.ID).Equal(dec("35")) || !rm.s.balance(b.ID).Equal(dec("65")) {
		t.Fatalf("after accept: %s/%s, want 35/65", rm.s.balance(a.ID), rm.s.balance(b.ID))
	}
	if got := rm.s.transaction(request.ID); got.Type != models.TransactionSend || got.Status != models.StatusCompleted {
		t.Fatal("after accept: request not rewritten to COMPLETED SEND")
	}

	if _, err := svc.WithdrawMoney(ctx, a.ID, dec("1000"), ""); !errors.Is(err, common.ErrInsufficientBalance) {
		t.Fatalf("withdraw error = %v, want ErrInsufficientBalance", err)
	}
	if !rm.s.balance(a.ID).Equal(dec("35")) {
		t.Fatal("failed withdrawal changed balance")
	}
}
