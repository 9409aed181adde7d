package services

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/Alltrendsfy/zenith-sub000/src/models"
)

func TestSettlePayableMovesBalance(t *testing.T) {
	newTestDB(t)
	userID := createTestUser(t, "settle-payable")
	account := createTestAccount(t, userID, "Conta Corrente", "1000.00")
	obligation := createTestObligation(t, userID, ObligationInput{
		Type:        models.TypePayable,
		Description: "Fornecedor",
		TotalAmount: dec("300.00"),
		IssueDate:   "2025-03-01",
		DueDate:     "2025-03-10",
	})

	svc := NewSettlementService(nil)
	result, err := svc.SettlePayable(userID, obligation.ID, SettlementInput{
		Amount:        dec("300.00"),
		PaymentDate:   "2025-03-10",
		PaymentMethod: "pix",
		BankAccountID: account.ID,
	})
	if err != nil {
		t.Fatalf("SettlePayable() error: %v", err)
	}

	if result.Obligation.Status != models.StatusPago {
		t.Errorf("obligation status = %q, want %q", result.Obligation.Status, models.StatusPago)
	}
	assertDecimalEqual(t, "settled amount", result.Obligation.SettledAmount, dec("300.00"))
	assertDecimalEqual(t, "payment amount", result.Payment.Amount, dec("300.00"))
	if result.Payment.Reference == "" {
		t.Error("payment reference was not generated")
	}

	reloaded, err := NewAccountService().GetAccount(userID, account.ID)
	if err != nil {
		t.Fatalf("GetAccount() error: %v", err)
	}
	assertDecimalEqual(t, "account balance", reloaded.Balance, dec("700.00"))
}

func TestSettleReceivableCreditsBalance(t *testing.T) {
	newTestDB(t)
	userID := createTestUser(t, "settle-receivable")
	account := createTestAccount(t, userID, "Conta Corrente", "1000.00")
	obligation := createTestObligation(t, userID, ObligationInput{
		Type:        models.TypeReceivable,
		Description: "Cliente",
		TotalAmount: dec("200.00"),
		IssueDate:   "2025-03-01",
		DueDate:     "2025-03-15",
	})

	_, err := NewSettlementService(nil).SettleReceivable(userID, obligation.ID, SettlementInput{
		Amount:        dec("200.00"),
		PaymentDate:   "2025-03-15",
		BankAccountID: account.ID,
	})
	if err != nil {
		t.Fatalf("SettleReceivable() error: %v", err)
	}

	reloaded, err := NewAccountService().GetAccount(userID, account.ID)
	if err != nil {
		t.Fatalf("GetAccount() error: %v", err)
	}
	assertDecimalEqual(t, "account balance", reloaded.Balance, dec("1200.00"))
}

func TestSettlePartialThenFull(t *testing.T) {
	newTestDB(t)
	userID := createTestUser(t, "settle-partial")
	obligation := createTestObligation(t, userID, ObligationInput{
		Type:        models.TypePayable,
		Description: "Parcelado",
		TotalAmount: dec("300.00"),
		IssueDate:   "2025-03-01",
		DueDate:     "2025-03-10",
	})

	svc := NewSettlementService(nil)
	result, err := svc.SettlePayable(userID, obligation.ID, SettlementInput{
		Amount:      dec("100.00"),
		PaymentDate: "2025-03-05",
	})
	if err != nil {
		t.Fatalf("first SettlePayable() error: %v", err)
	}
	if result.Obligation.Status != models.StatusParcial {
		t.Errorf("status after partial = %q, want %q", result.Obligation.Status, models.StatusParcial)
	}
	assertDecimalEqual(t, "settled after partial", result.Obligation.SettledAmount, dec("100.00"))

	result, err = svc.SettlePayable(userID, obligation.ID, SettlementInput{
		Amount:      dec("200.00"),
		PaymentDate: "2025-03-10",
	})
	if err != nil {
		t.Fatalf("second SettlePayable() error: %v", err)
	}
	if result.Obligation.Status != models.StatusPago {
		t.Errorf("status after full = %q, want %q", result.Obligation.Status, models.StatusPago)
	}
	assertDecimalEqual(t, "settled after full", result.Obligation.SettledAmount, dec("300.00"))

	payments, err := svc.ListPayments(userID, obligation.ID)
	if err != nil {
		t.Fatalf("ListPayments() error: %v", err)
	}
	if len(payments) != 2 {
		t.Errorf("ListPayments() returned %d rows, want 2", len(payments))
	}
}

func TestSettleRejectsNonPositiveAmount(t *testing.T) {
	newTestDB(t)
	userID := createTestUser(t, "settle-nonpositive")
	obligation := createTestObligation(t, userID, ObligationInput{
		Type:        models.TypePayable,
		Description: "Qualquer",
		TotalAmount: dec("50.00"),
		IssueDate:   "2025-03-01",
		DueDate:     "2025-03-10",
	})

	svc := NewSettlementService(nil)
	for _, amount := range []decimal.Decimal{decimal.Zero, dec("-10.00")} {
		_, err := svc.SettlePayable(userID, obligation.ID, SettlementInput{Amount: amount})
		if !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("SettlePayable(%s) error = %v, want ErrInvalidAmount", amount, err)
		}
	}
}

func TestSettleRejectsTerminalStates(t *testing.T) {
	newTestDB(t)
	userID := createTestUser(t, "settle-terminal")
	svc := NewSettlementService(nil)

	paid := createTestObligation(t, userID, ObligationInput{
		Type:        models.TypePayable,
		Description: "Pago",
		TotalAmount: dec("50.00"),
		IssueDate:   "2025-03-01",
		DueDate:     "2025-03-10",
	})
	if _, err := svc.SettlePayable(userID, paid.ID, SettlementInput{Amount: dec("50.00")}); err != nil {
		t.Fatalf("settling to pago: %v", err)
	}
	_, err := svc.SettlePayable(userID, paid.ID, SettlementInput{Amount: dec("10.00")})
	if !errors.Is(err, ErrInvalidState) {
		t.Errorf("settling a paid obligation error = %v, want ErrInvalidState", err)
	}

	cancelled := createTestObligation(t, userID, ObligationInput{
		Type:        models.TypePayable,
		Description: "Cancelado",
		TotalAmount: dec("50.00"),
		IssueDate:   "2025-03-01",
		DueDate:     "2025-03-10",
	})
	if _, err := NewObligationService().Cancel(userID, cancelled.ID); err != nil {
		t.Fatalf("cancelling obligation: %v", err)
	}
	_, err = svc.SettlePayable(userID, cancelled.ID, SettlementInput{Amount: dec("10.00")})
	if !errors.Is(err, ErrInvalidState) {
		t.Errorf("settling a cancelled obligation error = %v, want ErrInvalidState", err)
	}
}

func TestSettleTypeMismatchIsNotFound(t *testing.T) {
	newTestDB(t)
	userID := createTestUser(t, "settle-mismatch")
	obligation := createTestObligation(t, userID, ObligationInput{
		Type:        models.TypeReceivable,
		Description: "Venda",
		TotalAmount: dec("80.00"),
		IssueDate:   "2025-03-01",
		DueDate:     "2025-03-10",
	})

	_, err := NewSettlementService(nil).SettlePayable(userID, obligation.ID, SettlementInput{
		Amount: dec("80.00"),
	})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("SettlePayable() on a receivable error = %v, want ErrNotFound", err)
	}
}

func TestSettleDuplicateReferenceRejected(t *testing.T) {
	newTestDB(t)
	userID := createTestUser(t, "settle-duplicate-ref")
	account := createTestAccount(t, userID, "Conta", "1000.00")
	obligation := createTestObligation(t, userID, ObligationInput{
		Type:        models.TypePayable,
		Description: "Retry",
		TotalAmount: dec("300.00"),
		IssueDate:   "2025-03-01",
		DueDate:     "2025-03-10",
	})

	svc := NewSettlementService(nil)
	input := SettlementInput{
		Amount:        dec("100.00"),
		PaymentDate:   "2025-03-05",
		BankAccountID: account.ID,
		Reference:     "retry-abc-123",
	}
	if _, err := svc.SettlePayable(userID, obligation.ID, input); err != nil {
		t.Fatalf("first settle: %v", err)
	}

	// A retried request carries the same reference and must not apply twice.
	_, err := svc.SettlePayable(userID, obligation.ID, input)
	if !errors.Is(err, ErrInvalidState) {
		t.Errorf("duplicate reference error = %v, want ErrInvalidState", err)
	}

	reloaded, err := NewAccountService().GetAccount(userID, account.ID)
	if err != nil {
		t.Fatalf("GetAccount() error: %v", err)
	}
	assertDecimalEqual(t, "balance after rejected retry", reloaded.Balance, dec("900.00"))
}

func TestSettleUnknownObligation(t *testing.T) {
	newTestDB(t)
	userID := createTestUser(t, "settle-unknown")

	_, err := NewSettlementService(nil).SettlePayable(userID, 42, SettlementInput{Amount: dec("10.00")})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("SettlePayable() on missing obligation error = %v, want ErrNotFound", err)
	}
}

func TestSettleUnknownBankAccountRollsBack(t *testing.T) {
	newTestDB(t)
	userID := createTestUser(t, "settle-bad-account")
	obligation := createTestObligation(t, userID, ObligationInput{
		Type:        models.TypePayable,
		Description: "Conta inexistente",
		TotalAmount: dec("100.00"),
		IssueDate:   "2025-03-01",
		DueDate:     "2025-03-10",
	})

	svc := NewSettlementService(nil)
	_, err := svc.SettlePayable(userID, obligation.ID, SettlementInput{
		Amount:        dec("100.00"),
		BankAccountID: 999,
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("settle with missing account error = %v, want ErrNotFound", err)
	}

	// The whole settlement rolled back: no payment row, obligation untouched.
	payments, err := svc.ListPayments(userID, obligation.ID)
	if err != nil {
		t.Fatalf("ListPayments() error: %v", err)
	}
	if len(payments) != 0 {
		t.Errorf("ListPayments() returned %d rows after rollback, want 0", len(payments))
	}
	reloaded, err := NewObligationService().Get(userID, obligation.ID)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if reloaded.Status != models.StatusPendente {
		t.Errorf("obligation status after rollback = %q, want %q", reloaded.Status, models.StatusPendente)
	}
	assertDecimalEqual(t, "settled amount after rollback", reloaded.SettledAmount, decimal.Zero)
}
