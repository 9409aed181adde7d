package services

import (
	"errors"
	"testing"

	"github.com/Alltrendsfy/zenith-sub000/src/models"
)

func TestCreateAccountSetsBothBalances(t *testing.T) {
	newTestDB(t)
	userID := createTestUser(t, "acct-create")

	account := createTestAccount(t, userID, "Conta Corrente", "2500.00")
	assertDecimalEqual(t, "balance", account.Balance, dec("2500.00"))
	assertDecimalEqual(t, "initial balance", account.InitialBalance, dec("2500.00"))

	reloaded, err := NewAccountService().GetAccount(userID, account.ID)
	if err != nil {
		t.Fatalf("GetAccount() error: %v", err)
	}
	assertDecimalEqual(t, "persisted balance", reloaded.Balance, dec("2500.00"))
	assertDecimalEqual(t, "persisted initial balance", reloaded.InitialBalance, dec("2500.00"))
}

func TestCreateAccountRequiresName(t *testing.T) {
	newTestDB(t)
	userID := createTestUser(t, "acct-noname")

	_, err := NewAccountService().CreateAccount(userID, AccountInput{Name: "   "})
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("CreateAccount() with blank name error = %v, want ErrInvalidInput", err)
	}
}

func TestRenameAccount(t *testing.T) {
	newTestDB(t)
	userID := createTestUser(t, "acct-rename")
	account := createTestAccount(t, userID, "Antiga", "0.00")

	renamed, err := NewAccountService().RenameAccount(userID, account.ID, "Nova")
	if err != nil {
		t.Fatalf("RenameAccount() error: %v", err)
	}
	if renamed.Name != "Nova" {
		t.Errorf("name = %q, want %q", renamed.Name, "Nova")
	}

	if _, err := NewAccountService().RenameAccount(userID, 999, "Fantasma"); !errors.Is(err, ErrNotFound) {
		t.Errorf("renaming missing account error = %v, want ErrNotFound", err)
	}
}

func TestDeleteAccountGuards(t *testing.T) {
	newTestDB(t)
	userID := createTestUser(t, "acct-delete")
	svc := NewAccountService()

	// Blocked by a payment.
	withPayment := createTestAccount(t, userID, "Com pagamento", "100.00")
	obligation := createTestObligation(t, userID, ObligationInput{
		Type:        models.TypePayable,
		Description: "Conta de luz",
		TotalAmount: dec("60.00"),
		IssueDate:   "2025-01-01",
		DueDate:     "2025-01-10",
	})
	if _, err := NewSettlementService(nil).SettlePayable(userID, obligation.ID, SettlementInput{
		Amount:        dec("60.00"),
		BankAccountID: withPayment.ID,
	}); err != nil {
		t.Fatalf("settling: %v", err)
	}
	if err := svc.DeleteAccount(userID, withPayment.ID); !errors.Is(err, ErrHasDependents) {
		t.Errorf("deleting account with payments error = %v, want ErrHasDependents", err)
	}

	// Blocked by a transfer on either side.
	from := createTestAccount(t, userID, "Origem", "100.00")
	to := createTestAccount(t, userID, "Destino", "0.00")
	if _, err := NewTransferService(nil).CreateTransfer(userID, TransferInput{
		FromAccountID: from.ID,
		ToAccountID:   to.ID,
		Amount:        dec("50.00"),
	}); err != nil {
		t.Fatalf("transferring: %v", err)
	}
	if err := svc.DeleteAccount(userID, from.ID); !errors.Is(err, ErrHasDependents) {
		t.Errorf("deleting transfer source error = %v, want ErrHasDependents", err)
	}
	if err := svc.DeleteAccount(userID, to.ID); !errors.Is(err, ErrHasDependents) {
		t.Errorf("deleting transfer destination error = %v, want ErrHasDependents", err)
	}

	// Blocked by an obligation default-account reference.
	referenced := createTestAccount(t, userID, "Referenciada", "0.00")
	createTestObligation(t, userID, ObligationInput{
		Type:          models.TypePayable,
		Description:   "Debito automatico",
		TotalAmount:   dec("20.00"),
		IssueDate:     "2025-01-01",
		DueDate:       "2025-01-10",
		BankAccountID: referenced.ID,
	})
	if err := svc.DeleteAccount(userID, referenced.ID); !errors.Is(err, ErrHasDependents) {
		t.Errorf("deleting referenced account error = %v, want ErrHasDependents", err)
	}

	// An untouched account deletes cleanly.
	free := createTestAccount(t, userID, "Livre", "0.00")
	if err := svc.DeleteAccount(userID, free.ID); err != nil {
		t.Fatalf("DeleteAccount() of free account error: %v", err)
	}
	if _, err := svc.GetAccount(userID, free.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetAccount() after delete error = %v, want ErrNotFound", err)
	}
}

func TestListAccountsScopedToUser(t *testing.T) {
	newTestDB(t)
	alice := createTestUser(t, "acct-alice")
	bob := createTestUser(t, "acct-bob")
	createTestAccount(t, alice, "Conta Alice", "10.00")
	createTestAccount(t, bob, "Conta Bob", "20.00")

	accounts, err := NewAccountService().ListAccounts(alice)
	if err != nil {
		t.Fatalf("ListAccounts() error: %v", err)
	}
	if len(accounts) != 1 {
		t.Fatalf("ListAccounts() returned %d accounts, want 1", len(accounts))
	}
	if accounts[0].Name != "Conta Alice" {
		t.Errorf("account name = %q, want %q", accounts[0].Name, "Conta Alice")
	}
}
