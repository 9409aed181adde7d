package services

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/Alltrendsfy/zenith-sub000/src/database"
	"github.com/Alltrendsfy/zenith-sub000/src/logger"
	"github.com/Alltrendsfy/zenith-sub000/src/models"
	"github.com/Alltrendsfy/zenith-sub000/src/security/validation"
)

type accountServiceImpl struct{}

func NewAccountService() AccountService {
	return &accountServiceImpl{}
}

// CreateAccount opens an account. The opening balance is written to both
// balance columns: balance then moves with settlements and transfers while
// initial_balance stays frozen as the statement baseline.
func (s *accountServiceImpl) CreateAccount(userID int64, input AccountInput) (*models.BankAccount, error) {
	input.Name = validation.SanitizeDescription(input.Name)
	if input.Name == "" {
		return nil, fmt.Errorf("%w: account name is required", ErrInvalidInput)
	}

	account := models.BankAccount{
		UserID:         userID,
		Name:           input.Name,
		Balance:        input.InitialBalance,
		InitialBalance: input.InitialBalance,
	}
	if err := account.Create(database.DB); err != nil {
		return nil, fmt.Errorf("creating bank account: %w", err)
	}

	logger.L.Info("Bank account created", "userID", userID, "accountID", account.ID)
	return &account, nil
}

func (s *accountServiceImpl) GetAccount(userID, id int64) (*models.BankAccount, error) {
	account, err := models.GetBankAccountByID(database.DB, userID, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: bank account %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("loading bank account %d: %w", id, err)
	}
	return account, nil
}

func (s *accountServiceImpl) ListAccounts(userID int64) ([]models.BankAccount, error) {
	accounts, err := models.ListBankAccounts(database.DB, userID)
	if err != nil {
		return nil, fmt.Errorf("listing bank accounts: %w", err)
	}
	if accounts == nil {
		accounts = []models.BankAccount{}
	}
	return accounts, nil
}

func (s *accountServiceImpl) RenameAccount(userID, id int64, name string) (*models.BankAccount, error) {
	name = validation.SanitizeDescription(name)
	if name == "" {
		return nil, fmt.Errorf("%w: account name is required", ErrInvalidInput)
	}
	ok, err := models.RenameBankAccount(database.DB, userID, id, name)
	if err != nil {
		return nil, fmt.Errorf("renaming bank account %d: %w", id, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: bank account %d", ErrNotFound, id)
	}
	return s.GetAccount(userID, id)
}

// DeleteAccount removes an account only when no payment, transfer or
// obligation still references it.
func (s *accountServiceImpl) DeleteAccount(userID, id int64) error {
	if _, err := s.GetAccount(userID, id); err != nil {
		return err
	}

	payments, transfers, obligations, err := models.CountBankAccountDependents(database.DB, userID, id)
	if err != nil {
		return fmt.Errorf("counting dependents of bank account %d: %w", id, err)
	}
	if payments > 0 || transfers > 0 || obligations > 0 {
		return fmt.Errorf("%w: bank account %d has %d payments, %d transfers and %d obligations",
			ErrHasDependents, id, payments, transfers, obligations)
	}

	if _, err := models.DeleteBankAccount(database.DB, userID, id); err != nil {
		return fmt.Errorf("deleting bank account %d: %w", id, err)
	}
	logger.L.Info("Bank account deleted", "userID", userID, "accountID", id)
	return nil
}
