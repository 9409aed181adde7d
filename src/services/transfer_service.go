package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/Alltrendsfy/zenith-sub000/src/database"
	"github.com/Alltrendsfy/zenith-sub000/src/logger"
	"github.com/Alltrendsfy/zenith-sub000/src/models"
	"github.com/Alltrendsfy/zenith-sub000/src/utils"
)

type transferServiceImpl struct {
	reportCache *cache.Cache
}

func NewTransferService(reportCache *cache.Cache) TransferService {
	return &transferServiceImpl{reportCache: reportCache}
}

// CreateTransfer atomically debits one account, credits the other and records
// the transfer. The debit is conditional on the balance covering the amount,
// so a concurrent transfer can never overdraw or lose an update.
func (s *transferServiceImpl) CreateTransfer(userID int64, input TransferInput) (*models.BankTransfer, error) {
	if input.FromAccountID == input.ToAccountID {
		return nil, fmt.Errorf("%w: source and destination accounts must differ", ErrInvalidTransfer)
	}
	if !input.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: transfer amount must be positive, got %s", ErrInvalidAmount, input.Amount)
	}
	if input.TransferDate == "" {
		input.TransferDate = utils.FormatDate(time.Now())
	} else if _, err := utils.ParseDate(input.TransferDate); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if input.Reference == "" {
		input.Reference = uuid.NewString()
	}

	tx, err := database.DB.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	from, err := models.GetBankAccountByID(tx, userID, input.FromAccountID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: bank account %d", ErrNotFound, input.FromAccountID)
	}
	if err != nil {
		return nil, fmt.Errorf("loading source account %d: %w", input.FromAccountID, err)
	}
	if _, err := models.GetBankAccountByID(tx, userID, input.ToAccountID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: bank account %d", ErrNotFound, input.ToAccountID)
		}
		return nil, fmt.Errorf("loading destination account %d: %w", input.ToAccountID, err)
	}

	debited, err := models.DebitBankAccountIfSufficient(tx, userID, input.FromAccountID, input.Amount)
	if err != nil {
		return nil, fmt.Errorf("debiting account %d: %w", input.FromAccountID, err)
	}
	if !debited {
		return nil, fmt.Errorf("%w: account %d balance %s cannot cover %s",
			ErrInsufficientFunds, input.FromAccountID, from.Balance, input.Amount)
	}
	if _, err := models.AdjustBankAccountBalance(tx, userID, input.ToAccountID, input.Amount); err != nil {
		return nil, fmt.Errorf("crediting account %d: %w", input.ToAccountID, err)
	}

	transfer := models.BankTransfer{
		UserID:        userID,
		FromAccountID: input.FromAccountID,
		ToAccountID:   input.ToAccountID,
		Amount:        input.Amount,
		TransferDate:  input.TransferDate,
		Description:   input.Description,
		Reference:     input.Reference,
	}
	if err := transfer.Create(tx); err != nil {
		if isUniqueConstraintErr(err) {
			return nil, fmt.Errorf("%w: transfer reference %q was already used", ErrInvalidState, input.Reference)
		}
		return nil, fmt.Errorf("recording transfer: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transfer: %w", err)
	}

	invalidateStatementCache(s.reportCache, userID, input.FromAccountID, input.ToAccountID)

	logger.L.Info("Transfer completed",
		"userID", userID, "fromAccountID", input.FromAccountID,
		"toAccountID", input.ToAccountID, "amount", input.Amount.String())
	return &transfer, nil
}

func (s *transferServiceImpl) ListTransfers(userID int64) ([]models.BankTransfer, error) {
	transfers, err := models.ListTransfers(database.DB, userID)
	if err != nil {
		return nil, fmt.Errorf("listing transfers: %w", err)
	}
	if transfers == nil {
		transfers = []models.BankTransfer{}
	}
	return transfers, nil
}
