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

type settlementServiceImpl struct {
	reportCache *cache.Cache
}

func NewSettlementService(reportCache *cache.Cache) SettlementService {
	return &settlementServiceImpl{reportCache: reportCache}
}

func (s *settlementServiceImpl) SettlePayable(userID, obligationID int64, input SettlementInput) (*SettlementResult, error) {
	return s.settle(userID, obligationID, models.TypePayable, input)
}

func (s *settlementServiceImpl) SettleReceivable(userID, obligationID int64, input SettlementInput) (*SettlementResult, error) {
	return s.settle(userID, obligationID, models.TypeReceivable, input)
}

// settle applies one baixa: it creates the immutable payment row, raises the
// obligation's accumulated amount and status, and moves the linked bank
// balance, all inside a single transaction so a crash can never leave a
// payment without its balance effect or vice versa.
func (s *settlementServiceImpl) settle(userID, obligationID int64, obligationType string, input SettlementInput) (*SettlementResult, error) {
	if !input.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: settlement amount must be positive, got %s", ErrInvalidAmount, input.Amount)
	}
	if input.PaymentDate == "" {
		input.PaymentDate = utils.FormatDate(time.Now())
	} else if _, err := utils.ParseDate(input.PaymentDate); err != nil {
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

	obligation, err := models.GetObligationByID(tx, userID, obligationID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: obligation %d", ErrNotFound, obligationID)
	}
	if err != nil {
		return nil, fmt.Errorf("loading obligation %d: %w", obligationID, err)
	}
	if obligation.Type != obligationType {
		return nil, fmt.Errorf("%w: obligation %d", ErrNotFound, obligationID)
	}
	switch obligation.Status {
	case models.StatusCancelado:
		return nil, fmt.Errorf("%w: obligation %d is cancelled", ErrInvalidState, obligationID)
	case models.StatusPago:
		return nil, fmt.Errorf("%w: obligation %d is already fully settled", ErrInvalidState, obligationID)
	}

	payment := models.Payment{
		UserID:          userID,
		TransactionType: obligationType,
		TransactionID:   obligationID,
		PaymentMethod:   input.PaymentMethod,
		BankAccountID:   input.BankAccountID,
		Amount:          input.Amount,
		PaymentDate:     input.PaymentDate,
		Notes:           input.Notes,
		Reference:       input.Reference,
	}
	if err := payment.Create(tx); err != nil {
		if isUniqueConstraintErr(err) {
			return nil, fmt.Errorf("%w: settlement reference %q was already used", ErrInvalidState, input.Reference)
		}
		return nil, fmt.Errorf("creating payment: %w", err)
	}

	// The accumulated amount only ever grows; status follows it and is
	// never downgraded here.
	newSettled := obligation.SettledAmount.Add(input.Amount)
	newStatus := obligation.Status
	switch {
	case newSettled.GreaterThanOrEqual(obligation.TotalAmount):
		newStatus = models.StatusPago
	case newSettled.IsPositive():
		newStatus = models.StatusParcial
	}
	if _, err := models.ApplySettlement(tx, userID, obligationID, newSettled, newStatus); err != nil {
		return nil, fmt.Errorf("updating obligation %d: %w", obligationID, err)
	}

	if input.BankAccountID != 0 {
		if _, err := models.GetBankAccountByID(tx, userID, input.BankAccountID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, fmt.Errorf("%w: bank account %d", ErrNotFound, input.BankAccountID)
			}
			return nil, fmt.Errorf("loading bank account %d: %w", input.BankAccountID, err)
		}
		// Settling a payable drains the account, settling a receivable
		// fills it. Keep the sign convention in this one place.
		delta := input.Amount
		if obligationType == models.TypePayable {
			delta = delta.Neg()
		}
		if _, err := models.AdjustBankAccountBalance(tx, userID, input.BankAccountID, delta); err != nil {
			return nil, fmt.Errorf("adjusting balance of account %d: %w", input.BankAccountID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing settlement: %w", err)
	}

	invalidateStatementCache(s.reportCache, userID, input.BankAccountID)

	obligation.SettledAmount = newSettled
	obligation.Status = newStatus

	logger.L.Info("Settlement applied",
		"userID", userID, "obligationID", obligationID, "type", obligationType,
		"amount", input.Amount.String(), "newStatus", newStatus)
	return &SettlementResult{Payment: payment, Obligation: *obligation}, nil
}

func (s *settlementServiceImpl) ListPayments(userID, obligationID int64) ([]models.Payment, error) {
	payments, err := models.ListPaymentsByObligation(database.DB, userID, obligationID)
	if err != nil {
		return nil, fmt.Errorf("listing payments: %w", err)
	}
	if payments == nil {
		payments = []models.Payment{}
	}
	return payments, nil
}
