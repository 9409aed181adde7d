package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Alltrendsfy/zenith-sub000/src/database"
	"github.com/Alltrendsfy/zenith-sub000/src/logger"
	"github.com/Alltrendsfy/zenith-sub000/src/models"
	"github.com/Alltrendsfy/zenith-sub000/src/security/validation"
	"github.com/Alltrendsfy/zenith-sub000/src/utils"
)

type obligationServiceImpl struct {
	now func() time.Time
}

func NewObligationService() ObligationService {
	return &obligationServiceImpl{now: time.Now}
}

func (s *obligationServiceImpl) Create(userID int64, input ObligationInput) (*models.Obligation, error) {
	if !models.ValidObligationType(input.Type) {
		return nil, fmt.Errorf("%w: unknown obligation type %q", ErrInvalidInput, input.Type)
	}
	input.Description = validation.SanitizeDescription(input.Description)
	if input.Description == "" {
		return nil, fmt.Errorf("%w: description is required", ErrInvalidInput)
	}
	if !input.TotalAmount.IsPositive() {
		return nil, fmt.Errorf("%w: total amount must be positive, got %s", ErrInvalidAmount, input.TotalAmount)
	}
	if _, err := utils.ParseDate(input.IssueDate); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if _, err := utils.ParseDate(input.DueDate); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	recurrenceType := input.RecurrenceType
	if recurrenceType == "" {
		recurrenceType = models.RecurrenceUnica
	}
	if !models.ValidRecurrenceType(recurrenceType) {
		return nil, fmt.Errorf("%w: unknown recurrence type %q", ErrInvalidInput, recurrenceType)
	}

	obligation := models.Obligation{
		UserID:         userID,
		Type:           input.Type,
		Description:    input.Description,
		Counterparty:   validation.SanitizeDescription(input.Counterparty),
		TotalAmount:    input.TotalAmount,
		Status:         models.StatusPendente,
		IssueDate:      input.IssueDate,
		DueDate:        input.DueDate,
		CostCenterID:   input.CostCenterID,
		BankAccountID:  input.BankAccountID,
		RecurrenceType: recurrenceType,
	}

	if recurrenceType != models.RecurrenceUnica {
		if input.RecurrenceEndDate != "" {
			if _, err := utils.ParseDate(input.RecurrenceEndDate); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
			}
			if input.RecurrenceEndDate < input.DueDate {
				return nil, fmt.Errorf("%w: recurrence end date %s precedes first due date %s",
					ErrInvalidInput, input.RecurrenceEndDate, input.DueDate)
			}
		}
		obligation.RecurrenceStatus = models.RecurrenceAtiva
		obligation.RecurrenceStartDate = input.IssueDate
		obligation.RecurrenceEndDate = input.RecurrenceEndDate
		// The first occurrence of the series is the parent's own due date.
		obligation.RecurrenceNextDate = input.DueDate
	}

	if obligation.CostCenterID != 0 {
		if _, err := models.GetCostCenterByID(database.DB, userID, obligation.CostCenterID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, fmt.Errorf("%w: cost center %d", ErrNotFound, obligation.CostCenterID)
			}
			return nil, fmt.Errorf("loading cost center %d: %w", obligation.CostCenterID, err)
		}
	}
	if obligation.BankAccountID != 0 {
		if _, err := models.GetBankAccountByID(database.DB, userID, obligation.BankAccountID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, fmt.Errorf("%w: bank account %d", ErrNotFound, obligation.BankAccountID)
			}
			return nil, fmt.Errorf("loading bank account %d: %w", obligation.BankAccountID, err)
		}
	}

	if err := obligation.Create(database.DB); err != nil {
		return nil, fmt.Errorf("creating obligation: %w", err)
	}

	logger.L.Info("Obligation created",
		"userID", userID, "obligationID", obligation.ID,
		"type", obligation.Type, "recurrenceType", recurrenceType)
	return &obligation, nil
}

func (s *obligationServiceImpl) Get(userID, id int64) (*models.Obligation, error) {
	obligation, err := models.GetObligationByID(database.DB, userID, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: obligation %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("loading obligation %d: %w", id, err)
	}
	return obligation, nil
}

// List returns the user's payables or receivables, flagging overdue pending
// ones as vencido first.
func (s *obligationServiceImpl) List(userID int64, oType, status string) ([]models.Obligation, error) {
	if !models.ValidObligationType(oType) {
		return nil, fmt.Errorf("%w: unknown obligation type %q", ErrInvalidInput, oType)
	}
	if err := models.MarkOverdueObligations(database.DB, userID, oType, utils.FormatDate(s.now())); err != nil {
		return nil, fmt.Errorf("marking overdue obligations: %w", err)
	}
	obligations, err := models.ListObligations(database.DB, userID, oType, status)
	if err != nil {
		return nil, fmt.Errorf("listing obligations: %w", err)
	}
	if obligations == nil {
		obligations = []models.Obligation{}
	}
	return obligations, nil
}

// Update mutates an obligation through the generic path. Once an obligation
// is paid its financial fields are frozen; only metadata edits go through.
func (s *obligationServiceImpl) Update(userID, id int64, input ObligationUpdate) (*models.Obligation, error) {
	obligation, err := s.Get(userID, id)
	if err != nil {
		return nil, err
	}
	if obligation.Status == models.StatusCancelado {
		return nil, fmt.Errorf("%w: obligation %d is cancelled", ErrInvalidState, id)
	}

	input.Description = validation.SanitizeDescription(input.Description)
	if input.Description == "" {
		return nil, fmt.Errorf("%w: description is required", ErrInvalidInput)
	}
	if _, err := utils.ParseDate(input.IssueDate); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if _, err := utils.ParseDate(input.DueDate); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if obligation.Status == models.StatusPago {
		if !input.TotalAmount.Equal(obligation.TotalAmount) {
			return nil, fmt.Errorf("%w: obligation %d is paid, amounts are immutable", ErrInvalidState, id)
		}
		if input.RecurrenceStatus != "" && input.RecurrenceStatus != obligation.RecurrenceStatus {
			return nil, fmt.Errorf("%w: obligation %d is paid, recurrence fields are immutable", ErrInvalidState, id)
		}
		if input.RecurrenceEndDate != "" && input.RecurrenceEndDate != obligation.RecurrenceEndDate {
			return nil, fmt.Errorf("%w: obligation %d is paid, recurrence fields are immutable", ErrInvalidState, id)
		}
	} else {
		if !input.TotalAmount.IsPositive() {
			return nil, fmt.Errorf("%w: total amount must be positive, got %s", ErrInvalidAmount, input.TotalAmount)
		}
		obligation.TotalAmount = input.TotalAmount

		if input.RecurrenceStatus != "" {
			if obligation.RecurrenceType == models.RecurrenceUnica {
				return nil, fmt.Errorf("%w: obligation %d is not a recurring series", ErrInvalidState, id)
			}
			switch input.RecurrenceStatus {
			case models.RecurrenceAtiva, models.RecurrencePausada, models.RecurrenceConcluida:
			default:
				return nil, fmt.Errorf("%w: unknown recurrence status %q", ErrInvalidInput, input.RecurrenceStatus)
			}
			// concluida is terminal.
			if obligation.RecurrenceStatus == models.RecurrenceConcluida &&
				input.RecurrenceStatus != models.RecurrenceConcluida {
				return nil, fmt.Errorf("%w: recurrence series %d is concluded", ErrInvalidState, id)
			}
			obligation.RecurrenceStatus = input.RecurrenceStatus
		}
		if input.RecurrenceEndDate != "" {
			if _, err := utils.ParseDate(input.RecurrenceEndDate); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
			}
			obligation.RecurrenceEndDate = input.RecurrenceEndDate
		}
	}

	obligation.Description = input.Description
	obligation.Counterparty = validation.SanitizeDescription(input.Counterparty)
	obligation.IssueDate = input.IssueDate
	obligation.DueDate = input.DueDate
	obligation.CostCenterID = input.CostCenterID
	obligation.BankAccountID = input.BankAccountID

	if _, err := obligation.Update(database.DB); err != nil {
		return nil, fmt.Errorf("updating obligation %d: %w", id, err)
	}
	return obligation, nil
}

// Cancel marks an obligation cancelado. Paid obligations cannot be cancelled.
func (s *obligationServiceImpl) Cancel(userID, id int64) (*models.Obligation, error) {
	obligation, err := s.Get(userID, id)
	if err != nil {
		return nil, err
	}
	switch obligation.Status {
	case models.StatusPago:
		return nil, fmt.Errorf("%w: obligation %d is paid and cannot be cancelled", ErrInvalidState, id)
	case models.StatusCancelado:
		return obligation, nil
	}
	obligation.Status = models.StatusCancelado
	if _, err := obligation.Update(database.DB); err != nil {
		return nil, fmt.Errorf("cancelling obligation %d: %w", id, err)
	}
	logger.L.Info("Obligation cancelled", "userID", userID, "obligationID", id)
	return obligation, nil
}

// Delete removes an obligation. Paid obligations are never physically
// deleted, and obligations with payments or child occurrences are blocked.
func (s *obligationServiceImpl) Delete(userID, id int64) error {
	obligation, err := s.Get(userID, id)
	if err != nil {
		return err
	}
	if obligation.Status == models.StatusPago {
		return fmt.Errorf("%w: obligation %d is paid and cannot be deleted", ErrInvalidState, id)
	}

	payments, children, err := models.CountObligationDependents(database.DB, userID, id)
	if err != nil {
		return fmt.Errorf("counting dependents of obligation %d: %w", id, err)
	}
	if payments > 0 || children > 0 {
		return fmt.Errorf("%w: obligation %d has %d payments and %d occurrences",
			ErrHasDependents, id, payments, children)
	}

	tx, err := database.DB.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := models.DeleteAllocations(tx, userID, obligation.Type, id); err != nil {
		return fmt.Errorf("clearing allocations of obligation %d: %w", id, err)
	}
	if _, err := models.DeleteObligation(tx, userID, id); err != nil {
		return fmt.Errorf("deleting obligation %d: %w", id, err)
	}
	return tx.Commit()
}
