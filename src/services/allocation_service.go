package services

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Alltrendsfy/zenith-sub000/src/database"
	"github.com/Alltrendsfy/zenith-sub000/src/logger"
	"github.com/Alltrendsfy/zenith-sub000/src/models"
)

var (
	pctFull    = decimal.NewFromInt(100)
	pctEpsilon = decimal.New(1, -2) // 0.01, tolerance for rounding on the sum
)

type allocationServiceImpl struct{}

func NewAllocationService() AllocationService {
	return &allocationServiceImpl{}
}

// Validate checks an allocation set before it may be persisted: every row
// needs a cost center and a percentage in (0, 100], and the percentages must
// sum to 100 within 0.01.
func (s *allocationServiceImpl) Validate(inputs []AllocationInput) error {
	sum := decimal.Zero
	for i, in := range inputs {
		if in.CostCenterID == 0 {
			return fmt.Errorf("%w: row %d is missing a cost center", ErrInvalidAllocation, i+1)
		}
		if !in.Percentage.IsPositive() {
			return fmt.Errorf("%w: row %d percentage %s must be greater than zero", ErrInvalidAllocation, i+1, in.Percentage)
		}
		if in.Percentage.GreaterThan(pctFull) {
			return fmt.Errorf("%w: row %d percentage %s exceeds 100", ErrInvalidAllocation, i+1, in.Percentage)
		}
		sum = sum.Add(in.Percentage)
	}
	if sum.Sub(pctFull).Abs().GreaterThan(pctEpsilon) {
		return fmt.Errorf("%w: percentages sum to %s, expected 100", ErrInvalidAllocation, sum)
	}
	return nil
}

// ComputeAmounts annotates each row with round2(total * pct / 100), half-up.
// The rounded amounts may not sum back to the exact total; that drift is
// accepted and no row is adjusted to absorb it.
func (s *allocationServiceImpl) ComputeAmounts(inputs []AllocationInput, totalAmount decimal.Decimal) []ComputedAllocation {
	computed := make([]ComputedAllocation, 0, len(inputs))
	for _, in := range inputs {
		computed = append(computed, ComputedAllocation{
			CostCenterID: in.CostCenterID,
			Percentage:   in.Percentage,
			Amount:       totalAmount.Mul(in.Percentage).Div(pctFull).Round(2),
		})
	}
	return computed
}

// Replace swaps the persisted allocation set of an obligation for the given
// one, as a delete-then-insert inside a single transaction. An empty input
// clears the set (unallocated).
func (s *allocationServiceImpl) Replace(userID int64, transactionType string, transactionID int64, inputs []AllocationInput) ([]models.CostAllocation, error) {
	if !models.ValidObligationType(transactionType) {
		return nil, fmt.Errorf("%w: unknown transaction type %q", ErrInvalidInput, transactionType)
	}
	if len(inputs) > 0 {
		if err := s.Validate(inputs); err != nil {
			return nil, err
		}
	}

	obligation, err := models.GetObligationByID(database.DB, userID, transactionID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: obligation %d", ErrNotFound, transactionID)
	}
	if err != nil {
		return nil, fmt.Errorf("loading obligation %d: %w", transactionID, err)
	}
	if obligation.Type != transactionType {
		return nil, fmt.Errorf("%w: obligation %d", ErrNotFound, transactionID)
	}

	computed := s.ComputeAmounts(inputs, obligation.TotalAmount)

	tx, err := database.DB.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, c := range computed {
		if _, err := models.GetCostCenterByID(tx, userID, c.CostCenterID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, fmt.Errorf("%w: cost center %d does not exist", ErrInvalidAllocation, c.CostCenterID)
			}
			return nil, fmt.Errorf("loading cost center %d: %w", c.CostCenterID, err)
		}
	}

	if err := models.DeleteAllocations(tx, userID, transactionType, transactionID); err != nil {
		return nil, fmt.Errorf("clearing allocations: %w", err)
	}

	allocations := make([]models.CostAllocation, 0, len(computed))
	for _, c := range computed {
		a := models.CostAllocation{
			UserID:          userID,
			TransactionType: transactionType,
			TransactionID:   transactionID,
			CostCenterID:    c.CostCenterID,
			Percentage:      c.Percentage,
			Amount:          c.Amount,
		}
		if err := a.Create(tx); err != nil {
			return nil, fmt.Errorf("inserting allocation: %w", err)
		}
		allocations = append(allocations, a)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing allocations: %w", err)
	}

	logger.L.Debug("Replaced cost allocations",
		"userID", userID, "transactionType", transactionType,
		"transactionID", transactionID, "rows", len(allocations))
	return allocations, nil
}

func (s *allocationServiceImpl) List(userID int64, transactionType string, transactionID int64) ([]models.CostAllocation, error) {
	allocations, err := models.ListAllocations(database.DB, userID, transactionType, transactionID)
	if err != nil {
		return nil, fmt.Errorf("listing allocations: %w", err)
	}
	if allocations == nil {
		allocations = []models.CostAllocation{}
	}
	return allocations, nil
}
