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

type costCenterServiceImpl struct{}

func NewCostCenterService() CostCenterService {
	return &costCenterServiceImpl{}
}

func (s *costCenterServiceImpl) Create(userID int64, input CostCenterInput) (*models.CostCenter, error) {
	input.Code = validation.SanitizeDescription(input.Code)
	input.Name = validation.SanitizeDescription(input.Name)
	if input.Code == "" || input.Name == "" {
		return nil, fmt.Errorf("%w: cost center code and name are required", ErrInvalidInput)
	}

	level := 1
	if input.ParentID != 0 {
		parent, err := s.get(userID, input.ParentID)
		if err != nil {
			return nil, err
		}
		level = parent.Level + 1
	}

	center := models.CostCenter{
		UserID:   userID,
		Code:     input.Code,
		Name:     input.Name,
		ParentID: input.ParentID,
		Level:    level,
	}
	if err := center.Create(database.DB); err != nil {
		return nil, fmt.Errorf("creating cost center: %w", err)
	}
	logger.L.Info("Cost center created", "userID", userID, "costCenterID", center.ID, "level", level)
	return &center, nil
}

func (s *costCenterServiceImpl) List(userID int64) ([]models.CostCenter, error) {
	centers, err := models.ListCostCenters(database.DB, userID)
	if err != nil {
		return nil, fmt.Errorf("listing cost centers: %w", err)
	}
	if centers == nil {
		centers = []models.CostCenter{}
	}
	return centers, nil
}

// Update edits a cost center. A parent change is checked against the
// ancestor chain first so the tree can never acquire a cycle.
func (s *costCenterServiceImpl) Update(userID, id int64, input CostCenterInput) (*models.CostCenter, error) {
	center, err := s.get(userID, id)
	if err != nil {
		return nil, err
	}

	input.Code = validation.SanitizeDescription(input.Code)
	input.Name = validation.SanitizeDescription(input.Name)
	if input.Code == "" || input.Name == "" {
		return nil, fmt.Errorf("%w: cost center code and name are required", ErrInvalidInput)
	}

	level := 1
	if input.ParentID != 0 {
		if input.ParentID == id {
			return nil, fmt.Errorf("%w: cost center %d cannot be its own parent", ErrCyclicReference, id)
		}
		parent, err := s.get(userID, input.ParentID)
		if err != nil {
			return nil, err
		}
		if err := s.checkNoCycle(userID, id, parent); err != nil {
			return nil, err
		}
		level = parent.Level + 1
	}

	center.Code = input.Code
	center.Name = input.Name
	center.ParentID = input.ParentID
	center.Level = level
	if _, err := center.Update(database.DB); err != nil {
		return nil, fmt.Errorf("updating cost center %d: %w", id, err)
	}
	return center, nil
}

// Delete removes a cost center only when nothing references it.
func (s *costCenterServiceImpl) Delete(userID, id int64) error {
	if _, err := s.get(userID, id); err != nil {
		return err
	}

	children, allocations, obligations, err := models.CountCostCenterDependents(database.DB, userID, id)
	if err != nil {
		return fmt.Errorf("counting dependents of cost center %d: %w", id, err)
	}
	if children > 0 || allocations > 0 || obligations > 0 {
		return fmt.Errorf("%w: cost center %d has %d children, %d allocations and %d obligations",
			ErrHasDependents, id, children, allocations, obligations)
	}

	if _, err := models.DeleteCostCenter(database.DB, userID, id); err != nil {
		return fmt.Errorf("deleting cost center %d: %w", id, err)
	}
	logger.L.Info("Cost center deleted", "userID", userID, "costCenterID", id)
	return nil
}

func (s *costCenterServiceImpl) get(userID, id int64) (*models.CostCenter, error) {
	center, err := models.GetCostCenterByID(database.DB, userID, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: cost center %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("loading cost center %d: %w", id, err)
	}
	return center, nil
}

// checkNoCycle walks up from the proposed parent; finding the node being
// re-parented means the change would close a loop.
func (s *costCenterServiceImpl) checkNoCycle(userID, id int64, parent *models.CostCenter) error {
	seen := map[int64]bool{id: true}
	for current := parent; current != nil; {
		if seen[current.ID] {
			return fmt.Errorf("%w: re-parenting cost center %d under %d closes a loop", ErrCyclicReference, id, parent.ID)
		}
		seen[current.ID] = true
		if current.ParentID == 0 {
			return nil
		}
		next, err := s.get(userID, current.ParentID)
		if err != nil {
			return err
		}
		current = next
	}
	return nil
}
