package services

import (
	"fmt"
	"time"

	"github.com/Alltrendsfy/zenith-sub000/src/database"
	"github.com/Alltrendsfy/zenith-sub000/src/logger"
	"github.com/Alltrendsfy/zenith-sub000/src/models"
	"github.com/Alltrendsfy/zenith-sub000/src/utils"
)

type recurrenceServiceImpl struct {
	now func() time.Time
}

func NewRecurrenceService() RecurrenceService {
	return &recurrenceServiceImpl{now: time.Now}
}

// ProcessRecurrences materialises every due occurrence of the user's active
// recurring series and returns how many were created. It runs inline before
// obligation list reads; two concurrent invocations cannot double-generate
// because each cycle advances recurrence_next_date with a compare-and-swap in
// the same transaction that inserts the child, and (parent, due_date) is
// unique as a backstop.
func (s *recurrenceServiceImpl) ProcessRecurrences(userID int64) (int, error) {
	today := utils.FormatDate(s.now())

	parents, err := models.ListDueRecurrenceParents(database.DB, userID, today)
	if err != nil {
		return 0, fmt.Errorf("selecting due recurrence parents: %w", err)
	}

	created := 0
	for i := range parents {
		n, err := s.processSeries(&parents[i], today)
		created += n
		if err != nil {
			return created, err
		}
	}

	if created > 0 {
		logger.L.Info("Recurrence sweep generated occurrences", "userID", userID, "created", created)
	}
	return created, nil
}

// processSeries catches one parent up to today, one transaction per cycle. A
// parent overdue by several cycles emits every missed occurrence.
func (s *recurrenceServiceImpl) processSeries(parent *models.Obligation, today string) (int, error) {
	step := models.RecurrenceStepMonths(parent.RecurrenceType)
	if step == 0 {
		// A parent with recurrence state but a non-recurring type is
		// malformed; creation rejects it, so just skip defensively.
		logger.L.Warn("Skipping recurrence parent with non-recurring type",
			"obligationID", parent.ID, "recurrenceType", parent.RecurrenceType)
		return 0, nil
	}

	issueDate, err := utils.ParseDate(parent.IssueDate)
	if err != nil {
		return 0, fmt.Errorf("recurrence parent %d: %w", parent.ID, err)
	}
	dueDate, err := utils.ParseDate(parent.DueDate)
	if err != nil {
		return 0, fmt.Errorf("recurrence parent %d: %w", parent.ID, err)
	}
	// Each child keeps the parent's issue-to-due offset in days.
	issueOffset := utils.DaysBetween(issueDate, dueDate)

	created := 0
	next := parent.RecurrenceNextDate
	for next != "" && next <= today {
		due, err := utils.ParseDate(next)
		if err != nil {
			return created, fmt.Errorf("recurrence parent %d: %w", parent.ID, err)
		}

		if parent.RecurrenceEndDate != "" && next > parent.RecurrenceEndDate {
			// The series ran past its end date without being closed.
			if _, err := models.AdvanceRecurrence(database.DB, parent.ID, next, next, models.RecurrenceConcluida); err != nil {
				return created, fmt.Errorf("concluding recurrence %d: %w", parent.ID, err)
			}
			return created, nil
		}

		newNext := utils.FormatDate(utils.AddMonths(due, step))
		// Look one step ahead: when the following occurrence would fall
		// past the end date, this one is the last and the series closes,
		// but it is still generated.
		newStatus := models.RecurrenceAtiva
		if parent.RecurrenceEndDate != "" && newNext > parent.RecurrenceEndDate {
			newStatus = models.RecurrenceConcluida
		}

		tx, err := database.DB.Begin()
		if err != nil {
			return created, fmt.Errorf("beginning transaction: %w", err)
		}

		advanced, err := models.AdvanceRecurrence(tx, parent.ID, next, newNext, newStatus)
		if err != nil {
			tx.Rollback()
			return created, fmt.Errorf("advancing recurrence %d: %w", parent.ID, err)
		}
		if !advanced {
			// A concurrent sweep already took this cycle.
			tx.Rollback()
			logger.L.Debug("Recurrence already advanced by concurrent sweep", "obligationID", parent.ID, "dueDate", next)
			return created, nil
		}

		child := models.Obligation{
			UserID:             parent.UserID,
			Type:               parent.Type,
			Description:        parent.Description,
			Counterparty:       parent.Counterparty,
			TotalAmount:        parent.TotalAmount,
			Status:             models.StatusPendente,
			IssueDate:          utils.FormatDate(due.AddDate(0, 0, -issueOffset)),
			DueDate:            next,
			CostCenterID:       parent.CostCenterID,
			BankAccountID:      parent.BankAccountID,
			RecurrenceType:     models.RecurrenceUnica,
			RecurrenceParentID: parent.ID,
		}
		if err := child.Create(tx); err != nil {
			if isUniqueConstraintErr(err) {
				// Occurrence already exists for this due date; keep the
				// advance so the series does not stall.
				if commitErr := tx.Commit(); commitErr != nil {
					return created, fmt.Errorf("committing recurrence advance: %w", commitErr)
				}
				logger.L.Debug("Skipping duplicate recurrence occurrence", "obligationID", parent.ID, "dueDate", next)
				next = newNext
				if newStatus == models.RecurrenceConcluida {
					return created, nil
				}
				continue
			}
			tx.Rollback()
			return created, fmt.Errorf("inserting occurrence of obligation %d: %w", parent.ID, err)
		}

		if err := tx.Commit(); err != nil {
			return created, fmt.Errorf("committing recurrence cycle: %w", err)
		}

		created++
		next = newNext
		if newStatus == models.RecurrenceConcluida {
			return created, nil
		}
	}
	return created, nil
}
