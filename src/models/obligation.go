package models

import (
	"database/sql"

	"github.com/shopspring/decimal"
)

// Obligation is a payable or receivable. A recurring series is stored as a
// parent record plus the child occurrences generated from it; children carry
// recurrence_type 'unica' and point back through recurrence_parent_id.
type Obligation struct {
	ID            int64           `json:"id"`
	UserID        int64           `json:"user_id"`
	Type          string          `json:"type"`
	Description   string          `json:"description"`
	Counterparty  string          `json:"counterparty,omitempty"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	SettledAmount decimal.Decimal `json:"settled_amount"`
	Status        string          `json:"status"`
	IssueDate     string          `json:"issue_date"`
	DueDate       string          `json:"due_date"`
	CostCenterID  int64           `json:"cost_center_id,omitempty"`
	BankAccountID int64           `json:"bank_account_id,omitempty"`

	RecurrenceType      string `json:"recurrence_type"`
	RecurrenceStatus    string `json:"recurrence_status,omitempty"`
	RecurrenceStartDate string `json:"recurrence_start_date,omitempty"`
	RecurrenceEndDate   string `json:"recurrence_end_date,omitempty"`
	RecurrenceNextDate  string `json:"recurrence_next_date,omitempty"`
	RecurrenceParentID  int64  `json:"recurrence_parent_id,omitempty"`
}

const obligationColumns = `id, user_id, type, description, counterparty, total_amount, settled_amount,
	status, issue_date, due_date, cost_center_id, bank_account_id,
	recurrence_type, recurrence_status, recurrence_start_date, recurrence_end_date,
	recurrence_next_date, recurrence_parent_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanObligation(row rowScanner) (*Obligation, error) {
	var o Obligation
	var total, settled int64
	var counterparty, recStatus, recStart, recEnd, recNext sql.NullString
	var costCenterID, bankAccountID, parentID sql.NullInt64
	err := row.Scan(
		&o.ID, &o.UserID, &o.Type, &o.Description, &counterparty, &total, &settled,
		&o.Status, &o.IssueDate, &o.DueDate, &costCenterID, &bankAccountID,
		&o.RecurrenceType, &recStatus, &recStart, &recEnd,
		&recNext, &parentID,
	)
	if err != nil {
		return nil, err
	}
	o.Counterparty = fromNullString(counterparty)
	o.TotalAmount = FromCents(total)
	o.SettledAmount = FromCents(settled)
	o.CostCenterID = fromNullID(costCenterID)
	o.BankAccountID = fromNullID(bankAccountID)
	o.RecurrenceStatus = fromNullString(recStatus)
	o.RecurrenceStartDate = fromNullString(recStart)
	o.RecurrenceEndDate = fromNullString(recEnd)
	o.RecurrenceNextDate = fromNullString(recNext)
	o.RecurrenceParentID = fromNullID(parentID)
	return &o, nil
}

func (o *Obligation) Create(q Queryer) error {
	res, err := q.Exec(
		`INSERT INTO obligations (user_id, type, description, counterparty, total_amount, settled_amount,
			status, issue_date, due_date, cost_center_id, bank_account_id,
			recurrence_type, recurrence_status, recurrence_start_date, recurrence_end_date,
			recurrence_next_date, recurrence_parent_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.UserID, o.Type, o.Description, o.Counterparty, Cents(o.TotalAmount), Cents(o.SettledAmount),
		o.Status, o.IssueDate, o.DueDate, nullableID(o.CostCenterID), nullableID(o.BankAccountID),
		o.RecurrenceType, o.RecurrenceStatus, o.RecurrenceStartDate, o.RecurrenceEndDate,
		o.RecurrenceNextDate, nullableID(o.RecurrenceParentID),
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	o.ID = id
	return nil
}

func GetObligationByID(q Queryer, userID, id int64) (*Obligation, error) {
	row := q.QueryRow(
		`SELECT `+obligationColumns+` FROM obligations WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	return scanObligation(row)
}

// ListObligations returns a user's payables or receivables, optionally
// filtered by status, newest due first.
func ListObligations(q Queryer, userID int64, oType, status string) ([]Obligation, error) {
	query := `SELECT ` + obligationColumns + ` FROM obligations WHERE user_id = ? AND type = ?`
	args := []any{userID, oType}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY due_date DESC, id DESC`

	rows, err := q.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var obligations []Obligation
	for rows.Next() {
		o, err := scanObligation(rows)
		if err != nil {
			return nil, err
		}
		obligations = append(obligations, *o)
	}
	return obligations, rows.Err()
}

// Update persists the mutable columns of an obligation. Callers enforce the
// paid-record protection rules before getting here.
func (o *Obligation) Update(q Queryer) (bool, error) {
	res, err := q.Exec(
		`UPDATE obligations SET description = ?, counterparty = ?, total_amount = ?,
			status = ?, issue_date = ?, due_date = ?, cost_center_id = ?, bank_account_id = ?,
			recurrence_type = ?, recurrence_status = ?, recurrence_start_date = ?,
			recurrence_end_date = ?, recurrence_next_date = ?
		WHERE id = ? AND user_id = ?`,
		o.Description, o.Counterparty, Cents(o.TotalAmount),
		o.Status, o.IssueDate, o.DueDate, nullableID(o.CostCenterID), nullableID(o.BankAccountID),
		o.RecurrenceType, o.RecurrenceStatus, o.RecurrenceStartDate,
		o.RecurrenceEndDate, o.RecurrenceNextDate,
		o.ID, o.UserID,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func DeleteObligation(q Queryer, userID, id int64) (bool, error) {
	res, err := q.Exec(`DELETE FROM obligations WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// ApplySettlement writes the accumulated amount and derived status in one
// statement.
func ApplySettlement(q Queryer, userID, id int64, settled decimal.Decimal, status string) (bool, error) {
	res, err := q.Exec(
		`UPDATE obligations SET settled_amount = ?, status = ? WHERE id = ? AND user_id = ?`,
		Cents(settled), status, id, userID,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// ListDueRecurrenceParents selects active series whose next occurrence is due
// on or before today.
func ListDueRecurrenceParents(q Queryer, userID int64, today string) ([]Obligation, error) {
	rows, err := q.Query(
		`SELECT `+obligationColumns+` FROM obligations
		WHERE user_id = ? AND recurrence_status = ?
			AND recurrence_next_date IS NOT NULL AND recurrence_next_date != ''
			AND recurrence_next_date <= ?
		ORDER BY id`,
		userID, RecurrenceAtiva, today,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var parents []Obligation
	for rows.Next() {
		o, err := scanObligation(rows)
		if err != nil {
			return nil, err
		}
		parents = append(parents, *o)
	}
	return parents, rows.Err()
}

// AdvanceRecurrence moves a parent's next date forward, conditional on the
// date still being the one this sweep read. A zero-row update means a
// concurrent sweep already advanced the series and the caller must skip it.
func AdvanceRecurrence(q Queryer, id int64, expectedNext, newNext, newStatus string) (bool, error) {
	res, err := q.Exec(
		`UPDATE obligations SET recurrence_next_date = ?, recurrence_status = ?
		WHERE id = ? AND recurrence_next_date = ?`,
		newNext, newStatus, id, expectedNext,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// MarkOverdueObligations flags pending obligations past their due date as
// vencido. Settlement still moves them on to parcial/pago; paid, partial and
// cancelled records are untouched.
func MarkOverdueObligations(q Queryer, userID int64, oType, today string) error {
	_, err := q.Exec(
		`UPDATE obligations SET status = ? WHERE user_id = ? AND type = ? AND status = ? AND due_date < ?`,
		StatusVencido, userID, oType, StatusPendente, today,
	)
	return err
}

// CountObligationDependents reports rows that block obligation deletion.
func CountObligationDependents(q Queryer, userID, id int64) (payments, children int, err error) {
	err = q.QueryRow(
		`SELECT
			(SELECT COUNT(*) FROM payments WHERE user_id = ? AND transaction_id = ?),
			(SELECT COUNT(*) FROM obligations WHERE user_id = ? AND recurrence_parent_id = ?)`,
		userID, id, userID, id,
	).Scan(&payments, &children)
	return
}
