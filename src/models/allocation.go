package models

import "github.com/shopspring/decimal"

// CostAllocation is one row of a percentage split of an obligation across
// cost centers. For a given (transaction_type, transaction_id) the set is
// either empty or sums to 100%; it is always replaced whole, never patched.
type CostAllocation struct {
	ID              int64           `json:"id"`
	UserID          int64           `json:"user_id"`
	TransactionType string          `json:"transaction_type"`
	TransactionID   int64           `json:"transaction_id"`
	CostCenterID    int64           `json:"cost_center_id"`
	Percentage      decimal.Decimal `json:"percentage"`
	Amount          decimal.Decimal `json:"amount"`
}

func (a *CostAllocation) Create(q Queryer) error {
	res, err := q.Exec(
		`INSERT INTO cost_allocations (user_id, transaction_type, transaction_id, cost_center_id, percentage, amount)
		VALUES (?, ?, ?, ?, ?, ?)`,
		a.UserID, a.TransactionType, a.TransactionID, a.CostCenterID, a.Percentage.String(), Cents(a.Amount),
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = id
	return nil
}

func ListAllocations(q Queryer, userID int64, transactionType string, transactionID int64) ([]CostAllocation, error) {
	rows, err := q.Query(
		`SELECT id, user_id, transaction_type, transaction_id, cost_center_id, percentage, amount
		FROM cost_allocations
		WHERE user_id = ? AND transaction_type = ? AND transaction_id = ?
		ORDER BY id`,
		userID, transactionType, transactionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var allocations []CostAllocation
	for rows.Next() {
		var a CostAllocation
		var percentage string
		var amount int64
		if err := rows.Scan(&a.ID, &a.UserID, &a.TransactionType, &a.TransactionID, &a.CostCenterID, &percentage, &amount); err != nil {
			return nil, err
		}
		pct, err := decimal.NewFromString(percentage)
		if err != nil {
			return nil, err
		}
		a.Percentage = pct
		a.Amount = FromCents(amount)
		allocations = append(allocations, a)
	}
	return allocations, rows.Err()
}

func DeleteAllocations(q Queryer, userID int64, transactionType string, transactionID int64) error {
	_, err := q.Exec(
		`DELETE FROM cost_allocations WHERE user_id = ? AND transaction_type = ? AND transaction_id = ?`,
		userID, transactionType, transactionID,
	)
	return err
}
