package models

import (
	"database/sql"

	"github.com/shopspring/decimal"
)

// BankTransfer moves funds between two accounts of the same user. Rows are
// append-only.
type BankTransfer struct {
	ID            int64           `json:"id"`
	UserID        int64           `json:"user_id"`
	FromAccountID int64           `json:"from_account_id"`
	ToAccountID   int64           `json:"to_account_id"`
	Amount        decimal.Decimal `json:"amount"`
	TransferDate  string          `json:"transfer_date"`
	Description   string          `json:"description,omitempty"`
	Reference     string          `json:"reference"`
}

func (t *BankTransfer) Create(q Queryer) error {
	res, err := q.Exec(
		`INSERT INTO bank_transfers (user_id, from_account_id, to_account_id, amount,
			transfer_date, description, reference)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.UserID, t.FromAccountID, t.ToAccountID, Cents(t.Amount),
		t.TransferDate, t.Description, t.Reference,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = id
	return nil
}

const transferColumns = `id, user_id, from_account_id, to_account_id, amount,
	transfer_date, description, reference`

func scanTransfers(rows *sql.Rows) ([]BankTransfer, error) {
	defer rows.Close()
	var transfers []BankTransfer
	for rows.Next() {
		var t BankTransfer
		var amount int64
		var description sql.NullString
		if err := rows.Scan(
			&t.ID, &t.UserID, &t.FromAccountID, &t.ToAccountID, &amount,
			&t.TransferDate, &description, &t.Reference,
		); err != nil {
			return nil, err
		}
		t.Description = fromNullString(description)
		t.Amount = FromCents(amount)
		transfers = append(transfers, t)
	}
	return transfers, rows.Err()
}

func ListTransfers(q Queryer, userID int64) ([]BankTransfer, error) {
	rows, err := q.Query(
		`SELECT `+transferColumns+` FROM bank_transfers
		WHERE user_id = ? ORDER BY transfer_date DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	return scanTransfers(rows)
}

// ListTransfersByAccountInRange returns transfers where the account is source
// or destination with transfer_date in [start, end].
func ListTransfersByAccountInRange(q Queryer, userID, accountID int64, start, end string) ([]BankTransfer, error) {
	rows, err := q.Query(
		`SELECT `+transferColumns+` FROM bank_transfers
		WHERE user_id = ? AND (from_account_id = ? OR to_account_id = ?)
			AND transfer_date >= ? AND transfer_date <= ?
		ORDER BY transfer_date, id`,
		userID, accountID, accountID, start, end,
	)
	if err != nil {
		return nil, err
	}
	return scanTransfers(rows)
}

// ListTransfersByAccountBefore returns transfers strictly before a date, for
// opening-balance reconstruction.
func ListTransfersByAccountBefore(q Queryer, userID, accountID int64, before string) ([]BankTransfer, error) {
	rows, err := q.Query(
		`SELECT `+transferColumns+` FROM bank_transfers
		WHERE user_id = ? AND (from_account_id = ? OR to_account_id = ?) AND transfer_date < ?
		ORDER BY transfer_date, id`,
		userID, accountID, accountID, before,
	)
	if err != nil {
		return nil, err
	}
	return scanTransfers(rows)
}
