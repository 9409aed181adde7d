package models

import (
	"database/sql"

	"github.com/shopspring/decimal"
)

// Payment is a settlement event ("baixa") against an obligation. Rows are
// append-only: they are the audit trail backing both the obligation's
// accumulated amount and the account balance.
type Payment struct {
	ID              int64           `json:"id"`
	UserID          int64           `json:"user_id"`
	TransactionType string          `json:"transaction_type"`
	TransactionID   int64           `json:"transaction_id"`
	PaymentMethod   string          `json:"payment_method,omitempty"`
	BankAccountID   int64           `json:"bank_account_id,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	PaymentDate     string          `json:"payment_date"`
	Notes           string          `json:"notes,omitempty"`
	Reference       string          `json:"reference"`
}

func (p *Payment) Create(q Queryer) error {
	res, err := q.Exec(
		`INSERT INTO payments (user_id, transaction_type, transaction_id, payment_method,
			bank_account_id, amount, payment_date, notes, reference)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.UserID, p.TransactionType, p.TransactionID, p.PaymentMethod,
		nullableID(p.BankAccountID), Cents(p.Amount), p.PaymentDate, p.Notes, p.Reference,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = id
	return nil
}

func scanPayments(rows *sql.Rows) ([]Payment, error) {
	defer rows.Close()
	var payments []Payment
	for rows.Next() {
		var p Payment
		var amount int64
		var method, notes sql.NullString
		var accountID sql.NullInt64
		if err := rows.Scan(
			&p.ID, &p.UserID, &p.TransactionType, &p.TransactionID, &method,
			&accountID, &amount, &p.PaymentDate, &notes, &p.Reference,
		); err != nil {
			return nil, err
		}
		p.PaymentMethod = fromNullString(method)
		p.Notes = fromNullString(notes)
		p.BankAccountID = fromNullID(accountID)
		p.Amount = FromCents(amount)
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

const paymentColumns = `id, user_id, transaction_type, transaction_id, payment_method,
	bank_account_id, amount, payment_date, notes, reference`

func ListPaymentsByObligation(q Queryer, userID, obligationID int64) ([]Payment, error) {
	rows, err := q.Query(
		`SELECT `+paymentColumns+` FROM payments
		WHERE user_id = ? AND transaction_id = ?
		ORDER BY payment_date, id`,
		userID, obligationID,
	)
	if err != nil {
		return nil, err
	}
	return scanPayments(rows)
}

// ListPaymentsByAccountInRange returns an account's settlement events with
// payment_date in [start, end], in date then insertion order.
func ListPaymentsByAccountInRange(q Queryer, userID, accountID int64, start, end string) ([]Payment, error) {
	rows, err := q.Query(
		`SELECT `+paymentColumns+` FROM payments
		WHERE user_id = ? AND bank_account_id = ? AND payment_date >= ? AND payment_date <= ?
		ORDER BY payment_date, id`,
		userID, accountID, start, end,
	)
	if err != nil {
		return nil, err
	}
	return scanPayments(rows)
}

// ListPaymentsByAccountBefore returns settlement events strictly before a
// date, for opening-balance reconstruction.
func ListPaymentsByAccountBefore(q Queryer, userID, accountID int64, before string) ([]Payment, error) {
	rows, err := q.Query(
		`SELECT `+paymentColumns+` FROM payments
		WHERE user_id = ? AND bank_account_id = ? AND payment_date < ?
		ORDER BY payment_date, id`,
		userID, accountID, before,
	)
	if err != nil {
		return nil, err
	}
	return scanPayments(rows)
}
