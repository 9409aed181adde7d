package models

import (
	"github.com/shopspring/decimal"
)

// BankAccount carries two balance fields: balance is the live figure mutated
// by settlements and transfers, initial_balance is the immutable opening
// snapshot statements are rebuilt from.
type BankAccount struct {
	ID             int64           `json:"id"`
	UserID         int64           `json:"user_id"`
	Name           string          `json:"name"`
	Balance        decimal.Decimal `json:"balance"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
}

func (a *BankAccount) Create(q Queryer) error {
	res, err := q.Exec(
		`INSERT INTO bank_accounts (user_id, name, balance, initial_balance) VALUES (?, ?, ?, ?)`,
		a.UserID, a.Name, Cents(a.Balance), Cents(a.InitialBalance),
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

func GetBankAccountByID(q Queryer, userID, id int64) (*BankAccount, error) {
	var a BankAccount
	var balance, initial int64
	err := q.QueryRow(
		`SELECT id, user_id, name, balance, initial_balance FROM bank_accounts WHERE id = ? AND user_id = ?`,
		id, userID,
	).Scan(&a.ID, &a.UserID, &a.Name, &balance, &initial)
	if err != nil {
		return nil, err
	}
	a.Balance = FromCents(balance)
	a.InitialBalance = FromCents(initial)
	return &a, nil
}

func ListBankAccounts(q Queryer, userID int64) ([]BankAccount, error) {
	rows, err := q.Query(
		`SELECT id, user_id, name, balance, initial_balance FROM bank_accounts WHERE user_id = ? ORDER BY name, id`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []BankAccount
	for rows.Next() {
		var a BankAccount
		var balance, initial int64
		if err := rows.Scan(&a.ID, &a.UserID, &a.Name, &balance, &initial); err != nil {
			return nil, err
		}
		a.Balance = FromCents(balance)
		a.InitialBalance = FromCents(initial)
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// RenameBankAccount updates the account name. Balance fields are only ever
// touched by the settlement and transfer paths.
func RenameBankAccount(q Queryer, userID, id int64, name string) (bool, error) {
	res, err := q.Exec(
		`UPDATE bank_accounts SET name = ? WHERE id = ? AND user_id = ?`,
		name, id, userID,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func DeleteBankAccount(q Queryer, userID, id int64) (bool, error) {
	res, err := q.Exec(`DELETE FROM bank_accounts WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// AdjustBankAccountBalance applies a signed delta as a relative update, so
// concurrent settlements never read-modify-write the column.
func AdjustBankAccountBalance(q Queryer, userID, id int64, delta decimal.Decimal) (bool, error) {
	res, err := q.Exec(
		`UPDATE bank_accounts SET balance = balance + ? WHERE id = ? AND user_id = ?`,
		Cents(delta), id, userID,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// DebitBankAccountIfSufficient subtracts amount only when the balance covers
// it. A false return means insufficient funds (or a missing account, which
// callers rule out first).
func DebitBankAccountIfSufficient(q Queryer, userID, id int64, amount decimal.Decimal) (bool, error) {
	cents := Cents(amount)
	res, err := q.Exec(
		`UPDATE bank_accounts SET balance = balance - ? WHERE id = ? AND user_id = ? AND balance >= ?`,
		cents, id, userID, cents,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// CountBankAccountDependents reports rows that block account deletion.
func CountBankAccountDependents(q Queryer, userID, id int64) (payments, transfers, obligations int, err error) {
	err = q.QueryRow(
		`SELECT
			(SELECT COUNT(*) FROM payments WHERE user_id = ? AND bank_account_id = ?),
			(SELECT COUNT(*) FROM bank_transfers WHERE user_id = ? AND (from_account_id = ? OR to_account_id = ?)),
			(SELECT COUNT(*) FROM obligations WHERE user_id = ? AND bank_account_id = ?)`,
		userID, id, userID, id, id, userID, id,
	).Scan(&payments, &transfers, &obligations)
	return
}
