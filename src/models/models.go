package models

import "database/sql"

// Queryer is satisfied by both *sql.DB and *sql.Tx so the same query helpers
// can run standalone or inside a transaction.
type Queryer interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// Obligation types. Payables and receivables share one table; the type only
// changes the sign convention on bank balances and statements.
const (
	TypePayable    = "payable"
	TypeReceivable = "receivable"
)

// Obligation statuses.
const (
	StatusPendente  = "pendente"
	StatusParcial   = "parcial"
	StatusPago      = "pago"
	StatusVencido   = "vencido"
	StatusCancelado = "cancelado"
)

// Recurrence types.
const (
	RecurrenceUnica      = "unica"
	RecurrenceMensal     = "mensal"
	RecurrenceTrimestral = "trimestral"
	RecurrenceAnual      = "anual"
)

// Recurrence series states.
const (
	RecurrenceAtiva     = "ativa"
	RecurrencePausada   = "pausada"
	RecurrenceConcluida = "concluida"
)

func ValidObligationType(t string) bool {
	return t == TypePayable || t == TypeReceivable
}

func ValidRecurrenceType(t string) bool {
	switch t {
	case RecurrenceUnica, RecurrenceMensal, RecurrenceTrimestral, RecurrenceAnual:
		return true
	}
	return false
}

// RecurrenceStepMonths returns how many calendar months separate two
// occurrences of a series, or 0 for non-recurring obligations.
func RecurrenceStepMonths(t string) int {
	switch t {
	case RecurrenceMensal:
		return 1
	case RecurrenceTrimestral:
		return 3
	case RecurrenceAnual:
		return 12
	}
	return 0
}

// nullableID maps the in-memory "no reference" zero value to a SQL NULL.
// Foreign keys must not be stored as 0: the partial unique index on
// (recurrence_parent_id, due_date) relies on NULL parents being exempt.
func nullableID(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}

func fromNullID(n sql.NullInt64) int64 {
	if n.Valid {
		return n.Int64
	}
	return 0
}

func fromNullString(n sql.NullString) string {
	if n.Valid {
		return n.String
	}
	return ""
}
