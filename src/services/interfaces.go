package services

import (
	"github.com/shopspring/decimal"

	"github.com/Alltrendsfy/zenith-sub000/src/models"
)

// AllocationInput is one requested row of a percentage split.
type AllocationInput struct {
	CostCenterID int64           `json:"cost_center_id"`
	Percentage   decimal.Decimal `json:"percentage"`
}

// ComputedAllocation is an input annotated with its share of the total.
type ComputedAllocation struct {
	CostCenterID int64           `json:"cost_center_id"`
	Percentage   decimal.Decimal `json:"percentage"`
	Amount       decimal.Decimal `json:"amount"`
}

// AllocationService validates and computes cost-center splits, and replaces
// the persisted set for an obligation.
type AllocationService interface {
	Validate(inputs []AllocationInput) error
	ComputeAmounts(inputs []AllocationInput, totalAmount decimal.Decimal) []ComputedAllocation
	Replace(userID int64, transactionType string, transactionID int64, inputs []AllocationInput) ([]models.CostAllocation, error)
	List(userID int64, transactionType string, transactionID int64) ([]models.CostAllocation, error)
}

// RecurrenceService materialises due occurrences of recurring obligations.
// The sweep runs inline before obligation list reads, never on a timer.
type RecurrenceService interface {
	ProcessRecurrences(userID int64) (int, error)
}

// SettlementInput is one payment or receipt applied against an obligation.
type SettlementInput struct {
	Amount        decimal.Decimal `json:"amount"`
	PaymentDate   string          `json:"payment_date"`
	PaymentMethod string          `json:"payment_method"`
	BankAccountID int64           `json:"bank_account_id,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	// Reference makes retries idempotent: reusing one is rejected by a
	// uniqueness constraint instead of double-applying. Generated when empty.
	Reference string `json:"reference,omitempty"`
}

// SettlementResult carries the created payment and the obligation as updated
// by it.
type SettlementResult struct {
	Payment    models.Payment    `json:"payment"`
	Obligation models.Obligation `json:"obligation"`
}

// SettlementService applies baixas against obligations.
type SettlementService interface {
	SettlePayable(userID, obligationID int64, input SettlementInput) (*SettlementResult, error)
	SettleReceivable(userID, obligationID int64, input SettlementInput) (*SettlementResult, error)
	ListPayments(userID, obligationID int64) ([]models.Payment, error)
}

// TransferInput moves funds between two accounts of the same user.
type TransferInput struct {
	FromAccountID int64           `json:"from_account_id"`
	ToAccountID   int64           `json:"to_account_id"`
	Amount        decimal.Decimal `json:"amount"`
	TransferDate  string          `json:"transfer_date"`
	Description   string          `json:"description,omitempty"`
	Reference     string          `json:"reference,omitempty"`
}

type TransferService interface {
	CreateTransfer(userID int64, input TransferInput) (*models.BankTransfer, error)
	ListTransfers(userID int64) ([]models.BankTransfer, error)
}

// StatementEntry is one movement in a rebuilt account ledger. Type is "C"
// (credit) or "D" (debit); RunningBalance is the balance after this entry.
type StatementEntry struct {
	Date           string          `json:"date"`
	Type           string          `json:"type"`
	Source         string          `json:"source"`
	Description    string          `json:"description"`
	Amount         decimal.Decimal `json:"amount"`
	RunningBalance decimal.Decimal `json:"running_balance"`
}

// Statement is the chronological, running-balance view of one account over a
// date range, rebuilt from movements rather than read from the live balance.
type Statement struct {
	BankAccountID  int64            `json:"bank_account_id"`
	StartDate      string           `json:"start_date"`
	EndDate        string           `json:"end_date"`
	OpeningBalance decimal.Decimal  `json:"opening_balance"`
	TotalCredits   decimal.Decimal  `json:"total_credits"`
	TotalDebits    decimal.Decimal  `json:"total_debits"`
	FinalBalance   decimal.Decimal  `json:"final_balance"`
	Entries        []StatementEntry `json:"entries"`
}

type StatementService interface {
	BuildStatement(userID, accountID int64, startDate, endDate string) (*Statement, error)
}

// AccountInput creates or updates a bank account. InitialBalance is only
// honoured at creation; afterwards it is an immutable statement baseline.
type AccountInput struct {
	Name           string          `json:"name"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
}

type AccountService interface {
	CreateAccount(userID int64, input AccountInput) (*models.BankAccount, error)
	GetAccount(userID, id int64) (*models.BankAccount, error)
	ListAccounts(userID int64) ([]models.BankAccount, error)
	RenameAccount(userID, id int64, name string) (*models.BankAccount, error)
	DeleteAccount(userID, id int64) error
}

// ObligationInput creates a payable or receivable, optionally opening a
// recurring series.
type ObligationInput struct {
	Type              string          `json:"type"`
	Description       string          `json:"description"`
	Counterparty      string          `json:"counterparty,omitempty"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	IssueDate         string          `json:"issue_date"`
	DueDate           string          `json:"due_date"`
	CostCenterID      int64           `json:"cost_center_id,omitempty"`
	BankAccountID     int64           `json:"bank_account_id,omitempty"`
	RecurrenceType    string          `json:"recurrence_type,omitempty"`
	RecurrenceEndDate string          `json:"recurrence_end_date,omitempty"`
}

// ObligationUpdate mutates an existing obligation through the generic update
// path. Financial fields on paid obligations are protected.
type ObligationUpdate struct {
	Description       string          `json:"description"`
	Counterparty      string          `json:"counterparty,omitempty"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	IssueDate         string          `json:"issue_date"`
	DueDate           string          `json:"due_date"`
	CostCenterID      int64           `json:"cost_center_id,omitempty"`
	BankAccountID     int64           `json:"bank_account_id,omitempty"`
	RecurrenceStatus  string          `json:"recurrence_status,omitempty"`
	RecurrenceEndDate string          `json:"recurrence_end_date,omitempty"`
}

type ObligationService interface {
	Create(userID int64, input ObligationInput) (*models.Obligation, error)
	Get(userID, id int64) (*models.Obligation, error)
	List(userID int64, oType, status string) ([]models.Obligation, error)
	Update(userID, id int64, input ObligationUpdate) (*models.Obligation, error)
	Cancel(userID, id int64) (*models.Obligation, error)
	Delete(userID, id int64) error
}

// CostCenterInput creates or re-parents a cost center.
type CostCenterInput struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	ParentID int64  `json:"parent_id,omitempty"`
}

type CostCenterService interface {
	Create(userID int64, input CostCenterInput) (*models.CostCenter, error)
	List(userID int64) ([]models.CostCenter, error)
	Update(userID, id int64, input CostCenterInput) (*models.CostCenter, error)
	Delete(userID, id int64) error
}
