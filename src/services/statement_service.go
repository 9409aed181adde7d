package services

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"

	"github.com/Alltrendsfy/zenith-sub000/src/database"
	"github.com/Alltrendsfy/zenith-sub000/src/logger"
	"github.com/Alltrendsfy/zenith-sub000/src/models"
	"github.com/Alltrendsfy/zenith-sub000/src/utils"
)

// Statement entry classification. Two single-sided balance fields stand in
// for double entry here, so the sign convention lives in this package and in
// the settlement path, nowhere else.
const (
	entryCredit = "C"
	entryDebit  = "D"
)

type statementServiceImpl struct {
	reportCache *cache.Cache
}

func NewStatementService(reportCache *cache.Cache) StatementService {
	return &statementServiceImpl{reportCache: reportCache}
}

// BuildStatement rebuilds the chronological running-balance ledger of one
// account over [startDate, endDate]. It is a pure read: the running balance
// is recomputed from the immutable initial balance plus movement history,
// never copied from the live balance column. The two agree at endDate = today
// by construction, and a test pins that.
func (s *statementServiceImpl) BuildStatement(userID, accountID int64, startDate, endDate string) (*Statement, error) {
	if _, err := utils.ParseDate(startDate); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if _, err := utils.ParseDate(endDate); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if startDate > endDate {
		return nil, fmt.Errorf("%w: start date %s is after end date %s", ErrInvalidInput, startDate, endDate)
	}

	cacheKey := statementCacheKey(userID, accountID)
	if s.reportCache != nil {
		if cached, found := s.reportCache.Get(cacheKey); found {
			if stmt, ok := cached.(*Statement); ok && stmt.StartDate == startDate && stmt.EndDate == endDate {
				logger.L.Debug("Statement served from cache", "userID", userID, "accountID", accountID)
				return stmt, nil
			}
		}
	}

	account, err := models.GetBankAccountByID(database.DB, userID, accountID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: bank account %d", ErrNotFound, accountID)
	}
	if err != nil {
		return nil, fmt.Errorf("loading bank account %d: %w", accountID, err)
	}

	opening, err := s.openingBalance(account, startDate)
	if err != nil {
		return nil, err
	}

	entries, err := s.collectEntries(userID, accountID, startDate, endDate)
	if err != nil {
		return nil, err
	}

	// Ties on the same date keep insertion order within each source;
	// the sort must stay stable for that.
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date < entries[j].Date
	})

	running := opening
	totalCredits := decimal.Zero
	totalDebits := decimal.Zero
	for i := range entries {
		if entries[i].Type == entryCredit {
			running = running.Add(entries[i].Amount)
			totalCredits = totalCredits.Add(entries[i].Amount)
		} else {
			running = running.Sub(entries[i].Amount)
			totalDebits = totalDebits.Add(entries[i].Amount)
		}
		entries[i].RunningBalance = running
	}

	stmt := &Statement{
		BankAccountID:  accountID,
		StartDate:      startDate,
		EndDate:        endDate,
		OpeningBalance: opening,
		TotalCredits:   totalCredits,
		TotalDebits:    totalDebits,
		FinalBalance:   running,
		Entries:        entries,
	}

	if s.reportCache != nil {
		s.reportCache.Set(cacheKey, stmt, cache.DefaultExpiration)
	}
	return stmt, nil
}

// openingBalance replays all movements before startDate on top of the
// account's immutable initial balance.
func (s *statementServiceImpl) openingBalance(account *models.BankAccount, startDate string) (decimal.Decimal, error) {
	opening := account.InitialBalance

	payments, err := models.ListPaymentsByAccountBefore(database.DB, account.UserID, account.ID, startDate)
	if err != nil {
		return decimal.Zero, fmt.Errorf("loading prior payments: %w", err)
	}
	for _, p := range payments {
		if p.TransactionType == models.TypeReceivable {
			opening = opening.Add(p.Amount)
		} else {
			opening = opening.Sub(p.Amount)
		}
	}

	transfers, err := models.ListTransfersByAccountBefore(database.DB, account.UserID, account.ID, startDate)
	if err != nil {
		return decimal.Zero, fmt.Errorf("loading prior transfers: %w", err)
	}
	for _, t := range transfers {
		if t.ToAccountID == account.ID {
			opening = opening.Add(t.Amount)
		} else {
			opening = opening.Sub(t.Amount)
		}
	}
	return opening, nil
}

func (s *statementServiceImpl) collectEntries(userID, accountID int64, startDate, endDate string) ([]StatementEntry, error) {
	payments, err := models.ListPaymentsByAccountInRange(database.DB, userID, accountID, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("loading payments: %w", err)
	}
	transfers, err := models.ListTransfersByAccountInRange(database.DB, userID, accountID, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("loading transfers: %w", err)
	}

	entries := make([]StatementEntry, 0, len(payments)+len(transfers))
	for _, p := range payments {
		entryType := entryDebit
		description := "Pagamento"
		if p.TransactionType == models.TypeReceivable {
			entryType = entryCredit
			description = "Recebimento"
		}
		if p.Notes != "" {
			description = p.Notes
		}
		entries = append(entries, StatementEntry{
			Date:        p.PaymentDate,
			Type:        entryType,
			Source:      "settlement",
			Description: description,
			Amount:      p.Amount,
		})
	}
	for _, t := range transfers {
		entryType := entryDebit
		description := fmt.Sprintf("Transferência para conta %d", t.ToAccountID)
		if t.ToAccountID == accountID {
			entryType = entryCredit
			description = fmt.Sprintf("Transferência da conta %d", t.FromAccountID)
		}
		if t.Description != "" {
			description = t.Description
		}
		entries = append(entries, StatementEntry{
			Date:        t.TransferDate,
			Type:        entryType,
			Source:      "transfer",
			Description: description,
			Amount:      t.Amount,
		})
	}
	return entries, nil
}
