package services

import (
	"testing"

	"github.com/Alltrendsfy/zenith-sub000/src/database"
	"github.com/Alltrendsfy/zenith-sub000/src/models"
)

func recurrenceServiceAt(date string) RecurrenceService {
	return &recurrenceServiceImpl{now: fixedClock(date)}
}

func TestProcessRecurrencesCatchesUp(t *testing.T) {
	newTestDB(t)
	userID := createTestUser(t, "recurrence-catchup")
	parent := createTestObligation(t, userID, ObligationInput{
		Type:           models.TypePayable,
		Description:    "Aluguel mensal",
		TotalAmount:    dec("1500.00"),
		IssueDate:      "2024-01-01",
		DueDate:        "2024-01-06",
		RecurrenceType: models.RecurrenceMensal,
	})

	created, err := recurrenceServiceAt("2024-03-10").ProcessRecurrences(userID)
	if err != nil {
		t.Fatalf("ProcessRecurrences() error: %v", err)
	}
	if created != 3 {
		t.Fatalf("ProcessRecurrences() created %d occurrences, want 3", created)
	}

	children, err := listChildren(t, userID, parent.ID)
	if err != nil {
		t.Fatalf("listing children: %v", err)
	}
	wantDue := []string{"2024-01-06", "2024-02-06", "2024-03-06"}
	wantIssue := []string{"2024-01-01", "2024-02-01", "2024-03-01"}
	if len(children) != len(wantDue) {
		t.Fatalf("got %d children, want %d", len(children), len(wantDue))
	}
	for i, c := range children {
		if c.DueDate != wantDue[i] {
			t.Errorf("child %d due date = %s, want %s", i, c.DueDate, wantDue[i])
		}
		if c.IssueDate != wantIssue[i] {
			t.Errorf("child %d issue date = %s, want %s", i, c.IssueDate, wantIssue[i])
		}
		if c.Status != models.StatusPendente {
			t.Errorf("child %d status = %q, want %q", i, c.Status, models.StatusPendente)
		}
		if c.RecurrenceType != models.RecurrenceUnica {
			t.Errorf("child %d recurrence type = %q, want %q", i, c.RecurrenceType, models.RecurrenceUnica)
		}
		assertDecimalEqual(t, "child amount", c.TotalAmount, dec("1500.00"))
	}

	reloaded, err := NewObligationService().Get(userID, parent.ID)
	if err != nil {
		t.Fatalf("Get(parent) error: %v", err)
	}
	if reloaded.RecurrenceNextDate != "2024-04-06" {
		t.Errorf("parent next date = %s, want 2024-04-06", reloaded.RecurrenceNextDate)
	}
	if reloaded.RecurrenceStatus != models.RecurrenceAtiva {
		t.Errorf("parent recurrence status = %q, want %q", reloaded.RecurrenceStatus, models.RecurrenceAtiva)
	}
}

func TestProcessRecurrencesIsIdempotent(t *testing.T) {
	newTestDB(t)
	userID := createTestUser(t, "recurrence-idempotent")
	parent := createTestObligation(t, userID, ObligationInput{
		Type:           models.TypePayable,
		Description:    "Assinatura",
		TotalAmount:    dec("99.90"),
		IssueDate:      "2024-01-01",
		DueDate:        "2024-01-05",
		RecurrenceType: models.RecurrenceMensal,
	})

	svc := recurrenceServiceAt("2024-02-20")
	first, err := svc.ProcessRecurrences(userID)
	if err != nil {
		t.Fatalf("first sweep error: %v", err)
	}
	if first != 2 {
		t.Fatalf("first sweep created %d, want 2", first)
	}

	second, err := svc.ProcessRecurrences(userID)
	if err != nil {
		t.Fatalf("second sweep error: %v", err)
	}
	if second != 0 {
		t.Errorf("second sweep created %d, want 0", second)
	}

	children, err := listChildren(t, userID, parent.ID)
	if err != nil {
		t.Fatalf("listing children: %v", err)
	}
	if len(children) != 2 {
		t.Errorf("got %d children after double sweep, want 2", len(children))
	}
}

func TestProcessRecurrencesQuarterlyStep(t *testing.T) {
	newTestDB(t)
	userID := createTestUser(t, "recurrence-quarterly")
	parent := createTestObligation(t, userID, ObligationInput{
		Type:           models.TypeReceivable,
		Description:    "Contrato trimestral",
		TotalAmount:    dec("4500.00"),
		IssueDate:      "2024-01-10",
		DueDate:        "2024-01-10",
		RecurrenceType: models.RecurrenceTrimestral,
	})

	created, err := recurrenceServiceAt("2024-08-01").ProcessRecurrences(userID)
	if err != nil {
		t.Fatalf("ProcessRecurrences() error: %v", err)
	}
	if created != 3 {
		t.Fatalf("created %d occurrences, want 3", created)
	}

	children, err := listChildren(t, userID, parent.ID)
	if err != nil {
		t.Fatalf("listing children: %v", err)
	}
	wantDue := []string{"2024-01-10", "2024-04-10", "2024-07-10"}
	for i, c := range children {
		if c.DueDate != wantDue[i] {
			t.Errorf("child %d due date = %s, want %s", i, c.DueDate, wantDue[i])
		}
	}
}

func TestProcessRecurrencesMonthEndClamping(t *testing.T) {
	newTestDB(t)
	userID := createTestUser(t, "recurrence-clamp")
	parent := createTestObligation(t, userID, ObligationInput{
		Type:           models.TypePayable,
		Description:    "Vencimento fim de mes",
		TotalAmount:    dec("500.00"),
		IssueDate:      "2024-01-31",
		DueDate:        "2024-01-31",
		RecurrenceType: models.RecurrenceMensal,
	})

	created, err := recurrenceServiceAt("2024-03-05").ProcessRecurrences(userID)
	if err != nil {
		t.Fatalf("ProcessRecurrences() error: %v", err)
	}
	if created != 2 {
		t.Fatalf("created %d occurrences, want 2", created)
	}

	children, err := listChildren(t, userID, parent.ID)
	if err != nil {
		t.Fatalf("listing children: %v", err)
	}
	// Jan 31 + 1 month clamps to Feb 29 in a leap year instead of spilling
	// into March.
	wantDue := []string{"2024-01-31", "2024-02-29"}
	for i, c := range children {
		if c.DueDate != wantDue[i] {
			t.Errorf("child %d due date = %s, want %s", i, c.DueDate, wantDue[i])
		}
	}
}

func TestProcessRecurrencesEndDateClosesSeries(t *testing.T) {
	newTestDB(t)
	userID := createTestUser(t, "recurrence-enddate")
	parent := createTestObligation(t, userID, ObligationInput{
		Type:              models.TypePayable,
		Description:       "Serie limitada",
		TotalAmount:       dec("250.00"),
		IssueDate:         "2024-01-15",
		DueDate:           "2024-01-15",
		RecurrenceType:    models.RecurrenceMensal,
		RecurrenceEndDate: "2024-03-20",
	})

	created, err := recurrenceServiceAt("2024-06-01").ProcessRecurrences(userID)
	if err != nil {
		t.Fatalf("ProcessRecurrences() error: %v", err)
	}
	// The occurrence on the end-date boundary is still generated; only the
	// one that would fall past it is not.
	if created != 3 {
		t.Fatalf("created %d occurrences, want 3", created)
	}

	children, err := listChildren(t, userID, parent.ID)
	if err != nil {
		t.Fatalf("listing children: %v", err)
	}
	wantDue := []string{"2024-01-15", "2024-02-15", "2024-03-15"}
	for i, c := range children {
		if c.DueDate != wantDue[i] {
			t.Errorf("child %d due date = %s, want %s", i, c.DueDate, wantDue[i])
		}
	}

	reloaded, err := NewObligationService().Get(userID, parent.ID)
	if err != nil {
		t.Fatalf("Get(parent) error: %v", err)
	}
	if reloaded.RecurrenceStatus != models.RecurrenceConcluida {
		t.Errorf("parent recurrence status = %q, want %q", reloaded.RecurrenceStatus, models.RecurrenceConcluida)
	}
}

func TestProcessRecurrencesSkipsPausedSeries(t *testing.T) {
	newTestDB(t)
	userID := createTestUser(t, "recurrence-paused")
	parent := createTestObligation(t, userID, ObligationInput{
		Type:           models.TypePayable,
		Description:    "Serie pausada",
		TotalAmount:    dec("100.00"),
		IssueDate:      "2024-01-01",
		DueDate:        "2024-01-10",
		RecurrenceType: models.RecurrenceMensal,
	})
	if _, err := database.DB.Exec(
		`UPDATE obligations SET recurrence_status = ? WHERE id = ?`,
		models.RecurrencePausada, parent.ID,
	); err != nil {
		t.Fatalf("pausing series: %v", err)
	}

	created, err := recurrenceServiceAt("2024-05-01").ProcessRecurrences(userID)
	if err != nil {
		t.Fatalf("ProcessRecurrences() error: %v", err)
	}
	if created != 0 {
		t.Errorf("paused series generated %d occurrences, want 0", created)
	}
}

func TestProcessRecurrencesNothingDue(t *testing.T) {
	newTestDB(t)
	userID := createTestUser(t, "recurrence-future")
	createTestObligation(t, userID, ObligationInput{
		Type:           models.TypePayable,
		Description:    "Futura",
		TotalAmount:    dec("100.00"),
		IssueDate:      "2024-06-01",
		DueDate:        "2024-06-10",
		RecurrenceType: models.RecurrenceMensal,
	})

	created, err := recurrenceServiceAt("2024-05-01").ProcessRecurrences(userID)
	if err != nil {
		t.Fatalf("ProcessRecurrences() error: %v", err)
	}
	if created != 0 {
		t.Errorf("future series generated %d occurrences, want 0", created)
	}
}

// listChildren returns the generated occurrences of a series ordered by due
// date.
func listChildren(t *testing.T, userID, parentID int64) ([]models.Obligation, error) {
	t.Helper()
	all, err := models.ListObligations(database.DB, userID, models.TypePayable, "")
	if err != nil {
		return nil, err
	}
	receivables, err := models.ListObligations(database.DB, userID, models.TypeReceivable, "")
	if err != nil {
		return nil, err
	}
	all = append(all, receivables...)

	var children []models.Obligation
	for _, o := range all {
		if o.RecurrenceParentID == parentID {
			children = append(children, o)
		}
	}
	for i := 0; i < len(children); i++ {
		for j := i + 1; j < len(children); j++ {
			if children[j].DueDate < children[i].DueDate {
				children[i], children[j] = children[j], children[i]
			}
		}
	}
	return children, nil
}
