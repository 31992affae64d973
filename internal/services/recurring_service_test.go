package services

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	"budgetiq/internal/models"
	"budgetiq/internal/money"
	"budgetiq/internal/recurring"
	"budgetiq/internal/testutil"
)

func createTemplate(t *testing.T, db *gorm.DB, accountID string, interval recurring.Interval, amount money.Amount, date time.Time) *models.Transaction {
	t.Helper()
	svc := newTransactionService(db)
	tx, err := svc.CreateTransaction(context.Background(), TransactionInput{
		AccountID:         accountID,
		Type:              models.TransactionTypeExpense,
		Amount:            amount,
		Description:       "rent",
		Date:              date,
		Category:          "housing",
		IsRecurring:       true,
		RecurringInterval: intervalPtr(interval),
	})
	testutil.AssertNoError(t, err)
	return tx
}

func TestProcessDue(t *testing.T) {
	ctx := context.Background()

	t.Run("books_each_elapsed_period", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		account := testutil.CreateTestAccount(t, db)
		template := createTemplate(t, db, account.ID, recurring.Monthly, 10000, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC))
		svc := NewRecurringService(db, NewAccountService(db))

		now := time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC)
		created, err := svc.ProcessDue(ctx, now)
		testutil.AssertNoError(t, err)

		// Feb 29 and Mar 29 are due; Apr 29 is not.
		if created != 2 {
			t.Errorf("expected 2 occurrences, got %d", created)
		}
		testutil.AssertBalance(t, db, account.ID, -30000)
		testutil.AssertBalanceInvariant(t, db, account.ID)

		var reloaded models.Transaction
		db.Where("id = ?", template.ID).First(&reloaded)
		want := time.Date(2024, 4, 29, 0, 0, 0, 0, time.UTC)
		if reloaded.NextRecurringDate == nil || !reloaded.NextRecurringDate.Equal(want) {
			t.Errorf("expected next recurring date %s, got %v", want, reloaded.NextRecurringDate)
		}
		if reloaded.LastProcessed == nil || !reloaded.LastProcessed.Equal(now) {
			t.Errorf("expected last processed %s, got %v", now, reloaded.LastProcessed)
		}

		var occurrences []models.Transaction
		db.Where("account_id = ? AND is_recurring = ?", account.ID, false).Order("date ASC").Find(&occurrences)
		if len(occurrences) != 2 {
			t.Fatalf("expected 2 occurrence rows, got %d", len(occurrences))
		}
		if !occurrences[0].Date.Equal(time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("expected first occurrence on 2024-02-29, got %s", occurrences[0].Date)
		}
	})

	t.Run("second_run_is_idempotent", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		account := testutil.CreateTestAccount(t, db)
		createTemplate(t, db, account.ID, recurring.Daily, 100, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
		svc := NewRecurringService(db, NewAccountService(db))

		now := time.Date(2024, 6, 4, 12, 0, 0, 0, time.UTC)
		first, err := svc.ProcessDue(ctx, now)
		testutil.AssertNoError(t, err)
		second, err := svc.ProcessDue(ctx, now)
		testutil.AssertNoError(t, err)

		if first != 3 || second != 0 {
			t.Errorf("expected 3 then 0 occurrences, got %d then %d", first, second)
		}
		testutil.AssertBalanceInvariant(t, db, account.ID)
	})

	t.Run("skips_pending_and_future", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		account := testutil.CreateTestAccount(t, db)
		now := time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC)

		createTemplate(t, db, account.ID, recurring.Yearly, 100, now)
		pending, err := newTransactionService(db).CreateTransaction(ctx, TransactionInput{
			AccountID: account.ID, Type: models.TransactionTypeIncome, Amount: 100,
			Date: now.AddDate(-1, 0, 0), IsRecurring: true, RecurringInterval: intervalPtr(recurring.Weekly),
			Status: models.TransactionStatusPending,
		})
		testutil.AssertNoError(t, err)

		svc := NewRecurringService(db, NewAccountService(db))
		created, err := svc.ProcessDue(ctx, now)
		testutil.AssertNoError(t, err)
		if created != 0 {
			t.Errorf("expected no occurrences, got %d", created)
		}

		var reloaded models.Transaction
		db.Where("id = ?", pending.ID).First(&reloaded)
		if reloaded.LastProcessed != nil {
			t.Error("expected pending template to be untouched")
		}
	})
}

func TestProcessDue_AfterEdit(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC)

	edit := func(t *testing.T, svc TransactionServicer, template *models.Transaction, description string, date time.Time) {
		t.Helper()
		_, err := svc.UpdateTransaction(ctx, template.ID, TransactionInput{
			AccountID:         template.AccountID,
			Type:              template.Type,
			Amount:            template.Amount,
			Description:       description,
			Date:              date,
			Category:          template.Category,
			IsRecurring:       true,
			RecurringInterval: intervalPtr(recurring.Monthly),
		})
		testutil.AssertNoError(t, err)
	}

	t.Run("description_change_keeps_schedule", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		account := testutil.CreateTestAccount(t, db)
		template := createTemplate(t, db, account.ID, recurring.Monthly, 10000, start)
		svc := NewRecurringService(db, NewAccountService(db))

		first, err := svc.ProcessDue(ctx, now)
		testutil.AssertNoError(t, err)
		if first != 4 {
			t.Fatalf("expected 4 occurrences, got %d", first)
		}

		edit(t, newTransactionService(db), template, "rent (renewed lease)", start)

		second, err := svc.ProcessDue(ctx, now)
		testutil.AssertNoError(t, err)
		if second != 0 {
			t.Errorf("expected no occurrences after edit, got %d", second)
		}
		testutil.AssertBalance(t, db, account.ID, -50000)
		testutil.AssertBalanceInvariant(t, db, account.ID)

		var reloaded models.Transaction
		db.Where("id = ?", template.ID).First(&reloaded)
		want := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
		if reloaded.NextRecurringDate == nil || !reloaded.NextRecurringDate.Equal(want) {
			t.Errorf("expected next recurring date %s, got %v", want, reloaded.NextRecurringDate)
		}
	})

	t.Run("date_change_resumes_after_last_run", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		account := testutil.CreateTestAccount(t, db)
		template := createTemplate(t, db, account.ID, recurring.Monthly, 10000, start)
		svc := NewRecurringService(db, NewAccountService(db))

		_, err := svc.ProcessDue(ctx, now)
		testutil.AssertNoError(t, err)

		edit(t, newTransactionService(db), template, "rent", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))

		var reloaded models.Transaction
		db.Where("id = ?", template.ID).First(&reloaded)
		want := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
		if reloaded.NextRecurringDate == nil || !reloaded.NextRecurringDate.Equal(want) {
			t.Fatalf("expected next recurring date %s, got %v", want, reloaded.NextRecurringDate)
		}

		created, err := svc.ProcessDue(ctx, time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC))
		testutil.AssertNoError(t, err)
		if created != 1 {
			t.Errorf("expected 1 occurrence, got %d", created)
		}
		testutil.AssertBalance(t, db, account.ID, -60000)
		testutil.AssertBalanceInvariant(t, db, account.ID)
	})

	t.Run("never_processed_template_recomputes_from_date", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		account := testutil.CreateTestAccount(t, db)
		template := createTemplate(t, db, account.ID, recurring.Monthly, 10000, start)

		edit(t, newTransactionService(db), template, "rent", time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC))

		var reloaded models.Transaction
		db.Where("id = ?", template.ID).First(&reloaded)
		want := time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC)
		if reloaded.NextRecurringDate == nil || !reloaded.NextRecurringDate.Equal(want) {
			t.Errorf("expected next recurring date %s, got %v", want, reloaded.NextRecurringDate)
		}
	})
}

func TestProcessTemplate_SkipsNonCompleted(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	account := testutil.CreateTestAccount(t, db)
	template := createTemplate(t, db, account.ID, recurring.Daily, 100, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))

	// Status flipped after the due scan picked the template up.
	if err := db.Model(&models.Transaction{}).Where("id = ?", template.ID).
		Update("status", models.TransactionStatusPending).Error; err != nil {
		t.Fatalf("failed to update status: %v", err)
	}

	svc := NewRecurringService(db, NewAccountService(db)).(*recurringService)
	created, err := svc.processTemplate(ctx, template.ID, time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC))
	testutil.AssertNoError(t, err)
	if created != 0 {
		t.Errorf("expected no occurrences, got %d", created)
	}

	var reloaded models.Transaction
	db.Where("id = ?", template.ID).First(&reloaded)
	if reloaded.LastProcessed != nil {
		t.Error("expected template to be untouched")
	}
	testutil.AssertBalance(t, db, account.ID, -100)
}
