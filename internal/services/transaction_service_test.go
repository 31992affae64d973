package services

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"budgetiq/internal/models"
	"budgetiq/internal/money"
	"budgetiq/internal/pagination"
	"budgetiq/internal/recurring"
	"budgetiq/internal/testutil"
)

const missingID = "0190f0c4-0000-7000-8000-000000000000"

func newTransactionService(db *gorm.DB) TransactionServicer {
	return NewTransactionService(db, NewAccountService(db))
}

func intervalPtr(i recurring.Interval) *recurring.Interval { return &i }

// failAccountUpdates makes every UPDATE on the accounts table fail, so a
// ledger operation errors after its transaction rows were written.
func failAccountUpdates(t *testing.T, db *gorm.DB) {
	t.Helper()
	err := db.Callback().Update().Before("gorm:update").Register("test:fail_account_update", func(tx *gorm.DB) {
		if tx.Statement.Table == "accounts" {
			_ = tx.AddError(errors.New("injected balance failure"))
		}
	})
	if err != nil {
		t.Fatalf("failed to register callback: %v", err)
	}
}

func TestCreateTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("income_and_expense_adjust_balance", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionService(db)
		account := testutil.CreateTestAccount(t, db)

		_, err := svc.CreateTransaction(ctx, TransactionInput{
			AccountID: account.ID, Type: models.TransactionTypeIncome, Amount: 10000, Category: "salary",
		})
		testutil.AssertNoError(t, err)
		tx, err := svc.CreateTransaction(ctx, TransactionInput{
			AccountID: account.ID, Type: models.TransactionTypeExpense, Amount: 2550, Category: "food",
		})
		testutil.AssertNoError(t, err)

		if tx.Status != models.TransactionStatusCompleted {
			t.Errorf("expected default status COMPLETED, got %s", tx.Status)
		}
		if tx.IsRecurring || tx.RecurringInterval != nil || tx.NextRecurringDate != nil {
			t.Error("expected non-recurring transaction to carry no recurrence fields")
		}
		testutil.AssertBalance(t, db, account.ID, 7450)
		testutil.AssertBalanceInvariant(t, db, account.ID)
	})

	t.Run("recurring_sets_next_date", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionService(db)
		account := testutil.CreateTestAccount(t, db)

		date := time.Date(2024, 1, 31, 9, 0, 0, 0, time.UTC)
		tx, err := svc.CreateTransaction(ctx, TransactionInput{
			AccountID: account.ID, Type: models.TransactionTypeExpense, Amount: 1200, Date: date,
			IsRecurring: true, RecurringInterval: intervalPtr(recurring.Monthly),
		})
		testutil.AssertNoError(t, err)

		want := time.Date(2024, 2, 29, 9, 0, 0, 0, time.UTC)
		if tx.NextRecurringDate == nil || !tx.NextRecurringDate.Equal(want) {
			t.Errorf("expected next recurring date %s, got %v", want, tx.NextRecurringDate)
		}
	})

	t.Run("validation", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionService(db)
		account := testutil.CreateTestAccount(t, db)

		tests := []struct {
			name  string
			input TransactionInput
			code  string
		}{
			{"zero_amount", TransactionInput{AccountID: account.ID, Type: models.TransactionTypeIncome, Amount: 0}, "INVALID_AMOUNT"},
			{"negative_amount", TransactionInput{AccountID: account.ID, Type: models.TransactionTypeIncome, Amount: -100}, "INVALID_AMOUNT"},
			{"amount_above_maximum", TransactionInput{AccountID: account.ID, Type: models.TransactionTypeIncome, Amount: money.MaxAmount + 1}, "INVALID_AMOUNT"},
			{"amount_max_int64", TransactionInput{AccountID: account.ID, Type: models.TransactionTypeIncome, Amount: math.MaxInt64}, "INVALID_AMOUNT"},
			{"bad_type", TransactionInput{AccountID: account.ID, Type: "TRANSFER", Amount: 100}, "INVALID_TRANSACTION_TYPE"},
			{"bad_status", TransactionInput{AccountID: account.ID, Type: models.TransactionTypeIncome, Amount: 100, Status: "VOID"}, "INVALID_STATUS"},
			{"missing_account_id", TransactionInput{Type: models.TransactionTypeIncome, Amount: 100}, "INVALID_INPUT"},
			{"recurring_without_interval", TransactionInput{AccountID: account.ID, Type: models.TransactionTypeIncome, Amount: 100, IsRecurring: true}, "INVALID_RECURRING_INTERVAL"},
			{"unknown_interval", TransactionInput{AccountID: account.ID, Type: models.TransactionTypeIncome, Amount: 100, IsRecurring: true, RecurringInterval: intervalPtr("HOURLY")}, "INVALID_RECURRING_INTERVAL"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := svc.CreateTransaction(ctx, tt.input)
				testutil.AssertAppError(t, err, tt.code)
			})
		}

		testutil.AssertBalance(t, db, account.ID, 0)
	})

	t.Run("balance_limit_rejects_and_rolls_back", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionService(db)
		account := testutil.CreateTestAccount(t, db)

		_, err := svc.CreateTransaction(ctx, TransactionInput{AccountID: account.ID, Type: models.TransactionTypeIncome, Amount: money.MaxAmount})
		testutil.AssertNoError(t, err)

		_, err = svc.CreateTransaction(ctx, TransactionInput{AccountID: account.ID, Type: models.TransactionTypeIncome, Amount: 100})
		testutil.AssertAppError(t, err, "BALANCE_OUT_OF_RANGE")

		if _, err := NewAccountService(db).GetAccountByID(ctx, account.ID); err != nil {
			t.Fatalf("expected account to stay readable: %v", err)
		}
		testutil.AssertBalance(t, db, account.ID, money.MaxAmount)
		testutil.AssertBalanceInvariant(t, db, account.ID)

		_, err = svc.CreateTransaction(ctx, TransactionInput{AccountID: account.ID, Type: models.TransactionTypeExpense, Amount: 100})
		testutil.AssertNoError(t, err)
		testutil.AssertBalance(t, db, account.ID, money.MaxAmount-100)
	})

	t.Run("account_not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionService(db)

		_, err := svc.CreateTransaction(ctx, TransactionInput{AccountID: missingID, Type: models.TransactionTypeIncome, Amount: 100})
		testutil.AssertAppError(t, err, "ACCOUNT_NOT_FOUND")

		var count int64
		db.Model(&models.Transaction{}).Count(&count)
		if count != 0 {
			t.Errorf("expected no transaction rows, got %d", count)
		}
	})

	t.Run("balance_failure_rolls_back_insert", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		account := testutil.CreateTestAccount(t, db)
		failAccountUpdates(t, db)
		svc := newTransactionService(db)

		_, err := svc.CreateTransaction(ctx, TransactionInput{AccountID: account.ID, Type: models.TransactionTypeIncome, Amount: 100})
		testutil.AssertAppError(t, err, "INTERNAL_ERROR")

		var count int64
		db.Model(&models.Transaction{}).Count(&count)
		if count != 0 {
			t.Errorf("expected insert to be rolled back, found %d rows", count)
		}
		testutil.AssertBalance(t, db, account.ID, 0)
	})

	t.Run("concurrent_creates_compose", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionService(db)
		account := testutil.CreateTestAccount(t, db)

		const workers = 20
		var wg sync.WaitGroup
		errs := make(chan error, workers)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				txType := models.TransactionTypeIncome
				if i%2 == 1 {
					txType = models.TransactionTypeExpense
				}
				_, err := svc.CreateTransaction(ctx, TransactionInput{AccountID: account.ID, Type: txType, Amount: money.Amount(100 * (i + 1))})
				errs <- err
			}(i)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			testutil.AssertNoError(t, err)
		}

		// Incomes are odd multiples of 100, expenses even: 10 pairs of -100.
		testutil.AssertBalance(t, db, account.ID, -1000)
		testutil.AssertBalanceInvariant(t, db, account.ID)
	})
}

func TestUpdateTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("net_delta_on_same_account", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionService(db)
		account := testutil.CreateTestAccount(t, db)

		tx, err := svc.CreateTransaction(ctx, TransactionInput{AccountID: account.ID, Type: models.TransactionTypeExpense, Amount: 10000})
		testutil.AssertNoError(t, err)
		before := testutil.Balance(t, db, account.ID)

		updated, err := svc.UpdateTransaction(ctx, tx.ID, TransactionInput{
			AccountID: account.ID, Type: models.TransactionTypeIncome, Amount: 4000, Description: "refund",
		})
		testutil.AssertNoError(t, err)

		if updated.Type != models.TransactionTypeIncome || updated.Amount != 4000 {
			t.Errorf("expected INCOME 40.00, got %s %s", updated.Type, updated.Amount)
		}
		if updated.Description != "refund" {
			t.Errorf("expected description refund, got %q", updated.Description)
		}
		testutil.AssertBalance(t, db, account.ID, before+14000)
		testutil.AssertBalanceInvariant(t, db, account.ID)
	})

	t.Run("moving_account_adjusts_both", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionService(db)
		from := testutil.CreateTestAccount(t, db)
		to := testutil.CreateTestAccount(t, db)

		tx, err := svc.CreateTransaction(ctx, TransactionInput{AccountID: from.ID, Type: models.TransactionTypeIncome, Amount: 5000})
		testutil.AssertNoError(t, err)

		_, err = svc.UpdateTransaction(ctx, tx.ID, TransactionInput{AccountID: to.ID, Type: models.TransactionTypeExpense, Amount: 2000})
		testutil.AssertNoError(t, err)

		testutil.AssertBalance(t, db, from.ID, 0)
		testutil.AssertBalance(t, db, to.ID, -2000)
		testutil.AssertBalanceInvariant(t, db, from.ID)
		testutil.AssertBalanceInvariant(t, db, to.ID)
	})

	t.Run("recurrence_recomputed_and_cleared", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionService(db)
		account := testutil.CreateTestAccount(t, db)

		date := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
		tx, err := svc.CreateTransaction(ctx, TransactionInput{AccountID: account.ID, Type: models.TransactionTypeExpense, Amount: 900, Date: date})
		testutil.AssertNoError(t, err)

		updated, err := svc.UpdateTransaction(ctx, tx.ID, TransactionInput{
			AccountID: account.ID, Type: models.TransactionTypeExpense, Amount: 900, Date: date,
			IsRecurring: true, RecurringInterval: intervalPtr(recurring.Weekly),
		})
		testutil.AssertNoError(t, err)
		want := date.AddDate(0, 0, 7)
		if updated.NextRecurringDate == nil || !updated.NextRecurringDate.Equal(want) {
			t.Errorf("expected next recurring date %s, got %v", want, updated.NextRecurringDate)
		}

		cleared, err := svc.UpdateTransaction(ctx, tx.ID, TransactionInput{AccountID: account.ID, Type: models.TransactionTypeExpense, Amount: 900, Date: date})
		testutil.AssertNoError(t, err)
		if cleared.IsRecurring || cleared.RecurringInterval != nil || cleared.NextRecurringDate != nil {
			t.Error("expected recurrence fields to be cleared")
		}
		testutil.AssertBalance(t, db, account.ID, -900)
	})

	t.Run("not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionService(db)
		account := testutil.CreateTestAccount(t, db)

		_, err := svc.UpdateTransaction(ctx, missingID, TransactionInput{AccountID: account.ID, Type: models.TransactionTypeIncome, Amount: 100})
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
		testutil.AssertBalance(t, db, account.ID, 0)
	})

	t.Run("target_account_not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionService(db)
		account := testutil.CreateTestAccount(t, db)
		tx := testutil.CreateTestTransaction(t, db, account.ID, models.TransactionTypeIncome, 300)

		_, err := svc.UpdateTransaction(ctx, tx.ID, TransactionInput{AccountID: missingID, Type: models.TransactionTypeIncome, Amount: 300})
		testutil.AssertAppError(t, err, "ACCOUNT_NOT_FOUND")
		testutil.AssertBalance(t, db, account.ID, 300)
	})

	t.Run("invalid_input_writes_nothing", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionService(db)
		account := testutil.CreateTestAccount(t, db)
		tx := testutil.CreateTestTransaction(t, db, account.ID, models.TransactionTypeIncome, 300)

		_, err := svc.UpdateTransaction(ctx, tx.ID, TransactionInput{AccountID: account.ID, Type: models.TransactionTypeIncome, Amount: 0})
		testutil.AssertAppError(t, err, "INVALID_AMOUNT")

		reloaded, err := svc.GetTransactionByID(ctx, tx.ID)
		testutil.AssertNoError(t, err)
		if reloaded.Amount != 300 {
			t.Errorf("expected amount to stay 3.00, got %s", reloaded.Amount)
		}
	})

	t.Run("balance_failure_rolls_back_update", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		account := testutil.CreateTestAccount(t, db)
		tx := testutil.CreateTestTransaction(t, db, account.ID, models.TransactionTypeIncome, 300)
		failAccountUpdates(t, db)
		svc := newTransactionService(db)

		_, err := svc.UpdateTransaction(ctx, tx.ID, TransactionInput{AccountID: account.ID, Type: models.TransactionTypeIncome, Amount: 800})
		testutil.AssertAppError(t, err, "INTERNAL_ERROR")

		var reloaded models.Transaction
		db.Where("id = ?", tx.ID).First(&reloaded)
		if reloaded.Amount != 300 {
			t.Errorf("expected amount to stay 3.00, got %s", reloaded.Amount)
		}
		testutil.AssertBalance(t, db, account.ID, 300)
	})
}

func TestBulkDeleteTransactions(t *testing.T) {
	ctx := context.Background()

	t.Run("reverses_balances", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionService(db)
		account := testutil.CreateTestAccount(t, db)

		income := testutil.CreateTestTransaction(t, db, account.ID, models.TransactionTypeIncome, 5000)
		expense := testutil.CreateTestTransaction(t, db, account.ID, models.TransactionTypeExpense, 3000)
		testutil.CreateTestTransaction(t, db, account.ID, models.TransactionTypeIncome, 100)
		before := testutil.Balance(t, db, account.ID)

		err := svc.BulkDeleteTransactions(ctx, []string{income.ID, expense.ID})
		testutil.AssertNoError(t, err)

		testutil.AssertBalance(t, db, account.ID, before-2000)
		testutil.AssertBalanceInvariant(t, db, account.ID)

		var count int64
		db.Unscoped().Model(&models.Transaction{}).Where("account_id = ?", account.ID).Count(&count)
		if count != 1 {
			t.Errorf("expected 1 remaining transaction, got %d", count)
		}
	})

	t.Run("spans_accounts", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionService(db)
		a := testutil.CreateTestAccount(t, db)
		b := testutil.CreateTestAccount(t, db)

		t1 := testutil.CreateTestTransaction(t, db, a.ID, models.TransactionTypeIncome, 1000)
		t2 := testutil.CreateTestTransaction(t, db, a.ID, models.TransactionTypeExpense, 400)
		t3 := testutil.CreateTestTransaction(t, db, b.ID, models.TransactionTypeExpense, 250)

		err := svc.BulkDeleteTransactions(ctx, []string{t1.ID, t2.ID, t3.ID, t1.ID})
		testutil.AssertNoError(t, err)

		testutil.AssertBalance(t, db, a.ID, 0)
		testutil.AssertBalance(t, db, b.ID, 0)
	})

	t.Run("unknown_ids_ignored", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionService(db)
		account := testutil.CreateTestAccount(t, db)
		tx := testutil.CreateTestTransaction(t, db, account.ID, models.TransactionTypeExpense, 700)

		err := svc.BulkDeleteTransactions(ctx, []string{tx.ID, missingID})
		testutil.AssertNoError(t, err)
		testutil.AssertBalance(t, db, account.ID, 0)

		err = svc.BulkDeleteTransactions(ctx, []string{missingID})
		testutil.AssertNoError(t, err)
	})

	t.Run("empty_list", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionService(db)

		testutil.AssertAppError(t, svc.BulkDeleteTransactions(ctx, nil), "INVALID_INPUT")
		testutil.AssertAppError(t, svc.BulkDeleteTransactions(ctx, []string{" "}), "INVALID_INPUT")
	})

	t.Run("balance_failure_keeps_rows", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		account := testutil.CreateTestAccount(t, db)
		tx := testutil.CreateTestTransaction(t, db, account.ID, models.TransactionTypeIncome, 500)
		failAccountUpdates(t, db)
		svc := newTransactionService(db)

		err := svc.BulkDeleteTransactions(ctx, []string{tx.ID})
		testutil.AssertAppError(t, err, "INTERNAL_ERROR")

		var count int64
		db.Model(&models.Transaction{}).Count(&count)
		if count != 1 {
			t.Errorf("expected delete to be rolled back, found %d rows", count)
		}
		testutil.AssertBalance(t, db, account.ID, 500)
	})
}

func TestGetUserTransactions(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := newTransactionService(db)

	a := testutil.CreateTestAccount(t, db)
	b := testutil.CreateTestAccount(t, db)
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		testutil.CreateTestTransactionAt(t, db, a.ID, models.TransactionTypeExpense, 100, base.AddDate(0, 0, i))
	}
	testutil.CreateTestTransactionAt(t, db, b.ID, models.TransactionTypeIncome, 100, base)

	t.Run("paginates_newest_first", func(t *testing.T) {
		result, err := svc.GetUserTransactions(ctx, pagination.PageRequest{Page: 1, PageSize: 2}, TransactionFilter{})
		testutil.AssertNoError(t, err)

		if result.TotalItems != 6 {
			t.Errorf("expected 6 total items, got %d", result.TotalItems)
		}
		if result.TotalPages != 3 {
			t.Errorf("expected 3 pages, got %d", result.TotalPages)
		}
		if len(result.Data) != 2 || !result.Data[0].Date.Equal(base.AddDate(0, 0, 4)) {
			t.Errorf("expected newest transaction first, got %+v", result.Data)
		}
	})

	t.Run("filters", func(t *testing.T) {
		income := models.TransactionTypeIncome
		result, err := svc.GetUserTransactions(ctx, pagination.PageRequest{}, TransactionFilter{Type: &income})
		testutil.AssertNoError(t, err)
		if result.TotalItems != 1 {
			t.Errorf("expected 1 income, got %d", result.TotalItems)
		}

		from := base.AddDate(0, 0, 1)
		to := base.AddDate(0, 0, 3)
		result, err = svc.GetUserTransactions(ctx, pagination.PageRequest{}, TransactionFilter{AccountID: &a.ID, FromDate: &from, ToDate: &to})
		testutil.AssertNoError(t, err)
		if result.TotalItems != 3 {
			t.Errorf("expected 3 transactions in range, got %d", result.TotalItems)
		}
	})
}

func TestGetTransactionByID(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := newTransactionService(db)

	account := testutil.CreateTestAccount(t, db)
	tx := testutil.CreateTestTransaction(t, db, account.ID, models.TransactionTypeIncome, 100)

	got, err := svc.GetTransactionByID(ctx, tx.ID)
	testutil.AssertNoError(t, err)
	if got.ID != tx.ID {
		t.Errorf("expected %s, got %s", tx.ID, got.ID)
	}

	_, err = svc.GetTransactionByID(ctx, missingID)
	testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
}
