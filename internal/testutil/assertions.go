package testutil

import (
	"errors"
	"testing"

	apperrors "budgetiq/internal/errors"
	"budgetiq/internal/models"
	"budgetiq/internal/money"

	"gorm.io/gorm"
)

// AssertAppError checks that err is an *AppError with the expected error code.
func AssertAppError(t *testing.T, err error, expectedCode string) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected AppError with code %q, got nil", expectedCode)
	}

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *AppError, got %T: %v", err, err)
	}

	if appErr.Code != expectedCode {
		t.Errorf("expected error code %q, got %q (message: %s)", expectedCode, appErr.Code, appErr.Message)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// Balance reads an account's stored balance.
func Balance(t *testing.T, db *gorm.DB, accountID string) money.Amount {
	t.Helper()

	var account models.Account
	if err := db.Where("id = ?", accountID).First(&account).Error; err != nil {
		t.Fatalf("failed to load account %s: %v", accountID, err)
	}
	return account.Balance
}

// AssertBalance checks an account's stored balance.
func AssertBalance(t *testing.T, db *gorm.DB, accountID string, want money.Amount) {
	t.Helper()

	if got := Balance(t, db, accountID); got != want {
		t.Errorf("expected balance %s, got %s", want, got)
	}
}

// AssertBalanceInvariant checks that an account's stored balance equals the
// signed sum of its transactions.
func AssertBalanceInvariant(t *testing.T, db *gorm.DB, accountID string) {
	t.Helper()

	var sum int64
	err := db.Model(&models.Transaction{}).
		Select("COALESCE(SUM(CASE WHEN type = ? THEN -amount ELSE amount END), 0)", models.TransactionTypeExpense).
		Where("account_id = ?", accountID).
		Scan(&sum).Error
	if err != nil {
		t.Fatalf("failed to sum transactions: %v", err)
	}

	if got := Balance(t, db, accountID); got != money.Amount(sum) {
		t.Errorf("balance invariant broken for %s: stored %s, transactions sum to %s", accountID, got, money.Amount(sum))
	}
}

// DefaultAccountCount returns how many accounts are flagged as default.
func DefaultAccountCount(t *testing.T, db *gorm.DB) int64 {
	t.Helper()

	var n int64
	if err := db.Model(&models.Account{}).Where("is_default = ?", true).Count(&n).Error; err != nil {
		t.Fatalf("failed to count default accounts: %v", err)
	}
	return n
}
