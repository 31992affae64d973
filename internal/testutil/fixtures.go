package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"budgetiq/internal/models"
	"budgetiq/internal/money"

	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestAccount creates a CURRENT account with zero balance.
func CreateTestAccount(t *testing.T, db *gorm.DB) *models.Account {
	t.Helper()
	return CreateTestAccountWithType(t, db, models.AccountTypeCurrent, false)
}

// CreateTestAccountWithType creates an account of the given type and default flag.
func CreateTestAccountWithType(t *testing.T, db *gorm.DB, accountType models.AccountType, isDefault bool) *models.Account {
	t.Helper()

	account := &models.Account{
		Name:      fmt.Sprintf("Test Account %d", nextID()),
		Type:      accountType,
		IsDefault: isDefault,
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to create test account: %v", err)
	}
	return account
}

// CreateTestTransaction inserts a transaction dated now and applies its signed
// amount to the account so the balance invariant still holds.
func CreateTestTransaction(t *testing.T, db *gorm.DB, accountID string, txType models.TransactionType, amount money.Amount) *models.Transaction {
	t.Helper()
	return CreateTestTransactionAt(t, db, accountID, txType, amount, time.Now().UTC())
}

// CreateTestTransactionAt is CreateTestTransaction with an explicit date.
func CreateTestTransactionAt(t *testing.T, db *gorm.DB, accountID string, txType models.TransactionType, amount money.Amount, date time.Time) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		AccountID: accountID,
		Type:      txType,
		Amount:    amount,
		Date:      date,
		Category:  "test",
		Status:    models.TransactionStatusCompleted,
	}
	err := db.Transaction(func(dbtx *gorm.DB) error {
		if err := dbtx.Create(tx).Error; err != nil {
			return err
		}
		return dbtx.Model(&models.Account{}).Where("id = ?", accountID).
			Update("balance", gorm.Expr("balance + ?", tx.SignedAmount())).Error
	})
	if err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// CreateTestBudget stores the monthly budget with the given amount.
func CreateTestBudget(t *testing.T, db *gorm.DB, amount money.Amount) *models.Budget {
	t.Helper()

	budget := &models.Budget{
		Scope:  models.BudgetScopeMonthly,
		Amount: amount,
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}
