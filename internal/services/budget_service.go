package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "budgetiq/internal/errors"
	"budgetiq/internal/models"
	"budgetiq/internal/money"
)

// budgetService handles budget-related business logic.
type budgetService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB) BudgetServicer {
	return &budgetService{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// GetCurrentBudget returns the stored budget with the sum of the account's
// expenses in the current calendar month. Budget is nil when none has been set.
func (s *budgetService) GetCurrentBudget(ctx context.Context, accountID string) (*CurrentBudget, error) {
	if accountID == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account ID is required")
	}

	db := s.db.WithContext(ctx)

	var account models.Account
	if err := db.Select("id").Where("id = ?", accountID).First(&account).Error; err != nil {
		return nil, notFoundOr(err, apperrors.ErrAccountNotFound)
	}

	periodStart, periodEnd := monthWindow(s.now())

	var spent int64
	err := db.Model(&models.Transaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("account_id = ? AND type = ? AND date BETWEEN ? AND ?",
			accountID, models.TransactionTypeExpense, periodStart, periodEnd).
		Scan(&spent).Error
	if err != nil {
		return nil, storeError(err)
	}

	result := &CurrentBudget{
		CurrentExpenses: money.Amount(spent),
		PeriodStart:     periodStart,
		PeriodEnd:       periodEnd,
	}

	var budget models.Budget
	err = db.Where("scope = ?", models.BudgetScopeMonthly).First(&budget).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
	case err != nil:
		return nil, storeError(err)
	default:
		result.Budget = &budget
	}

	return result, nil
}

// UpdateBudget sets the monthly budget amount, creating the row if absent.
func (s *budgetService) UpdateBudget(ctx context.Context, amount money.Amount) (*models.Budget, error) {
	if !amount.IsPositive() || !amount.InRange() {
		return nil, apperrors.ErrInvalidBudgetAmount
	}

	var budget models.Budget
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := &models.Budget{Scope: models.BudgetScopeMonthly, Amount: amount}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "scope"}},
			DoUpdates: clause.AssignmentColumns([]string{"amount", "updated_at"}),
		}).Create(row).Error; err != nil {
			return storeError(err)
		}

		if err := tx.Where("scope = ?", models.BudgetScopeMonthly).First(&budget).Error; err != nil {
			return storeError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &budget, nil
}

// monthWindow returns the first and last instants of the UTC calendar month
// containing t.
func monthWindow(t time.Time) (time.Time, time.Time) {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return start, end
}
