package models

import "budgetiq/internal/money"

// BudgetScopeMonthly identifies the single monthly budget row.
const BudgetScopeMonthly = "monthly"

// Budget is the monthly spending target. There is exactly one row, keyed by
// Scope; it is not scoped per account.
type Budget struct {
	Base
	Scope    string       `gorm:"not null;uniqueIndex" json:"-"`
	Category string       `json:"category,omitempty"`
	Amount   money.Amount `gorm:"type:bigint;not null" json:"amount"`
}
