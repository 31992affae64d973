package models

import (
	"time"

	"budgetiq/internal/money"
	"budgetiq/internal/recurring"
)

// TransactionType represents the type of transaction
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "INCOME"
	TransactionTypeExpense TransactionType = "EXPENSE"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

// TransactionStatus represents the processing state of a transaction
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
)

// Valid reports whether s is a known status.
func (s TransactionStatus) Valid() bool {
	switch s {
	case TransactionStatusPending, TransactionStatusCompleted, TransactionStatusFailed:
		return true
	}
	return false
}

// SignedAmount returns the contribution of an amount of the given type to an
// account balance: +amount for income, -amount for expense.
func SignedAmount(t TransactionType, amount money.Amount) money.Amount {
	if t == TransactionTypeExpense {
		return amount.Neg()
	}
	return amount
}

// Transaction represents a financial transaction in the system
type Transaction struct {
	Base
	AccountID         string              `gorm:"type:uuid;not null;index" json:"account_id"`
	Type              TransactionType     `gorm:"not null;index" json:"type"`
	Amount            money.Amount        `gorm:"type:bigint;not null" json:"amount"`
	Description       string              `json:"description"`
	Date              time.Time           `gorm:"not null;index" json:"date"`
	Category          string              `gorm:"index" json:"category"`
	ReceiptURL        string              `json:"receipt_url,omitempty"`
	IsRecurring       bool                `gorm:"not null;default:false" json:"is_recurring"`
	RecurringInterval *recurring.Interval `json:"recurring_interval"`
	NextRecurringDate *time.Time          `gorm:"index" json:"next_recurring_date"`
	LastProcessed     *time.Time          `json:"last_processed"`
	Status            TransactionStatus   `gorm:"not null;default:'COMPLETED'" json:"status"`

	// Relationships
	Account *Account `gorm:"foreignKey:AccountID" json:"account,omitempty"`
}

// SignedAmount returns the transaction's contribution to its account balance.
func (t *Transaction) SignedAmount() money.Amount {
	return SignedAmount(t.Type, t.Amount)
}
