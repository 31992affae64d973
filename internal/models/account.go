package models

import "budgetiq/internal/money"

// AccountType represents the type of account
type AccountType string

const (
	AccountTypeCurrent AccountType = "CURRENT"
	AccountTypeSavings AccountType = "SAVINGS"
)

// Valid reports whether t is a known account type.
func (t AccountType) Valid() bool {
	return t == AccountTypeCurrent || t == AccountTypeSavings
}

// Account is a ledger account. Balance always equals the sum of the signed
// amounts of the account's transactions and is only written by the ledger
// services inside a database transaction.
type Account struct {
	Base
	Name      string       `gorm:"not null" json:"name"`
	Type      AccountType  `gorm:"not null" json:"type"`
	Balance   money.Amount `gorm:"type:bigint;not null;default:0" json:"balance"`
	IsDefault bool         `gorm:"not null;default:false;index" json:"is_default"`

	Transactions []Transaction `gorm:"foreignKey:AccountID" json:"transactions,omitempty"`
}
