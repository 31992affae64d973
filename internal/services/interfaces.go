package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"budgetiq/internal/models"
	"budgetiq/internal/money"
	"budgetiq/internal/pagination"
	"budgetiq/internal/recurring"
)

// AccountInput carries the fields needed to open an account.
type AccountInput struct {
	Name      string
	Type      models.AccountType
	Balance   money.Amount
	IsDefault bool
}

// AccountSummary is an account together with the number of its transactions.
type AccountSummary struct {
	models.Account
	TransactionCount int64 `json:"transaction_count"`
}

// AccountDetail is an account with its transactions, newest first.
type AccountDetail struct {
	models.Account
	Transactions     []models.Transaction `json:"transactions"`
	TransactionCount int64                `json:"transaction_count"`
}

// AccountServicer defines the contract for account-related business logic.
type AccountServicer interface {
	CreateAccount(ctx context.Context, input AccountInput) (*models.Account, error)
	GetAccounts(ctx context.Context) ([]AccountSummary, error)
	GetAccountByID(ctx context.Context, accountID string) (*models.Account, error)
	GetAccountWithTransactions(ctx context.Context, accountID string) (*AccountDetail, error)
	GetDefaultAccount(ctx context.Context) (*models.Account, error)
	UpdateDefaultAccount(ctx context.Context, accountID string) (*models.Account, error)
	ApplyBalanceDelta(tx *gorm.DB, accountID string, delta money.Amount) error
}

// TransactionInput carries the full set of writable transaction fields. It is
// used for both create and update; update overwrites every field.
type TransactionInput struct {
	AccountID         string
	Type              models.TransactionType
	Amount            money.Amount
	Description       string
	Date              time.Time
	Category          string
	ReceiptURL        string
	IsRecurring       bool
	RecurringInterval *recurring.Interval
	Status            models.TransactionStatus
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	AccountID   *string
	Type        *models.TransactionType
	Category    *string
	FromDate    *time.Time
	ToDate      *time.Time
	IsRecurring *bool
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	CreateTransaction(ctx context.Context, input TransactionInput) (*models.Transaction, error)
	UpdateTransaction(ctx context.Context, transactionID string, input TransactionInput) (*models.Transaction, error)
	BulkDeleteTransactions(ctx context.Context, transactionIDs []string) error
	GetTransactionByID(ctx context.Context, transactionID string) (*models.Transaction, error)
	GetUserTransactions(ctx context.Context, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
}

// CurrentBudget is the monthly budget with the current month's spending.
type CurrentBudget struct {
	Budget          *models.Budget `json:"budget"`
	CurrentExpenses money.Amount   `json:"current_expenses"`
	PeriodStart     time.Time      `json:"period_start"`
	PeriodEnd       time.Time      `json:"period_end"`
}

// BudgetServicer defines the contract for budget-related business logic.
type BudgetServicer interface {
	GetCurrentBudget(ctx context.Context, accountID string) (*CurrentBudget, error)
	UpdateBudget(ctx context.Context, amount money.Amount) (*models.Budget, error)
}

// RecurringServicer materialises due occurrences of recurring transactions.
type RecurringServicer interface {
	ProcessDue(ctx context.Context, now time.Time) (int, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(actor, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}
