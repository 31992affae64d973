package services

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "budgetiq/internal/errors"
	"budgetiq/internal/models"
	"budgetiq/internal/money"
)

// initialBalanceCategory tags the transaction that records an opening balance.
const initialBalanceCategory = "initial-balance"

// accountService handles account-related business logic.
type accountService struct {
	db *gorm.DB
}

// NewAccountService creates a new AccountServicer.
func NewAccountService(db *gorm.DB) AccountServicer {
	return &accountService{db: db}
}

// CreateAccount opens a new account. The first account ever created becomes the
// default. A non-zero opening balance is booked as an "Initial balance"
// transaction so the balance always matches the account's transactions.
func (s *accountService) CreateAccount(ctx context.Context, input AccountInput) (*models.Account, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account name is required")
	}
	if !input.Type.Valid() {
		return nil, apperrors.ErrInvalidAccountType
	}
	if !input.Balance.InRange() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidAmount, "opening balance is beyond the supported range")
	}

	account := &models.Account{
		Name: name,
		Type: input.Type,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing []models.Account
		if err := tx.Clauses(forUpdate).Select("id").Find(&existing).Error; err != nil {
			return storeError(err)
		}

		account.IsDefault = len(existing) == 0 || input.IsDefault
		if account.IsDefault && len(existing) > 0 {
			if err := clearDefaults(tx); err != nil {
				return err
			}
		}

		if err := tx.Create(account).Error; err != nil {
			return storeError(err)
		}

		if input.Balance == 0 {
			return nil
		}

		opening := &models.Transaction{
			AccountID:   account.ID,
			Type:        models.TransactionTypeIncome,
			Amount:      input.Balance,
			Description: "Initial balance",
			Date:        time.Now().UTC(),
			Category:    initialBalanceCategory,
			Status:      models.TransactionStatusCompleted,
		}
		if input.Balance < 0 {
			opening.Type = models.TransactionTypeExpense
			opening.Amount = input.Balance.Neg()
		}
		if err := tx.Create(opening).Error; err != nil {
			return storeError(err)
		}
		if err := s.ApplyBalanceDelta(tx, account.ID, opening.SignedAmount()); err != nil {
			return err
		}
		account.Balance = input.Balance
		return nil
	})
	if err != nil {
		return nil, err
	}

	return account, nil
}

// GetAccounts returns all accounts, newest first, with their transaction counts.
func (s *accountService) GetAccounts(ctx context.Context) ([]AccountSummary, error) {
	db := s.db.WithContext(ctx)

	var accounts []models.Account
	if err := db.Order("created_at DESC").Find(&accounts).Error; err != nil {
		return nil, storeError(err)
	}

	type countRow struct {
		AccountID string
		Count     int64
	}
	var rows []countRow
	if err := db.Model(&models.Transaction{}).
		Select("account_id, COUNT(*) AS count").
		Group("account_id").
		Scan(&rows).Error; err != nil {
		return nil, storeError(err)
	}
	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.AccountID] = r.Count
	}

	summaries := make([]AccountSummary, 0, len(accounts))
	for _, a := range accounts {
		summaries = append(summaries, AccountSummary{Account: a, TransactionCount: counts[a.ID]})
	}
	return summaries, nil
}

// GetAccountByID retrieves an account by ID
func (s *accountService) GetAccountByID(ctx context.Context, accountID string) (*models.Account, error) {
	if accountID == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account ID is required")
	}

	var account models.Account
	if err := s.db.WithContext(ctx).Where("id = ?", accountID).First(&account).Error; err != nil {
		return nil, notFoundOr(err, apperrors.ErrAccountNotFound)
	}
	return &account, nil
}

// GetAccountWithTransactions returns an account and all of its transactions, newest first.
func (s *accountService) GetAccountWithTransactions(ctx context.Context, accountID string) (*AccountDetail, error) {
	account, err := s.GetAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	var transactions []models.Transaction
	if err := s.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("date DESC").
		Find(&transactions).Error; err != nil {
		return nil, storeError(err)
	}
	if transactions == nil {
		transactions = []models.Transaction{}
	}

	return &AccountDetail{
		Account:          *account,
		Transactions:     transactions,
		TransactionCount: int64(len(transactions)),
	}, nil
}

// GetDefaultAccount returns the account flagged as default.
func (s *accountService) GetDefaultAccount(ctx context.Context) (*models.Account, error) {
	var account models.Account
	if err := s.db.WithContext(ctx).Where("is_default = ?", true).First(&account).Error; err != nil {
		return nil, notFoundOr(err, apperrors.WithMessage(apperrors.ErrAccountNotFound, "No default account"))
	}
	return &account, nil
}

// UpdateDefaultAccount makes accountID the only default account. Every account
// row is locked first so concurrent callers cannot leave zero or two defaults.
func (s *accountService) UpdateDefaultAccount(ctx context.Context, accountID string) (*models.Account, error) {
	if accountID == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account ID is required")
	}

	var account models.Account
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var locked []models.Account
		if err := tx.Clauses(forUpdate).Select("id").Find(&locked).Error; err != nil {
			return storeError(err)
		}

		if err := tx.Where("id = ?", accountID).First(&account).Error; err != nil {
			return notFoundOr(err, apperrors.ErrAccountNotFound)
		}

		if err := clearDefaults(tx); err != nil {
			return err
		}

		if err := tx.Model(&account).Update("is_default", true).Error; err != nil {
			return storeError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	account.IsDefault = true
	return &account, nil
}

// ApplyBalanceDelta adds delta to an account balance. It must be called with the
// transaction handle of the enclosing ledger operation. The increment is done
// in SQL so concurrent committed deltas compose; the guard keeps the result
// within money.MaxAmount.
func (s *accountService) ApplyBalanceDelta(tx *gorm.DB, accountID string, delta money.Amount) error {
	if !delta.InRange() {
		return apperrors.ErrBalanceOutOfRange
	}

	result := tx.Model(&models.Account{}).
		Where("id = ?", accountID).
		Where("balance + ? BETWEEN ? AND ?", delta.Cents(), -money.MaxAmount.Cents(), money.MaxAmount.Cents()).
		Update("balance", gorm.Expr("balance + ?", delta.Cents()))
	if result.Error != nil {
		return storeError(result.Error)
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := tx.Model(&models.Account{}).Where("id = ?", accountID).Count(&count).Error; err != nil {
		return storeError(err)
	}
	if count == 0 {
		return apperrors.ErrAccountNotFound
	}
	return apperrors.ErrBalanceOutOfRange
}

func clearDefaults(tx *gorm.DB) error {
	if err := tx.Model(&models.Account{}).
		Where("is_default = ?", true).
		Update("is_default", false).Error; err != nil {
		return storeError(err)
	}
	return nil
}
