package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "budgetiq/internal/errors"
	"budgetiq/internal/models"
	"budgetiq/internal/money"
	"budgetiq/internal/pagination"
	"budgetiq/internal/recurring"
)

// transactionService handles transaction-related business logic.
type transactionService struct {
	db             *gorm.DB
	accountService AccountServicer
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB, accountService AccountServicer) TransactionServicer {
	return &transactionService{
		db:             db,
		accountService: accountService,
	}
}

// CreateTransaction records a transaction and applies its signed amount to the
// owning account in one database transaction.
func (s *transactionService) CreateTransaction(ctx context.Context, input TransactionInput) (*models.Transaction, error) {
	transaction, err := buildTransaction(input)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockAccount(tx, transaction.AccountID); err != nil {
			return err
		}
		return s.insertWithBalance(tx, transaction)
	})
	if err != nil {
		return nil, err
	}

	return transaction, nil
}

// insertWithBalance inserts a transaction and applies its signed amount. It is
// shared by create and recurring processing.
func (s *transactionService) insertWithBalance(tx *gorm.DB, transaction *models.Transaction) error {
	if err := tx.Create(transaction).Error; err != nil {
		return storeError(err)
	}
	return s.accountService.ApplyBalanceDelta(tx, transaction.AccountID, transaction.SignedAmount())
}

// UpdateTransaction overwrites a transaction and moves its balance effect.
//
// When the account is unchanged the account receives the net change
// new - old. When the account changes, the old account gets the old signed
// amount reversed and the new account gets the new signed amount.
func (s *transactionService) UpdateTransaction(ctx context.Context, transactionID string, input TransactionInput) (*models.Transaction, error) {
	if transactionID == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "transaction ID is required")
	}

	next, err := buildTransaction(input)
	if err != nil {
		return nil, err
	}

	var updated models.Transaction
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var original models.Transaction
		if err := tx.Clauses(forUpdate).Where("id = ?", transactionID).First(&original).Error; err != nil {
			return notFoundOr(err, apperrors.ErrTransactionNotFound)
		}

		if err := lockAccount(tx, next.AccountID); err != nil {
			return err
		}

		if err := skipProcessedPeriods(next, original.LastProcessed); err != nil {
			return err
		}

		oldDelta := original.SignedAmount()
		newDelta := next.SignedAmount()

		if original.AccountID == next.AccountID {
			if net := newDelta - oldDelta; net != 0 {
				if err := s.accountService.ApplyBalanceDelta(tx, next.AccountID, net); err != nil {
					return err
				}
			}
		} else {
			if err := s.accountService.ApplyBalanceDelta(tx, original.AccountID, oldDelta.Neg()); err != nil {
				return err
			}
			if err := s.accountService.ApplyBalanceDelta(tx, next.AccountID, newDelta); err != nil {
				return err
			}
		}

		updates := map[string]interface{}{
			"account_id":          next.AccountID,
			"type":                next.Type,
			"amount":              next.Amount,
			"description":         next.Description,
			"date":                next.Date,
			"category":            next.Category,
			"receipt_url":         next.ReceiptURL,
			"is_recurring":        next.IsRecurring,
			"recurring_interval":  next.RecurringInterval,
			"next_recurring_date": next.NextRecurringDate,
			"status":              next.Status,
		}
		if err := tx.Model(&original).Updates(updates).Error; err != nil {
			return storeError(err)
		}

		if err := tx.Where("id = ?", transactionID).First(&updated).Error; err != nil {
			return storeError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

// BulkDeleteTransactions deletes the given transactions and reverses their
// effect on every affected account. Unknown IDs are ignored.
func (s *transactionService) BulkDeleteTransactions(ctx context.Context, transactionIDs []string) error {
	ids := dedupeIDs(transactionIDs)
	if len(ids) == 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "at least one transaction ID is required")
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var transactions []models.Transaction
		if err := tx.Clauses(forUpdate).Where("id IN ?", ids).Find(&transactions).Error; err != nil {
			return storeError(err)
		}
		if len(transactions) == 0 {
			return nil
		}

		deltas := make(map[string]money.Amount)
		var order []string
		found := make([]string, 0, len(transactions))
		for i := range transactions {
			t := &transactions[i]
			if _, seen := deltas[t.AccountID]; !seen {
				order = append(order, t.AccountID)
			}
			deltas[t.AccountID] -= t.SignedAmount()
			found = append(found, t.ID)
		}

		if err := tx.Unscoped().Where("id IN ?", found).Delete(&models.Transaction{}).Error; err != nil {
			return storeError(err)
		}

		for _, accountID := range order {
			if deltas[accountID] == 0 {
				continue
			}
			if err := s.accountService.ApplyBalanceDelta(tx, accountID, deltas[accountID]); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetTransactionByID retrieves a transaction by ID
func (s *transactionService) GetTransactionByID(ctx context.Context, transactionID string) (*models.Transaction, error) {
	if transactionID == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "transaction ID is required")
	}

	var transaction models.Transaction
	if err := s.db.WithContext(ctx).Where("id = ?", transactionID).First(&transaction).Error; err != nil {
		return nil, notFoundOr(err, apperrors.ErrTransactionNotFound)
	}
	return &transaction, nil
}

// GetUserTransactions retrieves a paginated, filtered list of transactions, newest first.
func (s *transactionService) GetUserTransactions(ctx context.Context, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	base := applyTransactionFilters(s.db.WithContext(ctx).Model(&models.Transaction{}), filter)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, storeError(err)
	}

	var transactions []models.Transaction
	if err := base.Preload("Account").
		Scopes(pagination.Paginate(page)).
		Order("date DESC").
		Find(&transactions).Error; err != nil {
		return nil, storeError(err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func applyTransactionFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.AccountID != nil {
		q = q.Where("account_id = ?", *f.AccountID)
	}
	if f.Type != nil {
		q = q.Where("type = ?", *f.Type)
	}
	if f.Category != nil {
		q = q.Where("category = ?", *f.Category)
	}
	if f.FromDate != nil {
		q = q.Where("date >= ?", f.FromDate.UTC())
	}
	if f.ToDate != nil {
		q = q.Where("date <= ?", f.ToDate.UTC())
	}
	if f.IsRecurring != nil {
		q = q.Where("is_recurring = ?", *f.IsRecurring)
	}
	return q
}

// buildTransaction validates input and produces the row to store, including
// the derived next recurring date. Nothing is written.
func buildTransaction(input TransactionInput) (*models.Transaction, error) {
	if strings.TrimSpace(input.AccountID) == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account ID is required")
	}
	if !input.Type.Valid() {
		return nil, apperrors.ErrInvalidTransactionType
	}
	if !input.Amount.IsPositive() || !input.Amount.InRange() {
		return nil, apperrors.ErrInvalidAmount
	}

	status := input.Status
	if status == "" {
		status = models.TransactionStatusCompleted
	}
	if !status.Valid() {
		return nil, apperrors.ErrInvalidStatus
	}

	date := input.Date
	if date.IsZero() {
		date = time.Now()
	}
	date = date.UTC()

	transaction := &models.Transaction{
		AccountID:   input.AccountID,
		Type:        input.Type,
		Amount:      input.Amount,
		Description: strings.TrimSpace(input.Description),
		Date:        date,
		Category:    strings.TrimSpace(input.Category),
		ReceiptURL:  strings.TrimSpace(input.ReceiptURL),
		Status:      status,
	}

	if input.IsRecurring {
		if input.RecurringInterval == nil {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidRecurringInterval, "recurring interval is required for recurring transactions")
		}
		next, err := nextOccurrence(date, *input.RecurringInterval)
		if err != nil {
			return nil, err
		}
		interval := *input.RecurringInterval
		transaction.IsRecurring = true
		transaction.RecurringInterval = &interval
		transaction.NextRecurringDate = &next
	}

	return transaction, nil
}

// skipProcessedPeriods moves a recurring template's next date past the last
// processing run, so periods already booked as occurrences are not booked again
// after the template is edited.
func skipProcessedPeriods(t *models.Transaction, lastProcessed *time.Time) error {
	if lastProcessed == nil || t.NextRecurringDate == nil || t.RecurringInterval == nil {
		return nil
	}
	mark := lastProcessed.UTC()
	next := *t.NextRecurringDate
	for !next.After(mark) {
		advanced, err := nextOccurrence(next, *t.RecurringInterval)
		if err != nil {
			return err
		}
		next = advanced
	}
	t.NextRecurringDate = &next
	return nil
}

// nextOccurrence advances from by one interval, reporting an unknown interval
// as a validation error.
func nextOccurrence(from time.Time, interval recurring.Interval) (time.Time, error) {
	next, err := recurring.NextDate(from, interval)
	if err != nil {
		return from, apperrors.Wrap(apperrors.ErrInvalidRecurringInterval, err)
	}
	return next, nil
}

// lockAccount verifies the account exists and locks its row for the rest of
// the transaction.
func lockAccount(tx *gorm.DB, accountID string) error {
	var account models.Account
	err := tx.Clauses(forUpdate).Select("id").Where("id = ?", accountID).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.ErrAccountNotFound
	}
	return storeError(err)
}

func dedupeIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
