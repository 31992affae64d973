package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	apperrors "budgetiq/internal/errors"
	"budgetiq/internal/logger"
	"budgetiq/internal/models"
)

// maxOccurrencesPerRun bounds how many periods a single template may catch up
// in one run. Remaining periods are picked up by the next run.
const maxOccurrencesPerRun = 366

// recurringService materialises due occurrences of recurring transactions.
type recurringService struct {
	db     *gorm.DB
	ledger *transactionService
}

// NewRecurringService creates a new RecurringServicer.
func NewRecurringService(db *gorm.DB, accountService AccountServicer) RecurringServicer {
	return &recurringService{
		db:     db,
		ledger: &transactionService{db: db, accountService: accountService},
	}
}

// ProcessDue books one occurrence per elapsed period for every completed
// recurring transaction whose next date is at or before now. Each template is
// handled in its own database transaction; a failing template is logged and
// skipped. It returns the number of occurrences created.
func (s *recurringService) ProcessDue(ctx context.Context, now time.Time) (int, error) {
	now = now.UTC()

	var due []models.Transaction
	if err := s.db.WithContext(ctx).
		Select("id").
		Where("is_recurring = ? AND status = ? AND next_recurring_date IS NOT NULL AND next_recurring_date <= ?",
			true, models.TransactionStatusCompleted, now).
		Order("next_recurring_date ASC").
		Find(&due).Error; err != nil {
		return 0, storeError(err)
	}

	log := logger.Get()
	log.Infow("Processing recurring transactions",
		"due", len(due),
		"processing_date", now.Format(time.RFC3339))

	created := 0
	for _, template := range due {
		if err := ctx.Err(); err != nil {
			return created, err
		}

		n, err := s.processTemplate(ctx, template.ID, now)
		if err != nil {
			log.Errorw("Failed to process recurring transaction",
				"transaction_id", template.ID,
				"error", err)
			continue
		}
		created += n
	}

	log.Infow("Recurring transaction processing complete",
		"created", created,
		"total_checked", len(due))

	return created, nil
}

func (s *recurringService) processTemplate(ctx context.Context, templateID string, now time.Time) (int, error) {
	created := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		created = 0

		var template models.Transaction
		if err := tx.Clauses(forUpdate).Where("id = ?", templateID).First(&template).Error; err != nil {
			return notFoundOr(err, apperrors.ErrTransactionNotFound)
		}

		// Re-check under the lock; another run or an edit may have changed it.
		if !template.IsRecurring || template.Status != models.TransactionStatusCompleted || template.RecurringInterval == nil ||
			template.NextRecurringDate == nil || template.NextRecurringDate.After(now) {
			return nil
		}

		if err := lockAccount(tx, template.AccountID); err != nil {
			return err
		}

		next := template.NextRecurringDate.UTC()
		for !next.After(now) && created < maxOccurrencesPerRun {
			occurrence := &models.Transaction{
				AccountID:   template.AccountID,
				Type:        template.Type,
				Amount:      template.Amount,
				Description: template.Description,
				Date:        next,
				Category:    template.Category,
				Status:      models.TransactionStatusCompleted,
			}
			if err := s.ledger.insertWithBalance(tx, occurrence); err != nil {
				return err
			}
			created++

			advanced, err := nextOccurrence(next, *template.RecurringInterval)
			if err != nil {
				return err
			}
			next = advanced
		}

		return storeError(tx.Model(&template).Updates(map[string]interface{}{
			"next_recurring_date": next,
			"last_processed":      now,
		}).Error)
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}
