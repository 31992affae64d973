// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"budgetiq/internal/models"
	"budgetiq/internal/money"
	"budgetiq/internal/recurring"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("transaction_type", validateTransactionType)
		_ = v.RegisterValidation("transaction_status", validateTransactionStatus)
		_ = v.RegisterValidation("account_type", validateAccountType)
		_ = v.RegisterValidation("recurring_interval", validateRecurringInterval)
		_ = v.RegisterValidation("positive_amount", validatePositiveAmount)
	}
}

func validateTransactionType(fl validator.FieldLevel) bool {
	return models.TransactionType(fl.Field().String()).Valid()
}

func validateTransactionStatus(fl validator.FieldLevel) bool {
	return models.TransactionStatus(fl.Field().String()).Valid()
}

func validateAccountType(fl validator.FieldLevel) bool {
	return models.AccountType(fl.Field().String()).Valid()
}

func validateRecurringInterval(fl validator.FieldLevel) bool {
	return recurring.Interval(fl.Field().String()).Valid()
}

// validatePositiveAmount accepts money.Amount fields greater than zero.
func validatePositiveAmount(fl validator.FieldLevel) bool {
	return money.Amount(fl.Field().Int()).IsPositive()
}
