// Package errors provides custom error types for the budgetiq API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Is reports whether target is an AppError with the same code, so copies made
// by Wrap and WithMessage still match their sentinel.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication errors.
var (
	ErrUnauthorized  = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidAPIKey = &AppError{Code: "INVALID_API_KEY", Message: "Invalid or missing API key", StatusCode: http.StatusUnauthorized}
	ErrInvalidToken  = &AppError{Code: "INVALID_TOKEN", Message: "Invalid or expired token", StatusCode: http.StatusUnauthorized}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrConflict       = &AppError{Code: "CONFLICT", Message: "The change conflicted with a concurrent update, please try again", StatusCode: http.StatusConflict}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
	ErrTimeout        = &AppError{Code: "TIMEOUT", Message: "The request took too long to complete", StatusCode: http.StatusServiceUnavailable}
	ErrNotConfigured  = &AppError{Code: "NOT_CONFIGURED", Message: "This endpoint is not configured", StatusCode: http.StatusServiceUnavailable}
)

// Account errors.
var (
	ErrAccountNotFound        = &AppError{Code: "ACCOUNT_NOT_FOUND", Message: "Account not found", StatusCode: http.StatusNotFound}
	ErrInvalidAccountType     = &AppError{Code: "INVALID_ACCOUNT_TYPE", Message: "Account type must be CURRENT or SAVINGS", StatusCode: http.StatusBadRequest}
	ErrDefaultAccountRequired = &AppError{Code: "DEFAULT_ACCOUNT_REQUIRED", Message: "You need at least one default account", StatusCode: http.StatusBadRequest}
	ErrBalanceOutOfRange      = &AppError{Code: "BALANCE_OUT_OF_RANGE", Message: "The change would take the account balance beyond the supported range", StatusCode: http.StatusBadRequest}
)

// Transaction errors.
var (
	ErrTransactionNotFound      = &AppError{Code: "TRANSACTION_NOT_FOUND", Message: "Transaction not found", StatusCode: http.StatusNotFound}
	ErrInvalidAmount            = &AppError{Code: "INVALID_AMOUNT", Message: "Amount must be a positive number no greater than 10000000000000", StatusCode: http.StatusBadRequest}
	ErrInvalidTransactionType   = &AppError{Code: "INVALID_TRANSACTION_TYPE", Message: "Transaction type must be INCOME or EXPENSE", StatusCode: http.StatusBadRequest}
	ErrInvalidStatus            = &AppError{Code: "INVALID_STATUS", Message: "Status must be PENDING, COMPLETED or FAILED", StatusCode: http.StatusBadRequest}
	ErrInvalidRecurringInterval = &AppError{Code: "INVALID_RECURRING_INTERVAL", Message: "Recurring interval must be DAILY, WEEKLY, MONTHLY or YEARLY", StatusCode: http.StatusBadRequest}
)

// Budget errors.
var (
	ErrInvalidBudgetAmount = &AppError{Code: "INVALID_BUDGET_AMOUNT", Message: "Invalid budget amount", StatusCode: http.StatusBadRequest}
)
