package services

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"budgetiq/internal/database"
	apperrors "budgetiq/internal/errors"
)

// forUpdate locks the selected rows until the surrounding transaction ends.
// The SQLite dialect drops the clause; SQLite already serialises writers.
var forUpdate = clause.Locking{Strength: "UPDATE"}

// storeError converts a database error into an AppError. Errors that are
// already AppErrors pass through unchanged.
func storeError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	if database.IsConflict(err) {
		return apperrors.Wrap(apperrors.ErrConflict, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.Wrap(apperrors.ErrTimeout, err)
	}
	return apperrors.Wrap(apperrors.ErrInternalServer, err)
}

// notFoundOr maps gorm.ErrRecordNotFound to the given sentinel.
func notFoundOr(err error, sentinel *apperrors.AppError) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return storeError(err)
}
