package middleware

import (
	"github.com/gin-gonic/gin"

	apperrors "budgetiq/internal/errors"
)

// abortWithError stops the chain and writes the standard error envelope.
func abortWithError(c *gin.Context, appErr *apperrors.AppError) {
	c.AbortWithStatusJSON(appErr.StatusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    appErr.Code,
			"message": appErr.Message,
		},
	})
}
