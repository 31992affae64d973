package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "budgetiq/internal/errors"
)

// RequestTimeout bounds the request context so database work started by a
// handler is cancelled once the deadline passes. A handler that returns after
// the deadline without writing a response gets a 503.
func RequestTimeout(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		if !c.Writer.Written() && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			abortWithError(c, apperrors.ErrTimeout)
		}
	}
}
