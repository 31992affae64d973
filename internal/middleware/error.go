package middleware

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	apperrors "budgetiq/internal/errors"
	"budgetiq/internal/logger"
)

// ErrorHandler converts errors attached with c.Error into the standard error
// envelope. Responses already written by the handler are left alone.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err

		var appErr *apperrors.AppError
		switch {
		case errors.As(err, &appErr):
		case errors.Is(err, context.DeadlineExceeded):
			appErr = apperrors.ErrTimeout
		default:
			appErr = apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if appErr.Internal != nil {
			logger.Get().Errorw("request failed",
				"code", appErr.Code,
				"internal", appErr.Internal.Error(),
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"request_id", c.GetString(requestIDKey),
			)
		}
		abortWithError(c, appErr)
	}
}

// Recovery turns a panic into a logged 500 with the standard error envelope.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Get().Errorw("panic recovered",
			"panic", recovered,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"request_id", c.GetString(requestIDKey),
		)
		abortWithError(c, apperrors.ErrInternalServer)
	})
}
