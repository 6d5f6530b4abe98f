package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	sharedError "github.com/darregistry/member-registry/go-api-server/internal/shared/error"
	"github.com/gin-gonic/gin"
)

const DefaultTimeout = 30 * time.Second

// Timeout bounds every request with a deadline carried by the request context.
// Store calls made with that context (gorm WithContext) abort once it expires,
// rolling back the open transaction.
func Timeout(timeout time.Duration) gin.HandlerFunc {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		if !errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return
		}

		slog.Warn("Request deadline exceeded",
			"request_id", GetRequestID(c),
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
			"timeout", timeout.String(),
			"status", c.Writer.Status(),
		)

		// A handler that gave up without answering still gets a response
		if !c.Writer.Written() {
			c.AbortWithStatusJSON(sharedError.RequestTimeout.Status, sharedError.RequestTimeout)
		}
	}
}

// IsTimeout reports whether the request's deadline has passed
func IsTimeout(c *gin.Context) bool {
	return errors.Is(c.Request.Context().Err(), context.DeadlineExceeded)
}
