package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/authcore/internal/application/dto"
	"github.com/turtacn/authcore/internal/domain/service"
	"github.com/turtacn/authcore/internal/infrastructure/monitoring"
	"github.com/turtacn/authcore/pkg/constants"
	"github.com/turtacn/authcore/pkg/errors"
	"github.com/turtacn/authcore/pkg/logger"
)

// limitIdentifier picks the subject of the rate limit: the authenticated
// user when a token has been verified, the client IP otherwise.
func limitIdentifier(c *gin.Context) string {
	if userID := c.GetString(string(constants.ContextKeyUserID)); userID != "" {
		return userID
	}
	return c.ClientIP()
}

// RateLimit applies the sliding-window limit for one named operation and
// sets the X-RateLimit-* headers on every response. Verified admins bypass
// the check entirely.
func RateLimit(limiter service.RateLimitService, operation string, metrics *monitoring.Metrics, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := ClaimsFrom(c); ok && claims.HasRole(constants.RoleAdmin) {
			c.Next()
			return
		}

		identifier := limitIdentifier(c)
		decision, err := limiter.Check(c.Request.Context(), identifier, operation)
		if err != nil {
			metrics.RateLimitChecks.WithLabelValues(operation, "error").Inc()
			dto.SendError(c, err)
			return
		}

		c.Header(constants.HeaderRateLimitLimit, strconv.Itoa(decision.Limit))
		c.Header(constants.HeaderRateLimitRemaining, strconv.Itoa(decision.Remaining))
		c.Header(constants.HeaderRateLimitReset, strconv.FormatInt(decision.ResetAt.Unix(), 10))

		if !decision.Allowed {
			metrics.RateLimitChecks.WithLabelValues(operation, "denied").Inc()
			log.Warn(c.Request.Context(), "rate limit exceeded",
				logger.String("operation", operation),
				logger.String("identifier", identifier),
				logger.Int("limit", decision.Limit),
			)
			retryAfter := int(decision.RetryAfter.Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			dto.SendError(c, errors.ErrRateLimitExceeded(operation, decision.Limit, decision.RetryAfter))
			return
		}

		metrics.RateLimitChecks.WithLabelValues(operation, "allowed").Inc()
		c.Next()
	}
}
