// Package middleware holds the gin middleware chain for the HTTP surface.
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/authcore/internal/application/dto"
	"github.com/turtacn/authcore/internal/domain/models"
	"github.com/turtacn/authcore/internal/domain/service"
	"github.com/turtacn/authcore/internal/infrastructure/monitoring"
	"github.com/turtacn/authcore/pkg/constants"
	"github.com/turtacn/authcore/pkg/errors"
	"github.com/turtacn/authcore/pkg/logger"
)

const claimsContextKey = "auth_claims"

// extractBearer pulls the token out of an Authorization header.
func extractBearer(authHeader string) string {
	if authHeader == "" {
		return ""
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}

// RequireAuth verifies the bearer access token and attaches its claims to
// the request. Verification covers signature, expiry, token type and the
// revocation set.
func RequireAuth(tokens service.TokenService, metrics *monitoring.Metrics, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := extractBearer(c.GetHeader("Authorization"))
		if tokenStr == "" {
			dto.SendError(c, errors.ErrUnauthorized("missing bearer token"))
			return
		}

		claims, err := tokens.Verify(c.Request.Context(), tokenStr)
		if err != nil {
			metrics.TokenVerifies.WithLabelValues("rejected").Inc()
			log.Warn(c.Request.Context(), "access token rejected", logger.Err(err))
			dto.SendError(c, err)
			return
		}
		metrics.TokenVerifies.WithLabelValues("ok").Inc()

		SetClaims(c, claims)
		c.Next()
	}
}

// SetClaims attaches verified claims to the request context.
func SetClaims(c *gin.Context, claims *models.TokenClaims) {
	c.Set(claimsContextKey, claims)
	c.Set(string(constants.ContextKeyUserID), claims.UserID)
	c.Set(string(constants.ContextKeySessionID), claims.SessionID)
}

// RequireRole gates a route on a role carried by the verified token. It must
// run after RequireAuth.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := ClaimsFrom(c)
		if !ok || !claims.HasRole(role) {
			dto.SendError(c, errors.ErrUnauthorized("insufficient role"))
			return
		}
		c.Next()
	}
}

// ClaimsFrom returns the verified claims attached by RequireAuth.
func ClaimsFrom(c *gin.Context) (*models.TokenClaims, bool) {
	v, ok := c.Get(claimsContextKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*models.TokenClaims)
	return claims, ok
}
