package service

import (
	"context"
	"time"

	"github.com/turtacn/authcore/internal/domain/models"
)

// TokenService issues, verifies, rotates and revokes bearer tokens. All
// mutable state lives in the shared store; the service itself is stateless
// and safe for concurrent use.
type TokenService interface {
	// Issue mints a signed access/refresh pair rooted in a new refresh-token
	// family. The session id is embedded in both claim sets as a reference,
	// never as embedded session state.
	Issue(ctx context.Context, userID string, roles []string, sessionID string, device models.DeviceContext) (*models.TokenPair, error)

	// Verify validates an access token: signature, expiry, then the shared
	// revocation set. Read-only and on the hot path of every authenticated
	// request. Store unavailability follows the configured fail-open or
	// fail-closed posture; signature and expiry checks are never skipped.
	Verify(ctx context.Context, accessToken string) (*models.TokenClaims, error)

	// Rotate exchanges a refresh token for a new pair. Presenting a
	// superseded token revokes the entire family and fails with
	// TokenReuseDetected; a revoked family fails with FamilyRevoked.
	Rotate(ctx context.Context, refreshToken string) (*models.TokenPair, error)

	// RevokeToken blacklists a single jti for ttl (the remaining token life).
	RevokeToken(ctx context.Context, jti, reason string, ttl time.Duration) error

	// RevokeFamily moves a refresh-token family to its terminal state.
	RevokeFamily(ctx context.Context, familyID, reason string) error
}
