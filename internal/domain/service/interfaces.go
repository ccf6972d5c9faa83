// Package service defines the domain services of the authcore security core
// and their ports to infrastructure.
package service

import (
	"context"

	"github.com/turtacn/authcore/internal/domain/models"
)

// CryptoService signs and verifies token claim sets. Implementations own key
// material sourcing (static config or Vault).
type CryptoService interface {
	// Sign produces a compact signed token for the claims.
	Sign(ctx context.Context, claims *models.TokenClaims) (string, error)

	// Parse validates signature, structure and expiry, returning the claims.
	Parse(ctx context.Context, tokenString string) (*models.TokenClaims, error)
}

// AuditService receives security-audit events for the external monitoring
// collaborator. Emit must never fail the calling operation.
type AuditService interface {
	Emit(ctx context.Context, event models.AuditEvent)
	Close() error
}
