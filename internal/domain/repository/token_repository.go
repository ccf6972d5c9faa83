// Package repository defines the persistence ports for the domain layer.
// Implementations live under internal/infrastructure and are backed by the
// shared TTL-capable store.
package repository

import (
	"context"
	"time"

	"github.com/turtacn/authcore/internal/domain/models"
)

// RotateOutcome is the result of the atomic current-jti compare-and-swap.
type RotateOutcome int

const (
	// RotateOK means the presented jti matched and was replaced.
	RotateOK RotateOutcome = iota

	// RotateFamilyRevoked means the family is in its terminal revoked state.
	RotateFamilyRevoked

	// RotateReuseDetected means the presented jti was already superseded.
	// The store has revoked the entire family as part of the same atomic step.
	RotateReuseDetected

	// RotateFamilyNotFound means no family exists for the id.
	RotateFamilyNotFound
)

// FamilyRepository stores refresh-token families. The comparison-and-
// replacement of the current jti must be atomic: two concurrent rotations
// with the same superseded token must both observe the mismatch.
type FamilyRepository interface {
	// Create persists a new family with the given TTL.
	Create(ctx context.Context, family *models.RefreshTokenFamily, ttl time.Duration) error

	// Get returns the family or nil if it does not exist.
	Get(ctx context.Context, familyID string) (*models.RefreshTokenFamily, error)

	// RotateCurrent atomically compares the family's current jti against
	// expectedJTI and, on match, installs newJTI and updates last_used_at.
	// On mismatch the family is revoked with reason reuse_detected inside
	// the same atomic step.
	RotateCurrent(ctx context.Context, familyID, expectedJTI, newJTI string, now time.Time) (RotateOutcome, error)

	// Revoke moves the family to its terminal state.
	Revoke(ctx context.Context, familyID, reason string) error
}

// BlacklistRepository stores revoked jtis for the remaining life of the
// tokens they block.
type BlacklistRepository interface {
	// Revoke inserts a revocation entry expiring after ttl.
	Revoke(ctx context.Context, jti, reason string, ttl time.Duration) error

	// IsRevoked reports whether the jti is present in the revocation set.
	IsRevoked(ctx context.Context, jti string) (bool, error)
}
