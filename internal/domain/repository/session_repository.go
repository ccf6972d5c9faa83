package repository

import (
	"context"
	"time"

	"github.com/turtacn/authcore/internal/domain/models"
)

// SessionRepository stores session records plus the per-user and per-device
// index sets that make membership queries O(1).
type SessionRepository interface {
	// Save persists the session and adds it to both index sets. The record
	// TTL is the absolute timeout plus the audit retention window.
	Save(ctx context.Context, session *models.Session, ttl time.Duration) error

	// Get returns the session or nil if the record has expired out of the store.
	Get(ctx context.Context, sessionID string) (*models.Session, error)

	// Update rewrites the record preserving index membership. TTL <= 0
	// keeps the current expiry.
	Update(ctx context.Context, session *models.Session, ttl time.Duration) error

	// Deindex removes the session from both index sets while leaving the
	// record for its audit-retention TTL.
	Deindex(ctx context.Context, session *models.Session, retention time.Duration) error

	// ListByUser returns all indexed sessions for the user.
	ListByUser(ctx context.Context, userID string) ([]*models.Session, error)

	// ListByDevice returns all indexed sessions for the device.
	ListByDevice(ctx context.Context, deviceID string) ([]*models.Session, error)
}

// TrustedDeviceRepository stores trust grants keyed by device id.
type TrustedDeviceRepository interface {
	// Save persists the grant with TTL equal to the remaining trust period.
	Save(ctx context.Context, device *models.TrustedDevice, ttl time.Duration) error

	// Get returns the grant or nil if absent or expired.
	Get(ctx context.Context, deviceID string) (*models.TrustedDevice, error)

	// Revoke flips the revoked flag, keeping the record until its TTL lapses.
	Revoke(ctx context.Context, deviceID string) error
}
