package models

import (
	"time"

	"github.com/google/uuid"
)

// TrustedDevice records a device that satisfied a strong-authentication
// challenge and may skip the second factor until the trust period lapses.
type TrustedDevice struct {
	DeviceID     string    `json:"device_id"`
	UserID       string    `json:"user_id"`
	Fingerprint  string    `json:"fingerprint"`
	TrustToken   string    `json:"trust_token"`
	TrustedUntil time.Time `json:"trusted_until"`
	UsageCount   int64     `json:"usage_count"`
	Revoked      bool      `json:"revoked"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewTrustedDevice creates a trust grant for the given trust period. The
// trust token is opaque and compared server-side only.
func NewTrustedDevice(userID string, device DeviceContext, trustPeriod time.Duration) *TrustedDevice {
	now := time.Now().UTC()
	return &TrustedDevice{
		DeviceID:     device.DeviceID,
		UserID:       userID,
		Fingerprint:  device.Fingerprint,
		TrustToken:   uuid.New().String(),
		TrustedUntil: now.Add(trustPeriod),
		CreatedAt:    now,
	}
}

// IsTrusted reports whether the grant is usable: not revoked and not lapsed.
func (d *TrustedDevice) IsTrusted(now time.Time) bool {
	return !d.Revoked && now.Before(d.TrustedUntil)
}

// RecordUse increments the usage counter.
func (d *TrustedDevice) RecordUse() { d.UsageCount++ }
