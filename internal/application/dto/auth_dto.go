// Package dto defines the request and response shapes of the HTTP surface.
package dto

import (
	"time"

	"github.com/turtacn/authcore/internal/domain/models"
)

// LoginRequest carries an externally authenticated login. Credential
// verification happens upstream; this service only mints the security state.
type LoginRequest struct {
	UserID      string   `json:"user_id" binding:"required"`
	Roles       []string `json:"roles"`
	DeviceID    string   `json:"device_id"`
	Fingerprint string   `json:"fingerprint"`
	MFAVerified bool     `json:"mfa_verified"`

	// TrustToken lets a previously trusted device skip the second factor.
	TrustToken string `json:"trust_token"`

	// TrustDevice asks to register the device as trusted after a
	// strong-auth login.
	TrustDevice bool `json:"trust_device"`
}

// LoginResponse returns the access token in the body; the refresh token
// travels in an HttpOnly cookie.
type LoginResponse struct {
	AccessToken   string `json:"access_token"`
	TokenType     string `json:"token_type"`
	ExpiresIn     int64  `json:"expires_in"`
	SessionID     string `json:"session_id"`
	FamilyID      string `json:"family_id"`
	MFARequired   bool   `json:"mfa_required"`
	DeviceTrusted bool   `json:"device_trusted"`
	TrustToken    string `json:"trust_token,omitempty"`
}

// RefreshResponse mirrors LoginResponse for rotation.
type RefreshResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	FamilyID    string `json:"family_id"`
}

// SessionDTO is the outward view of a session record.
type SessionDTO struct {
	SessionID      string    `json:"session_id"`
	DeviceID       string    `json:"device_id,omitempty"`
	IPAddress      string    `json:"ip_address,omitempty"`
	UserAgent      string    `json:"user_agent,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	LastActivityAt time.Time `json:"last_activity_at"`
	ExpiresAt      time.Time `json:"expires_at"`
	Current        bool      `json:"current"`
}

// NewSessionDTO converts a domain session, marking whether it belongs to the
// calling request.
func NewSessionDTO(session *models.Session, currentID string) SessionDTO {
	return SessionDTO{
		SessionID:      session.SessionID,
		DeviceID:       session.DeviceID,
		IPAddress:      session.IPAddress,
		UserAgent:      session.UserAgent,
		CreatedAt:      session.CreatedAt,
		LastActivityAt: session.LastActivityAt,
		ExpiresAt:      session.ExpiresAt,
		Current:        session.SessionID == currentID,
	}
}

// TrustDeviceRequest registers the calling device as trusted.
type TrustDeviceRequest struct {
	DeviceID    string `json:"device_id" binding:"required"`
	Fingerprint string `json:"fingerprint"`
}

// TrustDeviceResponse returns the opaque trust token once; the service only
// stores it for comparison.
type TrustDeviceResponse struct {
	DeviceID     string    `json:"device_id"`
	TrustToken   string    `json:"trust_token"`
	TrustedUntil time.Time `json:"trusted_until"`
}

// TrustStatusResponse reports device trust for the caller.
type TrustStatusResponse struct {
	DeviceID string `json:"device_id"`
	Trusted  bool   `json:"trusted"`
}

// AdminActionResponse reports the outcome of an administrative request.
type AdminActionResponse struct {
	Affected int    `json:"affected"`
	Detail   string `json:"detail,omitempty"`
}
