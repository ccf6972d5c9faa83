// Package models defines the domain models for the authcore service.
package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/turtacn/authcore/pkg/constants"
)

// TokenClaims is the signed claim set carried by both access and refresh
// tokens. Access tokens are never persisted; validity is proven by signature
// plus absence from the revocation set.
type TokenClaims struct {
	jwt.RegisteredClaims

	UserID    string              `json:"uid"`
	SessionID string              `json:"sid,omitempty"`
	FamilyID  string              `json:"fid,omitempty"`
	Roles     []string            `json:"roles,omitempty"`
	TokenType constants.TokenType `json:"typ"`
}

// JTI returns the unique token identifier used as the revocation key.
func (c *TokenClaims) JTI() string { return c.ID }

// HasRole reports whether the claim set carries the given role. Roles are a
// closed list on the token, not ad hoc strings resolved at check time.
func (c *TokenClaims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// RemainingLife returns the duration until expiry, or zero if already past.
// Used as the blacklist TTL so revocation entries never outlive the token.
func (c *TokenClaims) RemainingLife(now time.Time) time.Duration {
	if c.ExpiresAt == nil || !now.Before(c.ExpiresAt.Time) {
		return 0
	}
	return c.ExpiresAt.Time.Sub(now)
}

// TokenPair is the result of issuance or rotation.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	FamilyID     string `json:"family_id"`
	ExpiresIn    int64  `json:"expires_in"`
}

// DeviceContext carries the uninterpreted device identity attached to logins.
// The fingerprint comes from an external fingerprinting collaborator.
type DeviceContext struct {
	DeviceID    string `json:"device_id"`
	Fingerprint string `json:"fingerprint"`
	IPAddress   string `json:"ip_address"`
	UserAgent   string `json:"user_agent"`
}

// RefreshTokenFamily represents one continuous chain of refresh-token
// rotations originating from a single login event. At most one jti is current
// at any instant; presenting a superseded jti revokes the whole family.
type RefreshTokenFamily struct {
	FamilyID     string    `json:"family_id" redis:"family_id"`
	UserID       string    `json:"user_id" redis:"user_id"`
	Fingerprint  string    `json:"fingerprint" redis:"fingerprint"`
	IPAddress    string    `json:"ip_address" redis:"ip_address"`
	CurrentJTI   string    `json:"current_jti" redis:"current_jti"`
	CreatedAt    time.Time `json:"created_at" redis:"created_at"`
	LastUsedAt   time.Time `json:"last_used_at" redis:"last_used_at"`
	Revoked      bool      `json:"revoked" redis:"revoked"`
	RevokeReason string    `json:"revoke_reason,omitempty" redis:"revoke_reason"`
}

// NewRefreshTokenFamily creates a family rooted at the given refresh jti.
func NewRefreshTokenFamily(userID, currentJTI string, device DeviceContext) *RefreshTokenFamily {
	now := time.Now().UTC()
	return &RefreshTokenFamily{
		FamilyID:    uuid.New().String(),
		UserID:      userID,
		Fingerprint: device.Fingerprint,
		IPAddress:   device.IPAddress,
		CurrentJTI:  currentJTI,
		CreatedAt:   now,
		LastUsedAt:  now,
	}
}

// IsRevoked reports whether the family reached its terminal state.
func (f *RefreshTokenFamily) IsRevoked() bool { return f.Revoked }

// Revoke moves the family to its terminal state. Revocation is one-way.
func (f *RefreshTokenFamily) Revoke(reason string) {
	f.Revoked = true
	f.RevokeReason = reason
}

// RevocationEntry maps a revoked jti to its reason. The record lives in the
// shared store for exactly the remaining validity window of the token it
// blacklists.
type RevocationEntry struct {
	JTI       string    `json:"jti"`
	Reason    string    `json:"reason"`
	RevokedAt time.Time `json:"revoked_at"`
}
