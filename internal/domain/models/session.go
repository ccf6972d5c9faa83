package models

import (
	"time"

	"github.com/google/uuid"
)

// Session is one authenticated device context. It is owned exclusively by the
// session store; token claims reference it by SessionID only.
type Session struct {
	SessionID       string     `json:"session_id"`
	UserID          string     `json:"user_id"`
	DeviceID        string     `json:"device_id"`
	Fingerprint     string     `json:"fingerprint"`
	IPAddress       string     `json:"ip_address"`
	UserAgent       string     `json:"user_agent"`
	CreatedAt       time.Time  `json:"created_at"`
	ExpiresAt       time.Time  `json:"expires_at"`
	TerminatedAt    *time.Time `json:"terminated_at,omitempty"`
	LastActivityAt  time.Time  `json:"last_activity_at"`
	MFAVerified     bool       `json:"mfa_verified"`
	IsTrustedDevice bool       `json:"is_trusted_device"`
}

// SessionAttributes carries login facts recorded on the session.
type SessionAttributes struct {
	MFAVerified   bool
	TrustedDevice bool
}

// NewSession creates a session for a successful login.
func NewSession(userID string, device DeviceContext, absoluteTimeout time.Duration) *Session {
	now := time.Now().UTC()
	return &Session{
		SessionID:      uuid.New().String(),
		UserID:         userID,
		DeviceID:       device.DeviceID,
		Fingerprint:    device.Fingerprint,
		IPAddress:      device.IPAddress,
		UserAgent:      device.UserAgent,
		CreatedAt:      now,
		ExpiresAt:      now.Add(absoluteTimeout),
		LastActivityAt: now,
	}
}

// IsTerminated reports whether the session was explicitly ended.
func (s *Session) IsTerminated() bool { return s.TerminatedAt != nil }

// IdleExpired reports whether the idle timeout has elapsed since last activity.
func (s *Session) IdleExpired(now time.Time, idleTimeout time.Duration) bool {
	return now.Sub(s.LastActivityAt) > idleTimeout
}

// AbsoluteExpired reports whether the absolute timeout has elapsed since creation.
func (s *Session) AbsoluteExpired(now time.Time, absoluteTimeout time.Duration) bool {
	return now.Sub(s.CreatedAt) > absoluteTimeout
}

// Touch records activity and pushes the expiry forward, never past the
// absolute limit.
func (s *Session) Touch(now time.Time, idleTimeout, absoluteTimeout time.Duration) {
	s.LastActivityAt = now
	next := now.Add(idleTimeout)
	absolute := s.CreatedAt.Add(absoluteTimeout)
	if next.After(absolute) {
		next = absolute
	}
	s.ExpiresAt = next
}

// Terminate marks the session ended. The record is retained for the audit
// window before the store expires it.
func (s *Session) Terminate(now time.Time) {
	t := now
	s.TerminatedAt = &t
}
