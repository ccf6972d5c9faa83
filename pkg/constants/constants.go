// Package constants defines system-wide constants for the authcore service.
// This package provides type-safe constant definitions used across all modules.
package constants

import "time"

// ================================================================================
// Token Type Constants
// ================================================================================

// TokenType represents the type of authentication token
type TokenType string

const (
	// TokenTypeAccess represents a short-lived access token
	TokenTypeAccess TokenType = "access_token"

	// TokenTypeRefresh represents a long-lived refresh token
	TokenTypeRefresh TokenType = "refresh_token"
)

// ================================================================================
// Error Code Constants
// ================================================================================

// ErrorCode identifies a failure class so callers can branch on kind.
type ErrorCode string

const (
	// ErrCodeTokenExpired indicates the token is past its expiry.
	ErrCodeTokenExpired ErrorCode = "token_expired"

	// ErrCodeTokenMalformed indicates the token failed structural or signature validation.
	ErrCodeTokenMalformed ErrorCode = "token_malformed"

	// ErrCodeTokenRevoked indicates the token jti is present in the revocation set.
	ErrCodeTokenRevoked ErrorCode = "token_revoked"

	// ErrCodeFamilyRevoked indicates the refresh-token family is in its terminal revoked state.
	ErrCodeFamilyRevoked ErrorCode = "family_revoked"

	// ErrCodeTokenReuseDetected indicates a superseded refresh token was replayed.
	ErrCodeTokenReuseDetected ErrorCode = "token_reuse_detected"

	// ErrCodeSessionNotFound indicates no session exists for the given id.
	ErrCodeSessionNotFound ErrorCode = "session_not_found"

	// ErrCodeSessionExpired indicates the session exceeded its idle or absolute timeout.
	ErrCodeSessionExpired ErrorCode = "session_expired"

	// ErrCodeStoreUnavailable indicates the shared store could not be reached in time.
	ErrCodeStoreUnavailable ErrorCode = "store_unavailable"

	// ErrCodeRateLimitExceeded indicates the sliding-window limit was hit.
	ErrCodeRateLimitExceeded ErrorCode = "rate_limit_exceeded"

	// ErrCodeInvalidRequest indicates a malformed or incomplete request.
	ErrCodeInvalidRequest ErrorCode = "invalid_request"

	// ErrCodeUnauthorized indicates missing or insufficient credentials.
	ErrCodeUnauthorized ErrorCode = "unauthorized"

	// ErrCodeInternal indicates an unexpected server-side failure.
	ErrCodeInternal ErrorCode = "internal_error"
)

// ================================================================================
// Token Lifetime Constants
// ================================================================================

const (
	// AccessTokenDefaultTTL is the default lifetime for access tokens (15 minutes)
	AccessTokenDefaultTTL = 15 * time.Minute

	// RefreshTokenDefaultTTL is the default lifetime for refresh tokens (30 days)
	RefreshTokenDefaultTTL = 30 * 24 * time.Hour

	// SessionIdleTimeoutDefault is the default idle timeout for sessions (30 minutes)
	SessionIdleTimeoutDefault = 30 * time.Minute

	// SessionAbsoluteTimeoutDefault is the default absolute session lifetime (12 hours)
	SessionAbsoluteTimeoutDefault = 12 * time.Hour

	// SessionAuditRetentionDefault is how long a terminated session record is kept (24 hours)
	SessionAuditRetentionDefault = 24 * time.Hour

	// DeviceTrustPeriodDefault is the default trusted-device lifetime (30 days)
	DeviceTrustPeriodDefault = 30 * 24 * time.Hour

	// StoreTimeoutDefault bounds every round-trip to the shared store
	StoreTimeoutDefault = 200 * time.Millisecond

	// RateLimitWindowBuffer pads the zset TTL past the window end
	RateLimitWindowBuffer = 5 * time.Second
)

// MaxSessionsPerUserDefault caps concurrent sessions per user before eviction.
const MaxSessionsPerUserDefault = 5

// ================================================================================
// Store Key Prefixes
// ================================================================================

const (
	// KeyPrefixBlacklist prefixes revoked-jti entries (TTL = remaining token life)
	KeyPrefixBlacklist = "token:blacklist:"

	// KeyPrefixFamily prefixes refresh-token family hashes
	KeyPrefixFamily = "token:family:"

	// KeyPrefixSession prefixes session records
	KeyPrefixSession = "session:"

	// KeyPrefixUserSessions prefixes the per-user session-id set
	KeyPrefixUserSessions = "user:sessions:"

	// KeyPrefixDeviceSessions prefixes the per-device session-id set
	KeyPrefixDeviceSessions = "device:sessions:"

	// KeyPrefixTrustedDevice prefixes trusted-device records (TTL = trust period)
	KeyPrefixTrustedDevice = "trusted:device:"

	// KeyPrefixRateLimit prefixes sliding-window timestamp zsets
	KeyPrefixRateLimit = "ratelimit:"
)

// ================================================================================
// Revocation Reason Constants
// ================================================================================

const (
	// RevokeReasonLogout marks tokens revoked by an explicit logout.
	RevokeReasonLogout = "logout"

	// RevokeReasonRotated marks a refresh token superseded by rotation.
	RevokeReasonRotated = "rotated"

	// RevokeReasonReuseDetected marks a family revoked after replay of a superseded token.
	RevokeReasonReuseDetected = "reuse_detected"

	// RevokeReasonAdmin marks administrative revocation.
	RevokeReasonAdmin = "admin_action"
)

// ================================================================================
// Session Eviction Policies
// ================================================================================

// EvictionPolicy selects which session is terminated when the per-user limit is hit.
type EvictionPolicy string

const (
	// EvictLeastRecentlyCreated terminates the oldest session by creation time (default).
	EvictLeastRecentlyCreated EvictionPolicy = "lrc"

	// EvictLeastRecentlyUsed terminates the session with the oldest activity.
	EvictLeastRecentlyUsed EvictionPolicy = "lru"
)

// ================================================================================
// Rate Limit Operations
// ================================================================================

const (
	// RateLimitOpLogin names the login-attempt limit bucket.
	RateLimitOpLogin = "login"

	// RateLimitOpRegister names the registration limit bucket.
	RateLimitOpRegister = "register"

	// RateLimitOpRefresh names the token-refresh limit bucket.
	RateLimitOpRefresh = "refresh"

	// RateLimitOpDefault names the catch-all limit bucket.
	RateLimitOpDefault = "default"
)

// ================================================================================
// Audit Event Constants
// ================================================================================

// AuditEventType represents different types of auditable security events
type AuditEventType string

const (
	// EventTypeTokenIssued is emitted when a token pair is minted
	EventTypeTokenIssued AuditEventType = "token_issued"

	// EventTypeTokenRotated is emitted on successful refresh rotation
	EventTypeTokenRotated AuditEventType = "token_rotated"

	// EventTypeTokenRevoked is emitted when a jti or family is revoked
	EventTypeTokenRevoked AuditEventType = "token_revoked"

	// EventTypeReuseDetected is emitted when a superseded refresh token is replayed
	EventTypeReuseDetected AuditEventType = "token_reuse_detected"

	// EventTypeFamilyRevoked is emitted when a whole family becomes unusable
	EventTypeFamilyRevoked AuditEventType = "family_revoked"

	// EventTypeSessionCreated is emitted on login
	EventTypeSessionCreated AuditEventType = "session_created"

	// EventTypeSessionEvicted is emitted when the per-user limit forces termination
	EventTypeSessionEvicted AuditEventType = "session_evicted"

	// EventTypeSessionTerminated is emitted on logout or administrative termination
	EventTypeSessionTerminated AuditEventType = "session_terminated"

	// EventTypeDeviceTrusted is emitted when a device passes a strong-auth challenge
	EventTypeDeviceTrusted AuditEventType = "device_trusted"

	// EventTypeDeviceTrustRevoked is emitted when device trust is withdrawn
	EventTypeDeviceTrustRevoked AuditEventType = "device_trust_revoked"

	// EventTypeRateLimitExceeded is emitted when a limit bucket denies a request
	EventTypeRateLimitExceeded AuditEventType = "rate_limit_exceeded"
)

// ================================================================================
// Context Keys
// ================================================================================

// ContextKey is the type for values carried on request contexts.
type ContextKey string

const (
	// ContextKeyRequestID carries the inbound request id.
	ContextKeyRequestID ContextKey = "request_id"

	// ContextKeyUserID carries the authenticated subject.
	ContextKeyUserID ContextKey = "user_id"

	// ContextKeySessionID carries the session referenced by the access token.
	ContextKeySessionID ContextKey = "session_id"
)

// ================================================================================
// Role Constants
// ================================================================================

const (
	// RoleAdmin grants the administrative surface and rate-limit bypass.
	RoleAdmin = "admin"

	// RoleUser is the baseline authenticated role.
	RoleUser = "user"
)

// ================================================================================
// HTTP Transport Constants
// ================================================================================

const (
	// RefreshCookieName is the HttpOnly cookie carrying the refresh token.
	// The token never appears in a response body.
	RefreshCookieName = "authcore_refresh"

	// RefreshCookiePath restricts the refresh cookie to the endpoints that
	// consume it.
	RefreshCookiePath = "/api/v1/auth"

	// HeaderRequestID is the inbound/outbound correlation header.
	HeaderRequestID = "X-Request-ID"

	// HeaderRateLimitLimit reports the window capacity.
	HeaderRateLimitLimit = "X-RateLimit-Limit"

	// HeaderRateLimitRemaining reports attempts left in the window.
	HeaderRateLimitRemaining = "X-RateLimit-Remaining"

	// HeaderRateLimitReset reports when the window frees, as a unix second.
	HeaderRateLimitReset = "X-RateLimit-Reset"
)
