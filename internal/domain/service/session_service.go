package service

import (
	"context"

	"github.com/turtacn/authcore/internal/domain/models"
)

// SessionService manages server-side session records. Tokens reference
// sessions by id; terminating a session invalidates its tokens on the next
// verification that consults it.
type SessionService interface {
	// Create registers a new session for the user, evicting the oldest
	// session first when the per-user cap is already reached.
	Create(ctx context.Context, userID string, device models.DeviceContext, attrs models.SessionAttributes) (*models.Session, error)

	// Get returns a live session. Sessions past their idle or absolute
	// timeout are terminated on read and reported as expired.
	Get(ctx context.Context, sessionID string) (*models.Session, error)

	// Touch records activity, extending the idle deadline. The absolute
	// deadline never moves.
	Touch(ctx context.Context, sessionID string) (*models.Session, error)

	// Terminate ends the session. The record is deindexed immediately but
	// retained for the audit-retention period.
	Terminate(ctx context.Context, sessionID, reason string) error

	// TerminateAllForUser ends every live session for userID and returns the
	// number terminated.
	TerminateAllForUser(ctx context.Context, userID, reason string) (int, error)

	// ListByUser returns the user's live sessions.
	ListByUser(ctx context.Context, userID string) ([]*models.Session, error)

	// ListByDevice returns live sessions bound to a device fingerprint.
	ListByDevice(ctx context.Context, deviceID string) ([]*models.Session, error)
}
