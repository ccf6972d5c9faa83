package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/authcore/pkg/constants"
)

// AuditEvent is a security-relevant occurrence surfaced to the monitoring
// collaborator. Reuse-detection and family-revocation events are emitted
// unconditionally; all others respect sink configuration.
type AuditEvent struct {
	ID         string                   `json:"id" gorm:"primaryKey;column:id"`
	Type       constants.AuditEventType `json:"type" gorm:"column:event_type;index"`
	UserID     string                   `json:"user_id,omitempty" gorm:"column:user_id;index"`
	SessionID  string                   `json:"session_id,omitempty" gorm:"column:session_id"`
	FamilyID   string                   `json:"family_id,omitempty" gorm:"column:family_id"`
	DeviceID   string                   `json:"device_id,omitempty" gorm:"column:device_id"`
	IPAddress  string                   `json:"ip_address,omitempty" gorm:"column:ip_address"`
	Detail     string                   `json:"detail,omitempty" gorm:"column:detail"`
	OccurredAt time.Time                `json:"occurred_at" gorm:"column:occurred_at;index"`
}

// TableName sets the gorm table for the audit archive sink.
func (AuditEvent) TableName() string { return "audit_events" }

// NewAuditEvent creates an event stamped with the current time.
func NewAuditEvent(eventType constants.AuditEventType) AuditEvent {
	return AuditEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
	}
}
