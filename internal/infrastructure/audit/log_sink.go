package audit

import (
	"context"

	"github.com/turtacn/authcore/internal/domain/models"
	"github.com/turtacn/authcore/pkg/logger"
)

// LogSink writes audit events to the structured log. Always enabled, so
// events remain observable even with Kafka and the archive turned off.
type LogSink struct {
	log logger.Logger
}

// NewLogSink creates the sink.
func NewLogSink(log logger.Logger) *LogSink {
	return &LogSink{log: log.WithComponent("audit_log")}
}

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) Write(ctx context.Context, event models.AuditEvent) error {
	s.log.Info(ctx, "audit event",
		logger.String("event_id", event.ID),
		logger.String("event_type", string(event.Type)),
		logger.String("user_id", event.UserID),
		logger.String("session_id", event.SessionID),
		logger.String("family_id", event.FamilyID),
		logger.String("device_id", event.DeviceID),
		logger.String("ip_address", event.IPAddress),
		logger.String("detail", event.Detail),
		logger.Time("occurred_at", event.OccurredAt),
	)
	return nil
}

func (s *LogSink) Close() error { return nil }
