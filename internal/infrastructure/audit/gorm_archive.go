package audit

import (
	"context"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/turtacn/authcore/internal/domain/models"
	"github.com/turtacn/authcore/pkg/logger"
)

// ArchiveSink persists audit events to a relational archive for compliance
// queries that outlive Kafka retention.
type ArchiveSink struct {
	db  *gorm.DB
	log logger.Logger
}

// NewArchiveSink opens the archive database and migrates the events table.
func NewArchiveSink(dsn string, log logger.Logger) (*ArchiveSink, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open audit archive: %w", err)
	}
	return newArchiveSink(db, log)
}

// NewArchiveSinkWithDB wraps an existing gorm handle. Used by tests running
// against sqlite.
func NewArchiveSinkWithDB(db *gorm.DB, log logger.Logger) (*ArchiveSink, error) {
	return newArchiveSink(db, log)
}

func newArchiveSink(db *gorm.DB, log logger.Logger) (*ArchiveSink, error) {
	if err := db.AutoMigrate(&models.AuditEvent{}); err != nil {
		return nil, fmt.Errorf("migrate audit archive: %w", err)
	}
	return &ArchiveSink{db: db, log: log.WithComponent("audit_archive")}, nil
}

func (s *ArchiveSink) Name() string { return "archive" }

func (s *ArchiveSink) Write(ctx context.Context, event models.AuditEvent) error {
	if err := s.db.WithContext(ctx).Create(&event).Error; err != nil {
		return fmt.Errorf("archive audit event: %w", err)
	}
	return nil
}

// EventsByUser returns archived events for a user, newest first.
func (s *ArchiveSink) EventsByUser(ctx context.Context, userID string, limit int) ([]models.AuditEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	var events []models.AuditEvent
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("occurred_at DESC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("query audit archive: %w", err)
	}
	return events, nil
}

func (s *ArchiveSink) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
