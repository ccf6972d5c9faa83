// Package mocks provides testify mocks for the domain service ports.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/turtacn/authcore/internal/domain/models"
	"github.com/turtacn/authcore/internal/domain/repository"
)

// MockFamilyRepository mocks repository.FamilyRepository.
type MockFamilyRepository struct {
	mock.Mock
}

func (m *MockFamilyRepository) Create(ctx context.Context, family *models.RefreshTokenFamily, ttl time.Duration) error {
	args := m.Called(ctx, family, ttl)
	return args.Error(0)
}

func (m *MockFamilyRepository) Get(ctx context.Context, familyID string) (*models.RefreshTokenFamily, error) {
	args := m.Called(ctx, familyID)
	if family, ok := args.Get(0).(*models.RefreshTokenFamily); ok {
		return family, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockFamilyRepository) RotateCurrent(ctx context.Context, familyID, expectedJTI, newJTI string, now time.Time) (repository.RotateOutcome, error) {
	args := m.Called(ctx, familyID, expectedJTI, newJTI, now)
	return args.Get(0).(repository.RotateOutcome), args.Error(1)
}

func (m *MockFamilyRepository) Revoke(ctx context.Context, familyID, reason string) error {
	args := m.Called(ctx, familyID, reason)
	return args.Error(0)
}

// MockBlacklistRepository mocks repository.BlacklistRepository.
type MockBlacklistRepository struct {
	mock.Mock
}

func (m *MockBlacklistRepository) Revoke(ctx context.Context, jti, reason string, ttl time.Duration) error {
	args := m.Called(ctx, jti, reason, ttl)
	return args.Error(0)
}

func (m *MockBlacklistRepository) IsRevoked(ctx context.Context, jti string) (bool, error) {
	args := m.Called(ctx, jti)
	return args.Bool(0), args.Error(1)
}

// MockSessionRepository mocks repository.SessionRepository.
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Save(ctx context.Context, session *models.Session, ttl time.Duration) error {
	args := m.Called(ctx, session, ttl)
	return args.Error(0)
}

func (m *MockSessionRepository) Get(ctx context.Context, sessionID string) (*models.Session, error) {
	args := m.Called(ctx, sessionID)
	if session, ok := args.Get(0).(*models.Session); ok {
		return session, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSessionRepository) Update(ctx context.Context, session *models.Session, ttl time.Duration) error {
	args := m.Called(ctx, session, ttl)
	return args.Error(0)
}

func (m *MockSessionRepository) Deindex(ctx context.Context, session *models.Session, retention time.Duration) error {
	args := m.Called(ctx, session, retention)
	return args.Error(0)
}

func (m *MockSessionRepository) ListByUser(ctx context.Context, userID string) ([]*models.Session, error) {
	args := m.Called(ctx, userID)
	if sessions, ok := args.Get(0).([]*models.Session); ok {
		return sessions, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSessionRepository) ListByDevice(ctx context.Context, deviceID string) ([]*models.Session, error) {
	args := m.Called(ctx, deviceID)
	if sessions, ok := args.Get(0).([]*models.Session); ok {
		return sessions, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockTrustedDeviceRepository mocks repository.TrustedDeviceRepository.
type MockTrustedDeviceRepository struct {
	mock.Mock
}

func (m *MockTrustedDeviceRepository) Save(ctx context.Context, device *models.TrustedDevice, ttl time.Duration) error {
	args := m.Called(ctx, device, ttl)
	return args.Error(0)
}

func (m *MockTrustedDeviceRepository) Get(ctx context.Context, deviceID string) (*models.TrustedDevice, error) {
	args := m.Called(ctx, deviceID)
	if device, ok := args.Get(0).(*models.TrustedDevice); ok {
		return device, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTrustedDeviceRepository) Revoke(ctx context.Context, deviceID string) error {
	args := m.Called(ctx, deviceID)
	return args.Error(0)
}

// MockCryptoService mocks service.CryptoService.
type MockCryptoService struct {
	mock.Mock
}

func (m *MockCryptoService) Sign(ctx context.Context, claims *models.TokenClaims) (string, error) {
	args := m.Called(ctx, claims)
	return args.String(0), args.Error(1)
}

func (m *MockCryptoService) Parse(ctx context.Context, tokenString string) (*models.TokenClaims, error) {
	args := m.Called(ctx, tokenString)
	if claims, ok := args.Get(0).(*models.TokenClaims); ok {
		return claims, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockAuditService mocks service.AuditService and records emitted events.
type MockAuditService struct {
	mock.Mock
}

func (m *MockAuditService) Emit(ctx context.Context, event models.AuditEvent) {
	m.Called(ctx, event)
}

func (m *MockAuditService) Close() error {
	args := m.Called()
	return args.Error(0)
}
