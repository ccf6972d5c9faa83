package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/turtacn/authcore/internal/domain/models"
	"github.com/turtacn/authcore/internal/domain/service"
)

// MockTokenService mocks service.TokenService.
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) Issue(ctx context.Context, userID string, roles []string, sessionID string, device models.DeviceContext) (*models.TokenPair, error) {
	args := m.Called(ctx, userID, roles, sessionID, device)
	if pair, ok := args.Get(0).(*models.TokenPair); ok {
		return pair, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTokenService) Verify(ctx context.Context, accessToken string) (*models.TokenClaims, error) {
	args := m.Called(ctx, accessToken)
	if claims, ok := args.Get(0).(*models.TokenClaims); ok {
		return claims, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTokenService) Rotate(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	args := m.Called(ctx, refreshToken)
	if pair, ok := args.Get(0).(*models.TokenPair); ok {
		return pair, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTokenService) RevokeToken(ctx context.Context, jti, reason string, ttl time.Duration) error {
	args := m.Called(ctx, jti, reason, ttl)
	return args.Error(0)
}

func (m *MockTokenService) RevokeFamily(ctx context.Context, familyID, reason string) error {
	args := m.Called(ctx, familyID, reason)
	return args.Error(0)
}

// MockSessionService mocks service.SessionService.
type MockSessionService struct {
	mock.Mock
}

func (m *MockSessionService) Create(ctx context.Context, userID string, device models.DeviceContext, attrs models.SessionAttributes) (*models.Session, error) {
	args := m.Called(ctx, userID, device, attrs)
	if session, ok := args.Get(0).(*models.Session); ok {
		return session, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSessionService) Get(ctx context.Context, sessionID string) (*models.Session, error) {
	args := m.Called(ctx, sessionID)
	if session, ok := args.Get(0).(*models.Session); ok {
		return session, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSessionService) Touch(ctx context.Context, sessionID string) (*models.Session, error) {
	args := m.Called(ctx, sessionID)
	if session, ok := args.Get(0).(*models.Session); ok {
		return session, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSessionService) Terminate(ctx context.Context, sessionID, reason string) error {
	args := m.Called(ctx, sessionID, reason)
	return args.Error(0)
}

func (m *MockSessionService) TerminateAllForUser(ctx context.Context, userID, reason string) (int, error) {
	args := m.Called(ctx, userID, reason)
	return args.Int(0), args.Error(1)
}

func (m *MockSessionService) ListByUser(ctx context.Context, userID string) ([]*models.Session, error) {
	args := m.Called(ctx, userID)
	if sessions, ok := args.Get(0).([]*models.Session); ok {
		return sessions, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSessionService) ListByDevice(ctx context.Context, deviceID string) ([]*models.Session, error) {
	args := m.Called(ctx, deviceID)
	if sessions, ok := args.Get(0).([]*models.Session); ok {
		return sessions, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockTrustedDeviceService mocks service.TrustedDeviceService.
type MockTrustedDeviceService struct {
	mock.Mock
}

func (m *MockTrustedDeviceService) Trust(ctx context.Context, userID string, device models.DeviceContext) (*models.TrustedDevice, error) {
	args := m.Called(ctx, userID, device)
	if trusted, ok := args.Get(0).(*models.TrustedDevice); ok {
		return trusted, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTrustedDeviceService) IsTrusted(ctx context.Context, userID, deviceID, trustToken string) (bool, error) {
	args := m.Called(ctx, userID, deviceID, trustToken)
	return args.Bool(0), args.Error(1)
}

func (m *MockTrustedDeviceService) Revoke(ctx context.Context, userID, deviceID string) error {
	args := m.Called(ctx, userID, deviceID)
	return args.Error(0)
}

// MockRateLimitService mocks service.RateLimitService.
type MockRateLimitService struct {
	mock.Mock
}

func (m *MockRateLimitService) Check(ctx context.Context, identifier, operation string) (*service.Decision, error) {
	args := m.Called(ctx, identifier, operation)
	if decision, ok := args.Get(0).(*service.Decision); ok {
		return decision, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRateLimitService) Reset(ctx context.Context, identifier, operation string) error {
	args := m.Called(ctx, identifier, operation)
	return args.Error(0)
}
