package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/authcore/internal/application/dto"
	"github.com/turtacn/authcore/internal/domain/models"
	"github.com/turtacn/authcore/internal/domain/service/mocks"
	"github.com/turtacn/authcore/pkg/constants"
	"github.com/turtacn/authcore/pkg/errors"
	"github.com/turtacn/authcore/pkg/logger"
)

type appServiceFixture struct {
	svc      *AuthAppService
	tokens   *mocks.MockTokenService
	sessions *mocks.MockSessionService
	devices  *mocks.MockTrustedDeviceService
	crypto   *mocks.MockCryptoService
}

func newAppServiceFixture(t *testing.T) *appServiceFixture {
	t.Helper()
	f := &appServiceFixture{
		tokens:   new(mocks.MockTokenService),
		sessions: new(mocks.MockSessionService),
		devices:  new(mocks.MockTrustedDeviceService),
		crypto:   new(mocks.MockCryptoService),
	}
	f.svc = NewAuthAppService(f.tokens, f.sessions, f.devices, f.crypto, logger.NewNoopLogger())
	return f
}

func appSession(userID string) *models.Session {
	return models.NewSession(userID, models.DeviceContext{DeviceID: "dev-1"}, 12*time.Hour)
}

func appPair() *models.TokenPair {
	return &models.TokenPair{
		AccessToken:  "access",
		RefreshToken: "refresh",
		FamilyID:     "fam-1",
		ExpiresIn:    900,
	}
}

func accessClaims(ttl time.Duration) *models.TokenClaims {
	now := time.Now().UTC()
	return &models.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "jti-1",
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:    "user-1",
		SessionID: "sess-1",
		FamilyID:  "fam-1",
		TokenType: constants.TokenTypeAccess,
	}
}

func TestLogin_HappyPath(t *testing.T) {
	f := newAppServiceFixture(t)
	ctx := context.Background()
	session := appSession("user-1")

	f.sessions.On("Create", ctx, "user-1", mock.Anything, models.SessionAttributes{MFAVerified: true}).Return(session, nil)
	f.tokens.On("Issue", ctx, "user-1", []string{constants.RoleUser}, session.SessionID, mock.Anything).Return(appPair(), nil)

	resp, refresh, err := f.svc.Login(ctx, dto.LoginRequest{
		UserID:      "user-1",
		MFAVerified: true,
	}, models.DeviceContext{DeviceID: "dev-1"})
	require.NoError(t, err)
	assert.Equal(t, "access", resp.AccessToken)
	assert.Equal(t, "refresh", refresh)
	assert.Equal(t, session.SessionID, resp.SessionID)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.False(t, resp.MFARequired)
	assert.False(t, resp.DeviceTrusted)
}

func TestLogin_TrustedDeviceSkipsMFA(t *testing.T) {
	f := newAppServiceFixture(t)
	ctx := context.Background()
	session := appSession("user-1")

	f.devices.On("IsTrusted", ctx, "user-1", "dev-1", "trust-token").Return(true, nil)
	f.sessions.On("Create", ctx, "user-1", mock.Anything, models.SessionAttributes{MFAVerified: true, TrustedDevice: true}).Return(session, nil)
	f.tokens.On("Issue", ctx, "user-1", []string{constants.RoleUser}, session.SessionID, mock.Anything).Return(appPair(), nil)

	resp, _, err := f.svc.Login(ctx, dto.LoginRequest{
		UserID:     "user-1",
		TrustToken: "trust-token",
	}, models.DeviceContext{DeviceID: "dev-1"})
	require.NoError(t, err)
	assert.False(t, resp.MFARequired)
	assert.True(t, resp.DeviceTrusted)
}

func TestLogin_UntrustedDeviceNeedsMFA(t *testing.T) {
	f := newAppServiceFixture(t)
	ctx := context.Background()
	session := appSession("user-1")

	f.devices.On("IsTrusted", ctx, "user-1", "dev-1", "stale-token").Return(false, nil)
	f.sessions.On("Create", ctx, "user-1", mock.Anything, models.SessionAttributes{}).Return(session, nil)
	f.tokens.On("Issue", ctx, "user-1", []string{constants.RoleUser}, session.SessionID, mock.Anything).Return(appPair(), nil)

	resp, _, err := f.svc.Login(ctx, dto.LoginRequest{
		UserID:     "user-1",
		TrustToken: "stale-token",
	}, models.DeviceContext{DeviceID: "dev-1"})
	require.NoError(t, err)
	assert.True(t, resp.MFARequired)
}

func TestLogin_TrustDeviceAfterStrongAuth(t *testing.T) {
	f := newAppServiceFixture(t)
	ctx := context.Background()
	session := appSession("user-1")
	grant := models.NewTrustedDevice("user-1", models.DeviceContext{DeviceID: "dev-1"}, time.Hour)

	f.sessions.On("Create", ctx, "user-1", mock.Anything, mock.Anything).Return(session, nil)
	f.tokens.On("Issue", ctx, "user-1", []string{constants.RoleUser}, session.SessionID, mock.Anything).Return(appPair(), nil)
	f.devices.On("Trust", ctx, "user-1", mock.Anything).Return(grant, nil)

	resp, _, err := f.svc.Login(ctx, dto.LoginRequest{
		UserID:      "user-1",
		MFAVerified: true,
		TrustDevice: true,
	}, models.DeviceContext{DeviceID: "dev-1"})
	require.NoError(t, err)
	assert.Equal(t, grant.TrustToken, resp.TrustToken)
	assert.True(t, resp.DeviceTrusted)
}

func TestLogin_IssueFailureRollsBackSession(t *testing.T) {
	f := newAppServiceFixture(t)
	ctx := context.Background()
	session := appSession("user-1")

	f.sessions.On("Create", ctx, "user-1", mock.Anything, mock.Anything).Return(session, nil)
	f.tokens.On("Issue", ctx, "user-1", []string{constants.RoleUser}, session.SessionID, mock.Anything).
		Return(nil, errors.ErrStoreUnavailable(nil))
	f.sessions.On("Terminate", ctx, session.SessionID, constants.RevokeReasonAdmin).Return(nil)

	_, _, err := f.svc.Login(ctx, dto.LoginRequest{UserID: "user-1", MFAVerified: true}, models.DeviceContext{})
	assert.True(t, errors.HasCode(err, constants.ErrCodeStoreUnavailable))
	f.sessions.AssertExpectations(t)
}

func TestRefresh_HappyPath(t *testing.T) {
	f := newAppServiceFixture(t)
	ctx := context.Background()
	claims := accessClaims(time.Hour)
	claims.TokenType = constants.TokenTypeRefresh

	f.crypto.On("Parse", ctx, "refresh").Return(claims, nil)
	f.sessions.On("Touch", ctx, "sess-1").Return(appSession("user-1"), nil)
	f.tokens.On("Rotate", ctx, "refresh").Return(appPair(), nil)

	resp, newRefresh, err := f.svc.Refresh(ctx, "refresh")
	require.NoError(t, err)
	assert.Equal(t, "access", resp.AccessToken)
	assert.Equal(t, "refresh", newRefresh)
}

func TestRefresh_DeadSessionRevokesFamily(t *testing.T) {
	f := newAppServiceFixture(t)
	ctx := context.Background()
	claims := accessClaims(time.Hour)
	claims.TokenType = constants.TokenTypeRefresh

	f.crypto.On("Parse", ctx, "refresh").Return(claims, nil)
	f.sessions.On("Touch", ctx, "sess-1").Return(nil, errors.ErrSessionExpired("sess-1", "idle"))
	f.tokens.On("RevokeFamily", ctx, "fam-1", constants.RevokeReasonLogout).Return(nil)

	_, _, err := f.svc.Refresh(ctx, "refresh")
	assert.True(t, errors.HasCode(err, constants.ErrCodeSessionExpired))

	f.tokens.AssertCalled(t, "RevokeFamily", ctx, "fam-1", constants.RevokeReasonLogout)
	f.tokens.AssertNotCalled(t, "Rotate", mock.Anything, mock.Anything)
}

func TestLogout_RevokesEverything(t *testing.T) {
	f := newAppServiceFixture(t)
	ctx := context.Background()
	claims := accessClaims(10 * time.Minute)

	f.tokens.On("RevokeToken", ctx, "jti-1", constants.RevokeReasonLogout, mock.AnythingOfType("time.Duration")).Return(nil)
	f.tokens.On("RevokeFamily", ctx, "fam-1", constants.RevokeReasonLogout).Return(nil)
	f.sessions.On("Terminate", ctx, "sess-1", constants.RevokeReasonLogout).Return(nil)

	require.NoError(t, f.svc.Logout(ctx, claims))
	f.tokens.AssertExpectations(t)
	f.sessions.AssertExpectations(t)
}

func TestLogout_AlreadyGoneSessionIgnored(t *testing.T) {
	f := newAppServiceFixture(t)
	ctx := context.Background()
	claims := accessClaims(10 * time.Minute)

	f.tokens.On("RevokeToken", ctx, "jti-1", constants.RevokeReasonLogout, mock.AnythingOfType("time.Duration")).Return(nil)
	f.tokens.On("RevokeFamily", ctx, "fam-1", constants.RevokeReasonLogout).Return(nil)
	f.sessions.On("Terminate", ctx, "sess-1", constants.RevokeReasonLogout).
		Return(errors.ErrSessionNotFound("sess-1"))

	assert.NoError(t, f.svc.Logout(ctx, claims))
}

func TestTerminateSession_OwnershipEnforced(t *testing.T) {
	f := newAppServiceFixture(t)
	ctx := context.Background()
	session := appSession("someone-else")

	f.sessions.On("Get", ctx, session.SessionID).Return(session, nil)

	err := f.svc.TerminateSession(ctx, "user-1", session.SessionID)
	assert.True(t, errors.HasCode(err, constants.ErrCodeUnauthorized))
	f.sessions.AssertNotCalled(t, "Terminate", mock.Anything, mock.Anything, mock.Anything)
}

func TestListSessions_MarksCurrent(t *testing.T) {
	f := newAppServiceFixture(t)
	ctx := context.Background()
	a := appSession("user-1")
	b := appSession("user-1")

	f.sessions.On("ListByUser", ctx, "user-1").Return([]*models.Session{a, b}, nil)

	out, err := f.svc.ListSessions(ctx, "user-1", b.SessionID)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.False(t, out[0].Current)
	assert.True(t, out[1].Current)
}

func TestForceLogout(t *testing.T) {
	f := newAppServiceFixture(t)
	ctx := context.Background()

	f.sessions.On("TerminateAllForUser", ctx, "user-1", constants.RevokeReasonAdmin).Return(3, nil)

	resp, err := f.svc.ForceLogout(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Affected)
}
