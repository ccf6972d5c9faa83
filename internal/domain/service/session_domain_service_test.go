package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/authcore/internal/config"
	"github.com/turtacn/authcore/internal/domain/models"
	"github.com/turtacn/authcore/internal/domain/service"
	"github.com/turtacn/authcore/internal/domain/service/mocks"
	"github.com/turtacn/authcore/pkg/constants"
	"github.com/turtacn/authcore/pkg/errors"
	"github.com/turtacn/authcore/pkg/logger"
)

func sessionTestConfig() config.SessionConfig {
	return config.SessionConfig{
		IdleTimeout:     30 * time.Minute,
		AbsoluteTimeout: 12 * time.Hour,
		AuditRetention:  24 * time.Hour,
		MaxPerUser:      3,
		EvictionPolicy:  constants.EvictLeastRecentlyCreated,
	}
}

func newSessionTestService(t *testing.T, cfg config.SessionConfig) (service.SessionService, *mocks.MockSessionRepository, *mocks.MockAuditService) {
	t.Helper()
	repo := new(mocks.MockSessionRepository)
	audit := new(mocks.MockAuditService)
	svc := service.NewSessionDomainService(cfg, repo, audit, logger.NewNoopLogger())
	return svc, repo, audit
}

func liveSession(userID string, createdAgo, activeAgo time.Duration) *models.Session {
	now := time.Now().UTC()
	return &models.Session{
		SessionID:      "sess-" + createdAgo.String(),
		UserID:         userID,
		DeviceID:       "dev-1",
		CreatedAt:      now.Add(-createdAgo),
		ExpiresAt:      now.Add(time.Hour),
		LastActivityAt: now.Add(-activeAgo),
	}
}

func TestSessionCreate_UnderLimit(t *testing.T) {
	svc, repo, audit := newSessionTestService(t, sessionTestConfig())
	ctx := context.Background()

	repo.On("ListByUser", ctx, "user-1").Return([]*models.Session{}, nil)
	repo.On("Save", ctx, mock.AnythingOfType("*models.Session"), 36*time.Hour).Return(nil)
	audit.On("Emit", ctx, mock.MatchedBy(func(e models.AuditEvent) bool {
		return e.Type == constants.EventTypeSessionCreated
	})).Return()

	session, err := svc.Create(ctx, "user-1", models.DeviceContext{DeviceID: "dev-1"}, models.SessionAttributes{MFAVerified: true})
	require.NoError(t, err)
	assert.Equal(t, "user-1", session.UserID)
	assert.NotEmpty(t, session.SessionID)
	assert.True(t, session.MFAVerified)

	repo.AssertExpectations(t)
}

func TestSessionCreate_EvictsOldestAtLimit(t *testing.T) {
	svc, repo, audit := newSessionTestService(t, sessionTestConfig())
	ctx := context.Background()

	oldest := liveSession("user-1", 3*time.Hour, 5*time.Minute)
	mid := liveSession("user-1", 2*time.Hour, time.Minute)
	newest := liveSession("user-1", time.Hour, 2*time.Hour)

	repo.On("ListByUser", ctx, "user-1").Return([]*models.Session{newest, oldest, mid}, nil)
	repo.On("Update", ctx, oldest, 24*time.Hour).Return(nil)
	repo.On("Deindex", ctx, oldest, 24*time.Hour).Return(nil)
	repo.On("Save", ctx, mock.AnythingOfType("*models.Session"), mock.AnythingOfType("time.Duration")).Return(nil)
	audit.On("Emit", ctx, mock.Anything).Return()

	_, err := svc.Create(ctx, "user-1", models.DeviceContext{DeviceID: "dev-2"}, models.SessionAttributes{})
	require.NoError(t, err)

	assert.True(t, oldest.IsTerminated())
	assert.False(t, mid.IsTerminated())
	assert.False(t, newest.IsTerminated())
	repo.AssertExpectations(t)
}

func TestSessionCreate_LRUEvictsStalest(t *testing.T) {
	cfg := sessionTestConfig()
	cfg.EvictionPolicy = constants.EvictLeastRecentlyUsed
	svc, repo, audit := newSessionTestService(t, cfg)
	ctx := context.Background()

	oldest := liveSession("user-1", 3*time.Hour, 5*time.Minute)
	stalest := liveSession("user-1", time.Hour, 25*time.Minute)
	recent := liveSession("user-1", 2*time.Hour, time.Minute)

	repo.On("ListByUser", ctx, "user-1").Return([]*models.Session{oldest, stalest, recent}, nil)
	repo.On("Update", ctx, stalest, 24*time.Hour).Return(nil)
	repo.On("Deindex", ctx, stalest, 24*time.Hour).Return(nil)
	repo.On("Save", ctx, mock.AnythingOfType("*models.Session"), mock.AnythingOfType("time.Duration")).Return(nil)
	audit.On("Emit", ctx, mock.Anything).Return()

	_, err := svc.Create(ctx, "user-1", models.DeviceContext{}, models.SessionAttributes{})
	require.NoError(t, err)
	assert.True(t, stalest.IsTerminated())
	assert.False(t, oldest.IsTerminated())
}

func TestSessionGet_NotFound(t *testing.T) {
	svc, repo, _ := newSessionTestService(t, sessionTestConfig())
	ctx := context.Background()

	repo.On("Get", ctx, "missing").Return(nil, nil)

	_, err := svc.Get(ctx, "missing")
	assert.True(t, errors.HasCode(err, constants.ErrCodeSessionNotFound))
}

func TestSessionGet_IdleExpired(t *testing.T) {
	svc, repo, audit := newSessionTestService(t, sessionTestConfig())
	ctx := context.Background()

	session := liveSession("user-1", time.Hour, 31*time.Minute)
	repo.On("Get", ctx, session.SessionID).Return(session, nil)
	repo.On("Update", ctx, session, 24*time.Hour).Return(nil)
	repo.On("Deindex", ctx, session, 24*time.Hour).Return(nil)
	audit.On("Emit", ctx, mock.Anything).Return()

	_, err := svc.Get(ctx, session.SessionID)
	require.True(t, errors.HasCode(err, constants.ErrCodeSessionExpired))

	authErr, ok := errors.AsAuthError(err)
	require.True(t, ok)
	assert.Equal(t, "idle", authErr.Metadata()["timeout"])
	assert.True(t, session.IsTerminated())
}

func TestSessionGet_AbsoluteExpiredDespiteActivity(t *testing.T) {
	svc, repo, audit := newSessionTestService(t, sessionTestConfig())
	ctx := context.Background()

	// Continuously active but created past the absolute limit.
	session := liveSession("user-1", 13*time.Hour, time.Minute)
	repo.On("Get", ctx, session.SessionID).Return(session, nil)
	repo.On("Update", ctx, session, 24*time.Hour).Return(nil)
	repo.On("Deindex", ctx, session, 24*time.Hour).Return(nil)
	audit.On("Emit", ctx, mock.Anything).Return()

	_, err := svc.Get(ctx, session.SessionID)
	require.True(t, errors.HasCode(err, constants.ErrCodeSessionExpired))

	authErr, _ := errors.AsAuthError(err)
	assert.Equal(t, "absolute", authErr.Metadata()["timeout"])
}

func TestSessionTouch_ExtendsActivity(t *testing.T) {
	svc, repo, _ := newSessionTestService(t, sessionTestConfig())
	ctx := context.Background()

	session := liveSession("user-1", time.Hour, 10*time.Minute)
	before := session.LastActivityAt
	repo.On("Get", ctx, session.SessionID).Return(session, nil)
	repo.On("Update", ctx, session, time.Duration(0)).Return(nil)

	got, err := svc.Touch(ctx, session.SessionID)
	require.NoError(t, err)
	assert.True(t, got.LastActivityAt.After(before))
}

func TestSessionTerminate_RetainsForAudit(t *testing.T) {
	svc, repo, audit := newSessionTestService(t, sessionTestConfig())
	ctx := context.Background()

	session := liveSession("user-1", time.Hour, time.Minute)
	repo.On("Get", ctx, session.SessionID).Return(session, nil)
	repo.On("Update", ctx, session, 24*time.Hour).Return(nil)
	repo.On("Deindex", ctx, session, 24*time.Hour).Return(nil)
	audit.On("Emit", ctx, mock.MatchedBy(func(e models.AuditEvent) bool {
		return e.Type == constants.EventTypeSessionTerminated
	})).Return()

	require.NoError(t, svc.Terminate(ctx, session.SessionID, constants.RevokeReasonLogout))
	assert.True(t, session.IsTerminated())
	repo.AssertExpectations(t)
}

func TestSessionTerminate_AlreadyTerminated(t *testing.T) {
	svc, repo, _ := newSessionTestService(t, sessionTestConfig())
	ctx := context.Background()

	session := liveSession("user-1", time.Hour, time.Minute)
	session.Terminate(time.Now().UTC())
	repo.On("Get", ctx, session.SessionID).Return(session, nil)

	err := svc.Terminate(ctx, session.SessionID, constants.RevokeReasonLogout)
	assert.True(t, errors.HasCode(err, constants.ErrCodeSessionNotFound))
}

func TestTerminateAllForUser(t *testing.T) {
	svc, repo, audit := newSessionTestService(t, sessionTestConfig())
	ctx := context.Background()

	a := liveSession("user-1", 2*time.Hour, time.Minute)
	b := liveSession("user-1", time.Hour, time.Minute)
	ended := liveSession("user-1", time.Hour, time.Minute)
	ended.Terminate(time.Now().UTC())

	repo.On("ListByUser", ctx, "user-1").Return([]*models.Session{a, b, ended}, nil)
	repo.On("Update", ctx, mock.AnythingOfType("*models.Session"), 24*time.Hour).Return(nil)
	repo.On("Deindex", ctx, mock.AnythingOfType("*models.Session"), 24*time.Hour).Return(nil)
	audit.On("Emit", ctx, mock.Anything).Return()

	n, err := svc.TerminateAllForUser(ctx, "user-1", constants.RevokeReasonAdmin)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestListByUser_FiltersDead(t *testing.T) {
	svc, repo, _ := newSessionTestService(t, sessionTestConfig())
	ctx := context.Background()

	alive := liveSession("user-1", time.Hour, time.Minute)
	idle := liveSession("user-1", time.Hour, 40*time.Minute)
	ended := liveSession("user-1", time.Hour, time.Minute)
	ended.Terminate(time.Now().UTC())

	repo.On("ListByUser", ctx, "user-1").Return([]*models.Session{alive, idle, ended}, nil)

	got, err := svc.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, alive.SessionID, got[0].SessionID)
}
