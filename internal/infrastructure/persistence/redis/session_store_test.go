package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/authcore/internal/domain/models"
	"github.com/turtacn/authcore/pkg/logger"
)

func testSession(userID, deviceID string) *models.Session {
	return models.NewSession(userID, models.DeviceContext{
		DeviceID:    deviceID,
		Fingerprint: "fp-1",
		IPAddress:   "203.0.113.10",
		UserAgent:   "test-agent",
	}, 12*time.Hour)
}

func TestSessionStore_SaveAndGet(t *testing.T) {
	conn, _ := newTestConnection(t)
	store := NewSessionStore(conn, logger.NewNoopLogger())
	ctx := context.Background()

	session := testSession("user-1", "dev-1")
	require.NoError(t, store.Save(ctx, session, time.Hour))

	got, err := store.Get(ctx, session.SessionID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, session.SessionID, got.SessionID)
	assert.Equal(t, "user-1", got.UserID)
	assert.Equal(t, "dev-1", got.DeviceID)
}

func TestSessionStore_GetMissing(t *testing.T) {
	conn, _ := newTestConnection(t)
	store := NewSessionStore(conn, logger.NewNoopLogger())

	got, err := store.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSessionStore_ListByUserAndDevice(t *testing.T) {
	conn, _ := newTestConnection(t)
	store := NewSessionStore(conn, logger.NewNoopLogger())
	ctx := context.Background()

	a := testSession("user-1", "dev-1")
	b := testSession("user-1", "dev-2")
	c := testSession("user-2", "dev-1")
	for _, s := range []*models.Session{a, b, c} {
		require.NoError(t, store.Save(ctx, s, time.Hour))
	}

	byUser, err := store.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, byUser, 2)

	byDevice, err := store.ListByDevice(ctx, "dev-1")
	require.NoError(t, err)
	assert.Len(t, byDevice, 2)
}

func TestSessionStore_DeindexKeepsRecord(t *testing.T) {
	conn, _ := newTestConnection(t)
	store := NewSessionStore(conn, logger.NewNoopLogger())
	ctx := context.Background()

	session := testSession("user-1", "dev-1")
	require.NoError(t, store.Save(ctx, session, time.Hour))
	require.NoError(t, store.Deindex(ctx, session, 24*time.Hour))

	// Gone from the indexes.
	byUser, err := store.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, byUser)

	// Still readable for audit.
	got, err := store.Get(ctx, session.SessionID)
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestSessionStore_UpdateKeepsTTL(t *testing.T) {
	conn, mr := newTestConnection(t)
	store := NewSessionStore(conn, logger.NewNoopLogger())
	ctx := context.Background()

	session := testSession("user-1", "dev-1")
	require.NoError(t, store.Save(ctx, session, time.Hour))

	session.Touch(time.Now().UTC(), 30*time.Minute, 12*time.Hour)
	require.NoError(t, store.Update(ctx, session, 0))

	// The record must not have become persistent.
	mr.FastForward(2 * time.Hour)
	got, err := store.Get(ctx, session.SessionID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSessionStore_ListPrunesExpiredRecords(t *testing.T) {
	conn, mr := newTestConnection(t)
	store := NewSessionStore(conn, logger.NewNoopLogger())
	ctx := context.Background()

	short := testSession("user-1", "dev-1")
	long := testSession("user-1", "dev-1")
	require.NoError(t, store.Save(ctx, short, time.Minute))
	require.NoError(t, store.Save(ctx, long, time.Hour))

	mr.FastForward(2 * time.Minute)

	got, err := store.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, long.SessionID, got[0].SessionID)
}
