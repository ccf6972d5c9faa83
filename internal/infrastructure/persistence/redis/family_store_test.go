package redis

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/authcore/internal/domain/models"
	"github.com/turtacn/authcore/internal/domain/repository"
	"github.com/turtacn/authcore/pkg/constants"
	"github.com/turtacn/authcore/pkg/logger"
)

func newTestConnection(t *testing.T) (*Connection, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewConnectionFromClient(client, time.Second, logger.NewNoopLogger()), mr
}

func testFamily(jti string) *models.RefreshTokenFamily {
	return models.NewRefreshTokenFamily("user-1", jti, models.DeviceContext{
		DeviceID:    "dev-1",
		Fingerprint: "fp-1",
		IPAddress:   "203.0.113.10",
	})
}

func TestFamilyStore_CreateAndGet(t *testing.T) {
	conn, _ := newTestConnection(t)
	store := NewFamilyStore(conn, logger.NewNoopLogger())
	ctx := context.Background()

	family := testFamily("jti-1")
	require.NoError(t, store.Create(ctx, family, time.Hour))

	got, err := store.Get(ctx, family.FamilyID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, family.FamilyID, got.FamilyID)
	assert.Equal(t, "user-1", got.UserID)
	assert.Equal(t, "jti-1", got.CurrentJTI)
	assert.False(t, got.IsRevoked())
}

func TestFamilyStore_GetMissing(t *testing.T) {
	conn, _ := newTestConnection(t)
	store := NewFamilyStore(conn, logger.NewNoopLogger())

	got, err := store.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFamilyStore_RotateCurrent(t *testing.T) {
	conn, _ := newTestConnection(t)
	store := NewFamilyStore(conn, logger.NewNoopLogger())
	ctx := context.Background()

	family := testFamily("jti-1")
	require.NoError(t, store.Create(ctx, family, time.Hour))

	outcome, err := store.RotateCurrent(ctx, family.FamilyID, "jti-1", "jti-2", time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, repository.RotateOK, outcome)

	got, err := store.Get(ctx, family.FamilyID)
	require.NoError(t, err)
	assert.Equal(t, "jti-2", got.CurrentJTI)
}

func TestFamilyStore_RotateStaleJTIRevokesFamily(t *testing.T) {
	conn, _ := newTestConnection(t)
	store := NewFamilyStore(conn, logger.NewNoopLogger())
	ctx := context.Background()

	family := testFamily("jti-1")
	require.NoError(t, store.Create(ctx, family, time.Hour))

	outcome, err := store.RotateCurrent(ctx, family.FamilyID, "jti-1", "jti-2", time.Now().UTC())
	require.NoError(t, err)
	require.Equal(t, repository.RotateOK, outcome)

	// Replaying the superseded jti trips reuse detection and revokes the
	// family inside the script.
	outcome, err = store.RotateCurrent(ctx, family.FamilyID, "jti-1", "jti-3", time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, repository.RotateReuseDetected, outcome)

	got, err := store.Get(ctx, family.FamilyID)
	require.NoError(t, err)
	assert.True(t, got.IsRevoked())
	assert.Equal(t, constants.RevokeReasonReuseDetected, got.RevokeReason)

	// Even the current jti is now unusable.
	outcome, err = store.RotateCurrent(ctx, family.FamilyID, "jti-2", "jti-4", time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, repository.RotateFamilyRevoked, outcome)
}

func TestFamilyStore_ConcurrentStaleRotationsBothReportReuse(t *testing.T) {
	conn, _ := newTestConnection(t)
	store := NewFamilyStore(conn, logger.NewNoopLogger())
	ctx := context.Background()

	family := testFamily("jti-1")
	require.NoError(t, store.Create(ctx, family, time.Hour))

	outcome, err := store.RotateCurrent(ctx, family.FamilyID, "jti-1", "jti-2", time.Now().UTC())
	require.NoError(t, err)
	require.Equal(t, repository.RotateOK, outcome)

	// Two racing rotations with the superseded jti: whichever runs second
	// finds the family already revoked but its jti still stale, and must
	// report reuse all the same, never a plain revoked-family rejection.
	outcomes := make(chan repository.RotateOutcome, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			got, err := store.RotateCurrent(ctx, family.FamilyID, "jti-1", fmt.Sprintf("jti-race-%d", n), time.Now().UTC())
			require.NoError(t, err)
			outcomes <- got
		}(i)
	}
	wg.Wait()
	close(outcomes)

	for got := range outcomes {
		assert.Equal(t, repository.RotateReuseDetected, got)
	}
}

func TestFamilyStore_RotateUnknownFamily(t *testing.T) {
	conn, _ := newTestConnection(t)
	store := NewFamilyStore(conn, logger.NewNoopLogger())

	outcome, err := store.RotateCurrent(context.Background(), "ghost", "jti-1", "jti-2", time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, repository.RotateFamilyNotFound, outcome)
}

func TestFamilyStore_Revoke(t *testing.T) {
	conn, _ := newTestConnection(t)
	store := NewFamilyStore(conn, logger.NewNoopLogger())
	ctx := context.Background()

	family := testFamily("jti-1")
	require.NoError(t, store.Create(ctx, family, time.Hour))
	require.NoError(t, store.Revoke(ctx, family.FamilyID, constants.RevokeReasonLogout))

	got, err := store.Get(ctx, family.FamilyID)
	require.NoError(t, err)
	assert.True(t, got.IsRevoked())
	assert.Equal(t, constants.RevokeReasonLogout, got.RevokeReason)
}

func TestFamilyStore_ExpiresWithTTL(t *testing.T) {
	conn, mr := newTestConnection(t)
	store := NewFamilyStore(conn, logger.NewNoopLogger())
	ctx := context.Background()

	family := testFamily("jti-1")
	require.NoError(t, store.Create(ctx, family, time.Minute))

	mr.FastForward(2 * time.Minute)

	got, err := store.Get(ctx, family.FamilyID)
	require.NoError(t, err)
	assert.Nil(t, got)
}
