package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/turtacn/authcore/internal/domain/models"
	"github.com/turtacn/authcore/internal/domain/repository"
	"github.com/turtacn/authcore/pkg/constants"
	"github.com/turtacn/authcore/pkg/logger"
)

// rotateScript performs the current-jti compare-and-swap. A mismatch revokes
// the family in the same script execution, so two concurrent rotations with a
// superseded jti both report reuse: the loser of the race finds the family
// already revoked but its jti still stale, which is reuse, not a plain
// revoked-family rejection. 'revoked' is reserved for the genuinely current
// jti hitting a family revoked out of band.
var rotateScript = redis.NewScript(`
local key = KEYS[1]
if redis.call('EXISTS', key) == 0 then
  return 'not_found'
end
if redis.call('HGET', key, 'revoked') == '1' then
  if redis.call('HGET', key, 'current_jti') ~= ARGV[1] then
    return 'reuse'
  end
  return 'revoked'
end
local current = redis.call('HGET', key, 'current_jti')
if current ~= ARGV[1] then
  redis.call('HSET', key, 'revoked', '1', 'revoke_reason', ARGV[4])
  return 'reuse'
end
redis.call('HSET', key, 'current_jti', ARGV[2], 'last_used_at', ARGV[3])
return 'ok'
`)

type familyStore struct {
	conn *Connection
	log  logger.Logger
}

// NewFamilyStore creates the refresh-token family repository.
func NewFamilyStore(conn *Connection, log logger.Logger) repository.FamilyRepository {
	return &familyStore{conn: conn, log: log.WithComponent("family_store")}
}

func familyKey(familyID string) string {
	return constants.KeyPrefixFamily + familyID
}

func (s *familyStore) Create(ctx context.Context, family *models.RefreshTokenFamily, ttl time.Duration) error {
	ctx, cancel := s.conn.withTimeout(ctx)
	defer cancel()

	key := familyKey(family.FamilyID)
	fields := map[string]interface{}{
		"family_id":     family.FamilyID,
		"user_id":       family.UserID,
		"fingerprint":   family.Fingerprint,
		"ip_address":    family.IPAddress,
		"current_jti":   family.CurrentJTI,
		"created_at":    family.CreatedAt.Format(time.RFC3339Nano),
		"last_used_at":  family.LastUsedAt.Format(time.RFC3339Nano),
		"revoked":       boolField(family.Revoked),
		"revoke_reason": family.RevokeReason,
	}

	pipe := s.conn.Client().TxPipeline()
	pipe.HSet(ctx, key, fields)
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("create family %s: %w", family.FamilyID, err)
	}
	return nil
}

func (s *familyStore) Get(ctx context.Context, familyID string) (*models.RefreshTokenFamily, error) {
	ctx, cancel := s.conn.withTimeout(ctx)
	defer cancel()

	fields, err := s.conn.Client().HGetAll(ctx, familyKey(familyID)).Result()
	if err != nil {
		return nil, fmt.Errorf("get family %s: %w", familyID, err)
	}
	if len(fields) == 0 {
		return nil, nil
	}

	family := &models.RefreshTokenFamily{
		FamilyID:     fields["family_id"],
		UserID:       fields["user_id"],
		Fingerprint:  fields["fingerprint"],
		IPAddress:    fields["ip_address"],
		CurrentJTI:   fields["current_jti"],
		Revoked:      fields["revoked"] == "1",
		RevokeReason: fields["revoke_reason"],
	}
	if t, err := time.Parse(time.RFC3339Nano, fields["created_at"]); err == nil {
		family.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339Nano, fields["last_used_at"]); err == nil {
		family.LastUsedAt = t
	}
	return family, nil
}

func (s *familyStore) RotateCurrent(ctx context.Context, familyID, expectedJTI, newJTI string, now time.Time) (repository.RotateOutcome, error) {
	ctx, cancel := s.conn.withTimeout(ctx)
	defer cancel()

	result, err := rotateScript.Run(ctx, s.conn.Client(),
		[]string{familyKey(familyID)},
		expectedJTI,
		newJTI,
		now.Format(time.RFC3339Nano),
		constants.RevokeReasonReuseDetected,
	).Text()
	if err != nil {
		return repository.RotateFamilyNotFound, fmt.Errorf("rotate family %s: %w", familyID, err)
	}

	switch result {
	case "ok":
		return repository.RotateOK, nil
	case "revoked":
		return repository.RotateFamilyRevoked, nil
	case "reuse":
		s.log.Warn(ctx, "stale jti presented, family revoked in store",
			logger.String("family_id", familyID),
		)
		return repository.RotateReuseDetected, nil
	case "not_found":
		return repository.RotateFamilyNotFound, nil
	default:
		return repository.RotateFamilyNotFound, fmt.Errorf("rotate family %s: unexpected result %q", familyID, result)
	}
}

func (s *familyStore) Revoke(ctx context.Context, familyID, reason string) error {
	ctx, cancel := s.conn.withTimeout(ctx)
	defer cancel()

	err := s.conn.Client().HSet(ctx, familyKey(familyID),
		"revoked", "1",
		"revoke_reason", reason,
	).Err()
	if err != nil {
		return fmt.Errorf("revoke family %s: %w", familyID, err)
	}
	return nil
}

func boolField(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
