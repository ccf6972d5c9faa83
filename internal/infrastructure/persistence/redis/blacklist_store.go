package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/turtacn/authcore/internal/domain/models"
	"github.com/turtacn/authcore/internal/domain/repository"
	"github.com/turtacn/authcore/pkg/constants"
	"github.com/turtacn/authcore/pkg/logger"
)

type blacklistStore struct {
	conn *Connection
	log  logger.Logger
}

// NewBlacklistStore creates the jti revocation repository. Entries carry a
// TTL equal to the remaining life of the token they block, so the set never
// grows beyond the working set of live tokens.
func NewBlacklistStore(conn *Connection, log logger.Logger) repository.BlacklistRepository {
	return &blacklistStore{conn: conn, log: log.WithComponent("blacklist_store")}
}

func blacklistKey(jti string) string {
	return constants.KeyPrefixBlacklist + jti
}

func (s *blacklistStore) Revoke(ctx context.Context, jti, reason string, ttl time.Duration) error {
	ctx, cancel := s.conn.withTimeout(ctx)
	defer cancel()

	entry := models.RevocationEntry{
		JTI:       jti,
		Reason:    reason,
		RevokedAt: time.Now().UTC(),
	}
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal revocation entry: %w", err)
	}

	if err := s.conn.Client().Set(ctx, blacklistKey(jti), payload, ttl).Err(); err != nil {
		return fmt.Errorf("revoke jti %s: %w", jti, err)
	}

	s.log.Debug(ctx, "jti revoked",
		logger.String("jti", jti),
		logger.String("reason", reason),
		logger.Duration("ttl", ttl),
	)
	return nil
}

func (s *blacklistStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	ctx, cancel := s.conn.withTimeout(ctx)
	defer cancel()

	err := s.conn.Client().Get(ctx, blacklistKey(jti)).Err()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check jti %s: %w", jti, err)
	}
	return true, nil
}
