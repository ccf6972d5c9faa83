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

type sessionStore struct {
	conn *Connection
	log  logger.Logger
}

// NewSessionStore creates the session repository. Records are JSON blobs
// under session:{id}; per-user and per-device sets provide O(1) membership.
func NewSessionStore(conn *Connection, log logger.Logger) repository.SessionRepository {
	return &sessionStore{conn: conn, log: log.WithComponent("session_store")}
}

func sessionKey(sessionID string) string {
	return constants.KeyPrefixSession + sessionID
}

func userSessionsKey(userID string) string {
	return constants.KeyPrefixUserSessions + userID
}

func deviceSessionsKey(deviceID string) string {
	return constants.KeyPrefixDeviceSessions + deviceID
}

func (s *sessionStore) Save(ctx context.Context, session *models.Session, ttl time.Duration) error {
	ctx, cancel := s.conn.withTimeout(ctx)
	defer cancel()

	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	pipe := s.conn.Client().TxPipeline()
	pipe.Set(ctx, sessionKey(session.SessionID), payload, ttl)
	pipe.SAdd(ctx, userSessionsKey(session.UserID), session.SessionID)
	pipe.Expire(ctx, userSessionsKey(session.UserID), ttl)
	if session.DeviceID != "" {
		pipe.SAdd(ctx, deviceSessionsKey(session.DeviceID), session.SessionID)
		pipe.Expire(ctx, deviceSessionsKey(session.DeviceID), ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save session %s: %w", session.SessionID, err)
	}
	return nil
}

func (s *sessionStore) Get(ctx context.Context, sessionID string) (*models.Session, error) {
	ctx, cancel := s.conn.withTimeout(ctx)
	defer cancel()

	payload, err := s.conn.Client().Get(ctx, sessionKey(sessionID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", sessionID, err)
	}

	var session models.Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, fmt.Errorf("unmarshal session %s: %w", sessionID, err)
	}
	return &session, nil
}

func (s *sessionStore) Update(ctx context.Context, session *models.Session, ttl time.Duration) error {
	ctx, cancel := s.conn.withTimeout(ctx)
	defer cancel()

	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	key := sessionKey(session.SessionID)
	if ttl > 0 {
		err = s.conn.Client().Set(ctx, key, payload, ttl).Err()
	} else {
		err = s.conn.Client().Set(ctx, key, payload, redis.KeepTTL).Err()
	}
	if err != nil {
		return fmt.Errorf("update session %s: %w", session.SessionID, err)
	}
	return nil
}

func (s *sessionStore) Deindex(ctx context.Context, session *models.Session, retention time.Duration) error {
	ctx, cancel := s.conn.withTimeout(ctx)
	defer cancel()

	pipe := s.conn.Client().TxPipeline()
	pipe.SRem(ctx, userSessionsKey(session.UserID), session.SessionID)
	if session.DeviceID != "" {
		pipe.SRem(ctx, deviceSessionsKey(session.DeviceID), session.SessionID)
	}
	pipe.Expire(ctx, sessionKey(session.SessionID), retention)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("deindex session %s: %w", session.SessionID, err)
	}
	return nil
}

func (s *sessionStore) ListByUser(ctx context.Context, userID string) ([]*models.Session, error) {
	return s.listByIndex(ctx, userSessionsKey(userID))
}

func (s *sessionStore) ListByDevice(ctx context.Context, deviceID string) ([]*models.Session, error) {
	return s.listByIndex(ctx, deviceSessionsKey(deviceID))
}

// listByIndex resolves an index set to session records, pruning ids whose
// record has already expired out of the store.
func (s *sessionStore) listByIndex(ctx context.Context, indexKey string) ([]*models.Session, error) {
	ctx, cancel := s.conn.withTimeout(ctx)
	defer cancel()

	ids, err := s.conn.Client().SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list index %s: %w", indexKey, err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	sessions := make([]*models.Session, 0, len(ids))
	var stale []interface{}
	for _, id := range ids {
		payload, err := s.conn.Client().Get(ctx, sessionKey(id)).Bytes()
		if err == redis.Nil {
			stale = append(stale, id)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("resolve session %s: %w", id, err)
		}
		var session models.Session
		if err := json.Unmarshal(payload, &session); err != nil {
			return nil, fmt.Errorf("unmarshal session %s: %w", id, err)
		}
		sessions = append(sessions, &session)
	}

	if len(stale) > 0 {
		if err := s.conn.Client().SRem(ctx, indexKey, stale...).Err(); err != nil {
			s.log.Warn(ctx, "failed to prune stale index entries",
				logger.String("index", indexKey),
				logger.Err(err),
			)
		}
	}
	return sessions, nil
}
