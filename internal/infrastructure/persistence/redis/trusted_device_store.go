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

type trustedDeviceStore struct {
	conn *Connection
	log  logger.Logger
}

// NewTrustedDeviceStore creates the trusted-device repository. Records expire
// with the trust period, so lapsed trust needs no sweeper.
func NewTrustedDeviceStore(conn *Connection, log logger.Logger) repository.TrustedDeviceRepository {
	return &trustedDeviceStore{conn: conn, log: log.WithComponent("trusted_device_store")}
}

func trustedDeviceKey(deviceID string) string {
	return constants.KeyPrefixTrustedDevice + deviceID
}

func (s *trustedDeviceStore) Save(ctx context.Context, device *models.TrustedDevice, ttl time.Duration) error {
	ctx, cancel := s.conn.withTimeout(ctx)
	defer cancel()

	payload, err := json.Marshal(device)
	if err != nil {
		return fmt.Errorf("marshal trusted device: %w", err)
	}
	if ttl <= 0 {
		return fmt.Errorf("trusted device %s: non-positive ttl", device.DeviceID)
	}
	if err := s.conn.Client().Set(ctx, trustedDeviceKey(device.DeviceID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("save trusted device %s: %w", device.DeviceID, err)
	}
	return nil
}

func (s *trustedDeviceStore) Get(ctx context.Context, deviceID string) (*models.TrustedDevice, error) {
	ctx, cancel := s.conn.withTimeout(ctx)
	defer cancel()

	payload, err := s.conn.Client().Get(ctx, trustedDeviceKey(deviceID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get trusted device %s: %w", deviceID, err)
	}

	var device models.TrustedDevice
	if err := json.Unmarshal(payload, &device); err != nil {
		return nil, fmt.Errorf("unmarshal trusted device %s: %w", deviceID, err)
	}
	return &device, nil
}

func (s *trustedDeviceStore) Revoke(ctx context.Context, deviceID string) error {
	device, err := s.Get(ctx, deviceID)
	if err != nil {
		return err
	}
	if device == nil {
		return nil
	}

	ctx, cancel := s.conn.withTimeout(ctx)
	defer cancel()

	device.Revoked = true
	payload, err := json.Marshal(device)
	if err != nil {
		return fmt.Errorf("marshal trusted device: %w", err)
	}
	if err := s.conn.Client().Set(ctx, trustedDeviceKey(deviceID), payload, redis.KeepTTL).Err(); err != nil {
		return fmt.Errorf("revoke trusted device %s: %w", deviceID, err)
	}
	return nil
}
