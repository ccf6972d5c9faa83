package service

import (
	"context"

	"github.com/turtacn/authcore/internal/domain/models"
)

// TrustedDeviceService manages the registry of devices a user has marked as
// trusted, allowing secondary authentication to be skipped for the trust
// period.
type TrustedDeviceService interface {
	// Trust marks the device as trusted for the configured trust period and
	// returns the record including its opaque trust token.
	Trust(ctx context.Context, userID string, device models.DeviceContext) (*models.TrustedDevice, error)

	// IsTrusted reports whether the device holds unexpired, unrevoked trust
	// for the user and whether the presented trust token matches.
	IsTrusted(ctx context.Context, userID, deviceID, trustToken string) (bool, error)

	// Revoke withdraws trust from a device immediately.
	Revoke(ctx context.Context, userID, deviceID string) error
}
