package service

import (
	"context"
	"crypto/subtle"
	"time"

	"github.com/turtacn/authcore/internal/config"
	"github.com/turtacn/authcore/internal/domain/models"
	"github.com/turtacn/authcore/internal/domain/repository"
	"github.com/turtacn/authcore/pkg/constants"
	"github.com/turtacn/authcore/pkg/errors"
	"github.com/turtacn/authcore/pkg/logger"
)

type trustedDeviceDomainService struct {
	cfg     config.DeviceConfig
	devices repository.TrustedDeviceRepository
	audit   AuditService
	log     logger.Logger

	now func() time.Time
}

// NewTrustedDeviceDomainService creates the trusted-device service.
func NewTrustedDeviceDomainService(
	cfg config.DeviceConfig,
	devices repository.TrustedDeviceRepository,
	audit AuditService,
	log logger.Logger,
) TrustedDeviceService {
	return &trustedDeviceDomainService{
		cfg:     cfg,
		devices: devices,
		audit:   audit,
		log:     log.WithComponent("trusted_device_service"),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *trustedDeviceDomainService) Trust(ctx context.Context, userID string, device models.DeviceContext) (*models.TrustedDevice, error) {
	if device.DeviceID == "" {
		return nil, errors.ErrInvalidRequest("device_id is required")
	}

	trustPeriod := s.cfg.TrustPeriod
	if trustPeriod <= 0 {
		trustPeriod = constants.DeviceTrustPeriodDefault
	}

	trusted := models.NewTrustedDevice(userID, device, trustPeriod)
	if err := s.devices.Save(ctx, trusted, trustPeriod); err != nil {
		return nil, errors.ErrStoreUnavailable(err)
	}

	event := models.NewAuditEvent(constants.EventTypeDeviceTrusted)
	event.UserID = userID
	event.DeviceID = device.DeviceID
	event.IPAddress = device.IPAddress
	s.audit.Emit(ctx, event)

	s.log.Info(ctx, "device trusted",
		logger.String("user_id", userID),
		logger.String("device_id", device.DeviceID),
		logger.Time("trusted_until", trusted.TrustedUntil),
	)
	return trusted, nil
}

func (s *trustedDeviceDomainService) IsTrusted(ctx context.Context, userID, deviceID, trustToken string) (bool, error) {
	if deviceID == "" || trustToken == "" {
		return false, nil
	}

	trusted, err := s.devices.Get(ctx, deviceID)
	if err != nil {
		return false, errors.ErrStoreUnavailable(err)
	}
	if trusted == nil || trusted.UserID != userID || !trusted.IsTrusted(s.now()) {
		return false, nil
	}
	if subtle.ConstantTimeCompare([]byte(trusted.TrustToken), []byte(trustToken)) != 1 {
		return false, nil
	}

	trusted.RecordUse()
	if err := s.devices.Save(ctx, trusted, trusted.TrustedUntil.Sub(s.now())); err != nil {
		// Usage accounting is best effort.
		s.log.Warn(ctx, "failed to record trusted device use",
			logger.String("device_id", deviceID),
			logger.Err(err),
		)
	}
	return true, nil
}

func (s *trustedDeviceDomainService) Revoke(ctx context.Context, userID, deviceID string) error {
	trusted, err := s.devices.Get(ctx, deviceID)
	if err != nil {
		return errors.ErrStoreUnavailable(err)
	}
	if trusted == nil || trusted.UserID != userID {
		return errors.ErrInvalidRequest("device is not trusted for this user")
	}

	if err := s.devices.Revoke(ctx, deviceID); err != nil {
		return errors.ErrStoreUnavailable(err)
	}

	event := models.NewAuditEvent(constants.EventTypeDeviceTrustRevoked)
	event.UserID = userID
	event.DeviceID = deviceID
	s.audit.Emit(ctx, event)

	s.log.Info(ctx, "device trust revoked",
		logger.String("user_id", userID),
		logger.String("device_id", deviceID),
	)
	return nil
}
