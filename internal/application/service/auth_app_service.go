// Package service orchestrates the domain services behind the HTTP surface.
package service

import (
	"context"
	"time"

	"github.com/turtacn/authcore/internal/application/dto"
	"github.com/turtacn/authcore/internal/domain/models"
	"github.com/turtacn/authcore/internal/domain/service"
	"github.com/turtacn/authcore/pkg/constants"
	"github.com/turtacn/authcore/pkg/errors"
	"github.com/turtacn/authcore/pkg/logger"
)

// timeNow is overridable in tests.
var timeNow = func() time.Time { return time.Now().UTC() }

// AuthAppService ties token, session and device services into the login,
// refresh and logout flows. Credential verification happens upstream; callers
// of Login arrive already authenticated.
type AuthAppService struct {
	tokens   service.TokenService
	sessions service.SessionService
	devices  service.TrustedDeviceService
	crypto   service.CryptoService
	log      logger.Logger
}

// NewAuthAppService creates the application service.
func NewAuthAppService(
	tokens service.TokenService,
	sessions service.SessionService,
	devices service.TrustedDeviceService,
	crypto service.CryptoService,
	log logger.Logger,
) *AuthAppService {
	return &AuthAppService{
		tokens:   tokens,
		sessions: sessions,
		devices:  devices,
		crypto:   crypto,
		log:      log.WithComponent("auth_app"),
	}
}

// Login creates the session and token family for an authenticated user. The
// returned refresh token is handed to the transport layer for cookie
// delivery, never placed in the response body.
func (s *AuthAppService) Login(ctx context.Context, req dto.LoginRequest, device models.DeviceContext) (*dto.LoginResponse, string, error) {
	trusted := false
	if req.TrustToken != "" && device.DeviceID != "" {
		ok, err := s.devices.IsTrusted(ctx, req.UserID, device.DeviceID, req.TrustToken)
		if err != nil {
			// Trust lookup failing must not block login; the caller just
			// keeps their second factor.
			s.log.Warn(ctx, "trusted device lookup failed",
				logger.String("user_id", req.UserID),
				logger.Err(err),
			)
		} else {
			trusted = ok
		}
	}

	mfaSatisfied := req.MFAVerified || trusted

	roles := req.Roles
	if len(roles) == 0 {
		roles = []string{constants.RoleUser}
	}

	session, err := s.sessions.Create(ctx, req.UserID, device, models.SessionAttributes{
		MFAVerified:   mfaSatisfied,
		TrustedDevice: trusted,
	})
	if err != nil {
		return nil, "", err
	}

	pair, err := s.tokens.Issue(ctx, req.UserID, roles, session.SessionID, device)
	if err != nil {
		// Roll the session back so a half-created login leaves no state.
		if termErr := s.sessions.Terminate(ctx, session.SessionID, constants.RevokeReasonAdmin); termErr != nil {
			s.log.Warn(ctx, "failed to roll back session after issue failure",
				logger.String("session_id", session.SessionID),
				logger.Err(termErr),
			)
		}
		return nil, "", err
	}

	resp := &dto.LoginResponse{
		AccessToken:   pair.AccessToken,
		TokenType:     "Bearer",
		ExpiresIn:     pair.ExpiresIn,
		SessionID:     session.SessionID,
		FamilyID:      pair.FamilyID,
		MFARequired:   !mfaSatisfied,
		DeviceTrusted: trusted,
	}

	if req.TrustDevice && mfaSatisfied && device.DeviceID != "" {
		grant, err := s.devices.Trust(ctx, req.UserID, device)
		if err != nil {
			s.log.Warn(ctx, "failed to register trusted device",
				logger.String("user_id", req.UserID),
				logger.String("device_id", device.DeviceID),
				logger.Err(err),
			)
		} else {
			resp.TrustToken = grant.TrustToken
			resp.DeviceTrusted = true
		}
	}

	return resp, pair.RefreshToken, nil
}

// Refresh rotates the refresh token. The session referenced by the token
// must still be live; a terminated or expired session revokes the family.
func (s *AuthAppService) Refresh(ctx context.Context, refreshToken string) (*dto.RefreshResponse, string, error) {
	claims, err := s.crypto.Parse(ctx, refreshToken)
	if err != nil {
		return nil, "", err
	}

	if claims.SessionID != "" {
		if _, err := s.sessions.Touch(ctx, claims.SessionID); err != nil {
			if errors.IsRecoverableByReauth(err) {
				// Tokens must not outlive their session.
				if revErr := s.tokens.RevokeFamily(ctx, claims.FamilyID, constants.RevokeReasonLogout); revErr != nil {
					s.log.Warn(ctx, "failed to revoke family for dead session",
						logger.String("family_id", claims.FamilyID),
						logger.Err(revErr),
					)
				}
			}
			return nil, "", err
		}
	}

	pair, err := s.tokens.Rotate(ctx, refreshToken)
	if err != nil {
		return nil, "", err
	}

	resp := &dto.RefreshResponse{
		AccessToken: pair.AccessToken,
		TokenType:   "Bearer",
		ExpiresIn:   pair.ExpiresIn,
		FamilyID:    pair.FamilyID,
	}
	return resp, pair.RefreshToken, nil
}

// Logout revokes the caller's access token, refresh family and session.
func (s *AuthAppService) Logout(ctx context.Context, claims *models.TokenClaims) error {
	if ttl := claims.RemainingLife(timeNow()); ttl > 0 {
		if err := s.tokens.RevokeToken(ctx, claims.JTI(), constants.RevokeReasonLogout, ttl); err != nil {
			return err
		}
	}

	if claims.FamilyID != "" {
		if err := s.tokens.RevokeFamily(ctx, claims.FamilyID, constants.RevokeReasonLogout); err != nil {
			return err
		}
	}

	if claims.SessionID != "" {
		err := s.sessions.Terminate(ctx, claims.SessionID, constants.RevokeReasonLogout)
		if err != nil && !errors.HasCode(err, constants.ErrCodeSessionNotFound) {
			return err
		}
	}
	return nil
}

// ListSessions returns the caller's live sessions.
func (s *AuthAppService) ListSessions(ctx context.Context, userID, currentSessionID string) ([]dto.SessionDTO, error) {
	sessions, err := s.sessions.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]dto.SessionDTO, 0, len(sessions))
	for _, session := range sessions {
		out = append(out, dto.NewSessionDTO(session, currentSessionID))
	}
	return out, nil
}

// TerminateSession ends one of the caller's sessions. Ownership is enforced;
// terminating another user's session requires the admin surface.
func (s *AuthAppService) TerminateSession(ctx context.Context, userID, sessionID string) error {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if session.UserID != userID {
		return errors.ErrUnauthorized("session belongs to another user")
	}
	return s.sessions.Terminate(ctx, sessionID, constants.RevokeReasonLogout)
}

// TrustDevice registers the caller's device as trusted.
func (s *AuthAppService) TrustDevice(ctx context.Context, userID string, req dto.TrustDeviceRequest, device models.DeviceContext) (*dto.TrustDeviceResponse, error) {
	device.DeviceID = req.DeviceID
	if req.Fingerprint != "" {
		device.Fingerprint = req.Fingerprint
	}

	grant, err := s.devices.Trust(ctx, userID, device)
	if err != nil {
		return nil, err
	}
	return &dto.TrustDeviceResponse{
		DeviceID:     grant.DeviceID,
		TrustToken:   grant.TrustToken,
		TrustedUntil: grant.TrustedUntil,
	}, nil
}

// DeviceTrusted reports trust status for the caller's device.
func (s *AuthAppService) DeviceTrusted(ctx context.Context, userID, deviceID, trustToken string) (*dto.TrustStatusResponse, error) {
	trusted, err := s.devices.IsTrusted(ctx, userID, deviceID, trustToken)
	if err != nil {
		return nil, err
	}
	return &dto.TrustStatusResponse{DeviceID: deviceID, Trusted: trusted}, nil
}

// ForceLogout terminates every session for a user. Admin only.
func (s *AuthAppService) ForceLogout(ctx context.Context, userID string) (*dto.AdminActionResponse, error) {
	n, err := s.sessions.TerminateAllForUser(ctx, userID, constants.RevokeReasonAdmin)
	if err != nil {
		return nil, err
	}
	return &dto.AdminActionResponse{Affected: n, Detail: "sessions terminated"}, nil
}

// RevokeFamily force-revokes a refresh-token family. Admin only.
func (s *AuthAppService) RevokeFamily(ctx context.Context, familyID string) (*dto.AdminActionResponse, error) {
	if err := s.tokens.RevokeFamily(ctx, familyID, constants.RevokeReasonAdmin); err != nil {
		return nil, err
	}
	return &dto.AdminActionResponse{Affected: 1, Detail: "family revoked"}, nil
}

// RevokeDeviceTrust withdraws trust from a user's device. Admin only.
func (s *AuthAppService) RevokeDeviceTrust(ctx context.Context, userID, deviceID string) (*dto.AdminActionResponse, error) {
	if err := s.devices.Revoke(ctx, userID, deviceID); err != nil {
		return nil, err
	}
	return &dto.AdminActionResponse{Affected: 1, Detail: "device trust revoked"}, nil
}
