package service

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/turtacn/authcore/internal/config"
	"github.com/turtacn/authcore/internal/domain/models"
	"github.com/turtacn/authcore/internal/domain/repository"
	"github.com/turtacn/authcore/pkg/constants"
	"github.com/turtacn/authcore/pkg/errors"
	"github.com/turtacn/authcore/pkg/logger"
)

// tokenDomainService implements TokenService on top of the family and
// blacklist repositories.
type tokenDomainService struct {
	cfg       config.TokenConfig
	crypto    CryptoService
	families  repository.FamilyRepository
	blacklist repository.BlacklistRepository
	audit     AuditService
	log       logger.Logger

	now func() time.Time
}

// NewTokenDomainService creates the token service.
func NewTokenDomainService(
	cfg config.TokenConfig,
	crypto CryptoService,
	families repository.FamilyRepository,
	blacklist repository.BlacklistRepository,
	audit AuditService,
	log logger.Logger,
) TokenService {
	return &tokenDomainService{
		cfg:       cfg,
		crypto:    crypto,
		families:  families,
		blacklist: blacklist,
		audit:     audit,
		log:       log.WithComponent("token_service"),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *tokenDomainService) Issue(ctx context.Context, userID string, roles []string, sessionID string, device models.DeviceContext) (*models.TokenPair, error) {
	refreshJTI := uuid.New().String()
	family := models.NewRefreshTokenFamily(userID, refreshJTI, device)

	if err := s.families.Create(ctx, family, s.cfg.RefreshTokenTTL); err != nil {
		return nil, errors.ErrStoreUnavailable(err)
	}

	pair, err := s.signPair(ctx, userID, roles, sessionID, family.FamilyID, refreshJTI)
	if err != nil {
		return nil, err
	}

	event := models.NewAuditEvent(constants.EventTypeTokenIssued)
	event.UserID = userID
	event.SessionID = sessionID
	event.FamilyID = family.FamilyID
	event.DeviceID = device.DeviceID
	event.IPAddress = device.IPAddress
	s.audit.Emit(ctx, event)

	s.log.Info(ctx, "token pair issued",
		logger.String("user_id", userID),
		logger.String("family_id", family.FamilyID),
	)
	return pair, nil
}

func (s *tokenDomainService) Verify(ctx context.Context, accessToken string) (*models.TokenClaims, error) {
	claims, err := s.crypto.Parse(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != constants.TokenTypeAccess {
		return nil, errors.ErrTokenMalformed("wrong token type")
	}

	revoked, err := s.blacklist.IsRevoked(ctx, claims.JTI())
	if err != nil {
		if s.cfg.FailOpen {
			s.log.Warn(ctx, "revocation set unreachable, failing open",
				logger.String("jti", claims.JTI()),
				logger.Err(err),
			)
			return claims, nil
		}
		return nil, errors.ErrStoreUnavailable(err)
	}
	if revoked {
		return nil, errors.ErrTokenRevoked(claims.JTI())
	}
	return claims, nil
}

func (s *tokenDomainService) Rotate(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	claims, err := s.crypto.Parse(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != constants.TokenTypeRefresh {
		return nil, errors.ErrTokenMalformed("wrong token type")
	}
	if claims.FamilyID == "" {
		return nil, errors.ErrTokenMalformed("missing family id")
	}

	now := s.now()
	newJTI := uuid.New().String()
	outcome, err := s.families.RotateCurrent(ctx, claims.FamilyID, claims.JTI(), newJTI, now)
	if err != nil {
		return nil, errors.ErrStoreUnavailable(err)
	}

	switch outcome {
	case repository.RotateOK:
		// The superseded token stays verifiable by signature alone, so it
		// must sit in the revocation set for its remaining life.
		if ttl := claims.RemainingLife(now); ttl > 0 {
			if err := s.blacklist.Revoke(ctx, claims.JTI(), constants.RevokeReasonRotated, ttl); err != nil {
				return nil, errors.ErrStoreUnavailable(err)
			}
		}

		pair, err := s.signPair(ctx, claims.UserID, claims.Roles, claims.SessionID, claims.FamilyID, newJTI)
		if err != nil {
			return nil, err
		}

		event := models.NewAuditEvent(constants.EventTypeTokenRotated)
		event.UserID = claims.UserID
		event.SessionID = claims.SessionID
		event.FamilyID = claims.FamilyID
		s.audit.Emit(ctx, event)
		return pair, nil

	case repository.RotateReuseDetected:
		// The store has already revoked the family inside the same atomic
		// step; this path only reports and audits.
		event := models.NewAuditEvent(constants.EventTypeReuseDetected)
		event.UserID = claims.UserID
		event.SessionID = claims.SessionID
		event.FamilyID = claims.FamilyID
		event.Detail = "superseded refresh token replayed, family revoked"
		s.audit.Emit(ctx, event)

		s.log.Warn(ctx, "refresh token reuse detected",
			logger.String("user_id", claims.UserID),
			logger.String("family_id", claims.FamilyID),
			logger.String("jti", claims.JTI()),
		)
		return nil, errors.ErrTokenReuseDetected(claims.FamilyID, claims.JTI())

	case repository.RotateFamilyRevoked:
		reason := constants.RevokeReasonReuseDetected
		if family, getErr := s.families.Get(ctx, claims.FamilyID); getErr == nil && family != nil && family.RevokeReason != "" {
			reason = family.RevokeReason
		}
		return nil, errors.ErrFamilyRevoked(claims.FamilyID, reason)

	default:
		// No family record: treat as revoked rather than minting into an
		// untracked chain.
		return nil, errors.ErrFamilyRevoked(claims.FamilyID, "family_not_found")
	}
}

func (s *tokenDomainService) RevokeToken(ctx context.Context, jti, reason string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := s.blacklist.Revoke(ctx, jti, reason, ttl); err != nil {
		return errors.ErrStoreUnavailable(err)
	}

	event := models.NewAuditEvent(constants.EventTypeTokenRevoked)
	event.Detail = reason
	s.audit.Emit(ctx, event)
	return nil
}

func (s *tokenDomainService) RevokeFamily(ctx context.Context, familyID, reason string) error {
	if err := s.families.Revoke(ctx, familyID, reason); err != nil {
		return errors.ErrStoreUnavailable(err)
	}

	event := models.NewAuditEvent(constants.EventTypeFamilyRevoked)
	event.FamilyID = familyID
	event.Detail = reason
	s.audit.Emit(ctx, event)

	s.log.Info(ctx, "refresh token family revoked",
		logger.String("family_id", familyID),
		logger.String("reason", reason),
	)
	return nil
}

// signPair mints and signs an access/refresh claim pair sharing the session
// and family references.
func (s *tokenDomainService) signPair(ctx context.Context, userID string, roles []string, sessionID, familyID, refreshJTI string) (*models.TokenPair, error) {
	now := s.now()

	accessClaims := s.newClaims(constants.TokenTypeAccess, uuid.New().String(), userID, sessionID, familyID, roles, now, s.cfg.AccessTokenTTL)
	accessToken, err := s.crypto.Sign(ctx, accessClaims)
	if err != nil {
		return nil, errors.ErrInternal("failed to sign access token").WithCause(err)
	}

	refreshClaims := s.newClaims(constants.TokenTypeRefresh, refreshJTI, userID, sessionID, familyID, roles, now, s.cfg.RefreshTokenTTL)
	refreshToken, err := s.crypto.Sign(ctx, refreshClaims)
	if err != nil {
		return nil, errors.ErrInternal("failed to sign refresh token").WithCause(err)
	}

	return &models.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		FamilyID:     familyID,
		ExpiresIn:    int64(s.cfg.AccessTokenTTL.Seconds()),
	}, nil
}

func (s *tokenDomainService) newClaims(tokenType constants.TokenType, jti, userID, sessionID, familyID string, roles []string, now time.Time, ttl time.Duration) *models.TokenClaims {
	return &models.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Issuer:    s.cfg.Issuer,
			Audience:  jwt.ClaimStrings{s.cfg.Audience},
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:    userID,
		SessionID: sessionID,
		FamilyID:  familyID,
		Roles:     roles,
		TokenType: tokenType,
	}
}
