package crypto

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/turtacn/authcore/internal/domain/models"
	"github.com/turtacn/authcore/internal/domain/service"
	"github.com/turtacn/authcore/pkg/errors"
	"github.com/turtacn/authcore/pkg/logger"
)

// JWTManager implements service.CryptoService with HMAC-SHA256. Symmetric
// signing keeps verification local to the service; no key distribution is
// needed because no external party verifies tokens.
type JWTManager struct {
	keys   KeySource
	issuer string
	log    logger.Logger
}

// NewJWTManager creates the manager.
func NewJWTManager(keys KeySource, issuer string, log logger.Logger) service.CryptoService {
	return &JWTManager{
		keys:   keys,
		issuer: issuer,
		log:    log.WithComponent("jwt_manager"),
	}
}

func (m *JWTManager) Sign(ctx context.Context, claims *models.TokenClaims) (string, error) {
	key, err := m.keys.SigningKey(ctx)
	if err != nil {
		return "", fmt.Errorf("load signing key: %w", err)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse validates the signature and the registered time claims, mapping jwt
// failures onto the domain error codes.
func (m *JWTManager) Parse(ctx context.Context, tokenString string) (*models.TokenClaims, error) {
	key, err := m.keys.SigningKey(ctx)
	if err != nil {
		return nil, errors.ErrInternal("load signing key").WithCause(err)
	}

	claims := &models.TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return key, nil
	})
	if err != nil {
		return nil, m.mapParseError(err, claims)
	}
	if !token.Valid {
		return nil, errors.ErrTokenMalformed("token is invalid")
	}
	if m.issuer != "" && claims.Issuer != m.issuer {
		return nil, errors.ErrTokenMalformed("unexpected issuer")
	}
	return claims, nil
}

func (m *JWTManager) mapParseError(err error, claims *models.TokenClaims) error {
	switch {
	case stderrors.Is(err, jwt.ErrTokenExpired):
		return errors.ErrTokenExpired(string(claims.TokenType)).WithCause(err)
	case stderrors.Is(err, jwt.ErrTokenNotValidYet):
		return errors.ErrTokenMalformed("token not valid yet").WithCause(err)
	case stderrors.Is(err, jwt.ErrTokenSignatureInvalid):
		return errors.ErrTokenMalformed("signature verification failed").WithCause(err)
	default:
		return errors.ErrTokenMalformed(err.Error()).WithCause(err)
	}
}
