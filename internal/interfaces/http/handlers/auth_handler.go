// Package handlers implements the HTTP handlers for the security core.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/authcore/internal/application/dto"
	"github.com/turtacn/authcore/internal/config"
	"github.com/turtacn/authcore/internal/domain/models"
	"github.com/turtacn/authcore/internal/infrastructure/monitoring"
	"github.com/turtacn/authcore/internal/interfaces/http/middleware"
	"github.com/turtacn/authcore/pkg/constants"
	"github.com/turtacn/authcore/pkg/errors"
)

// AuthService is the application surface the handlers drive.
type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest, device models.DeviceContext) (*dto.LoginResponse, string, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.RefreshResponse, string, error)
	Logout(ctx context.Context, claims *models.TokenClaims) error
	ListSessions(ctx context.Context, userID, currentSessionID string) ([]dto.SessionDTO, error)
	TerminateSession(ctx context.Context, userID, sessionID string) error
	TrustDevice(ctx context.Context, userID string, req dto.TrustDeviceRequest, device models.DeviceContext) (*dto.TrustDeviceResponse, error)
	DeviceTrusted(ctx context.Context, userID, deviceID, trustToken string) (*dto.TrustStatusResponse, error)
	ForceLogout(ctx context.Context, userID string) (*dto.AdminActionResponse, error)
	RevokeFamily(ctx context.Context, familyID string) (*dto.AdminActionResponse, error)
	RevokeDeviceTrust(ctx context.Context, userID, deviceID string) (*dto.AdminActionResponse, error)
}

// AuthHandler handles login, refresh and logout. The refresh token rides an
// HttpOnly SameSite=Strict cookie scoped to the auth endpoints; it never
// appears in a response body.
type AuthHandler struct {
	auth       AuthService
	metrics    *monitoring.Metrics
	refreshTTL time.Duration
}

// NewAuthHandler creates the handler.
func NewAuthHandler(auth AuthService, metrics *monitoring.Metrics, cfg config.TokenConfig) *AuthHandler {
	return &AuthHandler{
		auth:       auth,
		metrics:    metrics,
		refreshTTL: cfg.RefreshTokenTTL,
	}
}

func deviceFromRequest(c *gin.Context, deviceID, fingerprint string) models.DeviceContext {
	return models.DeviceContext{
		DeviceID:    deviceID,
		Fingerprint: fingerprint,
		IPAddress:   c.ClientIP(),
		UserAgent:   c.Request.UserAgent(),
	}
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(constants.RefreshCookieName, token, maxAge, constants.RefreshCookiePath, "", true, true)
}

// Login mints a session and token family for an externally authenticated
// user.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.SendError(c, errors.ErrInvalidRequest(err.Error()))
		return
	}

	device := deviceFromRequest(c, req.DeviceID, req.Fingerprint)
	resp, refreshToken, err := h.auth.Login(c.Request.Context(), req, device)
	if err != nil {
		dto.SendError(c, err)
		return
	}

	h.metrics.TokensIssued.WithLabelValues("login").Inc()
	h.metrics.SessionsCreated.Inc()

	h.setRefreshCookie(c, refreshToken, int(h.refreshTTL.Seconds()))
	dto.SendSuccess(c, http.StatusOK, resp)
}

// Refresh rotates the refresh token from the cookie and rewrites it.
func (h *AuthHandler) Refresh(c *gin.Context) {
	refreshToken, err := c.Cookie(constants.RefreshCookieName)
	if err != nil || refreshToken == "" {
		dto.SendError(c, errors.ErrUnauthorized("missing refresh cookie"))
		return
	}

	resp, newToken, err := h.auth.Refresh(c.Request.Context(), refreshToken)
	if err != nil {
		if errors.HasCode(err, constants.ErrCodeTokenReuseDetected) {
			h.metrics.ReuseDetections.Inc()
		}
		h.metrics.TokenRotations.WithLabelValues("rejected").Inc()
		// A rejected refresh token is dead either way; drop the cookie so
		// the client falls back to login.
		h.setRefreshCookie(c, "", -1)
		dto.SendError(c, err)
		return
	}

	h.metrics.TokenRotations.WithLabelValues("ok").Inc()
	h.setRefreshCookie(c, newToken, int(h.refreshTTL.Seconds()))
	dto.SendSuccess(c, http.StatusOK, resp)
}

// Logout revokes the caller's token, family and session, and clears the
// refresh cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		dto.SendError(c, errors.ErrUnauthorized("missing bearer token"))
		return
	}

	if err := h.auth.Logout(c.Request.Context(), claims); err != nil {
		dto.SendError(c, err)
		return
	}

	h.metrics.SessionsEnded.WithLabelValues(constants.RevokeReasonLogout).Inc()
	h.setRefreshCookie(c, "", -1)
	dto.SendSuccess(c, http.StatusOK, gin.H{"status": "logged_out"})
}
