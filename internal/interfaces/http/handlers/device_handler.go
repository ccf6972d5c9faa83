package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/authcore/internal/application/dto"
	"github.com/turtacn/authcore/internal/interfaces/http/middleware"
	"github.com/turtacn/authcore/pkg/errors"
)

// DeviceHandler manages the caller's trusted devices.
type DeviceHandler struct {
	auth AuthService
}

// NewDeviceHandler creates the handler.
func NewDeviceHandler(auth AuthService) *DeviceHandler {
	return &DeviceHandler{auth: auth}
}

// Trust registers the calling device as trusted and returns the opaque
// trust token. The token is shown exactly once.
func (h *DeviceHandler) Trust(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		dto.SendError(c, errors.ErrUnauthorized("missing bearer token"))
		return
	}

	var req dto.TrustDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.SendError(c, errors.ErrInvalidRequest(err.Error()))
		return
	}

	device := deviceFromRequest(c, req.DeviceID, req.Fingerprint)
	resp, err := h.auth.TrustDevice(c.Request.Context(), claims.UserID, req, device)
	if err != nil {
		dto.SendError(c, err)
		return
	}
	dto.SendSuccess(c, http.StatusCreated, resp)
}

// TrustStatus reports whether the named device is trusted for the caller.
// The trust token comes from the X-Trust-Token header.
func (h *DeviceHandler) TrustStatus(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		dto.SendError(c, errors.ErrUnauthorized("missing bearer token"))
		return
	}

	deviceID := c.Param("id")
	if deviceID == "" {
		dto.SendError(c, errors.ErrInvalidRequest("device id required"))
		return
	}

	resp, err := h.auth.DeviceTrusted(c.Request.Context(), claims.UserID, deviceID, c.GetHeader("X-Trust-Token"))
	if err != nil {
		dto.SendError(c, err)
		return
	}
	dto.SendSuccess(c, http.StatusOK, resp)
}
