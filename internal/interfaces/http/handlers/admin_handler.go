package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/authcore/internal/application/dto"
	"github.com/turtacn/authcore/internal/infrastructure/monitoring"
	"github.com/turtacn/authcore/pkg/constants"
	"github.com/turtacn/authcore/pkg/errors"
)

// AdminHandler exposes the administrative surface. Routing guards it with
// the admin role; handlers assume an already verified admin caller.
type AdminHandler struct {
	auth    AuthService
	metrics *monitoring.Metrics
}

// NewAdminHandler creates the handler.
func NewAdminHandler(auth AuthService, metrics *monitoring.Metrics) *AdminHandler {
	return &AdminHandler{auth: auth, metrics: metrics}
}

// ForceLogout terminates every session for a user.
func (h *AdminHandler) ForceLogout(c *gin.Context) {
	userID := c.Param("id")
	if userID == "" {
		dto.SendError(c, errors.ErrInvalidRequest("user id required"))
		return
	}

	resp, err := h.auth.ForceLogout(c.Request.Context(), userID)
	if err != nil {
		dto.SendError(c, err)
		return
	}

	h.metrics.SessionsEnded.WithLabelValues(constants.RevokeReasonAdmin).Add(float64(resp.Affected))
	dto.SendSuccess(c, http.StatusOK, resp)
}

// RevokeFamily force-revokes a refresh-token family.
func (h *AdminHandler) RevokeFamily(c *gin.Context) {
	familyID := c.Param("id")
	if familyID == "" {
		dto.SendError(c, errors.ErrInvalidRequest("family id required"))
		return
	}

	resp, err := h.auth.RevokeFamily(c.Request.Context(), familyID)
	if err != nil {
		dto.SendError(c, err)
		return
	}
	dto.SendSuccess(c, http.StatusOK, resp)
}

// RevokeDeviceTrust withdraws trust from a user's device. The owning user
// comes from the user_id query parameter.
func (h *AdminHandler) RevokeDeviceTrust(c *gin.Context) {
	deviceID := c.Param("id")
	userID := c.Query("user_id")
	if deviceID == "" || userID == "" {
		dto.SendError(c, errors.ErrInvalidRequest("device id and user_id required"))
		return
	}

	resp, err := h.auth.RevokeDeviceTrust(c.Request.Context(), userID, deviceID)
	if err != nil {
		dto.SendError(c, err)
		return
	}
	dto.SendSuccess(c, http.StatusOK, resp)
}
