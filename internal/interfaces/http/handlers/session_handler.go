package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/authcore/internal/application/dto"
	"github.com/turtacn/authcore/internal/interfaces/http/middleware"
	"github.com/turtacn/authcore/pkg/errors"
)

// SessionHandler exposes the caller's own sessions.
type SessionHandler struct {
	auth AuthService
}

// NewSessionHandler creates the handler.
func NewSessionHandler(auth AuthService) *SessionHandler {
	return &SessionHandler{auth: auth}
}

// List returns the caller's live sessions, marking the current one.
func (h *SessionHandler) List(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		dto.SendError(c, errors.ErrUnauthorized("missing bearer token"))
		return
	}

	sessions, err := h.auth.ListSessions(c.Request.Context(), claims.UserID, claims.SessionID)
	if err != nil {
		dto.SendError(c, err)
		return
	}
	dto.SendSuccess(c, http.StatusOK, gin.H{"sessions": sessions})
}

// Terminate ends one of the caller's sessions.
func (h *SessionHandler) Terminate(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		dto.SendError(c, errors.ErrUnauthorized("missing bearer token"))
		return
	}

	sessionID := c.Param("id")
	if sessionID == "" {
		dto.SendError(c, errors.ErrInvalidRequest("session id required"))
		return
	}

	if err := h.auth.TerminateSession(c.Request.Context(), claims.UserID, sessionID); err != nil {
		dto.SendError(c, err)
		return
	}
	dto.SendSuccess(c, http.StatusOK, gin.H{"status": "terminated"})
}
