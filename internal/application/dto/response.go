package dto

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/authcore/pkg/constants"
	"github.com/turtacn/authcore/pkg/errors"
)

// APIResponse is the uniform envelope for every JSON response.
type APIResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     *ErrorDTO   `json:"error,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// ErrorDTO carries the machine-readable failure.
type ErrorDTO struct {
	Code        string                 `json:"code"`
	Message     string                 `json:"message"`
	Description string                 `json:"description,omitempty"`
	Details     map[string]interface{} `json:"details,omitempty"`
}

func requestID(c *gin.Context) string {
	if id, ok := c.Value(string(constants.ContextKeyRequestID)).(string); ok {
		return id
	}
	return ""
}

// SendSuccess writes a success envelope.
func SendSuccess(c *gin.Context, status int, data interface{}) {
	c.JSON(status, APIResponse{
		Success:   true,
		Data:      data,
		RequestID: requestID(c),
		Timestamp: time.Now().Unix(),
	})
}

// SendError maps an error onto the envelope using its HTTP status and code.
// Untyped errors surface as a generic internal failure so internals never
// leak to clients.
func SendError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	dto := &ErrorDTO{
		Code:    string(constants.ErrCodeInternal),
		Message: "internal server error",
	}

	if authErr, ok := errors.AsAuthError(err); ok {
		status = authErr.HTTPStatus()
		dto.Code = string(authErr.Code())
		dto.Message = authErr.Error()
		dto.Description = authErr.Description()
		if md := authErr.Metadata(); len(md) > 0 {
			dto.Details = md
		}
	}

	c.AbortWithStatusJSON(status, APIResponse{
		Success:   false,
		Error:     dto,
		RequestID: requestID(c),
		Timestamp: time.Now().Unix(),
	})
}
