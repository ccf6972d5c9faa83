package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/turtacn/authcore/internal/application/dto"
	"github.com/turtacn/authcore/pkg/errors"
)

func TestSessionList(t *testing.T) {
	auth := new(MockAuthService)
	auth.On("ListSessions", mock.Anything, "user-1", "sess-1").Return([]dto.SessionDTO{
		{SessionID: "sess-1", Current: true},
		{SessionID: "sess-2"},
	}, nil)

	h := NewSessionHandler(auth)
	r := gin.New()
	r.GET("/sessions", authedContext(sessionClaims()), h.List)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sessions", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "sess-2")
}

func TestSessionTerminate(t *testing.T) {
	auth := new(MockAuthService)
	auth.On("TerminateSession", mock.Anything, "user-1", "sess-2").Return(nil)

	h := NewSessionHandler(auth)
	r := gin.New()
	r.DELETE("/sessions/:id", authedContext(sessionClaims()), h.Terminate)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/sessions/sess-2", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	auth.AssertExpectations(t)
}

func TestSessionTerminate_OtherUsersSession(t *testing.T) {
	auth := new(MockAuthService)
	auth.On("TerminateSession", mock.Anything, "user-1", "sess-9").
		Return(errors.ErrUnauthorized("session belongs to another user"))

	h := NewSessionHandler(auth)
	r := gin.New()
	r.DELETE("/sessions/:id", authedContext(sessionClaims()), h.Terminate)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/sessions/sess-9", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDeviceTrust(t *testing.T) {
	auth := new(MockAuthService)
	auth.On("TrustDevice", mock.Anything, "user-1", mock.Anything, mock.Anything).Return(&dto.TrustDeviceResponse{
		DeviceID:     "dev-1",
		TrustToken:   "opaque-token",
		TrustedUntil: time.Now().Add(30 * 24 * time.Hour),
	}, nil)

	h := NewDeviceHandler(auth)
	r := gin.New()
	r.POST("/devices/trust", authedContext(sessionClaims()), h.Trust)

	req := httptest.NewRequest(http.MethodPost, "/devices/trust",
		jsonBody(t, dto.TrustDeviceRequest{DeviceID: "dev-1"}))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "opaque-token")
}

func TestDeviceTrustStatus(t *testing.T) {
	auth := new(MockAuthService)
	auth.On("DeviceTrusted", mock.Anything, "user-1", "dev-1", "token-abc").
		Return(&dto.TrustStatusResponse{DeviceID: "dev-1", Trusted: true}, nil)

	h := NewDeviceHandler(auth)
	r := gin.New()
	r.GET("/devices/:id/trusted", authedContext(sessionClaims()), h.TrustStatus)

	req := httptest.NewRequest(http.MethodGet, "/devices/dev-1/trusted", nil)
	req.Header.Set("X-Trust-Token", "token-abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"trusted":true`)
}

func TestAdminForceLogout(t *testing.T) {
	auth := new(MockAuthService)
	auth.On("ForceLogout", mock.Anything, "user-9").Return(&dto.AdminActionResponse{Affected: 3}, nil)

	h := NewAdminHandler(auth, testMetrics())
	r := gin.New()
	r.POST("/admin/users/:id/logout", h.ForceLogout)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/admin/users/user-9/logout", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"affected":3`)
}

func TestAdminRevokeFamily(t *testing.T) {
	auth := new(MockAuthService)
	auth.On("RevokeFamily", mock.Anything, "fam-9").Return(&dto.AdminActionResponse{Affected: 1}, nil)

	h := NewAdminHandler(auth, testMetrics())
	r := gin.New()
	r.POST("/admin/families/:id/revoke", h.RevokeFamily)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/admin/families/fam-9/revoke", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	auth.AssertExpectations(t)
}

func TestAdminRevokeDeviceTrust_RequiresUserID(t *testing.T) {
	auth := new(MockAuthService)

	h := NewAdminHandler(auth, testMetrics())
	r := gin.New()
	r.POST("/admin/devices/:id/revoke", h.RevokeDeviceTrust)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/admin/devices/dev-1/revoke", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	auth.AssertNotCalled(t, "RevokeDeviceTrust", mock.Anything, mock.Anything, mock.Anything)
}

type fakePinger struct {
	err error
}

func (f *fakePinger) Ping(ctx context.Context) error { return f.err }

func TestHealthEndpoints(t *testing.T) {
	h := NewHealthHandler(&fakePinger{})
	r := gin.New()
	r.GET("/health/live", h.Live)
	r.GET("/health/ready", h.Ready)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHealthReady_StoreDown(t *testing.T) {
	h := NewHealthHandler(&fakePinger{err: context.DeadlineExceeded})
	r := gin.New()
	r.GET("/health/ready", h.Ready)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
