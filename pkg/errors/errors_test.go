package errors_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/turtacn/authcore/pkg/constants"
	"github.com/turtacn/authcore/pkg/errors"
)

func TestErrorCodes(t *testing.T) {
	cases := []struct {
		err    errors.AuthError
		code   constants.ErrorCode
		status int
	}{
		{errors.ErrTokenExpired("access_token"), constants.ErrCodeTokenExpired, http.StatusUnauthorized},
		{errors.ErrTokenMalformed("bad signature"), constants.ErrCodeTokenMalformed, http.StatusUnauthorized},
		{errors.ErrTokenRevoked("jti-1"), constants.ErrCodeTokenRevoked, http.StatusUnauthorized},
		{errors.ErrFamilyRevoked("fam-1", constants.RevokeReasonReuseDetected), constants.ErrCodeFamilyRevoked, http.StatusUnauthorized},
		{errors.ErrTokenReuseDetected("fam-1", "jti-1"), constants.ErrCodeTokenReuseDetected, http.StatusUnauthorized},
		{errors.ErrSessionNotFound("sess-1"), constants.ErrCodeSessionNotFound, http.StatusUnauthorized},
		{errors.ErrSessionExpired("sess-1", "idle"), constants.ErrCodeSessionExpired, http.StatusUnauthorized},
		{errors.ErrStoreUnavailable(nil), constants.ErrCodeStoreUnavailable, http.StatusServiceUnavailable},
		{errors.ErrRateLimitExceeded("login", 5, 42*time.Second), constants.ErrCodeRateLimitExceeded, http.StatusTooManyRequests},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.code, tc.err.Code(), tc.err.Error())
		assert.Equal(t, tc.status, tc.err.HTTPStatus(), tc.err.Error())
	}
}

func TestSecurityEventClassification(t *testing.T) {
	assert.True(t, errors.IsSecurityEvent(errors.ErrTokenReuseDetected("f", "j")))
	assert.True(t, errors.IsSecurityEvent(errors.ErrFamilyRevoked("f", "r")))
	assert.False(t, errors.IsSecurityEvent(errors.ErrTokenExpired("access_token")))
	assert.False(t, errors.IsSecurityEvent(fmt.Errorf("plain")))
}

func TestCauseChain(t *testing.T) {
	cause := fmt.Errorf("dial tcp: connection refused")
	err := errors.ErrStoreUnavailable(cause)

	assert.ErrorIs(t, err, cause)
	assert.True(t, errors.IsStoreUnavailable(err))
	assert.True(t, errors.IsStoreUnavailable(fmt.Errorf("wrapped: %w", err)))
}

func TestRetryAfterMetadata(t *testing.T) {
	err := errors.ErrRateLimitExceeded("login", 5, 59*time.Second)
	assert.Equal(t, 60, err.Metadata()["retry_after_seconds"])
	assert.Equal(t, "login", err.Metadata()["operation"])
}

func TestUntypedErrorDefaults(t *testing.T) {
	err := fmt.Errorf("boom")
	assert.Equal(t, constants.ErrCodeInternal, errors.CodeOf(err))
	assert.Equal(t, http.StatusInternalServerError, errors.HTTPStatusOf(err))
	assert.False(t, errors.IsRecoverableByReauth(err))
}
