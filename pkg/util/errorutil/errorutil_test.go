package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrappedErrorsMatchByCode(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("create session: %w", NewBackendError(cause))

	assert.ErrorIs(t, err, ErrBackend)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrHashFailed)

	domainErr := ToDomainError(err)
	require.NotNil(t, domainErr)
	assert.Equal(t, CodeBackend, domainErr.Code)
	assert.Equal(t, http.StatusServiceUnavailable, domainErr.HTTPStatus)
	assert.Contains(t, domainErr.Error(), "connection refused")
}

func TestWrapLeavesSentinelUntouched(t *testing.T) {
	_ = Wrap(ErrTokenIsExpired, errors.New("boom"))
	assert.Nil(t, ErrTokenIsExpired.Err)
	assert.Equal(t, "session is expired", ErrTokenIsExpired.Error())
}

func TestToDomainError(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))

	tests := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{"sentinel", ErrTokenNotExist, CodeTokenNotExist, http.StatusUnauthorized},
		{"validation", NewValidationError("bad", map[string]any{"field": "x"}), CodeValidationFailed, http.StatusBadRequest},
		{"fiber bad request", fiber.NewError(http.StatusBadRequest, "invalid payload"), CodeValidationFailed, http.StatusBadRequest},
		{"fiber forbidden", fiber.NewError(http.StatusForbidden, "nope"), CodeForbidden, http.StatusForbidden},
		{"fiber bad gateway", fiber.NewError(http.StatusBadGateway, "upstream"), CodeInternal, http.StatusBadGateway},
		{"plain error", errors.New("oops"), CodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToDomainError(tt.err)
			require.NotNil(t, got)
			assert.Equal(t, tt.code, got.Code)
			assert.Equal(t, tt.status, got.HTTPStatus)
		})
	}
}
