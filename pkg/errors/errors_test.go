package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorConstructors(t *testing.T) {
	notFound := NewNotFoundError("device")
	assert.Equal(t, ErrCodeNotFound, notFound.Code)
	assert.Equal(t, http.StatusNotFound, notFound.HTTPStatus)
	assert.Equal(t, "device not found", notFound.Message)

	denied := NewAdmissionDeniedError("connection already exists between these entities")
	assert.Equal(t, ErrCodeAdmissionDenied, denied.Code)
	assert.Equal(t, http.StatusBadRequest, denied.HTTPStatus)
	assert.Equal(t, "connection already exists between these entities", denied.Message)

	probe := NewProbeUnavailableError("speedtest-cli", errors.New("exit status 1"))
	assert.Equal(t, ErrCodeProbeUnavailable, probe.Code)
	assert.Equal(t, http.StatusServiceUnavailable, probe.HTTPStatus)
	assert.ErrorContains(t, probe, "exit status 1")
}

func TestGetAppError_UnwrapsChain(t *testing.T) {
	inner := NewNotFoundError("connection")
	wrapped := fmt.Errorf("handling request: %w", inner)

	got := GetAppError(wrapped)
	require.NotNil(t, got)
	assert.Equal(t, ErrCodeNotFound, got.Code)

	assert.Nil(t, GetAppError(errors.New("plain")))
	assert.Nil(t, GetAppError(nil))
}

func TestAppErrorWithContext(t *testing.T) {
	err := NewInternalError("boom").WithContext("device_id", "dev-1")
	assert.Equal(t, "dev-1", err.Context["device_id"])
}
