package errors

import (
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_HTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, NewNotFoundError("x").HTTPStatus())
	assert.Equal(t, http.StatusBadRequest, NewValidationError("x").HTTPStatus())
	assert.Equal(t, http.StatusConflict, NewConflictError("x").HTTPStatus())
	assert.Equal(t, http.StatusUnauthorized, NewUnauthorizedError("x").HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, NewInternalError("x", nil).HTTPStatus())
	assert.Equal(t, http.StatusBadGateway, NewExternalError("x", io.EOF).HTTPStatus())
}

func TestAs_FindsWrappedError(t *testing.T) {
	base := NewValidationError("City name is required")
	wrapped := fmt.Errorf("handler: %w", base)

	appErr, ok := As(wrapped)
	assert.True(t, ok)
	assert.Equal(t, "City name is required", appErr.Message)
	assert.True(t, IsType(wrapped, ErrorTypeValidation))
	assert.False(t, IsType(io.EOF, ErrorTypeValidation))
}

func TestAppError_Unwrap(t *testing.T) {
	err := NewExternalError("places lookup failed", io.ErrUnexpectedEOF)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Contains(t, err.Error(), "EXTERNAL: places lookup failed")
}
