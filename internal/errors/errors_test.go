package errors_test

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/flashdrill/internal/errors"
)

func TestAppError_Constructors(t *testing.T) {
	tests := []struct {
		name   string
		err    *errors.AppError
		code   string
		status int
	}{
		{"not found", errors.NewNotFoundError("group", 7), errors.ErrCodeNotFound, http.StatusNotFound},
		{"validation", errors.NewValidationError("name", "required"), errors.ErrCodeValidation, http.StatusBadRequest},
		{"bad request", errors.NewBadRequestError("bad"), errors.ErrCodeBadRequest, http.StatusBadRequest},
		{"conflict", errors.NewConflictError("group already exists"), errors.ErrCodeConflict, http.StatusConflict},
		{"unavailable", errors.NewUnavailableError("busy", nil), errors.ErrCodeUnavailable, http.StatusServiceUnavailable},
		{"internal", errors.NewInternalError(stderrors.New("boom")), errors.ErrCodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.status, tt.err.Status)
			assert.Contains(t, tt.err.Error(), tt.code)
		})
	}
}

func TestAppError_UnwrapAndAs(t *testing.T) {
	cause := stderrors.New("disk full")
	wrapped := fmt.Errorf("save cards: %w", errors.NewInternalError(cause))

	appErr, ok := errors.As(wrapped)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeInternal, appErr.Code)
	assert.ErrorIs(t, wrapped, cause)
	assert.Contains(t, appErr.Error(), "disk full")

	_, ok = errors.As(cause)
	assert.False(t, ok)
}
