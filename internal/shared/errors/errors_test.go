package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError(t *testing.T) {
	t.Run("Error returns message", func(t *testing.T) {
		err := &AppError{
			Code:    "TEST_ERROR",
			Message: "test error message",
		}
		assert.Equal(t, "test error message", err.Error())
	})

	t.Run("Error includes wrapped error", func(t *testing.T) {
		wrapped := errors.New("wrapped error")
		err := &AppError{
			Code:    "TEST_ERROR",
			Message: "test error message",
			Err:     wrapped,
		}
		assert.Contains(t, err.Error(), "test error message")
		assert.Contains(t, err.Error(), "wrapped error")
	})

	t.Run("Unwrap returns wrapped error", func(t *testing.T) {
		wrapped := errors.New("wrapped error")
		err := &AppError{
			Code:    "TEST_ERROR",
			Message: "test message",
			Err:     wrapped,
		}
		assert.Equal(t, wrapped, err.Unwrap())
	})
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		code       string
		statusCode int
		sentinel   error
	}{
		{"NotFound", NotFound("crew"), "NOT_FOUND", http.StatusNotFound, ErrNotFound},
		{"Conflict", Conflict("membership already exists"), "CONFLICT", http.StatusConflict, ErrConflict},
		{"Forbidden", Forbidden(""), "FORBIDDEN", http.StatusForbidden, ErrForbidden},
		{"InvalidState", InvalidState("membership is not pending"), "INVALID_STATE", http.StatusConflict, ErrInvalidState},
		{"ValidationError", ValidationError("owner_type mismatch"), "VALIDATION_ERROR", http.StatusUnprocessableEntity, ErrBadRequest},
		{"Unauthorized", Unauthorized(""), "UNAUTHORIZED", http.StatusUnauthorized, ErrUnauthorized},
		{"RateLimited", RateLimited(""), "RATE_LIMITED", http.StatusTooManyRequests, ErrRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.statusCode, tt.err.StatusCode)
			assert.True(t, errors.Is(tt.err, tt.sentinel))
		})
	}
}

func TestNotFoundMessage(t *testing.T) {
	err := NotFound("membership")
	assert.Equal(t, "membership not found", err.Message)
}

func TestGetStatusCode(t *testing.T) {
	tests := []struct {
		err      error
		expected int
	}{
		{NotFound("crew"), http.StatusNotFound},
		{fmt.Errorf("wrapped: %w", ErrConflict), http.StatusConflict},
		{fmt.Errorf("wrapped: %w", ErrInvalidState), http.StatusConflict},
		{fmt.Errorf("wrapped: %w", ErrForbidden), http.StatusForbidden},
		{errors.New("plain"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, GetStatusCode(tt.err))
	}
}

func TestToResponse(t *testing.T) {
	err := Conflict("user is already a member")
	resp := err.ToResponse()
	assert.Equal(t, "CONFLICT", resp.Error.Code)
	assert.Equal(t, "user is already a member", resp.Error.Message)
}
