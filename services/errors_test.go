package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewDomainError(t *testing.T) {
	baseErr := errors.New("base error")
	domainErr := NewDomainError(ErrorTypeNotFound, "resource not found", baseErr)

	assert.Equal(t, ErrorTypeNotFound, domainErr.Type)
	assert.Equal(t, "resource not found", domainErr.Message)
	assert.Equal(t, baseErr, domainErr.Err)
	assert.NotNil(t, domainErr.Details)
}

func TestDomainError_Error(t *testing.T) {
	tests := []struct {
		name    string
		err     *DomainError
		wantMsg string
	}{
		{
			name: "error with wrapped error",
			err: &DomainError{
				Type:    ErrorTypeInternal,
				Message: MsgInternalServerError,
				Err:     errors.New("db error"),
			},
			wantMsg: "internal: Internal server error (db error)",
		},
		{
			name: "error without wrapped error",
			err: &DomainError{
				Type:    ErrorTypeValidation,
				Message: MsgAllFieldsRequired,
			},
			wantMsg: "validation: All fields are required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMsg, tt.err.Error())
		})
	}
}

func TestDomainError_Unwrap(t *testing.T) {
	baseErr := errors.New("base error")
	domainErr := NewDomainError(ErrorTypeInternal, "internal error", baseErr)

	assert.Equal(t, baseErr, errors.Unwrap(domainErr))
	assert.ErrorIs(t, domainErr, baseErr)
}

func TestDomainError_Is(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{
			name:   "same error type",
			err:    NewDomainError(ErrorTypeConflict, "taken", nil),
			target: ErrUserExists,
			want:   true,
		},
		{
			name:   "different error type",
			err:    NewDomainError(ErrorTypeValidation, "validation", nil),
			target: ErrUserExists,
			want:   false,
		},
		{
			name:   "not a domain error",
			err:    NewDomainError(ErrorTypeNotFound, "not found", nil),
			target: errors.New("regular error"),
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errors.Is(tt.err, tt.target))
		})
	}
}

func TestDomainError_WithDetail(t *testing.T) {
	err := NewDomainError(ErrorTypeValidation, "validation error", nil)

	err.WithDetail("field", "email").WithDetail("rule", "required")

	assert.Equal(t, "email", err.Details["field"])
	assert.Equal(t, "required", err.Details["rule"])
}

func TestErrorTypeHelpers(t *testing.T) {
	tests := []struct {
		name  string
		check func(error) bool
		match error
	}{
		{"not found", IsNotFoundError, ErrUserNotFound},
		{"validation", IsValidationError, NewDomainError(ErrorTypeValidation, MsgAllFieldsRequired, nil)},
		{"invalid credentials", IsInvalidCredentialsError, NewDomainError(ErrorTypeInvalidCredentials, MsgInvalidCredentials, nil)},
		{"conflict", IsConflictError, ErrUserExists},
		{"internal", IsInternalError, NewDomainError(ErrorTypeInternal, MsgInternalServerError, nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.check(tt.match))
			assert.True(t, tt.check(fmt.Errorf("wrapped: %w", tt.match)))
			assert.False(t, tt.check(errors.New("regular")))
			assert.False(t, tt.check(nil))

			for _, other := range tests {
				if other.name != tt.name {
					assert.False(t, tt.check(other.match), "%s matched %s", tt.name, other.name)
				}
			}
		})
	}
}

func TestGetErrorType(t *testing.T) {
	assert.Equal(t, ErrorTypeConflict, GetErrorType(ErrUserExists))
	assert.Equal(t, ErrorType(""), GetErrorType(errors.New("plain")))
	assert.Equal(t, ErrorType(""), GetErrorType(nil))
}

func TestWrapInternal(t *testing.T) {
	cause := errors.New("disk full")

	err := WrapInternal("insert user", cause)
	assert.True(t, IsInternalError(err))
	assert.ErrorIs(t, err, cause)
}
