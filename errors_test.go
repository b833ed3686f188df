package authsync_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/goliatone/go-authsync"
	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsInvalidCredentialsError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "Provider rejection",
			err:      errors.New("Invalid login credentials"),
			expected: true,
		},
		{
			name:     "Wrapped rejection",
			err:      fmt.Errorf("sign in: %w", errors.New("invalid credentials")),
			expected: true,
		},
		{
			name:     "Sentinel",
			err:      authsync.ErrInvalidCredentials,
			expected: true,
		},
		{
			name:     "Text code",
			err:      goerrors.New("bad password", goerrors.CategoryAuth).WithTextCode(goerrors.TextCodeInvalidCredentials),
			expected: true,
		},
		{
			name:     "Different error",
			err:      errors.New("email not confirmed"),
			expected: false,
		},
		{
			name:     "Nil error",
			err:      nil,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, authsync.IsInvalidCredentialsError(tt.err))
		})
	}
}

func TestIsNoUserError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "Sentinel",
			err:      authsync.ErrNoUser,
			expected: true,
		},
		{
			name:     "Wrapped sentinel",
			err:      fmt.Errorf("update profile: %w", authsync.ErrNoUser),
			expected: true,
		},
		{
			name:     "Look alike message",
			err:      errors.New("no user found"),
			expected: false,
		},
		{
			name:     "Nil error",
			err:      nil,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, authsync.IsNoUserError(tt.err))
		})
	}
}

func TestSentinelCategories(t *testing.T) {
	tests := []struct {
		name     string
		err      *goerrors.Error
		category goerrors.Category
		textCode string
	}{
		{"No user", authsync.ErrNoUser, goerrors.CategoryAuth, authsync.TextCodeNoUser},
		{"Invalid credentials", authsync.ErrInvalidCredentials, goerrors.CategoryAuth, goerrors.TextCodeInvalidCredentials},
		{"Observer closed", authsync.ErrObserverClosed, goerrors.CategoryOperation, authsync.TextCodeObserverClosed},
		{"Dispatcher closed", authsync.ErrDispatcherClosed, goerrors.CategoryOperation, authsync.TextCodeDispatcherClosed},
		{"Invalid language", authsync.ErrInvalidLanguage, goerrors.CategoryValidation, authsync.TextCodeInvalidLanguage},
		{"Invalid presence", authsync.ErrInvalidPresence, goerrors.CategoryValidation, authsync.TextCodeInvalidPresence},
		{"Profile not found", authsync.ErrProfileNotFound, goerrors.CategoryNotFound, authsync.TextCodeProfileNotFound},
		{"Service not in context", authsync.ErrServiceNotInContext, goerrors.CategoryInternal, authsync.TextCodeServiceNotInContext},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.category, tt.err.Category)
			assert.Equal(t, tt.textCode, tt.err.TextCode)

			wrapped := fmt.Errorf("context: %w", tt.err)
			assert.ErrorIs(t, wrapped, tt.err)
			assert.True(t, goerrors.IsCategory(wrapped, tt.category))
		})
	}
}

func TestParsePresenceStatusErrorIsValidation(t *testing.T) {
	_, err := authsync.ParsePresenceStatus("away")
	require.Error(t, err)
	assert.ErrorIs(t, err, authsync.ErrInvalidPresence)
	assert.True(t, goerrors.IsValidation(err))

	var richErr *goerrors.Error
	require.True(t, goerrors.As(err, &richErr))
	assert.Equal(t, goerrors.CodeBadRequest, richErr.Code)
}
