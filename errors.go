package authsync

import (
	"fmt"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
)

const (
	TextCodeNoUser              = "NO_USER"
	TextCodeObserverClosed      = "OBSERVER_CLOSED"
	TextCodeDispatcherClosed    = "DISPATCHER_CLOSED"
	TextCodeInvalidLanguage     = "INVALID_LANGUAGE"
	TextCodeInvalidPresence     = "INVALID_PRESENCE"
	TextCodeProfileNotFound     = "PROFILE_NOT_FOUND"
	TextCodeServiceNotInContext = "SERVICE_NOT_IN_CONTEXT"
)

// ErrNoUser is returned by operations that need a signed in user
var ErrNoUser = goerrors.New("no user found", goerrors.CategoryAuth).
	WithTextCode(TextCodeNoUser).
	WithCode(goerrors.CodeUnauthorized)

// ErrInvalidCredentials is the provider rejection for a bad email or password.
var ErrInvalidCredentials = goerrors.New("invalid login credentials", goerrors.CategoryAuth).
	WithTextCode(goerrors.TextCodeInvalidCredentials).
	WithCode(goerrors.CodeUnauthorized)

// ErrObserverClosed is returned when starting an observer after teardown
var ErrObserverClosed = goerrors.New("session observer closed", goerrors.CategoryOperation).
	WithTextCode(TextCodeObserverClosed)

// ErrDispatcherClosed is returned when scheduling on a closed dispatcher
var ErrDispatcherClosed = goerrors.New("side effect dispatcher closed", goerrors.CategoryOperation).
	WithTextCode(TextCodeDispatcherClosed)

// ErrInvalidLanguage unknown preferred language
var ErrInvalidLanguage = goerrors.New("invalid preferred language", goerrors.CategoryValidation).
	WithTextCode(TextCodeInvalidLanguage).
	WithCode(goerrors.CodeBadRequest)

// ErrInvalidPresence unknown presence status
var ErrInvalidPresence = goerrors.New("invalid presence status", goerrors.CategoryValidation).
	WithTextCode(TextCodeInvalidPresence).
	WithCode(goerrors.CodeBadRequest)

// ErrProfileNotFound is returned by profile stores for unknown user ids
var ErrProfileNotFound = goerrors.New("profile not found", goerrors.CategoryNotFound).
	WithTextCode(TextCodeProfileNotFound).
	WithCode(goerrors.CodeNotFound)

// ErrServiceNotInContext means the session service was never attached
var ErrServiceNotInContext = goerrors.New("session service not found in context", goerrors.CategoryInternal).
	WithTextCode(TextCodeServiceNotInContext).
	WithCode(goerrors.CodeInternal)

// IsNoUserError reports whether err signals a missing authenticated user
func IsNoUserError(err error) bool {
	return goerrors.Is(err, ErrNoUser)
}

// IsInvalidCredentialsError will check for provider credential rejections
func IsInvalidCredentialsError(err error) bool {
	if err == nil {
		return false
	}

	if goerrors.Is(err, ErrInvalidCredentials) {
		return true
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr.TextCode == goerrors.TextCodeInvalidCredentials {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "invalid login credentials") ||
		strings.Contains(msg, "invalid credentials")
}

// wrapError adds message to err. Errors that already carry a category keep
// it and stay matchable with errors.Is, anything else is wrapped under
// category.
func wrapError(err error, category goerrors.Category, message string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return fmt.Errorf("%s: %w", message, err)
	}
	return goerrors.Wrap(err, category, message)
}

// validationError turns ozzo field errors into a validation error.
func validationError(err error, message string) error {
	if err == nil {
		return nil
	}

	richErr := goerrors.Wrap(err, goerrors.CategoryValidation, message).
		WithCode(goerrors.CodeBadRequest)

	var fields validation.Errors
	if goerrors.As(err, &fields) {
		names := make([]string, 0, len(fields))
		for name := range fields {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			richErr.ValidationErrors = append(richErr.ValidationErrors, goerrors.FieldError{
				Field:   name,
				Message: fields[name].Error(),
			})
		}
	}

	return richErr
}
