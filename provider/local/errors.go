package local

import (
	"github.com/goliatone/go-authsync"
	"github.com/goliatone/go-errors"
)

const (
	TextCodeEmailNotConfirmed     = "EMAIL_NOT_CONFIRMED"
	TextCodeUserAlreadyRegistered = "USER_ALREADY_REGISTERED"
	TextCodeEmptyEmail            = "EMPTY_EMAIL_NOT_ALLOWED"
)

// ErrInvalidCredentials is returned for unknown emails and wrong passwords.
var ErrInvalidCredentials = authsync.ErrInvalidCredentials

// ErrEmailNotConfirmed is returned when signing in before ConfirmEmail.
var ErrEmailNotConfirmed = errors.New("email not confirmed", errors.CategoryAuth).
	WithTextCode(TextCodeEmailNotConfirmed).
	WithCode(errors.CodeForbidden)

// ErrUserAlreadyRegistered is returned by SignUp for a taken email.
var ErrUserAlreadyRegistered = errors.New("user already registered", errors.CategoryConflict).
	WithTextCode(TextCodeUserAlreadyRegistered).
	WithCode(errors.CodeConflict)

// ErrEmptyPassword is returned when hashing an empty password.
var ErrEmptyPassword = errors.New("password must not be empty", errors.CategoryValidation).
	WithTextCode(errors.TextCodeEmptyPassword).
	WithCode(errors.CodeBadRequest)

// ErrEmptyEmail is returned by SignUp without an email.
var ErrEmptyEmail = errors.New("email must not be empty", errors.CategoryValidation).
	WithTextCode(TextCodeEmptyEmail).
	WithCode(errors.CodeBadRequest)

// ErrNoSession is returned when there is no session to act on.
var ErrNoSession = errors.New("no active session", errors.CategoryAuth).
	WithTextCode(errors.TextCodeSessionNotFound).
	WithCode(errors.CodeUnauthorized)

// ErrTokenExpired is returned for session tokens past their expiry.
var ErrTokenExpired = errors.New("session token expired", errors.CategoryAuth).
	WithTextCode(errors.TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrTokenMalformed is returned for tokens that fail to parse or verify.
var ErrTokenMalformed = errors.New("session token malformed", errors.CategoryAuth).
	WithTextCode(errors.TextCodeTokenMalformed).
	WithCode(errors.CodeUnauthorized)
