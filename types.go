package authsync

import (
	"context"
	"fmt"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// AuthEvent is the kind of change reported by the identity provider.
type AuthEvent string

const (
	AuthEventInitialSession  AuthEvent = "INITIAL_SESSION"
	AuthEventSignedIn        AuthEvent = "SIGNED_IN"
	AuthEventSignedOut       AuthEvent = "SIGNED_OUT"
	AuthEventTokenRefreshed  AuthEvent = "TOKEN_REFRESHED"
	AuthEventUserUpdated     AuthEvent = "USER_UPDATED"
	AuthEventPasswordRecover AuthEvent = "PASSWORD_RECOVERY"
)

// AuthChangeFunc receives provider events. session is nil once signed out.
type AuthChangeFunc func(event AuthEvent, session *Session)

// SignUpOptions are forwarded to the identity provider on registration.
type SignUpOptions struct {
	EmailRedirectTo string
	Data            map[string]any
}

// IdentityProvider is the credential gateway the session core talks to.
//
// GetCurrentUser must keep answering with the last known user right after
// SignOut cleared the session, the offline presence write depends on it.
type IdentityProvider interface {
	Subscribe(fn AuthChangeFunc) (unsubscribe func())
	GetCurrentSession(ctx context.Context) (*Session, error)
	GetCurrentUser(ctx context.Context) (*UserRef, error)
	SignUp(ctx context.Context, email, password string, opts SignUpOptions) error
	SignInWithPassword(ctx context.Context, email, password string) error
	SignOut(ctx context.Context) error
}

// ProfileStore persists one profile row per user id.
type ProfileStore interface {
	UpdateStatus(ctx context.Context, userID string, status PresenceStatus) error
	Read(ctx context.Context, userID string) (*Profile, error)
	Update(ctx context.Context, userID string, updates ProfileUpdates) error
}

// ActivityStore is an append only log keyed by user id.
type ActivityStore interface {
	Append(ctx context.Context, userID string, activityType ActivityType, description string, metadata map[string]any) error
	List(ctx context.Context, userID string, limit int) ([]*ActivityLogEntry, error)
}

// DefaultLogger returns the printf logger used when none is configured.
func DefaultLogger() Logger {
	return defLogger{}
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTHSYNC "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] AUTHSYNC "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTHSYNC "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTHSYNC "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
