package authsync

import (
	"context"
)

var serviceCtxKey = &contextKey{"session-service"}
var userCtxKey = &contextKey{"user"}

type contextKey struct {
	name string
}

// WithContext attaches the session service to ctx
func WithContext(ctx context.Context, svc *Service) context.Context {
	return context.WithValue(ctx, serviceCtxKey, svc)
}

// FromContext finds the session service in ctx.
func FromContext(ctx context.Context) (*Service, bool) {
	svc, ok := ctx.Value(serviceCtxKey).(*Service)
	return svc, ok && svc != nil
}

// MustFromContext is FromContext for code that can only run below the
// composition root. A missing service is a wiring bug and panics.
func MustFromContext(ctx context.Context) *Service {
	svc, ok := FromContext(ctx)
	if !ok {
		panic(ErrServiceNotInContext)
	}
	return svc
}

// WithUserContext sets the signed in user in the given context
func WithUserContext(ctx context.Context, user *UserRef) context.Context {
	return context.WithValue(ctx, userCtxKey, user)
}

// UserFromContext returns the user stored by WithUserContext, falling back to
// the attached service state.
func UserFromContext(ctx context.Context) (*UserRef, bool) {
	if user, ok := ctx.Value(userCtxKey).(*UserRef); ok && user != nil {
		return user, true
	}
	if svc, ok := FromContext(ctx); ok {
		if user := svc.State().User; user != nil {
			return user, true
		}
	}
	return nil, false
}
