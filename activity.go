package authsync

import (
	"context"
)

// ActivityType enumerates supported activity categories.
type ActivityType string

const (
	ActivitySignIn        ActivityType = "sign_in"
	ActivityProfileUpdate ActivityType = "profile_update"
	// ActivitySignOut is recorded by the observer when the service is built
	// with WithSignOutActivity.
	ActivitySignOut ActivityType = "sign_out"
	// ActivitySignUp is written by identity providers when an account is
	// created, see local.ActivityHook.
	ActivitySignUp ActivityType = "sign_up"
)

const (
	descriptionSignIn        = "User signed in"
	descriptionSignOut       = "User signed out"
	descriptionProfileUpdate = "Profile updated"
)

// DefaultActivityLimit is the page size used when listing activities.
const DefaultActivityLimit = 50

// ActivityStoreFunc adapts a function to the append half of ActivityStore.
// List always returns an empty page.
type ActivityStoreFunc func(ctx context.Context, userID string, activityType ActivityType, description string, metadata map[string]any) error

// Append implements ActivityStore.
func (f ActivityStoreFunc) Append(ctx context.Context, userID string, activityType ActivityType, description string, metadata map[string]any) error {
	if f == nil {
		return nil
	}
	return f(ctx, userID, activityType, description, metadata)
}

// List implements ActivityStore.
func (f ActivityStoreFunc) List(context.Context, string, int) ([]*ActivityLogEntry, error) {
	return []*ActivityLogEntry{}, nil
}

type noopActivityStore struct{}

func (noopActivityStore) Append(context.Context, string, ActivityType, string, map[string]any) error {
	return nil
}

func (noopActivityStore) List(context.Context, string, int) ([]*ActivityLogEntry, error) {
	return []*ActivityLogEntry{}, nil
}

func normalizeActivityStore(s ActivityStore) ActivityStore {
	if s == nil {
		return noopActivityStore{}
	}
	return s
}

func cloneMetadata(metadata map[string]any) map[string]any {
	if metadata == nil {
		return nil
	}
	cloned := make(map[string]any, len(metadata))
	for k, v := range metadata {
		cloned[k] = v
	}
	return cloned
}
