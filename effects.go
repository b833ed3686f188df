package authsync

import (
	"context"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
)

const (
	taskPresenceOnline  = "presence.online"
	taskPresenceOffline = "presence.offline"
	taskRecordActivity  = "activity.record"
)

// SetPresenceTask writes status for userID. userID is captured by value so a
// sign out racing the queued task cannot change the target.
func SetPresenceTask(store ProfileStore, userID string, status PresenceStatus) Task {
	return func(ctx context.Context) error {
		if userID == "" {
			return nil
		}
		if !status.Valid() {
			return fmt.Errorf("%w: %q", ErrInvalidPresence, status)
		}
		if err := store.UpdateStatus(ctx, userID, status); err != nil {
			return wrapError(err, goerrors.CategoryOperation, fmt.Sprintf("set presence %s for %s", status, userID))
		}
		return nil
	}
}

// RecordActivityTask appends an activity entry for userID. metadata is copied.
func RecordActivityTask(store ActivityStore, userID string, activityType ActivityType, description string, metadata map[string]any) Task {
	metadata = cloneMetadata(metadata)
	store = normalizeActivityStore(store)
	return func(ctx context.Context) error {
		if userID == "" {
			return nil
		}
		if err := store.Append(ctx, userID, activityType, description, metadata); err != nil {
			return wrapError(err, goerrors.CategoryOperation, fmt.Sprintf("record %s activity for %s", activityType, userID))
		}
		return nil
	}
}

// lastUserOfflineTask marks the user that just signed out offline. previousID
// is the user the observer held before the event cleared its state and always
// wins, the provider is asked only when the observer had no user.
func lastUserOfflineTask(provider IdentityProvider, store ProfileStore, previousID string, logger Logger) Task {
	return func(ctx context.Context) error {
		userID := previousID
		if userID == "" {
			last, err := provider.GetCurrentUser(ctx)
			if err != nil {
				logger.Debug("last user lookup failed", "error", err)
			} else if last != nil {
				userID = last.ID
			}
		}
		if userID == "" {
			return nil
		}
		return SetPresenceTask(store, userID, PresenceOffline)(ctx)
	}
}
