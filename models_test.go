package authsync_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-authsync"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestLanguagesAreFixedAndOrdered(t *testing.T) {
	langs := authsync.Languages()
	require.Len(t, langs, 12)
	assert.Equal(t, authsync.LanguageEnglish, langs[0])
	assert.Equal(t, authsync.LanguageHindi, langs[11])

	for _, l := range langs {
		assert.True(t, l.Valid(), l)
	}
	assert.False(t, authsync.Language("klingon").Valid())

	langs[0] = "mutated"
	assert.Equal(t, authsync.LanguageEnglish, authsync.Languages()[0])
}

func TestParsePresenceStatus(t *testing.T) {
	status, err := authsync.ParsePresenceStatus("online")
	require.NoError(t, err)
	assert.Equal(t, authsync.PresenceOnline, status)

	_, err = authsync.ParsePresenceStatus("away")
	assert.ErrorIs(t, err, authsync.ErrInvalidPresence)
}

func TestProfileUpdatesFields(t *testing.T) {
	assert.True(t, authsync.ProfileUpdates{}.Empty())
	assert.Equal(t, map[string]any{}, authsync.ProfileUpdates{}.Fields())

	name := "Bob"
	lang := authsync.LanguageKorean
	updates := authsync.ProfileUpdates{DisplayName: &name, PreferredLanguage: &lang}
	assert.False(t, updates.Empty())
	assert.Equal(t, map[string]any{
		"display_name":       "Bob",
		"preferred_language": "korean",
	}, updates.Fields())
}

func TestProfileEnsureDefaults(t *testing.T) {
	p := (&authsync.Profile{UserID: "u1"}).EnsureDefaults()
	assert.Equal(t, authsync.LanguageEnglish, p.PreferredLanguage)
	assert.Equal(t, authsync.PresenceOffline, p.Status)
}

func TestSessionCloneIsDeep(t *testing.T) {
	var nilSession *authsync.Session
	assert.Nil(t, nilSession.Clone())

	exp := time.Now()
	s := &authsync.Session{User: &authsync.UserRef{ID: "u1"}, RawSessionToken: "t", ExpiresAt: &exp}
	c := s.Clone()
	c.User.ID = "u2"
	assert.Equal(t, "u1", s.User.ID)
	assert.Equal(t, exp, *c.ExpiresAt)
}

func TestRedirectURL(t *testing.T) {
	assert.Equal(t, "", authsync.RedirectURL(authsync.DefaultConfig{}))
	assert.Equal(t, "https://dash.example.com/", authsync.RedirectURL(authsync.DefaultConfig{SiteOrigin: "https://dash.example.com/"}))
	assert.Equal(t, "https://dash.example.com/welcome", authsync.RedirectURL(authsync.DefaultConfig{
		SiteOrigin:   "https://dash.example.com",
		RedirectPath: "welcome",
	}))
}

func TestDefaultConfigFallbacks(t *testing.T) {
	cfg := authsync.DefaultConfig{}
	assert.Equal(t, "/", cfg.GetRedirectPath())
	assert.Equal(t, authsync.DefaultActivityLimit, cfg.GetActivityLimit())
	assert.Zero(t, cfg.GetTaskTimeout())
}

func TestSetPresenceTaskIsIdempotentAtTheStore(t *testing.T) {
	profiles := &MockProfileStore{}
	profiles.On("UpdateStatus", mock.Anything, "u1", authsync.PresenceOffline).Return(nil).Twice()

	task := authsync.SetPresenceTask(profiles, "u1", authsync.PresenceOffline)
	require.NoError(t, task(context.Background()))
	require.NoError(t, task(context.Background()))

	profiles.AssertExpectations(t)
}

func TestSetPresenceTaskWrapsStoreError(t *testing.T) {
	profiles := &MockProfileStore{}
	storeErr := errors.New("rpc failed")
	profiles.On("UpdateStatus", mock.Anything, "u1", authsync.PresenceOnline).Return(storeErr).Once()

	err := authsync.SetPresenceTask(profiles, "u1", authsync.PresenceOnline)(context.Background())
	assert.ErrorIs(t, err, storeErr)

	err = authsync.SetPresenceTask(profiles, "u1", authsync.PresenceStatus("away"))(context.Background())
	assert.ErrorIs(t, err, authsync.ErrInvalidPresence)

	assert.NoError(t, authsync.SetPresenceTask(profiles, "", authsync.PresenceOnline)(context.Background()))
}

func TestRecordActivityTaskCopiesMetadata(t *testing.T) {
	activities := &MockActivityStore{}
	activities.On("Append", mock.Anything, "u1", authsync.ActivityProfileUpdate, "Profile updated",
		map[string]any{"display_name": "Bob"}).Return(nil).Once()

	metadata := map[string]any{"display_name": "Bob"}
	task := authsync.RecordActivityTask(activities, "u1", authsync.ActivityProfileUpdate, "Profile updated", metadata)
	metadata["display_name"] = "Mallory"

	require.NoError(t, task(context.Background()))
	activities.AssertExpectations(t)
}

func TestActivityStoreFuncAdapter(t *testing.T) {
	var got []authsync.ActivityType
	store := authsync.ActivityStoreFunc(func(_ context.Context, userID string, activityType authsync.ActivityType, _ string, _ map[string]any) error {
		assert.Equal(t, "u1", userID)
		got = append(got, activityType)
		return nil
	})

	require.NoError(t, authsync.RecordActivityTask(store, "u1", authsync.ActivitySignIn, "User signed in", nil)(context.Background()))
	assert.Equal(t, []authsync.ActivityType{authsync.ActivitySignIn}, got)

	entries, err := store.List(context.Background(), "u1", 10)
	require.NoError(t, err)
	assert.Empty(t, entries)

	var nilStore authsync.ActivityStoreFunc
	assert.NoError(t, nilStore.Append(context.Background(), "u1", authsync.ActivitySignIn, "", nil))
}
