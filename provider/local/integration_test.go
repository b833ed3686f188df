package local_test

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-authsync"
	"github.com/goliatone/go-authsync/provider/local"
	"github.com/goliatone/go-authsync/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceAgainstLocalProvider(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	repos := repository.NewManager(db)
	repos.MustValidate()

	provider := newProvider(t, db, local.WithSignUpHook(local.ProfileHook(repos.Profiles())))
	svc := authsync.NewService(provider, repos.Profiles(), repos.Activities(),
		authsync.WithLogger(nopLogger{}),
		authsync.WithConfig(authsync.DefaultConfig{SiteOrigin: "https://dash.example.com"}),
	)
	require.NoError(t, svc.Start(ctx))
	t.Cleanup(func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = svc.Close(closeCtx)
	})

	select {
	case <-svc.Ready():
	case <-time.After(time.Second):
		t.Fatal("service never became ready")
	}
	assert.False(t, svc.State().Authenticated())

	require.NoError(t, svc.SignUp(ctx, authsync.SignUpRequest{
		Email:             "alice@example.com",
		Password:          "pw",
		DisplayName:       "Alice",
		PreferredLanguage: authsync.LanguageFrench,
	}))
	require.True(t, svc.State().Authenticated())
	userID := svc.State().User.ID

	require.NoError(t, svc.Dispatcher().Flush(ctx))

	profile, err := svc.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Alice", profile.DisplayName)
	assert.Equal(t, authsync.LanguageFrench, profile.PreferredLanguage)
	assert.Equal(t, authsync.PresenceOnline, profile.Status)

	name := "Bob"
	require.NoError(t, svc.UpdateProfile(ctx, authsync.ProfileUpdates{DisplayName: &name}))
	require.NoError(t, svc.Dispatcher().Flush(ctx))

	entries, err := svc.Activities(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	kinds := []authsync.ActivityType{entries[0].ActivityType, entries[1].ActivityType}
	assert.ElementsMatch(t, []authsync.ActivityType{authsync.ActivitySignIn, authsync.ActivityProfileUpdate}, kinds)

	require.NoError(t, svc.SignOut(ctx))
	assert.False(t, svc.State().Authenticated())
	require.NoError(t, svc.Dispatcher().Flush(ctx))

	stored, err := repos.Profiles().Read(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "Bob", stored.DisplayName)
	assert.Equal(t, authsync.PresenceOffline, stored.Status)

	err = svc.SignIn(ctx, "alice@example.com", "wrong")
	assert.True(t, authsync.IsInvalidCredentialsError(err))
	assert.False(t, svc.State().Authenticated())

	require.NoError(t, svc.SignIn(ctx, "alice@example.com", "pw"))
	assert.Equal(t, userID, svc.State().User.ID)
	require.NoError(t, svc.Dispatcher().Flush(ctx))

	stored, err = repos.Profiles().Read(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, authsync.PresenceOnline, stored.Status)
}
