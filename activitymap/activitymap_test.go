package activitymap_test

import (
	"testing"
	"time"

	"github.com/goliatone/go-authsync"
	"github.com/goliatone/go-authsync/activitymap"
)

func TestMapDefaults(t *testing.T) {
	t.Parallel()

	ts := time.Date(2026, 1, 10, 9, 30, 0, 0, time.UTC)
	entry := &authsync.ActivityLogEntry{
		ID:           "01J0000000000000000000000",
		UserID:       "user-100",
		ActivityType: authsync.ActivityProfileUpdate,
		Description:  "Profile updated",
		Metadata:     map[string]any{"display_name": "Bob"},
		CreatedAt:    ts,
	}

	out := activitymap.Map(entry)

	if out.ActorID != "user-100" {
		t.Fatalf("expected actor_id user-100, got %q", out.ActorID)
	}
	if out.Verb != "profile_update" {
		t.Fatalf("expected verb profile_update, got %q", out.Verb)
	}
	if out.Label != "Profile updated" {
		t.Fatalf("expected label from description, got %q", out.Label)
	}
	if out.TypeLabel != "profile update" {
		t.Fatalf("expected type label profile update, got %q", out.TypeLabel)
	}
	if out.Badge != activitymap.BadgeBlue {
		t.Fatalf("expected blue badge, got %q", out.Badge)
	}
	if out.Channel != "auth" {
		t.Fatalf("expected channel auth, got %q", out.Channel)
	}
	if !out.OccurredAt.Equal(ts) {
		t.Fatalf("expected occurred_at %v, got %v", ts, out.OccurredAt)
	}
	if out.Metadata["display_name"] != "Bob" {
		t.Fatalf("expected metadata display_name Bob, got %#v", out.Metadata["display_name"])
	}

	out.Metadata["display_name"] = "Mallory"
	if entry.Metadata["display_name"] != "Bob" {
		t.Fatalf("expected entry metadata to stay untouched")
	}
}

func TestMapLabelFallsBackToType(t *testing.T) {
	t.Parallel()

	out := activitymap.Map(&authsync.ActivityLogEntry{ActivityType: authsync.ActivitySignIn})

	if out.Label != "sign_in" {
		t.Fatalf("expected label sign_in, got %q", out.Label)
	}
	if out.Badge != activitymap.BadgeGreen {
		t.Fatalf("expected green badge, got %q", out.Badge)
	}
	if out.ActorID != "system" {
		t.Fatalf("expected actor fallback system, got %q", out.ActorID)
	}
	if out.Metadata != nil {
		t.Fatalf("expected nil metadata, got %#v", out.Metadata)
	}
}

func TestMapUnknownTypeIsGray(t *testing.T) {
	t.Parallel()

	out := activitymap.Map(&authsync.ActivityLogEntry{ActivityType: authsync.ActivitySignOut, UserID: "u1"})

	if out.Badge != activitymap.BadgeGray {
		t.Fatalf("expected gray badge, got %q", out.Badge)
	}
	if out.TypeLabel != "sign out" {
		t.Fatalf("expected type label sign out, got %q", out.TypeLabel)
	}
}

func TestMapOptions(t *testing.T) {
	t.Parallel()

	out := activitymap.Map(
		&authsync.ActivityLogEntry{ActivityType: authsync.ActivitySignOut},
		activitymap.WithDefaultChannel(" dashboard "),
		activitymap.WithActorFallback("anonymous"),
		activitymap.WithBadge(authsync.ActivitySignOut, activitymap.BadgeRed),
		nil,
	)

	if out.Channel != "dashboard" {
		t.Fatalf("expected channel dashboard, got %q", out.Channel)
	}
	if out.ActorID != "anonymous" {
		t.Fatalf("expected actor anonymous, got %q", out.ActorID)
	}
	if out.Badge != activitymap.BadgeRed {
		t.Fatalf("expected red badge, got %q", out.Badge)
	}
}

func TestMapAllKeepsOrderAndSkipsNil(t *testing.T) {
	t.Parallel()

	entries := []*authsync.ActivityLogEntry{
		{ID: "b", ActivityType: authsync.ActivitySignIn},
		nil,
		{ID: "a", ActivityType: authsync.ActivityProfileUpdate},
	}

	out := activitymap.MapAll(entries)
	if len(out) != 2 {
		t.Fatalf("expected 2 records, got %d", len(out))
	}
	if out[0].ID != "b" || out[1].ID != "a" {
		t.Fatalf("expected order b,a got %s,%s", out[0].ID, out[1].ID)
	}
}

func TestMapNilEntry(t *testing.T) {
	t.Parallel()

	out := activitymap.Map(nil)
	if out.Badge != activitymap.BadgeGray || out.Label != "" {
		t.Fatalf("expected empty gray record, got %#v", out)
	}
}
