package activitymap

import (
	"strings"
	"time"

	"github.com/goliatone/go-authsync"
)

// Badge is a colour key the rendering layer maps to a style.
type Badge string

const (
	BadgeGreen Badge = "green"
	BadgeBlue  Badge = "blue"
	BadgeRed   Badge = "red"
	BadgeGray  Badge = "gray"
)

const (
	defaultChannel = "auth"
	defaultActorID = "system"
)

// Record is a transport-agnostic activity row ready for display.
type Record struct {
	ID         string         `json:"id"`
	ActorID    string         `json:"actor_id"`
	Verb       string         `json:"verb"`
	Label      string         `json:"label"`
	TypeLabel  string         `json:"type_label"`
	Badge      Badge          `json:"badge"`
	Channel    string         `json:"channel,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// Option customizes mapping behavior.
type Option func(*mapOptions)

type mapOptions struct {
	channel       string
	actorFallback string
	badges        map[authsync.ActivityType]Badge
}

// Map converts an activity log entry into a display record. The label is
// the entry description, or the activity type when there is none.
func Map(entry *authsync.ActivityLogEntry, opts ...Option) Record {
	options := defaultMapOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}

	if entry == nil {
		return Record{Badge: BadgeGray, Channel: options.channel}
	}

	verb := strings.TrimSpace(string(entry.ActivityType))
	label := firstNonEmpty(strings.TrimSpace(entry.Description), verb)

	return Record{
		ID:         entry.ID,
		ActorID:    firstNonEmpty(strings.TrimSpace(entry.UserID), options.actorFallback),
		Verb:       verb,
		Label:      label,
		TypeLabel:  TypeLabel(entry.ActivityType),
		Badge:      options.badge(entry.ActivityType),
		Channel:    options.channel,
		Metadata:   cloneMap(entry.Metadata),
		OccurredAt: entry.CreatedAt,
	}
}

// MapAll maps entries keeping their order. nil entries are skipped.
func MapAll(entries []*authsync.ActivityLogEntry, opts ...Option) []Record {
	out := make([]Record, 0, len(entries))
	for _, entry := range entries {
		if entry == nil {
			continue
		}
		out = append(out, Map(entry, opts...))
	}
	return out
}

// TypeLabel renders an activity type for humans, "profile_update" becomes
// "profile update".
func TypeLabel(activityType authsync.ActivityType) string {
	return strings.ReplaceAll(strings.TrimSpace(string(activityType)), "_", " ")
}

// WithDefaultChannel sets the channel for mapped records.
func WithDefaultChannel(channel string) Option {
	return func(opts *mapOptions) {
		if opts == nil {
			return
		}
		opts.channel = strings.TrimSpace(channel)
	}
}

// WithActorFallback sets the actor id used when an entry has no user id.
func WithActorFallback(actorID string) Option {
	return func(opts *mapOptions) {
		if opts == nil {
			return
		}
		opts.actorFallback = strings.TrimSpace(actorID)
	}
}

// WithBadge overrides the badge for one activity type.
func WithBadge(activityType authsync.ActivityType, badge Badge) Option {
	return func(opts *mapOptions) {
		if opts == nil {
			return
		}
		opts.badges[activityType] = badge
	}
}

func defaultMapOptions() mapOptions {
	return mapOptions{
		channel:       defaultChannel,
		actorFallback: defaultActorID,
		badges: map[authsync.ActivityType]Badge{
			authsync.ActivitySignIn:        BadgeGreen,
			authsync.ActivityProfileUpdate: BadgeBlue,
		},
	}
}

func (o mapOptions) badge(activityType authsync.ActivityType) Badge {
	if badge, ok := o.badges[activityType]; ok && badge != "" {
		return badge
	}
	return BadgeGray
}

func cloneMap(in map[string]any) map[string]any {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
