package authsync

import (
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// UserRef identifies the signed in user
type UserRef struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session pairs the provider token with the user it was issued for.
// Sessions are replaced wholesale on every provider event, never mutated.
type Session struct {
	User            *UserRef   `json:"user,omitempty"`
	RawSessionToken string     `json:"raw_session_token,omitempty"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
}

// Clone returns a deep copy, nil safe
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := &Session{RawSessionToken: s.RawSessionToken}
	if s.User != nil {
		u := *s.User
		out.User = &u
	}
	if s.ExpiresAt != nil {
		t := *s.ExpiresAt
		out.ExpiresAt = &t
	}
	return out
}

// Language is the preferred UI language
type Language string

const (
	LanguageEnglish    Language = "english"
	LanguageSpanish    Language = "spanish"
	LanguageFrench     Language = "french"
	LanguageGerman     Language = "german"
	LanguageItalian    Language = "italian"
	LanguagePortuguese Language = "portuguese"
	LanguageArabic     Language = "arabic"
	LanguageChinese    Language = "chinese"
	LanguageJapanese   Language = "japanese"
	LanguageKorean     Language = "korean"
	LanguageRussian    Language = "russian"
	LanguageHindi      Language = "hindi"
)

// DefaultLanguage is used when sign up does not name one
const DefaultLanguage = LanguageEnglish

var languages = []Language{
	LanguageEnglish,
	LanguageSpanish,
	LanguageFrench,
	LanguageGerman,
	LanguageItalian,
	LanguagePortuguese,
	LanguageArabic,
	LanguageChinese,
	LanguageJapanese,
	LanguageKorean,
	LanguageRussian,
	LanguageHindi,
}

// Languages returns the supported languages in display order
func Languages() []Language {
	out := make([]Language, len(languages))
	copy(out, languages)
	return out
}

// Valid reports whether l is one of the supported languages
func (l Language) Valid() bool {
	for _, candidate := range languages {
		if candidate == l {
			return true
		}
	}
	return false
}

// PresenceStatus is the online/offline flag shown next to a user
type PresenceStatus string

const (
	PresenceOnline  PresenceStatus = "online"
	PresenceOffline PresenceStatus = "offline"
)

func (p PresenceStatus) Valid() bool {
	return p == PresenceOnline || p == PresenceOffline
}

// ParsePresenceStatus converts raw input into a PresenceStatus
func ParsePresenceStatus(raw string) (PresenceStatus, error) {
	status := PresenceStatus(raw)
	if !status.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidPresence, raw)
	}
	return status, nil
}

// Profile is the per user profile row
type Profile struct {
	bun.BaseModel     `bun:"table:profiles,alias:prf"`
	UserID            string         `bun:"user_id,pk" json:"user_id"`
	DisplayName       string         `bun:"display_name,nullzero" json:"display_name,omitempty"`
	PreferredLanguage Language       `bun:"preferred_language,notnull" json:"preferred_language"`
	Status            PresenceStatus `bun:"status,notnull" json:"status"`
	MemberSince       time.Time      `bun:"member_since,notnull" json:"member_since"`
}

// EnsureDefaults fills zero values with the store defaults
func (p *Profile) EnsureDefaults() *Profile {
	if p.PreferredLanguage == "" {
		p.PreferredLanguage = DefaultLanguage
	}
	if p.Status == "" {
		p.Status = PresenceOffline
	}
	return p
}

// ProfileUpdates carries the editable profile fields. Nil fields are left alone.
type ProfileUpdates struct {
	DisplayName       *string   `json:"display_name,omitempty"`
	PreferredLanguage *Language `json:"preferred_language,omitempty"`
}

// Empty reports whether no field was provided
func (u ProfileUpdates) Empty() bool {
	return u.DisplayName == nil && u.PreferredLanguage == nil
}

// Fields returns only the provided fields keyed by column name
func (u ProfileUpdates) Fields() map[string]any {
	fields := map[string]any{}
	if u.DisplayName != nil {
		fields["display_name"] = *u.DisplayName
	}
	if u.PreferredLanguage != nil {
		fields["preferred_language"] = string(*u.PreferredLanguage)
	}
	return fields
}

// ActivityLogEntry is one append only audit row
type ActivityLogEntry struct {
	bun.BaseModel `bun:"table:activity_logs,alias:act"`
	ID            string         `bun:"id,pk" json:"id"`
	UserID        string         `bun:"user_id,notnull" json:"user_id"`
	ActivityType  ActivityType   `bun:"activity_type,notnull" json:"activity_type"`
	Description   string         `bun:"description,nullzero" json:"description,omitempty"`
	Metadata      map[string]any `bun:"metadata" json:"metadata,omitempty"`
	CreatedAt     time.Time      `bun:"created_at,notnull" json:"created_at"`
}
