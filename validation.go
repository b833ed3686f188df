package authsync

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// SignUpRequest is the registration payload
type SignUpRequest struct {
	Email             string   `json:"email"`
	Password          string   `json:"password"`
	DisplayName       string   `json:"display_name,omitempty"`
	PreferredLanguage Language `json:"preferred_language,omitempty"`
}

// Validate checks required fields and the language enum
func (r SignUpRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&r.Password,
			validation.Required,
		),
		validation.Field(
			&r.PreferredLanguage,
			validation.In(languageValues()...).Error(ErrInvalidLanguage.Message),
		),
	)
}

// Metadata is what the provider stores alongside the new account.
// display_name is only sent when set.
func (r SignUpRequest) Metadata() map[string]any {
	language := r.PreferredLanguage
	if language == "" {
		language = DefaultLanguage
	}
	out := map[string]any{
		"preferred_language": string(language),
	}
	if r.DisplayName != "" {
		out["display_name"] = r.DisplayName
	}
	return out
}

// SignInRequest is the password sign in payload
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r SignInRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

// Validate rejects unknown languages. Both fields are optional.
func (u ProfileUpdates) Validate() error {
	return validation.ValidateStruct(&u,
		validation.Field(
			&u.PreferredLanguage,
			validation.In(languageValues()...).Error(ErrInvalidLanguage.Message),
		),
	)
}

func languageValues() []interface{} {
	values := make([]interface{}, len(languages))
	for i, l := range languages {
		values[i] = l
	}
	return values
}
