package auth

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-errors"
	"github.com/nyaruka/phonenumbers"
)

// LoginPayload carries the credentials for a login transition. It is
// validated client-side before any network call is made.
type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate implements client-side payload validation.
func (p LoginPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Email, validation.Required, is.Email),
		validation.Field(&p.Password, validation.Required),
	)
}

// RegisterPayload carries the fields for a registration transition. The raw
// password goes to the remote API and is never persisted by this package.
type RegisterPayload struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"nombre,omitempty"`
	Phone       string `json:"telefono,omitempty"`
}

// Validate implements client-side payload validation. The phone is optional
// but must parse as a real number when present.
func (p RegisterPayload) Validate() error {
	if err := validation.ValidateStruct(&p,
		validation.Field(&p.Email, validation.Required, is.Email),
		validation.Field(&p.Password, validation.Required, validation.Length(8, 128)),
		validation.Field(&p.DisplayName, validation.Length(0, 120)),
	); err != nil {
		return err
	}

	return validatePhone(p.Phone)
}

func validatePhone(phone string) error {
	if phone == "" {
		return nil
	}

	parsed, err := phonenumbers.Parse(phone, "CO")
	if err != nil {
		return errors.Wrap(err, errors.CategoryValidation, "invalid phone number").
			WithMetadata(map[string]any{"phone": phone})
	}

	if !phonenumbers.IsValidNumber(parsed) {
		return errors.New("invalid phone number", errors.CategoryValidation).
			WithMetadata(map[string]any{"phone": phone})
	}

	return nil
}
