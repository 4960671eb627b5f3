package dto

import (
	"encoding/json"
	"strings"
)

const DefaultSpecialty = "ORL"

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,password_policy"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
	Name            string `json:"name" validate:"required,min=2"`
	RPPS            string `json:"rpps,omitempty" validate:"omitempty,rpps"`
	Specialty       string `json:"specialty,omitempty"`
}

// SignupBody is what the backend receives; the confirmation never leaves the client.
type SignupBody struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Name      string `json:"name"`
	RPPS      string `json:"rpps,omitempty"`
	Specialty string `json:"specialty,omitempty"`
}

func (r *RegisterRequest) Body() SignupBody {
	specialty := strings.TrimSpace(r.Specialty)
	if specialty == "" {
		specialty = DefaultSpecialty
	}
	return SignupBody{
		Email:     strings.TrimSpace(r.Email),
		Password:  r.Password,
		Name:      strings.TrimSpace(r.Name),
		RPPS:      strings.TrimSpace(r.RPPS),
		Specialty: specialty,
	}
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type MagicLinkRequest struct {
	MagicToken string `json:"magic_token" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
}

type UpdatePasswordRequest struct {
	Password        string `json:"password" validate:"required,password_policy"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

type AuthResponse struct {
	AuthToken string      `json:"authToken"`
	UserID    LooseString `json:"user_id"`
}

// MagicLinkResponse accepts the token either bare or wrapped in an object.
type MagicLinkResponse struct {
	AuthToken string
}

func (r *MagicLinkResponse) UnmarshalJSON(data []byte) error {
	var bare string
	if err := json.Unmarshal(data, &bare); err == nil {
		r.AuthToken = bare
		return nil
	}
	var wrapped struct {
		AuthToken string `json:"authToken"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return err
	}
	r.AuthToken = wrapped.AuthToken
	return nil
}

// LooseString decodes values the backend sends either as numbers or as strings.
type LooseString string

func (id *LooseString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*id = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = LooseString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = LooseString(n.String())
	return nil
}

type User struct {
	ID        int64       `json:"id"`
	Email     string      `json:"email"`
	Name      string      `json:"name"`
	RPPS      *string     `json:"rpps"`
	Specialty string      `json:"specialty"`
	Role      string      `json:"role"`
	IsActive  bool        `json:"is_active"`
	CreatedAt LooseString `json:"created_at"`
}
