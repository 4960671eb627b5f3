package dto

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRegister() RegisterRequest {
	return RegisterRequest{
		Email:           "dr.martin@example.fr",
		Password:        "Tympan#2024",
		ConfirmPassword: "Tympan#2024",
		Name:            "Dr Martin",
	}
}

func TestValidateRegister(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RegisterRequest)
		field  string
		rule   string
	}{
		{"valid", func(*RegisterRequest) {}, "", ""},
		{"valid with rpps", func(r *RegisterRequest) { r.RPPS = "10101010101" }, "", ""},
		{"bad email", func(r *RegisterRequest) { r.Email = "martin" }, "email", "email"},
		{"short password", func(r *RegisterRequest) { r.Password, r.ConfirmPassword = "Ab1!", "Ab1!" }, "password", "password_policy"},
		{"no upper", func(r *RegisterRequest) { r.Password, r.ConfirmPassword = "tympan#2024", "tympan#2024" }, "password", "password_policy"},
		{"no digit", func(r *RegisterRequest) { r.Password, r.ConfirmPassword = "Tympan#abcd", "Tympan#abcd" }, "password", "password_policy"},
		{"no special", func(r *RegisterRequest) { r.Password, r.ConfirmPassword = "Tympan2024", "Tympan2024" }, "password", "password_policy"},
		{"mismatch", func(r *RegisterRequest) { r.ConfirmPassword = "Tympan#2025" }, "confirm_password", "eqfield"},
		{"short name", func(r *RegisterRequest) { r.Name = "M" }, "name", "min"},
		{"short rpps", func(r *RegisterRequest) { r.RPPS = "12345" }, "rpps", "rpps"},
		{"letters in rpps", func(r *RegisterRequest) { r.RPPS = "1010101010a" }, "rpps", "rpps"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRegister()
			tt.mutate(&req)

			err := Validate(&req)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation))
			var vErr *ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, tt.field, vErr.Field)
			assert.Equal(t, tt.rule, vErr.Rule)
			assert.NotEmpty(t, vErr.Message)
		})
	}
}

func TestValidateLogin(t *testing.T) {
	assert.NoError(t, Validate(&LoginRequest{Email: "a@b.fr", Password: "x"}))

	err := Validate(&LoginRequest{Email: "a@b.fr"})
	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "password", vErr.Field)
	assert.Equal(t, "is required", vErr.Message)
}

func TestPasswordPolicyViolation(t *testing.T) {
	assert.Empty(t, PasswordPolicyViolation("Cochlee 42"))
	assert.Equal(t, "must contain a digit", PasswordPolicyViolation("Cochlee!!"))
	assert.Equal(t, "must be at least 8 characters", PasswordPolicyViolation(""))
}

func TestRegisterBodyDefaults(t *testing.T) {
	req := validRegister()
	req.Email = "  dr.martin@example.fr "

	body := req.Body()
	assert.Equal(t, "dr.martin@example.fr", body.Email)
	assert.Equal(t, DefaultSpecialty, body.Specialty)

	raw, err := json.Marshal(body)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "confirm")
	assert.NotContains(t, string(raw), "rpps")
}

func TestAuthResponseDecoding(t *testing.T) {
	var numeric AuthResponse
	require.NoError(t, json.Unmarshal([]byte(`{"authToken":"t1","user_id":42}`), &numeric))
	assert.Equal(t, "t1", numeric.AuthToken)
	assert.Equal(t, LooseString("42"), numeric.UserID)

	var text AuthResponse
	require.NoError(t, json.Unmarshal([]byte(`{"authToken":"t2","user_id":"abc"}`), &text))
	assert.Equal(t, LooseString("abc"), text.UserID)

	var bare MagicLinkResponse
	require.NoError(t, json.Unmarshal([]byte(`"t3"`), &bare))
	assert.Equal(t, "t3", bare.AuthToken)

	var wrapped MagicLinkResponse
	require.NoError(t, json.Unmarshal([]byte(`{"authToken":"t4"}`), &wrapped))
	assert.Equal(t, "t4", wrapped.AuthToken)
}
