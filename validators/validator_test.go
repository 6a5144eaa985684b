package validators

import (
	"testing"

	"github.com/anonto42/odin-book/backend/internal/apperr"
	"github.com/anonto42/odin-book/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSignup() models.SignupRequest {
	return models.SignupRequest{
		Username:        "jdoe",
		FirstName:       "Jane",
		LastName:        "Doe",
		Email:           "jane@example.com",
		Password:        "Passw0rd",
		PasswordConfirm: "Passw0rd",
	}
}

func TestIsStrongPassword(t *testing.T) {
	cases := map[string]bool{
		"Passw0rd":      true,
		"abcDEF123":     true,
		"short1A":       false,
		"alllowercase1": false,
		"ALLUPPER123":   false,
		"NoDigitsHere":  false,
		"Bad pass 1A":   false,
		"Sym!bol12aB":   false,
	}
	for in, want := range cases {
		assert.Equal(t, want, IsStrongPassword(in), in)
	}
}

func TestValidateSignupUsernameLength(t *testing.T) {
	v := NewValidator()

	req := validSignup()
	req.Username = "abc"
	err := v.Validate(req)
	require.Error(t, err)

	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, apperr.KindValidation, ae.Kind)
	require.Len(t, ae.Fields, 1)
	assert.Equal(t, "username", ae.Fields[0].Field)

	req.Username = "abcd"
	assert.NoError(t, v.Validate(req))
}

func TestValidateSignupPasswordMismatch(t *testing.T) {
	v := NewValidator()
	req := validSignup()
	req.PasswordConfirm = "Passw0rd2"

	var ae *apperr.Error
	require.ErrorAs(t, v.Validate(req), &ae)
	require.Len(t, ae.Fields, 1)
	assert.Equal(t, "password_confirm", ae.Fields[0].Field)
	assert.Equal(t, "passwords do not match", ae.Fields[0].Message)
}

func TestValidateReportsEveryField(t *testing.T) {
	v := NewValidator()

	var ae *apperr.Error
	require.ErrorAs(t, v.Validate(models.SignupRequest{}), &ae)
	fields := make([]string, 0, len(ae.Fields))
	for _, f := range ae.Fields {
		fields = append(fields, f.Field)
	}
	assert.ElementsMatch(t, []string{"username", "first_name", "last_name", "email", "password", "password_confirm"}, fields)
}

func TestValidateTrimsBeforeLengthRules(t *testing.T) {
	v := NewValidator()

	req := validSignup()
	req.Username = "  abc  "
	var ae *apperr.Error
	require.ErrorAs(t, v.Validate(&req), &ae)
	require.Len(t, ae.Fields, 1)
	assert.Equal(t, "username", ae.Fields[0].Field)
	assert.Equal(t, "abc", req.Username)

	req = validSignup()
	req.Username = "  abcd "
	req.FirstName = " Jane "
	require.NoError(t, v.Validate(&req))
	assert.Equal(t, "abcd", req.Username)
	assert.Equal(t, "Jane", req.FirstName)

	post := models.CreatePostRequest{Text: "   "}
	require.ErrorAs(t, v.Validate(&post), &ae)
	assert.Equal(t, "text", ae.Fields[0].Field)

	comment := models.UpdateCommentRequest{Text: "\n\t"}
	require.ErrorAs(t, v.Validate(&comment), &ae)
	assert.Equal(t, "text", ae.Fields[0].Field)
}
