package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirill-oleynik/signup-service/pkg/models"
)

func validSignUpRequest() models.SignUpRequest {
	return models.SignUpRequest{
		FirstName:            "A",
		LastName:             "B",
		Email:                "a@b.com",
		Password:             "secret",
		PasswordConfirmation: "secret",
	}
}

func TestValidateFieldsValidRequest(t *testing.T) {
	assert.Nil(t, ValidateFields(validSignUpRequest()))
}

func TestValidateFieldsMissingEmail(t *testing.T) {
	req := validSignUpRequest()
	req.Email = ""

	fieldErrors := ValidateFields(req)
	require.NotNil(t, fieldErrors)

	// Errors are keyed by the wire name, not the Go field name.
	require.Contains(t, fieldErrors, "email")
	assert.NotEmpty(t, fieldErrors["email"])
	assert.Equal(t, "is missing", fieldErrors["email"][0])
	assert.Len(t, fieldErrors, 1)
}

func TestValidateFieldsBadEmailFormat(t *testing.T) {
	req := validSignUpRequest()
	req.Email = "not-an-email"

	fieldErrors := ValidateFields(req)
	require.Contains(t, fieldErrors, "email")
	assert.Equal(t, "must be a valid email address", fieldErrors["email"][0])
}

func TestValidateFieldsShortPassword(t *testing.T) {
	req := validSignUpRequest()
	req.Password = "abc"
	req.PasswordConfirmation = "abc"

	fieldErrors := ValidateFields(req)
	require.Contains(t, fieldErrors, "password")
	assert.Equal(t, "must be at least 6 characters long", fieldErrors["password"][0])
}

func TestValidateFieldsConfirmationMismatch(t *testing.T) {
	req := validSignUpRequest()
	req.PasswordConfirmation = "different"

	fieldErrors := ValidateFields(req)
	require.Contains(t, fieldErrors, "password_confirmation")
	assert.Equal(t, "must match password", fieldErrors["password_confirmation"][0])
}

func TestValidateFieldsCollectsEveryInvalidField(t *testing.T) {
	fieldErrors := ValidateFields(models.SignUpRequest{})
	require.NotNil(t, fieldErrors)

	for _, field := range []string{"first_name", "last_name", "email", "password", "password_confirmation"} {
		assert.Contains(t, fieldErrors, field)
	}
}
