package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type registerForm struct {
	Name                 string `json:"name" validate:"required,min=2,max=255"`
	Email                string `json:"email" validate:"required,email"`
	TeamName             string `json:"team_name" validate:"required,oneof=A B C D E F G H"`
	Password             string `json:"password" validate:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
}

func TestFieldsValid(t *testing.T) {
	form := registerForm{
		Name:                 "Alice",
		Email:                "alice@example.com",
		TeamName:             "A",
		Password:             "password123",
		PasswordConfirmation: "password123",
	}
	assert.Nil(t, Fields(form))
}

func TestFieldsCollectsAllViolations(t *testing.T) {
	errs := Fields(registerForm{})
	require.NotNil(t, errs)

	// Every broken field reports at once, keyed by json name.
	assert.Len(t, errs, 5)
	assert.Equal(t, "name is required", errs["name"])
	assert.Equal(t, "email is required", errs["email"])
	assert.Equal(t, "team_name is required", errs["team_name"])
	assert.Equal(t, "password is required", errs["password"])
	assert.Equal(t, "password_confirmation is required", errs["password_confirmation"])
}

func TestFieldsMessages(t *testing.T) {
	errs := Fields(registerForm{
		Name:                 "A",
		Email:                "not-an-email",
		TeamName:             "Z",
		Password:             "short",
		PasswordConfirmation: "different",
	})
	require.NotNil(t, errs)

	assert.Equal(t, "must be at least 2 characters", errs["name"])
	assert.Equal(t, "must be a valid email address", errs["email"])
	assert.Equal(t, "must be one of: A, B, C, D, E, F, G, H", errs["team_name"])
	assert.Equal(t, "must be at least 8 characters", errs["password"])
	assert.Equal(t, "does not match password", errs["password_confirmation"])
}

func TestFieldsRangeTags(t *testing.T) {
	type rating struct {
		Score  int    `json:"score" validate:"required,gte=1,lte=5"`
		Reason string `json:"reason" validate:"required,max=10"`
	}

	errs := Fields(rating{Score: 6, Reason: "way too long for ten"})
	require.NotNil(t, errs)
	assert.Equal(t, "must be 5 or less", errs["score"])
	assert.Equal(t, "must be at most 10 characters", errs["reason"])
}
