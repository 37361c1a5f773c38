package utils

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("Passw0rd!")
	require.NoError(t, err)
	assert.NotEqual(t, "Passw0rd!", hash)

	assert.True(t, CheckPasswordHash("Passw0rd!", hash))
	assert.False(t, CheckPasswordHash("passw0rd!", hash))
	assert.False(t, CheckPasswordHash("", hash))
}

func TestGenerateOTPRange(t *testing.T) {
	for i := 0; i < 1000; i++ {
		otp := GenerateOTP()
		require.GreaterOrEqual(t, otp, 1000)
		require.LessOrEqual(t, otp, 9999)
	}
}

func TestStrongPasswordValidator(t *testing.T) {
	type payload struct {
		Password string `validate:"required,min=6,strongpassword"`
	}

	cases := []struct {
		password string
		valid    bool
	}{
		{"Passw0rd!", true},
		{"aB3$xy", true},
		{"password1!", false}, // no uppercase
		{"PASSWORD1!", false}, // no lowercase
		{"Password!", false},  // no digit
		{"Password1", false},  // no symbol
		{"aB1!", false},       // too short
	}

	for _, tc := range cases {
		errs := ValidateStruct(payload{Password: tc.password})
		if tc.valid {
			assert.Empty(t, errs, tc.password)
		} else {
			assert.Contains(t, errs, "Password", tc.password)
		}
	}
}

func TestGenerateUUIDIsUnique(t *testing.T) {
	assert.NotEqual(t, GenerateUUID(), GenerateUUID())
}

func TestPaginationMath(t *testing.T) {
	assert.Equal(t, 0, CalculateOffset(0, 10))
	assert.Equal(t, 0, CalculateOffset(1, 10))
	assert.Equal(t, 20, CalculateOffset(3, 10))

	assert.Equal(t, 0, CalculateTotalPages(0, 10))
	assert.Equal(t, 3, CalculateTotalPages(25, 10))
	assert.Equal(t, 1, CalculateTotalPages(10, 10))
}

func TestFormatValidationErrors(t *testing.T) {
	out := FormatValidationErrors(map[string]string{"Email": "Invalid email format"})
	assert.Equal(t, "Email: Invalid email format", out)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(NewAppError(KindNotFound, "User not found")))
	assert.Equal(t, KindInternal, KindOf(errors.New("plain error")))
	assert.Equal(t, KindInternal, KindOf(nil))

	wrapped := fmt.Errorf("outer: %w", NewAppError(KindConflict, "Email already exists"))
	assert.Equal(t, KindConflict, KindOf(wrapped))
}

func TestMessageOfHidesUntypedErrors(t *testing.T) {
	assert.Equal(t, "User not found", MessageOf(NewAppError(KindNotFound, "User not found")))
	assert.NotContains(t, MessageOf(errors.New("pq: secret dsn leak")), "dsn")
}

func TestAppErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := WrapAppError(KindInternal, "Login failed", cause)
	assert.ErrorIs(t, err, cause)
}
