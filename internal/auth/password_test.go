package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashPasswordRoundTrip(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("Abcd1234!", DefaultBcryptCost)
	require.NoError(t, err)
	require.NotEqual(t, "Abcd1234!", hash)

	require.True(t, CheckPassword("Abcd1234!", hash))
	require.False(t, CheckPassword("abcd1234!", hash))
}

func TestHashPasswordSalted(t *testing.T) {
	t.Parallel()

	first, err := HashPassword("Abcd1234!", DefaultBcryptCost)
	require.NoError(t, err)
	second, err := HashPassword("Abcd1234!", DefaultBcryptCost)
	require.NoError(t, err)

	require.NotEqual(t, first, second)
}

func TestHashPasswordRejectsEmpty(t *testing.T) {
	t.Parallel()

	_, err := HashPassword("", DefaultBcryptCost)
	require.ErrorIs(t, err, ErrEmptyPassword)
}

func TestCheckPasswordMalformedDigest(t *testing.T) {
	t.Parallel()

	require.False(t, CheckPassword("Abcd1234!", "not-a-bcrypt-digest"))
}

func TestValidatePasswordStrength(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		password string
		problems int
	}{
		{"acceptable", "Abcd1234!", 0},
		{"too short", "Ab1!", 1},
		{"no uppercase", "abcd1234!", 1},
		{"no lowercase", "ABCD1234!", 1},
		{"no digit", "Abcdefgh!", 1},
		{"no special", "Abcd12345", 1},
		{"everything wrong", "abc", 4},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Len(t, ValidatePasswordStrength(tc.password), tc.problems)
		})
	}
}
