package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("doctor12345")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.True(t, strings.HasPrefix(hash, "$2a$12$"), "hash should use cost %d", DefaultCost)

	assert.True(t, Verify("doctor12345", hash))
	assert.False(t, Verify("doctor12346", hash))
	assert.False(t, Verify("", hash))
}

func TestHashesAreSalted(t *testing.T) {
	a, err := Hash("doctor12345")
	require.NoError(t, err)
	b, err := Hash("doctor12345")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestVerify_GarbageHash(t *testing.T) {
	assert.False(t, Verify("doctor12345", "not-a-bcrypt-hash"))
	assert.False(t, Verify("doctor12345", ""))
}

func TestCompareDummy(t *testing.T) {
	assert.NotPanics(t, func() {
		CompareDummy()
		CompareDummy()
	})
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		pw   string
		want bool
	}{
		{"letters and digits", "doctor12345", true},
		{"exactly min length", "abcdef12", true},
		{"unicode letters", "пароль123", true},
		{"too short", "abc1234", false},
		{"only letters", "abcdefgh", false},
		{"only digits", "12345678", false},
		{"empty", "", false},
		{"symbols only", "!!!!!!!!", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Validate(tc.pw))
		})
	}
}
