package credential

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestVerifiers(t *testing.T) {
	bc, err := New(SchemeBcrypt, bcrypt.MinCost)
	require.NoError(t, err)
	plain, err := New(SchemePlain, 0)
	require.NoError(t, err)

	for name, v := range map[string]Verifier{"bcrypt": bc, "plain": plain} {
		t.Run(name, func(t *testing.T) {
			stored, err := v.Hash("p1")
			require.NoError(t, err)

			assert.NoError(t, v.Verify(stored, "p1"))
			assert.ErrorIs(t, v.Verify(stored, "P1"), ErrMismatch)
			assert.ErrorIs(t, v.Verify(stored, "p1 "), ErrMismatch)
			assert.ErrorIs(t, v.Verify(stored, ""), ErrMismatch)
		})
	}
}

func TestBcryptDoesNotStoreRaw(t *testing.T) {
	v := Bcrypt{Cost: bcrypt.MinCost}
	stored, err := v.Hash("secret")
	require.NoError(t, err)
	assert.NotEqual(t, "secret", stored)
}

func TestNewRejectsUnknownScheme(t *testing.T) {
	_, err := New("md5", 0)
	assert.Error(t, err)

	_, err = New(SchemeBcrypt, 99)
	assert.Error(t, err)
}

func TestBcryptLengthLimit(t *testing.T) {
	v := Bcrypt{Cost: bcrypt.MinCost}

	stored, err := v.Hash(strings.Repeat("a", MaxBcryptLength))
	require.NoError(t, err)
	assert.NoError(t, v.Verify(stored, strings.Repeat("a", MaxBcryptLength)))

	_, err = v.Hash(strings.Repeat("a", MaxBcryptLength+1))
	assert.ErrorIs(t, err, ErrTooLong)

	// A long presented credential is a mismatch, never a fault.
	assert.ErrorIs(t, v.Verify(stored, strings.Repeat("a", 100)), ErrMismatch)
}

func TestBcryptVerifyForeignStoredValue(t *testing.T) {
	v := Bcrypt{Cost: bcrypt.MinCost}

	tests := []struct {
		name   string
		stored string
	}{
		{name: "plain_row", stored: "p1"},
		{name: "empty", stored: ""},
		{name: "bad_prefix", stored: "$9$" + strings.Repeat("x", 57)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, v.Verify(tt.stored, "p1"), ErrMismatch)
		})
	}
}
