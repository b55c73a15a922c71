package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)

	token, expiresAt, err := m.GenerateToken("alice")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	username, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", username)
}

func TestTokenRejected(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	token, _, err := m.GenerateToken("alice")
	require.NoError(t, err)

	expired := NewTokenManager("secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _, err := expired.GenerateToken("alice")
	require.NoError(t, err)

	tests := []struct {
		name  string
		m     *TokenManager
		token string
	}{
		{name: "wrong_secret", m: NewTokenManager("other", time.Hour), token: token},
		{name: "expired", m: m, token: old},
		{name: "garbage", m: m, token: "not-a-token"},
		{name: "tampered", m: m, token: token + "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.m.ValidateToken(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
