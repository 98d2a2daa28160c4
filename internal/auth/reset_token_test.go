package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"natours/internal/auth"
)

func TestGenerateResetToken(t *testing.T) {
	now := time.Now()

	t.Run("generates secure token", func(t *testing.T) {
		token, hash, expires, err := auth.GenerateResetToken(now)
		require.NoError(t, err)
		assert.Len(t, token, 64) // 32 bytes hex-encoded
		assert.Len(t, hash, 64)  // sha256 hex
		assert.NotEqual(t, token, hash)
		assert.Equal(t, now.Add(10*time.Minute), expires)
		assert.Equal(t, hash, auth.HashResetToken(token))
	})

	t.Run("generates unique tokens", func(t *testing.T) {
		token1, hash1, _, err := auth.GenerateResetToken(now)
		require.NoError(t, err)
		token2, hash2, _, err := auth.GenerateResetToken(now)
		require.NoError(t, err)
		assert.NotEqual(t, token1, token2)
		assert.NotEqual(t, hash1, hash2)
	})
}

func TestVerifyResetToken(t *testing.T) {
	requestedAt := time.Now()
	token, hash, expires, err := auth.GenerateResetToken(requestedAt)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		hash  string
		at    time.Time
		want  bool
	}{
		{"valid within window", token, hash, requestedAt.Add(5 * time.Minute), true},
		{"wrong token", "deadbeef", hash, requestedAt, false},
		{"raw token compared to itself", token, token, requestedAt, false},
		{"empty token", "", hash, requestedAt, false},
		{"empty hash", token, "", requestedAt, false},
		{"exactly at expiry", token, hash, requestedAt.Add(10 * time.Minute), false},
		{"after expiry", token, hash, requestedAt.Add(11 * time.Minute), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, auth.VerifyResetToken(tt.token, tt.hash, expires, tt.at))
		})
	}
}
