package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"time"

	"github.com/samber/oops"
)

// Reset token configuration.
const (
	ResetTokenBytes  = 32               // 32 bytes = 64 hex chars
	ResetTokenExpiry = 10 * time.Minute // fixed policy window
)

// GenerateResetToken creates a random reset token, its hash and its expiry.
// Only the hash and expiry are stored; the raw token goes to the user.
func GenerateResetToken(now time.Time) (token, hash string, expiresAt time.Time, err error) {
	tokenBytes := make([]byte, ResetTokenBytes)
	if _, err = rand.Read(tokenBytes); err != nil {
		return "", "", time.Time{}, oops.Code("RESET_TOKEN_GENERATE_FAILED").Wrap(err)
	}

	token = hex.EncodeToString(tokenBytes)
	return token, HashResetToken(token), now.Add(ResetTokenExpiry), nil
}

// HashResetToken computes the SHA256 hex digest used to look up a reset token.
func HashResetToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// VerifyResetToken reports whether token hashes to storedHash and the stored
// expiry is still ahead of now.
func VerifyResetToken(token, storedHash string, storedExpiry, now time.Time) bool {
	if token == "" || storedHash == "" {
		return false
	}
	if !storedExpiry.After(now) {
		return false
	}
	computed := HashResetToken(token)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(storedHash)) == 1
}
