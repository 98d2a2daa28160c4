package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// DefaultTokenExpiry is the session lifetime used when none is configured.
const DefaultTokenExpiry = 90 * 24 * time.Hour

var (
	// ErrExpiredToken is returned when a session token is past its expiry.
	ErrExpiredToken = errors.New("token has expired")
	// ErrInvalidSignature is returned when a session token is malformed, signed
	// with another key or algorithm, or missing required claims.
	ErrInvalidSignature = errors.New("token signature is invalid")
)

// Claims represents session token claims.
type Claims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

// IssuedAtTime returns the issue time carried by the token.
func (c *Claims) IssuedAtTime() time.Time {
	if c.IssuedAt == nil {
		return time.Time{}
	}
	return c.IssuedAt.Time
}

// JWTService signs and verifies session tokens.
type JWTService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// JWTOption configures a JWTService.
type JWTOption func(*JWTService)

// WithClock overrides the clock used to stamp issued tokens.
func WithClock(now func() time.Time) JWTOption {
	return func(s *JWTService) { s.now = now }
}

// NewJWTService creates a new JWT service with the given secret and token lifetime.
func NewJWTService(secret string, ttl time.Duration, opts ...JWTOption) *JWTService {
	if ttl <= 0 {
		ttl = DefaultTokenExpiry
	}
	s := &JWTService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TTL returns the configured token lifetime.
func (s *JWTService) TTL() time.Duration {
	return s.ttl
}

// Issue signs a token for the user that expires after the configured TTL.
// Each token carries a unique ID, so two tokens issued in the same second differ.
func (s *JWTService) Issue(userID string) (string, error) {
	now := s.now()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify validates a token and returns its claims. The error wraps
// ErrExpiredToken or ErrInvalidSignature.
func (s *JWTService) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		// Expiry is only reported when it is the sole failure, so a forged
		// token that also happens to be expired reads as a bad signature.
		var ve *jwt.ValidationError
		if errors.As(err, &ve) && ve.Errors == jwt.ValidationErrorExpired {
			return nil, fmt.Errorf("%w: %v", ErrExpiredToken, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidSignature
	}
	if claims.UserID == "" || claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return nil, fmt.Errorf("%w: missing required claims", ErrInvalidSignature)
	}

	return claims, nil
}
