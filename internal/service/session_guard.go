package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/samber/oops"
	"gorm.io/gorm"

	"natours/internal/auth"
	apperrors "natours/internal/errors"
	"natours/internal/model"
	"natours/internal/repository"
)

// SessionGuard turns a bearer token into the current user record.
// It keeps no session state; every call reads the user store.
type SessionGuard struct {
	tokens *auth.JWTService
	users  repository.UserRepository
}

// NewSessionGuard creates a guard backed by the token service and user store.
func NewSessionGuard(tokens *auth.JWTService, users repository.UserRepository) *SessionGuard {
	return &SessionGuard{tokens: tokens, users: users}
}

// Verify checks the token's signature and expiry.
func (g *SessionGuard) Verify(token string) (*auth.Claims, error) {
	claims, err := g.tokens.Verify(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrInvalidSession, err)
	}
	return claims, nil
}

// Admit loads the token's user and rejects sessions that predate the last
// password change. Existence is checked before freshness.
func (g *SessionGuard) Admit(ctx context.Context, claims *auth.Claims) (*model.User, error) {
	if claims == nil {
		return nil, apperrors.ErrInvalidSession
	}
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, apperrors.ErrInvalidSession
	}

	user, err := g.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNoLongerExists
		}
		return nil, oops.Code("SESSION_LOOKUP_FAILED").With("operation", "FindByID").Wrap(err)
	}

	if user.ChangedPasswordAfter(claims.IssuedAtTime()) {
		return nil, apperrors.ErrStaleSession
	}
	return user, nil
}

// Authenticate runs verification and admission for a raw token.
func (g *SessionGuard) Authenticate(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, apperrors.ErrMissingCredentials
	}
	claims, err := g.Verify(token)
	if err != nil {
		return nil, err
	}
	return g.Admit(ctx, claims)
}
