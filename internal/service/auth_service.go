package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/oops"
	"gorm.io/gorm"

	"natours/internal/auth"
	apperrors "natours/internal/errors"
	"natours/internal/logging"
	"natours/internal/mail"
	"natours/internal/model"
	"natours/internal/repository"
)

// dummyPassword is hashed once at construction so logins for unknown emails
// cost the same bcrypt work as real ones.
const dummyPassword = "natours-timing-equaliser"

// SignupInput carries the fields of a new account.
type SignupInput struct {
	Name            string
	Email           string
	Password        string
	PasswordConfirm string
}

// PasswordInput carries a new password and its confirmation.
type PasswordInput struct {
	Password        string
	PasswordConfirm string
}

// AuthService coordinates signup, login and the password lifecycle.
type AuthService interface {
	Signup(ctx context.Context, in SignupInput) (token string, user *model.User, err error)
	Login(ctx context.Context, email, password string) (token string, err error)
	ForgotPassword(ctx context.Context, email, resetURLBase string) error
	ResetPassword(ctx context.Context, rawToken string, in PasswordInput) (token string, err error)
	UpdatePassword(ctx context.Context, user *model.User, currentPassword string, in PasswordInput) (token string, err error)
}

type authService struct {
	users     repository.UserRepository
	hasher    auth.PasswordHasher
	tokens    *auth.JWTService
	mailer    mail.Sender
	logger    *slog.Logger
	now       func() time.Time
	dummyHash string
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	users repository.UserRepository,
	hasher auth.PasswordHasher,
	tokens *auth.JWTService,
	mailer mail.Sender,
	logger *slog.Logger,
) AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	// A failed dummy hash leaves dummyHash empty, which Verify rejects.
	dummyHash, _ := hasher.Hash(dummyPassword)
	return &authService{
		users:     users,
		hasher:    hasher,
		tokens:    tokens,
		mailer:    mailer,
		logger:    logger,
		now:       time.Now,
		dummyHash: dummyHash,
	}
}

func normaliseEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// hashPassword maps hasher rejections of the input to bad input.
func (s *authService) hashPassword(password string) (string, error) {
	digest, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, auth.ErrEmptyPassword) || errors.Is(err, auth.ErrPasswordTooLong) {
			return "", fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
		}
		return "", oops.Code("AUTH_HASH_FAILED").With("operation", "Hash").Wrap(err)
	}
	return digest, nil
}

func (s *authService) issue(user *model.User) (string, error) {
	token, err := s.tokens.Issue(user.ID.String())
	if err != nil {
		return "", oops.Code("AUTH_ISSUE_FAILED").With("operation", "Issue").Wrap(err)
	}
	return token, nil
}

// Signup creates a user with a hashed password and logs them in.
func (s *authService) Signup(ctx context.Context, in SignupInput) (string, *model.User, error) {
	if in.Password != in.PasswordConfirm {
		return "", nil, apperrors.ErrPasswordMismatch
	}
	email := normaliseEmail(in.Email)

	existing, err := s.users.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return "", nil, apperrors.ErrEmailTaken
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil, oops.Code("SIGNUP_FAILED").With("operation", "FindByEmail").Wrap(err)
	}

	digest, err := s.hashPassword(in.Password)
	if err != nil {
		return "", nil, err
	}

	user := &model.User{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: digest,
		Role:         model.RoleUser,
	}
	if err := user.Validate(); err != nil {
		return "", nil, err
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return "", nil, apperrors.ErrEmailTaken
		}
		return "", nil, oops.Code("SIGNUP_FAILED").With("operation", "Create").Wrap(err)
	}

	token, err := s.issue(user)
	if err != nil {
		return "", nil, err
	}
	s.logger.InfoContext(ctx, "user signed up", "user_id", user.ID.String())
	return token, user, nil
}

// Login verifies credentials and issues a session token. An unknown email and
// a wrong password return the same error after the same amount of work.
func (s *authService) Login(ctx context.Context, email, password string) (string, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return "", apperrors.ErrMissingLoginFields
	}

	user, err := s.users.FindByEmail(ctx, normaliseEmail(email))
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", oops.Code("LOGIN_FAILED").With("operation", "FindByEmail").Wrap(err)
	}

	digest := s.dummyHash
	if user != nil {
		digest = user.PasswordHash
	}
	matched := s.hasher.Verify(password, digest)

	if user == nil || !matched {
		return "", apperrors.ErrIncorrectCredentials
	}

	return s.issue(user)
}

// ForgotPassword stores a reset token hash for the user and mails the raw
// token inside a link built from resetURLBase. A failed send rolls the
// pending reset back.
func (s *authService) ForgotPassword(ctx context.Context, email, resetURLBase string) error {
	user, err := s.users.FindByEmail(ctx, normaliseEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUserNotFound
		}
		return oops.Code("FORGOT_PASSWORD_FAILED").With("operation", "FindByEmail").Wrap(err)
	}

	raw, hash, expires, err := auth.GenerateResetToken(s.now())
	if err != nil {
		return oops.Code("FORGOT_PASSWORD_FAILED").With("operation", "GenerateResetToken").Wrap(err)
	}

	if err := s.users.SetPasswordReset(ctx, user.ID, hash, expires); err != nil {
		return oops.Code("FORGOT_PASSWORD_FAILED").With("operation", "SetPasswordReset").Wrap(err)
	}

	resetURL := strings.TrimRight(resetURLBase, "/") + "/" + raw
	if sendErr := s.mailer.Send(ctx, mail.PasswordResetMessage(user.Email, resetURL)); sendErr != nil {
		s.logger.WarnContext(ctx, "reset email not delivered", "user_id", user.ID.String(), logging.Err(sendErr))

		// The request may be cancelled already; the rollback must still run.
		if clearErr := s.users.ClearPasswordReset(context.WithoutCancel(ctx), user.ID); clearErr != nil {
			s.logger.ErrorContext(ctx, "reset rollback failed", "user_id", user.ID.String(), logging.Err(clearErr))
			return errors.Join(apperrors.ErrEmailDelivery, sendErr, clearErr)
		}
		return errors.Join(apperrors.ErrEmailDelivery, sendErr)
	}

	return nil
}

// ResetPassword consumes a reset token, sets the new password and logs the
// user in.
func (s *authService) ResetPassword(ctx context.Context, rawToken string, in PasswordInput) (string, error) {
	if rawToken == "" {
		return "", apperrors.ErrInvalidResetToken
	}
	now := s.now()
	hash := auth.HashResetToken(rawToken)

	user, err := s.users.FindByResetToken(ctx, hash, now)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperrors.ErrInvalidResetToken
		}
		return "", oops.Code("RESET_PASSWORD_FAILED").With("operation", "FindByResetToken").Wrap(err)
	}
	if !user.HasPendingReset() || !auth.VerifyResetToken(rawToken, *user.PasswordResetToken, *user.PasswordResetExpires, now) {
		return "", apperrors.ErrInvalidResetToken
	}

	if in.Password != in.PasswordConfirm {
		return "", apperrors.ErrPasswordMismatch
	}
	digest, err := s.hashPassword(in.Password)
	if err != nil {
		return "", err
	}

	consumed, err := s.users.ConsumeResetToken(ctx, user.ID, hash, now, digest)
	if err != nil {
		return "", oops.Code("RESET_PASSWORD_FAILED").With("operation", "ConsumeResetToken").Wrap(err)
	}
	if !consumed {
		return "", apperrors.ErrInvalidResetToken
	}

	s.logger.InfoContext(ctx, "password reset", "user_id", user.ID.String())
	return s.issue(user)
}

// UpdatePassword changes the password of an authenticated user after checking
// the current one. Every token issued before the change becomes stale; the
// returned token is fresh.
func (s *authService) UpdatePassword(ctx context.Context, user *model.User, currentPassword string, in PasswordInput) (string, error) {
	if user == nil {
		return "", apperrors.ErrNotAuthenticated
	}
	if !s.hasher.Verify(currentPassword, user.PasswordHash) {
		return "", apperrors.ErrIncorrectPassword
	}
	if in.Password != in.PasswordConfirm {
		return "", apperrors.ErrPasswordMismatch
	}

	digest, err := s.hashPassword(in.Password)
	if err != nil {
		return "", err
	}
	user.SetPassword(digest, s.now())
	if err := s.users.Save(ctx, user); err != nil {
		return "", oops.Code("UPDATE_PASSWORD_FAILED").With("operation", "Save").Wrap(err)
	}

	s.logger.InfoContext(ctx, "password changed", "user_id", user.ID.String())
	return s.issue(user)
}
