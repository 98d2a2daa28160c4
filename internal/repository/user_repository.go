package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"natours/internal/model"
)

// UserRepository defines user persistence operations. Lookups return
// gorm.ErrRecordNotFound when nothing matches.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	// Save writes the full record after validating it.
	Save(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// FindByResetToken finds the user whose pending reset hash matches and
	// has not expired at now.
	FindByResetToken(ctx context.Context, tokenHash string, now time.Time) (*model.User, error)
	// SetPasswordReset stores a pending reset without validating the rest of
	// the record.
	SetPasswordReset(ctx context.Context, id uuid.UUID, tokenHash string, expires time.Time) error
	// ClearPasswordReset drops a pending reset without validating the rest of
	// the record.
	ClearPasswordReset(ctx context.Context, id uuid.UUID) error
	// ConsumeResetToken sets the new password and clears the reset in one
	// conditional write. It reports false when the token was already used or
	// expired in the meantime.
	ConsumeResetToken(ctx context.Context, id uuid.UUID, tokenHash string, now time.Time, passwordHash string) (bool, error)
	List(ctx context.Context) ([]model.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository builds a GORM-backed repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// relaxed skips model hooks, and with them validation.
func (r *userRepository) relaxed(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Session(&gorm.Session{SkipHooks: true})
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) Save(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByResetToken(ctx context.Context, tokenHash string, now time.Time) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).
		Where("password_reset_token = ? AND password_reset_expires > ?", tokenHash, now).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) SetPasswordReset(ctx context.Context, id uuid.UUID, tokenHash string, expires time.Time) error {
	return r.relaxed(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"password_reset_token":   tokenHash,
			"password_reset_expires": expires,
		}).Error
}

func (r *userRepository) ClearPasswordReset(ctx context.Context, id uuid.UUID) error {
	return r.relaxed(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"password_reset_token":   nil,
			"password_reset_expires": nil,
		}).Error
}

func (r *userRepository) ConsumeResetToken(ctx context.Context, id uuid.UUID, tokenHash string, now time.Time, passwordHash string) (bool, error) {
	res := r.relaxed(ctx).Model(&model.User{}).
		Where("id = ? AND password_reset_token = ? AND password_reset_expires > ?", id, tokenHash, now).
		Updates(map[string]interface{}{
			"password_hash":          passwordHash,
			"password_changed_at":    model.PasswordChangedAt(now),
			"password_reset_token":   nil,
			"password_reset_expires": nil,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *userRepository) List(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).Order("created_at").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.User{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
