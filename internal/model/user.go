package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"natours/internal/errors"
)

// Role is one of the fixed authorization roles a user can hold.
type Role string

const (
	RoleUser      Role = "user"
	RoleGuide     Role = "guide"
	RoleLeadGuide Role = "lead-guide"
	RoleAdmin     Role = "admin"
)

// Roles lists every valid role.
var Roles = []Role{RoleUser, RoleGuide, RoleLeadGuide, RoleAdmin}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleGuide, RoleLeadGuide, RoleAdmin:
		return true
	}
	return false
}

// passwordChangeSkew backdates PasswordChangedAt into the previous second so
// a token issued together with the change stays fresh.
const passwordChangeSkew = time.Second

var validate = validator.New()

// User is the credential record of a person using the API.
// Credential fields are never serialised.
type User struct {
	ID                   uuid.UUID      `json:"id" gorm:"type:char(36);primaryKey"`
	Name                 string         `json:"name" gorm:"size:255;not null" validate:"required,max=255"`
	Email                string         `json:"email" gorm:"uniqueIndex;size:255;not null" validate:"required,email"`
	Photo                string         `json:"photo,omitempty" gorm:"size:255"`
	Role                 Role           `json:"role" gorm:"size:20;not null;default:'user';index" validate:"required"`
	PasswordHash         string         `json:"-" gorm:"size:255;not null" validate:"required"`
	PasswordChangedAt    *time.Time     `json:"-"`
	PasswordResetToken   *string        `json:"-" gorm:"size:64;index"`
	PasswordResetExpires *time.Time     `json:"-"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
	DeletedAt            gorm.DeletedAt `json:"-" gorm:"index"`
}

// BeforeCreate sets UUID and default role before creating the record.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	return nil
}

// BeforeSave validates the record. Writes that must bypass validation run
// with hooks skipped.
func (u *User) BeforeSave(tx *gorm.DB) error {
	return u.Validate()
}

// Validate checks the record against its field constraints.
func (u *User) Validate() error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if err := validate.Struct(u); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidInput, err)
	}
	if !u.Role.Valid() {
		return fmt.Errorf("%w: unknown role %q", errors.ErrInvalidInput, u.Role)
	}
	if (u.PasswordResetToken == nil) != (u.PasswordResetExpires == nil) {
		return fmt.Errorf("%w: reset token and expiry must be set together", errors.ErrInvalidInput)
	}
	return nil
}

// ChangedPasswordAfter reports whether the password changed after a token
// issued at iat. Comparison is at second precision, matching JWT timestamps,
// so a change stamped in the token's own second marks it stale.
func (u *User) ChangedPasswordAfter(iat time.Time) bool {
	if u.PasswordChangedAt == nil {
		return false
	}
	return u.PasswordChangedAt.Unix() >= iat.Unix()
}

// SetPassword replaces the password hash, stamps the change time and drops
// any pending reset.
func (u *User) SetPassword(hash string, now time.Time) {
	changedAt := PasswordChangedAt(now)
	u.PasswordHash = hash
	u.PasswordChangedAt = &changedAt
	u.ClearPasswordReset()
}

// SetPasswordReset records a pending reset.
func (u *User) SetPasswordReset(tokenHash string, expires time.Time) {
	u.PasswordResetToken = &tokenHash
	u.PasswordResetExpires = &expires
}

// ClearPasswordReset drops a pending reset.
func (u *User) ClearPasswordReset() {
	u.PasswordResetToken = nil
	u.PasswordResetExpires = nil
}

// HasPendingReset reports whether a reset token is outstanding.
func (u *User) HasPendingReset() bool {
	return u.PasswordResetToken != nil && u.PasswordResetExpires != nil
}

// PasswordChangedAt returns the timestamp stored for a password changed at now.
func PasswordChangedAt(now time.Time) time.Time {
	return now.Add(-passwordChangeSkew)
}
