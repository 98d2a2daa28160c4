package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"natours/internal/errors"
)

func validUser() *User {
	return &User{Name: "Ann", Email: " Ann@Example.COM ", Role: RoleUser, PasswordHash: "digest"}
}

func TestUser_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*User)
		wantErr bool
	}{
		{name: "valid", mutate: func(*User) {}},
		{name: "missing name", mutate: func(u *User) { u.Name = "" }, wantErr: true},
		{name: "bad email", mutate: func(u *User) { u.Email = "nope" }, wantErr: true},
		{name: "unknown role", mutate: func(u *User) { u.Role = "root" }, wantErr: true},
		{name: "missing hash", mutate: func(u *User) { u.PasswordHash = "" }, wantErr: true},
		{
			name: "reset token without expiry",
			mutate: func(u *User) {
				token := "abc"
				u.PasswordResetToken = &token
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := validUser()
			tt.mutate(u)

			err := u.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, errors.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "ann@example.com", u.Email)
		})
	}
}

func TestUser_ChangedPasswordAfter(t *testing.T) {
	iat := time.Unix(1_700_000_000, 0)

	tests := []struct {
		name      string
		changedAt *time.Time
		want      bool
	}{
		{name: "never changed", changedAt: nil, want: false},
		{name: "changed before issue", changedAt: ptr(iat.Add(-time.Hour)), want: false},
		{name: "changed in the previous second", changedAt: ptr(iat.Add(-500 * time.Millisecond)), want: false},
		{name: "changed in the same second", changedAt: ptr(iat.Add(500 * time.Millisecond)), want: true},
		{name: "changed after issue", changedAt: ptr(iat.Add(time.Second)), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &User{PasswordChangedAt: tt.changedAt}
			assert.Equal(t, tt.want, u.ChangedPasswordAfter(iat))
		})
	}
}

func TestUser_SetPassword(t *testing.T) {
	now := time.Now()
	u := validUser()
	u.SetPasswordReset("hash", now.Add(time.Minute))
	require.True(t, u.HasPendingReset())

	u.SetPassword("new-digest", now)

	assert.Equal(t, "new-digest", u.PasswordHash)
	assert.False(t, u.HasPendingReset())
	require.NotNil(t, u.PasswordChangedAt)
	assert.Equal(t, now.Add(-time.Second), *u.PasswordChangedAt)
	assert.False(t, u.ChangedPasswordAfter(now), "a token issued at the change must stay fresh")
}

func TestRole_Valid(t *testing.T) {
	for _, r := range Roles {
		assert.True(t, r.Valid(), r)
	}
	assert.False(t, Role("superuser").Valid())
}

func TestTour_Validate(t *testing.T) {
	tour := &Tour{
		Name:         "The Forest Hiker",
		Duration:     5,
		MaxGroupSize: 25,
		Difficulty:   DifficultyEasy,
		Price:        decimal.NewFromInt(397),
		Summary:      "Breathtaking hike",
		ImageCover:   "tour-1-cover.jpg",
	}
	require.NoError(t, tour.Validate())

	discount := decimal.NewFromInt(397)
	tour.PriceDiscount = &discount
	assert.ErrorIs(t, tour.Validate(), errors.ErrInvalidInput)
}

func ptr(t time.Time) *time.Time { return &t }
