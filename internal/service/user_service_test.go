package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "natours/internal/errors"
	"natours/internal/model"
	"natours/internal/testutil"
)

func TestUserService(t *testing.T) {
	store := testutil.NewUserStore()
	user := &model.User{ID: uuid.New(), Name: "A", Email: "a@x.io", Role: model.RoleGuide, PasswordHash: "x"}
	store.Put(user)
	svc := NewUserService(store)

	got, err := svc.GetUser(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleGuide, got.Role)

	users, err := svc.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 1)

	require.NoError(t, svc.DeleteUser(context.Background(), user.ID))

	_, err = svc.GetUser(context.Background(), user.ID)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
	assert.ErrorIs(t, svc.DeleteUser(context.Background(), user.ID), apperrors.ErrUserNotFound)
}
