package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"natours/internal/auth"
	"natours/internal/errors"
	"natours/internal/model"
)

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name    string
		user    *model.User
		allowed []model.Role
		wantErr error
	}{
		{"admin allowed", &model.User{Role: model.RoleAdmin}, []model.Role{model.RoleAdmin, model.RoleLeadGuide}, nil},
		{"lead guide allowed", &model.User{Role: model.RoleLeadGuide}, []model.Role{model.RoleAdmin, model.RoleLeadGuide}, nil},
		{"guide forbidden", &model.User{Role: model.RoleGuide}, []model.Role{model.RoleAdmin, model.RoleLeadGuide}, errors.ErrForbidden},
		{"user forbidden", &model.User{Role: model.RoleUser}, []model.Role{model.RoleAdmin}, errors.ErrForbidden},
		{"empty allowed set forbids", &model.User{Role: model.RoleAdmin}, nil, errors.ErrForbidden},
		{"nil user fails closed", nil, []model.Role{model.RoleUser}, errors.ErrNotAuthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := auth.Authorize(tt.user, tt.allowed...)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
