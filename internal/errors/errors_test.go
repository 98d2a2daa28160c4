package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorToHTTP(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{"missing login fields", ErrMissingLoginFields, http.StatusBadRequest, "MISSING_CREDENTIALS", ErrMissingLoginFields.Error()},
		{"wrapped stale session", fmt.Errorf("admit: %w", ErrStaleSession), http.StatusUnauthorized, "STALE_SESSION", ErrStaleSession.Error()},
		{"forbidden", ErrForbidden, http.StatusForbidden, "FORBIDDEN", ErrForbidden.Error()},
		{"user not found", ErrUserNotFound, http.StatusNotFound, "USER_NOT_FOUND", ErrUserNotFound.Error()},
		{"email taken", ErrEmailTaken, http.StatusConflict, "EMAIL_TAKEN", ErrEmailTaken.Error()},
		{"email delivery", ErrEmailDelivery, http.StatusInternalServerError, "EMAIL_DELIVERY_FAILED", ErrEmailDelivery.Error()},
		{"reset token", ErrInvalidResetToken, http.StatusBadRequest, "INVALID_RESET_TOKEN", ErrInvalidResetToken.Error()},
		{"invalid input keeps detail", fmt.Errorf("%w: name is required", ErrInvalidInput), http.StatusBadRequest, "INVALID_INPUT", "invalid input: name is required"},
		{"not authenticated is internal", ErrNotAuthenticated, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error"},
		{"unknown error hides cause", fmt.Errorf("dial tcp: connection refused"), http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapErrorToHTTP(tt.err)
			assert.Equal(t, tt.wantStatus, got.StatusCode)
			assert.Equal(t, tt.wantCode, got.Code)
			assert.Equal(t, tt.wantMsg, got.Message)
			assert.Equal(t, ErrorResponse{Error: tt.wantMsg, Code: tt.wantCode}, got.ToErrorResponse())
		})
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	unknownEmail := MapErrorToHTTP(fmt.Errorf("find user: %w", ErrIncorrectCredentials))
	wrongPassword := MapErrorToHTTP(ErrIncorrectCredentials)
	assert.Equal(t, unknownEmail, wrongPassword)
}
