package auth

import (
	"slices"

	"natours/internal/errors"
	"natours/internal/model"
)

// Authorize checks the user's role against the allowed set. A nil user means
// the session guard did not run and is rejected.
func Authorize(user *model.User, allowed ...model.Role) error {
	if user == nil {
		return errors.ErrNotAuthenticated
	}
	if !slices.Contains(allowed, user.Role) {
		return errors.ErrForbidden
	}
	return nil
}
