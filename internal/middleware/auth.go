// Package middleware holds the echo middleware guarding protected routes.
package middleware

import (
	"errors"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"natours/internal/auth"
	apperrors "natours/internal/errors"
	"natours/internal/model"
	"natours/internal/service"
)

const (
	// ClaimsKey holds the verified *auth.Claims.
	ClaimsKey = "claims"
	// UserKey holds the admitted *model.User.
	UserKey = "user"
)

// Protect guards a route group with the session guard. echo-jwt extracts the
// bearer token and verifies it through the guard; the admission step then
// loads the user and checks freshness before the handler runs.
func Protect(guard *service.SessionGuard) echo.MiddlewareFunc {
	verify := echojwt.WithConfig(echojwt.Config{
		ContextKey:  ClaimsKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(_ echo.Context, token string) (interface{}, error) {
			return guard.Verify(token)
		},
		ErrorHandler: func(_ echo.Context, err error) error {
			if errors.Is(err, apperrors.ErrInvalidSession) {
				return apperrors.ToEchoError(err)
			}
			return apperrors.ToEchoError(apperrors.ErrMissingCredentials)
		},
	})

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		admit := func(c echo.Context) error {
			claims, _ := c.Get(ClaimsKey).(*auth.Claims)
			user, err := guard.Admit(c.Request().Context(), claims)
			if err != nil {
				return apperrors.ToEchoError(err)
			}
			c.Set(UserKey, user)
			return next(c)
		}
		return verify(admit)
	}
}

// RestrictTo allows the request through only for the given roles. It must run
// after Protect.
func RestrictTo(roles ...model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := auth.Authorize(CurrentUser(c), roles...); err != nil {
				return apperrors.ToEchoError(err)
			}
			return next(c)
		}
	}
}

// CurrentUser returns the user admitted by Protect, or nil.
func CurrentUser(c echo.Context) *model.User {
	user, _ := c.Get(UserKey).(*model.User)
	return user
}
