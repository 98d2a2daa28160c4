package errors

import (
	"github.com/labstack/echo/v4"
)

// ToEchoError maps err and wraps the result for echo, keeping err as the
// internal cause for logging.
func ToEchoError(err error) *echo.HTTPError {
	he := MapErrorToHTTP(err)
	return echo.NewHTTPError(he.StatusCode, he.ToErrorResponse()).SetInternal(err)
}
