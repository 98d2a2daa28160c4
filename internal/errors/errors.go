package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrInvalidInput is returned when a request or record fails validation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrMissingLoginFields is returned when login omits email or password.
	ErrMissingLoginFields = errors.New("please provide email and password")
	// ErrPasswordMismatch is returned when password and passwordConfirm differ.
	ErrPasswordMismatch = errors.New("passwords are not the same")
	// ErrInvalidResetToken is returned when a reset token is unknown, used or expired.
	ErrInvalidResetToken = errors.New("token is invalid or has expired")

	// ErrIncorrectCredentials is returned for any failed login, whichever factor was wrong.
	ErrIncorrectCredentials = errors.New("incorrect email or password")
	// ErrIncorrectPassword is returned when the current password given for a change is wrong.
	ErrIncorrectPassword = errors.New("your current password is wrong")
	// ErrMissingCredentials is returned when a protected route is called without a bearer token.
	ErrMissingCredentials = errors.New("you are not logged in, please log in to get access")
	// ErrInvalidSession is returned when a session token fails signature or expiry checks.
	ErrInvalidSession = errors.New("invalid or expired token, please log in again")
	// ErrUserNoLongerExists is returned when the token subject has been removed.
	ErrUserNoLongerExists = errors.New("the user belonging to this token no longer exists")
	// ErrStaleSession is returned when the password changed after the token was issued.
	ErrStaleSession = errors.New("user recently changed password, please log in again")

	// ErrForbidden is returned when the user's role is not allowed.
	ErrForbidden = errors.New("you do not have permission to perform this action")

	// ErrUserNotFound is returned when no user matches the lookup.
	ErrUserNotFound = errors.New("there is no user with that email address")
	// ErrTourNotFound is returned when no tour matches the lookup.
	ErrTourNotFound = errors.New("no tour found with that ID")
	// ErrRouteNotFound is returned for unknown routes.
	ErrRouteNotFound = errors.New("route not found")

	// ErrEmailTaken is returned when an email is already registered.
	ErrEmailTaken = errors.New("email is already in use")
	// ErrTourNameTaken is returned when a tour name is already used.
	ErrTourNameTaken = errors.New("tour name is already in use")

	// ErrEmailDelivery is returned when the reset email could not be sent.
	ErrEmailDelivery = errors.New("there was an error sending the email, try again later")

	// ErrNotAuthenticated is returned when an authorization check runs without
	// an authenticated user. It signals a wiring bug.
	ErrNotAuthenticated = errors.New("authorization checked without an authenticated user")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

type mapping struct {
	target error
	status int
	code   string
}

// Order matters only where one sentinel could wrap another.
var mappings = []mapping{
	{ErrInvalidInput, http.StatusBadRequest, "INVALID_INPUT"},
	{ErrMissingLoginFields, http.StatusBadRequest, "MISSING_CREDENTIALS"},
	{ErrPasswordMismatch, http.StatusBadRequest, "PASSWORD_MISMATCH"},
	{ErrInvalidResetToken, http.StatusBadRequest, "INVALID_RESET_TOKEN"},
	{ErrIncorrectCredentials, http.StatusUnauthorized, "INCORRECT_CREDENTIALS"},
	{ErrIncorrectPassword, http.StatusUnauthorized, "INCORRECT_PASSWORD"},
	{ErrMissingCredentials, http.StatusUnauthorized, "NOT_LOGGED_IN"},
	{ErrInvalidSession, http.StatusUnauthorized, "INVALID_TOKEN"},
	{ErrUserNoLongerExists, http.StatusUnauthorized, "USER_NO_LONGER_EXISTS"},
	{ErrStaleSession, http.StatusUnauthorized, "STALE_SESSION"},
	{ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
	{ErrUserNotFound, http.StatusNotFound, "USER_NOT_FOUND"},
	{ErrTourNotFound, http.StatusNotFound, "TOUR_NOT_FOUND"},
	{ErrRouteNotFound, http.StatusNotFound, "ROUTE_NOT_FOUND"},
	{ErrEmailTaken, http.StatusConflict, "EMAIL_TAKEN"},
	{ErrTourNameTaken, http.StatusConflict, "TOUR_NAME_TAKEN"},
	{ErrEmailDelivery, http.StatusInternalServerError, "EMAIL_DELIVERY_FAILED"},
}

// MapErrorToHTTP maps domain errors to HTTP errors. Unknown errors become a
// generic 500 whose message hides the cause.
func MapErrorToHTTP(err error) *HTTPError {
	for _, m := range mappings {
		if errors.Is(err, m.target) {
			return NewHTTPError(m.status, message(err, m.target), m.code)
		}
	}
	return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
}

// message keeps validation detail for bad input and the bare sentinel text otherwise.
func message(err, target error) string {
	if target == ErrInvalidInput {
		return err.Error()
	}
	return target.Error()
}
