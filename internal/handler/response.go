package handler

import (
	stderrors "errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"natours/internal/errors"
	"natours/internal/model"
)

const statusSuccess = "success"

// TokenResponse carries a freshly issued session token.
type TokenResponse struct {
	Status string `json:"status" example:"success"`
	Token  string `json:"token"`
}

// MessageResponse carries a human readable outcome.
type MessageResponse struct {
	Status  string `json:"status" example:"success"`
	Message string `json:"message"`
}

// UserData wraps a single user.
type UserData struct {
	User *model.User `json:"user"`
}

// UserResponse is returned by signup and /users/me.
type UserResponse struct {
	Status string   `json:"status" example:"success"`
	Token  string   `json:"token,omitempty"`
	Data   UserData `json:"data"`
}

// UsersResponse lists users.
type UsersResponse struct {
	Status  string `json:"status" example:"success"`
	Results int    `json:"results"`
	Data    struct {
		Users []model.User `json:"users"`
	} `json:"data"`
}

// TourResponse wraps a single tour.
type TourResponse struct {
	Status string `json:"status" example:"success"`
	Data   struct {
		Tour *model.Tour `json:"tour"`
	} `json:"data"`
}

// ToursResponse lists tours.
type ToursResponse struct {
	Status  string `json:"status" example:"success"`
	Results int    `json:"results"`
	Data    struct {
		Tours []model.Tour `json:"tours"`
	} `json:"data"`
}

// bind decodes and validates the request body into req.
func bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return errors.ToEchoError(fmt.Errorf("%w: invalid request body", errors.ErrInvalidInput))
	}
	if err := c.Validate(req); err != nil {
		return errors.ToEchoError(validationError(err))
	}
	return nil
}

// validationError reports a failed confirmation as a mismatch and anything
// else as bad input.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if stderrors.As(err, &verrs) {
		for _, fe := range verrs {
			if fe.Tag() == "eqfield" {
				return errors.ErrPasswordMismatch
			}
		}
	}
	return fmt.Errorf("%w: %v", errors.ErrInvalidInput, err)
}

func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, errors.ToEchoError(fmt.Errorf("%w: invalid id %q", errors.ErrInvalidInput, c.Param("id")))
	}
	return id, nil
}
