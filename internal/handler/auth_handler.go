package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"natours/internal/errors"
	"natours/internal/middleware"
	"natours/internal/service"
)

// ResetPasswordPath is the route prefix mailed in reset links.
const ResetPasswordPath = "/api/v1/users/resetPassword"

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService service.AuthService
	baseURL     string
}

// NewAuthHandler creates a new auth handler. Reset links are built on
// baseURL; when it is empty the request's own host is used.
func NewAuthHandler(authService service.AuthService, baseURL string) *AuthHandler {
	return &AuthHandler{authService: authService, baseURL: strings.TrimRight(baseURL, "/")}
}

// SignupRequest represents a user signup request.
type SignupRequest struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
}

// LoginRequest represents a user login request. Missing fields are
// reported by the service.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ForgotPasswordRequest starts a password reset.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest carries the new password for a reset.
type ResetPasswordRequest struct {
	Password        string `json:"password" validate:"required,min=6"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
}

// UpdatePasswordRequest changes the password of the logged in user.
type UpdatePasswordRequest struct {
	PasswordCurrent string `json:"passwordCurrent" validate:"required"`
	Password        string `json:"password" validate:"required,min=6"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
}

// Signup godoc
// @Summary Sign up a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body SignupRequest true "Signup data"
// @Success 201 {object} UserResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /users/signup [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	var req SignupRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	token, user, err := h.authService.Signup(c.Request().Context(), service.SignupInput{
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
	})
	if err != nil {
		return errors.ToEchoError(err)
	}

	return c.JSON(http.StatusCreated, UserResponse{
		Status: statusSuccess,
		Token:  token,
		Data:   UserData{User: user},
	})
}

// Login godoc
// @Summary Log in
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} TokenResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /users/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	token, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return errors.ToEchoError(err)
	}

	return c.JSON(http.StatusOK, TokenResponse{Status: statusSuccess, Token: token})
}

// ForgotPassword godoc
// @Summary Mail a password reset link
// @Tags auth
// @Accept json
// @Produce json
// @Param request body ForgotPasswordRequest true "Account email"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /users/forgotPassword [post]
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req ForgotPasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	if err := h.authService.ForgotPassword(c.Request().Context(), req.Email, h.resetBase(c)); err != nil {
		return errors.ToEchoError(err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Status: statusSuccess, Message: "Token sent to email!"})
}

func (h *AuthHandler) resetBase(c echo.Context) string {
	if h.baseURL != "" {
		return h.baseURL + ResetPasswordPath
	}
	return c.Scheme() + "://" + c.Request().Host + ResetPasswordPath
}

// ResetPassword godoc
// @Summary Reset a password with a mailed token
// @Tags auth
// @Accept json
// @Produce json
// @Param token path string true "Reset token"
// @Param request body ResetPasswordRequest true "New password"
// @Success 200 {object} TokenResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /users/resetPassword/{token} [patch]
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req ResetPasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	token, err := h.authService.ResetPassword(c.Request().Context(), c.Param("token"), service.PasswordInput{
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
	})
	if err != nil {
		return errors.ToEchoError(err)
	}

	return c.JSON(http.StatusOK, TokenResponse{Status: statusSuccess, Token: token})
}

// UpdatePassword godoc
// @Summary Change the current user's password
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdatePasswordRequest true "Current and new password"
// @Success 200 {object} TokenResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /users/updateMyPassword [patch]
func (h *AuthHandler) UpdatePassword(c echo.Context) error {
	var req UpdatePasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	token, err := h.authService.UpdatePassword(c.Request().Context(), middleware.CurrentUser(c), req.PasswordCurrent, service.PasswordInput{
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
	})
	if err != nil {
		return errors.ToEchoError(err)
	}

	return c.JSON(http.StatusOK, TokenResponse{Status: statusSuccess, Token: token})
}
