package router

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	apperrors "natours/internal/errors"
	"natours/internal/handler"
	"natours/internal/logging"
	authmw "natours/internal/middleware"
	"natours/internal/model"
	"natours/internal/service"
)

// Handlers groups the HTTP handlers and the guard for protected routes.
type Handlers struct {
	Auth  *handler.AuthHandler
	Users *handler.UserHandler
	Tours *handler.TourHandler
	Guard *service.SessionGuard
}

// Register wires routes and middleware.
func Register(e *echo.Echo, logger *slog.Logger, h Handlers) {
	e.HideBanner = true
	e.HTTPErrorHandler = ErrorHandler(logger)
	e.Validator = &CustomValidator{validator: validator.New()}

	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			level := slog.LevelInfo
			if v.Status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			logger.LogAttrs(c.Request().Context(), level, "request",
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("request_id", v.RequestID),
			)
			return nil
		},
	}))
	e.Use(middleware.Recover())

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api/v1")
	protect := authmw.Protect(h.Guard)

	// Public user routes
	users := api.Group("/users")
	users.POST("/signup", h.Auth.Signup)
	users.POST("/login", h.Auth.Login)
	users.POST("/forgotPassword", h.Auth.ForgotPassword)
	users.PATCH("/resetPassword/:token", h.Auth.ResetPassword)

	// Logged in user routes
	users.GET("/me", h.Users.Me, protect)
	users.PATCH("/updateMyPassword", h.Auth.UpdatePassword, protect)

	// Admin routes
	adminOnly := authmw.RestrictTo(model.RoleAdmin)
	users.GET("", h.Users.ListUsers, protect, adminOnly)
	users.GET("/:id", h.Users.GetUser, protect, adminOnly)
	users.DELETE("/:id", h.Users.DeleteUser, protect, adminOnly)

	// Tour routes, writes restricted to staff
	staff := authmw.RestrictTo(model.RoleAdmin, model.RoleLeadGuide)
	tours := api.Group("/tours")
	tours.GET("", h.Tours.ListTours)
	tours.GET("/:id", h.Tours.GetTour)
	tours.POST("", h.Tours.CreateTour, protect, staff)
	tours.PATCH("/:id", h.Tours.UpdateTour, protect, staff)
	tours.DELETE("/:id", h.Tours.DeleteTour, protect, staff)

	e.RouteNotFound("/*", routeNotFound)
}

func routeNotFound(c echo.Context) error {
	err := fmt.Errorf("%w: can't find %s on this server", apperrors.ErrRouteNotFound, c.Request().URL.Path)
	return echo.NewHTTPError(http.StatusNotFound, apperrors.ErrorResponse{
		Error: err.Error(),
		Code:  "ROUTE_NOT_FOUND",
	}).SetInternal(err)
}

// ErrorHandler renders every error as an ErrorResponse and logs server
// faults with their cause. Details of unmapped errors never reach the client.
func ErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := render(err)
		if status >= http.StatusInternalServerError {
			logger.ErrorContext(c.Request().Context(), "request failed",
				slog.String("method", c.Request().Method),
				slog.String("uri", c.Request().RequestURI),
				slog.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
				logging.Err(err),
			)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			logger.ErrorContext(c.Request().Context(), "write error response", logging.Err(err))
		}
	}
}

func render(err error) (int, apperrors.ErrorResponse) {
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		mapped := apperrors.MapErrorToHTTP(err)
		return mapped.StatusCode, mapped.ToErrorResponse()
	}

	if resp, ok := he.Message.(apperrors.ErrorResponse); ok {
		return he.Code, resp
	}
	if he.Code >= http.StatusInternalServerError {
		return he.Code, apperrors.ErrorResponse{Error: "internal server error", Code: "INTERNAL_ERROR"}
	}
	return he.Code, apperrors.ErrorResponse{Error: fmt.Sprint(he.Message), Code: statusCode(he.Code)}
}

// statusCode names errors raised by echo itself.
func statusCode(status int) string {
	switch status {
	case http.StatusNotFound:
		return "ROUTE_NOT_FOUND"
	case http.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case http.StatusRequestEntityTooLarge:
		return "PAYLOAD_TOO_LARGE"
	case http.StatusUnsupportedMediaType:
		return "UNSUPPORTED_MEDIA_TYPE"
	}
	return "INVALID_INPUT"
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
