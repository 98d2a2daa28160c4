package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"natours/internal/auth"
	apperrors "natours/internal/errors"
	"natours/internal/middleware"
	"natours/internal/model"
	"natours/internal/service"
	"natours/internal/testutil"
)

func newEcho(guard *service.SessionGuard, roles ...model.Role) *echo.Echo {
	e := echo.New()
	chain := []echo.MiddlewareFunc{middleware.Protect(guard)}
	if len(roles) > 0 {
		chain = append(chain, middleware.RestrictTo(roles...))
	}
	e.GET("/private", func(c echo.Context) error {
		return c.String(http.StatusOK, middleware.CurrentUser(c).Email)
	}, chain...)
	return e
}

func issue(t *testing.T, secret string, at time.Time, id uuid.UUID) string {
	t.Helper()
	token, err := auth.NewJWTService(secret, time.Hour, auth.WithClock(func() time.Time { return at })).Issue(id.String())
	require.NoError(t, err)
	return token
}

func TestProtect(t *testing.T) {
	now := time.Now()
	store := testutil.NewUserStore()
	guard := service.NewSessionGuard(auth.NewJWTService("test-secret", time.Hour), store)

	user := &model.User{ID: uuid.New(), Name: "A", Email: "a@x.io", Role: model.RoleUser, PasswordHash: "x"}
	store.Put(user)
	changed := model.PasswordChangedAt(now)
	rotated := &model.User{ID: uuid.New(), Name: "B", Email: "b@x.io", Role: model.RoleUser, PasswordHash: "x", PasswordChangedAt: &changed}
	store.Put(rotated)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantCode   string
	}{
		{name: "no header", header: "", wantStatus: http.StatusUnauthorized, wantCode: "NOT_LOGGED_IN"},
		{name: "wrong scheme", header: "Basic abc", wantStatus: http.StatusUnauthorized, wantCode: "NOT_LOGGED_IN"},
		{name: "garbage token", header: "Bearer nope", wantStatus: http.StatusUnauthorized, wantCode: "INVALID_TOKEN"},
		{name: "expired token", header: "Bearer " + issue(t, "test-secret", now.Add(-2*time.Hour), user.ID), wantStatus: http.StatusUnauthorized, wantCode: "INVALID_TOKEN"},
		{name: "forged token", header: "Bearer " + issue(t, "other-secret", now, user.ID), wantStatus: http.StatusUnauthorized, wantCode: "INVALID_TOKEN"},
		{name: "deleted user", header: "Bearer " + issue(t, "test-secret", now, uuid.New()), wantStatus: http.StatusUnauthorized, wantCode: "USER_NO_LONGER_EXISTS"},
		{name: "stale session", header: "Bearer " + issue(t, "test-secret", now.Add(-time.Minute), rotated.ID), wantStatus: http.StatusUnauthorized, wantCode: "STALE_SESSION"},
		{name: "valid session", header: "Bearer " + issue(t, "test-secret", now, user.ID), wantStatus: http.StatusOK},
	}

	e := newEcho(guard)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			if tt.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.header)
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			c.SetPath("/private")

			h := middleware.Protect(guard)(func(c echo.Context) error {
				return c.String(http.StatusOK, middleware.CurrentUser(c).Email)
			})
			err := h(c)

			if tt.wantStatus == http.StatusOK {
				require.NoError(t, err)
				assert.Equal(t, http.StatusOK, rec.Code)
				assert.Equal(t, "a@x.io", rec.Body.String())
				return
			}
			var he *echo.HTTPError
			require.ErrorAs(t, err, &he)
			assert.Equal(t, tt.wantStatus, he.Code)
			resp, ok := he.Message.(apperrors.ErrorResponse)
			require.True(t, ok)
			assert.Equal(t, tt.wantCode, resp.Code)
		})
	}
}

func TestRestrictTo(t *testing.T) {
	now := time.Now()
	store := testutil.NewUserStore()
	guard := service.NewSessionGuard(auth.NewJWTService("test-secret", time.Hour), store)

	regular := &model.User{ID: uuid.New(), Name: "A", Email: "a@x.io", Role: model.RoleUser, PasswordHash: "x"}
	admin := &model.User{ID: uuid.New(), Name: "B", Email: "b@x.io", Role: model.RoleAdmin, PasswordHash: "x"}
	store.Put(regular)
	store.Put(admin)

	e := newEcho(guard, model.RoleAdmin, model.RoleLeadGuide)

	tests := []struct {
		name       string
		user       *model.User
		wantStatus int
	}{
		{name: "role not allowed", user: regular, wantStatus: http.StatusForbidden},
		{name: "role allowed", user: admin, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			req.Header.Set(echo.HeaderAuthorization, "Bearer "+issue(t, "test-secret", now, tt.user.ID))
			rec := httptest.NewRecorder()

			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestRestrictTo_WithoutProtect(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	err := middleware.RestrictTo(model.RoleAdmin)(func(echo.Context) error { return nil })(c)

	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusInternalServerError, he.Code)
}
