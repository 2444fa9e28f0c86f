package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"lms/config"
	"lms/guards"
	"lms/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	config.AppConfig = &config.Config{JWTKey: "test-secret"}
	os.Exit(m.Run())
}

func protectedApp(chain guards.Chain) *fiber.App {
	app := fiber.New()
	app.Get("/resource/:id", JWTMiddleware, Protect(chain), func(c *fiber.Ctx) error {
		return JsonResponse(c, fiber.StatusOK, true, "ok", nil)
	})
	return app
}

func bearerRequest(t *testing.T, userID uint, role string) *http.Request {
	t.Helper()
	token, err := GenerateJWT(userID, "Test User", role, "user@test.com")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/resource/5", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestJWTMiddlewareSetsPrincipal(t *testing.T) {
	app := fiber.New()
	app.Get("/me", JWTMiddleware, func(c *fiber.Ctx) error {
		p, ok := c.Locals("principal").(*guards.Principal)
		require.True(t, ok)
		assert.Equal(t, uint(7), p.ID)
		assert.Equal(t, models.RoleStudent, p.Role)
		assert.Equal(t, "user@test.com", p.Email)
		return c.SendStatus(fiber.StatusOK)
	})

	token, err := GenerateJWT(7, "Test User", models.RoleStudent, "user@test.com")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestJWTMiddlewareRejectsBadTokens(t *testing.T) {
	app := fiber.New()
	app.Get("/me", JWTMiddleware, func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	tests := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "not bearer", header: "Token abc"},
		{name: "garbage token", header: "Bearer not.a.jwt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		})
	}
}

func TestJWTMiddlewareRejectsNonNumericUserID(t *testing.T) {
	app := fiber.New()
	app.Get("/me", JWTMiddleware, func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	// Validly signed, but the userId claim is not a number
	claims := jwt.MapClaims{
		"userId": "seven",
		"role":   models.RoleStudent,
		"email":  "user@test.com",
		"iat":    time.Now().Unix(),
		"exp":    time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(config.AppConfig.JWTKey))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestProtectMapsDenialsToStatusCodes(t *testing.T) {
	tests := []struct {
		name       string
		chain      guards.Chain
		role       string
		wantStatus int
	}{
		{
			name:       "allowed",
			chain:      guards.Chain{guards.Authenticated{}},
			role:       models.RoleStudent,
			wantStatus: fiber.StatusOK,
		},
		{
			name:       "role forbidden",
			chain:      guards.Chain{guards.HasRole{Allowed: []string{models.RoleAdmin}}},
			role:       models.RoleStudent,
			wantStatus: fiber.StatusForbidden,
		},
		{
			name:       "admin allowed",
			chain:      guards.Chain{guards.HasRole{Allowed: []string{models.RoleAdmin}}},
			role:       models.RoleAdmin,
			wantStatus: fiber.StatusOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := protectedApp(tt.chain)
			resp, err := app.Test(bearerRequest(t, 3, tt.role))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

type staticErrGuard struct{ err error }

func (staticErrGuard) Name() string                    { return "static" }
func (g staticErrGuard) Check(c *guards.Context) error { return g.err }

func TestProtectMapsLookupErrorsDistinctly(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
	}{
		{err: guards.ErrFeatureDisabled, wantStatus: fiber.StatusForbidden},
		{err: guards.ErrSubscriptionRequired, wantStatus: fiber.StatusForbidden},
		{err: guards.ErrNotOwner, wantStatus: fiber.StatusForbidden},
		{err: guards.ErrNotFound, wantStatus: fiber.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			app := protectedApp(guards.Chain{staticErrGuard{err: tt.err}})
			resp, err := app.Test(bearerRequest(t, 3, models.RoleStudent))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}
