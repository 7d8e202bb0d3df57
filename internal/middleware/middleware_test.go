package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"lifecycle/domain"
	"lifecycle/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProtectedApp(jwtService jwt.JWTService) *fiber.App {
	app := fiber.New()
	app.Get("/private", NewMiddleware().AuthMiddleware(jwtService), func(c *fiber.Ctx) error {
		return c.SendString(c.Locals("user_id").(string))
	})
	return app
}

func TestAuthMiddleware(t *testing.T) {
	jwtService := jwt.NewJWTService("test-secret")
	app := newProtectedApp(jwtService)
	token := jwtService.GenerateTokenUser("user-1", domain.RoleUser)

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", fiber.StatusUnauthorized},
		{"not bearer", "Basic abc", fiber.StatusUnauthorized},
		{"garbage token", "Bearer abc.def.ghi", fiber.StatusUnauthorized},
		{"valid token", "Bearer " + token, fiber.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tc.want, resp.StatusCode)
		})
	}
}

func TestAuthMiddlewareRejectsForeignSecret(t *testing.T) {
	app := newProtectedApp(jwt.NewJWTService("test-secret"))
	token := jwt.NewJWTService("other-secret").GenerateTokenUser("user-1", domain.RoleUser)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddlewareRejectsResetToken(t *testing.T) {
	jwtService := jwt.NewJWTService("test-secret")
	app := newProtectedApp(jwtService)
	token, err := jwtService.GenerateTokenForgetPassword(map[string]any{
		"user_id": "user-1",
		"purpose": "reset",
	}, 30*time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
