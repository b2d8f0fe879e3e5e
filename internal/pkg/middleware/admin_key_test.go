package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MarcosViniB/PagSync/internal/pkg/env"
)

func newProtectedApp() *fiber.App {
	app := fiber.New()
	app.Post("/admin", AdminKeyMiddleware(), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"success": true})
	})
	return app
}

func requestWithKey(t *testing.T, app *fiber.App, key string) int {
	t.Helper()
	req := httptest.NewRequest("POST", "/admin", nil)
	if key != "" {
		req.Header.Set("x-api-key", key)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	return resp.StatusCode
}

func TestAdminKeyMiddleware(t *testing.T) {
	env.Env = map[string]string{"ADMIN_API_KEY": "secret-key"}
	t.Cleanup(func() { env.Env = nil })
	app := newProtectedApp()

	assert.Equal(t, fiber.StatusOK, requestWithKey(t, app, "secret-key"))
	assert.Equal(t, fiber.StatusUnauthorized, requestWithKey(t, app, "wrong-key"))
	assert.Equal(t, fiber.StatusUnauthorized, requestWithKey(t, app, ""))
}

func TestAdminKeyMiddlewareBearerFallback(t *testing.T) {
	env.Env = map[string]string{"ADMIN_API_KEY": "secret-key"}
	t.Cleanup(func() { env.Env = nil })
	app := newProtectedApp()

	req := httptest.NewRequest("POST", "/admin", nil)
	req.Header.Set("Authorization", "Bearer secret-key")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestAdminKeyMiddlewareUnconfiguredKeyRejects(t *testing.T) {
	env.Env = map[string]string{}
	t.Cleanup(func() { env.Env = nil })
	app := newProtectedApp()

	assert.Equal(t, fiber.StatusUnauthorized, requestWithKey(t, app, "anything"))
}
