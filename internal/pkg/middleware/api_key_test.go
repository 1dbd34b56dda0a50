package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newKeyApp(key string) *fiber.App {
	app := fiber.New()
	app.Get("/events", APIKeyAuthMiddleware(key), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func TestAPIKeyAuthMiddleware(t *testing.T) {
	app := newKeyApp("s3cret")

	tests := []struct {
		name   string
		header string
		value  string
		status int
	}{
		{name: "missing", status: fiber.StatusUnauthorized},
		{name: "x-api-key", header: "X-API-Key", value: "s3cret", status: fiber.StatusOK},
		{name: "bearer", header: "Authorization", value: "Bearer s3cret", status: fiber.StatusOK},
		{name: "bearer lowercase", header: "Authorization", value: "bearer s3cret", status: fiber.StatusOK},
		{name: "wrong key", header: "X-API-Key", value: "guess", status: fiber.StatusUnauthorized},
		{name: "basic auth is ignored", header: "Authorization", value: "Basic s3cret", status: fiber.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/events", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestAPIKeyAuthMiddlewareDisabled(t *testing.T) {
	resp, err := newKeyApp("").Test(httptest.NewRequest("GET", "/events", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
