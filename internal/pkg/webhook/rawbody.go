package webhook

import "github.com/gofiber/fiber/v2"

const rawBodyKey = "webhook_raw_body"

// CaptureRawBody stores a copy of the request body exactly as it arrived.
// Install it on the webhook route only, ahead of its handler. fasthttp
// reuses the body buffer after the handler returns, hence the copy.
func CaptureRawBody() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(rawBodyKey, append([]byte(nil), c.BodyRaw()...))
		return c.Next()
	}
}

// RawBody returns the bytes captured by CaptureRawBody. ok is false when the
// middleware did not run for this request.
func RawBody(c *fiber.Ctx) ([]byte, bool) {
	raw, ok := c.Locals(rawBodyKey).([]byte)
	return raw, ok
}
