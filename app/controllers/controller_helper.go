package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

const (
	CodeMissingSignature      = "missing_signature"
	CodeInvalidSignature      = "invalid_signature"
	CodeInvalidEvent          = "invalid_event"
	CodeSecretNotConfigured   = "webhook_secret_not_configured"
	CodeRawBodyUnavailable    = "raw_body_unavailable"
	CodeInvalidRequest        = "invalid_request"
	CodeCheckoutNotConfigured = "checkout_not_configured"
	CodeProviderError         = "provider_error"
	CodeNotFound              = "not_found"
	CodeInternal              = "internal_error"
)

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorDetail `json:"error"`
}

// sendError writes the structured error body used by the ingestion and
// checkout endpoints.
func sendError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(errorResponse{Error: errorDetail{Code: code, Message: message}})
}

// ErrorHandler is installed as fiber's ErrorHandler. Panics caught by the
// recover middleware end up here as plain errors.
func ErrorHandler(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	code := CodeInternal
	message := "Internal server error"

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		status = fiberErr.Code
		message = fiberErr.Message
		switch {
		case status == fiber.StatusNotFound:
			code = CodeNotFound
		case status < fiber.StatusInternalServerError:
			code = CodeInvalidRequest
		}
	}

	if status >= fiber.StatusInternalServerError {
		log.Errorw("[HTTP] request failed",
			"method", c.Method(),
			"path", c.Path(),
			"request_id", c.Locals("requestid"),
			"error", err,
		)
	}
	return sendError(c, status, code, message)
}
