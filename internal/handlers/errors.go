package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"cv-formatter/internal/services"
)

// errorResponse maps every pipeline failure kind to a distinct status and
// human-readable message. Upstream diagnostics are passed through, never
// masked behind a generic failure.
func errorResponse(c *fiber.Ctx, err error) error {
	var malformed *services.MalformedResponseError
	var upstream *services.UpstreamError
	var render *services.RenderError

	switch {
	case errors.Is(err, services.ErrUnsupportedFormat),
		errors.Is(err, services.ErrUnsupportedTarget):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})

	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "CV not found",
		})

	case errors.Is(err, services.ErrUpstreamRateLimited):
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error": err.Error(),
		})

	case errors.Is(err, services.ErrExtraction):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": err.Error(),
		})

	case errors.As(err, &malformed):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": malformed.Error(),
		})

	case errors.Is(err, services.ErrNoContent):
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": err.Error(),
		})

	case errors.As(err, &upstream):
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": upstream.Error(),
		})

	case errors.As(err, &render):
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": render.Error(),
		})

	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
}
