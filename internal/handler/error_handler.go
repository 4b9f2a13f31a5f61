package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/campus-registry/internal/utils"
	"github.com/noah-isme/campus-registry/web"
)

// ErrorHandler renders error pages for browsers and the JSON envelope for
// /api routes.
func ErrorHandler(logger zerolog.Logger) fiber.ErrorHandler {
	logger = logger.With().Str("component", "error_handler").Logger()

	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := genericFailure

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			code = fiberErr.Code
			message = fiberErr.Message
		}

		if code >= fiber.StatusInternalServerError {
			requestLogger(logger, c).Error().Err(err).Str("path", c.Path()).Msg("request failed")
			message = genericFailure
		}

		if strings.HasPrefix(c.Path(), "/api") {
			return utils.SendError(c, code, message)
		}

		if code == fiber.StatusNotFound {
			return c.Status(code).Render("errors/404", fiber.Map{"Title": "Страница не найдена"}, web.Layout)
		}

		renderErr := c.Status(code).Render("errors/500", fiber.Map{
			"Title":   "Ошибка",
			"Code":    code,
			"Message": message,
		}, web.Layout)
		if renderErr != nil {
			return c.Status(code).SendString(message)
		}
		return nil
	}
}
