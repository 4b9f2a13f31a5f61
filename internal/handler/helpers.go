package handler

import (
	"errors"
	"strconv"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/campus-registry/internal/flash"
	"github.com/noah-isme/campus-registry/internal/listing"
	"github.com/noah-isme/campus-registry/internal/middleware"
	"github.com/noah-isme/campus-registry/internal/service"
	"github.com/noah-isme/campus-registry/internal/validation"
)

const genericFailure = "Произошла непредвиденная ошибка. Попробуйте еще раз."

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

// parseID reads a positive numeric route parameter. Anything else is a
// missing page.
func parseID(c *fiber.Ctx, key string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(key), 10, 64)
	if err != nil || id == 0 {
		return 0, fiber.ErrNotFound
	}
	return uint(id), nil
}

// listQuery reads the search, sort and page parameters shared by all lists.
// A malformed page number shows the first page.
func listQuery(c *fiber.Ctx) listing.Query {
	page, err := parseQueryInt(c, "page")
	if err != nil || page < 1 {
		page = 1
	}
	return listing.Query{
		Search: strings.TrimSpace(c.Query("search_query")),
		SortBy: strings.TrimSpace(c.Query("sort_by")),
		Order:  strings.TrimSpace(c.Query("order")),
		Page:   page,
	}
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

// render draws a page inside the main layout together with pending flash
// messages.
func render(c *fiber.Ctx, flasher *flash.Flasher, status int, name string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	if flasher != nil {
		data["Flashes"] = flasher.Consume(c)
	}
	return c.Status(status).Render(name, data)
}

// formFailure maps a service error to the status and messages shown above a
// re-rendered form. ok is false for errors that are not about the form.
func formFailure(err error, translator ut.Translator) (status int, messages []string, ok bool) {
	var formErr *service.FormError
	var conflict *service.ConflictError

	switch {
	case validation.IsValidationError(err):
		return fiber.StatusUnprocessableEntity, validation.Messages(err, translator), true
	case errors.As(err, &formErr):
		return fiber.StatusUnprocessableEntity, formErr.Messages, true
	case errors.As(err, &conflict):
		return fiber.StatusConflict, []string{conflict.Message}, true
	case isNotFound(err):
		return fiber.StatusNotFound, nil, false
	default:
		return fiber.StatusInternalServerError, []string{genericFailure}, true
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, service.ErrFacultyNotFound) ||
		errors.Is(err, service.ErrGroupNotFound) ||
		errors.Is(err, service.ErrStudentNotFound)
}

// notFoundOr turns missing records into a 404 and passes other errors on.
func notFoundOr(err error) error {
	if isNotFound(err) {
		return fiber.ErrNotFound
	}
	return err
}

func addWarnings(c *fiber.Ctx, flasher *flash.Flasher, warnings []string) {
	for _, warning := range warnings {
		flasher.Add(c, flash.LevelWarning, warning)
	}
}
