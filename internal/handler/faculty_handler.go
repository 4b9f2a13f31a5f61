package handler

import (
	"errors"
	"fmt"

	ut "github.com/go-playground/universal-translator"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/campus-registry/internal/dto"
	"github.com/noah-isme/campus-registry/internal/flash"
	"github.com/noah-isme/campus-registry/internal/service"
)

const facultiesPath = "/faculties/"

// FacultyHandler serves the faculty pages.
type FacultyHandler struct {
	service    service.FacultyService
	translator ut.Translator
	flasher    *flash.Flasher
	logger     zerolog.Logger
}

// NewFacultyHandler constructs the handler.
func NewFacultyHandler(service service.FacultyService, translator ut.Translator, flasher *flash.Flasher, logger zerolog.Logger) *FacultyHandler {
	return &FacultyHandler{
		service:    service,
		translator: translator,
		flasher:    flasher,
		logger:     logger.With().Str("component", "faculty_handler").Logger(),
	}
}

// Register mounts the faculty routes.
func (h *FacultyHandler) Register(router fiber.Router) {
	router.Get("/", h.list)
	router.Get("/create", h.newForm)
	router.Post("/create", h.create)
	router.Get("/:id/edit", h.editForm)
	router.Post("/:id/edit", h.update)
	router.Post("/:id/delete", h.delete)
}

func (h *FacultyHandler) list(c *fiber.Ctx) error {
	query := listQuery(c)
	page, err := h.service.List(c.UserContext(), query)
	if err != nil {
		return err
	}

	return render(c, h.flasher, fiber.StatusOK, "faculties/list", fiber.Map{
		"Title": "Факультеты",
		"Page":  page,
		"View":  newListView(facultiesPath, query),
	})
}

func (h *FacultyHandler) newForm(c *fiber.Ctx) error {
	return h.renderForm(c, fiber.StatusOK, "/faculties/create", "Новый факультет", dto.FacultyForm{}, nil)
}

func (h *FacultyHandler) create(c *fiber.Ctx) error {
	var form dto.FacultyForm
	if err := c.BodyParser(&form); err != nil {
		return fiber.ErrBadRequest
	}

	faculty, err := h.service.Create(c.UserContext(), form)
	if err != nil {
		return h.formError(c, err, "/faculties/create", "Новый факультет", form)
	}

	h.flasher.Add(c, flash.LevelSuccess, fmt.Sprintf("Факультет \"%s\" успешно создан!", faculty.Name))
	return c.Redirect(facultiesPath)
}

func (h *FacultyHandler) editForm(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	faculty, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return notFoundOr(err)
	}

	return h.renderForm(c, fiber.StatusOK, facultyEditPath(id), "Редактирование факультета", dto.NewFacultyForm(faculty), nil)
}

func (h *FacultyHandler) update(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var form dto.FacultyForm
	if err := c.BodyParser(&form); err != nil {
		return fiber.ErrBadRequest
	}

	result, err := h.service.Update(c.UserContext(), id, form)
	if err != nil {
		return h.formError(c, err, facultyEditPath(id), "Редактирование факультета", form)
	}

	h.flasher.Add(c, flash.LevelSuccess, fmt.Sprintf("Факультет \"%s\" успешно обновлен!", result.Faculty.Name))
	if result.RenamedGroups > 0 {
		h.flasher.Add(c, flash.LevelInfo, fmt.Sprintf("Имена связанных групп были также обновлены с новым сокращением \"%s\".", result.Faculty.ShortName))
	}
	addWarnings(c, h.flasher, result.Warnings)
	return c.Redirect(facultiesPath)
}

func (h *FacultyHandler) delete(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	faculty, err := h.service.Delete(c.UserContext(), id)
	switch {
	case err == nil:
		h.flasher.Add(c, flash.LevelSuccess, fmt.Sprintf("Факультет \"%s\" успешно удален!", faculty.Name))
	case errors.Is(err, service.ErrFacultyHasGroups):
		h.flasher.Add(c, flash.LevelDanger, fmt.Sprintf("Факультет \"%s\" не может быть удален, так как за ним закреплены группы.", faculty.Name))
	case isNotFound(err):
		return fiber.ErrNotFound
	default:
		requestLogger(h.logger, c).Error().Err(err).Uint("faculty_id", id).Msg("failed to delete faculty")
		h.flasher.Add(c, flash.LevelDanger, "Ошибка при удалении факультета.")
	}
	return c.Redirect(facultiesPath)
}

func (h *FacultyHandler) formError(c *fiber.Ctx, err error, action, title string, form dto.FacultyForm) error {
	status, messages, ok := formFailure(err, h.translator)
	if !ok {
		return fiber.NewError(status)
	}
	if status >= fiber.StatusInternalServerError {
		requestLogger(h.logger, c).Error().Err(err).Str("action", action).Msg("failed to save faculty")
	}
	return h.renderForm(c, status, action, title, form, messages)
}

func (h *FacultyHandler) renderForm(c *fiber.Ctx, status int, action, title string, form dto.FacultyForm, errs []string) error {
	return render(c, h.flasher, status, "faculties/form", fiber.Map{
		"Title":  title,
		"Action": action,
		"Form":   form,
		"Errors": errs,
	})
}

func facultyEditPath(id uint) string {
	return fmt.Sprintf("/faculties/%d/edit", id)
}
