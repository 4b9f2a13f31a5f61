package handler

import (
	"fmt"

	ut "github.com/go-playground/universal-translator"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/campus-registry/internal/academic"
	"github.com/noah-isme/campus-registry/internal/dto"
	"github.com/noah-isme/campus-registry/internal/flash"
	"github.com/noah-isme/campus-registry/internal/models"
	"github.com/noah-isme/campus-registry/internal/service"
)

// GroupHandler serves the group pages of a faculty.
type GroupHandler struct {
	groups     service.GroupService
	faculties  service.FacultyService
	translator ut.Translator
	flasher    *flash.Flasher
	logger     zerolog.Logger
}

// NewGroupHandler constructs the handler.
func NewGroupHandler(groups service.GroupService, faculties service.FacultyService, translator ut.Translator, flasher *flash.Flasher, logger zerolog.Logger) *GroupHandler {
	return &GroupHandler{
		groups:     groups,
		faculties:  faculties,
		translator: translator,
		flasher:    flasher,
		logger:     logger.With().Str("component", "group_handler").Logger(),
	}
}

// Register mounts the group routes. Listing and creation live under a
// faculty, editing and deletion address the group directly.
func (h *GroupHandler) Register(router fiber.Router) {
	router.Get("/faculties/:facultyId/groups/", h.list)
	router.Get("/faculties/:facultyId/groups/create", h.newForm)
	router.Post("/faculties/:facultyId/groups/create", h.create)
	router.Get("/groups/:id/edit", h.editForm)
	router.Post("/groups/:id/edit", h.update)
	router.Post("/groups/:id/delete", h.delete)
}

func (h *GroupHandler) list(c *fiber.Ctx) error {
	facultyID, err := parseID(c, "facultyId")
	if err != nil {
		return err
	}

	query := listQuery(c)
	result, err := h.groups.List(c.UserContext(), facultyID, query)
	if err != nil {
		return notFoundOr(err)
	}

	return render(c, h.flasher, fiber.StatusOK, "groups/list", fiber.Map{
		"Title":   "Группы " + result.Faculty.ShortName,
		"Faculty": result.Faculty,
		"Page":    result.Page,
		"View":    newListView(groupsPath(facultyID), query),
	})
}

func (h *GroupHandler) newForm(c *fiber.Ctx) error {
	facultyID, err := parseID(c, "facultyId")
	if err != nil {
		return err
	}

	faculty, err := h.faculties.Get(c.UserContext(), facultyID)
	if err != nil {
		return notFoundOr(err)
	}

	return h.renderForm(c, fiber.StatusOK, faculty, groupCreatePath(facultyID), "Новая группа", dto.GroupForm{}, nil)
}

func (h *GroupHandler) create(c *fiber.Ctx) error {
	facultyID, err := parseID(c, "facultyId")
	if err != nil {
		return err
	}

	var form dto.GroupForm
	if err := c.BodyParser(&form); err != nil {
		return fiber.ErrBadRequest
	}

	group, err := h.groups.Create(c.UserContext(), facultyID, form)
	if err != nil {
		faculty, lookupErr := h.faculties.Get(c.UserContext(), facultyID)
		if lookupErr != nil {
			return notFoundOr(lookupErr)
		}
		return h.formError(c, err, faculty, groupCreatePath(facultyID), "Новая группа", form)
	}

	h.flasher.Add(c, flash.LevelSuccess, fmt.Sprintf("Группа \"%s\" успешно создана!", group.Name))
	return c.Redirect(groupsPath(facultyID))
}

func (h *GroupHandler) editForm(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	details, err := h.groups.Get(c.UserContext(), id)
	if err != nil {
		return notFoundOr(err)
	}

	return h.renderForm(c, fiber.StatusOK, details.Faculty, groupEditPath(id), "Редактирование группы "+details.Group.Name, dto.NewGroupForm(details.Group), nil)
}

func (h *GroupHandler) update(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	details, err := h.groups.Get(c.UserContext(), id)
	if err != nil {
		return notFoundOr(err)
	}

	var form dto.GroupForm
	if err := c.BodyParser(&form); err != nil {
		return fiber.ErrBadRequest
	}

	group, err := h.groups.Update(c.UserContext(), id, form)
	if err != nil {
		return h.formError(c, err, details.Faculty, groupEditPath(id), "Редактирование группы "+details.Group.Name, form)
	}

	h.flasher.Add(c, flash.LevelSuccess, fmt.Sprintf("Группа \"%s\" успешно обновлена!", group.Name))
	return c.Redirect(groupsPath(group.FacultyID))
}

func (h *GroupHandler) delete(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	details, err := h.groups.Get(c.UserContext(), id)
	if err != nil {
		return notFoundOr(err)
	}

	deletion, err := h.groups.Delete(c.UserContext(), id)
	switch {
	case err == nil:
		h.flasher.Add(c, flash.LevelSuccess, fmt.Sprintf("Группа \"%s\" и все ее студенты успешно удалены!", deletion.Group.Name))
		addWarnings(c, h.flasher, deletion.Warnings)
	case isNotFound(err):
		return fiber.ErrNotFound
	default:
		requestLogger(h.logger, c).Error().Err(err).Uint("group_id", id).Msg("failed to delete group")
		h.flasher.Add(c, flash.LevelDanger, "Ошибка при удалении группы.")
	}
	return c.Redirect(groupsPath(details.Faculty.ID))
}

func (h *GroupHandler) formError(c *fiber.Ctx, err error, faculty models.Faculty, action, title string, form dto.GroupForm) error {
	status, messages, ok := formFailure(err, h.translator)
	if !ok {
		return fiber.NewError(status)
	}
	if status >= fiber.StatusInternalServerError {
		requestLogger(h.logger, c).Error().Err(err).Str("action", action).Msg("failed to save group")
	}
	return h.renderForm(c, status, faculty, action, title, form, messages)
}

func (h *GroupHandler) renderForm(c *fiber.Ctx, status int, faculty models.Faculty, action, title string, form dto.GroupForm, errs []string) error {
	return render(c, h.flasher, status, "groups/form", fiber.Map{
		"Title":       title,
		"Action":      action,
		"Faculty":     faculty,
		"Form":        form,
		"Errors":      errs,
		"MinYear":     academic.MinEnrollmentYear,
		"MaxYear":     academic.MaxEnrollmentYear,
		"MinDuration": academic.MinDuration,
		"MaxDuration": academic.MaxDuration,
	})
}

func groupsPath(facultyID uint) string {
	return fmt.Sprintf("/faculties/%d/groups/", facultyID)
}

func groupCreatePath(facultyID uint) string {
	return fmt.Sprintf("/faculties/%d/groups/create", facultyID)
}

func groupEditPath(id uint) string {
	return fmt.Sprintf("/groups/%d/edit", id)
}
