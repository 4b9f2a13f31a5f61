package handler

import (
	"fmt"
	"mime/multipart"

	ut "github.com/go-playground/universal-translator"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/campus-registry/internal/dto"
	"github.com/noah-isme/campus-registry/internal/flash"
	"github.com/noah-isme/campus-registry/internal/service"
)

// StudentHandler serves the student pages of a group.
type StudentHandler struct {
	students   service.StudentService
	groups     service.GroupService
	translator ut.Translator
	flasher    *flash.Flasher
	logger     zerolog.Logger
}

// NewStudentHandler constructs the handler.
func NewStudentHandler(students service.StudentService, groups service.GroupService, translator ut.Translator, flasher *flash.Flasher, logger zerolog.Logger) *StudentHandler {
	return &StudentHandler{
		students:   students,
		groups:     groups,
		translator: translator,
		flasher:    flasher,
		logger:     logger.With().Str("component", "student_handler").Logger(),
	}
}

// Register mounts the student routes.
func (h *StudentHandler) Register(router fiber.Router) {
	router.Get("/groups/:groupId/students/", h.list)
	router.Get("/groups/:groupId/students/create", h.newForm)
	router.Post("/groups/:groupId/students/create", h.create)
	router.Get("/students/:id/edit", h.editForm)
	router.Post("/students/:id/edit", h.update)
	router.Get("/students/:id/view_card", h.card)
	router.Post("/students/:id/delete", h.delete)
}

type studentFormView struct {
	details service.GroupDetails
	action  string
	title   string
	photo   string
}

func (h *StudentHandler) list(c *fiber.Ctx) error {
	groupID, err := parseID(c, "groupId")
	if err != nil {
		return err
	}

	query := listQuery(c)
	result, err := h.students.List(c.UserContext(), groupID, query)
	if err != nil {
		return notFoundOr(err)
	}

	return render(c, h.flasher, fiber.StatusOK, "students/list", fiber.Map{
		"Title":   "Студенты " + result.Group.Name,
		"Faculty": result.Faculty,
		"Group":   result.Group,
		"Page":    result.Page,
		"View":    newListView(studentsPath(groupID), query),
	})
}

func (h *StudentHandler) newForm(c *fiber.Ctx) error {
	groupID, err := parseID(c, "groupId")
	if err != nil {
		return err
	}

	details, err := h.groups.Get(c.UserContext(), groupID)
	if err != nil {
		return notFoundOr(err)
	}

	view := studentFormView{details: details, action: studentCreatePath(groupID), title: "Новый студент"}
	return h.renderForm(c, fiber.StatusOK, view, dto.StudentForm{}, nil)
}

func (h *StudentHandler) create(c *fiber.Ctx) error {
	groupID, err := parseID(c, "groupId")
	if err != nil {
		return err
	}

	details, err := h.groups.Get(c.UserContext(), groupID)
	if err != nil {
		return notFoundOr(err)
	}

	var form dto.StudentForm
	if err := c.BodyParser(&form); err != nil {
		return fiber.ErrBadRequest
	}

	result, err := h.students.Create(c.UserContext(), groupID, form, uploadedPhoto(c))
	if err != nil {
		view := studentFormView{details: details, action: studentCreatePath(groupID), title: "Новый студент"}
		return h.formError(c, err, view, form)
	}

	h.flasher.Add(c, flash.LevelSuccess, fmt.Sprintf("Студент \"%s\" успешно добавлен!", result.Student.FullName))
	addWarnings(c, h.flasher, result.Warnings)
	return c.Redirect(studentsPath(groupID))
}

func (h *StudentHandler) editForm(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	details, err := h.students.Get(c.UserContext(), id)
	if err != nil {
		return notFoundOr(err)
	}

	view := editView(details)
	return h.renderForm(c, fiber.StatusOK, view, dto.NewStudentForm(details.Student), nil)
}

func (h *StudentHandler) update(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	details, err := h.students.Get(c.UserContext(), id)
	if err != nil {
		return notFoundOr(err)
	}

	var form dto.StudentForm
	if err := c.BodyParser(&form); err != nil {
		return fiber.ErrBadRequest
	}

	result, err := h.students.Update(c.UserContext(), id, form, uploadedPhoto(c))
	if err != nil {
		return h.formError(c, err, editView(details), form)
	}

	h.flasher.Add(c, flash.LevelSuccess, fmt.Sprintf("Данные студента \"%s\" успешно обновлены!", result.Student.FullName))
	addWarnings(c, h.flasher, result.Warnings)
	return c.Redirect(studentsPath(result.Student.GroupID))
}

func (h *StudentHandler) card(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	details, err := h.students.Get(c.UserContext(), id)
	if err != nil {
		return notFoundOr(err)
	}

	return render(c, h.flasher, fiber.StatusOK, "students/card", fiber.Map{
		"Title":     details.Student.FullName,
		"Student":   details.Student,
		"Group":     details.Group,
		"Faculty":   details.Faculty,
		"BirthDate": dto.NewStudentRow(details.Student).BirthDateText(),
	})
}

func (h *StudentHandler) delete(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	result, err := h.students.Delete(c.UserContext(), id)
	switch {
	case err == nil:
		h.flasher.Add(c, flash.LevelSuccess, fmt.Sprintf("Студент \"%s\" успешно удален!", result.Student.FullName))
		addWarnings(c, h.flasher, result.Warnings)
	case isNotFound(err):
		return fiber.ErrNotFound
	default:
		requestLogger(h.logger, c).Error().Err(err).Uint("student_id", id).Msg("failed to delete student")
		h.flasher.Add(c, flash.LevelDanger, "Ошибка при удалении студента.")
		if result.Student.GroupID == 0 {
			return c.Redirect(facultiesPath)
		}
	}
	return c.Redirect(studentsPath(result.Student.GroupID))
}

func (h *StudentHandler) formError(c *fiber.Ctx, err error, view studentFormView, form dto.StudentForm) error {
	status, messages, ok := formFailure(err, h.translator)
	if !ok {
		return fiber.NewError(status)
	}
	if status >= fiber.StatusInternalServerError {
		requestLogger(h.logger, c).Error().Err(err).Str("action", view.action).Msg("failed to save student")
	}
	return h.renderForm(c, status, view, form, messages)
}

func (h *StudentHandler) renderForm(c *fiber.Ctx, status int, view studentFormView, form dto.StudentForm, errs []string) error {
	return render(c, h.flasher, status, "students/form", fiber.Map{
		"Title":   view.title,
		"Action":  view.action,
		"Faculty": view.details.Faculty,
		"Group":   view.details.Group,
		"Photo":   view.photo,
		"Form":    form,
		"Errors":  errs,
	})
}

func editView(details service.StudentDetails) studentFormView {
	return studentFormView{
		details: service.GroupDetails{Group: details.Group, Faculty: details.Faculty},
		action:  fmt.Sprintf("/students/%d/edit", details.Student.ID),
		title:   "Редактирование студента " + details.Student.FullName,
		photo:   details.Student.Photo,
	}
}

// uploadedPhoto returns the submitted photo, or nil when the file input
// was left empty.
func uploadedPhoto(c *fiber.Ctx) *multipart.FileHeader {
	file, err := c.FormFile("photo")
	if err != nil || file == nil || file.Filename == "" || file.Size == 0 {
		return nil
	}
	return file
}

func studentsPath(groupID uint) string {
	return fmt.Sprintf("/groups/%d/students/", groupID)
}

func studentCreatePath(groupID uint) string {
	return fmt.Sprintf("/groups/%d/students/create", groupID)
}
