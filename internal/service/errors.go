package service

import (
	"errors"
	"strings"

	"github.com/noah-isme/campus-registry/internal/repository"
)

var (
	// ErrFacultyNotFound indicates the faculty does not exist.
	ErrFacultyNotFound = errors.New("faculty not found")
	// ErrGroupNotFound indicates the group does not exist.
	ErrGroupNotFound = errors.New("group not found")
	// ErrStudentNotFound indicates the student does not exist.
	ErrStudentNotFound = errors.New("student not found")
	// ErrFacultyHasGroups indicates a faculty cannot be deleted while it owns groups.
	ErrFacultyHasGroups = errors.New("faculty still owns groups")
)

// FormError reports submitted values that cannot be accepted. Messages are
// ready to be shown next to the form.
type FormError struct {
	Messages []string
}

func (e *FormError) Error() string {
	return strings.Join(e.Messages, " ")
}

func newFormError(messages ...string) *FormError {
	return &FormError{Messages: messages}
}

// ConflictError reports a unique constraint violation on Field.
type ConflictError struct {
	Field   string
	Message string
	Err     error
}

func (e *ConflictError) Error() string {
	return e.Message
}

func (e *ConflictError) Unwrap() error {
	return e.Err
}

type conflictText struct {
	field   string
	message string
}

var conflictTexts = map[string]conflictText{
	repository.UniqueFacultyName:      {field: "name", message: "Факультет с таким названием уже существует."},
	repository.UniqueFacultyShortName: {field: "short_name", message: "Факультет с таким сокращением уже существует."},
	repository.UniqueGroupName:        {field: "name", message: "Группа с таким именем уже существует на факультете."},
	repository.UniqueStudentEmail:     {field: "email", message: "Студент с таким email уже существует."},
}

// asConflict converts unique violations into a ConflictError. fallback is
// used when the driver does not name the violated column.
func asConflict(err error, fallback string) error {
	target, ok := repository.UniqueViolation(err)
	if !ok {
		return err
	}

	text, known := conflictTexts[target]
	if !known {
		text = conflictTexts[fallback]
	}
	return &ConflictError{Field: text.field, Message: text.message, Err: err}
}
