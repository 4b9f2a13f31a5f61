package dto

import (
	"strings"
	"time"

	"github.com/noah-isme/campus-registry/internal/listing"
	"github.com/noah-isme/campus-registry/internal/models"
)

// DateLayout is the wire format of dates in forms and exports.
const DateLayout = "2006-01-02"

// DisplayDateLayout is how birth dates are shown and searched in lists.
const DisplayDateLayout = "02.01.2006"

// StudentForm is the submitted student create/edit form.
type StudentForm struct {
	FullName    string `form:"full_name" label:"ФИО" validate:"required,max=128"`
	DateOfBirth string `form:"date_of_birth" label:"Дата рождения" validate:"required,datetime=2006-01-02"`
	PhoneNumber string `form:"phone_number" label:"Телефон" validate:"required,max=32"`
	Email       string `form:"email" label:"Email" validate:"required,email,max=128"`
	DeletePhoto string `form:"delete_photo"`
}

// NewStudentForm pre-fills the edit form from a stored student.
func NewStudentForm(student models.Student) StudentForm {
	return StudentForm{
		FullName:    student.FullName,
		DateOfBirth: student.BirthDate().Format(DateLayout),
		PhoneNumber: student.PhoneNumber,
		Email:       student.Email,
	}
}

// RemovePhoto reports whether the "delete photo" checkbox was ticked.
func (f StudentForm) RemovePhoto() bool {
	switch strings.ToLower(strings.TrimSpace(f.DeletePhoto)) {
	case "on", "1", "true", "yes":
		return true
	default:
		return false
	}
}

// StudentRow is one line of a group's student list.
type StudentRow struct {
	ID          uint
	FullName    string
	DateOfBirth time.Time
	PhoneNumber string
	Email       string
	Photo       string
}

// NewStudentRow converts a stored student into a list row.
func NewStudentRow(student models.Student) StudentRow {
	return StudentRow{
		ID:          student.ID,
		FullName:    student.FullName,
		DateOfBirth: student.BirthDate(),
		PhoneNumber: student.PhoneNumber,
		Email:       student.Email,
		Photo:       student.Photo,
	}
}

// BirthDateText is the birth date in display form.
func (r StudentRow) BirthDateText() string {
	if r.DateOfBirth.IsZero() {
		return "-"
	}
	return r.DateOfBirth.Format(DisplayDateLayout)
}

// SearchFields implements listing.Record.
func (r StudentRow) SearchFields() []string {
	return []string{r.FullName, r.BirthDateText(), r.PhoneNumber, r.Email}
}

// SortKey implements listing.Record.
func (r StudentRow) SortKey(column string) (listing.Key, bool) {
	switch column {
	case "full_name":
		return listing.Text(r.FullName), true
	case "date_of_birth":
		return listing.Date(r.DateOfBirth), true
	case "phone_number":
		return listing.Text(r.PhoneNumber), true
	case "email":
		return listing.Text(r.Email), true
	default:
		return listing.Key{}, false
	}
}
