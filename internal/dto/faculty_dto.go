package dto

import (
	"github.com/noah-isme/campus-registry/internal/listing"
	"github.com/noah-isme/campus-registry/internal/models"
)

// FacultyForm is the submitted faculty create/edit form.
type FacultyForm struct {
	Name        string `form:"name" label:"Название" validate:"required,max=128"`
	ShortName   string `form:"short_name" label:"Сокращение" validate:"required,max=32,excludes=-"`
	Description string `form:"description" label:"Описание"`
}

// NewFacultyForm pre-fills the edit form from a stored faculty.
func NewFacultyForm(faculty models.Faculty) FacultyForm {
	return FacultyForm{
		Name:        faculty.Name,
		ShortName:   faculty.ShortName,
		Description: faculty.Description,
	}
}

// FacultyRow is one line of the faculty list.
type FacultyRow struct {
	ID          uint
	Name        string
	ShortName   string
	Description string
	NumGroups   int64
	NumStudents int64
}

// SearchFields implements listing.Record.
func (r FacultyRow) SearchFields() []string {
	return []string{r.Name, r.ShortName, r.Description}
}

// SortKey implements listing.Record.
func (r FacultyRow) SortKey(column string) (listing.Key, bool) {
	switch column {
	case "id":
		return listing.Int(int64(r.ID)), true
	case "name":
		return listing.Text(r.Name), true
	case "short_name":
		return listing.Text(r.ShortName), true
	case "description":
		return listing.Text(r.Description), true
	case "num_groups":
		return listing.Int(r.NumGroups), true
	case "num_students":
		return listing.Int(r.NumStudents), true
	default:
		return listing.Key{}, false
	}
}

// FacultyUpdateResult reports the outcome of a faculty edit, including group
// renames that had to be skipped.
type FacultyUpdateResult struct {
	Faculty       models.Faculty
	RenamedGroups int
	Warnings      []string
}
