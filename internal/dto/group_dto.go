package dto

import (
	"strconv"

	"github.com/noah-isme/campus-registry/internal/listing"
	"github.com/noah-isme/campus-registry/internal/models"
)

// GroupForm is the submitted group create/edit form. Numbers arrive as text
// so that malformed input can be reported instead of rejected by the parser.
type GroupForm struct {
	Year     string `form:"year" label:"Год поступления" validate:"required"`
	Duration string `form:"duration" label:"Срок обучения" validate:"required"`
}

// NewGroupForm pre-fills the edit form from a stored group.
func NewGroupForm(group models.Group) GroupForm {
	return GroupForm{
		Year:     strconv.Itoa(group.Year),
		Duration: strconv.Itoa(group.Duration),
	}
}

// GroupRow is one line of a faculty's group list.
type GroupRow struct {
	ID          uint
	Name        string
	Year        int
	Duration    int
	Course      int
	Status      string
	NumStudents int64
}

// SearchFields implements listing.Record.
func (r GroupRow) SearchFields() []string {
	return []string{
		r.Name,
		strconv.Itoa(r.Year),
		strconv.Itoa(r.Duration),
		strconv.Itoa(r.Course),
		r.Status,
		strconv.FormatInt(r.NumStudents, 10),
	}
}

// SortKey implements listing.Record.
func (r GroupRow) SortKey(column string) (listing.Key, bool) {
	switch column {
	case "id":
		return listing.Int(int64(r.ID)), true
	case "name":
		return listing.Text(r.Name), true
	case "year":
		return listing.Int(int64(r.Year)), true
	case "duration":
		return listing.Int(int64(r.Duration)), true
	case "course":
		return listing.Int(int64(r.Course)), true
	case "status":
		return listing.Text(r.Status), true
	case "num_students":
		return listing.Int(r.NumStudents), true
	default:
		return listing.Key{}, false
	}
}
