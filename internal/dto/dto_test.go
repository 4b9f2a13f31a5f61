package dto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/noah-isme/campus-registry/internal/listing"
	"github.com/noah-isme/campus-registry/internal/models"
)

func TestGroupRowSearchesStringifiedNumbers(t *testing.T) {
	rows := []GroupRow{
		{Name: "CS-1-24", Year: 2024, Duration: 4, Course: 2, Status: models.GroupStatusActive, NumStudents: 17},
		{Name: "CS-1-19", Year: 2019, Duration: 4, Course: 4, Status: models.GroupStatusGraduated, NumStudents: 3},
	}

	require.Len(t, listing.Filter(rows, "17"), 1)
	require.Len(t, listing.Filter(rows, "выпущ"), 1)
	require.Len(t, listing.Filter(rows, "cs-1"), 2)
}

func TestStudentRowSearchAndSort(t *testing.T) {
	born := time.Date(2004, 3, 9, 0, 0, 0, 0, time.UTC)
	row := NewStudentRow(models.Student{
		ID:          4,
		FullName:    "Иванов Иван",
		DateOfBirth: datatypes.Date(born),
		PhoneNumber: "+7 900 000-00-00",
		Email:       "ivan@example.com",
	})

	require.Equal(t, "09.03.2004", row.BirthDateText())
	require.Len(t, listing.Filter([]StudentRow{row}, "09.03"), 1)
	require.Len(t, listing.Filter([]StudentRow{row}, "ИВАН"), 1)

	_, ok := row.SortKey("date_of_birth")
	require.True(t, ok)
	_, ok = row.SortKey("id")
	require.False(t, ok, "students are not sortable by identifier")
}

func TestFacultyRowSortKeys(t *testing.T) {
	rows := []FacultyRow{
		{ID: 2, Name: "b", NumGroups: 10},
		{ID: 1, Name: "A", NumGroups: 9},
	}
	listing.Sort(rows, "num_groups", true, "id")
	require.Equal(t, uint(2), rows[0].ID)

	listing.Sort(rows, "unknown", true, "id")
	require.Equal(t, uint(1), rows[0].ID)
}

func TestStudentFormRemovePhoto(t *testing.T) {
	require.True(t, StudentForm{DeletePhoto: "on"}.RemovePhoto())
	require.True(t, StudentForm{DeletePhoto: "1"}.RemovePhoto())
	require.False(t, StudentForm{}.RemovePhoto())
}
