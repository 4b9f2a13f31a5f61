package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-registry/internal/dto"
	"github.com/noah-isme/campus-registry/internal/listing"
	"github.com/noah-isme/campus-registry/internal/models"
	"github.com/noah-isme/campus-registry/internal/validation"
)

func TestFacultyServiceCreateStripsMarkupAndRecordsActivity(t *testing.T) {
	r := setupRegistry(t)

	faculty, err := r.faculties.Create(context.Background(), dto.FacultyForm{
		Name:        "  <b>Mathematics</b> ",
		ShortName:   "MATH",
		Description: "Pure & applied",
	})
	require.NoError(t, err)
	require.Equal(t, "Mathematics", faculty.Name)
	require.Equal(t, "Pure & applied", faculty.Description)
	require.Equal(t, []string{"faculty.created"}, r.activityActions(t))
}

func TestFacultyServiceCreateValidation(t *testing.T) {
	r := setupRegistry(t)

	_, err := r.faculties.Create(context.Background(), dto.FacultyForm{Name: "", ShortName: "A-B"})
	require.Error(t, err)
	require.True(t, validation.IsValidationError(err))
}

func TestFacultyServiceCreateConflicts(t *testing.T) {
	r := setupRegistry(t)
	ctx := context.Background()

	_, err := r.faculties.Create(ctx, dto.FacultyForm{Name: "Mathematics", ShortName: "MATH"})
	require.NoError(t, err)

	_, err = r.faculties.Create(ctx, dto.FacultyForm{Name: "Mathematics", ShortName: "M"})
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	require.Equal(t, "name", conflict.Field)
	require.Equal(t, "Факультет с таким названием уже существует.", conflict.Message)

	_, err = r.faculties.Create(ctx, dto.FacultyForm{Name: "Statistics", ShortName: "MATH"})
	require.ErrorAs(t, err, &conflict)
	require.Equal(t, "short_name", conflict.Field)

	require.Equal(t, []string{"faculty.created"}, r.activityActions(t))
}

func TestFacultyServiceUpdateRenamesGroups(t *testing.T) {
	r := setupRegistry(t)
	ctx := context.Background()

	faculty, err := r.faculties.Create(ctx, dto.FacultyForm{Name: "Computer Science", ShortName: "CS"})
	require.NoError(t, err)
	_, err = r.groups.Create(ctx, faculty.ID, dto.GroupForm{Year: "2024", Duration: "4"})
	require.NoError(t, err)
	_, err = r.groups.Create(ctx, faculty.ID, dto.GroupForm{Year: "2024", Duration: "4"})
	require.NoError(t, err)

	// Rows that cannot be renamed automatically.
	require.NoError(t, r.db.Create(&models.Group{FacultyID: faculty.ID, Name: "LEGACY", Year: 2020, Duration: 4, Course: 4}).Error)
	require.NoError(t, r.db.Create(&models.Group{FacultyID: faculty.ID, Name: "IT-2-24", Year: 2024, Duration: 4, Course: 2}).Error)

	result, err := r.faculties.Update(ctx, faculty.ID, dto.FacultyForm{Name: "Computer Science", ShortName: "IT"})
	require.NoError(t, err)
	require.Equal(t, 1, result.RenamedGroups)
	require.Len(t, result.Warnings, 2)
	require.Contains(t, result.Warnings[0]+result.Warnings[1], "LEGACY")
	require.Contains(t, result.Warnings[0]+result.Warnings[1], "CS-2-24")

	names := map[string]bool{}
	groups, err := r.store.Groups().ListByFaculty(ctx, faculty.ID)
	require.NoError(t, err)
	for _, group := range groups {
		names[group.Name] = true
	}
	require.Equal(t, map[string]bool{"IT-1-24": true, "CS-2-24": true, "LEGACY": true, "IT-2-24": true}, names)

	stored, err := r.faculties.Get(ctx, faculty.ID)
	require.NoError(t, err)
	require.Equal(t, "IT", stored.ShortName)
}

func TestFacultyServiceUpdateNotFound(t *testing.T) {
	r := setupRegistry(t)

	_, err := r.faculties.Update(context.Background(), 42, dto.FacultyForm{Name: "X", ShortName: "X"})
	require.ErrorIs(t, err, ErrFacultyNotFound)
}

func TestFacultyServiceDeleteRefusedWhileGroupsExist(t *testing.T) {
	r := setupRegistry(t)
	ctx := context.Background()

	faculty, err := r.faculties.Create(ctx, dto.FacultyForm{Name: "Physics", ShortName: "PHYS"})
	require.NoError(t, err)
	group, err := r.groups.Create(ctx, faculty.ID, dto.GroupForm{Year: "2023", Duration: "4"})
	require.NoError(t, err)

	deleted, err := r.faculties.Delete(ctx, faculty.ID)
	require.ErrorIs(t, err, ErrFacultyHasGroups)
	require.Equal(t, "Physics", deleted.Name)

	_, err = r.groups.Delete(ctx, group.ID)
	require.NoError(t, err)

	_, err = r.faculties.Delete(ctx, faculty.ID)
	require.NoError(t, err)

	_, err = r.faculties.Get(ctx, faculty.ID)
	require.ErrorIs(t, err, ErrFacultyNotFound)
}

func TestFacultyServiceListCountsAndSorts(t *testing.T) {
	r := setupRegistry(t)
	ctx := context.Background()

	math, err := r.faculties.Create(ctx, dto.FacultyForm{Name: "Mathematics", ShortName: "MATH"})
	require.NoError(t, err)
	_, err = r.faculties.Create(ctx, dto.FacultyForm{Name: "Biology", ShortName: "BIO", Description: "life sciences"})
	require.NoError(t, err)
	group, err := r.groups.Create(ctx, math.ID, dto.GroupForm{Year: "2024", Duration: "4"})
	require.NoError(t, err)
	_, err = r.students.Create(ctx, group.ID, dto.StudentForm{
		FullName: "Ivan Petrov", DateOfBirth: "2005-01-10", PhoneNumber: "123", Email: "ivan@example.com",
	}, nil)
	require.NoError(t, err)

	page, err := r.faculties.List(ctx, listing.Query{})
	require.NoError(t, err)
	require.Equal(t, 2, page.Total)
	require.Equal(t, "Mathematics", page.Items[0].Name)
	require.Equal(t, int64(1), page.Items[0].NumGroups)
	require.Equal(t, int64(1), page.Items[0].NumStudents)

	page, err = r.faculties.List(ctx, listing.Query{SortBy: "num_groups", Order: "desc"})
	require.NoError(t, err)
	require.Equal(t, "Mathematics", page.Items[0].Name)

	page, err = r.faculties.List(ctx, listing.Query{Search: "LIFE"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.Equal(t, "Biology", page.Items[0].Name)
}
