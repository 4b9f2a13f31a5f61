package service

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/noah-isme/campus-registry/internal/dto"
	"github.com/noah-isme/campus-registry/internal/listing"
	"github.com/noah-isme/campus-registry/internal/models"
	"github.com/noah-isme/campus-registry/internal/repository"
)

// StudentPage is one page of a group's students.
type StudentPage struct {
	Faculty models.Faculty
	Group   models.Group
	Page    listing.Page[dto.StudentRow]
}

// StudentDetails is a student with the group and faculty it belongs to.
type StudentDetails struct {
	Student models.Student
	Group   models.Group
	Faculty models.Faculty
}

// StudentResult reports a student mutation and any photo cleanup that
// could not be completed.
type StudentResult struct {
	Student  models.Student
	Warnings []string
}

// StudentService manages students and their photographs.
type StudentService interface {
	List(ctx context.Context, groupID uint, query listing.Query) (StudentPage, error)
	Get(ctx context.Context, id uint) (StudentDetails, error)
	Create(ctx context.Context, groupID uint, form dto.StudentForm, photo *multipart.FileHeader) (StudentResult, error)
	Update(ctx context.Context, id uint, form dto.StudentForm, photo *multipart.FileHeader) (StudentResult, error)
	Delete(ctx context.Context, id uint) (StudentResult, error)
}

type studentService struct {
	store     repository.Store
	validator *validator.Validate
	photos    PhotoService
	pageSize  int
	logger    zerolog.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(store repository.Store, validate *validator.Validate, photos PhotoService, pageSize int, logger zerolog.Logger) StudentService {
	return &studentService{
		store:     store,
		validator: validate,
		photos:    photos,
		pageSize:  pageSize,
		logger:    logger.With().Str("component", "student_service").Logger(),
	}
}

func (s *studentService) List(ctx context.Context, groupID uint, query listing.Query) (StudentPage, error) {
	group, err := getGroup(ctx, s.store, groupID)
	if err != nil {
		return StudentPage{}, err
	}

	faculty, err := getFaculty(ctx, s.store, group.FacultyID)
	if err != nil {
		return StudentPage{}, err
	}

	students, err := s.store.Students().ListByGroup(ctx, groupID)
	if err != nil {
		return StudentPage{}, fmt.Errorf("list students: %w", err)
	}

	rows := make([]dto.StudentRow, 0, len(students))
	for _, student := range students {
		rows = append(rows, dto.NewStudentRow(student))
	}

	if query.PageSize == 0 {
		query.PageSize = s.pageSize
	}
	return StudentPage{
		Faculty: faculty,
		Group:   group,
		Page:    listing.Apply(rows, query, "full_name"),
	}, nil
}

func (s *studentService) Get(ctx context.Context, id uint) (StudentDetails, error) {
	student, err := getStudent(ctx, s.store, id)
	if err != nil {
		return StudentDetails{}, err
	}

	group, err := getGroup(ctx, s.store, student.GroupID)
	if err != nil {
		return StudentDetails{}, err
	}

	faculty, err := getFaculty(ctx, s.store, group.FacultyID)
	if err != nil {
		return StudentDetails{}, err
	}

	return StudentDetails{Student: student, Group: group, Faculty: faculty}, nil
}

func (s *studentService) Create(ctx context.Context, groupID uint, form dto.StudentForm, photo *multipart.FileHeader) (StudentResult, error) {
	form, birthDate, err := s.parseForm(form)
	if err != nil {
		return StudentResult{}, err
	}

	var (
		student models.Student
		pending PendingPhoto
	)
	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		if _, err := getGroup(ctx, tx, groupID); err != nil {
			return err
		}

		student = models.Student{
			GroupID:     groupID,
			FullName:    form.FullName,
			DateOfBirth: datatypes.Date(birthDate),
			PhoneNumber: form.PhoneNumber,
			Email:       form.Email,
		}

		if photo != nil {
			staged, err := s.photos.Stage(ctx, photo)
			if err != nil {
				return photoFormError(err)
			}
			pending = staged
			student.Photo = staged.Name
		}

		if err := tx.Students().Create(ctx, &student); err != nil {
			return asConflict(err, repository.UniqueStudentEmail)
		}

		return recordActivity(ctx, tx, ActivityEntry{
			Action:     ActionCreated,
			EntityType: EntityStudent,
			EntityID:   student.ID,
			Metadata:   map[string]interface{}{"full_name": student.FullName, "email": student.Email, "group_id": groupID},
		})
	})
	if err != nil {
		s.photos.Discard(ctx, pending)
		return StudentResult{}, err
	}

	result := StudentResult{Student: student}
	s.publishPhoto(ctx, pending, &result)

	countMutation(EntityStudent, ActionCreated)
	s.logger.Info().Uint("student_id", student.ID).Uint("group_id", groupID).Msg("student created")
	return result, nil
}

func (s *studentService) Update(ctx context.Context, id uint, form dto.StudentForm, photo *multipart.FileHeader) (StudentResult, error) {
	form, birthDate, err := s.parseForm(form)
	if err != nil {
		return StudentResult{}, err
	}

	var (
		student  models.Student
		pending  PendingPhoto
		obsolete string
	)
	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		var err error
		student, err = getStudent(ctx, tx, id)
		if err != nil {
			return err
		}

		previousPhoto := student.Photo
		student.FullName = form.FullName
		student.DateOfBirth = datatypes.Date(birthDate)
		student.PhoneNumber = form.PhoneNumber
		student.Email = form.Email

		switch {
		case photo != nil:
			staged, err := s.photos.Stage(ctx, photo)
			if err != nil {
				return photoFormError(err)
			}
			pending = staged
			student.Photo = staged.Name
		case form.RemovePhoto():
			student.Photo = ""
		}
		if previousPhoto != "" && previousPhoto != student.Photo {
			obsolete = previousPhoto
		}

		if err := tx.Students().Update(ctx, &student); err != nil {
			return asConflict(err, repository.UniqueStudentEmail)
		}

		return recordActivity(ctx, tx, ActivityEntry{
			Action:     ActionUpdated,
			EntityType: EntityStudent,
			EntityID:   student.ID,
			Metadata:   map[string]interface{}{"full_name": student.FullName, "email": student.Email, "photo": student.Photo},
		})
	})
	if err != nil {
		s.photos.Discard(ctx, pending)
		return StudentResult{}, err
	}

	result := StudentResult{Student: student}
	s.publishPhoto(ctx, pending, &result)
	if obsolete != "" {
		if err := releasePhoto(ctx, s.store, s.photos, obsolete); err != nil {
			s.logger.Warn().Err(err).Str("photo", obsolete).Uint("student_id", id).Msg("failed to remove replaced photo")
			result.Warnings = append(result.Warnings, photoRemovalWarning(obsolete, err))
		}
	}

	countMutation(EntityStudent, ActionUpdated)
	s.logger.Info().Uint("student_id", id).Msg("student updated")
	return result, nil
}

func (s *studentService) Delete(ctx context.Context, id uint) (StudentResult, error) {
	var student models.Student
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		var err error
		student, err = getStudent(ctx, tx, id)
		if err != nil {
			return err
		}

		if err := tx.Students().Delete(ctx, id); err != nil {
			if repository.IsNotFound(err) {
				return ErrStudentNotFound
			}
			return err
		}

		return recordActivity(ctx, tx, ActivityEntry{
			Action:     ActionDeleted,
			EntityType: EntityStudent,
			EntityID:   id,
			Metadata:   map[string]interface{}{"full_name": student.FullName, "group_id": student.GroupID},
		})
	})
	if err != nil {
		return StudentResult{Student: student}, err
	}

	result := StudentResult{Student: student}
	if student.HasPhoto() {
		if err := releasePhoto(ctx, s.store, s.photos, student.Photo); err != nil {
			s.logger.Warn().Err(err).Str("photo", student.Photo).Uint("student_id", id).Msg("failed to remove student photo")
			result.Warnings = append(result.Warnings, photoRemovalWarning(student.Photo, err))
		}
	}

	countMutation(EntityStudent, ActionDeleted)
	s.logger.Info().Uint("student_id", id).Msg("student deleted")
	return result, nil
}

func (s *studentService) parseForm(form dto.StudentForm) (dto.StudentForm, time.Time, error) {
	form.FullName = cleanText(form.FullName)
	form.PhoneNumber = cleanText(form.PhoneNumber)
	form.Email = strings.TrimSpace(form.Email)
	form.DateOfBirth = strings.TrimSpace(form.DateOfBirth)

	if err := s.validator.Struct(form); err != nil {
		return form, time.Time{}, err
	}

	birthDate, err := time.Parse(dto.DateLayout, form.DateOfBirth)
	if err != nil {
		return form, time.Time{}, newFormError("Неверный формат даты рождения. Используйте ГГГГ-ММ-ДД.")
	}

	return form, birthDate, nil
}

// publishPhoto moves a committed student's photo into place. A failure
// leaves the record saved and is reported as a warning.
func (s *studentService) publishPhoto(ctx context.Context, photo PendingPhoto, result *StudentResult) {
	if err := s.photos.Publish(context.WithoutCancel(ctx), photo); err != nil {
		s.logger.Error().Err(err).Str("photo", photo.Name).Uint("student_id", result.Student.ID).Msg("failed to publish student photo")
		result.Warnings = append(result.Warnings, photoPublishWarning(photo.Name))
	}
}

// releasePhoto removes a published photo unless a student still refers to
// it. Uploads with the same sanitized name share one file.
func releasePhoto(ctx context.Context, store repository.Store, photos PhotoService, name string) error {
	refs, err := store.Students().CountByPhoto(ctx, name)
	if err != nil {
		return fmt.Errorf("count students with photo %s: %w", name, err)
	}
	if refs > 0 {
		return nil
	}
	return photos.Remove(ctx, name)
}

func getStudent(ctx context.Context, store repository.Store, id uint) (models.Student, error) {
	student, err := store.Students().GetByID(ctx, id)
	if repository.IsNotFound(err) {
		return models.Student{}, ErrStudentNotFound
	}
	if err != nil {
		return models.Student{}, fmt.Errorf("load student %d: %w", id, err)
	}
	return student, nil
}
