package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/campus-registry/internal/academic"
	"github.com/noah-isme/campus-registry/internal/dto"
	"github.com/noah-isme/campus-registry/internal/listing"
	"github.com/noah-isme/campus-registry/internal/models"
	"github.com/noah-isme/campus-registry/internal/repository"
)

// FacultyService manages faculties and keeps their group names in step with
// the faculty short name.
type FacultyService interface {
	List(ctx context.Context, query listing.Query) (listing.Page[dto.FacultyRow], error)
	Get(ctx context.Context, id uint) (models.Faculty, error)
	Create(ctx context.Context, form dto.FacultyForm) (models.Faculty, error)
	Update(ctx context.Context, id uint, form dto.FacultyForm) (dto.FacultyUpdateResult, error)
	Delete(ctx context.Context, id uint) (models.Faculty, error)
}

type facultyService struct {
	store     repository.Store
	validator *validator.Validate
	pageSize  int
	logger    zerolog.Logger
}

// NewFacultyService constructs the faculty service.
func NewFacultyService(store repository.Store, validate *validator.Validate, pageSize int, logger zerolog.Logger) FacultyService {
	return &facultyService{
		store:     store,
		validator: validate,
		pageSize:  pageSize,
		logger:    logger.With().Str("component", "faculty_service").Logger(),
	}
}

func (s *facultyService) List(ctx context.Context, query listing.Query) (listing.Page[dto.FacultyRow], error) {
	faculties, err := s.store.Faculties().List(ctx)
	if err != nil {
		return listing.Page[dto.FacultyRow]{}, fmt.Errorf("list faculties: %w", err)
	}

	groupCounts, err := s.store.Faculties().GroupCounts(ctx)
	if err != nil {
		return listing.Page[dto.FacultyRow]{}, fmt.Errorf("count groups: %w", err)
	}

	studentCounts, err := s.store.Faculties().StudentCounts(ctx)
	if err != nil {
		return listing.Page[dto.FacultyRow]{}, fmt.Errorf("count students: %w", err)
	}

	rows := make([]dto.FacultyRow, 0, len(faculties))
	for _, faculty := range faculties {
		rows = append(rows, dto.FacultyRow{
			ID:          faculty.ID,
			Name:        faculty.Name,
			ShortName:   faculty.ShortName,
			Description: faculty.Description,
			NumGroups:   groupCounts[faculty.ID],
			NumStudents: studentCounts[faculty.ID],
		})
	}

	if query.PageSize == 0 {
		query.PageSize = s.pageSize
	}
	return listing.Apply(rows, query, "id"), nil
}

func (s *facultyService) Get(ctx context.Context, id uint) (models.Faculty, error) {
	return getFaculty(ctx, s.store, id)
}

func (s *facultyService) Create(ctx context.Context, form dto.FacultyForm) (models.Faculty, error) {
	form = cleanFacultyForm(form)
	if err := s.validator.Struct(form); err != nil {
		return models.Faculty{}, err
	}

	faculty := models.Faculty{
		Name:        form.Name,
		ShortName:   form.ShortName,
		Description: form.Description,
	}

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		if err := tx.Faculties().Create(ctx, &faculty); err != nil {
			return asConflict(err, repository.UniqueFacultyName)
		}
		return recordActivity(ctx, tx, ActivityEntry{
			Action:     ActionCreated,
			EntityType: EntityFaculty,
			EntityID:   faculty.ID,
			Metadata:   map[string]interface{}{"name": faculty.Name, "short_name": faculty.ShortName},
		})
	})
	if err != nil {
		return models.Faculty{}, err
	}

	countMutation(EntityFaculty, ActionCreated)
	s.logger.Info().Uint("faculty_id", faculty.ID).Str("short_name", faculty.ShortName).Msg("faculty created")
	return faculty, nil
}

func (s *facultyService) Update(ctx context.Context, id uint, form dto.FacultyForm) (dto.FacultyUpdateResult, error) {
	form = cleanFacultyForm(form)
	if err := s.validator.Struct(form); err != nil {
		return dto.FacultyUpdateResult{}, err
	}

	var result dto.FacultyUpdateResult
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		faculty, err := getFaculty(ctx, tx, id)
		if err != nil {
			return err
		}

		previousShortName := faculty.ShortName
		faculty.Name = form.Name
		faculty.ShortName = form.ShortName
		faculty.Description = form.Description

		if err := tx.Faculties().Update(ctx, &faculty); err != nil {
			return asConflict(err, repository.UniqueFacultyName)
		}

		result = dto.FacultyUpdateResult{Faculty: faculty}
		if previousShortName != faculty.ShortName {
			renamed, warnings, err := s.renameGroups(ctx, tx, faculty)
			if err != nil {
				return err
			}
			result.RenamedGroups = renamed
			result.Warnings = warnings
		}

		return recordActivity(ctx, tx, ActivityEntry{
			Action:     ActionUpdated,
			EntityType: EntityFaculty,
			EntityID:   faculty.ID,
			Metadata: map[string]interface{}{
				"name":           faculty.Name,
				"short_name":     faculty.ShortName,
				"renamed_groups": result.RenamedGroups,
			},
		})
	})
	if err != nil {
		return dto.FacultyUpdateResult{}, err
	}

	countMutation(EntityFaculty, ActionUpdated)
	s.logger.Info().
		Uint("faculty_id", id).
		Int("renamed_groups", result.RenamedGroups).
		Int("skipped_groups", len(result.Warnings)).
		Msg("faculty updated")
	return result, nil
}

// renameGroups moves every group of the faculty onto the new short name.
// Groups whose name cannot be parsed or whose new name is already used are
// left as they are and reported as warnings.
func (s *facultyService) renameGroups(ctx context.Context, tx repository.Store, faculty models.Faculty) (int, []string, error) {
	groups, err := tx.Groups().ListByFaculty(ctx, faculty.ID)
	if err != nil {
		return 0, nil, fmt.Errorf("list groups of faculty %d: %w", faculty.ID, err)
	}

	renamed := 0
	var warnings []string
	for _, group := range groups {
		name, err := academic.RenameGroup(group.Name, faculty.ShortName)
		if errors.Is(err, academic.ErrMalformedGroupName) {
			s.logger.Warn().Str("group", group.Name).Msg("group name cannot be parsed for rename")
			warnings = append(warnings, fmt.Sprintf("Не удалось автоматически разобрать имя группы %s для обновления.", group.Name))
			continue
		}
		if name == group.Name {
			continue
		}

		taken, err := tx.Groups().NameTaken(ctx, faculty.ID, name, group.ID)
		if err != nil {
			return 0, nil, fmt.Errorf("check group name %q: %w", name, err)
		}
		if taken {
			s.logger.Warn().Str("group", group.Name).Str("target", name).Msg("group rename skipped due to conflict")
			warnings = append(warnings, fmt.Sprintf("Не удалось автоматически обновить имя группы %s из-за конфликта. Обновите вручную.", group.Name))
			continue
		}

		if err := tx.Groups().Rename(ctx, group.ID, name); err != nil {
			return 0, nil, asConflict(err, repository.UniqueGroupName)
		}
		renamed++
	}

	return renamed, warnings, nil
}

func (s *facultyService) Delete(ctx context.Context, id uint) (models.Faculty, error) {
	var faculty models.Faculty
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		var err error
		faculty, err = getFaculty(ctx, tx, id)
		if err != nil {
			return err
		}

		groups, err := tx.Groups().CountByFaculty(ctx, id)
		if err != nil {
			return fmt.Errorf("count groups of faculty %d: %w", id, err)
		}
		if groups > 0 {
			return ErrFacultyHasGroups
		}

		if err := tx.Faculties().Delete(ctx, id); err != nil {
			if repository.IsNotFound(err) {
				return ErrFacultyNotFound
			}
			return err
		}

		return recordActivity(ctx, tx, ActivityEntry{
			Action:     ActionDeleted,
			EntityType: EntityFaculty,
			EntityID:   id,
			Metadata:   map[string]interface{}{"name": faculty.Name},
		})
	})
	if err != nil {
		return faculty, err
	}

	countMutation(EntityFaculty, ActionDeleted)
	s.logger.Info().Uint("faculty_id", id).Msg("faculty deleted")
	return faculty, nil
}

func getFaculty(ctx context.Context, store repository.Store, id uint) (models.Faculty, error) {
	faculty, err := store.Faculties().GetByID(ctx, id)
	if repository.IsNotFound(err) {
		return models.Faculty{}, ErrFacultyNotFound
	}
	if err != nil {
		return models.Faculty{}, fmt.Errorf("load faculty %d: %w", id, err)
	}
	return faculty, nil
}

func cleanFacultyForm(form dto.FacultyForm) dto.FacultyForm {
	return dto.FacultyForm{
		Name:        cleanText(form.Name),
		ShortName:   cleanText(form.ShortName),
		Description: cleanText(form.Description),
	}
}
