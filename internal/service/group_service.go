package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/campus-registry/internal/academic"
	"github.com/noah-isme/campus-registry/internal/dto"
	"github.com/noah-isme/campus-registry/internal/listing"
	"github.com/noah-isme/campus-registry/internal/models"
	"github.com/noah-isme/campus-registry/internal/repository"
)

// GroupPage is one page of a faculty's groups.
type GroupPage struct {
	Faculty models.Faculty
	Page    listing.Page[dto.GroupRow]
}

// GroupDetails is a group together with its faculty.
type GroupDetails struct {
	Group   models.Group
	Faculty models.Faculty
}

// GroupDeletion reports a removed group and any photo files that could not
// be cleaned up.
type GroupDeletion struct {
	Group           models.Group
	StudentsRemoved int
	Warnings        []string
}

// GroupService manages groups, deriving their names, course and status.
type GroupService interface {
	List(ctx context.Context, facultyID uint, query listing.Query) (GroupPage, error)
	Get(ctx context.Context, id uint) (GroupDetails, error)
	Create(ctx context.Context, facultyID uint, form dto.GroupForm) (models.Group, error)
	Update(ctx context.Context, id uint, form dto.GroupForm) (models.Group, error)
	Delete(ctx context.Context, id uint) (GroupDeletion, error)
}

type groupService struct {
	store     repository.Store
	validator *validator.Validate
	calendar  academic.Calendar
	photos    PhotoService
	pageSize  int
	logger    zerolog.Logger
}

// NewGroupService constructs the group service.
func NewGroupService(store repository.Store, validate *validator.Validate, calendar academic.Calendar, photos PhotoService, pageSize int, logger zerolog.Logger) GroupService {
	return &groupService{
		store:     store,
		validator: validate,
		calendar:  calendar,
		photos:    photos,
		pageSize:  pageSize,
		logger:    logger.With().Str("component", "group_service").Logger(),
	}
}

func (s *groupService) List(ctx context.Context, facultyID uint, query listing.Query) (GroupPage, error) {
	faculty, err := getFaculty(ctx, s.store, facultyID)
	if err != nil {
		return GroupPage{}, err
	}

	groups, err := s.store.Groups().ListByFaculty(ctx, facultyID)
	if err != nil {
		return GroupPage{}, fmt.Errorf("list groups: %w", err)
	}

	counts, err := s.store.Groups().StudentCounts(ctx, facultyID)
	if err != nil {
		return GroupPage{}, fmt.Errorf("count students: %w", err)
	}

	rows := make([]dto.GroupRow, 0, len(groups))
	for _, group := range groups {
		rows = append(rows, dto.GroupRow{
			ID:          group.ID,
			Name:        group.Name,
			Year:        group.Year,
			Duration:    group.Duration,
			Course:      s.calendar.Course(group.Year, group.Duration),
			Status:      s.calendar.Status(group.Year, group.Duration),
			NumStudents: counts[group.ID],
		})
	}

	if query.PageSize == 0 {
		query.PageSize = s.pageSize
	}
	return GroupPage{Faculty: faculty, Page: listing.Apply(rows, query, "name")}, nil
}

func (s *groupService) Get(ctx context.Context, id uint) (GroupDetails, error) {
	group, err := getGroup(ctx, s.store, id)
	if err != nil {
		return GroupDetails{}, err
	}

	faculty, err := getFaculty(ctx, s.store, group.FacultyID)
	if err != nil {
		return GroupDetails{}, err
	}

	return GroupDetails{Group: group, Faculty: faculty}, nil
}

func (s *groupService) Create(ctx context.Context, facultyID uint, form dto.GroupForm) (models.Group, error) {
	year, duration, err := s.parseForm(form)
	if err != nil {
		return models.Group{}, err
	}

	var group models.Group
	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		faculty, err := getFaculty(ctx, tx, facultyID)
		if err != nil {
			return err
		}

		name, err := nextGroupName(ctx, tx, faculty, year, 0)
		if err != nil {
			return err
		}

		group = models.Group{FacultyID: faculty.ID, Name: name, Year: year, Duration: duration}
		s.calendar.Apply(&group)

		if err := tx.Groups().Create(ctx, &group); err != nil {
			return asConflict(err, repository.UniqueGroupName)
		}

		return recordActivity(ctx, tx, ActivityEntry{
			Action:     ActionCreated,
			EntityType: EntityGroup,
			EntityID:   group.ID,
			Metadata:   map[string]interface{}{"name": group.Name, "faculty_id": faculty.ID},
		})
	})
	if err != nil {
		return models.Group{}, err
	}

	countMutation(EntityGroup, ActionCreated)
	s.logger.Info().Uint("group_id", group.ID).Str("name", group.Name).Msg("group created")
	return group, nil
}

func (s *groupService) Update(ctx context.Context, id uint, form dto.GroupForm) (models.Group, error) {
	year, duration, err := s.parseForm(form)
	if err != nil {
		return models.Group{}, err
	}

	var group models.Group
	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		var err error
		group, err = getGroup(ctx, tx, id)
		if err != nil {
			return err
		}

		faculty, err := getFaculty(ctx, tx, group.FacultyID)
		if err != nil {
			return err
		}

		if group.Year != year {
			group.Name, err = nextGroupName(ctx, tx, faculty, year, group.ID)
			if err != nil {
				return err
			}
		}
		group.Year = year
		group.Duration = duration
		s.calendar.Apply(&group)

		if err := tx.Groups().Update(ctx, &group); err != nil {
			return asConflict(err, repository.UniqueGroupName)
		}

		return recordActivity(ctx, tx, ActivityEntry{
			Action:     ActionUpdated,
			EntityType: EntityGroup,
			EntityID:   group.ID,
			Metadata:   map[string]interface{}{"name": group.Name, "year": year, "duration": duration},
		})
	})
	if err != nil {
		return models.Group{}, err
	}

	countMutation(EntityGroup, ActionUpdated)
	s.logger.Info().Uint("group_id", group.ID).Str("name", group.Name).Msg("group updated")
	return group, nil
}

func (s *groupService) Delete(ctx context.Context, id uint) (GroupDeletion, error) {
	var (
		deletion GroupDeletion
		photos   []string
	)

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		group, err := getGroup(ctx, tx, id)
		if err != nil {
			return err
		}
		deletion.Group = group

		students, err := tx.Students().ListByGroup(ctx, id)
		if err != nil {
			return fmt.Errorf("list students of group %d: %w", id, err)
		}
		seen := make(map[string]bool, len(students))
		for _, student := range students {
			if student.HasPhoto() && !seen[student.Photo] {
				seen[student.Photo] = true
				photos = append(photos, student.Photo)
			}
		}

		removed, err := tx.Students().DeleteByGroup(ctx, id)
		if err != nil {
			return fmt.Errorf("delete students of group %d: %w", id, err)
		}
		deletion.StudentsRemoved = int(removed)

		if err := tx.Groups().Delete(ctx, id); err != nil {
			if repository.IsNotFound(err) {
				return ErrGroupNotFound
			}
			return err
		}

		return recordActivity(ctx, tx, ActivityEntry{
			Action:     ActionDeleted,
			EntityType: EntityGroup,
			EntityID:   id,
			Metadata:   map[string]interface{}{"name": group.Name, "students_removed": removed},
		})
	})
	if err != nil {
		return deletion, err
	}

	for _, photo := range photos {
		if err := releasePhoto(ctx, s.store, s.photos, photo); err != nil {
			s.logger.Warn().Err(err).Str("photo", photo).Uint("group_id", id).Msg("failed to remove student photo")
			deletion.Warnings = append(deletion.Warnings, photoRemovalWarning(photo, err))
		}
	}

	countMutation(EntityGroup, ActionDeleted)
	s.logger.Info().Uint("group_id", id).Int("students_removed", deletion.StudentsRemoved).Msg("group deleted")
	return deletion, nil
}

func (s *groupService) parseForm(form dto.GroupForm) (int, int, error) {
	form.Year = strings.TrimSpace(form.Year)
	form.Duration = strings.TrimSpace(form.Duration)
	if err := s.validator.Struct(form); err != nil {
		return 0, 0, err
	}

	year, yearErr := strconv.Atoi(form.Year)
	duration, durationErr := strconv.Atoi(form.Duration)
	if yearErr != nil || durationErr != nil {
		return 0, 0, newFormError("Год поступления и срок обучения должны быть корректными числами.")
	}

	var messages []string
	if year < academic.MinEnrollmentYear || year > academic.MaxEnrollmentYear {
		messages = append(messages, fmt.Sprintf("Год поступления должен быть между %d и %d.", academic.MinEnrollmentYear, academic.MaxEnrollmentYear))
	}
	if duration < academic.MinDuration || duration > academic.MaxDuration {
		messages = append(messages, fmt.Sprintf("Срок обучения должен быть от %d до %d лет.", academic.MinDuration, academic.MaxDuration))
	}
	if len(messages) > 0 {
		return 0, 0, newFormError(messages...)
	}

	return year, duration, nil
}

// nextGroupName finds the first free name for a group of faculty enrolled
// in year. excludeID skips the group being edited.
func nextGroupName(ctx context.Context, tx repository.Store, faculty models.Faculty, year int, excludeID uint) (string, error) {
	existing, err := tx.Groups().CountByFacultyYear(ctx, faculty.ID, year, excludeID)
	if err != nil {
		return "", fmt.Errorf("count groups for %d: %w", year, err)
	}

	return academic.NextGroupName(faculty.ShortName, year, int(existing), func(name string) (bool, error) {
		return tx.Groups().NameTaken(ctx, faculty.ID, name, excludeID)
	})
}

func getGroup(ctx context.Context, store repository.Store, id uint) (models.Group, error) {
	group, err := store.Groups().GetByID(ctx, id)
	if repository.IsNotFound(err) {
		return models.Group{}, ErrGroupNotFound
	}
	if err != nil {
		return models.Group{}, fmt.Errorf("load group %d: %w", id, err)
	}
	return group, nil
}
