package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/campus-registry/internal/models"
)

// FacultyRepository provides access to faculty records.
type FacultyRepository interface {
	List(ctx context.Context) ([]models.Faculty, error)
	GetByID(ctx context.Context, id uint) (models.Faculty, error)
	Create(ctx context.Context, faculty *models.Faculty) error
	Update(ctx context.Context, faculty *models.Faculty) error
	Delete(ctx context.Context, id uint) error
	GroupCounts(ctx context.Context) (map[uint]int64, error)
	StudentCounts(ctx context.Context) (map[uint]int64, error)
}

type facultyRepository struct {
	db *gorm.DB
}

// NewFacultyRepository constructs a faculty repository.
func NewFacultyRepository(db *gorm.DB) FacultyRepository {
	return &facultyRepository{db: db}
}

func (r *facultyRepository) List(ctx context.Context) ([]models.Faculty, error) {
	var faculties []models.Faculty
	if err := r.db.WithContext(ctx).Order("id").Find(&faculties).Error; err != nil {
		return nil, err
	}
	return faculties, nil
}

func (r *facultyRepository) GetByID(ctx context.Context, id uint) (models.Faculty, error) {
	var faculty models.Faculty
	if err := r.db.WithContext(ctx).First(&faculty, id).Error; err != nil {
		return models.Faculty{}, err
	}
	return faculty, nil
}

func (r *facultyRepository) Create(ctx context.Context, faculty *models.Faculty) error {
	return r.db.WithContext(ctx).Create(faculty).Error
}

func (r *facultyRepository) Update(ctx context.Context, faculty *models.Faculty) error {
	return r.db.WithContext(ctx).
		Model(faculty).
		Select("name", "short_name", "description").
		Updates(faculty).Error
}

func (r *facultyRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Faculty{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

type ownerCount struct {
	OwnerID uint
	Total   int64
}

func (r *facultyRepository) GroupCounts(ctx context.Context) (map[uint]int64, error) {
	var rows []ownerCount
	err := r.db.WithContext(ctx).
		Model(&models.Group{}).
		Select("faculty_id AS owner_id, COUNT(*) AS total").
		Group("faculty_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return countsByOwner(rows), nil
}

func (r *facultyRepository) StudentCounts(ctx context.Context) (map[uint]int64, error) {
	var rows []ownerCount
	err := r.db.WithContext(ctx).
		Model(&models.Student{}).
		Select("student_groups.faculty_id AS owner_id, COUNT(*) AS total").
		Joins("JOIN student_groups ON student_groups.id = students.group_id").
		Group("student_groups.faculty_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return countsByOwner(rows), nil
}

func countsByOwner(rows []ownerCount) map[uint]int64 {
	counts := make(map[uint]int64, len(rows))
	for _, row := range rows {
		counts[row.OwnerID] = row.Total
	}
	return counts
}
