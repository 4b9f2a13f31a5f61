package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/campus-registry/internal/models"
)

// GroupRepository provides access to group records.
type GroupRepository interface {
	List(ctx context.Context) ([]models.Group, error)
	ListByFaculty(ctx context.Context, facultyID uint) ([]models.Group, error)
	GetByID(ctx context.Context, id uint) (models.Group, error)
	Create(ctx context.Context, group *models.Group) error
	Update(ctx context.Context, group *models.Group) error
	Rename(ctx context.Context, id uint, name string) error
	Delete(ctx context.Context, id uint) error
	CountByFaculty(ctx context.Context, facultyID uint) (int64, error)
	// CountByFacultyYear counts the faculty's groups enrolled in year,
	// ignoring the group with id excludeID (0 ignores none).
	CountByFacultyYear(ctx context.Context, facultyID uint, year int, excludeID uint) (int64, error)
	// NameTaken reports whether another group of the faculty uses name.
	NameTaken(ctx context.Context, facultyID uint, name string, excludeID uint) (bool, error)
	StudentCounts(ctx context.Context, facultyID uint) (map[uint]int64, error)
}

type groupRepository struct {
	db *gorm.DB
}

// NewGroupRepository constructs a group repository.
func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &groupRepository{db: db}
}

func (r *groupRepository) List(ctx context.Context) ([]models.Group, error) {
	var groups []models.Group
	if err := r.db.WithContext(ctx).Order("id").Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}

func (r *groupRepository) ListByFaculty(ctx context.Context, facultyID uint) ([]models.Group, error) {
	var groups []models.Group
	err := r.db.WithContext(ctx).
		Where("faculty_id = ?", facultyID).
		Order("id").
		Find(&groups).Error
	if err != nil {
		return nil, err
	}
	return groups, nil
}

func (r *groupRepository) GetByID(ctx context.Context, id uint) (models.Group, error) {
	var group models.Group
	if err := r.db.WithContext(ctx).First(&group, id).Error; err != nil {
		return models.Group{}, err
	}
	return group, nil
}

func (r *groupRepository) Create(ctx context.Context, group *models.Group) error {
	return r.db.WithContext(ctx).Create(group).Error
}

func (r *groupRepository) Update(ctx context.Context, group *models.Group) error {
	return r.db.WithContext(ctx).
		Model(group).
		Select("name", "year", "duration", "course", "status").
		Updates(group).Error
}

func (r *groupRepository) Rename(ctx context.Context, id uint, name string) error {
	return r.db.WithContext(ctx).
		Model(&models.Group{}).
		Where("id = ?", id).
		Update("name", name).Error
}

func (r *groupRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Group{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *groupRepository) CountByFaculty(ctx context.Context, facultyID uint) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.Group{}).
		Where("faculty_id = ?", facultyID).
		Count(&total).Error
	return total, err
}

func (r *groupRepository) CountByFacultyYear(ctx context.Context, facultyID uint, year int, excludeID uint) (int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Group{}).
		Where("faculty_id = ? AND year = ?", facultyID, year)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}

	var total int64
	err := query.Count(&total).Error
	return total, err
}

func (r *groupRepository) NameTaken(ctx context.Context, facultyID uint, name string, excludeID uint) (bool, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Group{}).
		Where("faculty_id = ? AND name = ?", facultyID, name)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return false, err
	}
	return total > 0, nil
}

func (r *groupRepository) StudentCounts(ctx context.Context, facultyID uint) (map[uint]int64, error) {
	var rows []ownerCount
	err := r.db.WithContext(ctx).
		Model(&models.Student{}).
		Select("students.group_id AS owner_id, COUNT(*) AS total").
		Joins("JOIN student_groups ON student_groups.id = students.group_id").
		Where("student_groups.faculty_id = ?", facultyID).
		Group("students.group_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return countsByOwner(rows), nil
}
