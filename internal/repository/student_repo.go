package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/campus-registry/internal/models"
)

// StudentRepository provides access to student records.
type StudentRepository interface {
	List(ctx context.Context) ([]models.Student, error)
	ListByGroup(ctx context.Context, groupID uint) ([]models.Student, error)
	GetByID(ctx context.Context, id uint) (models.Student, error)
	CountByPhoto(ctx context.Context, photo string) (int64, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id uint) error
	DeleteByGroup(ctx context.Context, groupID uint) (int64, error)
}

type studentRepository struct {
	db *gorm.DB
}

// NewStudentRepository constructs a student repository.
func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) List(ctx context.Context) ([]models.Student, error) {
	var students []models.Student
	if err := r.db.WithContext(ctx).Order("id").Find(&students).Error; err != nil {
		return nil, err
	}
	return students, nil
}

func (r *studentRepository) ListByGroup(ctx context.Context, groupID uint) ([]models.Student, error) {
	var students []models.Student
	err := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("id").
		Find(&students).Error
	if err != nil {
		return nil, err
	}
	return students, nil
}

func (r *studentRepository) GetByID(ctx context.Context, id uint) (models.Student, error) {
	var student models.Student
	if err := r.db.WithContext(ctx).First(&student, id).Error; err != nil {
		return models.Student{}, err
	}
	return student, nil
}

func (r *studentRepository) CountByPhoto(ctx context.Context, photo string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Student{}).
		Where("photo = ?", photo).
		Count(&count).Error
	return count, err
}

func (r *studentRepository) Create(ctx context.Context, student *models.Student) error {
	return r.db.WithContext(ctx).Create(student).Error
}

func (r *studentRepository) Update(ctx context.Context, student *models.Student) error {
	return r.db.WithContext(ctx).
		Model(student).
		Select("full_name", "date_of_birth", "phone_number", "email", "photo").
		Updates(student).Error
}

func (r *studentRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Student{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *studentRepository) DeleteByGroup(ctx context.Context, groupID uint) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Delete(&models.Student{})
	return result.RowsAffected, result.Error
}
