package models

import (
	"time"

	"gorm.io/datatypes"
)

// Student is an individual enrolled in exactly one group.
type Student struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	GroupID     uint           `gorm:"not null;index" json:"group_id"`
	FullName    string         `gorm:"size:128;not null" json:"full_name"`
	DateOfBirth datatypes.Date `gorm:"not null" json:"date_of_birth"`
	PhoneNumber string         `gorm:"size:32;not null" json:"phone_number"`
	Email       string         `gorm:"size:128;not null;uniqueIndex:uq_students_email" json:"email"`
	Photo       string         `gorm:"size:255" json:"photo,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// BirthDate returns the date of birth as a time value.
func (s Student) BirthDate() time.Time {
	return time.Time(s.DateOfBirth)
}

// HasPhoto reports whether a photo file is attached.
func (s Student) HasPhoto() bool {
	return s.Photo != ""
}
