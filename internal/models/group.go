package models

import "time"

// Group status values shown to users.
const (
	GroupStatusActive    = "Учится"
	GroupStatusGraduated = "Выпущена"
)

// Group is a cohort admitted in a given year for a fixed programme duration.
// Name, Course and Status are derived and never edited directly.
type Group struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	FacultyID uint      `gorm:"not null;uniqueIndex:uq_student_groups_faculty_name,priority:1" json:"faculty_id"`
	Name      string    `gorm:"size:64;not null;uniqueIndex:uq_student_groups_faculty_name,priority:2" json:"name"`
	Year      int       `gorm:"not null;index" json:"year"`
	Duration  int       `gorm:"not null" json:"duration"`
	Course    int       `gorm:"not null" json:"course"`
	Status    string    `gorm:"size:32" json:"status"`
	Students  []Student `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName keeps the table clear of the SQL keyword GROUPS.
func (Group) TableName() string {
	return "student_groups"
}
