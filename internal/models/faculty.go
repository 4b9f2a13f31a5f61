package models

import "time"

// Faculty is the top-level organisational unit that owns groups.
type Faculty struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:128;not null;uniqueIndex:uq_faculties_name" json:"name"`
	ShortName   string    `gorm:"size:32;not null;uniqueIndex:uq_faculties_short_name" json:"short_name"`
	Description string    `gorm:"type:text" json:"description"`
	Groups      []Group   `gorm:"foreignKey:FacultyID;constraint:OnDelete:RESTRICT" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
