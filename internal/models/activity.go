package models

import (
	"time"

	"gorm.io/datatypes"
)

// ActivityLog captures an auditable change to a faculty, group or student.
type ActivityLog struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	Action     string            `gorm:"size:64;not null;index" json:"action"`
	EntityType string            `gorm:"size:64;not null;index" json:"entity_type"`
	EntityID   *uint             `json:"entity_id"`
	Metadata   datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	CreatedAt  time.Time         `json:"created_at"`
}

// All lists every model managed by the schema migration.
func All() []interface{} {
	return []interface{}{&Faculty{}, &Group{}, &Student{}, &ActivityLog{}}
}
