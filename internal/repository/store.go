package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store hands out repositories bound to one database handle. Services open a
// transaction through it and use the repositories of the transactional store
// for every read and write of a mutation.
type Store interface {
	Faculties() FacultyRepository
	Groups() GroupRepository
	Students() StudentRepository
	Activity() ActivityLogRepository
	// Transaction runs fn inside a database transaction. The transaction
	// commits when fn returns nil and rolls back on error or panic.
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

type gormStore struct {
	db *gorm.DB
}

// NewStore constructs a store over db.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Faculties() FacultyRepository {
	return NewFacultyRepository(s.db)
}

func (s *gormStore) Groups() GroupRepository {
	return NewGroupRepository(s.db)
}

func (s *gormStore) Students() StudentRepository {
	return NewStudentRepository(s.db)
}

func (s *gormStore) Activity() ActivityLogRepository {
	return NewActivityLogRepository(s.db)
}

func (s *gormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}
