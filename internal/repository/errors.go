package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

// Unique constraint targets reported by UniqueViolation.
const (
	UniqueFacultyName      = "faculties.name"
	UniqueFacultyShortName = "faculties.short_name"
	UniqueGroupName        = "student_groups.name"
	UniqueStudentEmail     = "students.email"
)

var constraintTargets = map[string]string{
	"uq_faculties_name":              UniqueFacultyName,
	"uq_faculties_short_name":        UniqueFacultyShortName,
	"uq_student_groups_faculty_name": UniqueGroupName,
	"uq_students_email":              UniqueStudentEmail,
}

const sqliteUniquePrefix = "UNIQUE constraint failed: "

// UniqueViolation reports whether err is a unique constraint violation and,
// when the driver exposes it, which column it concerns ("table.column").
func UniqueViolation(err error) (string, bool) {
	if err == nil {
		return "", false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code != "23505" {
			return "", false
		}
		return constraintTargets[pgErr.ConstraintName], true
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		if sqliteErr.ExtendedCode != sqlite3.ErrConstraintUnique {
			return "", false
		}
		return sqliteTarget(sqliteErr.Error()), true
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return "", true
	}

	if strings.Contains(err.Error(), sqliteUniquePrefix) {
		return sqliteTarget(err.Error()), true
	}

	return "", false
}

// sqliteTarget extracts the last column from messages such as
// "UNIQUE constraint failed: student_groups.faculty_id, student_groups.name".
func sqliteTarget(message string) string {
	idx := strings.Index(message, sqliteUniquePrefix)
	if idx < 0 {
		return ""
	}
	columns := strings.Split(message[idx+len(sqliteUniquePrefix):], ",")
	return strings.TrimSpace(columns[len(columns)-1])
}

// IsNotFound reports whether err means the requested row does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
