package database

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-registry/internal/models"
)

func TestConnectAndMigrateSQLite(t *testing.T) {
	dsn := fmt.Sprintf("file:database_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := Connect(dsn)
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	for _, model := range models.All() {
		require.True(t, db.Migrator().HasTable(model))
	}
	require.True(t, db.Migrator().HasIndex(&models.Faculty{}, "uq_faculties_short_name"))
	require.True(t, db.Migrator().HasIndex(&models.Group{}, "uq_student_groups_faculty_name"))
}

func TestConnectEnforcesForeignKeysOnEveryConnection(t *testing.T) {
	dsn := fmt.Sprintf("file:database_fk_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := Connect(dsn)
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		conn, err := sqlDB.Conn(ctx)
		require.NoError(t, err)
		defer conn.Close()

		var enabled int
		require.NoError(t, conn.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&enabled))
		require.Equal(t, 1, enabled, "connection %d", i)
	}

	err = db.Create(&models.Group{FacultyID: 999, Name: "GHOST-1-24", Year: 2024, Duration: 4, Course: 1}).Error
	require.Error(t, err)
}

func TestSQLiteDSN(t *testing.T) {
	require.Equal(t, "campus.db?_foreign_keys=on", sqliteDSN("campus.db"))
	require.Equal(t, "file:campus.db?cache=shared&_foreign_keys=on", sqliteDSN("file:campus.db?cache=shared"))
	require.Equal(t, "file:campus.db?_fk=1", sqliteDSN("file:campus.db?_fk=1"))
	require.Equal(t, "file:campus.db?_foreign_keys=off", sqliteDSN("file:campus.db?_foreign_keys=off"))
}

func TestConnectRejectsEmptyDSN(t *testing.T) {
	_, err := Connect("  ")
	require.Error(t, err)
}

func TestIsPostgres(t *testing.T) {
	require.True(t, isPostgres("postgres://user@localhost/campus"))
	require.True(t, isPostgres("PostgreSQL://user@localhost/campus"))
	require.False(t, isPostgres("file:campus.db"))
}
