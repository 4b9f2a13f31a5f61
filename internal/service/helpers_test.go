package service

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/campus-registry/internal/academic"
	"github.com/noah-isme/campus-registry/internal/models"
	"github.com/noah-isme/campus-registry/internal/repository"
	"github.com/noah-isme/campus-registry/internal/validation"
	"github.com/noah-isme/campus-registry/pkg/diskstore"
)

var pngPayload = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), bytes.Repeat([]byte{0}, 64)...)

type registry struct {
	db        *gorm.DB
	store     repository.Store
	uploadDir string
	faculties FacultyService
	groups    GroupService
	students  StudentService
	exports   ExportService
	activity  ActivityService
}

func setupRegistry(t *testing.T) registry {
	t.Helper()

	dsn := fmt.Sprintf("file:service_%d?mode=memory&cache=shared&_foreign_keys=on", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))

	logger := testLogger()
	dir := t.TempDir()
	disk, err := diskstore.New(dir, logger)
	require.NoError(t, err)

	validate, _ := validation.New()
	store := repository.NewStore(db)
	photos := NewPhotoService(disk, 1024*1024, logger)
	calendar := academic.NewCalendar(2025)

	return registry{
		db:        db,
		store:     store,
		uploadDir: dir,
		faculties: NewFacultyService(store, validate, 10, logger),
		groups:    NewGroupService(store, validate, calendar, photos, 10, logger),
		students:  NewStudentService(store, validate, photos, 10, logger),
		exports:   NewExportService(store, calendar, logger),
		activity:  NewActivityService(store, logger),
	}
}

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func (r registry) photoExists(t *testing.T, name string) bool {
	t.Helper()
	_, err := os.Stat(filepath.Join(r.uploadDir, name))
	return err == nil
}

func (r registry) activityActions(t *testing.T) []string {
	t.Helper()
	var entries []models.ActivityLog
	require.NoError(t, r.db.Order("id").Find(&entries).Error)
	actions := make([]string, 0, len(entries))
	for _, entry := range entries {
		actions = append(actions, entry.Action)
	}
	return actions
}

func newTestFileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("photo", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(int64(len(content))+1024))
	files := req.MultipartForm.File["photo"]
	require.Len(t, files, 1)
	return files[0]
}
