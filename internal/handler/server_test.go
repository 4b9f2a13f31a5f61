package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/campus-registry/internal/academic"
	"github.com/noah-isme/campus-registry/internal/config"
	"github.com/noah-isme/campus-registry/internal/flash"
	"github.com/noah-isme/campus-registry/internal/handler"
	"github.com/noah-isme/campus-registry/internal/models"
	"github.com/noah-isme/campus-registry/internal/repository"
	"github.com/noah-isme/campus-registry/internal/router"
	"github.com/noah-isme/campus-registry/internal/service"
	"github.com/noah-isme/campus-registry/internal/validation"
	"github.com/noah-isme/campus-registry/pkg/diskstore"
	"github.com/noah-isme/campus-registry/web"
)

var pngPayload = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), bytes.Repeat([]byte{0}, 64)...)

// testServer is the whole application over in-memory sqlite and a
// temporary upload directory. It remembers the flash cookie like a browser.
type testServer struct {
	app       *fiber.App
	db        *gorm.DB
	uploadDir string
	cookie    *http.Cookie
}

func newTestApp(logger zerolog.Logger) *fiber.App {
	return fiber.New(fiber.Config{
		Views:             web.Engine(),
		ViewsLayout:       web.Layout,
		PassLocalsToViews: true,
		ErrorHandler:      handler.ErrorHandler(logger),
	})
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	dsn := fmt.Sprintf("file:handler_%d?mode=memory&cache=shared&_foreign_keys=on", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))

	logger := zerolog.New(io.Discard)
	dir := t.TempDir()
	disk, err := diskstore.New(dir, logger)
	require.NoError(t, err)

	cfg := config.Config{AppName: "campus-test", AppEnv: "test", UploadDir: dir, PageSize: 10, CurrentAcademicYear: 2025}
	validate, translator := validation.New()
	store := repository.NewStore(db)
	flasher := flash.New(flash.NewMemoryStore(time.Minute), logger)
	calendar := academic.NewCalendar(cfg.CurrentAcademicYear)

	photos := service.NewPhotoService(disk, 1024*1024, logger)
	faculties := service.NewFacultyService(store, validate, cfg.PageSize, logger)
	groups := service.NewGroupService(store, validate, calendar, photos, cfg.PageSize, logger)
	students := service.NewStudentService(store, validate, photos, cfg.PageSize, logger)

	app := newTestApp(logger)
	router.Register(app, cfg, router.Dependencies{
		DB:              db,
		Flasher:         flasher,
		FacultyHandler:  handler.NewFacultyHandler(faculties, translator, flasher, logger),
		GroupHandler:    handler.NewGroupHandler(groups, faculties, translator, flasher, logger),
		StudentHandler:  handler.NewStudentHandler(students, groups, translator, flasher, logger),
		ExportHandler:   handler.NewExportHandler(service.NewExportService(store, calendar, logger), logger),
		ActivityHandler: handler.NewActivityHandler(service.NewActivityService(store, logger), logger),
	})

	return &testServer{app: app, db: db, uploadDir: dir}
}

func (s *testServer) do(t *testing.T, req *http.Request) *http.Response {
	t.Helper()
	if s.cookie != nil {
		req.AddCookie(s.cookie)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	for _, cookie := range resp.Cookies() {
		if cookie.Name == flash.CookieName {
			s.cookie = cookie
		}
	}
	return resp
}

func (s *testServer) get(t *testing.T, path string) *http.Response {
	t.Helper()
	return s.do(t, httptest.NewRequest(http.MethodGet, path, nil))
}

func (s *testServer) postForm(t *testing.T, path string, values url.Values) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
	return s.do(t, req)
}

func (s *testServer) postMultipart(t *testing.T, path string, values url.Values, fileName string, content []byte) *http.Response {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, vals := range values {
		for _, val := range vals {
			require.NoError(t, writer.WriteField(key, val))
		}
	}
	if fileName != "" {
		part, err := writer.CreateFormFile("photo", fileName)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set(fiber.HeaderContentType, writer.FormDataContentType())
	return s.do(t, req)
}

// seed creates a faculty with one group through the pages and returns
// their ids.
func (s *testServer) seed(t *testing.T) (facultyID, groupID uint) {
	t.Helper()
	resp := s.postForm(t, "/faculties/create", url.Values{"name": {"Physics"}, "short_name": {"PHYS"}, "description": {"Matter"}})
	require.Equal(t, fiber.StatusFound, resp.StatusCode)

	var faculty models.Faculty
	require.NoError(t, s.db.Where("short_name = ?", "PHYS").First(&faculty).Error)

	resp = s.postForm(t, fmt.Sprintf("/faculties/%d/groups/create", faculty.ID), url.Values{"year": {"2024"}, "duration": {"4"}})
	require.Equal(t, fiber.StatusFound, resp.StatusCode)

	var group models.Group
	require.NoError(t, s.db.Where("faculty_id = ?", faculty.ID).First(&group).Error)
	return faculty.ID, group.ID
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(data)
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
}
