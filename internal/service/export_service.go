package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/campus-registry/internal/academic"
	"github.com/noah-isme/campus-registry/internal/dto"
	"github.com/noah-isme/campus-registry/internal/observability"
	"github.com/noah-isme/campus-registry/internal/repository"
)

// ExportFileName is the attachment name of the spreadsheet export.
const ExportFileName = "university_data_export.xlsx"

// Sheet names of the spreadsheet export.
const (
	SheetFaculties = "Faculties"
	SheetGroups    = "Groups"
	SheetStudents  = "Students"
)

var (
	facultyHeader = []interface{}{"id", "name", "short_name", "description"}
	groupHeader   = []interface{}{"id", "name", "year", "duration", "faculty_id", "course", "status"}
	studentHeader = []interface{}{"id", "full_name", "date_of_birth", "phone_number", "email", "group_id", "photo"}
)

// ExportService writes every faculty, group and student into a workbook.
type ExportService interface {
	Export(ctx context.Context, w io.Writer) error
}

type exportService struct {
	store    repository.Store
	calendar academic.Calendar
	logger   zerolog.Logger
	tracer   trace.Tracer
}

// NewExportService constructs the export service. Course and status columns
// are computed with calendar, matching the group list pages.
func NewExportService(store repository.Store, calendar academic.Calendar, logger zerolog.Logger) ExportService {
	return &exportService{
		store:    store,
		calendar: calendar,
		logger:   logger.With().Str("component", "export_service").Logger(),
		tracer:   otel.Tracer("github.com/noah-isme/campus-registry/internal/service/export"),
	}
}

func (s *exportService) Export(ctx context.Context, w io.Writer) error {
	ctx, span := s.tracer.Start(ctx, "export.workbook")
	defer span.End()

	start := time.Now()
	defer func() {
		observability.ExportDuration().Observe(time.Since(start).Seconds())
	}()

	book, rows, err := s.workbook(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "build failed")
		s.logger.Error().Err(err).Msg("failed to build export workbook")
		return err
	}
	defer book.Close()

	if err := book.Write(w); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "write failed")
		return fmt.Errorf("write workbook: %w", err)
	}

	span.SetAttributes(attribute.Int("export.rows", rows))
	span.SetStatus(codes.Ok, "exported")
	s.logger.Info().Int("rows", rows).Msg("registry exported")
	return nil
}

func (s *exportService) workbook(ctx context.Context) (*excelize.File, int, error) {
	faculties, err := s.store.Faculties().List(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("list faculties: %w", err)
	}
	groups, err := s.store.Groups().List(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("list groups: %w", err)
	}
	students, err := s.store.Students().List(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	facultyRows := make([][]interface{}, 0, len(faculties))
	for _, f := range faculties {
		facultyRows = append(facultyRows, []interface{}{f.ID, f.Name, f.ShortName, f.Description})
	}

	groupRows := make([][]interface{}, 0, len(groups))
	for _, g := range groups {
		groupRows = append(groupRows, []interface{}{
			g.ID,
			g.Name,
			g.Year,
			g.Duration,
			g.FacultyID,
			s.calendar.Course(g.Year, g.Duration),
			s.calendar.Status(g.Year, g.Duration),
		})
	}

	studentRows := make([][]interface{}, 0, len(students))
	for _, st := range students {
		studentRows = append(studentRows, []interface{}{
			st.ID,
			st.FullName,
			st.BirthDate().Format(dto.DateLayout),
			st.PhoneNumber,
			st.Email,
			st.GroupID,
			st.Photo,
		})
	}

	book := excelize.NewFile()
	defaultSheet := book.GetSheetName(0)
	if err := book.SetSheetName(defaultSheet, SheetFaculties); err != nil {
		book.Close()
		return nil, 0, err
	}

	sheets := []struct {
		name   string
		header []interface{}
		rows   [][]interface{}
	}{
		{SheetFaculties, facultyHeader, facultyRows},
		{SheetGroups, groupHeader, groupRows},
		{SheetStudents, studentHeader, studentRows},
	}

	for _, sheet := range sheets {
		if sheet.name != SheetFaculties {
			if _, err := book.NewSheet(sheet.name); err != nil {
				book.Close()
				return nil, 0, fmt.Errorf("create sheet %s: %w", sheet.name, err)
			}
		}
		if err := writeSheet(book, sheet.name, sheet.header, sheet.rows); err != nil {
			book.Close()
			return nil, 0, err
		}
	}
	book.SetActiveSheet(0)

	return book, len(facultyRows) + len(groupRows) + len(studentRows), nil
}

func writeSheet(book *excelize.File, sheet string, header []interface{}, rows [][]interface{}) error {
	all := append([][]interface{}{header}, rows...)
	for i, row := range all {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := row
		if err := book.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
