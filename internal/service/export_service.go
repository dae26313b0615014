package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/tutorhub-api/internal/models"
	appErrors "github.com/noah-isme/tutorhub-api/pkg/errors"
	"github.com/noah-isme/tutorhub-api/pkg/export"
)

type teacherLister interface {
	GetTeachers(ctx context.Context) ([]models.User, error)
}

type eventLister interface {
	List(ctx context.Context, start, end time.Time) ([]models.CalendarEvent, error)
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportService renders directory and calendar data into CSV or PDF files.
type ExportService struct {
	teachers  teacherLister
	events    eventLister
	renderers map[export.Format]export.Renderer
	logger    *zap.Logger
	now       func() time.Time
}

// NewExportService constructs an export service with the CSV and PDF renderers.
func NewExportService(teachers teacherLister, events eventLister, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		teachers: teachers,
		events:   events,
		renderers: map[export.Format]export.Renderer{
			export.FormatCSV: export.NewCSVExporter(),
			export.FormatPDF: export.NewPDFExporter(),
		},
		logger: logger,
		now:    time.Now,
	}
}

// ExportTeachers renders the teacher directory with rosters.
func (s *ExportService) ExportTeachers(ctx context.Context, format string) (*ExportFile, error) {
	renderer, err := s.renderer(format)
	if err != nil {
		return nil, err
	}
	teachers, err := s.teachers.GetTeachers(ctx)
	if err != nil {
		return nil, err
	}

	data := export.Dataset{
		Title:   "Teacher directory",
		Headers: []string{"id", "name", "subject", "students"},
		Rows:    make([][]string, 0, len(teachers)),
	}
	for _, t := range teachers {
		profile := t.Teacher()
		data.Rows = append(data.Rows, []string{t.ID, t.Name, profile.Subject, strings.Join(profile.Students, "; ")})
	}
	return s.render(renderer, data, "teachers")
}

// ExportCalendar renders the events overlapping [start, end).
func (s *ExportService) ExportCalendar(ctx context.Context, start, end time.Time, format string) (*ExportFile, error) {
	renderer, err := s.renderer(format)
	if err != nil {
		return nil, err
	}
	events, err := s.events.List(ctx, start, end)
	if err != nil {
		return nil, err
	}

	data := export.Dataset{
		Title:   fmt.Sprintf("Sessions %s to %s", start.Format(time.DateOnly), end.Format(time.DateOnly)),
		Headers: []string{"id", "title", "start", "end", "description"},
		Rows:    make([][]string, 0, len(events)),
	}
	for _, e := range events {
		data.Rows = append(data.Rows, []string{e.ID, e.Title, e.Start.Format(time.RFC3339), e.End.Format(time.RFC3339), e.Description})
	}
	return s.render(renderer, data, "calendar")
}

func (s *ExportService) renderer(raw string) (export.Renderer, error) {
	format, err := export.ParseFormat(raw)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "format must be csv or pdf")
	}
	return s.renderers[format], nil
}

func (s *ExportService) render(renderer export.Renderer, data export.Dataset, name string) (*ExportFile, error) {
	body, err := renderer.Render(data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	filename := fmt.Sprintf("%s-%s.%s", name, s.now().UTC().Format("20060102-150405"), renderer.Extension())
	s.logger.Info("export rendered", zap.String("file", filename), zap.Int("rows", len(data.Rows)), zap.Int("bytes", len(body)))
	return &ExportFile{Filename: filename, ContentType: renderer.ContentType(), Body: body}, nil
}
