package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/tutorhub-api/internal/models"
	appErrors "github.com/noah-isme/tutorhub-api/pkg/errors"
)

type calendarRepository interface {
	ListOverlapping(ctx context.Context, start, end time.Time) ([]models.CalendarEvent, error)
	Create(ctx context.Context, event *models.CalendarEvent) error
	Count() int
}

// CreateCalendarEventRequest describes a session to schedule.
type CreateCalendarEventRequest struct {
	Title       string    `json:"title" validate:"required"`
	Start       time.Time `json:"start" validate:"required"`
	End         time.Time `json:"end" validate:"required"`
	Description string    `json:"description"`
}

// CalendarService manages calendar events. Unlike the store it validates
// input: titles must be non-blank and sessions must end after they start.
type CalendarService struct {
	repo      calendarRepository
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *MetricsService
	latency   time.Duration
}

// NewCalendarService constructs the service.
func NewCalendarService(repo calendarRepository, validate *validator.Validate, logger *zap.Logger, metrics *MetricsService, latency time.Duration) *CalendarService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CalendarService{repo: repo, validator: validate, logger: logger, metrics: metrics, latency: latency}
}

// List returns events with start < end of range and end > start of range,
// ordered by start. Events sharing a start keep their creation order.
func (s *CalendarService) List(ctx context.Context, start, end time.Time) ([]models.CalendarEvent, error) {
	if err := simulateLatency(ctx, s.latency); err != nil {
		return nil, err
	}
	events, err := s.repo.ListOverlapping(ctx, start, end)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list calendar events")
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Start.Before(events[j].Start)
	})
	s.logger.Debug("calendar events fetched",
		zap.Int("count", len(events)), zap.Time("start", start), zap.Time("end", end))
	return events, nil
}

// Create validates and stores a new event, returning it with its id.
func (s *CalendarService) Create(ctx context.Context, req CreateCalendarEventRequest) (*models.CalendarEvent, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid event payload")
	}
	if !req.End.After(req.Start) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end must be after start")
	}
	if err := simulateLatency(ctx, s.latency); err != nil {
		return nil, err
	}

	event := &models.CalendarEvent{
		Title:       req.Title,
		Start:       req.Start,
		End:         req.End,
		Description: req.Description,
	}
	if err := s.repo.Create(ctx, event); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create event")
	}
	s.metrics.SetStoredEvents(s.repo.Count())
	s.logger.Info("calendar event created", zap.String("event_id", event.ID), zap.Time("start", event.Start))
	return event, nil
}
