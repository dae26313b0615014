package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tutorhub-api/internal/models"
	"github.com/noah-isme/tutorhub-api/internal/service"
	"github.com/noah-isme/tutorhub-api/pkg/response"
)

type calendarService interface {
	List(ctx context.Context, start, end time.Time) ([]models.CalendarEvent, error)
	Create(ctx context.Context, req service.CreateCalendarEventRequest) (*models.CalendarEvent, error)
}

type calendarExporter interface {
	ExportCalendar(ctx context.Context, start, end time.Time, format string) (*service.ExportFile, error)
}

// CalendarHandler exposes scheduled sessions.
type CalendarHandler struct {
	events  calendarService
	users   currentUserProvider
	exports calendarExporter
}

// NewCalendarHandler constructs the handler.
func NewCalendarHandler(events calendarService, users currentUserProvider, exports calendarExporter) *CalendarHandler {
	return &CalendarHandler{events: events, users: users, exports: exports}
}

// List godoc
// @Summary Sessions overlapping a time range
// @Tags Calendar
// @Produce json
// @Param start query string true "Range start (RFC 3339)"
// @Param end query string true "Range end (RFC 3339)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /calendar/events [get]
func (h *CalendarHandler) List(c *gin.Context) {
	start, end, err := parseRange(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	events, err := h.events.List(c.Request.Context(), start, end)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, events, map[string]interface{}{"total": len(events)})
}

// Create godoc
// @Summary Schedule a session
// @Tags Calendar
// @Accept json
// @Produce json
// @Param payload body service.CreateCalendarEventRequest true "Session"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /calendar/events [post]
func (h *CalendarHandler) Create(c *gin.Context) {
	if _, ok := requireTeacher(c, h.users); !ok {
		return
	}
	var req service.CreateCalendarEventRequest
	if !bindJSON(c, &req) {
		return
	}
	event, err := h.events.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, event)
}

// Export godoc
// @Summary Export sessions in a time range
// @Tags Calendar
// @Produce text/csv,application/pdf
// @Param start query string true "Range start (RFC 3339)"
// @Param end query string true "Range end (RFC 3339)"
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Router /calendar/events/export [get]
func (h *CalendarHandler) Export(c *gin.Context) {
	start, end, err := parseRange(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.exports.ExportCalendar(c.Request.Context(), start, end, c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}
