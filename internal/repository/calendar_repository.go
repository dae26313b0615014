package repository

import (
	"context"
	"sync"
	"time"

	"github.com/noah-isme/tutorhub-api/internal/models"
)

// CalendarRepository is an append-only in-memory event store. It assigns ids
// and performs no validation of its own.
type CalendarRepository struct {
	mu     sync.RWMutex
	events []models.CalendarEvent
	nextID func() string
}

// NewCalendarRepository constructs an empty store using nextID for event ids.
func NewCalendarRepository(nextID func() string) *CalendarRepository {
	return &CalendarRepository{nextID: nextID}
}

// ListOverlapping returns events intersecting [start, end) in insertion order.
func (r *CalendarRepository) ListOverlapping(ctx context.Context, start, end time.Time) ([]models.CalendarEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	events := make([]models.CalendarEvent, 0)
	for _, e := range r.events {
		if e.Overlaps(start, end) {
			events = append(events, e)
		}
	}
	return events, nil
}

// Create assigns an id to event and appends it.
func (r *CalendarRepository) Create(ctx context.Context, event *models.CalendarEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	event.ID = r.nextID()
	r.events = append(r.events, *event)
	return nil
}

// Count returns the number of stored events.
func (r *CalendarRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.events)
}
