package models

import "time"

// CalendarEvent is a scheduled video session. Events are immutable once stored.
type CalendarEvent struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Description string    `json:"description,omitempty"`
}

// Overlaps reports whether the event intersects [start, end). Touching
// endpoints do not count.
func (e CalendarEvent) Overlaps(start, end time.Time) bool {
	return e.Start.Before(end) && e.End.After(start)
}
