package calendar

import (
	"context"
	"time"
)

// Store is the calendar backend consumed by the CLI and the interactive
// session.
type Store interface {
	// ListCalendars returns every calendar the store knows about
	ListCalendars(ctx context.Context) ([]Calendar, error)
	// ListEvents returns events overlapping [start, end). An empty
	// calendarID means all calendars; an unknown one yields no events.
	ListEvents(ctx context.Context, calendarID string, start, end time.Time) ([]Event, error)
	// SearchEvents matches query case-insensitively against title, notes
	// and location, with no date restriction
	SearchEvents(ctx context.Context, query string) ([]Event, error)
	// CreateEvent validates and stores a new event
	CreateEvent(ctx context.Context, ev NewEvent) (Event, error)
	// DeleteEvent removes an event by ID
	DeleteEvent(ctx context.Context, id string) error
}

// ChangeEvent reports that a backing file changed on disk
type ChangeEvent struct {
	Path      string
	Timestamp time.Time
}
