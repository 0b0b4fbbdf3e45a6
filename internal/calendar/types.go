package calendar

import (
	"sort"
	"strings"
	"time"
)

// Source names the backend a calendar lives in
type Source string

const (
	SourceLocal  Source = "local"
	SourceICS    Source = "ics"
	SourceCalDAV Source = "caldav"
	SourceMemory Source = "memory"
)

type Calendar struct {
	ID       string
	Title    string
	Writable bool
	Source   Source
}

type Event struct {
	ID            string
	CalendarID    string
	CalendarTitle string
	Title         string
	Start         time.Time
	End           time.Time
	AllDay        bool
	Location      string
	Notes         string
	URL           string
}

// Overlaps reports whether the event intersects [start, end). Zero-length
// events count when they sit inside the range.
func (e Event) Overlaps(start, end time.Time) bool {
	if !e.End.After(e.Start) {
		return !e.Start.Before(start) && e.Start.Before(end)
	}
	return e.Start.Before(end) && e.End.After(start)
}

// Matches is the case-insensitive substring test used by SearchEvents.
func (e Event) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return false
	}
	return strings.Contains(strings.ToLower(e.Title), q) ||
		strings.Contains(strings.ToLower(e.Notes), q) ||
		strings.Contains(strings.ToLower(e.Location), q)
}

// NewEvent is the input to Store.CreateEvent.
type NewEvent struct {
	CalendarID string
	Title      string
	Start      time.Time
	End        time.Time
	AllDay     bool
	Location   string
	Notes      string
	URL        string
}

func (n NewEvent) Validate() error {
	if n.CalendarID == "" {
		return &ValidationError{Field: "calendar", Message: "a calendar is required"}
	}
	if strings.TrimSpace(n.Title) == "" {
		return &ValidationError{Field: "title", Message: "title must not be empty"}
	}
	if n.Start.IsZero() {
		return &ValidationError{Field: "start", Message: "start time is required"}
	}
	if n.End.Before(n.Start) {
		return &ValidationError{Field: "end", Message: "end must not be before start"}
	}
	return nil
}

// toEvent fills in everything but the ID.
func (n NewEvent) toEvent(cal Calendar) Event {
	return Event{
		CalendarID:    cal.ID,
		CalendarTitle: cal.Title,
		Title:         strings.TrimSpace(n.Title),
		Start:         n.Start,
		End:           n.End,
		AllDay:        n.AllDay,
		Location:      n.Location,
		Notes:         n.Notes,
		URL:           n.URL,
	}
}

// SortEvents orders by start time; on ties all-day events come first,
// then title, then ID so the order is stable across fetches.
func SortEvents(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if !a.Start.Equal(b.Start) {
			return a.Start.Before(b.Start)
		}
		if a.AllDay != b.AllDay {
			return a.AllDay
		}
		if a.Title != b.Title {
			return a.Title < b.Title
		}
		return a.ID < b.ID
	})
}

// FilterCalendars keeps events whose calendar is in enabled. A nil set
// keeps everything.
func FilterCalendars(events []Event, enabled map[string]bool) []Event {
	if enabled == nil {
		return events
	}
	out := events[:0:0]
	for _, e := range events {
		if enabled[e.CalendarID] {
			out = append(out, e)
		}
	}
	return out
}
