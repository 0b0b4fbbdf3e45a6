package calendar

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps calendars and events in process. It backs tests and
// throwaway sessions.
type MemoryStore struct {
	mu        sync.RWMutex
	calendars []Calendar
	events    map[string]Event
	failWith  error
}

func NewMemoryStore(calendars ...Calendar) *MemoryStore {
	s := &MemoryStore{events: make(map[string]Event)}
	for _, c := range calendars {
		if c.Source == "" {
			c.Source = SourceMemory
		}
		s.calendars = append(s.calendars, c)
	}
	return s
}

// AddCalendar registers a calendar, replacing one with the same ID.
func (s *MemoryStore) AddCalendar(c Calendar) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.Source == "" {
		c.Source = SourceMemory
	}
	for i := range s.calendars {
		if s.calendars[i].ID == c.ID {
			s.calendars[i] = c
			return
		}
	}
	s.calendars = append(s.calendars, c)
}

// Seed inserts events as-is, bypassing the writable check.
func (s *MemoryStore) Seed(events ...Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range events {
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		if cal, ok := s.calendar(e.CalendarID); ok && e.CalendarTitle == "" {
			e.CalendarTitle = cal.Title
		}
		s.events[e.ID] = e
	}
}

// FailWith makes every subsequent call return err. Pass nil to recover.
func (s *MemoryStore) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWith = err
}

func (s *MemoryStore) ListCalendars(ctx context.Context) ([]Calendar, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.failWith != nil {
		return nil, storeErr("list calendars", s.failWith)
	}
	out := make([]Calendar, len(s.calendars))
	copy(out, s.calendars)
	return out, nil
}

func (s *MemoryStore) ListEvents(ctx context.Context, calendarID string, start, end time.Time) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.failWith != nil {
		return nil, storeErr("list events", s.failWith)
	}

	var events []Event
	for _, e := range s.events {
		if calendarID != "" && e.CalendarID != calendarID {
			continue
		}
		if e.Overlaps(start, end) {
			events = append(events, e)
		}
	}
	SortEvents(events)
	return events, nil
}

func (s *MemoryStore) SearchEvents(ctx context.Context, query string) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.failWith != nil {
		return nil, storeErr("search events", s.failWith)
	}

	var events []Event
	for _, e := range s.events {
		if e.Matches(query) {
			events = append(events, e)
		}
	}
	SortEvents(events)
	return events, nil
}

func (s *MemoryStore) CreateEvent(ctx context.Context, ev NewEvent) (Event, error) {
	if err := ev.Validate(); err != nil {
		return Event{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failWith != nil {
		return Event{}, storeErr("create event", s.failWith)
	}

	cal, ok := s.calendar(ev.CalendarID)
	if !ok {
		return Event{}, storeErr("create event", fmt.Errorf("%w: %s", ErrUnknownCalendar, ev.CalendarID))
	}
	if !cal.Writable {
		return Event{}, storeErr("create event", fmt.Errorf("%s: %w", cal.Title, ErrReadOnly))
	}

	created := ev.toEvent(cal)
	created.ID = uuid.NewString()
	s.events[created.ID] = created
	return created, nil
}

func (s *MemoryStore) DeleteEvent(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failWith != nil {
		return storeErr("delete event", s.failWith)
	}

	e, ok := s.events[id]
	if !ok {
		return storeErr("delete event", fmt.Errorf("%w: %s", ErrNotFound, id))
	}
	if cal, ok := s.calendar(e.CalendarID); ok && !cal.Writable {
		return storeErr("delete event", fmt.Errorf("%s: %w", cal.Title, ErrReadOnly))
	}
	delete(s.events, id)
	return nil
}

func (s *MemoryStore) calendar(id string) (Calendar, bool) {
	for _, c := range s.calendars {
		if c.ID == id {
			return c, true
		}
	}
	return Calendar{}, false
}
