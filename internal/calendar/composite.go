package calendar

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// CompositeStore combines multiple Stores. Reads merge every source and
// skip the ones that fail; writes go to the source that owns the calendar
// or event.
type CompositeStore struct {
	sources []Store
	mu      sync.RWMutex
}

func NewCompositeStore(sources ...Store) *CompositeStore {
	return &CompositeStore{sources: sources}
}

// AddSource adds a new source to the composite
func (c *CompositeStore) AddSource(source Store) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sources = append(c.sources, source)
}

func (c *CompositeStore) snapshot() []Store {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Store, len(c.sources))
	copy(out, c.sources)
	return out
}

func (c *CompositeStore) ListCalendars(ctx context.Context) ([]Calendar, error) {
	var all []Calendar
	seen := make(map[string]bool)
	var errs []error

	sources := c.snapshot()
	for _, source := range sources {
		cals, err := source.ListCalendars(ctx)
		if err != nil {
			log.Warnf("composite: list calendars: %v", err)
			errs = append(errs, err)
			continue
		}
		for _, cal := range cals {
			if !seen[cal.ID] {
				seen[cal.ID] = true
				all = append(all, cal)
			}
		}
	}

	if len(sources) > 0 && len(errs) == len(sources) {
		return nil, errors.Join(errs...)
	}
	return all, nil
}

func (c *CompositeStore) ListEvents(ctx context.Context, calendarID string, start, end time.Time) ([]Event, error) {
	return c.collect(ctx, func(s Store) ([]Event, error) {
		return s.ListEvents(ctx, calendarID, start, end)
	})
}

func (c *CompositeStore) SearchEvents(ctx context.Context, query string) ([]Event, error) {
	return c.collect(ctx, func(s Store) ([]Event, error) {
		return s.SearchEvents(ctx, query)
	})
}

// collect merges events from every source, deduplicated by ID.
func (c *CompositeStore) collect(ctx context.Context, fetch func(Store) ([]Event, error)) ([]Event, error) {
	var all []Event
	seen := make(map[string]bool)
	var errs []error

	sources := c.snapshot()
	for _, source := range sources {
		events, err := fetch(source)
		if err != nil {
			// Log error but continue with other sources
			log.Warnf("composite: %v", err)
			errs = append(errs, err)
			continue
		}
		for _, event := range events {
			if !seen[event.ID] {
				seen[event.ID] = true
				all = append(all, event)
			}
		}
	}

	if len(sources) > 0 && len(errs) == len(sources) {
		return nil, errors.Join(errs...)
	}
	SortEvents(all)
	return all, nil
}

func (c *CompositeStore) CreateEvent(ctx context.Context, ev NewEvent) (Event, error) {
	if err := ev.Validate(); err != nil {
		return Event{}, err
	}

	for _, source := range c.snapshot() {
		cals, err := source.ListCalendars(ctx)
		if err != nil {
			continue
		}
		for _, cal := range cals {
			if cal.ID == ev.CalendarID {
				return source.CreateEvent(ctx, ev)
			}
		}
	}
	return Event{}, storeErr("create event", fmt.Errorf("%w: %s", ErrUnknownCalendar, ev.CalendarID))
}

// DeleteEvent asks each source in turn; the first that does not report
// ErrNotFound decides the outcome.
func (c *CompositeStore) DeleteEvent(ctx context.Context, id string) error {
	for _, source := range c.snapshot() {
		err := source.DeleteEvent(ctx, id)
		if err == nil || !errors.Is(err, ErrNotFound) {
			return err
		}
	}
	return storeErr("delete event", fmt.Errorf("%w: %s", ErrNotFound, id))
}
