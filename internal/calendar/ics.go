package calendar

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	ical "github.com/arran4/golang-ical"
	goical "github.com/emersion/go-ical"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	log "github.com/sirupsen/logrus"
)

// ICSStore exposes .ics files as read-only calendars, one per file.
// Files are re-read when their modification time changes.
type ICSStore struct {
	mu    sync.Mutex
	paths []string
	ids   map[string]string
	files map[string]*icsFile
	loc   *time.Location
}

type icsFile struct {
	modTime  time.Time
	calendar Calendar
	events   []Event
}

func NewICSStore(paths ...string) *ICSStore {
	s := &ICSStore{
		files: make(map[string]*icsFile),
		loc:   time.Local,
	}
	for _, p := range paths {
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
		s.paths = append(s.paths, p)
	}
	s.ids = calendarIDs(s.paths)
	return s
}

// calendarIDs derives "ics:<slug>" from each file name. Files sharing a
// name get a suffix hashed from their full path.
func calendarIDs(paths []string) map[string]string {
	byName := make(map[string]int)
	for _, p := range paths {
		byName[slug.Make(fileStem(p))]++
	}
	ids := make(map[string]string, len(paths))
	for _, p := range paths {
		name := slug.Make(fileStem(p))
		if byName[name] > 1 {
			name += "-" + uuid.NewSHA1(uuid.NameSpaceURL, []byte(p)).String()[:8]
		}
		ids[p] = "ics:" + name
	}
	return ids
}

func fileStem(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

// Paths returns the absolute paths of the backing files.
func (s *ICSStore) Paths() []string {
	out := make([]string, len(s.paths))
	copy(out, s.paths)
	return out
}

// Invalidate drops the cached parse of path so the next read reloads it.
func (s *ICSStore) Invalidate(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, path)
}

func (s *ICSStore) ListCalendars(ctx context.Context) ([]Calendar, error) {
	files, err := s.loadAll()
	if err != nil {
		return nil, err
	}
	cals := make([]Calendar, 0, len(files))
	for _, f := range files {
		cals = append(cals, f.calendar)
	}
	return cals, nil
}

func (s *ICSStore) ListEvents(ctx context.Context, calendarID string, start, end time.Time) ([]Event, error) {
	files, err := s.loadAll()
	if err != nil {
		return nil, err
	}

	var events []Event
	for _, f := range files {
		if calendarID != "" && f.calendar.ID != calendarID {
			continue
		}
		for _, e := range f.events {
			if e.Overlaps(start, end) {
				events = append(events, e)
			}
		}
	}
	SortEvents(events)
	return events, nil
}

func (s *ICSStore) SearchEvents(ctx context.Context, query string) ([]Event, error) {
	files, err := s.loadAll()
	if err != nil {
		return nil, err
	}

	var events []Event
	for _, f := range files {
		for _, e := range f.events {
			if e.Matches(query) {
				events = append(events, e)
			}
		}
	}
	SortEvents(events)
	return events, nil
}

func (s *ICSStore) CreateEvent(ctx context.Context, ev NewEvent) (Event, error) {
	if err := ev.Validate(); err != nil {
		return Event{}, err
	}
	files, err := s.loadAll()
	if err != nil {
		return Event{}, err
	}
	for _, f := range files {
		if f.calendar.ID == ev.CalendarID {
			return Event{}, storeErr("create event", fmt.Errorf("%s: %w", f.calendar.Title, ErrReadOnly))
		}
	}
	return Event{}, storeErr("create event", fmt.Errorf("%w: %s", ErrUnknownCalendar, ev.CalendarID))
}

func (s *ICSStore) DeleteEvent(ctx context.Context, id string) error {
	files, err := s.loadAll()
	if err != nil {
		return err
	}
	for _, f := range files {
		for _, e := range f.events {
			if e.ID == id {
				return storeErr("delete event", fmt.Errorf("%s: %w", f.calendar.Title, ErrReadOnly))
			}
		}
	}
	return storeErr("delete event", fmt.Errorf("%w: %s", ErrNotFound, id))
}

// loadAll returns every readable file. Unreadable files are logged and
// skipped; an error is returned only when none could be read.
func (s *ICSStore) loadAll() ([]*icsFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*icsFile
	var lastErr error
	for _, path := range s.paths {
		f, err := s.load(path)
		if err != nil {
			log.Warnf("ics: skipping %s: %v", path, err)
			lastErr = err
			continue
		}
		out = append(out, f)
	}
	if len(out) == 0 && lastErr != nil {
		return nil, storeErr("read ics", lastErr)
	}
	return out, nil
}

func (s *ICSStore) load(path string) (*icsFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if cached, ok := s.files[path]; ok && cached.modTime.Equal(info.ModTime()) {
		return cached, nil
	}

	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	parsed, err := ical.ParseCalendar(fh)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	f := &icsFile{
		modTime:  info.ModTime(),
		calendar: icsCalendar(s.ids[path], fileStem(path), parsed),
	}
	for i, ve := range parsed.Events() {
		e, err := s.parseVEvent(ve)
		if err != nil {
			log.Debugf("ics: %s: skipping event %d: %v", path, i, err)
			continue
		}
		uid := e.ID
		if uid == "" {
			uid = fmt.Sprintf("%d", i)
		}
		e.ID = f.calendar.ID + "/" + uid
		e.CalendarID = f.calendar.ID
		e.CalendarTitle = f.calendar.Title
		f.events = append(f.events, e)
	}

	log.Debugf("ics: loaded %d events from %s", len(f.events), path)
	s.files[path] = f
	return f, nil
}

func icsCalendar(id, title string, parsed *ical.Calendar) Calendar {
	for _, p := range parsed.CalendarProperties {
		if p.IANAToken == "X-WR-CALNAME" && strings.TrimSpace(p.Value) != "" {
			title = strings.TrimSpace(p.Value)
			break
		}
	}
	return Calendar{
		ID:       id,
		Title:    title,
		Writable: false,
		Source:   SourceICS,
	}
}

func (s *ICSStore) parseVEvent(ve *ical.VEvent) (Event, error) {
	var e Event

	if p := ve.GetProperty(ical.ComponentPropertyUniqueId); p != nil {
		e.ID = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		e.Title = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		e.Notes = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
		e.Location = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyUrl); p != nil {
		e.URL = p.Value
	}

	dtStart := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dtStart == nil {
		return e, fmt.Errorf("missing DTSTART")
	}

	if isDateValue(dtStart) {
		start, err := time.ParseInLocation("20060102", dtStart.Value, s.loc)
		if err != nil {
			return e, err
		}
		e.AllDay = true
		e.Start = start
		e.End = start.AddDate(0, 0, 1)
		if dtEnd := ve.GetProperty(ical.ComponentPropertyDtEnd); dtEnd != nil {
			if end, err := time.ParseInLocation("20060102", dtEnd.Value, s.loc); err == nil && end.After(start) {
				e.End = end
			}
		} else if d, ok := eventDuration(ve); ok && d >= 24*time.Hour {
			e.End = start.AddDate(0, 0, int(d/(24*time.Hour)))
		}
		return e, nil
	}

	start, err := ve.GetStartAt()
	if err != nil {
		return e, err
	}
	e.Start = start.In(s.loc)
	e.End = e.Start
	if end, err := ve.GetEndAt(); err == nil && !end.Before(start) {
		e.End = end.In(s.loc)
	} else if d, ok := eventDuration(ve); ok {
		e.End = e.Start.Add(d)
	}
	return e, nil
}

// eventDuration reads a non-negative DURATION property.
func eventDuration(ve *ical.VEvent) (time.Duration, bool) {
	p := ve.GetProperty(ical.ComponentPropertyDuration)
	if p == nil {
		return 0, false
	}
	prop := goical.NewProp(goical.PropDuration)
	prop.Value = strings.TrimSpace(p.Value)
	d, err := prop.Duration()
	if err != nil || d < 0 {
		return 0, false
	}
	return d, true
}

// isDateValue detects all-day values: VALUE=DATE or a bare YYYYMMDD.
func isDateValue(p *ical.IANAProperty) bool {
	if vs, ok := p.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		return true
	}
	return !strings.Contains(p.Value, "T")
}
