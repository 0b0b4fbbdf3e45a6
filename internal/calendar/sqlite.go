package calendar

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// DefaultCalendarID is the calendar seeded into a fresh database.
const DefaultCalendarID = "local:default"

// SQLiteStore is the local, writable calendar database.
type SQLiteStore struct {
	db  *sql.DB
	loc *time.Location
}

// OpenSQLite opens or creates the database at path. defaultTitle names
// the calendar seeded on first open.
func OpenSQLite(path, defaultTitle string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// a single connection keeps ":memory:" databases shared
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	s := &SQLiteStore{db: db, loc: time.Local}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if err := s.seed(defaultTitle); err != nil {
		db.Close()
		return nil, fmt.Errorf("seed: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`PRAGMA foreign_keys = ON`,
		`CREATE TABLE IF NOT EXISTS calendars (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			writable INTEGER NOT NULL DEFAULT 1,
			created_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS events (
			id TEXT PRIMARY KEY,
			calendar_id TEXT NOT NULL REFERENCES calendars(id) ON DELETE CASCADE,
			title TEXT NOT NULL,
			start_at INTEGER NOT NULL,
			end_at INTEGER NOT NULL,
			all_day INTEGER NOT NULL DEFAULT 0,
			location TEXT NOT NULL DEFAULT '',
			notes TEXT NOT NULL DEFAULT '',
			url TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_range ON events(start_at, end_at)`,
		`CREATE INDEX IF NOT EXISTS idx_events_calendar ON events(calendar_id)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) seed(title string) error {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM calendars`).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	if title == "" {
		title = "Personal"
	}
	log.Infof("Creating default calendar %q", title)
	_, err := s.insertCalendar(context.Background(), DefaultCalendarID, title, true)
	return err
}

// AddCalendar creates a writable calendar and returns it.
func (s *SQLiteStore) AddCalendar(ctx context.Context, title string) (Calendar, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Calendar{}, &ValidationError{Field: "title", Message: "calendar title must not be empty"}
	}
	cal, err := s.insertCalendar(ctx, "local:"+uuid.NewString(), title, true)
	return cal, storeErr("add calendar", err)
}

func (s *SQLiteStore) insertCalendar(ctx context.Context, id, title string, writable bool) (Calendar, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO calendars (id, title, writable, created_at) VALUES (?, ?, ?, ?)`,
		id, title, boolToInt(writable), time.Now().Unix())
	if err != nil {
		return Calendar{}, err
	}
	return Calendar{ID: id, Title: title, Writable: writable, Source: SourceLocal}, nil
}

func (s *SQLiteStore) ListCalendars(ctx context.Context) ([]Calendar, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, title, writable FROM calendars ORDER BY created_at, title`)
	if err != nil {
		return nil, storeErr("list calendars", err)
	}
	defer rows.Close()

	var cals []Calendar
	for rows.Next() {
		var c Calendar
		var writable int
		if err := rows.Scan(&c.ID, &c.Title, &writable); err != nil {
			return nil, storeErr("list calendars", err)
		}
		c.Writable = writable != 0
		c.Source = SourceLocal
		cals = append(cals, c)
	}
	return cals, storeErr("list calendars", rows.Err())
}

const eventColumns = `e.id, e.calendar_id, c.title, e.title, e.start_at, e.end_at, e.all_day, e.location, e.notes, e.url`

func (s *SQLiteStore) ListEvents(ctx context.Context, calendarID string, start, end time.Time) ([]Event, error) {
	// zero-length events sit at start_at = end_at
	query := `SELECT ` + eventColumns + ` FROM events e JOIN calendars c ON c.id = e.calendar_id
		WHERE ((e.start_at < ? AND e.end_at > ?) OR (e.start_at = e.end_at AND e.start_at >= ? AND e.start_at < ?))`
	args := []any{end.Unix(), start.Unix(), start.Unix(), end.Unix()}
	if calendarID != "" {
		query += ` AND e.calendar_id = ?`
		args = append(args, calendarID)
	}
	query += ` ORDER BY e.start_at, e.all_day DESC, e.title, e.id`

	events, err := s.queryEvents(ctx, query, args...)
	if err != nil {
		return nil, storeErr("list events", err)
	}
	log.Debugf("sqlite: %d events in [%s, %s)", len(events), start.Format(time.RFC3339), end.Format(time.RFC3339))
	return events, nil
}

func (s *SQLiteStore) SearchEvents(ctx context.Context, query string) ([]Event, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil, nil
	}

	events, err := s.queryEvents(ctx, `SELECT `+eventColumns+` FROM events e JOIN calendars c ON c.id = e.calendar_id
		WHERE instr(lower(e.title), ?) > 0 OR instr(lower(e.notes), ?) > 0 OR instr(lower(e.location), ?) > 0
		ORDER BY e.start_at, e.all_day DESC, e.title, e.id`, q, q, q)
	if err != nil {
		return nil, storeErr("search events", err)
	}

	// lower() in sqlite only folds ASCII
	matched := events[:0]
	for _, e := range events {
		if e.Matches(q) {
			matched = append(matched, e)
		}
	}
	return matched, nil
}

func (s *SQLiteStore) queryEvents(ctx context.Context, query string, args ...any) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var startAt, endAt int64
		var allDay int
		if err := rows.Scan(&e.ID, &e.CalendarID, &e.CalendarTitle, &e.Title, &startAt, &endAt, &allDay, &e.Location, &e.Notes, &e.URL); err != nil {
			return nil, err
		}
		e.Start = time.Unix(startAt, 0).In(s.loc)
		e.End = time.Unix(endAt, 0).In(s.loc)
		e.AllDay = allDay != 0
		events = append(events, e)
	}
	return events, rows.Err()
}

func (s *SQLiteStore) calendar(ctx context.Context, id string) (Calendar, error) {
	var c Calendar
	var writable int
	err := s.db.QueryRowContext(ctx, `SELECT id, title, writable FROM calendars WHERE id = ?`, id).Scan(&c.ID, &c.Title, &writable)
	if errors.Is(err, sql.ErrNoRows) {
		return Calendar{}, fmt.Errorf("%w: %s", ErrUnknownCalendar, id)
	}
	if err != nil {
		return Calendar{}, err
	}
	c.Writable = writable != 0
	c.Source = SourceLocal
	return c, nil
}

func (s *SQLiteStore) CreateEvent(ctx context.Context, ev NewEvent) (Event, error) {
	if err := ev.Validate(); err != nil {
		return Event{}, err
	}

	cal, err := s.calendar(ctx, ev.CalendarID)
	if err != nil {
		return Event{}, storeErr("create event", err)
	}
	if !cal.Writable {
		return Event{}, storeErr("create event", fmt.Errorf("%s: %w", cal.Title, ErrReadOnly))
	}

	created := ev.toEvent(cal)
	created.ID = uuid.NewString()

	_, err = s.db.ExecContext(ctx, `INSERT INTO events
		(id, calendar_id, title, start_at, end_at, all_day, location, notes, url)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		created.ID, created.CalendarID, created.Title, created.Start.Unix(), created.End.Unix(),
		boolToInt(created.AllDay), created.Location, created.Notes, created.URL)
	if err != nil {
		return Event{}, storeErr("create event", err)
	}

	log.Infof("Created event %s %q in %s", created.ID, created.Title, cal.Title)
	// round-trip through the same representation reads use
	created.Start = time.Unix(created.Start.Unix(), 0).In(s.loc)
	created.End = time.Unix(created.End.Unix(), 0).In(s.loc)
	return created, nil
}

func (s *SQLiteStore) DeleteEvent(ctx context.Context, id string) error {
	var writable int
	err := s.db.QueryRowContext(ctx,
		`SELECT c.writable FROM events e JOIN calendars c ON c.id = e.calendar_id WHERE e.id = ?`, id).Scan(&writable)
	if errors.Is(err, sql.ErrNoRows) {
		return storeErr("delete event", fmt.Errorf("%w: %s", ErrNotFound, id))
	}
	if err != nil {
		return storeErr("delete event", err)
	}
	if writable == 0 {
		return storeErr("delete event", ErrReadOnly)
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id); err != nil {
		return storeErr("delete event", err)
	}
	log.Infof("Deleted event %s", id)
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
