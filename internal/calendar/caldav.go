package calendar

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav/caldav"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const caldavPrefix = "caldav:"

// CalDAVConfig holds the server endpoint and credentials.
type CalDAVConfig struct {
	URL      string
	Username string
	Password string
	Timeout  time.Duration
}

// CalDAVStore talks to a remote CalDAV server. Calendars are discovered
// once, on first use, through the current user's principal.
type CalDAVStore struct {
	cfg    CalDAVConfig
	mu     sync.Mutex
	client *caldav.Client
	cals   []caldav.Calendar
	loc    *time.Location
}

func NewCalDAVStore(cfg CalDAVConfig) *CalDAVStore {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &CalDAVStore{cfg: cfg, loc: time.Local}
}

type basicAuthTransport struct {
	username string
	password string
	base     http.RoundTripper
}

func (t *basicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.SetBasicAuth(t.username, t.password)
	return t.base.RoundTrip(req)
}

func (s *CalDAVStore) connect(ctx context.Context) (*caldav.Client, []caldav.Calendar, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client != nil {
		return s.client, s.cals, nil
	}

	var transport http.RoundTripper = http.DefaultTransport
	if s.cfg.Username != "" {
		transport = &basicAuthTransport{username: s.cfg.Username, password: s.cfg.Password, base: http.DefaultTransport}
	}
	httpClient := &http.Client{Transport: transport, Timeout: s.cfg.Timeout}

	client, err := caldav.NewClient(httpClient, s.cfg.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to CalDAV: %w", err)
	}

	principal, err := client.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("find principal: %w", err)
	}
	homeSet, err := client.FindCalendarHomeSet(ctx, principal)
	if err != nil {
		return nil, nil, fmt.Errorf("find home set: %w", err)
	}
	cals, err := client.FindCalendars(ctx, homeSet)
	if err != nil {
		return nil, nil, fmt.Errorf("find calendars: %w", err)
	}

	var eventCals []caldav.Calendar
	for _, c := range cals {
		if supportsEvents(c) {
			eventCals = append(eventCals, c)
		}
	}
	log.Infof("caldav: discovered %d calendars at %s", len(eventCals), s.cfg.URL)

	s.client = client
	s.cals = eventCals
	return client, eventCals, nil
}

func supportsEvents(c caldav.Calendar) bool {
	if len(c.SupportedComponentSet) == 0 {
		return true
	}
	for _, comp := range c.SupportedComponentSet {
		if strings.EqualFold(comp, ical.CompEvent) {
			return true
		}
	}
	return false
}

func toCalendar(c caldav.Calendar) Calendar {
	title := c.Name
	if title == "" {
		title = c.Path
	}
	return Calendar{ID: caldavPrefix + c.Path, Title: title, Writable: true, Source: SourceCalDAV}
}

func (s *CalDAVStore) ListCalendars(ctx context.Context) ([]Calendar, error) {
	_, cals, err := s.connect(ctx)
	if err != nil {
		return nil, storeErr("list calendars", err)
	}
	out := make([]Calendar, 0, len(cals))
	for _, c := range cals {
		out = append(out, toCalendar(c))
	}
	return out, nil
}

func (s *CalDAVStore) ListEvents(ctx context.Context, calendarID string, start, end time.Time) ([]Event, error) {
	filter := caldav.CompFilter{Name: ical.CompEvent, Start: start, End: end}
	events, err := s.query(ctx, calendarID, filter)
	if err != nil {
		return nil, storeErr("list events", err)
	}

	// servers may return events that only touch the range boundary
	out := events[:0]
	for _, e := range events {
		if e.Overlaps(start, end) {
			out = append(out, e)
		}
	}
	SortEvents(out)
	return out, nil
}

// SearchEvents fetches every event and filters locally, since calendar-query
// text matches cannot express an OR across properties.
func (s *CalDAVStore) SearchEvents(ctx context.Context, query string) ([]Event, error) {
	events, err := s.query(ctx, "", caldav.CompFilter{Name: ical.CompEvent})
	if err != nil {
		return nil, storeErr("search events", err)
	}
	out := events[:0]
	for _, e := range events {
		if e.Matches(query) {
			out = append(out, e)
		}
	}
	SortEvents(out)
	return out, nil
}

func (s *CalDAVStore) query(ctx context.Context, calendarID string, eventFilter caldav.CompFilter) ([]Event, error) {
	client, cals, err := s.connect(ctx)
	if err != nil {
		return nil, err
	}

	q := &caldav.CalendarQuery{
		CompRequest: caldav.CalendarCompRequest{
			Name:     "VCALENDAR",
			AllProps: true,
			AllComps: true,
		},
		CompFilter: caldav.CompFilter{
			Name:  "VCALENDAR",
			Comps: []caldav.CompFilter{eventFilter},
		},
	}

	var events []Event
	var lastErr error
	queried := 0
	for _, c := range cals {
		cal := toCalendar(c)
		if calendarID != "" && cal.ID != calendarID {
			continue
		}
		queried++

		objects, err := client.QueryCalendar(ctx, c.Path, q)
		if err != nil {
			log.Warnf("caldav: query %s: %v", c.Path, err)
			lastErr = err
			continue
		}
		for i := range objects {
			e, err := s.parseObject(&objects[i], cal)
			if err != nil {
				log.Debugf("caldav: skipping %s: %v", objects[i].Path, err)
				continue
			}
			events = append(events, e)
		}
	}

	if queried > 0 && len(events) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return events, nil
}

func (s *CalDAVStore) parseObject(obj *caldav.CalendarObject, cal Calendar) (Event, error) {
	if obj.Data == nil {
		return Event{}, fmt.Errorf("no data in calendar object")
	}

	for _, comp := range obj.Data.Children {
		if comp.Name != ical.CompEvent {
			continue
		}

		e := Event{
			ID:            caldavPrefix + obj.Path,
			CalendarID:    cal.ID,
			CalendarTitle: cal.Title,
		}
		e.Title = propText(comp, ical.PropSummary)
		e.Notes = propText(comp, ical.PropDescription)
		e.Location = propText(comp, ical.PropLocation)
		e.URL = propText(comp, ical.PropURL)

		startProp := comp.Props.Get(ical.PropDateTimeStart)
		if startProp == nil {
			return Event{}, fmt.Errorf("missing DTSTART")
		}
		start, err := startProp.DateTime(s.loc)
		if err != nil {
			return Event{}, fmt.Errorf("DTSTART: %w", err)
		}
		e.Start = start.In(s.loc)
		e.AllDay = startProp.Params.Get(ical.ParamValue) == string(ical.ValueDate)

		e.End = e.Start
		if e.AllDay {
			e.End = e.Start.AddDate(0, 0, 1)
		}
		if comp.Props.Get(ical.PropDateTimeEnd) != nil || comp.Props.Get(ical.PropDuration) != nil {
			ev := ical.Event{Component: comp}
			if end, err := ev.DateTimeEnd(s.loc); err == nil && !end.Before(start) {
				e.End = end.In(s.loc)
			}
		}
		return e, nil
	}

	return Event{}, fmt.Errorf("no VEVENT in calendar object")
}

func propText(comp *ical.Component, name string) string {
	prop := comp.Props.Get(name)
	if prop == nil {
		return ""
	}
	if text, err := prop.Text(); err == nil {
		return text
	}
	return prop.Value
}

func (s *CalDAVStore) CreateEvent(ctx context.Context, ev NewEvent) (Event, error) {
	if err := ev.Validate(); err != nil {
		return Event{}, err
	}

	client, cals, err := s.connect(ctx)
	if err != nil {
		return Event{}, storeErr("create event", err)
	}

	var target *caldav.Calendar
	for i := range cals {
		if toCalendar(cals[i]).ID == ev.CalendarID {
			target = &cals[i]
			break
		}
	}
	if target == nil {
		return Event{}, storeErr("create event", fmt.Errorf("%w: %s", ErrUnknownCalendar, ev.CalendarID))
	}

	uid := uuid.NewString()
	objectPath := strings.TrimSuffix(target.Path, "/") + "/" + uid + ".ics"

	if _, err := client.PutCalendarObject(ctx, objectPath, eventToICS(uid, ev)); err != nil {
		return Event{}, storeErr("create event", err)
	}

	created := ev.toEvent(toCalendar(*target))
	created.ID = caldavPrefix + objectPath
	log.Infof("caldav: created %s", objectPath)
	return created, nil
}

func (s *CalDAVStore) DeleteEvent(ctx context.Context, id string) error {
	if !strings.HasPrefix(id, caldavPrefix) {
		return storeErr("delete event", fmt.Errorf("%w: %s", ErrNotFound, id))
	}
	objectPath := strings.TrimPrefix(id, caldavPrefix)

	client, cals, err := s.connect(ctx)
	if err != nil {
		return storeErr("delete event", err)
	}

	owned := false
	for _, c := range cals {
		if strings.HasPrefix(objectPath, strings.TrimSuffix(c.Path, "/")+"/") {
			owned = true
			break
		}
	}
	if !owned {
		return storeErr("delete event", fmt.Errorf("%w: %s", ErrNotFound, id))
	}

	if err := client.RemoveAll(ctx, objectPath); err != nil {
		return storeErr("delete event", err)
	}
	log.Infof("caldav: deleted %s", objectPath)
	return nil
}

func eventToICS(uid string, ev NewEvent) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//termcal//EN")

	vevent := ical.NewEvent()
	vevent.Props.SetText(ical.PropUID, uid)
	vevent.Props.SetText(ical.PropSummary, strings.TrimSpace(ev.Title))
	if ev.Notes != "" {
		vevent.Props.SetText(ical.PropDescription, ev.Notes)
	}
	if ev.Location != "" {
		vevent.Props.SetText(ical.PropLocation, ev.Location)
	}
	if ev.URL != "" {
		vevent.Props.SetText(ical.PropURL, ev.URL)
	}

	if ev.AllDay {
		vevent.Props.SetDate(ical.PropDateTimeStart, ev.Start)
		vevent.Props.SetDate(ical.PropDateTimeEnd, ev.End)
	} else {
		vevent.Props.SetDateTime(ical.PropDateTimeStart, ev.Start.UTC())
		vevent.Props.SetDateTime(ical.PropDateTimeEnd, ev.End.UTC())
	}
	vevent.Props.SetDateTime(ical.PropDateTimeStamp, time.Now().UTC())

	cal.Children = append(cal.Children, vevent.Component)
	return cal
}
