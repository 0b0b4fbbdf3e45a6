package ui

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/cwarden/termcal/internal/calendar"
	"github.com/cwarden/termcal/internal/config"
	"github.com/cwarden/termcal/internal/parser"

	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"
)

type Panel int

const (
	PanelCalendar Panel = iota
	PanelEvents
)

const storeTimeout = 30 * time.Second

// Options wires a Model to its collaborators.
type Options struct {
	Store calendar.Store
	State config.State
	// SaveState persists State whenever enabled calendars or the time
	// format change. Nil disables persistence.
	SaveState func(config.State) error
	// Now defaults to time.Now
	Now func() time.Time
	// WindowDays is the length of the event list window
	WindowDays int
	// CalendarMonths is the number of months in the calendar grid
	CalendarMonths int
	// Watch delivers backing file changes; nil disables live reload
	Watch  <-chan calendar.ChangeEvent
	Colors map[string]string
}

// Model is the interactive session. Browsing state lives on the model
// itself; modal screens are pushed on top of it and popped when done.
type Model struct {
	store     calendar.Store
	saveState func(config.State) error
	now       func() time.Time
	watch     <-chan calendar.ChangeEvent
	parser    *parser.TimeParser

	windowDays int
	months     int

	// Session state
	selectedDate  time.Time
	listAnchor    time.Time // start of the fetched event window
	focus         Panel
	events        []calendar.Event
	selectedIndex int
	scrollOffset  int
	monthTop      int
	state         config.State
	calendars     []calendar.Calendar
	marked        map[string]bool
	status        string
	statusIsError bool

	cache *eventCache
	stack []screen

	width  int
	height int
	styles Styles
}

func New(opts Options) *Model {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	if opts.WindowDays <= 0 {
		opts.WindowDays = 90
	}
	if opts.CalendarMonths <= 0 {
		opts.CalendarMonths = 12
	}

	today := startOfDay(now())
	m := &Model{
		store:        opts.Store,
		saveState:    opts.SaveState,
		now:          now,
		watch:        opts.Watch,
		parser:       parser.NewTimeParser(),
		windowDays:   opts.WindowDays,
		months:       opts.CalendarMonths,
		selectedDate: today,
		listAnchor:   today,
		focus:        PanelEvents,
		state:        opts.State,
		cache:        newEventCache(),
		width:        80,
		height:       24,
		styles:       DefaultStyles(opts.Colors),
	}

	m.loadCalendars()
	m.refresh()
	return m
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		m.waitForChange(),
	)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ensureVisible()
		m.ensureMonthVisible()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case changeMsg:
		log.Debugf("Reloading after change to %s", msg.Path)
		m.cache.clear()
		m.loadCalendars()
		m.refresh()
		return m, m.waitForChange()
	}

	// Cursor blink and similar messages go to the active text input
	if top, ok := m.top().(interface {
		passthrough(*Model, tea.Msg) tea.Cmd
	}); ok {
		return m, top.passthrough(m, msg)
	}
	return m, nil
}

func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}
	return m.top().view(m)
}

func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// A status message lasts for one input cycle
	m.status = ""
	m.statusIsError = false

	return m, m.top().update(m, msg)
}

// screen is one state of the session. update handles a key press while
// the screen is on top of the stack; view renders the whole terminal.
type screen interface {
	kind() screenKind
	update(m *Model, msg tea.KeyMsg) tea.Cmd
	view(m *Model) string
}

type screenKind int

const (
	screenBrowse screenKind = iota
	screenDetail
	screenConfirmDelete
	screenToggle
	screenSearch
	screenWizard
	screenHelp
)

func (m *Model) top() screen {
	if len(m.stack) == 0 {
		return browseScreen{}
	}
	return m.stack[len(m.stack)-1]
}

func (m *Model) push(s screen) {
	m.stack = append(m.stack, s)
}

func (m *Model) pop() {
	if len(m.stack) > 0 {
		m.stack = m.stack[:len(m.stack)-1]
	}
}

// popAll unwinds the stack down to browsing.
func (m *Model) popAll() {
	m.stack = nil
}

func (m *Model) mode() screenKind {
	return m.top().kind()
}

func (m *Model) setStatus(format string, args ...any) {
	m.status = fmt.Sprintf(format, args...)
	m.statusIsError = false
}

func (m *Model) setError(prefix string, err error) {
	m.status = fmt.Sprintf("%s: %v", prefix, err)
	m.statusIsError = true
	log.Warnf("%s: %v", prefix, err)
}

func (m *Model) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), storeTimeout)
}

func (m *Model) loadCalendars() {
	ctx, cancel := m.context()
	defer cancel()

	cals, err := m.store.ListCalendars(ctx)
	if err != nil {
		m.setError("Could not list calendars", err)
		return
	}
	m.calendars = cals
}

func (m *Model) calendarByID(id string) (calendar.Calendar, bool) {
	for _, c := range m.calendars {
		if c.ID == id {
			return c, true
		}
	}
	return calendar.Calendar{}, false
}

func (m *Model) writableCalendars() []calendar.Calendar {
	var out []calendar.Calendar
	for _, c := range m.calendars {
		if c.Writable {
			out = append(out, c)
		}
	}
	return out
}

// refresh re-derives the event list and the calendar marks from the
// store (or the cache) and clamps the cursor into the new list.
func (m *Model) refresh() {
	enabled := m.state.EnabledSet()

	start := m.listAnchor
	end := start.AddDate(0, 0, m.windowDays)
	events, err := m.fetch(start, end, enabled)
	if err != nil {
		m.setError("Could not load events", err)
		events = nil
	}
	m.events = events

	if len(m.events) == 0 {
		m.selectedIndex = 0
		m.scrollOffset = 0
	} else if m.selectedIndex >= len(m.events) {
		m.selectedIndex = len(m.events) - 1
	}
	if m.scrollOffset > m.selectedIndex {
		m.scrollOffset = m.selectedIndex
	}
	m.ensureVisible()

	m.refreshMarks(enabled)
}

func (m *Model) refreshMarks(enabled map[string]bool) {
	first, last := m.gridRange()
	events, err := m.fetch(first, last, enabled)
	if err != nil {
		// the event list already reported the failure
		m.marked = nil
		return
	}

	m.marked = make(map[string]bool)
	for _, e := range events {
		day := startOfDay(e.Start)
		m.marked[dateKey(day)] = true
		for day = day.AddDate(0, 0, 1); day.Before(e.End) && day.Before(last); day = day.AddDate(0, 0, 1) {
			m.marked[dateKey(day)] = true
		}
	}
}

func (m *Model) fetch(start, end time.Time, enabled map[string]bool) ([]calendar.Event, error) {
	key := newCacheKey(start, end, enabled)
	if events, ok := m.cache.get(key); ok {
		return events, nil
	}

	ctx, cancel := m.context()
	defer cancel()

	events, err := m.store.ListEvents(ctx, "", start, end)
	if err != nil {
		return nil, err
	}
	events = calendar.FilterCalendars(events, enabled)
	calendar.SortEvents(events)

	m.cache.put(key, events)
	log.Debugf("Fetched %d events for %s..%s", len(events), start.Format("2006-01-02"), end.Format("2006-01-02"))
	return events, nil
}

// invalidate drops cached results after anything that changes what the
// store would return.
func (m *Model) invalidate() {
	m.cache.clear()
	m.refresh()
}

func (m *Model) persistState() {
	if m.saveState == nil {
		return
	}
	if err := m.saveState(m.state); err != nil {
		m.setError("Could not save settings", err)
	}
}

// moveDate moves the calendar cursor and re-anchors the event list.
func (m *Model) moveDate(d time.Time) {
	m.selectedDate = startOfDay(d)
	m.listAnchor = m.selectedDate
	m.selectedIndex = 0
	m.scrollOffset = 0
	m.refresh()
	m.ensureMonthVisible()
}

func (m *Model) selectedEvent() (calendar.Event, bool) {
	if m.selectedIndex < 0 || m.selectedIndex >= len(m.events) {
		return calendar.Event{}, false
	}
	return m.events[m.selectedIndex], true
}

// moveSelection moves the event cursor by delta, scrolls it into view
// and syncs the calendar cursor to the event's day.
func (m *Model) moveSelection(delta int) {
	if len(m.events) == 0 {
		return
	}
	m.selectedIndex += delta
	if m.selectedIndex < 0 {
		m.selectedIndex = 0
	}
	if m.selectedIndex >= len(m.events) {
		m.selectedIndex = len(m.events) - 1
	}
	m.ensureVisible()

	day := startOfDay(m.events[m.selectedIndex].Start)
	if day.Before(m.listAnchor) {
		day = m.listAnchor
	}
	m.selectedDate = day
	// the grid may have grown to include the cursor month
	m.refreshMarks(m.state.EnabledSet())
	m.ensureMonthVisible()
}

// ensureVisible keeps 0 <= scrollOffset <= selectedIndex with the
// selected row inside the list viewport.
func (m *Model) ensureVisible() {
	if m.selectedIndex < m.scrollOffset {
		m.scrollOffset = m.selectedIndex
	}
	for m.scrollOffset < m.selectedIndex && !m.fits(m.scrollOffset, m.selectedIndex) {
		m.scrollOffset++
	}
	if m.scrollOffset < 0 {
		m.scrollOffset = 0
	}
}

// fits reports whether rows for events from..to, day headers included,
// fit in the list viewport.
func (m *Model) fits(from, to int) bool {
	rows := 0
	var lastDay string
	for i := from; i <= to && i < len(m.events); i++ {
		day := dateKey(m.rowDay(m.events[i]))
		if day != lastDay {
			rows++
			lastDay = day
		}
		rows++
	}
	return rows <= m.listHeight()
}

// rowDay is the day an event is listed under.
func (m *Model) rowDay(e calendar.Event) time.Time {
	day := startOfDay(e.Start)
	if day.Before(m.listAnchor) {
		return m.listAnchor
	}
	return day
}

func (m *Model) waitForChange() tea.Cmd {
	if m.watch == nil {
		return nil
	}
	watch := m.watch
	return func() tea.Msg {
		ev, ok := <-watch
		if !ok {
			return nil
		}
		return changeMsg(ev)
	}
}

// eventCache holds filtered, sorted fetch results keyed by range and the
// set of enabled calendars. Only the most recently used cacheLimit
// entries are kept.
type eventCache struct {
	entries map[cacheKey][]calendar.Event
	order   []cacheKey
}

const cacheLimit = 16

type cacheKey struct {
	start   int64
	end     int64
	enabled string
}

func newEventCache() *eventCache {
	return &eventCache{entries: make(map[cacheKey][]calendar.Event)}
}

func newCacheKey(start, end time.Time, enabled map[string]bool) cacheKey {
	return cacheKey{start: start.Unix(), end: end.Unix(), enabled: enabledHash(enabled)}
}

func enabledHash(enabled map[string]bool) string {
	if enabled == nil {
		return "*"
	}
	ids := make([]string, 0, len(enabled))
	for id, on := range enabled {
		if on {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return strings.Join(ids, "\x00")
}

func (c *eventCache) get(k cacheKey) ([]calendar.Event, bool) {
	events, ok := c.entries[k]
	if ok {
		c.touch(k)
	}
	return events, ok
}

func (c *eventCache) put(k cacheKey, events []calendar.Event) {
	c.entries[k] = events
	c.touch(k)
	for len(c.order) > cacheLimit {
		delete(c.entries, c.order[0])
		c.order = c.order[1:]
	}
}

// touch moves k to the most recently used end of order.
func (c *eventCache) touch(k cacheKey) {
	c.order = slices.DeleteFunc(c.order, func(o cacheKey) bool { return o == k })
	c.order = append(c.order, k)
}

func (c *eventCache) len() int {
	return len(c.entries)
}

func (c *eventCache) clear() {
	c.entries = make(map[cacheKey][]calendar.Event)
	c.order = nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func dateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// Message types
type changeMsg calendar.ChangeEvent
