package ui

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/cwarden/termcal/internal/calendar"
	"github.com/cwarden/termcal/internal/config"

	tea "github.com/charmbracelet/bubbletea"
)

// Friday
var fixedNow = time.Date(2024, 3, 15, 10, 0, 0, 0, time.Local)

func day(month time.Month, d int) time.Time {
	return time.Date(2024, month, d, 0, 0, 0, 0, time.Local)
}

func at(month time.Month, d, hour, minute int) time.Time {
	return time.Date(2024, month, d, hour, minute, 0, 0, time.Local)
}

func testStore() *calendar.MemoryStore {
	return calendar.NewMemoryStore(
		calendar.Calendar{ID: "work", Title: "Work", Writable: true},
		calendar.Calendar{ID: "holidays", Title: "Holidays"},
	)
}

type harness struct {
	*Model
	store *calendar.MemoryStore
	saved []config.State
}

func newHarness(t *testing.T, store *calendar.MemoryStore, state config.State) *harness {
	t.Helper()
	h := &harness{store: store}
	h.Model = New(Options{
		Store: store,
		State: state,
		SaveState: func(st config.State) error {
			h.saved = append(h.saved, st)
			return nil
		},
		Now: func() time.Time { return fixedNow },
	})
	h.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return h
}

func key(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func (h *harness) press(keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = h.Update(key(k))
	}
	return cmd
}

// typeText sends text as a single run of runes, the way a paste arrives.
func (h *harness) typeText(text string) {
	h.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

func titles(events []calendar.Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.Title
	}
	return out
}

func TestInitialState(t *testing.T) {
	h := newHarness(t, testStore(), config.State{})

	if h.focus != PanelEvents {
		t.Errorf("focus = %v, want PanelEvents", h.focus)
	}
	if !h.selectedDate.Equal(day(time.March, 15)) {
		t.Errorf("selectedDate = %v, want Mar 15", h.selectedDate)
	}
	if h.mode() != screenBrowse {
		t.Errorf("mode = %v, want browse", h.mode())
	}
}

func TestLeftKey(t *testing.T) {
	tests := []struct {
		name      string
		focus     Panel
		wantFocus Panel
		wantDate  time.Time
	}{
		{
			name:      "Events panel moves focus to calendar",
			focus:     PanelEvents,
			wantFocus: PanelCalendar,
			wantDate:  day(time.March, 15),
		},
		{
			name:      "Calendar panel moves back one day",
			focus:     PanelCalendar,
			wantFocus: PanelCalendar,
			wantDate:  day(time.March, 14),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, testStore(), config.State{})
			h.focus = tt.focus

			h.press("left")

			if h.focus != tt.wantFocus {
				t.Errorf("focus = %v, want %v", h.focus, tt.wantFocus)
			}
			if !h.selectedDate.Equal(tt.wantDate) {
				t.Errorf("selectedDate = %v, want %v", h.selectedDate, tt.wantDate)
			}
		})
	}
}

func TestCalendarNavigation(t *testing.T) {
	tests := []struct {
		name     string
		keys     []string
		wantDate time.Time
	}{
		{"Down is one week", []string{"j"}, day(time.March, 22)},
		{"Up is one week back", []string{"k"}, day(time.March, 8)},
		{"Right is one day", []string{"l"}, day(time.March, 16)},
		{"Arrow keys", []string{"down", "right", "right"}, day(time.March, 24)},
		{"Across a month boundary", []string{"j", "j", "j"}, day(time.April, 5)},
		{"Today resets", []string{"j", "l", "t"}, day(time.March, 15)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, testStore(), config.State{})
			h.press("tab")
			if h.focus != PanelCalendar {
				t.Fatalf("tab did not focus the calendar")
			}

			h.press(tt.keys...)

			if !h.selectedDate.Equal(tt.wantDate) {
				t.Errorf("selectedDate = %v, want %v", h.selectedDate, tt.wantDate)
			}
			if !h.listAnchor.Equal(tt.wantDate) {
				t.Errorf("listAnchor = %v, want %v", h.listAnchor, tt.wantDate)
			}
		})
	}
}

func TestEventListFollowsCalendarCursor(t *testing.T) {
	store := testStore()
	store.Seed(
		calendar.Event{ID: "a", CalendarID: "work", Title: "Standup", Start: at(time.March, 15, 9, 0), End: at(time.March, 15, 9, 15)},
		calendar.Event{ID: "b", CalendarID: "work", Title: "Planning", Start: at(time.March, 25, 13, 0), End: at(time.March, 25, 14, 0)},
		calendar.Event{ID: "c", CalendarID: "work", Title: "Far away", Start: at(time.July, 1, 13, 0), End: at(time.July, 1, 14, 0)},
	)
	h := newHarness(t, store, config.State{})

	got := strings.Join(titles(h.events), ",")
	if got != "Standup,Planning" {
		t.Fatalf("events = %s, want Standup,Planning", got)
	}

	h.press("tab", "j")

	got = strings.Join(titles(h.events), ",")
	if got != "Planning" {
		t.Errorf("events from Mar 22 = %s, want Planning only", got)
	}
}

func TestEventNavigationSyncsDate(t *testing.T) {
	store := testStore()
	store.Seed(
		calendar.Event{ID: "a", CalendarID: "work", Title: "One", Start: at(time.March, 15, 9, 0), End: at(time.March, 15, 10, 0)},
		calendar.Event{ID: "b", CalendarID: "work", Title: "Two", Start: at(time.March, 17, 9, 0), End: at(time.March, 17, 10, 0)},
		calendar.Event{ID: "c", CalendarID: "work", Title: "Three", Start: at(time.March, 20, 9, 0), End: at(time.March, 20, 10, 0)},
	)
	h := newHarness(t, store, config.State{})

	steps := []struct {
		key       string
		wantIndex int
		wantDate  time.Time
	}{
		{"j", 1, day(time.March, 17)},
		{"j", 2, day(time.March, 20)},
		{"j", 2, day(time.March, 20)},
		{"k", 1, day(time.March, 17)},
		{"up", 0, day(time.March, 15)},
		{"up", 0, day(time.March, 15)},
	}

	for i, s := range steps {
		h.press(s.key)
		if h.selectedIndex != s.wantIndex {
			t.Errorf("step %d: selectedIndex = %d, want %d", i, h.selectedIndex, s.wantIndex)
		}
		if !h.selectedDate.Equal(s.wantDate) {
			t.Errorf("step %d: selectedDate = %v, want %v", i, h.selectedDate, s.wantDate)
		}
	}

	if !h.listAnchor.Equal(day(time.March, 15)) {
		t.Errorf("moving through events should not re-anchor the list, got %v", h.listAnchor)
	}
}

func TestScrollKeepsSelectionVisible(t *testing.T) {
	store := testStore()
	for i := 0; i < 20; i++ {
		start := at(time.March, 15, 9, 0).AddDate(0, 0, i)
		store.Seed(calendar.Event{CalendarID: "work", Title: "Daily", Start: start, End: start.Add(time.Hour)})
	}
	h := newHarness(t, store, config.State{})
	h.Update(tea.WindowSizeMsg{Width: 80, Height: 12})

	for i := 0; i < 15; i++ {
		h.press("j")
		if h.scrollOffset < 0 || h.scrollOffset > h.selectedIndex {
			t.Fatalf("after %d moves: scrollOffset = %d, selectedIndex = %d", i+1, h.scrollOffset, h.selectedIndex)
		}
		if !h.fits(h.scrollOffset, h.selectedIndex) {
			t.Fatalf("after %d moves: selected row is off screen", i+1)
		}
	}
	if h.scrollOffset == 0 {
		t.Errorf("expected the list to have scrolled")
	}

	for i := 0; i < 15; i++ {
		h.press("k")
	}
	if h.selectedIndex != 0 || h.scrollOffset != 0 {
		t.Errorf("back at top: selectedIndex = %d, scrollOffset = %d", h.selectedIndex, h.scrollOffset)
	}
}

func TestToggleCalendarHidesEvents(t *testing.T) {
	store := testStore()
	store.Seed(
		calendar.Event{ID: "w", CalendarID: "work", Title: "Review", Start: at(time.March, 15, 14, 0), End: at(time.March, 15, 15, 0)},
		calendar.Event{ID: "h", CalendarID: "holidays", Title: "Ides of March", Start: day(time.March, 15), End: day(time.March, 16), AllDay: true},
	)
	h := newHarness(t, store, config.State{})
	if len(h.events) != 2 {
		t.Fatalf("events = %v, want both calendars", titles(h.events))
	}

	h.press("c")
	if h.mode() != screenToggle {
		t.Fatalf("mode = %v, want toggle", h.mode())
	}
	h.press("space", "esc")

	if h.mode() != screenBrowse {
		t.Errorf("mode = %v, want browse", h.mode())
	}
	if got := titles(h.events); len(got) != 1 || got[0] != "Ides of March" {
		t.Errorf("events = %v, want only the holiday", got)
	}
	if len(h.saved) != 1 {
		t.Fatalf("state saved %d times, want 1", len(h.saved))
	}
	if ids := h.saved[0].EnabledCalendarIDs; len(ids) != 1 || ids[0] != "holidays" {
		t.Errorf("saved enabled calendars = %v, want [holidays]", ids)
	}

	// Turning it back on restores the event
	h.press("c", "space", "esc")
	if len(h.events) != 2 {
		t.Errorf("events = %v, want both again", titles(h.events))
	}
}

func TestToggleAllOffKeepsEmptySet(t *testing.T) {
	h := newHarness(t, testStore(), config.State{})

	h.press("c", "space", "j", "space", "esc")

	if h.state.EnabledCalendarIDs == nil {
		t.Fatal("disabling every calendar must not fall back to all enabled")
	}
	if len(h.state.EnabledCalendarIDs) != 0 {
		t.Errorf("enabled = %v, want none", h.state.EnabledCalendarIDs)
	}
}

func TestWizardAllDayEvent(t *testing.T) {
	store := testStore()
	h := newHarness(t, store, config.State{})

	h.press("n")
	if h.mode() != screenWizard {
		t.Fatalf("mode = %v, want wizard", h.mode())
	}
	h.press("enter") // Work
	h.typeText("Offsite")
	h.press("enter")
	h.press("enter") // accept the picker date
	h.press("enter") // blank time: all day
	h.press("enter") // no location
	h.press("enter") // no notes
	h.press("y")

	events, err := store.ListEvents(t.Context(), "work", day(time.March, 1), day(time.April, 1))
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 {
		t.Fatalf("created %d events, want 1", len(events))
	}
	e := events[0]
	if !e.AllDay {
		t.Error("event should be all day")
	}
	if !e.Start.Equal(day(time.March, 15)) {
		t.Errorf("start = %v, want Mar 15 00:00", e.Start)
	}
	if !e.End.Equal(day(time.March, 16)) {
		t.Errorf("end = %v, want Mar 16 00:00", e.End)
	}
	if h.mode() != screenBrowse {
		t.Errorf("mode = %v, want browse", h.mode())
	}
	if !strings.Contains(h.status, "Offsite") {
		t.Errorf("status = %q, want confirmation", h.status)
	}
	if sel, ok := h.selectedEvent(); !ok || sel.ID != e.ID {
		t.Errorf("new event should be selected")
	}
}

func TestWizardTimedEventWithTypedDate(t *testing.T) {
	store := testStore()
	h := newHarness(t, store, config.State{})

	h.press("n", "enter")
	h.typeText("Dentist")
	h.press("enter")
	h.press("/")
	h.typeText("next monday")
	h.press("enter") // parse into the picker
	h.press("enter") // accept
	h.typeText("2:30pm")
	h.press("enter")
	h.typeText("45min")
	h.press("enter")
	h.typeText("Main St")
	h.press("enter")
	h.press("enter")
	h.press("y")

	events, err := store.SearchEvents(t.Context(), "dentist")
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 {
		t.Fatalf("created %d events, want 1", len(events))
	}
	e := events[0]
	if e.AllDay {
		t.Error("event should be timed")
	}
	if !e.Start.Equal(at(time.March, 18, 14, 30)) {
		t.Errorf("start = %v, want Mar 18 14:30", e.Start)
	}
	if !e.End.Equal(at(time.March, 18, 15, 15)) {
		t.Errorf("end = %v, want Mar 18 15:15", e.End)
	}
	if e.Location != "Main St" {
		t.Errorf("location = %q", e.Location)
	}
	if !h.selectedDate.Equal(day(time.March, 18)) {
		t.Errorf("cursor should move to the new event, got %v", h.selectedDate)
	}
}

func TestWizardDefaultDuration(t *testing.T) {
	tests := []struct {
		name     string
		duration string
	}{
		{"Blank", ""},
		{"Unparseable", "a while"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := testStore()
			h := newHarness(t, store, config.State{})

			h.press("n", "enter")
			h.typeText("Call")
			h.press("enter", "enter")
			h.typeText("9am")
			h.press("enter")
			if tt.duration != "" {
				h.typeText(tt.duration)
			}
			h.press("enter", "enter", "enter", "y")

			events, _ := store.SearchEvents(t.Context(), "call")
			if len(events) != 1 {
				t.Fatalf("created %d events, want 1", len(events))
			}
			if d := events[0].End.Sub(events[0].Start); d != time.Hour {
				t.Errorf("duration = %v, want 1h", d)
			}
		})
	}
}

func TestWizardRequiresTitle(t *testing.T) {
	store := testStore()
	h := newHarness(t, store, config.State{})

	h.press("n", "enter", "enter")

	w, ok := h.top().(*wizardScreen)
	if !ok {
		t.Fatalf("mode = %v, want wizard", h.mode())
	}
	if w.step != stepTitle {
		t.Errorf("step = %v, want title", w.step)
	}
	if !h.statusIsError {
		t.Errorf("empty title should be reported, status = %q", h.status)
	}

	h.press("esc")
	if h.mode() != screenBrowse {
		t.Errorf("esc should abandon the wizard")
	}
	if events, _ := store.ListEvents(t.Context(), "", day(time.January, 1), day(time.December, 31)); len(events) != 0 {
		t.Errorf("cancelled wizard created %d events", len(events))
	}
}

func TestWizardOffersWritableCalendarsOnly(t *testing.T) {
	h := newHarness(t, testStore(), config.State{})
	h.press("n")

	w := h.top().(*wizardScreen)
	if len(w.calendars) != 1 || w.calendars[0].ID != "work" {
		t.Errorf("calendars = %v, want only work", w.calendars)
	}
}

func TestNewEventWithoutWritableCalendars(t *testing.T) {
	store := calendar.NewMemoryStore(calendar.Calendar{ID: "holidays", Title: "Holidays"})
	h := newHarness(t, store, config.State{})

	h.press("n")

	if h.mode() != screenBrowse {
		t.Errorf("mode = %v, want browse", h.mode())
	}
	if h.status == "" {
		t.Error("expected a status message")
	}
}

func TestWizardCreateFailureIsReported(t *testing.T) {
	store := testStore()
	h := newHarness(t, store, config.State{})

	h.press("n", "enter")
	h.typeText("Doomed")
	h.press("enter", "enter", "enter", "enter", "enter")
	store.FailWith(errors.New("disk full"))
	h.press("y")

	if h.mode() != screenBrowse {
		t.Errorf("mode = %v, want browse", h.mode())
	}
	if !h.statusIsError || !strings.Contains(h.status, "disk full") {
		t.Errorf("status = %q, want the store error", h.status)
	}
}

func TestToggle24HourTime(t *testing.T) {
	h := newHarness(t, testStore(), config.State{})

	h.press("T")
	if !h.state.Use24HourTime {
		t.Error("T should switch to 24-hour time")
	}
	if len(h.saved) != 1 || !h.saved[0].Use24HourTime {
		t.Errorf("saved = %v, want one save with 24-hour time", h.saved)
	}

	h.press("T")
	if h.state.Use24HourTime {
		t.Error("second T should switch back")
	}
}

func TestUnknownKeyHint(t *testing.T) {
	h := newHarness(t, testStore(), config.State{})

	h.press("z")
	if !strings.Contains(h.status, "press ? for help") {
		t.Errorf("status = %q, want a hint", h.status)
	}
	if h.mode() != screenBrowse {
		t.Errorf("unknown key changed mode to %v", h.mode())
	}

	h.press("tab")
	if h.status != "" {
		t.Errorf("status should last one key press, got %q", h.status)
	}
}

func TestStoreFailureBecomesStatus(t *testing.T) {
	store := testStore()
	store.Seed(calendar.Event{CalendarID: "work", Title: "Review", Start: at(time.March, 15, 14, 0), End: at(time.March, 15, 15, 0)})
	h := newHarness(t, store, config.State{})

	store.FailWith(errors.New("offline"))
	h.press("r")

	if !h.statusIsError || !strings.Contains(h.status, "offline") {
		t.Errorf("status = %q, want the failure", h.status)
	}
	if len(h.events) != 0 {
		t.Errorf("events = %v, want none after a failed fetch", titles(h.events))
	}

	store.FailWith(nil)
	h.press("r")
	if len(h.events) != 1 {
		t.Errorf("events = %v after recovery", titles(h.events))
	}
}

func TestRefreshBypassesCache(t *testing.T) {
	store := testStore()
	h := newHarness(t, store, config.State{})

	store.Seed(calendar.Event{CalendarID: "work", Title: "Late addition", Start: at(time.March, 16, 9, 0), End: at(time.March, 16, 10, 0)})
	h.press("tab", "l", "h")
	if len(h.events) != 0 {
		t.Fatalf("cached window should not see the new event yet")
	}

	h.press("r")
	if got := titles(h.events); len(got) != 1 || got[0] != "Late addition" {
		t.Errorf("events = %v after refresh", got)
	}
}

func TestCacheStaysBoundedWhileBrowsing(t *testing.T) {
	h := newHarness(t, testStore(), config.State{})

	for i := 0; i < 90; i++ {
		h.press("l")
	}
	if n := h.cache.len(); n > cacheLimit {
		t.Errorf("cache holds %d entries after browsing, limit %d", n, cacheLimit)
	}
}

func TestEventCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := newEventCache()
	keyFor := func(i int) cacheKey {
		start := day(time.March, 1).AddDate(0, 0, i)
		return newCacheKey(start, start.AddDate(0, 0, 1), nil)
	}

	for i := 0; i < cacheLimit; i++ {
		c.put(keyFor(i), nil)
	}
	// keep the oldest entry warm
	if _, ok := c.get(keyFor(0)); !ok {
		t.Fatal("first entry missing before the cache is full")
	}
	c.put(keyFor(cacheLimit), nil)

	if c.len() != cacheLimit {
		t.Errorf("len = %d, want %d", c.len(), cacheLimit)
	}
	if _, ok := c.get(keyFor(0)); !ok {
		t.Error("recently read entry was evicted")
	}
	if _, ok := c.get(keyFor(1)); ok {
		t.Error("least recently used entry survived")
	}
}

func TestChangeNotificationReloads(t *testing.T) {
	store := testStore()
	h := newHarness(t, store, config.State{})

	store.Seed(calendar.Event{CalendarID: "holidays", Title: "Added on disk", Start: day(time.March, 20), End: day(time.March, 21), AllDay: true})
	h.Update(changeMsg{Path: "/tmp/holidays.ics", Timestamp: fixedNow})

	if got := titles(h.events); len(got) != 1 || got[0] != "Added on disk" {
		t.Errorf("events = %v after change notification", got)
	}
	if !h.marked[dateKey(day(time.March, 20))] {
		t.Error("calendar grid should mark Mar 20")
	}
}

func TestSearchOutsideWindow(t *testing.T) {
	store := testStore()
	store.Seed(calendar.Event{ID: "conf", CalendarID: "work", Title: "Conference", Notes: "Keynote", Start: at(time.November, 4, 9, 0), End: at(time.November, 4, 17, 0)})
	h := newHarness(t, store, config.State{})

	if len(h.events) != 0 {
		t.Fatalf("November event should be outside the window")
	}

	h.press("/")
	h.typeText("KEYNOTE")
	h.press("enter")

	s, ok := h.top().(*searchScreen)
	if !ok {
		t.Fatalf("mode = %v, want search", h.mode())
	}
	if len(s.results) != 1 || s.results[0].ID != "conf" {
		t.Fatalf("results = %v", titles(s.results))
	}

	h.press("enter")
	d, ok := h.top().(*detailScreen)
	if !ok {
		t.Fatalf("mode = %v, want detail", h.mode())
	}
	if d.event.Title != "Conference" {
		t.Errorf("detail shows %q", d.event.Title)
	}

	h.press("esc", "esc")
	if h.mode() != screenBrowse {
		t.Errorf("mode = %v, want browse", h.mode())
	}
}

func TestSearchNoMatches(t *testing.T) {
	h := newHarness(t, testStore(), config.State{})

	h.press("/")
	h.typeText("nothing")
	h.press("enter")

	s := h.top().(*searchScreen)
	if s.browsing {
		t.Error("no results should leave the query editable")
	}
	if !strings.Contains(h.status, "No events match") {
		t.Errorf("status = %q", h.status)
	}
}

func TestOpenDetail(t *testing.T) {
	tests := []struct {
		name string
		keys []string
	}{
		{"Enter", []string{"enter"}},
		{"Right", []string{"right"}},
		{"l", []string{"l"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := testStore()
			store.Seed(calendar.Event{ID: "w", CalendarID: "work", Title: "Review", Start: at(time.March, 15, 14, 0), End: at(time.March, 15, 15, 0)})
			h := newHarness(t, store, config.State{})

			h.press(tt.keys...)

			if h.mode() != screenDetail {
				t.Errorf("mode = %v, want detail", h.mode())
			}
		})
	}
}

func TestOpenDetailEmptyList(t *testing.T) {
	h := newHarness(t, testStore(), config.State{})

	h.press("enter")

	if h.mode() != screenBrowse {
		t.Errorf("mode = %v, want browse", h.mode())
	}
}

func TestDeleteEvent(t *testing.T) {
	store := testStore()
	store.Seed(calendar.Event{ID: "w", CalendarID: "work", Title: "Review", Start: at(time.March, 15, 14, 0), End: at(time.March, 15, 15, 0)})
	h := newHarness(t, store, config.State{})

	h.press("enter", "d")
	if h.mode() != screenConfirmDelete {
		t.Fatalf("mode = %v, want confirm", h.mode())
	}
	h.press("y")

	if h.mode() != screenBrowse {
		t.Errorf("mode = %v, want browse", h.mode())
	}
	if len(h.events) != 0 {
		t.Errorf("events = %v after delete", titles(h.events))
	}
	if events, _ := store.SearchEvents(t.Context(), "review"); len(events) != 0 {
		t.Errorf("store still has the event")
	}
}

func TestDeleteCancelled(t *testing.T) {
	store := testStore()
	store.Seed(calendar.Event{ID: "w", CalendarID: "work", Title: "Review", Start: at(time.March, 15, 14, 0), End: at(time.March, 15, 15, 0)})
	h := newHarness(t, store, config.State{})

	h.press("enter", "d", "n")

	if h.mode() != screenDetail {
		t.Errorf("mode = %v, want detail", h.mode())
	}
	if len(h.events) != 1 {
		t.Errorf("event should survive")
	}
}

func TestDeleteReadOnlyRefused(t *testing.T) {
	store := testStore()
	store.Seed(calendar.Event{ID: "h", CalendarID: "holidays", Title: "Ides of March", Start: day(time.March, 15), End: day(time.March, 16), AllDay: true})
	h := newHarness(t, store, config.State{})

	h.press("enter", "d")

	if h.mode() != screenDetail {
		t.Errorf("mode = %v, want detail", h.mode())
	}
	if !strings.Contains(h.status, "read-only") {
		t.Errorf("status = %q", h.status)
	}
}

func TestQuit(t *testing.T) {
	tests := []struct {
		name     string
		keys     []string
		wantQuit bool
	}{
		{"q from browse", []string{"q"}, true},
		{"ctrl+c from browse", []string{"ctrl+c"}, true},
		{"q closes help", []string{"?", "q"}, false},
		{"ctrl+c cancels search", []string{"/", "ctrl+c"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, testStore(), config.State{})

			cmd := h.press(tt.keys...)

			quit := false
			if cmd != nil {
				_, quit = cmd().(tea.QuitMsg)
			}
			if quit != tt.wantQuit {
				t.Errorf("quit = %v, want %v", quit, tt.wantQuit)
			}
			if !tt.wantQuit && h.mode() != screenBrowse {
				t.Errorf("mode = %v, want browse", h.mode())
			}
		})
	}
}

func TestHelpScreen(t *testing.T) {
	h := newHarness(t, testStore(), config.State{})

	h.press("?")
	if h.mode() != screenHelp {
		t.Fatalf("mode = %v, want help", h.mode())
	}
	if !strings.Contains(h.View(), "termcal Help") {
		t.Error("help view missing title")
	}

	h.press("x")
	if h.mode() != screenBrowse {
		t.Errorf("any key should close help")
	}
}

func TestViewRendersPanels(t *testing.T) {
	store := testStore()
	store.Seed(calendar.Event{CalendarID: "work", Title: "Review", Start: at(time.March, 15, 14, 0), End: at(time.March, 15, 15, 0)})
	h := newHarness(t, store, config.State{})

	view := h.View()
	for _, want := range []string{"March 2024", "Mo Tu We Th Fr Sa Su", "Review", "2:00pm", "Events: 1"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}

	h.press("T")
	if view := h.View(); !strings.Contains(view, "14:00") {
		t.Error("24-hour view missing 14:00")
	}
}

func TestGridExtendsToCursor(t *testing.T) {
	h := newHarness(t, testStore(), config.State{})
	h.months = 2

	h.moveDate(day(time.June, 10))

	first, last := h.gridRange()
	if !first.Equal(day(time.March, 1)) {
		t.Errorf("grid starts %v, want Mar 1", first)
	}
	if !last.Equal(day(time.July, 1)) {
		t.Errorf("grid ends %v, want Jul 1", last)
	}

	h.moveDate(day(time.January, 10))
	if first, _ := h.gridRange(); !first.Equal(day(time.January, 1)) {
		t.Errorf("grid starts %v, want Jan 1", first)
	}
}

func TestEnabledHash(t *testing.T) {
	a := enabledHash(map[string]bool{"x": true, "y": true})
	b := enabledHash(map[string]bool{"y": true, "x": true, "z": false})
	if a != b {
		t.Errorf("hash depends on map order or disabled entries: %q vs %q", a, b)
	}
	if enabledHash(nil) == enabledHash(map[string]bool{}) {
		t.Error("all calendars and no calendars must hash differently")
	}
}
