package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/cwarden/termcal/internal/calendar"
	"github.com/cwarden/termcal/internal/parser"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type wizardStep int

const (
	stepCalendar wizardStep = iota
	stepTitle
	stepDate
	stepTime
	stepDuration
	stepLocation
	stepNotes
	stepConfirm
)

const defaultDuration = time.Hour

// wizardScreen collects a new event one prompt at a time. esc at any
// step abandons the whole event.
type wizardScreen struct {
	step      wizardStep
	calendars []calendar.Calendar
	cursor    int
	input     textinput.Model

	// date picker
	date     time.Time
	freeText bool

	draft calendar.NewEvent
}

func (m *Model) pushWizard() tea.Cmd {
	w := &wizardScreen{
		calendars: m.writableCalendars(),
		date:      m.selectedDate,
		input:     newPrompt(""),
	}
	m.push(w)
	return nil
}

func (*wizardScreen) kind() screenKind { return screenWizard }

func (w *wizardScreen) passthrough(m *Model, msg tea.Msg) tea.Cmd {
	if !w.typing() {
		return nil
	}
	return promptUpdate(&w.input, msg)
}

// typing reports whether the current step reads free text.
func (w *wizardScreen) typing() bool {
	switch w.step {
	case stepTitle, stepTime, stepDuration, stepLocation, stepNotes:
		return true
	case stepDate:
		return w.freeText
	}
	return false
}

func (w *wizardScreen) update(m *Model, msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "esc" || msg.String() == "ctrl+c" {
		m.pop()
		m.setStatus("New event cancelled")
		return nil
	}

	switch w.step {
	case stepCalendar:
		return w.updateCalendar(msg)
	case stepDate:
		if !w.freeText {
			return w.updateDatePicker(msg)
		}
	case stepConfirm:
		return w.updateConfirm(m, msg)
	}

	if msg.String() != "enter" {
		return promptUpdate(&w.input, msg)
	}
	return w.submit(m, strings.TrimSpace(w.input.Value()))
}

func (w *wizardScreen) updateCalendar(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "j", "down":
		if w.cursor < len(w.calendars)-1 {
			w.cursor++
		}
	case "k", "up":
		if w.cursor > 0 {
			w.cursor--
		}
	case "enter":
		w.draft.CalendarID = w.calendars[w.cursor].ID
		return w.advance(stepTitle, "")
	}
	return nil
}

func (w *wizardScreen) updateDatePicker(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "h", "left":
		w.date = w.date.AddDate(0, 0, -1)
	case "l", "right":
		w.date = w.date.AddDate(0, 0, 1)
	case "j", "down":
		w.date = w.date.AddDate(0, 0, 7)
	case "k", "up":
		w.date = w.date.AddDate(0, 0, -7)
	case "/", "e":
		w.freeText = true
		w.input.Reset()
		w.input.Placeholder = "tomorrow, next friday, 2025-01-15"
		return w.input.Focus()
	case "enter":
		return w.advance(stepTime, "")
	}
	return nil
}

// submit accepts the typed value for the current text step.
func (w *wizardScreen) submit(m *Model, value string) tea.Cmd {
	switch w.step {
	case stepTitle:
		if value == "" {
			m.setError("Invalid title", &calendar.ValidationError{Field: "title", Message: "title must not be empty"})
			return nil
		}
		w.draft.Title = value
		return w.advance(stepDate, "")

	case stepDate:
		m.parser.SetNow(m.now())
		t, err := m.parser.Parse(value)
		if err != nil {
			m.setError("Invalid date", err)
			return nil
		}
		w.date = startOfDay(t)
		w.freeText = false
		w.input.Blur()

	case stepTime:
		if value == "" {
			w.draft.AllDay = true
			w.draft.Start = startOfDay(w.date)
			w.draft.End = w.draft.Start.AddDate(0, 0, 1)
			return w.advance(stepLocation, "")
		}
		hour, minute, second, ok := parser.ParseTimeOfDay(value)
		if !ok {
			m.setError("Invalid time", &parser.ParseError{Input: value})
			return nil
		}
		w.draft.AllDay = false
		w.draft.Start = time.Date(w.date.Year(), w.date.Month(), w.date.Day(), hour, minute, second, 0, w.date.Location())
		return w.advance(stepDuration, "")

	case stepDuration:
		d, ok := parser.ParseDuration(value)
		if !ok {
			if value != "" {
				m.setStatus("Using the default duration of 1h")
			}
			d = defaultDuration
		}
		w.draft.End = w.draft.Start.Add(d)
		return w.advance(stepLocation, "")

	case stepLocation:
		w.draft.Location = value
		return w.advance(stepNotes, "")

	case stepNotes:
		w.draft.Notes = value
		return w.advance(stepConfirm, "")
	}
	return nil
}

// advance moves to step, seeding the text input with value.
func (w *wizardScreen) advance(step wizardStep, value string) tea.Cmd {
	w.step = step
	w.input.Reset()
	w.input.SetValue(value)
	w.input.Placeholder = w.placeholder()
	if w.typing() {
		return w.input.Focus()
	}
	w.input.Blur()
	return nil
}

func (w *wizardScreen) placeholder() string {
	switch w.step {
	case stepTime:
		return "blank for all day, e.g. 14:30 or 2pm"
	case stepDuration:
		return "1h, 45min or 1:30"
	case stepLocation, stepNotes:
		return "optional"
	}
	return ""
}

func (w *wizardScreen) updateConfirm(m *Model, msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "y":
		m.popAll()
		m.createEvent(w.draft)
	case "n", "q":
		m.pop()
		m.setStatus("New event discarded")
	}
	return nil
}

// createEvent submits ev and moves the cursor to it on success.
func (m *Model) createEvent(ev calendar.NewEvent) {
	if err := ev.Validate(); err != nil {
		m.setError("Could not create event", err)
		return
	}

	ctx, cancel := m.context()
	created, err := m.store.CreateEvent(ctx, ev)
	cancel()
	if err != nil {
		m.setError("Could not create event", err)
		return
	}

	m.cache.clear()
	m.moveDate(created.Start)
	for i, e := range m.events {
		if e.ID == created.ID {
			m.moveSelection(i - m.selectedIndex)
			break
		}
	}
	m.setStatus("Created %q", created.Title)
}

func (w *wizardScreen) view(m *Model) string {
	lines := []string{m.styles.Header.Render("New Event"), ""}
	lines = append(lines, w.summary(m)...)
	lines = append(lines, "")

	switch w.step {
	case stepCalendar:
		lines = append(lines, m.styles.Normal.Render("Calendar:"))
		for i, c := range w.calendars {
			line := "  " + c.Title
			if i == w.cursor {
				line = m.styles.Selected.Render(line)
			}
			lines = append(lines, line)
		}
		lines = append(lines, "", m.styles.Help.Render("j/k move | enter select | esc cancel"))

	case stepDate:
		if w.freeText {
			lines = append(lines, m.styles.Normal.Render("Date:"), w.input.View(),
				"", m.styles.Help.Render("enter accept | esc cancel"))
			break
		}
		lines = append(lines, m.styles.Normal.Render("Date: "+w.date.Format("Mon Jan 2, 2006")), "")
		lines = append(lines, m.renderMonth(firstOfMonth(w.date), w.date, true)...)
		lines = append(lines, "", m.styles.Help.Render("h/l day | j/k week | / type a date | enter accept"))

	case stepConfirm:
		lines = append(lines, m.styles.Normal.Render("Create this event?"),
			"", m.styles.Help.Render("y create | n discard"))

	default:
		lines = append(lines, m.styles.Normal.Render(w.label()+":"), w.input.View(),
			"", m.styles.Help.Render("enter next | esc cancel"))
	}

	return m.renderModal(lines...)
}

func (w *wizardScreen) label() string {
	switch w.step {
	case stepTitle:
		return "Title"
	case stepTime:
		return "Start time"
	case stepDuration:
		return "Duration"
	case stepLocation:
		return "Location"
	case stepNotes:
		return "Notes"
	}
	return ""
}

// summary lists what has been entered so far.
func (w *wizardScreen) summary(m *Model) []string {
	var lines []string
	add := func(label, value string) {
		lines = append(lines, m.styles.Muted.Render(fmt.Sprintf("%-10s", label))+value)
	}

	if w.step > stepCalendar {
		add("Calendar", w.calendars[w.cursor].Title)
	}
	if w.step > stepTitle {
		add("Title", w.draft.Title)
	}
	if w.step > stepDate {
		add("Date", w.date.Format("Mon Jan 2, 2006"))
	}
	if w.step > stepTime {
		if w.draft.AllDay {
			add("Time", "all day")
		} else {
			add("Time", m.formatClock(w.draft.Start))
		}
	}
	if w.step > stepDuration && !w.draft.AllDay {
		add("Ends", m.formatClock(w.draft.End))
	}
	if w.step > stepLocation && w.draft.Location != "" {
		add("Location", w.draft.Location)
	}
	if w.step > stepNotes && w.draft.Notes != "" {
		add("Notes", w.draft.Notes)
	}
	return lines
}
