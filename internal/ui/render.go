package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/cwarden/termcal/internal/calendar"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
)

const (
	// month header, weekday header and six week rows
	monthRows = 8
	gridWidth = 20
)

// gridStart is the first month shown: today's month, or the cursor's
// month when the cursor has moved before it.
func (m *Model) gridStart() time.Time {
	start := firstOfMonth(m.now())
	if cursor := firstOfMonth(m.selectedDate); cursor.Before(start) {
		start = cursor
	}
	return start
}

// gridMonths is the number of months in the grid, extended so the
// cursor month is always included.
func (m *Model) gridMonths() int {
	n := m.months
	if idx := monthsBetween(m.gridStart(), m.selectedDate) + 1; idx > n {
		n = idx
	}
	return n
}

// gridRange returns the half-open range covered by the calendar grid.
func (m *Model) gridRange() (first, last time.Time) {
	first = m.gridStart()
	return first, first.AddDate(0, m.gridMonths(), 0)
}

func (m *Model) visibleMonths() int {
	n := (m.height - 3) / monthRows
	if n < 1 {
		n = 1
	}
	return n
}

// ensureMonthVisible scrolls the grid so the cursor month is on screen.
func (m *Model) ensureMonthVisible() {
	idx := monthsBetween(m.gridStart(), m.selectedDate)
	visible := m.visibleMonths()
	if idx < m.monthTop {
		m.monthTop = idx
	}
	if idx >= m.monthTop+visible {
		m.monthTop = idx - visible + 1
	}
	if limit := m.gridMonths() - visible; m.monthTop > limit {
		m.monthTop = limit
	}
	if m.monthTop < 0 {
		m.monthTop = 0
	}
}

// listHeight is the number of rows available to the event list.
func (m *Model) listHeight() int {
	// status bar, panel border and panel title
	h := m.height - 4
	if h < 1 {
		h = 1
	}
	return h
}

func (m *Model) renderBrowse() string {
	grid := m.renderGrid()
	list := m.renderEventList(m.width - lipgloss.Width(grid))
	body := lipgloss.JoinHorizontal(lipgloss.Top, grid, list)
	return lipgloss.JoinVertical(lipgloss.Left, body, m.renderStatusBar())
}

func (m *Model) renderGrid() string {
	first := m.gridStart()

	var lines []string
	end := m.monthTop + m.visibleMonths()
	if end > m.gridMonths() {
		end = m.gridMonths()
	}
	for i := m.monthTop; i < end; i++ {
		lines = append(lines, m.renderMonth(first.AddDate(0, i, 0), m.selectedDate, m.focus == PanelCalendar)...)
	}
	for len(lines) < m.height-3 {
		lines = append(lines, "")
	}

	style := m.styles.Border
	if m.focus == PanelCalendar {
		style = m.styles.Focused
	}
	return style.Width(gridWidth).Render(strings.Join(lines, "\n"))
}

// renderMonth draws one Monday-first month with cursor highlighted.
func (m *Model) renderMonth(month, cursor time.Time, focused bool) []string {
	today := startOfDay(m.now())

	lines := []string{
		m.styles.Header.Render(month.Format("January 2006")),
		m.styles.Muted.Render("Mo Tu We Th Fr Sa Su"),
	}

	day := month.AddDate(0, 0, -mondayOffset(month.Weekday()))
	for week := 0; week < 6; week++ {
		cells := make([]string, 7)
		for i := range cells {
			if day.Month() != month.Month() {
				cells[i] = "  "
			} else {
				cells[i] = m.dayStyle(day, today, cursor, focused).Render(fmt.Sprintf("%2d", day.Day()))
			}
			day = day.AddDate(0, 0, 1)
		}
		lines = append(lines, strings.Join(cells, " "))
	}
	return lines
}

// dayStyle picks a cell style: cursor, then today, then days with
// events, then weekends.
func (m *Model) dayStyle(day, today, cursor time.Time, focused bool) lipgloss.Style {
	switch {
	case sameDay(day, cursor):
		if focused {
			return m.styles.Selected
		}
		return m.styles.SelectedDim
	case sameDay(day, today):
		return m.styles.Today
	case m.marked[dateKey(day)]:
		return m.styles.Marked
	case day.Weekday() == time.Saturday || day.Weekday() == time.Sunday:
		return m.styles.Weekend
	default:
		return m.styles.Normal
	}
}

func (m *Model) renderEventList(width int) string {
	// border
	inner := width - 2
	if inner < 10 {
		inner = 10
	}
	height := m.listHeight()

	title := fmt.Sprintf("Events from %s", m.listAnchor.Format("Mon Jan 2, 2006"))
	lines := []string{m.styles.Header.Render(truncate.StringWithTail(title, uint(inner), "…"))}

	if len(m.events) == 0 {
		lines = append(lines, m.styles.Muted.Render(fmt.Sprintf("No events in the next %d days", m.windowDays)))
	}

	rows := 0
	var lastDay string
	for i := m.scrollOffset; i < len(m.events) && rows < height; i++ {
		e := m.events[i]
		day := m.rowDay(e)
		if key := dateKey(day); key != lastDay {
			lastDay = key
			lines = append(lines, m.styles.DayHeader.Render(day.Format("Monday, January 2")))
			rows++
			if rows >= height {
				break
			}
		}

		row := truncate.StringWithTail(m.eventRow(e), uint(inner), "…")
		switch {
		case i == m.selectedIndex && m.focus == PanelEvents:
			row = m.styles.Selected.Render(padRight(row, inner))
		case i == m.selectedIndex:
			row = m.styles.SelectedDim.Render(padRight(row, inner))
		default:
			row = m.styles.Event.Render(row)
		}
		lines = append(lines, row)
		rows++
	}
	for len(lines) < height+1 {
		lines = append(lines, "")
	}

	style := m.styles.Border
	if m.focus == PanelEvents {
		style = m.styles.Focused
	}
	return style.Width(inner).Render(strings.Join(lines, "\n"))
}

func (m *Model) eventRow(e calendar.Event) string {
	when := "all day"
	if !e.AllDay {
		when = m.formatClock(e.Start) + "-" + m.formatClock(e.End)
	}
	row := fmt.Sprintf("  %-15s %s", when, e.Title)
	if e.CalendarTitle != "" {
		row += fmt.Sprintf(" [%s]", e.CalendarTitle)
	}
	return row
}

func (m *Model) formatClock(t time.Time) string {
	if m.state.Use24HourTime {
		return t.Format("15:04")
	}
	return t.Format("3:04pm")
}

// formatSpan describes an event's time for the detail and confirm views.
func (m *Model) formatSpan(start, end time.Time, allDay bool) string {
	if allDay {
		last := end.AddDate(0, 0, -1)
		if !last.After(start) {
			return start.Format("Mon Jan 2, 2006") + ", all day"
		}
		return fmt.Sprintf("%s - %s, all day", start.Format("Mon Jan 2, 2006"), last.Format("Mon Jan 2, 2006"))
	}
	if sameDay(start, end) {
		return fmt.Sprintf("%s, %s - %s", start.Format("Mon Jan 2, 2006"), m.formatClock(start), m.formatClock(end))
	}
	return fmt.Sprintf("%s %s - %s %s",
		start.Format("Mon Jan 2, 2006"), m.formatClock(start),
		end.Format("Mon Jan 2, 2006"), m.formatClock(end))
}

func (m *Model) renderStatusBar() string {
	clock := "12h"
	if m.state.Use24HourTime {
		clock = "24h"
	}
	left := fmt.Sprintf(" %s | Events: %d | %s",
		m.selectedDate.Format("Jan 2, 2006"),
		len(m.events),
		clock)

	right := m.styles.Help.Render("? for help | q to quit")
	if m.status != "" {
		if m.statusIsError {
			right = m.styles.Error.Render(m.status)
		} else {
			right = m.styles.Message.Render(m.status)
		}
	}

	width := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if width < 0 {
		width = 0
	}

	return m.styles.Help.Render(left) + strings.Repeat(" ", width) + right
}

// renderModal centers a boxed dialog above the status bar.
func (m *Model) renderModal(lines ...string) string {
	box := m.styles.Focused.Padding(0, 1).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, box)
	return lipgloss.JoinVertical(lipgloss.Left, body, m.renderStatusBar())
}

func padRight(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func monthsBetween(from, to time.Time) int {
	return (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
}

func mondayOffset(d time.Weekday) int {
	return (int(d) + 6) % 7
}
