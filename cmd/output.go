package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cwarden/termcal/internal/calendar"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#A78BFA"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086"))
)

// styled applies s only when stdout is a terminal, so piped output stays
// plain text.
func styled(s lipgloss.Style, text string) string {
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		return text
	}
	return s.Render(text)
}

type eventPrinter struct {
	w       io.Writer
	use24h  bool
	showIDs bool
}

func (p eventPrinter) clock(t time.Time) string {
	if p.use24h {
		return t.Format("15:04")
	}
	return t.Format("3:04pm")
}

func (p eventPrinter) when(e calendar.Event) string {
	if e.AllDay {
		return "All day"
	}
	return p.clock(e.Start) + "-" + p.clock(e.End)
}

// printDays prints events grouped under a header per start day.
func (p eventPrinter) printDays(events []calendar.Event) {
	var lastDay string
	for _, e := range events {
		if day := e.Start.Format("2006-01-02"); day != lastDay {
			if lastDay != "" {
				fmt.Fprintln(p.w)
			}
			lastDay = day
			fmt.Fprintln(p.w, styled(headerStyle, e.Start.Format("Monday, January 2 2006")))
		}
		p.printEvent(e)
	}
}

// printDated prints one line per event with its date, for search results.
func (p eventPrinter) printDated(events []calendar.Event) {
	for _, e := range events {
		fmt.Fprintf(p.w, "%s ", styled(mutedStyle, e.Start.Format("2006-01-02")))
		p.printEvent(e)
	}
}

func (p eventPrinter) printEvent(e calendar.Event) {
	fmt.Fprintf(p.w, "  %-15s %s", p.when(e), e.Title)
	if e.CalendarTitle != "" {
		fmt.Fprintf(p.w, " %s", styled(accentStyle, "["+e.CalendarTitle+"]"))
	}
	if e.Location != "" {
		fmt.Fprintf(p.w, " %s", styled(mutedStyle, "@ "+e.Location))
	}
	if p.showIDs {
		fmt.Fprintf(p.w, " %s", styled(mutedStyle, e.ID))
	}
	fmt.Fprintln(p.w)
}
