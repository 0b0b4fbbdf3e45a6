package ui

import (
	"fmt"
	"strings"

	"github.com/cwarden/termcal/internal/calendar"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/truncate"
)

// searchScreen runs a store-wide search. Typing edits the query; once
// results arrive they can be browsed and opened.
type searchScreen struct {
	input    textinput.Model
	query    string
	results  []calendar.Event
	cursor   int
	browsing bool
}

func (m *Model) pushSearch() tea.Cmd {
	m.push(&searchScreen{input: newPrompt("title, notes or location")})
	return textinput.Blink
}

func (*searchScreen) kind() screenKind { return screenSearch }

func (s *searchScreen) passthrough(m *Model, msg tea.Msg) tea.Cmd {
	if s.browsing {
		return nil
	}
	return promptUpdate(&s.input, msg)
}

func (s *searchScreen) update(m *Model, msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "esc" || msg.String() == "ctrl+c" {
		m.pop()
		return nil
	}
	if s.browsing {
		return s.updateResults(m, msg)
	}

	if msg.String() != "enter" {
		return promptUpdate(&s.input, msg)
	}

	query := strings.TrimSpace(s.input.Value())
	if query == "" {
		m.setStatus("Enter a search term")
		return nil
	}
	s.run(m, query)
	return nil
}

func (s *searchScreen) run(m *Model, query string) {
	ctx, cancel := m.context()
	defer cancel()

	results, err := m.store.SearchEvents(ctx, query)
	if err != nil {
		m.setError("Search failed", err)
		return
	}
	calendar.SortEvents(results)

	s.query = query
	s.results = results
	s.cursor = 0
	if len(results) == 0 {
		m.setStatus("No events match %q", query)
		return
	}
	s.browsing = true
	s.input.Blur()
}

func (s *searchScreen) updateResults(m *Model, msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q":
		m.pop()
	case "j", "down":
		if s.cursor < len(s.results)-1 {
			s.cursor++
		}
	case "k", "up":
		if s.cursor > 0 {
			s.cursor--
		}
	case "enter", "l", "right":
		if s.cursor < len(s.results) {
			m.push(&detailScreen{event: s.results[s.cursor]})
		}
	case "/", "i":
		s.browsing = false
		return s.input.Focus()
	}
	return nil
}

func (s *searchScreen) view(m *Model) string {
	width := m.width - 8
	if width < 20 {
		width = 20
	}

	lines := []string{m.styles.Header.Render("Search events"), "", s.input.View()}

	if s.query != "" {
		lines = append(lines, "", m.styles.Muted.Render(fmt.Sprintf("%d result(s) for %q", len(s.results), s.query)))
	}

	// keep the cursor in a window of results that fits the screen
	visible := m.height - 12
	if visible < 1 {
		visible = 1
	}
	first := 0
	if s.cursor >= visible {
		first = s.cursor - visible + 1
	}
	for i := first; i < len(s.results) && i < first+visible; i++ {
		e := s.results[i]
		row := fmt.Sprintf("%s  %s", e.Start.Format("2006-01-02"), m.eventRow(e))
		row = truncate.StringWithTail(row, uint(width), "…")
		if s.browsing && i == s.cursor {
			row = m.styles.Selected.Render(row)
		}
		lines = append(lines, row)
	}

	help := "enter search | esc back"
	if s.browsing {
		help = "enter open | / edit query | esc back"
	}
	lines = append(lines, "", m.styles.Help.Render(help))

	return m.renderModal(lines...)
}
