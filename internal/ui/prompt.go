package ui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

func newPrompt(placeholder string) textinput.Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = placeholder
	ti.CharLimit = 256
	ti.Width = 40
	ti.Focus()
	return ti
}

// promptUpdate forwards a message to a text input and reports the
// resulting command.
func promptUpdate(ti *textinput.Model, msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	*ti, cmd = ti.Update(msg)
	return cmd
}
