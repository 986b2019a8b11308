package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// ConfirmModel asks the user to type an exact phrase before a destructive
// step. Anything else, or cancelling, denies.
type ConfirmModel struct {
	title    string
	details  []string
	expected string
	input    textinput.Model
	keys     ConfirmKeyMap

	done      bool
	confirmed bool
	cancelled bool
}

// NewConfirmModel creates a focused prompt expecting the phrase expected.
func NewConfirmModel(title string, details []string, expected string) ConfirmModel {
	ti := textinput.New()
	ti.Placeholder = expected
	ti.CharLimit = 256
	ti.Width = 40
	ti.Focus()

	return ConfirmModel{
		title:    title,
		details:  details,
		expected: expected,
		input:    ti,
		keys:     DefaultConfirmKeyMap(),
	}
}

// Init implements tea.Model.
func (m ConfirmModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m ConfirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Cancel):
			m.done = true
			m.cancelled = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Confirm):
			m.done = true
			m.confirmed = strings.TrimSpace(m.input.Value()) == m.expected
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m ConfirmModel) View() string {
	if m.done {
		return ""
	}

	var b strings.Builder
	b.WriteString(WarningStyle.Render(SymbolWarning+" "+m.title) + "\n")
	if len(m.details) > 0 {
		b.WriteString(WarningBoxStyle.Render(strings.Join(m.details, "\n")) + "\n")
	}
	b.WriteString("Type " + TitleStyle.Render(m.expected) + " to confirm:\n")
	b.WriteString(m.input.View() + "\n")
	b.WriteString(HelpStyle.Render(m.keys.HelpText()))
	return b.String()
}

// Confirmed reports whether the typed phrase matched.
func (m ConfirmModel) Confirmed() bool { return m.confirmed }

// Cancelled reports whether the user aborted the prompt.
func (m ConfirmModel) Cancelled() bool { return m.cancelled }

// Value returns what the user typed.
func (m ConfirmModel) Value() string { return m.input.Value() }
