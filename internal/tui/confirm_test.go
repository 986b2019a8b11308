package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func typeText(m tea.Model, text string) tea.Model {
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return m
}

func press(m tea.Model, k tea.KeyType) (ConfirmModel, tea.Cmd) {
	next, cmd := m.Update(tea.KeyMsg{Type: k})
	return next.(ConfirmModel), cmd
}

func TestConfirmModel_MatchingPhrase(t *testing.T) {
	m := typeText(NewConfirmModel("Delete fragments", nil, "course"), "course")

	final, cmd := press(m, tea.KeyEnter)

	assert.True(t, final.Confirmed())
	assert.False(t, final.Cancelled())
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, final.View())
}

func TestConfirmModel_WrongPhrase(t *testing.T) {
	m := typeText(NewConfirmModel("Delete fragments", nil, "course"), "cours")

	final, _ := press(m, tea.KeyEnter)

	assert.False(t, final.Confirmed())
	assert.Equal(t, "cours", final.Value())
}

func TestConfirmModel_Cancel(t *testing.T) {
	for _, k := range []tea.KeyType{tea.KeyEsc, tea.KeyCtrlC} {
		m := typeText(NewConfirmModel("Delete fragments", nil, "course"), "course")

		final, cmd := press(m, k)

		assert.False(t, final.Confirmed())
		assert.True(t, final.Cancelled())
		require.NotNil(t, cmd)
	}
}

func TestConfirmModel_View(t *testing.T) {
	m := NewConfirmModel("Delete fragments", []string{"3 files deleted"}, "course")

	view := m.View()
	assert.Contains(t, view, "Delete fragments")
	assert.Contains(t, view, "3 files deleted")
	assert.Contains(t, view, "course")
	assert.True(t, strings.Contains(view, "enter confirm"))
}

func TestKeyValue(t *testing.T) {
	line := KeyValue("Fragments", 12)
	assert.Contains(t, line, "Fragments")
	assert.True(t, strings.HasSuffix(line, "12"))
}
