package tui

import "github.com/charmbracelet/bubbles/key"

// ConfirmKeyMap defines the key bindings of the confirmation prompt.
type ConfirmKeyMap struct {
	Confirm key.Binding
	Cancel  key.Binding
}

// DefaultConfirmKeyMap returns the default key bindings.
func DefaultConfirmKeyMap() ConfirmKeyMap {
	return ConfirmKeyMap{
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc", "ctrl+c"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// HelpText returns a formatted help string for the prompt.
func (k ConfirmKeyMap) HelpText() string {
	return k.Confirm.Help().Key + " " + k.Confirm.Help().Desc + " " + SymbolBullet + " " +
		k.Cancel.Help().Key + " " + k.Cancel.Help().Desc
}
