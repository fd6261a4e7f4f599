// Package tui provides the interactive terminal view of a running download.
package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

// statefulKeymap defines the keyboard interactions available while a
// transfer is running.
type statefulKeymap struct {
	pause     key.Binding
	quit      key.Binding
	forceQuit key.Binding
}

func newStatefulKeymap() *statefulKeymap {
	return &statefulKeymap{
		pause: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "pause/resume"),
		),
		quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "cancel"),
		),
		forceQuit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+d"),
			key.WithHelp("ctrl+c", "cancel"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k *statefulKeymap) ShortHelp() []key.Binding {
	return []key.Binding{k.pause, k.quit}
}

// FullHelp implements help.KeyMap.
func (k *statefulKeymap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
