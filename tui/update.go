// Package tui provides the interactive terminal view of a running download.
package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/tokgrab-cli/tokgrab/transfer"
	"github.com/tokgrab-cli/tokgrab/util"
)

func (b *statefulBubble) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.width = msg.Width
		b.height = msg.Height
		b.progressC.Width = util.Min(msg.Width-4, 60)
		return b, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, b.keymap.pause):
			if b.state == downloadingState {
				if b.task.Paused() {
					b.task.Resume()
				} else {
					b.task.Pause()
				}
			}
			return b, nil

		case key.Matches(msg, b.keymap.quit), key.Matches(msg, b.keymap.forceQuit):
			// Cancellation aborts the transfer and keeps the partial file.
			// The pause loop watches the context, so a paused task needs
			// no explicit resume here.
			b.cancel()
			return b, nil
		}

	case eventMsg:
		switch event := msg.event.(type) {
		case transfer.Progress:
			b.state = downloadingState
			b.percent = event.Percent
		}
		return b, b.waitForEvent()

	case eventsClosedMsg:
		return b, b.waitForFinished()

	case finishedMsg:
		b.outcome = msg.outcome
		b.err = msg.err
		if msg.err != nil {
			b.state = errorState
		} else {
			b.state = doneState
		}
		return b, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		b.spinnerC, cmd = b.spinnerC.Update(msg)
		return b, cmd
	}

	return b, nil
}
