// Package tui provides the interactive terminal view of a running download.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/tokgrab-cli/tokgrab/transfer"
)

// Options encapsulates the runtime configuration for the download view.
type Options struct {
	// Title is the asset caption shown above the progress bar.
	Title string
	// Request names the remote resource and its destination.
	Request transfer.Request
}

// Run executes the download under an interactive progress view. Space pauses
// and resumes the transfer, q cancels it while keeping the partial file.
func Run(options *Options) (transfer.Outcome, error) {
	bubble := newBubble(options)

	if _, err := tea.NewProgram(bubble).Run(); err != nil {
		bubble.cancel()
		return transfer.Outcome{}, err
	}

	return bubble.outcome, bubble.err
}
