// Package tui provides the interactive terminal view of a running download.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tokgrab-cli/tokgrab/transfer"
)

type state int

const (
	connectingState state = iota
	downloadingState
	doneState
	errorState
)

// statefulBubble tracks one transfer from connection to terminal outcome.
type statefulBubble struct {
	state  state
	keymap *statefulKeymap

	spinnerC  spinner.Model
	progressC progress.Model
	helpC     help.Model

	task   *transfer.Task
	cancel context.CancelFunc

	finishedChannel chan finishedMsg

	percent int
	outcome transfer.Outcome
	err     error

	width  int
	height int

	options *Options
}

type eventMsg struct {
	event transfer.Event
}

type eventsClosedMsg struct{}

type finishedMsg struct {
	outcome transfer.Outcome
	err     error
}

func newBubble(options *Options) *statefulBubble {
	ctx, cancel := context.WithCancel(context.Background())

	bubble := &statefulBubble{
		state:           connectingState,
		keymap:          newStatefulKeymap(),
		task:            transfer.New(options.Request),
		cancel:          cancel,
		finishedChannel: make(chan finishedMsg, 1),
		options:         options,
	}

	bubble.helpC = help.New()

	bubble.spinnerC = spinner.New()
	bubble.spinnerC.Spinner = spinner.Dot
	bubble.spinnerC.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	bubble.progressC = progress.New(progress.WithDefaultGradient())

	go func() {
		outcome, err := bubble.task.Run(ctx)
		bubble.finishedChannel <- finishedMsg{outcome: outcome, err: err}
	}()

	return bubble
}

// waitForEvent blocks on the transfer's event stream.
func (b *statefulBubble) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		event, ok := <-b.task.Events()
		if !ok {
			return eventsClosedMsg{}
		}
		return eventMsg{event: event}
	}
}

// waitForFinished blocks until the transfer goroutine reports its outcome.
func (b *statefulBubble) waitForFinished() tea.Cmd {
	return func() tea.Msg {
		return <-b.finishedChannel
	}
}

// Init starts the spinner and subscribes to the transfer's events.
func (b *statefulBubble) Init() tea.Cmd {
	return tea.Batch(b.spinnerC.Tick, b.waitForEvent())
}
