// Package tui provides the interactive terminal view of a running download.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wrap"
	"github.com/tokgrab-cli/tokgrab/icon"
	"github.com/tokgrab-cli/tokgrab/style"
	"github.com/tokgrab-cli/tokgrab/util"
)

var paddingStyle = lipgloss.NewStyle().Padding(1, 2)

func (b *statefulBubble) View() string {
	switch b.state {
	case connectingState:
		return b.viewConnecting()
	case downloadingState:
		return b.viewDownloading()
	case doneState:
		return b.viewDone()
	case errorState:
		return b.viewError()
	default:
		return "Unknown state"
	}
}

func (b *statefulBubble) viewConnecting() string {
	return b.renderLines(true, []string{
		style.Title(b.options.Title),
		"",
		b.spinnerC.View() + " Connecting...",
	})
}

func (b *statefulBubble) viewDownloading() string {
	status := fmt.Sprintf("%s %d%%", icon.Get(icon.Download), b.percent)
	if b.task.Paused() {
		status = fmt.Sprintf("%s Paused at %d%%", icon.Get(icon.Pause), b.percent)
	}

	return b.renderLines(true, []string{
		style.Title(b.options.Title),
		"",
		b.progressC.ViewAs(float64(b.percent) / 100),
		"",
		status,
	})
}

func (b *statefulBubble) viewDone() string {
	return b.renderLines(false, []string{
		style.Title(b.options.Title),
		"",
		fmt.Sprintf(
			"%s Saved to %s %s",
			icon.Get(icon.Success),
			style.Bold(b.outcome.Path),
			style.Faint(fmt.Sprintf("(%s)", util.FormatBytes(b.outcome.Bytes))),
		),
	})
}

func (b *statefulBubble) viewError() string {
	width := b.width
	if width <= 0 {
		width = 80
	}

	return b.renderLines(false, []string{
		style.ErrorTitle("Download failed"),
		"",
		wrap.String(b.err.Error(), width-4),
		"",
		style.Faint("Partial file kept, run again to resume."),
	})
}

func (b *statefulBubble) renderLines(addHelp bool, lines []string) string {
	l := strings.Join(lines, "\n")
	if addHelp {
		l += "\n\n" + b.helpC.View(b.keymap)
	}
	return paddingStyle.Render(l)
}
