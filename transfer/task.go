// Package transfer implements the resumable, pausable byte-streaming engine.
package transfer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/tokgrab-cli/tokgrab/constant"
	"github.com/tokgrab-cli/tokgrab/filesystem"
	"github.com/tokgrab-cli/tokgrab/log"
	"github.com/tokgrab-cli/tokgrab/network"
	"github.com/tokgrab-cli/tokgrab/util"
)

const (
	// chunkSize is the read granularity for streaming writes.
	chunkSize = 8 * 1024

	// pausePollInterval bounds the latency of resuming a paused task.
	pausePollInterval = 200 * time.Millisecond

	// eventBuffer fits every distinct progress percent plus the one
	// terminal event, so emitting never blocks the run on a consumer
	// that only drains after the fact.
	eventBuffer = 102
)

// Request names the remote resource and its local destination.
// The destination's parent directory must exist before the task runs.
type Request struct {
	URL  string
	Path string
}

// Outcome is the result of a finished transfer.
type Outcome struct {
	Path  string
	Bytes int64
}

// Task streams one remote resource to a local file. A task owns its
// destination exclusively while running; no two tasks may target the same
// path concurrently. Each task is single-use.
type Task struct {
	request Request
	client  *http.Client
	paused  atomic.Bool
	events  chan Event
}

// New prepares a task for the given request using the shared download client.
func New(request Request) *Task {
	return &Task{
		request: request,
		client:  network.Download(),
		events:  make(chan Event, eventBuffer),
	}
}

// Events returns the channel the task emits on. The channel is closed when
// the run finishes; consumers should drain it until then.
func (t *Task) Events() <-chan Event {
	return t.events
}

// Pause suspends the transfer after the chunk currently in flight.
// The network connection stays open.
func (t *Task) Pause() {
	t.paused.Store(true)
}

// Resume lifts a previous pause.
func (t *Task) Resume() {
	t.paused.Store(false)
}

// Paused reports whether the task is currently suspended.
func (t *Task) Paused() bool {
	return t.paused.Load()
}

// Request returns the request the task was built from.
func (t *Task) Request() Request {
	return t.request
}

// Run executes the transfer to completion, resuming from any partial file at
// the destination. It emits Progress events while streaming and exactly one
// terminal event before closing the event channel. The transfer is never
// retried internally; cancelling the context aborts it and keeps the partial
// file for a later resume.
func (t *Task) Run(ctx context.Context) (Outcome, error) {
	outcome, err := t.run(ctx)
	if err != nil {
		t.emit(Failed{Err: err})
	} else {
		t.emit(Completed{Outcome: outcome})
	}
	close(t.events)
	return outcome, err
}

func (t *Task) run(ctx context.Context) (Outcome, error) {
	fs := filesystem.API()

	var existing int64
	if info, err := fs.Stat(t.request.Path); err == nil {
		existing = info.Size()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.request.URL, nil)
	if err != nil {
		return Outcome{}, fmt.Errorf("build download request: %w", err)
	}
	req.Header.Set("User-Agent", constant.UserAgent)
	if existing > 0 {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", existing))
		log.Debugf("resuming %s from byte %d", t.request.Path, existing)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return Outcome{}, fmt.Errorf("download request: %w", err)
	}
	defer util.Ignore(resp.Body.Close)

	if resp.StatusCode >= http.StatusBadRequest {
		return Outcome{}, fmt.Errorf("server returned status %s", resp.Status)
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_APPEND
	if existing > 0 && resp.StatusCode == http.StatusOK {
		// The server ignored the range request; start over.
		log.Debugf("range not honored for %s, restarting", t.request.URL)
		flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
		existing = 0
	}

	total := resp.ContentLength
	if total < 0 {
		total = 0
	}
	// A content-range total is authoritative over the plain content-length.
	if parsed, ok := contentRangeTotal(resp.Header.Get("Content-Range")); ok {
		total = parsed
	}

	file, err := fs.OpenFile(t.request.Path, flags, 0644)
	if err != nil {
		return Outcome{}, fmt.Errorf("open %s: %w", t.request.Path, err)
	}
	defer util.Ignore(file.Close)

	var (
		downloaded  = existing
		lastPercent = -1
		buf         = make([]byte, chunkSize)
	)

	for {
		n, readErr := resp.Body.Read(buf)

		if n > 0 {
			// Cooperative suspension point: hold the received chunk and poll
			// until the pause flag clears. The connection stays open.
			for t.paused.Load() {
				select {
				case <-ctx.Done():
					return Outcome{}, ctx.Err()
				case <-time.After(pausePollInterval):
				}
			}

			if _, err := file.Write(buf[:n]); err != nil {
				return Outcome{}, fmt.Errorf("write %s: %w", t.request.Path, err)
			}
			downloaded += int64(n)

			if total > 0 {
				percent := util.Min(int(downloaded*100/total), 100)
				if percent != lastPercent {
					lastPercent = percent
					t.emit(Progress{Percent: percent})
				}
			}
		}

		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return Outcome{}, fmt.Errorf("read %s: %w", t.request.URL, readErr)
		}
	}

	return Outcome{Path: t.request.Path, Bytes: downloaded}, nil
}

func (t *Task) emit(e Event) {
	t.events <- e
}

// contentRangeTotal extracts the total length from a Content-Range header
// such as "bytes 400-999/1000". An unknown total ("*") is rejected.
func contentRangeTotal(header string) (int64, bool) {
	idx := strings.LastIndex(header, "/")
	if idx < 0 {
		return 0, false
	}
	total, err := strconv.ParseInt(header[idx+1:], 10, 64)
	if err != nil || total <= 0 {
		return 0, false
	}
	return total, true
}
