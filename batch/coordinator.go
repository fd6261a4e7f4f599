// Package batch orchestrates multi-link downloads: serial metadata
// resolution feeding a bounded pool of concurrent transfers.
package batch

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/samber/lo"
	"github.com/tokgrab-cli/tokgrab/filesystem"
	"github.com/tokgrab-cli/tokgrab/log"
	"github.com/tokgrab-cli/tokgrab/source"
	"github.com/tokgrab-cli/tokgrab/transfer"
)

// ErrNoValidURLs is returned when every supplied link fails domain validation.
var ErrNoValidURLs = errors.New("no valid urls to download")

// Fetcher resolves a source link into a media descriptor.
type Fetcher interface {
	Fetch(ctx context.Context, link string) (*source.Media, error)
}

// Status classifies the terminal outcome of one batch item.
type Status int

const (
	Downloaded Status = iota
	SkippedExists
	SkippedUnavailable
	SkippedDuplicate
	FailedFetch
	FailedTransfer
)

func (s Status) String() string {
	switch s {
	case Downloaded:
		return "downloaded"
	case SkippedExists:
		return "skipped (already exists)"
	case SkippedUnavailable:
		return "skipped (variant unavailable)"
	case SkippedDuplicate:
		return "skipped (duplicate)"
	case FailedFetch:
		return "failed (metadata)"
	case FailedTransfer:
		return "failed (transfer)"
	default:
		return "unknown"
	}
}

// Result records what happened to a single link.
type Result struct {
	URL    string
	Media  *source.Media
	Path   string
	Bytes  int64
	Status Status
	Err    error
}

// Options configures a batch run.
type Options struct {
	// Fetcher resolves links to metadata. Required.
	Fetcher Fetcher
	// Variant selects which representation to download for every item.
	Variant source.Variant
	// Dir is the destination directory. Must exist.
	Dir string
	// Limit caps concurrent transfers. Zero means unbounded.
	Limit int
	// OnProgress, when set, is invoked after every terminal outcome with the
	// overall floor percentage. Called from worker goroutines.
	OnProgress func(completed, total, percent int)
	// Record, when set, is invoked once per successful download.
	Record func(url string, media *source.Media, outcome transfer.Outcome)
}

// Job tracks an in-flight batch. Every valid link counts toward the total
// exactly once, whatever its outcome.
type Job struct {
	total     int
	completed atomic.Int64
	wg        sync.WaitGroup

	mu      sync.Mutex
	tasks   map[int]*transfer.Task
	results []Result
}

// Total returns the number of valid links in the batch.
func (j *Job) Total() int {
	return j.total
}

// Completed returns the number of links that reached a terminal outcome.
func (j *Job) Completed() int {
	return int(j.completed.Load())
}

// Percent returns the overall completion percentage, rounded down.
func (j *Job) Percent() int {
	if j.total == 0 {
		return 100
	}
	return j.Completed() * 100 / j.total
}

// Task looks up the running transfer for the given item id. Items that were
// skipped or are still waiting for metadata have no task.
func (j *Job) Task(id int) (*transfer.Task, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	task, ok := j.tasks[id]
	return task, ok
}

// PauseAll suspends every registered transfer.
func (j *Job) PauseAll() {
	j.mu.Lock()
	defer j.mu.Unlock()
	for _, task := range j.tasks {
		task.Pause()
	}
}

// ResumeAll lifts suspension on every registered transfer.
func (j *Job) ResumeAll() {
	j.mu.Lock()
	defer j.mu.Unlock()
	for _, task := range j.tasks {
		task.Resume()
	}
}

// Wait blocks until every item has a terminal outcome and returns the
// results in completion order.
func (j *Job) Wait() []Result {
	j.wg.Wait()
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]Result(nil), j.results...)
}

func (j *Job) register(id int, task *transfer.Task) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.tasks[id] = task
}

func (j *Job) unregister(id int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	delete(j.tasks, id)
}

// finish records exactly one terminal outcome for an item.
func (j *Job) finish(opts *Options, result Result) {
	j.mu.Lock()
	j.results = append(j.results, result)
	j.mu.Unlock()

	completed := int(j.completed.Add(1))
	if opts.OnProgress != nil {
		opts.OnProgress(completed, j.total, completed*100/j.total)
	}
	j.wg.Done()
}

// Run validates the links, then resolves metadata serially while transfers
// run concurrently under the configured cap. Invalid links are discarded
// before counting begins. The returned job is live; callers observe it
// through Wait, Percent and the task registry. Cancelling the context stops
// pending fetches and aborts running transfers, keeping partial files.
func Run(ctx context.Context, urls []string, opts Options) (*Job, error) {
	valid := lo.Filter(urls, func(url string, _ int) bool {
		if source.IsSupportedURL(url) {
			return true
		}
		log.Warnf("discarding unsupported url %s", url)
		return false
	})

	if len(valid) == 0 {
		return nil, ErrNoValidURLs
	}

	job := &Job{
		total: len(valid),
		tasks: make(map[int]*transfer.Task),
	}
	job.wg.Add(len(valid))

	var semaphore chan struct{}
	if opts.Limit > 0 {
		semaphore = make(chan struct{}, opts.Limit)
	}

	go func() {
		// Paths claimed by earlier items in this batch. Guarded by being
		// touched only from this goroutine, before each transfer starts.
		claimed := make(map[string]struct{})

		for id, url := range valid {
			if ctx.Err() != nil {
				job.finish(&opts, Result{URL: url, Status: FailedFetch, Err: ctx.Err()})
				continue
			}

			media, err := opts.Fetcher.Fetch(ctx, url)
			if err != nil {
				log.Warnf("resolve %s: %v", url, err)
				job.finish(&opts, Result{URL: url, Status: FailedFetch, Err: err})
				continue
			}

			remote, ok := media.VariantURL(opts.Variant).Get()
			if !ok {
				log.Infof("%s has no %s variant, skipping", url, opts.Variant)
				job.finish(&opts, Result{URL: url, Media: media, Status: SkippedUnavailable})
				continue
			}

			path := filepath.Join(opts.Dir, media.Filename(opts.Variant))

			if _, dup := claimed[path]; dup {
				log.Infof("%s resolves to already claimed %s, skipping", url, path)
				job.finish(&opts, Result{URL: url, Media: media, Path: path, Status: SkippedDuplicate})
				continue
			}

			if exists, _ := filesystem.API().Exists(path); exists {
				log.Infof("%s already downloaded, skipping", path)
				job.finish(&opts, Result{URL: url, Media: media, Path: path, Status: SkippedExists})
				continue
			}

			claimed[path] = struct{}{}

			if semaphore != nil {
				semaphore <- struct{}{}
			}

			go func(id int, url string, media *source.Media, remote, path string) {
				defer func() {
					if semaphore != nil {
						<-semaphore
					}
				}()

				task := transfer.New(transfer.Request{URL: remote, Path: path})
				job.register(id, task)
				defer job.unregister(id)

				go drain(task.Events())

				outcome, err := task.Run(ctx)
				if err != nil {
					log.Warnf("transfer %s: %v", path, err)
					job.finish(&opts, Result{URL: url, Media: media, Path: path, Status: FailedTransfer, Err: err})
					return
				}

				if opts.Record != nil {
					opts.Record(url, media, outcome)
				}
				job.finish(&opts, Result{URL: url, Media: media, Path: path, Bytes: outcome.Bytes, Status: Downloaded})
			}(id, url, media, remote, path)
		}
	}()

	return job, nil
}

// drain consumes and discards task events. Batch progress is tracked per
// item, not per byte.
func drain(events <-chan transfer.Event) {
	for range events {
	}
}
