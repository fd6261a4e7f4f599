package transfer

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/tokgrab-cli/tokgrab/filesystem"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRun(t *testing.T) {
	Convey("Given a fresh destination and a server announcing 1000 bytes", t, func() {
		filesystem.SetMemMapFs()
		defer filesystem.SetOsFs()

		release := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Length", "1000")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(bytes.Repeat([]byte{'a'}, 500))
			w.(http.Flusher).Flush()
			<-release
			_, _ = w.Write(bytes.Repeat([]byte{'b'}, 500))
		}))
		defer server.Close()

		task := New(Request{URL: server.URL, Path: "clip.mp4"})

		type result struct {
			outcome Outcome
			err     error
		}
		done := make(chan result, 1)
		go func() {
			outcome, err := task.Run(context.Background())
			done <- result{outcome, err}
		}()

		Convey("It reports halfway progress and finishes with every byte written", func() {
			var (
				percents  []int
				completed *Completed
				released  bool
			)
			for event := range task.Events() {
				switch e := event.(type) {
				case Progress:
					percents = append(percents, e.Percent)
					if e.Percent == 50 && !released {
						released = true
						close(release)
					}
				case Completed:
					completed = &e
				case Failed:
					t.Fatalf("unexpected failure: %v", e.Err)
				}
			}

			So(percents, ShouldContain, 50)
			So(percents[len(percents)-1], ShouldEqual, 100)
			for i := 1; i < len(percents); i++ {
				So(percents[i], ShouldBeGreaterThan, percents[i-1])
			}

			So(completed, ShouldNotBeNil)
			So(completed.Outcome.Bytes, ShouldEqual, 1000)

			r := <-done
			So(r.err, ShouldBeNil)
			So(r.outcome.Path, ShouldEqual, "clip.mp4")

			content, err := filesystem.API().ReadFile("clip.mp4")
			So(err, ShouldBeNil)
			So(len(content), ShouldEqual, 1000)
		})
	})

	Convey("Given a 400 byte partial file and a server honoring ranges", t, func() {
		filesystem.SetMemMapFs()
		defer filesystem.SetOsFs()

		head := bytes.Repeat([]byte{'x'}, 400)
		So(filesystem.API().WriteFile("clip.mp4", head, 0644), ShouldBeNil)

		var gotRange string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotRange = r.Header.Get("Range")
			w.Header().Set("Content-Range", "bytes 400-999/1000")
			w.WriteHeader(http.StatusPartialContent)
			_, _ = w.Write(bytes.Repeat([]byte{'y'}, 600))
		}))
		defer server.Close()

		task := New(Request{URL: server.URL, Path: "clip.mp4"})
		outcome, err := task.Run(context.Background())

		Convey("It appends the remainder without touching existing bytes", func() {
			So(err, ShouldBeNil)
			So(gotRange, ShouldEqual, "bytes=400-")
			So(outcome.Bytes, ShouldEqual, 1000)

			content, readErr := filesystem.API().ReadFile("clip.mp4")
			So(readErr, ShouldBeNil)
			So(len(content), ShouldEqual, 1000)
			So(content[:400], ShouldResemble, head)
			So(content[400], ShouldEqual, byte('y'))
		})
	})

	Convey("Given a partial file and a server ignoring ranges", t, func() {
		filesystem.SetMemMapFs()
		defer filesystem.SetOsFs()

		So(filesystem.API().WriteFile("clip.mp4", bytes.Repeat([]byte{'x'}, 400), 0644), ShouldBeNil)

		body := bytes.Repeat([]byte{'z'}, 250)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write(body)
		}))
		defer server.Close()

		task := New(Request{URL: server.URL, Path: "clip.mp4"})
		outcome, err := task.Run(context.Background())

		Convey("It restarts from scratch", func() {
			So(err, ShouldBeNil)
			So(outcome.Bytes, ShouldEqual, 250)

			content, readErr := filesystem.API().ReadFile("clip.mp4")
			So(readErr, ShouldBeNil)
			So(content, ShouldResemble, body)
		})
	})

	Convey("Given a server replying with an error status", t, func() {
		filesystem.SetMemMapFs()
		defer filesystem.SetOsFs()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		}))
		defer server.Close()

		task := New(Request{URL: server.URL, Path: "clip.mp4"})
		_, err := task.Run(context.Background())

		Convey("It fails terminally with the status", func() {
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "404")

			var failed *Failed
			for event := range task.Events() {
				if e, ok := event.(Failed); ok {
					failed = &e
				}
			}
			So(failed, ShouldNotBeNil)
		})
	})
}

func TestPause(t *testing.T) {
	Convey("Given a paused task and a server withholding the second half", t, func() {
		filesystem.SetMemMapFs()
		defer filesystem.SetOsFs()

		sent := make(chan struct{})
		gate := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Length", "1000")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(bytes.Repeat([]byte{'a'}, 500))
			w.(http.Flusher).Flush()
			close(sent)
			<-gate
			_, _ = w.Write(bytes.Repeat([]byte{'b'}, 500))
		}))
		defer server.Close()

		task := New(Request{URL: server.URL, Path: "clip.mp4"})
		So(task.Paused(), ShouldBeFalse)
		task.Pause()
		So(task.Paused(), ShouldBeTrue)

		type result struct {
			outcome Outcome
			err     error
		}
		done := make(chan result, 1)
		go func() {
			outcome, err := task.Run(context.Background())
			done <- result{outcome, err}
		}()

		Convey("It holds the received chunk until resumed, then finishes", func() {
			<-sent
			time.Sleep(3 * pausePollInterval)

			info, statErr := filesystem.API().Stat("clip.mp4")
			So(statErr, ShouldBeNil)
			So(info.Size(), ShouldEqual, 0)

			task.Resume()

			var (
				percents  []int
				completed *Completed
				released  bool
			)
			for event := range task.Events() {
				switch e := event.(type) {
				case Progress:
					percents = append(percents, e.Percent)
					if e.Percent == 50 && !released {
						released = true
						close(gate)
					}
				case Completed:
					completed = &e
				case Failed:
					t.Fatalf("unexpected failure: %v", e.Err)
				}
			}

			So(percents, ShouldContain, 50)
			So(completed, ShouldNotBeNil)
			So(completed.Outcome.Bytes, ShouldEqual, 1000)

			r := <-done
			So(r.err, ShouldBeNil)

			content, err := filesystem.API().ReadFile("clip.mp4")
			So(err, ShouldBeNil)
			So(len(content), ShouldEqual, 1000)
		})
	})

	Convey("Given a task paused mid transfer and a cancelled context", t, func() {
		filesystem.SetMemMapFs()
		defer filesystem.SetOsFs()

		gate := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Length", "1000")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(bytes.Repeat([]byte{'a'}, 300))
			w.(http.Flusher).Flush()
			<-gate
			_, _ = w.Write(bytes.Repeat([]byte{'b'}, 300))
			w.(http.Flusher).Flush()
			<-r.Context().Done()
		}))
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		task := New(Request{URL: server.URL, Path: "clip.mp4"})

		type result struct {
			outcome Outcome
			err     error
		}
		done := make(chan result, 1)
		go func() {
			outcome, err := task.Run(ctx)
			done <- result{outcome, err}
		}()

		Convey("It aborts without writing the held chunk and keeps the partial file", func() {
			var (
				failed *Failed
				paused bool
			)
			for event := range task.Events() {
				switch e := event.(type) {
				case Progress:
					if e.Percent == 30 && !paused {
						paused = true
						task.Pause()
						close(gate)
						time.Sleep(3 * pausePollInterval)
						cancel()
					}
				case Failed:
					failed = &e
				}
			}

			So(failed, ShouldNotBeNil)

			r := <-done
			So(r.err, ShouldWrap, context.Canceled)

			content, err := filesystem.API().ReadFile("clip.mp4")
			So(err, ShouldBeNil)
			So(content, ShouldResemble, bytes.Repeat([]byte{'a'}, 300))
		})
	})
}

func TestLateConsumer(t *testing.T) {
	Convey("Given a consumer that only drains after the run finishes", t, func() {
		filesystem.SetMemMapFs()
		defer filesystem.SetOsFs()

		body := bytes.Repeat([]byte{'c'}, 101*chunkSize)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Length", strconv.Itoa(len(body)))
			_, _ = w.Write(body)
		}))
		defer server.Close()

		task := New(Request{URL: server.URL, Path: "clip.mp4"})
		outcome, err := task.Run(context.Background())

		Convey("The run is not blocked by the undrained events", func() {
			So(err, ShouldBeNil)
			So(outcome.Bytes, ShouldEqual, int64(len(body)))

			var (
				percents  []int
				completed *Completed
			)
			for event := range task.Events() {
				switch e := event.(type) {
				case Progress:
					percents = append(percents, e.Percent)
				case Completed:
					completed = &e
				}
			}

			So(len(percents), ShouldBeLessThanOrEqualTo, 101)
			So(percents[len(percents)-1], ShouldEqual, 100)
			So(completed, ShouldNotBeNil)
		})
	})
}

func TestContentRangeTotal(t *testing.T) {
	Convey("Given content range headers", t, func() {
		for header, want := range map[string]int64{
			"bytes 400-999/1000": 1000,
			"bytes 0-0/1":        1,
		} {
			total, ok := contentRangeTotal(header)
			So(ok, ShouldBeTrue)
			So(total, ShouldEqual, want)
		}

		Convey("Unknown or absent totals are rejected", func() {
			for _, header := range []string{"", "bytes 400-999/*", "bytes 400-999"} {
				_, ok := contentRangeTotal(header)
				So(ok, ShouldBeFalse)
			}
		})
	})
}
