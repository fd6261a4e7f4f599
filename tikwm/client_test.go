package tikwm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/tokgrab-cli/tokgrab/filesystem"
	"github.com/tokgrab-cli/tokgrab/source"
)

func init() {
	filesystem.SetMemMapFs()
}

// testClient builds a Client pointed at a local server with instant backoff
// and the disk cache disabled.
func testClient(endpoint string) *Client {
	return &Client{
		endpoint: endpoint,
		http:     http.DefaultClient,
		retries:  3,
		timeout:  5 * time.Second,
		backoff:  func(int) time.Duration { return 0 },
	}
}

func TestFetch(t *testing.T) {
	Convey("Given a metadata API", t, func() {
		Convey("A successful response becomes a media descriptor", func() {
			var gotQuery atomic.Value
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotQuery.Store(r.URL.Query().Encode())
				w.Write([]byte(`{"code":0,"data":{"title":"Dance","region":"US","duration":15,"play":"http://x/vid.mp4"}}`))
			}))
			defer server.Close()

			media, err := testClient(server.URL).Fetch(context.Background(), "https://tiktok.com/@user/video/123")
			So(err, ShouldBeNil)
			So(media.Title, ShouldEqual, "Dance")
			So(media.Region, ShouldEqual, "US")
			So(media.Duration(), ShouldEqual, "15 seconds")
			So(media.VariantURL(source.StandardVideo).MustGet(), ShouldEqual, "http://x/vid.mp4")

			Convey("All four variants are present, optional", func() {
				So(len(media.Variants), ShouldEqual, 4)
				So(media.VariantURL(source.HDVideo).IsAbsent(), ShouldBeTrue)
				So(media.VariantURL(source.CoverImage).IsAbsent(), ShouldBeTrue)
				So(media.VariantURL(source.Music).IsAbsent(), ShouldBeTrue)
			})

			Convey("The request carries the link and hd flag", func() {
				So(gotQuery.Load().(string), ShouldEqual, "hd=1&url=https%3A%2F%2Ftiktok.com%2F%40user%2Fvideo%2F123")
			})
		})

		Convey("A transient failure is retried until it succeeds", func() {
			var hits atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if hits.Add(1) < 3 {
					w.WriteHeader(http.StatusBadGateway)
					return
				}
				w.Write([]byte(`{"code":0,"data":{"title":"Late","duration":3}}`))
			}))
			defer server.Close()

			media, err := testClient(server.URL).Fetch(context.Background(), "https://tiktok.com/@u/video/1")
			So(err, ShouldBeNil)
			So(media.Title, ShouldEqual, "Late")
			So(hits.Load(), ShouldEqual, 3)
		})

		Convey("Three consecutive failures exhaust the retries", func() {
			var hits atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				hits.Add(1)
				w.WriteHeader(http.StatusInternalServerError)
			}))
			defer server.Close()

			media, err := testClient(server.URL).Fetch(context.Background(), "https://tiktok.com/@u/video/1")
			So(media, ShouldBeNil)
			So(err, ShouldNotBeNil)
			So(hits.Load(), ShouldEqual, 3)
		})

		Convey("A non-zero code is an invalid response and is not retried", func() {
			var hits atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				hits.Add(1)
				w.Write([]byte(`{"code":-1,"msg":"url invalid"}`))
			}))
			defer server.Close()

			media, err := testClient(server.URL).Fetch(context.Background(), "https://tiktok.com/@u/video/1")
			So(media, ShouldBeNil)
			So(err, ShouldWrap, ErrInvalidResponse)
			So(hits.Load(), ShouldEqual, 1)
		})

		Convey("A missing data payload is an invalid response", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"code":0}`))
			}))
			defer server.Close()

			_, err := testClient(server.URL).Fetch(context.Background(), "https://tiktok.com/@u/video/1")
			So(err, ShouldWrap, ErrInvalidResponse)
		})

		Convey("Malformed JSON is retried like a network failure", func() {
			var hits atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				hits.Add(1)
				w.Write([]byte(`{not json`))
			}))
			defer server.Close()

			_, err := testClient(server.URL).Fetch(context.Background(), "https://tiktok.com/@u/video/1")
			So(err, ShouldNotBeNil)
			So(hits.Load(), ShouldEqual, 3)
		})
	})
}

func TestFetchCache(t *testing.T) {
	Convey("Given a client with the cache enabled", t, func() {
		var hits atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			w.Write([]byte(`{"code":0,"data":{"title":"Cached","duration":7,"play":"http://x/v.mp4"}}`))
		}))
		defer server.Close()

		client := testClient(server.URL)
		client.useCache = true

		Convey("The second fetch of the same link is served from disk", func() {
			first, err := client.Fetch(context.Background(), "https://tiktok.com/@u/video/cached")
			So(err, ShouldBeNil)

			second, err := client.Fetch(context.Background(), "https://tiktok.com/@u/video/cached")
			So(err, ShouldBeNil)
			So(hits.Load(), ShouldEqual, 1)
			So(second.Title, ShouldEqual, first.Title)
			So(second.VariantURL(source.StandardVideo).MustGet(), ShouldEqual, "http://x/v.mp4")
		})
	})
}
