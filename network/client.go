// Package network provides pre-configured, optimized HTTP clients for API and media traffic.
package network

import (
	"net/http"
	"sync"
	"time"

	"github.com/spf13/viper"
	"github.com/tokgrab-cli/tokgrab/key"
)

// Client is the singleton HTTP client used for metadata API calls.
// Per-request deadlines are supplied by callers via context; the transport
// carries conservative header and idle timeouts.
var Client = &http.Client{
	Timeout:   time.Minute,
	Transport: newTransport(30 * time.Second),
}

var (
	downloadOnce   sync.Once
	downloadClient *http.Client
)

// Download returns the shared HTTP client used for streaming media to disk.
// It has no overall timeout: a large video may legitimately take longer than
// any fixed deadline, and a paused transfer holds its connection open. The
// connection timeout comes from configuration, so the client is built on
// first use rather than at package init.
func Download() *http.Client {
	downloadOnce.Do(func() {
		timeout := viper.GetInt(key.TransferTimeout)
		if timeout <= 0 {
			timeout = 30
		}
		downloadClient = &http.Client{
			Transport: newTransport(time.Duration(timeout) * time.Second),
		}
	})
	return downloadClient
}

// newTransport initializes a tuned http.Transport with optimized pool and timeout parameters.
func newTransport(headerTimeout time.Duration) *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 100
	t.MaxIdleConnsPerHost = 100
	t.MaxConnsPerHost = 200
	t.IdleConnTimeout = 30 * time.Second
	t.ResponseHeaderTimeout = headerTimeout
	t.ExpectContinueTimeout = 30 * time.Second
	return t
}
