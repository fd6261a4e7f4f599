// Package tikwm implements the metadata API client for resolving source links
// into downloadable media descriptors.
package tikwm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/spf13/viper"
	"github.com/tokgrab-cli/tokgrab/constant"
	"github.com/tokgrab-cli/tokgrab/internal/cache"
	"github.com/tokgrab-cli/tokgrab/key"
	"github.com/tokgrab-cli/tokgrab/log"
	"github.com/tokgrab-cli/tokgrab/network"
	"github.com/tokgrab-cli/tokgrab/source"
)

// Endpoint is the fixed upstream metadata API location.
const Endpoint = "https://tikwm.com/api"

// cacheScope namespaces metadata entries inside the shared cache directory.
const cacheScope = "tikwm"

// ErrInvalidResponse marks a payload that is structurally wrong or carries a
// non-zero status code. It is terminal: unlike a network failure, retrying
// the same request cannot fix it.
var ErrInvalidResponse = errors.New("invalid api response")

// Client talks to the metadata API with bounded retries and exponential backoff.
// Callers are expected to validate links with source.IsSupportedURL before
// fetching; the client itself does not re-validate.
type Client struct {
	endpoint string
	http     *http.Client
	retries  int
	timeout  time.Duration
	useCache bool

	// backoff computes the pause after a failed attempt; swapped in tests.
	backoff func(attempt int) time.Duration
}

// New constructs a Client from the global configuration.
func New() *Client {
	retries := viper.GetInt(key.FetcherRetries)
	if retries < 1 {
		retries = 1
	}
	timeout := viper.GetInt(key.FetcherTimeout)
	if timeout <= 0 {
		timeout = 10
	}

	return &Client{
		endpoint: Endpoint,
		http:     network.Client,
		retries:  retries,
		timeout:  time.Duration(timeout) * time.Second,
		useCache: viper.GetBool(key.FetcherCache),
		backoff: func(attempt int) time.Duration {
			return time.Duration(1<<attempt) * time.Second
		},
	}
}

// Fetch resolves a source link into a media descriptor.
// Network and decode failures are retried with 2^attempt seconds of backoff;
// an invalid payload is returned immediately wrapped in ErrInvalidResponse.
func (c *Client) Fetch(ctx context.Context, link string) (*source.Media, error) {
	cacheKey := cache.GenerateKey(link, cacheScope)
	if c.useCache {
		var cached source.Media
		if cache.Read(cacheKey, &cached) {
			log.Debugf("metadata cache hit for %s", link)
			return &cached, nil
		}
	}

	var lastErr error
	for attempt := 0; attempt < c.retries; attempt++ {
		media, err := c.fetchOnce(ctx, link)
		if err == nil {
			if c.useCache {
				if err := cache.Write(cacheKey, media); err != nil {
					log.Warnf("cache metadata for %s: %v", link, err)
				}
			}
			return media, nil
		}

		if errors.Is(err, ErrInvalidResponse) {
			return nil, err
		}

		lastErr = err
		log.Warnf("metadata attempt %d for %s failed: %v", attempt+1, link, err)

		if attempt < c.retries-1 {
			select {
			case <-time.After(c.backoff(attempt)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	return nil, fmt.Errorf("fetch metadata for %s: %w", link, lastErr)
}

// fetchOnce performs a single metadata request with the per-attempt deadline.
func (c *Client) fetchOnce(ctx context.Context, link string) (*source.Media, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build api request: %w", err)
	}

	query := url.Values{}
	query.Set("url", link)
	query.Set("hd", "1")
	req.URL.RawQuery = query.Encode()
	req.Header.Set("User-Agent", constant.UserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("api returned status %s", resp.Status)
	}

	var parsed response
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode api response: %w", err)
	}

	if parsed.Code != 0 || parsed.Data == nil {
		if parsed.Msg != "" {
			return nil, fmt.Errorf("%w: code %d (%s)", ErrInvalidResponse, parsed.Code, parsed.Msg)
		}
		return nil, fmt.Errorf("%w: code %d", ErrInvalidResponse, parsed.Code)
	}

	return parsed.Data.media(), nil
}
