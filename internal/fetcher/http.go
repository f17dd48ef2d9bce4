package fetcher

import (
	"fmt"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/examwatch/examwatch/pkg/page"
)

// HTTPFetcher uses Colly for fetching server-rendered pages without a
// browser. The fetched markup is wrapped in a StaticSource.
type HTTPFetcher struct {
	collector *colly.Collector
}

// HTTPConfig holds configuration for the HTTP fetcher.
type HTTPConfig struct {
	UserAgent       string
	Timeout         time.Duration
	MaxResponseSize int
	RespectRobots   bool
	Proxy           string
}

// NewHTTPFetcher creates a new Colly-based HTTP fetcher.
func NewHTTPFetcher(cfg HTTPConfig) *HTTPFetcher {
	c := colly.NewCollector(colly.Async(false))

	if cfg.UserAgent != "" {
		c.UserAgent = cfg.UserAgent
	}
	if cfg.Timeout > 0 {
		c.SetRequestTimeout(cfg.Timeout)
	}
	if cfg.MaxResponseSize > 0 {
		c.MaxBodySize = cfg.MaxResponseSize
	}
	if !cfg.RespectRobots {
		c.IgnoreRobotsTxt = true
	}
	if cfg.Proxy != "" {
		_ = c.SetProxy(cfg.Proxy)
	}

	return &HTTPFetcher{collector: c}
}

func (f *HTTPFetcher) Name() string { return "http" }

// Open fetches the URL and returns a static source over the response
// body, keyed by the final URL after redirects.
func (f *HTTPFetcher) Open(targetURL string) (page.Source, error) {
	// Clone the collector for this individual fetch so we get clean state
	c := f.collector.Clone()

	var (
		body     []byte
		finalURL = targetURL
		fetchErr error
	)

	c.OnResponse(func(r *colly.Response) {
		body = r.Body
		finalURL = r.Request.URL.String()
	})

	c.OnError(func(r *colly.Response, err error) {
		fetchErr = err
	})

	if err := c.Visit(targetURL); err != nil {
		// "already visited" is an artifact of colly's dedupe, not a failure
		if !strings.Contains(err.Error(), "already visited") {
			return nil, err
		}
	}
	c.Wait()

	if fetchErr != nil {
		return nil, fetchErr
	}
	if body == nil {
		return nil, fmt.Errorf("no response body from %s", targetURL)
	}

	return NewStaticSource(string(body), finalURL)
}

func (f *HTTPFetcher) Close() error {
	return nil
}
