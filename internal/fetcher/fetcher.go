// Package fetcher provides the page sources consumed by the content
// processor: a Rod-driven headless browser for JS-rendered sites and a
// Colly-based HTTP path for server-rendered ones.
package fetcher

import "github.com/examwatch/examwatch/pkg/page"

// Opener retrieves a live page source for a target URL.
type Opener interface {
	// Name returns a human-readable identifier for this fetcher.
	Name() string

	// Open navigates to the URL and returns a source over the loaded
	// page. Sources that hold live resources also implement io.Closer.
	Open(url string) (page.Source, error)

	// Close releases any resources held by the fetcher.
	Close() error
}
