// Package watcher drives the monitoring loop: it opens each target
// page through a fetcher, runs the content processor over it, and
// hands the snapshot to the output writer.
package watcher

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/examwatch/examwatch/internal/config"
	"github.com/examwatch/examwatch/internal/fetcher"
	"github.com/examwatch/examwatch/internal/output"
	"github.com/examwatch/examwatch/internal/processor"
	"github.com/examwatch/examwatch/pkg/page"
)

// Stats holds running counters for one watcher lifetime.
type Stats struct {
	Passes        int
	PagesErrored  int
	RawErrors     int
	LinksObserved int
	Elapsed       time.Duration
}

// Watcher owns the fetchers, the processor, and the snapshot writer.
type Watcher struct {
	cfg       config.Config
	proc      *processor.Processor
	browser   fetcher.Opener
	http      fetcher.Opener
	writer    *output.SnapshotWriter
	startTime time.Time

	stats   Stats
	statsMu sync.Mutex

	done    chan struct{}
	stopped bool
	stopMu  sync.Mutex
}

// New creates a watcher from the given configuration.
func New(cfg config.Config) (*Watcher, error) {
	proc, err := processor.New(cfg.Processor)
	if err != nil {
		return nil, err
	}

	return &Watcher{
		cfg:    cfg,
		proc:   proc,
		writer: output.NewSnapshotWriter(cfg.OutputDir),
		done:   make(chan struct{}),
	}, nil
}

// Init initializes the fetchers. In auto mode a browser launch failure
// downgrades to HTTP instead of failing.
func (w *Watcher) Init() error {
	w.http = fetcher.NewHTTPFetcher(fetcher.HTTPConfig{
		UserAgent:       w.cfg.Browser.UserAgent,
		Timeout:         w.cfg.HTTPTimeout,
		MaxResponseSize: w.cfg.MaxResponseSize,
		RespectRobots:   w.cfg.RespectRobots,
	})

	if w.cfg.Fetcher == config.FetcherBrowser || w.cfg.Fetcher == config.FetcherAuto {
		bf, err := fetcher.NewBrowserFetcher(fetcher.BrowserConfig{
			Headless:         w.cfg.Browser.Headless,
			Stealth:          w.cfg.Browser.Stealth,
			UserAgent:        w.cfg.Browser.UserAgent,
			WindowWidth:      w.cfg.Browser.WindowWidth,
			WindowHeight:     w.cfg.Browser.WindowHeight,
			NavigateTimeout:  w.cfg.Browser.NavigateTimeout,
			StabilizeTimeout: w.cfg.Browser.StabilizeTimeout,
		})
		if err != nil {
			if w.cfg.Fetcher == config.FetcherBrowser {
				return fmt.Errorf("browser fetcher unavailable: %w", err)
			}
			log.Warn().Err(err).Msg("browser fetcher unavailable, falling back to HTTP")
		} else {
			w.browser = bf
		}
	}

	return nil
}

// Run performs passes over all targets until stopped. With a zero
// interval it runs a single pass and returns.
func (w *Watcher) Run() error {
	w.startTime = time.Now()

	for {
		w.runPass()

		if w.cfg.Interval <= 0 {
			return nil
		}

		select {
		case <-w.done:
			return nil
		case <-time.After(w.cfg.Interval):
		}
	}
}

// Stop signals the watcher to stop after the current pass.
func (w *Watcher) Stop() {
	w.stopMu.Lock()
	defer w.stopMu.Unlock()
	if !w.stopped {
		w.stopped = true
		close(w.done)
	}
}

func (w *Watcher) isStopped() bool {
	w.stopMu.Lock()
	defer w.stopMu.Unlock()
	return w.stopped
}

// runPass processes every target once, sequentially. Page handles are
// not shared between targets, so there is nothing to parallelize
// against a single browser tab safely.
func (w *Watcher) runPass() {
	for _, target := range w.cfg.Targets {
		if w.isStopped() {
			return
		}
		w.watchTarget(target)
	}

	w.statsMu.Lock()
	w.stats.Passes++
	w.stats.Elapsed = time.Since(w.startTime)
	w.statsMu.Unlock()
}

// watchTarget loads one target, processes it, and persists the result.
func (w *Watcher) watchTarget(target config.Target) {
	passID := uuid.NewString()
	logger := log.With().Str("pass", passID).Str("url", target.URL).Logger()

	src, err := w.openSource(target.URL)
	if err != nil {
		w.statsMu.Lock()
		w.stats.PagesErrored++
		w.statsMu.Unlock()
		logger.Error().Err(err).Msg("target fetch failed")
		return
	}
	defer func() {
		if c, ok := src.(io.Closer); ok {
			_ = c.Close()
		}
	}()

	snapshot := w.proc.Process(src)

	w.statsMu.Lock()
	if _, failed := snapshot.Raw[page.KeyError]; failed {
		w.stats.RawErrors++
	}
	w.stats.LinksObserved += snapshot.Structured.Links.TotalCount
	w.statsMu.Unlock()

	name := target.Name
	if name == "" {
		name = target.URL
	}
	path, err := w.writer.Write(name, passID, snapshot)
	if err != nil {
		logger.Error().Err(err).Msg("snapshot write failed")
		return
	}

	logger.Info().
		Int("forms", len(snapshot.Structured.Forms)).
		Int("buttons", len(snapshot.Structured.Buttons)).
		Int("links", snapshot.Structured.Links.TotalCount).
		Int("registration_links", len(snapshot.Structured.Links.RegistrationLinks)).
		Int("vocabulary_hits", vocabularyHits(w.proc.Registry(), snapshot.Raw[page.KeyBodyText])).
		Str("snapshot", path).
		Msg("pass complete")

	if e := logger.Debug(); e.Enabled() {
		e.Msg("\n" + output.Summarize(name, snapshot))
	}
}

// vocabularyHits counts domain vocabulary matches in the cleaned body
// text, capped per pattern by the registry limit.
func vocabularyHits(reg *processor.Registry, text string) int {
	total := 0
	for _, re := range reg.Vocabulary {
		total += len(re.FindAllStringIndex(text, reg.Options.MaxMatchesPerPattern))
	}
	return total
}

// openSource picks a fetcher for the target per the configured mode.
func (w *Watcher) openSource(url string) (page.Source, error) {
	switch w.cfg.Fetcher {
	case config.FetcherHTTP:
		return w.http.Open(url)
	case config.FetcherBrowser:
		return w.browser.Open(url)
	default:
		if w.browser != nil {
			return w.browser.Open(url)
		}
		return w.http.Open(url)
	}
}

// GetStats returns a copy of the current stats.
func (w *Watcher) GetStats() Stats {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	return w.stats
}

// Close releases all fetcher resources.
func (w *Watcher) Close() error {
	if w.http != nil {
		_ = w.http.Close()
	}
	if w.browser != nil {
		return w.browser.Close()
	}
	return nil
}
