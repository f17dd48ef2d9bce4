package fetcher

import (
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rs/zerolog/log"

	"github.com/examwatch/examwatch/pkg/page"
)

// BrowserFetcher uses Rod (headless Chrome) to load JS-rendered
// registration pages and hand out live page sources.
type BrowserFetcher struct {
	browser          *rod.Browser
	navigateTimeout  time.Duration
	stabilizeTimeout time.Duration
	userAgent        string
}

// BrowserConfig holds configuration for the browser fetcher.
type BrowserConfig struct {
	Headless         bool
	Stealth          bool
	UserAgent        string
	WindowWidth      int
	WindowHeight     int
	NavigateTimeout  time.Duration
	StabilizeTimeout time.Duration
}

// NewBrowserFetcher launches a browser and connects to it.
func NewBrowserFetcher(cfg BrowserConfig) (*BrowserFetcher, error) {
	l := launcher.New().
		Headless(cfg.Headless).
		Set("no-sandbox").
		Set("disable-gpu").
		Set("disable-dev-shm-usage")

	if cfg.WindowWidth > 0 && cfg.WindowHeight > 0 {
		l = l.Set("window-size", fmt.Sprintf("%d,%d", cfg.WindowWidth, cfg.WindowHeight))
	}
	if cfg.Stealth {
		l = l.Set("disable-blink-features", "AutomationControlled")
	}

	u, err := l.Launch()
	if err != nil {
		return nil, err
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		return nil, err
	}

	navigateTimeout := cfg.NavigateTimeout
	if navigateTimeout == 0 {
		navigateTimeout = 30 * time.Second
	}
	stabilizeTimeout := cfg.StabilizeTimeout
	if stabilizeTimeout == 0 {
		stabilizeTimeout = 15 * time.Second
	}

	return &BrowserFetcher{
		browser:          browser,
		navigateTimeout:  navigateTimeout,
		stabilizeTimeout: stabilizeTimeout,
		userAgent:        cfg.UserAgent,
	}, nil
}

func (f *BrowserFetcher) Name() string { return "browser" }

// Open navigates a fresh tab to the target URL and waits for the page
// to stabilize before handing it to the processor. The caller owns the
// returned source and should close it after the processing pass.
func (f *BrowserFetcher) Open(targetURL string) (page.Source, error) {
	p, err := f.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, err
	}

	if f.userAgent != "" {
		_ = p.SetUserAgent(&proto.NetworkSetUserAgentOverride{
			UserAgent: f.userAgent,
		})
	}

	nav := p.Timeout(f.navigateTimeout)
	if err := nav.Navigate(targetURL); err != nil {
		_ = p.Close()
		return nil, err
	}

	// The processor can work with a page that never fully settles;
	// explicit wait conditions are the caller's responsibility.
	if err := nav.WaitStable(f.stabilizeTimeout); err != nil {
		log.Warn().Err(err).Str("url", targetURL).Msg("page did not fully stabilize")
	}

	return &rodSource{page: p}, nil
}

func (f *BrowserFetcher) Close() error {
	if f.browser != nil {
		return f.browser.Close()
	}
	return nil
}
