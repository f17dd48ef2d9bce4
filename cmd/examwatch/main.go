package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/examwatch/examwatch/internal/config"
	"github.com/examwatch/examwatch/internal/watcher"
)

var version = "1.0.0"

// flags holds all parsed CLI options.
type flags struct {
	url        string
	configFile string
	fetcher    string
	interval   time.Duration
	once       bool
	output     string
	headless   bool
	stealth    bool
	verbose    bool

	showVersion bool

	fs *flag.FlagSet
}

func main() {
	f := parseFlags()

	if f.showVersion {
		fmt.Printf("examwatch v%s\n", version)
		os.Exit(0)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load(f.configFile)
	if err != nil {
		fatal("configuration failed: %v", err)
	}
	applyFlags(&cfg, f)

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		level = zerolog.InfoLevel
	}
	if f.verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	if err := cfg.Validate(); err != nil {
		fatal("%v", err)
	}

	w, err := watcher.New(cfg)
	if err != nil {
		fatal("initialization failed: %v", err)
	}
	if err := w.Init(); err != nil {
		fatal("initialization failed: %v", err)
	}
	defer w.Close()

	// Handle Ctrl+C
	sig := make(chan os.Signal, 1)
	registerSignals(sig)
	go func() {
		<-sig
		log.Info().Msg("interrupt received, stopping after current pass")
		w.Stop()
	}()

	log.Info().
		Int("targets", len(cfg.Targets)).
		Str("fetcher", string(cfg.Fetcher)).
		Dur("interval", cfg.Interval).
		Msg("examwatch started")

	if err := w.Run(); err != nil {
		fatal("watch error: %v", err)
	}

	stats := w.GetStats()
	log.Info().
		Int("passes", stats.Passes).
		Int("errors", stats.PagesErrored).
		Int("links_observed", stats.LinksObserved).
		Msg("examwatch finished")
}

// applyFlags layers CLI options over the loaded configuration.
func applyFlags(cfg *config.Config, f *flags) {
	if f.url != "" {
		url := f.url
		if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
			url = "https://" + url
		}
		cfg.Targets = append(cfg.Targets, config.Target{URL: url})
	}
	if f.fetcher != "" {
		cfg.Fetcher = config.FetcherMode(f.fetcher)
	}
	if f.interval > 0 {
		cfg.Interval = f.interval
	}
	if f.once {
		cfg.Interval = 0
	}
	if f.output != "" {
		cfg.OutputDir = f.output
	}
	// Browser toggles only apply when given explicitly, so the flag
	// defaults never override a config-file value.
	f.fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "headless":
			cfg.Browser.Headless = f.headless
		case "stealth":
			cfg.Browser.Stealth = f.stealth
		}
	})
}

func parseFlags() *flags {
	return parseArgs(os.Args[1:])
}

func parseArgs(args []string) *flags {
	f := &flags{fs: flag.NewFlagSet("examwatch", flag.ExitOnError)}

	f.fs.StringVar(&f.url, "url", "", "single target URL to watch (alternative to -config)")
	f.fs.StringVar(&f.configFile, "config", "", "path to YAML configuration file")
	f.fs.StringVar(&f.fetcher, "fetcher", "", "fetcher mode: browser, http, auto")
	f.fs.DurationVar(&f.interval, "interval", 0, "time between passes (e.g. 5m)")
	f.fs.BoolVar(&f.once, "once", false, "run a single pass and exit")
	f.fs.StringVar(&f.output, "output", "", "directory for snapshot files")
	f.fs.BoolVar(&f.headless, "headless", true, "run the browser headless")
	f.fs.BoolVar(&f.stealth, "stealth", false, "enable anti-automation-detection browser flags")
	f.fs.BoolVar(&f.verbose, "verbose", false, "enable debug logging")
	f.fs.BoolVar(&f.showVersion, "version", false, "print version and exit")

	f.fs.Usage = func() { printUsage(f.fs) }
	_ = f.fs.Parse(args)
	return f
}

func printUsage(fs *flag.FlagSet) {
	fmt.Fprintf(os.Stderr, `examwatch v%s - exam-registration page monitor

Usage:
  examwatch -url goethe.de/anmeldung -once
  examwatch -config examwatch.yaml -interval 10m

Options:
`, version)
	fs.PrintDefaults()
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}
