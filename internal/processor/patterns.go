package processor

import (
	"fmt"
	"regexp"
)

// Options tunes the extraction and normalization behavior.
type Options struct {
	MaxElementsPerSelector int  `yaml:"max_elements_per_selector"`
	MaxTextLength          int  `yaml:"max_text_length"`
	MaxMatchesPerPattern   int  `yaml:"max_matches_per_pattern"`
	ExtractMetadata        bool `yaml:"extract_metadata"`
	GenerateHashes         bool `yaml:"generate_hashes"`
	NoiseFiltering         bool `yaml:"noise_filtering"`
}

// Overrides replaces individual top-level sections of the default
// pattern configuration. A nil/absent field keeps the default; a
// present field replaces the whole section, it is not deep-merged.
type Overrides struct {
	NoisePatterns    []string `yaml:"noise_patterns"`
	DomainVocabulary []string `yaml:"domain_vocabulary"`
	Selectors        []string `yaml:"selectors"`
	Options          *Options `yaml:"processing_options"`
}

// Registry holds the compiled pattern configuration of a processor.
// Patterns are compiled once at construction and shared read-only
// across all processing passes.
type Registry struct {
	// Noise matches volatile, non-semantic substrings stripped before
	// comparison: timestamps, session tokens, tracking parameters.
	// Applied in order; each pattern sees the output of the previous
	// one, so the order is part of the contract.
	Noise []*regexp.Regexp

	// Vocabulary holds registration/availability/exam terminology in
	// German and English. It is exposed for downstream semantic
	// matching and not applied by the processor itself.
	Vocabulary []*regexp.Regexp

	// Selectors name interactive or informative page regions.
	Selectors []string

	Options Options
}

// defaultNoisePatterns strip date/time stamps, analytics and tracking
// query parameters, session cookies, and cache busters.
var defaultNoisePatterns = []string{
	// Date/time
	`\d{4}-\d{2}-\d{2}`, `\d{2}/\d{2}/\d{4}`, `\d{2}\.\d{2}\.\d{4}`,
	`\d{2}:\d{2}:\d{2}`, `\d{2}:\d{2}`,
	`timestamp.*?\d+`, `last.*?updated.*?\d+`,

	// Analytics and tracking
	`_ga=.*?[;&]`, `_gid=.*?[;&]`, `__utm.*?=.*?[;&]`,
	`fbclid=.*?[;&]`, `gclid=.*?[;&]`,

	// Session management
	`sessionId.*?=.*?[;&]`, `PHPSESSID.*?=.*?[;&]`,
	`JSESSIONID.*?=.*?[;&]`, `ASP\.NET_SessionId.*?=.*?[;&]`,

	// Security tokens and cache busters
	`csrftoken.*?=.*?[;&]`, `_token.*?=.*?[;&]`,
	`cache_\w+`, `v=\d{10,}`, `_=\d{10,}`, `cb=\d+`,
}

// defaultVocabulary covers the German exam-registration domain.
var defaultVocabulary = []string{
	// Registration (German / English)
	`anmeldung`, `registrierung`, `einschreibung`, `buchung`,
	`registration`, `enrollment`, `booking`, `signup`,
	// Availability
	`verfügbar`, `frei`, `buchbar`, `plätze?\s+frei`,
	`available`, `open`, `spots?\s+available`,
	// Unavailable
	`ausgebucht`, `voll`, `fully booked`, `sold out`,
	// Exam terminology and levels
	`prüfung`, `prüfungsplätze`, `exam`, `test`,
	`a1|a2|b1|b2|c1|c2`,
	// Institutions and language
	`goethe`, `ezplus`, `académie allemande`, `institut`,
	`deutsch`, `german`, `allemand`, `deutschprüfung`,
}

// defaultSelectors name the regions worth watching on exam sites.
var defaultSelectors = []string{
	// Forms and buttons
	`form`, `button[type="submit"]`, `input[type="submit"]`,
	`button[class*="register"]`, `button[class*="anmeld"]`,
	// Registration sections
	`.registration`, `.anmeldung`, `.booking`, `.buchung`,
	// Availability indicators
	`.available`, `.verfügbar`, `.frei`, `.unavailable`, `.ausgebucht`,
	// Messages
	`.alert`, `.warning`, `.info`, `.success`, `.error`, `.message`,
	// Structure
	`h1, h2, h3`, `main`, `.content`,
	// Exam specifics
	`.exam-date`, `.prüfungstermin`, `.exam-level`, `.exam-location`,
	// Dynamic class/id probes
	`[class*="register"]`, `[id*="register"]`, `[class*="anmeld"]`,
	`[class*="exam"]`, `[class*="available"]`, `[class*="verfüg"]`,
}

// DefaultOptions returns the built-in processing limits and toggles.
func DefaultOptions() Options {
	return Options{
		MaxElementsPerSelector: 10,
		MaxTextLength:          500,
		MaxMatchesPerPattern:   10,
		ExtractMetadata:        true,
		GenerateHashes:         true,
		NoiseFiltering:         true,
	}
}

// NewRegistry merges the overrides over the built-in defaults and
// compiles every pattern. A malformed pattern fails here, not at first
// use.
func NewRegistry(ov Overrides) (*Registry, error) {
	noise := defaultNoisePatterns
	if ov.NoisePatterns != nil {
		noise = ov.NoisePatterns
	}
	vocab := defaultVocabulary
	if ov.DomainVocabulary != nil {
		vocab = ov.DomainVocabulary
	}
	selectors := defaultSelectors
	if ov.Selectors != nil {
		selectors = ov.Selectors
	}
	opts := DefaultOptions()
	if ov.Options != nil {
		opts = *ov.Options
	}

	r := &Registry{Selectors: selectors, Options: opts}

	var err error
	if r.Noise, err = compileAll("noise", noise); err != nil {
		return nil, err
	}
	if r.Vocabulary, err = compileAll("vocabulary", vocab); err != nil {
		return nil, err
	}
	return r, nil
}

// compileAll compiles patterns case-insensitively, preserving order.
func compileAll(kind string, patterns []string) ([]*regexp.Regexp, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(`(?i)` + p)
		if err != nil {
			return nil, fmt.Errorf("compile %s pattern %q: %w", kind, p, err)
		}
		compiled = append(compiled, re)
	}
	return compiled, nil
}
