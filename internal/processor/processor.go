// Package processor converts a raw rendered web page into a
// normalized, noise-filtered, structured snapshot suitable for
// change detection on exam-registration sites.
package processor

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/examwatch/examwatch/pkg/page"
)

// Processor is the content processing engine. It is stateless across
// passes apart from the read-only compiled registry, so a single
// instance can process any number of pages.
type Processor struct {
	registry   *Registry
	normalizer *Normalizer
}

// New builds a processor from the defaults merged with the given
// overrides. Malformed patterns are reported here and never later.
func New(ov Overrides) (*Processor, error) {
	registry, err := NewRegistry(ov)
	if err != nil {
		return nil, fmt.Errorf("processor config: %w", err)
	}

	log.Debug().
		Int("noise_patterns", len(registry.Noise)).
		Int("vocabulary_patterns", len(registry.Vocabulary)).
		Int("selectors", len(registry.Selectors)).
		Bool("noise_filtering", registry.Options.NoiseFiltering).
		Msg("content processor initialized")

	return &Processor{
		registry:   registry,
		normalizer: NewNormalizer(registry),
	}, nil
}

// Registry exposes the merged, compiled configuration, for consumers
// that run the domain vocabulary against processed text.
func (p *Processor) Registry() *Registry { return p.registry }

// Process runs the raw and structured extraction phases against one
// page observation and stamps the composed snapshot. It never panics:
// each phase recovers independently, and any defect escaping both
// phases degrades the whole snapshot to error markers.
func (p *Processor) Process(src page.Source) (pc page.ProcessedContent) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("page processing failed")
			msg := fmt.Sprint(r)
			pc = page.ProcessedContent{
				Raw:        map[string]string{page.KeyError: msg},
				Structured: page.Structured{Error: msg},
				Timestamp:  time.Now(),
			}
		}
	}()

	return page.ProcessedContent{
		Raw:        p.extractRaw(src),
		Structured: p.extractStructured(src),
		Timestamp:  time.Now(),
	}
}
