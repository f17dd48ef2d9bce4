package processor

import (
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
)

// ContentType selects the whitespace rules applied after noise removal.
type ContentType string

const (
	// ContentHTML keeps newline structure: runs of spaces and tabs
	// collapse to one space, three or more newlines collapse to two.
	ContentHTML ContentType = "html"

	// ContentBodyText cleans line by line and drops lines that end up
	// empty, preserving line order.
	ContentBodyText ContentType = "body_text"

	// ContentPlain collapses all whitespace to single spaces. Used for
	// titles and URLs; any unknown content type gets this treatment.
	ContentPlain ContentType = "plain"
)

var (
	reHorizontalWS = regexp.MustCompile(`[ \t]+`)
	reExtraBlank   = regexp.MustCompile(`\n\s*\n\s*\n+`)
	reAnyWS        = regexp.MustCompile(`\s+`)
)

// Normalizer strips noise patterns and re-normalizes whitespace.
type Normalizer struct {
	registry *Registry
}

// NewNormalizer returns a normalizer backed by the given registry.
func NewNormalizer(r *Registry) *Normalizer {
	return &Normalizer{registry: r}
}

// Normalize removes every noise-pattern match from text, then applies
// the whitespace rules for the content type. Patterns run in registry
// order: each one sees the output of the previous, so a reordered
// pattern list can change the result.
//
// Normalization is never fatal: if anything goes wrong the original
// text is returned unchanged and a warning is logged.
func (n *Normalizer) Normalize(text string, contentType ContentType) (out string) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn().Interface("panic", r).Msg("text normalization failed, keeping original")
			out = text
		}
	}()

	filtered := text
	for _, re := range n.registry.Noise {
		filtered = re.ReplaceAllString(filtered, "")
	}

	switch contentType {
	case ContentHTML:
		filtered = reHorizontalWS.ReplaceAllString(filtered, " ")
		filtered = reExtraBlank.ReplaceAllString(filtered, "\n\n")
		filtered = strings.TrimSpace(filtered)

	case ContentBodyText:
		lines := strings.Split(filtered, "\n")
		cleaned := make([]string, 0, len(lines))
		for _, line := range lines {
			line = strings.TrimSpace(reAnyWS.ReplaceAllString(line, " "))
			if line != "" {
				cleaned = append(cleaned, line)
			}
		}
		filtered = strings.Join(cleaned, "\n")

	default:
		filtered = strings.TrimSpace(reAnyWS.ReplaceAllString(filtered, " "))
	}

	return filtered
}
