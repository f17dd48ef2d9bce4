package processor

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/examwatch/examwatch/pkg/page"
)

// contentTypes maps each raw key to its normalization rule set.
var contentTypes = map[string]ContentType{
	page.KeyFullHTML:      ContentHTML,
	page.KeyTitle:         ContentPlain,
	page.KeyURL:           ContentPlain,
	page.KeyBodyText:      ContentBodyText,
	page.KeyImportantText: ContentBodyText,
	page.KeyFormsHTML:     ContentHTML,
}

// extractRaw collects the page-level raw artifacts. The markup is
// required: if it cannot be read the whole phase degrades to the
// single-key error map. Title, URL, and body text degrade to empty
// strings individually.
func (p *Processor) extractRaw(src page.Source) (raw map[string]string) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("raw extraction failed")
			raw = map[string]string{page.KeyError: fmt.Sprint(r)}
		}
	}()

	html, err := src.HTML()
	if err != nil {
		log.Error().Err(err).Msg("reading page markup failed")
		return map[string]string{page.KeyError: err.Error()}
	}

	title, err := src.Title()
	if err != nil {
		title = ""
	}
	url, err := src.URL()
	if err != nil {
		url = ""
	}

	raw = map[string]string{
		page.KeyFullHTML: html,
		page.KeyTitle:    title,
		page.KeyURL:      url,
		page.KeyBodyText: bodyText(src),

		// Reserved extension points, intentionally empty. The keys are
		// kept so downstream consumers see a stable shape.
		page.KeyImportantText: "",
		page.KeyFormsHTML:     "",
	}

	if p.registry.Options.NoiseFiltering {
		for key, content := range raw {
			raw[key] = p.normalizer.Normalize(content, contentTypes[key])
		}
	}

	return raw
}

// bodyText returns the rendered text of the body element, or an empty
// string when the body cannot be located or read.
func bodyText(src page.Source) string {
	bodies, err := src.Elements("body")
	if err != nil || len(bodies) == 0 {
		return ""
	}
	text, err := bodies[0].Text()
	if err != nil {
		return ""
	}
	return text
}
