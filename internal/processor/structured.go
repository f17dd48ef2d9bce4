package processor

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/examwatch/examwatch/pkg/page"
)

const (
	maxButtons       = 10
	maxButtonTextLen = 100
)

// registrationKeywords classify an anchor as registration-related when
// its href or text contains any of them, case-insensitively.
var registrationKeywords = []string{
	"anmeld", "register", "registration", "buchung",
	"enrollment", "signup", "einschreibung",
}

// extractStructured runs the three sub-extractions independently: a
// failure in one never aborts the others.
func (p *Processor) extractStructured(src page.Source) (st page.Structured) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("structured extraction failed")
			st = page.Structured{Error: fmt.Sprint(r)}
		}
	}()

	return page.Structured{
		Forms:   p.extractForms(src),
		Buttons: p.extractButtons(src),
		Links:   p.extractLinks(src),
	}
}

// extractForms enumerates all forms in document order. A per-form
// failure yields an {index, error} marker; failure to enumerate forms
// at all yields an empty slice.
func (p *Processor) extractForms(src page.Source) []page.FormInfo {
	forms, err := src.Elements("form")
	if err != nil {
		log.Warn().Err(err).Msg("form enumeration failed")
		return []page.FormInfo{}
	}

	infos := make([]page.FormInfo, 0, len(forms))
	for i, form := range forms {
		info, err := formInfo(i, form)
		if err != nil {
			infos = append(infos, page.FormInfo{Index: i, Error: "extraction failed: " + err.Error()})
			continue
		}
		infos = append(infos, info)
	}
	return infos
}

func formInfo(index int, form page.Element) (page.FormInfo, error) {
	action, err := form.Attr("action")
	if err != nil {
		return page.FormInfo{}, err
	}
	method, err := form.Attr("method")
	if err != nil {
		return page.FormInfo{}, err
	}
	if method == "" {
		method = "GET"
	}
	id, err := form.Attr("id")
	if err != nil {
		return page.FormInfo{}, err
	}
	class, err := form.Attr("class")
	if err != nil {
		return page.FormInfo{}, err
	}
	inputs, err := form.Elements("input")
	if err != nil {
		return page.FormInfo{}, err
	}
	buttons, err := form.Elements("button")
	if err != nil {
		return page.FormInfo{}, err
	}
	visible, err := form.Visible()
	if err != nil {
		return page.FormInfo{}, err
	}
	text, err := form.Text()
	if err != nil {
		return page.FormInfo{}, err
	}

	return page.FormInfo{
		Index:        index,
		Action:       action,
		Method:       method,
		ID:           id,
		Class:        class,
		InputsCount:  len(inputs),
		ButtonsCount: len(buttons),
		IsVisible:    visible,
		TextContent:  strings.TrimSpace(text),
	}, nil
}

// extractButtons enumerates button elements followed by submit-typed
// inputs, keeping at most the first 10 of the combined list. Buttons
// always precede submit-inputs at the truncation boundary.
func (p *Processor) extractButtons(src page.Source) []page.ButtonInfo {
	buttons, err := src.Elements("button")
	if err != nil {
		log.Warn().Err(err).Msg("button enumeration failed")
		return []page.ButtonInfo{}
	}
	submits, err := src.Elements(`input[type="submit"]`)
	if err != nil {
		log.Warn().Err(err).Msg("submit-input enumeration failed")
		return []page.ButtonInfo{}
	}

	combined := append(append([]page.Element{}, buttons...), submits...)
	if len(combined) > maxButtons {
		combined = combined[:maxButtons]
	}

	infos := make([]page.ButtonInfo, 0, len(combined))
	for i, el := range combined {
		info, err := buttonInfo(i, el)
		if err != nil {
			infos = append(infos, page.ButtonInfo{Index: i, Error: "extraction failed: " + err.Error()})
			continue
		}
		infos = append(infos, info)
	}
	return infos
}

func buttonInfo(index int, el page.Element) (page.ButtonInfo, error) {
	tag, err := el.Tag()
	if err != nil {
		return page.ButtonInfo{}, err
	}
	typ, err := el.Attr("type")
	if err != nil {
		return page.ButtonInfo{}, err
	}
	text, err := el.Text()
	if err != nil {
		return page.ButtonInfo{}, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		if text, err = el.Attr("value"); err != nil {
			return page.ButtonInfo{}, err
		}
	}
	id, err := el.Attr("id")
	if err != nil {
		return page.ButtonInfo{}, err
	}
	class, err := el.Attr("class")
	if err != nil {
		return page.ButtonInfo{}, err
	}
	visible, err := el.Visible()
	if err != nil {
		return page.ButtonInfo{}, err
	}
	enabled, err := el.Enabled()
	if err != nil {
		return page.ButtonInfo{}, err
	}

	return page.ButtonInfo{
		Index:     index,
		Tag:       tag,
		Type:      typ,
		Text:      truncateRunes(text, maxButtonTextLen),
		ID:        id,
		Class:     class,
		IsVisible: visible,
		IsEnabled: enabled,
	}, nil
}

// extractLinks enumerates all anchors and maintains running totals and
// the two derived views. A per-link failure appends an {index, error}
// marker to AllLinks without touching the totals; failure to enumerate
// anchors (or read the current URL) degrades the whole section to an
// error marker.
func (p *Processor) extractLinks(src page.Source) page.LinksInfo {
	currentURL, err := src.URL()
	if err != nil {
		return page.LinksInfo{Error: "links extraction failed: " + err.Error()}
	}
	anchors, err := src.Elements("a")
	if err != nil {
		return page.LinksInfo{Error: "links extraction failed: " + err.Error()}
	}

	info := page.LinksInfo{
		TotalCount:        len(anchors),
		RegistrationLinks: []page.RegistrationLink{},
		AllLinks:          make([]page.LinkInfo, 0, len(anchors)),
	}

	for i, a := range anchors {
		link, err := linkInfo(i, a, currentURL)
		if err != nil {
			info.AllLinks = append(info.AllLinks, page.LinkInfo{Index: i, Error: "extraction failed: " + err.Error()})
			continue
		}

		if link.Href != "" {
			info.WithHref++
			if link.IsExternal {
				info.ExternalLinks++
			}
			if link.IsRegistration {
				info.RegistrationLinks = append(info.RegistrationLinks, page.RegistrationLink{
					Index: link.Index,
					Text:  link.Text,
					Href:  link.Href,
					Title: link.Title,
				})
			}
		}

		info.AllLinks = append(info.AllLinks, link)
	}

	return info
}

func linkInfo(index int, a page.Element, currentURL string) (page.LinkInfo, error) {
	href, err := a.Attr("href")
	if err != nil {
		return page.LinkInfo{}, err
	}
	text, err := a.Text()
	if err != nil {
		return page.LinkInfo{}, err
	}
	title, err := a.Attr("title")
	if err != nil {
		return page.LinkInfo{}, err
	}
	target, err := a.Attr("target")
	if err != nil {
		return page.LinkInfo{}, err
	}
	visible, err := a.Visible()
	if err != nil {
		return page.LinkInfo{}, err
	}

	link := page.LinkInfo{
		Index:     index,
		Href:      href,
		Text:      strings.TrimSpace(text),
		Title:     title,
		Target:    target,
		IsVisible: visible,
	}
	if href != "" {
		link.IsExternal = strings.HasPrefix(href, "http") && !strings.Contains(href, currentURL)
		link.IsRegistration = isRegistrationLink(link.Text, href)
	}
	return link, nil
}

// isRegistrationLink reports whether the anchor text or href contains
// any registration keyword.
func isRegistrationLink(text, href string) bool {
	text = strings.ToLower(text)
	href = strings.ToLower(href)
	for _, kw := range registrationKeywords {
		if strings.Contains(text, kw) || strings.Contains(href, kw) {
			return true
		}
	}
	return false
}

// truncateRunes caps s at n runes, matching how the snapshot format
// counts characters rather than bytes.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
