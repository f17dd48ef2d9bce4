package fetcher

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/examwatch/examwatch/pkg/page"
)

// StaticSource is a page.Source over a statically parsed HTML
// document. It backs the HTTP fetch path, where no live browser is
// available, and approximates visibility from markup alone.
type StaticSource struct {
	doc *goquery.Document
	url string
}

// NewStaticSource parses the markup and wraps it as a page source.
func NewStaticSource(html, url string) (*StaticSource, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}
	return &StaticSource{doc: doc, url: url}, nil
}

func (s *StaticSource) HTML() (string, error) {
	return s.doc.Html()
}

func (s *StaticSource) Title() (string, error) {
	return s.doc.Find("title").First().Text(), nil
}

func (s *StaticSource) URL() (string, error) {
	return s.url, nil
}

func (s *StaticSource) Elements(selector string) ([]page.Element, error) {
	return wrapSelections(s.doc.Find(selector)), nil
}

// staticElement wraps a single-node goquery selection.
type staticElement struct {
	sel *goquery.Selection
}

func wrapSelections(sel *goquery.Selection) []page.Element {
	els := make([]page.Element, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		els = append(els, &staticElement{sel: s})
	})
	return els
}

func (e *staticElement) Tag() (string, error) {
	return goquery.NodeName(e.sel), nil
}

func (e *staticElement) Text() (string, error) {
	return e.sel.Text(), nil
}

func (e *staticElement) Attr(name string) (string, error) {
	v, _ := e.sel.Attr(name)
	return v, nil
}

// Visible approximates rendered visibility: an element counts as
// hidden when it or an ancestor carries the hidden attribute, an
// inline display:none/visibility:hidden style, or type="hidden".
func (e *staticElement) Visible() (bool, error) {
	if t, ok := e.sel.Attr("type"); ok && strings.EqualFold(t, "hidden") {
		return false, nil
	}
	for _, s := range []*goquery.Selection{e.sel, e.sel.Parents()} {
		hidden := false
		s.EachWithBreak(func(_ int, n *goquery.Selection) bool {
			if _, ok := n.Attr("hidden"); ok {
				hidden = true
				return false
			}
			if style, ok := n.Attr("style"); ok {
				style = strings.ReplaceAll(strings.ToLower(style), " ", "")
				if strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden") {
					hidden = true
					return false
				}
			}
			return true
		})
		if hidden {
			return false, nil
		}
	}
	return true, nil
}

func (e *staticElement) Enabled() (bool, error) {
	_, disabled := e.sel.Attr("disabled")
	return !disabled, nil
}

func (e *staticElement) Elements(selector string) ([]page.Element, error) {
	return wrapSelections(e.sel.Find(selector)), nil
}
