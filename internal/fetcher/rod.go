package fetcher

import (
	"github.com/go-rod/rod"

	"github.com/examwatch/examwatch/pkg/page"
)

// rodSource adapts a live Rod page to the page.Source contract. Every
// call goes through the DevTools protocol and can fail if the page
// navigates away or the browser dies.
type rodSource struct {
	page *rod.Page
}

func (s *rodSource) HTML() (string, error) {
	return s.page.HTML()
}

func (s *rodSource) Title() (string, error) {
	info, err := s.page.Info()
	if err != nil {
		return "", err
	}
	return info.Title, nil
}

func (s *rodSource) URL() (string, error) {
	info, err := s.page.Info()
	if err != nil {
		return "", err
	}
	return info.URL, nil
}

func (s *rodSource) Elements(selector string) ([]page.Element, error) {
	els, err := s.page.Elements(selector)
	if err != nil {
		return nil, err
	}
	wrapped := make([]page.Element, 0, len(els))
	for _, el := range els {
		wrapped = append(wrapped, &rodElement{el: el})
	}
	return wrapped, nil
}

// Close closes the underlying browser tab.
func (s *rodSource) Close() error {
	return s.page.Close()
}

type rodElement struct {
	el *rod.Element
}

func (e *rodElement) Tag() (string, error) {
	node, err := e.el.Describe(0, false)
	if err != nil {
		return "", err
	}
	return node.LocalName, nil
}

func (e *rodElement) Text() (string, error) {
	return e.el.Text()
}

func (e *rodElement) Attr(name string) (string, error) {
	v, err := e.el.Attribute(name)
	if err != nil {
		return "", err
	}
	if v == nil {
		return "", nil
	}
	return *v, nil
}

func (e *rodElement) Visible() (bool, error) {
	return e.el.Visible()
}

func (e *rodElement) Enabled() (bool, error) {
	disabled, err := e.el.Property("disabled")
	if err != nil {
		return false, err
	}
	return !disabled.Bool(), nil
}

func (e *rodElement) Elements(selector string) ([]page.Element, error) {
	els, err := e.el.Elements(selector)
	if err != nil {
		return nil, err
	}
	wrapped := make([]page.Element, 0, len(els))
	for _, el := range els {
		wrapped = append(wrapped, &rodElement{el: el})
	}
	return wrapped, nil
}
