// Package page defines the public contract between page providers
// (browser or HTTP fetchers) and the content processor. External tools
// can import this package to supply their own page sources or consume
// processed snapshots without depending on internal packages.
package page

// Source is a read-only view of one rendered web page. Implementations
// wrap a live browser tab or a statically parsed document.
//
// Every method can fail: the underlying page may still be navigating,
// an element may have been detached, or the transport may time out.
// Callers are expected to degrade, not abort, on errors.
type Source interface {
	// HTML returns the full current markup of the page.
	HTML() (string, error)

	// Title returns the page title. An empty string is a valid title.
	Title() (string, error)

	// URL returns the current page URL. May be empty before navigation.
	URL() (string, error)

	// Elements returns all elements matching the CSS selector, in
	// document order. A missing match is an empty slice, not an error.
	Elements(selector string) ([]Element, error)
}

// Element is an opaque handle to a single element within a Source,
// valid only while the page is stable.
type Element interface {
	// Tag returns the lowercase tag name (e.g. "button", "input").
	Tag() (string, error)

	// Text returns the rendered text content of the element.
	Text() (string, error)

	// Attr returns the value of the named attribute, or an empty
	// string when the attribute is absent.
	Attr(name string) (string, error)

	// Visible reports whether the element is displayed.
	Visible() (bool, error)

	// Enabled reports whether the element accepts interaction.
	Enabled() (bool, error)

	// Elements returns descendant elements matching the CSS selector.
	Elements(selector string) ([]Element, error)
}
