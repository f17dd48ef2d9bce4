package page

import (
	"encoding/json"
	"time"
)

// Keys of the raw content map. On an unrecoverable extraction failure
// the map instead contains the single key KeyError.
const (
	KeyFullHTML      = "full_html"
	KeyTitle         = "title"
	KeyURL           = "url"
	KeyBodyText      = "body_text"
	KeyImportantText = "important_text"
	KeyFormsHTML     = "forms_html"
	KeyError         = "error"
)

// ProcessedContent is one immutable snapshot produced by a single
// processing pass. Raw and Structured are populated from the same page
// observation; if one phase fails only that phase degrades to an error
// marker, the other keeps its data.
type ProcessedContent struct {
	Raw        map[string]string `json:"raw"`
	Structured Structured        `json:"structured"`
	Timestamp  time.Time         `json:"timestamp"`
}

// Structured holds the typed element summaries of one page. Error is
// set only when the whole phase failed; the per-section fields are then
// zero.
type Structured struct {
	Forms   []FormInfo   `json:"forms"`
	Buttons []ButtonInfo `json:"buttons"`
	Links   LinksInfo    `json:"links"`
	Error   string       `json:"error,omitempty"`
}

// MarshalJSON collapses a failed phase to the single-key error mapping
// consumers check for.
func (s Structured) MarshalJSON() ([]byte, error) {
	if s.Error != "" {
		return json.Marshal(map[string]string{KeyError: s.Error})
	}
	type plain Structured
	return json.Marshal(plain(s))
}

// FormInfo summarizes one form element. On a per-element extraction
// failure only Index and Error are set.
type FormInfo struct {
	Index        int    `json:"index"`
	Action       string `json:"action"`
	Method       string `json:"method"`
	ID           string `json:"id"`
	Class        string `json:"class"`
	InputsCount  int    `json:"inputs_count"`
	ButtonsCount int    `json:"buttons_count"`
	IsVisible    bool   `json:"is_visible"`
	TextContent  string `json:"text_content"`
	Error        string `json:"error,omitempty"`
}

// Failed reports whether this entry is a per-element error marker.
func (f FormInfo) Failed() bool { return f.Error != "" }

// ButtonInfo summarizes one button or submit-input element.
type ButtonInfo struct {
	Index     int    `json:"index"`
	Tag       string `json:"tag"`
	Type      string `json:"type"`
	Text      string `json:"text"`
	ID        string `json:"id"`
	Class     string `json:"class"`
	IsVisible bool   `json:"is_visible"`
	IsEnabled bool   `json:"is_enabled"`
	Error     string `json:"error,omitempty"`
}

func (b ButtonInfo) Failed() bool { return b.Error != "" }

// LinkInfo is the full per-anchor record kept in LinksInfo.AllLinks.
type LinkInfo struct {
	Index          int    `json:"index"`
	Href           string `json:"href"`
	Text           string `json:"text"`
	Title          string `json:"title"`
	Target         string `json:"target"`
	IsExternal     bool   `json:"is_external"`
	IsRegistration bool   `json:"is_registration"`
	IsVisible      bool   `json:"is_visible"`
	Error          string `json:"error,omitempty"`
}

func (l LinkInfo) Failed() bool { return l.Error != "" }

// RegistrationLink is the abbreviated record for anchors matching the
// registration vocabulary. Every entry also appears in AllLinks with
// IsRegistration set.
type RegistrationLink struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
	Href  string `json:"href"`
	Title string `json:"title"`
}

// LinksInfo aggregates all anchors of one page.
// Invariants: WithHref <= TotalCount and ExternalLinks <= WithHref.
// Error is set only when anchors could not be enumerated at all.
type LinksInfo struct {
	TotalCount        int                `json:"total_count"`
	WithHref          int                `json:"with_href"`
	ExternalLinks     int                `json:"external_links"`
	RegistrationLinks []RegistrationLink `json:"registration_links"`
	AllLinks          []LinkInfo         `json:"all_links"`
	Error             string             `json:"error,omitempty"`
}

// MarshalJSON collapses a failed links sub-extraction to the
// single-key error mapping.
func (l LinksInfo) MarshalJSON() ([]byte, error) {
	if l.Error != "" {
		return json.Marshal(map[string]string{KeyError: l.Error})
	}
	type plain LinksInfo
	return json.Marshal(plain(l))
}

// Fallible is implemented by per-element records that may carry an
// error marker instead of data.
type Fallible interface{ Failed() bool }

// Partition splits element records into successes and error markers,
// preserving order within each group.
func Partition[T Fallible](items []T) (ok, failed []T) {
	for _, it := range items {
		if it.Failed() {
			failed = append(failed, it)
		} else {
			ok = append(ok, it)
		}
	}
	return ok, failed
}
