package processor

import (
	"errors"
	"testing"

	"github.com/examwatch/examwatch/pkg/page"
)

// fakeElement is a scriptable page.Element for failure-path tests.
type fakeElement struct {
	tag      string
	text     string
	attrs    map[string]string
	visible  bool
	enabled  bool
	children map[string][]page.Element
	err      error // when set, every method fails
}

func (e *fakeElement) Tag() (string, error) {
	if e.err != nil {
		return "", e.err
	}
	return e.tag, nil
}

func (e *fakeElement) Text() (string, error) {
	if e.err != nil {
		return "", e.err
	}
	return e.text, nil
}

func (e *fakeElement) Attr(name string) (string, error) {
	if e.err != nil {
		return "", e.err
	}
	return e.attrs[name], nil
}

func (e *fakeElement) Visible() (bool, error) {
	if e.err != nil {
		return false, e.err
	}
	return e.visible, nil
}

func (e *fakeElement) Enabled() (bool, error) {
	if e.err != nil {
		return false, e.err
	}
	return e.enabled, nil
}

func (e *fakeElement) Elements(selector string) ([]page.Element, error) {
	if e.err != nil {
		return nil, e.err
	}
	return e.children[selector], nil
}

// fakeSource is a scriptable page.Source.
type fakeSource struct {
	html     string
	title    string
	url      string
	elements map[string][]page.Element

	htmlErr  error
	titleErr error
	urlErr   error
	elemErrs map[string]error
}

func (s *fakeSource) HTML() (string, error) {
	return s.html, s.htmlErr
}

func (s *fakeSource) Title() (string, error) {
	return s.title, s.titleErr
}

func (s *fakeSource) URL() (string, error) {
	return s.url, s.urlErr
}

func (s *fakeSource) Elements(selector string) ([]page.Element, error) {
	if err := s.elemErrs[selector]; err != nil {
		return nil, err
	}
	return s.elements[selector], nil
}

// panicSource simulates a defective source implementation.
type panicSource struct{}

func (panicSource) HTML() (string, error)                   { panic("broken source") }
func (panicSource) Title() (string, error)                  { panic("broken source") }
func (panicSource) URL() (string, error)                    { panic("broken source") }
func (panicSource) Elements(string) ([]page.Element, error) { panic("broken source") }

func newTestProcessor(t *testing.T) *Processor {
	t.Helper()
	p, err := New(Overrides{})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return p
}

func TestProcessNeverPanics(t *testing.T) {
	p := newTestProcessor(t)

	failing := errors.New("page navigated away")
	sources := map[string]page.Source{
		"all calls fail": &fakeSource{
			htmlErr:  failing,
			titleErr: failing,
			urlErr:   failing,
			elemErrs: map[string]error{
				"form": failing, "button": failing,
				`input[type="submit"]`: failing, "a": failing, "body": failing,
			},
		},
		"panicking source": panicSource{},
		"empty source":     &fakeSource{},
	}

	for name, src := range sources {
		t.Run(name, func(t *testing.T) {
			got := p.Process(src)
			if got.Timestamp.IsZero() {
				t.Error("snapshot timestamp not set")
			}
			if got.Raw == nil {
				t.Error("raw section is nil")
			}
		})
	}
}

func TestProcessPanickingSourceDegradesBothPhases(t *testing.T) {
	p := newTestProcessor(t)

	got := p.Process(panicSource{})

	if _, ok := got.Raw[page.KeyError]; !ok {
		t.Errorf("raw = %v, want error marker", got.Raw)
	}
	if len(got.Raw) != 1 {
		t.Errorf("raw has %d keys, want only the error key", len(got.Raw))
	}
	// The panic fires inside each phase, so each recovers on its own.
	if got.Structured.Error == "" {
		t.Error("structured error marker not set")
	}
}

func TestProcessPhaseIsolation(t *testing.T) {
	// Markup getter fails but element queries work: raw degrades to the
	// error map while structured still carries full data.
	p := newTestProcessor(t)

	form := &fakeElement{
		attrs:   map[string]string{"action": "/register", "method": "POST"},
		visible: true,
		text:    "Submit Registration",
	}
	src := &fakeSource{
		htmlErr: errors.New("timeout reading page source"),
		url:     "https://www.goethe.de/anmeldung",
		elements: map[string][]page.Element{
			"form": {form},
		},
	}

	got := p.Process(src)

	if msg, ok := got.Raw[page.KeyError]; !ok || msg == "" {
		t.Fatalf("raw = %v, want error marker", got.Raw)
	}
	if got.Structured.Error != "" {
		t.Fatalf("structured degraded unexpectedly: %v", got.Structured.Error)
	}
	if len(got.Structured.Forms) != 1 {
		t.Fatalf("forms = %v, want one entry", got.Structured.Forms)
	}
	if got.Structured.Forms[0].Action != "/register" {
		t.Errorf("form action = %q, want /register", got.Structured.Forms[0].Action)
	}
}

func TestProcessSnapshotsAreIndependent(t *testing.T) {
	p := newTestProcessor(t)

	src := &fakeSource{html: "<html><body>ok</body></html>", url: "https://example.test"}

	first := p.Process(src)
	second := p.Process(src)

	first.Raw[page.KeyURL] = "mutated"
	if second.Raw[page.KeyURL] == "mutated" {
		t.Error("snapshots share the raw map")
	}
}

func TestNewRejectsMalformedPattern(t *testing.T) {
	_, err := New(Overrides{NoisePatterns: []string{`valid`, `([unclosed`}})
	if err == nil {
		t.Fatal("New() accepted a malformed noise pattern")
	}

	_, err = New(Overrides{DomainVocabulary: []string{`(?P<broken`}})
	if err == nil {
		t.Fatal("New() accepted a malformed vocabulary pattern")
	}
}
