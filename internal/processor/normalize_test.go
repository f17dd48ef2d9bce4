package processor

import (
	"strings"
	"testing"
)

func newTestNormalizer(t *testing.T, ov Overrides) *Normalizer {
	t.Helper()
	r, err := NewRegistry(ov)
	if err != nil {
		t.Fatalf("NewRegistry() failed: %v", err)
	}
	return NewNormalizer(r)
}

func TestNormalizeStripsSessionIDs(t *testing.T) {
	n := newTestNormalizer(t, Overrides{})

	in := "Cookie: PHPSESSID=abc123; path=/; lang=de"
	got := n.Normalize(in, ContentPlain)

	if strings.Contains(got, "PHPSESSID=abc123;") {
		t.Errorf("session id survived normalization: %q", got)
	}
	if strings.Contains(got, "abc123") {
		t.Errorf("session token survived normalization: %q", got)
	}
}

func TestNormalizeStripsTrackingParams(t *testing.T) {
	n := newTestNormalizer(t, Overrides{})

	cases := []struct {
		name string
		in   string
		gone string
	}{
		{"google analytics", "page?_ga=GA1.2.123; rest", "_ga=GA1.2.123;"},
		{"utm", "page?__utm_source=mail& next", "__utm_source=mail&"},
		{"iso date", "updated 2024-01-15 slots", "2024-01-15"},
		{"german date", "Termin 15.01.2024 frei", "15.01.2024"},
		{"clock time", "um 14:30 Uhr", "14:30"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := n.Normalize(c.in, ContentPlain)
			if strings.Contains(got, c.gone) {
				t.Errorf("Normalize(%q) = %q, still contains %q", c.in, got, c.gone)
			}
		})
	}
}

func TestNormalizeHTML(t *testing.T) {
	n := newTestNormalizer(t, Overrides{NoisePatterns: []string{}})

	in := "  <div>a\t\t b</div>\n\n\n\n<div>c</div>  "
	got := n.Normalize(in, ContentHTML)
	want := "<div>a b</div>\n\n<div>c</div>"

	if got != want {
		t.Errorf("Normalize(html) = %q, want %q", got, want)
	}
}

func TestNormalizeHTMLKeepsSingleNewlines(t *testing.T) {
	n := newTestNormalizer(t, Overrides{NoisePatterns: []string{}})

	in := "line1\nline2"
	if got := n.Normalize(in, ContentHTML); got != in {
		t.Errorf("Normalize(html) = %q, newline structure should be preserved", got)
	}
}

func TestNormalizeBodyText(t *testing.T) {
	n := newTestNormalizer(t, Overrides{NoisePatterns: []string{}})

	in := "  Anmeldung   offen  \n\n\t\n  B2   Prüfung \nletzte Zeile"
	got := n.Normalize(in, ContentBodyText)
	want := "Anmeldung offen\nB2 Prüfung\nletzte Zeile"

	if got != want {
		t.Errorf("Normalize(body_text) = %q, want %q", got, want)
	}
}

func TestNormalizeBodyTextIsIdempotent(t *testing.T) {
	n := newTestNormalizer(t, Overrides{NoisePatterns: []string{}})

	inputs := []string{
		"  a   b \n\n c ",
		"Prüfungstermine\n\tB2: frei\n\n\nC1: ausgebucht",
		"",
		"single line",
	}

	for _, in := range inputs {
		once := n.Normalize(in, ContentBodyText)
		twice := n.Normalize(once, ContentBodyText)
		if once != twice {
			t.Errorf("body_text normalization is not a fixed point: %q -> %q -> %q", in, once, twice)
		}
	}
}

func TestNormalizePlainCollapsesAllWhitespace(t *testing.T) {
	n := newTestNormalizer(t, Overrides{NoisePatterns: []string{}})

	got := n.Normalize("  Goethe \n Institut\t Berlin ", ContentPlain)
	if got != "Goethe Institut Berlin" {
		t.Errorf("Normalize(plain) = %q", got)
	}

	// Unknown content types get the plain treatment.
	got = n.Normalize("  a \n b ", ContentType("title"))
	if got != "a b" {
		t.Errorf("Normalize(unknown type) = %q, want plain-style collapse", got)
	}
}

func TestNormalizePatternOrderIsApplied(t *testing.T) {
	// Each pattern sees the output of the previous one, so reordering
	// the list can change the result. The canonical order is pinned.
	in := "abc"

	first := newTestNormalizer(t, Overrides{NoisePatterns: []string{`ab`, `bc`}})
	if got := first.Normalize(in, ContentPlain); got != "c" {
		t.Errorf("order [ab bc]: got %q, want %q", got, "c")
	}

	second := newTestNormalizer(t, Overrides{NoisePatterns: []string{`bc`, `ab`}})
	if got := second.Normalize(in, ContentPlain); got != "a" {
		t.Errorf("order [bc ab]: got %q, want %q", got, "a")
	}
}
