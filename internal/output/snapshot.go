// Package output persists processed snapshots and renders human
// summaries of them.
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/examwatch/examwatch/pkg/page"
)

// SnapshotWriter writes one JSON file per processing pass.
type SnapshotWriter struct {
	dir string
	mu  sync.Mutex
}

// NewSnapshotWriter creates a writer rooted at dir.
func NewSnapshotWriter(dir string) *SnapshotWriter {
	return &SnapshotWriter{dir: dir}
}

var unsafeFileChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// Write persists the snapshot and returns the file path. The file name
// combines the target name, the capture time, and the pass id so
// successive passes never collide.
func (w *SnapshotWriter) Write(target, passID string, snapshot page.ProcessedContent) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return "", err
	}

	name := unsafeFileChars.ReplaceAllString(target, "_")
	name = strings.Trim(name, "_")
	if name == "" {
		name = "target"
	}
	short := passID
	if len(short) > 8 {
		short = short[:8]
	}

	filename := fmt.Sprintf("%s_%s_%s.json",
		name, snapshot.Timestamp.Format("20060102T150405"), short)
	path := filepath.Join(w.dir, filename)

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}
	return path, nil
}

// Summarize renders a short plain-text overview of one snapshot.
func Summarize(target string, snapshot page.ProcessedContent) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("  Target: %s\n", target))
	b.WriteString(fmt.Sprintf("  Captured: %s\n", snapshot.Timestamp.Format(time.RFC1123)))

	if msg, ok := snapshot.Raw[page.KeyError]; ok {
		b.WriteString(fmt.Sprintf("  Raw: ERROR %s\n", msg))
	} else {
		b.WriteString(fmt.Sprintf("  Title: %s\n", snapshot.Raw[page.KeyTitle]))
	}

	st := snapshot.Structured
	if st.Error != "" {
		b.WriteString(fmt.Sprintf("  Structured: ERROR %s\n", st.Error))
		return b.String()
	}

	okForms, failedForms := page.Partition(st.Forms)
	b.WriteString(fmt.Sprintf("  Forms: %d (%d failed)\n", len(okForms), len(failedForms)))
	b.WriteString(fmt.Sprintf("  Buttons: %d\n", len(st.Buttons)))

	links := st.Links
	if links.Error != "" {
		b.WriteString(fmt.Sprintf("  Links: ERROR %s\n", links.Error))
		return b.String()
	}
	b.WriteString(fmt.Sprintf("  Links: %d total, %d with href, %d external\n",
		links.TotalCount, links.WithHref, links.ExternalLinks))

	for _, reg := range links.RegistrationLinks {
		b.WriteString(fmt.Sprintf("      +-- registration: %s %s\n", reg.Text, reg.Href))
	}

	return b.String()
}
