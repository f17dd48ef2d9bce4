package page

import (
	"encoding/json"
	"testing"
	"time"
)

func TestStructuredMarshalErrorCollapse(t *testing.T) {
	data, err := json.Marshal(Structured{Error: "phase failed"})
	if err != nil {
		t.Fatalf("Marshal() failed: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() failed: %v", err)
	}
	if len(decoded) != 1 || decoded["error"] != "phase failed" {
		t.Errorf("marshaled = %s, want single-key error mapping", data)
	}
}

func TestStructuredMarshalSuccess(t *testing.T) {
	st := Structured{
		Forms:   []FormInfo{},
		Buttons: []ButtonInfo{},
		Links: LinksInfo{
			RegistrationLinks: []RegistrationLink{},
			AllLinks:          []LinkInfo{},
		},
	}

	data, err := json.Marshal(st)
	if err != nil {
		t.Fatalf("Marshal() failed: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() failed: %v", err)
	}
	for _, key := range []string{"forms", "buttons", "links"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("marshaled output missing %q: %s", key, data)
		}
	}
	if _, ok := decoded["error"]; ok {
		t.Errorf("successful phase must not carry an error key: %s", data)
	}
}

func TestLinksInfoMarshalErrorCollapse(t *testing.T) {
	data, err := json.Marshal(LinksInfo{Error: "cannot enumerate anchors"})
	if err != nil {
		t.Fatalf("Marshal() failed: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() failed: %v", err)
	}
	if len(decoded) != 1 || decoded["error"] != "cannot enumerate anchors" {
		t.Errorf("marshaled = %s, want single-key error mapping", data)
	}
}

func TestProcessedContentMarshal(t *testing.T) {
	pc := ProcessedContent{
		Raw:       map[string]string{KeyTitle: "Anmeldung", KeyURL: "https://exam.test"},
		Timestamp: time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC),
		Structured: Structured{
			Forms:   []FormInfo{{Index: 0, Action: "/register", Method: "POST"}},
			Buttons: []ButtonInfo{},
			Links: LinksInfo{
				RegistrationLinks: []RegistrationLink{},
				AllLinks:          []LinkInfo{},
			},
		},
	}

	data, err := json.Marshal(pc)
	if err != nil {
		t.Fatalf("Marshal() failed: %v", err)
	}

	var decoded struct {
		Raw        map[string]string `json:"raw"`
		Structured struct {
			Forms []FormInfo `json:"forms"`
		} `json:"structured"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() failed: %v", err)
	}
	if decoded.Raw[KeyTitle] != "Anmeldung" {
		t.Errorf("raw title = %q", decoded.Raw[KeyTitle])
	}
	if len(decoded.Structured.Forms) != 1 || decoded.Structured.Forms[0].Action != "/register" {
		t.Errorf("forms = %+v", decoded.Structured.Forms)
	}
}

func TestPartition(t *testing.T) {
	links := []LinkInfo{
		{Index: 0, Href: "/a"},
		{Index: 1, Error: "detached"},
		{Index: 2, Href: "/c"},
		{Index: 3, Error: "detached"},
	}

	ok, failed := Partition(links)

	if len(ok) != 2 || ok[0].Index != 0 || ok[1].Index != 2 {
		t.Errorf("ok = %+v", ok)
	}
	if len(failed) != 2 || failed[0].Index != 1 || failed[1].Index != 3 {
		t.Errorf("failed = %+v", failed)
	}
}

func TestPartitionEmpty(t *testing.T) {
	ok, failed := Partition([]FormInfo{})
	if len(ok) != 0 || len(failed) != 0 {
		t.Errorf("Partition(empty) = %v, %v", ok, failed)
	}
}
