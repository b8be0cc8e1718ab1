package query

import (
	"net/url"
	"strings"
	"testing"
)

func TestRequestURL_ComposedParameters(t *testing.T) {
	req := Request{
		BaseURL: "https://example.org/optimade/v1",
		Filter:  `nelements=2`,
		Limit:   10,
		Offset:  20,
	}

	rawURL, err := req.URL()
	if err != nil {
		t.Fatalf("URL() error = %v", err)
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		t.Fatalf("parse built URL: %v", err)
	}

	if u.Path != "/optimade/v1/structures" {
		t.Errorf("Path = %q, want /optimade/v1/structures", u.Path)
	}

	q := u.Query()
	if q.Get("filter") != "nelements=2" {
		t.Errorf("filter = %q", q.Get("filter"))
	}
	if q.Get("page_limit") != "10" {
		t.Errorf("page_limit = %q, want 10", q.Get("page_limit"))
	}
	if q.Get("page_offset") != "20" {
		t.Errorf("page_offset = %q, want 20", q.Get("page_offset"))
	}
	if q.Get("response_format") != "json" {
		t.Errorf("response_format = %q, want json", q.Get("response_format"))
	}
	if q.Has("response_fields") {
		t.Error("response_fields should be absent when no fields are requested")
	}
}

func TestRequestURL_Fields(t *testing.T) {
	req := Request{
		BaseURL: "https://example.org/v1",
		Filter:  "nelements=1",
		Limit:   5,
		Fields:  []string{"id", "chemical_formula_descriptive"},
	}

	rawURL, err := req.URL()
	if err != nil {
		t.Fatalf("URL() error = %v", err)
	}

	u, _ := url.Parse(rawURL)
	if got := u.Query().Get("response_fields"); got != "id,chemical_formula_descriptive" {
		t.Errorf("response_fields = %q, want comma-joined fields", got)
	}
}

func TestRequestURL_DirectLinkVerbatim(t *testing.T) {
	link := "https://example.org/v1/structures?page_offset=30&filter=opaque"
	req := Request{
		BaseURL:    "https://ignored.example.com",
		Filter:     "ignored",
		Limit:      99,
		DirectLink: link,
	}

	rawURL, err := req.URL()
	if err != nil {
		t.Fatalf("URL() error = %v", err)
	}
	if rawURL != link {
		t.Errorf("URL() = %q, want the direct link verbatim", rawURL)
	}
}

func TestRequestURL_TrailingSlashBase(t *testing.T) {
	req := Request{BaseURL: "https://example.org/v1/", Limit: 10}

	rawURL, err := req.URL()
	if err != nil {
		t.Fatalf("URL() error = %v", err)
	}
	if strings.Contains(rawURL, "//structures") {
		t.Errorf("URL() = %q, double slash before endpoint", rawURL)
	}
}
