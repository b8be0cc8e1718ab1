package query

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// structuresEndpoint is the OPTIMADE collection queried by this client.
const structuresEndpoint = "/structures"

// Request describes a single OPTIMADE query. DirectLink and the
// composed fields are mutually exclusive usage modes: when DirectLink
// is set the request follows it verbatim and every other field is
// ignored.
type Request struct {
	// BaseURL is the provider's OPTIMADE base URL (e.g.
	// "https://example.org/optimade/v1").
	BaseURL string

	// Filter is the composed filter expression.
	Filter string

	// Limit is the page size (page_limit).
	Limit int

	// Offset is the page offset (page_offset).
	Offset int

	// Fields optionally projects the response to these attribute
	// fields (response_fields).
	Fields []string

	// DirectLink is a fully-formed continuation URL. Used verbatim
	// when present.
	DirectLink string
}

// URL builds the request URL.
func (r Request) URL() (string, error) {
	if r.DirectLink != "" {
		return r.DirectLink, nil
	}

	u, err := url.Parse(strings.TrimRight(r.BaseURL, "/") + structuresEndpoint)
	if err != nil {
		return "", fmt.Errorf("parse base URL: %w", err)
	}

	q := url.Values{}
	q.Set("filter", r.Filter)
	q.Set("page_limit", strconv.Itoa(r.Limit))
	q.Set("page_offset", strconv.Itoa(r.Offset))
	q.Set("response_format", "json")
	if len(r.Fields) > 0 {
		q.Set("response_fields", strings.Join(r.Fields, ","))
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}
