// Package response defines the OPTIMADE response wire types and the
// outcome classification for query results.
package response

// Record is a single entry in the response data collection.
// Once returned to a caller the record is owned by the caller; no
// reference is retained by the query machinery.
type Record struct {
	ID         string         `json:"id"`
	Attributes map[string]any `json:"attributes"`
}

// Meta carries the response metadata block.
type Meta struct {
	APIVersion   string `json:"api_version"`
	DataReturned *int   `json:"data_returned"`
}

// Links carries the pagination links block. Next is empty when the
// provider signals no further pages (JSON null or absent key).
type Links struct {
	Next string `json:"next"`
}

// APIError is a single entry in the response errors collection.
type APIError struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Status string `json:"status"`
}

// Body is the decoded JSON body of an OPTIMADE response.
type Body struct {
	Data   []Record   `json:"data"`
	Meta   Meta       `json:"meta"`
	Links  Links      `json:"links"`
	Errors []APIError `json:"errors"`
}

// Raw is the result of a single query execution: either a decoded body
// or one of the failure markers. TransportErr is set when the request
// never produced a readable body (network failure, timeout).
// DecodeFailed is set when the body was retrieved but is not valid
// JSON; Body is nil in both failure cases.
type Raw struct {
	Body         *Body
	DecodeFailed bool
	TransportErr string
}
