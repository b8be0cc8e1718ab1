package response

import (
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for outcome classification.
var (
	optimadeOutcomesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "optimade_outcomes_total",
		Help: "Total classified query outcomes by kind",
	}, []string{"kind"})
)

// OutcomeKind identifies the active variant of an Outcome.
type OutcomeKind string

const (
	// KindSuccess carries records, metadata and pagination links.
	KindSuccess OutcomeKind = "success"

	// KindAPIError carries messages reported by the remote service.
	KindAPIError OutcomeKind = "api_error"

	// KindTransportError carries a network or timeout failure message.
	KindTransportError OutcomeKind = "transport_error"

	// KindVersionError signals an unsupported remote API version.
	KindVersionError OutcomeKind = "version_error"
)

// SupportedMajorVersion is the OPTIMADE major version this client
// understands. Providers advertising a different major version produce
// a KindVersionError outcome.
const SupportedMajorVersion = "1"

// DecodeFailureMessage is the fixed message used when a response body
// could not be parsed as JSON.
const DecodeFailureMessage = "Unable to decode response"

// Outcome is the normalized result of a query. Exactly one kind is
// active; the record/meta/links fields are populated only for
// KindSuccess, Messages only for KindAPIError, and Message only for
// the transport and version variants.
type Outcome struct {
	Kind OutcomeKind

	// KindSuccess
	Records []Record
	Meta    Meta
	Links   Links

	// KindAPIError
	Messages []string

	// KindTransportError / KindVersionError
	Message string
}

// StrictModeError is returned by Classify in strict mode when the
// remote service reports errors. Strict mode is a diagnostic facility
// for test and debug harnesses, never for end users.
type StrictModeError struct {
	Messages []string
}

func (e *StrictModeError) Error() string {
	return fmt.Sprintf("API reported errors (strict mode): %s", strings.Join(e.Messages, "; "))
}

// Classify inspects a raw execution result and produces a single
// outcome. Decision order, first match wins: transport failure, decode
// failure, API-reported errors, unsupported API version, success.
//
// API-level errors take precedence over transport-level success: a 200
// response with a populated errors collection is still KindAPIError.
// In strict mode API-reported errors abort with a StrictModeError
// instead of producing an outcome.
func Classify(raw Raw, strict bool) (Outcome, error) {
	outcome, err := classify(raw, strict)
	if err == nil {
		optimadeOutcomesTotal.WithLabelValues(string(outcome.Kind)).Inc()
	}
	return outcome, err
}

func classify(raw Raw, strict bool) (Outcome, error) {
	if raw.TransportErr != "" {
		return Outcome{
			Kind:    KindTransportError,
			Message: raw.TransportErr,
		}, nil
	}

	if raw.DecodeFailed || raw.Body == nil {
		return Outcome{
			Kind:     KindAPIError,
			Messages: []string{DecodeFailureMessage},
		}, nil
	}

	body := raw.Body

	if len(body.Errors) > 0 {
		messages := make([]string, 0, len(body.Errors))
		for _, apiErr := range body.Errors {
			messages = append(messages, formatAPIError(apiErr))
		}
		if strict {
			return Outcome{}, &StrictModeError{Messages: messages}
		}
		return Outcome{
			Kind:     KindAPIError,
			Messages: messages,
		}, nil
	}

	if v := body.Meta.APIVersion; v != "" && !versionSupported(v) {
		return Outcome{
			Kind: KindVersionError,
			Message: fmt.Sprintf("unsupported API version %q (supported major version: %s)",
				v, SupportedMajorVersion),
		}, nil
	}

	records := body.Data
	if records == nil {
		// Zero results is a valid outcome, distinct from an error.
		records = []Record{}
	}

	return Outcome{
		Kind:    KindSuccess,
		Records: records,
		Meta:    body.Meta,
		Links:   body.Links,
	}, nil
}

// formatAPIError builds a human-readable message from an errors entry.
func formatAPIError(apiErr APIError) string {
	var sb strings.Builder

	title := apiErr.Title
	if title == "" {
		title = "unknown API error"
	}
	sb.WriteString(title)

	if apiErr.Status != "" {
		sb.WriteString(" (status ")
		sb.WriteString(apiErr.Status)
		sb.WriteString(")")
	}
	if apiErr.Detail != "" {
		sb.WriteString(": ")
		sb.WriteString(apiErr.Detail)
	}

	return sb.String()
}

// versionSupported reports whether the advertised api_version has the
// supported major version. Accepts optional "v" prefix.
func versionSupported(version string) bool {
	v := strings.TrimPrefix(version, "v")
	major, _, _ := strings.Cut(v, ".")
	return major == SupportedMajorVersion
}
