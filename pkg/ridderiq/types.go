package ridderiq

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Method is an HTTP verb accepted by the RidderIQ API.
type Method string

// Supported HTTP methods.
const (
	MethodGet    Method = http.MethodGet
	MethodPost   Method = http.MethodPost
	MethodPut    Method = http.MethodPut
	MethodDelete Method = http.MethodDelete
)

// ParseMethod resolves a verb in any casing.
func ParseMethod(value string) (Method, error) {
	switch method := Method(strings.ToUpper(strings.TrimSpace(value))); method {
	case MethodGet, MethodPost, MethodPut, MethodDelete:
		return method, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedMethod, value)
	}
}

// IsRead reports whether the method only reads data. Pagination defaults apply to reads only.
func (m Method) IsRead() bool {
	return m == MethodGet
}

// HasBody reports whether the method sends a JSON body.
func (m Method) HasBody() bool {
	return m == MethodPost || m == MethodPut
}

// Version is the API version path segment.
type Version string

// Supported API versions.
const (
	VersionV1 Version = "v1"
	VersionV2 Version = "v2"
)

// DefaultVersion is used when a record does not name one.
const DefaultVersion = VersionV2

// ParseVersion resolves a version token.
func ParseVersion(value string) (Version, error) {
	switch version := Version(strings.ToLower(strings.TrimSpace(value))); version {
	case VersionV1, VersionV2:
		return version, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedVersion, value)
	}
}

// Credentials identify a tenant administration and authenticate against it.
type Credentials struct {
	BaseURL          string `json:"base_url"          yaml:"base_url"`
	TenantID         string `json:"tenant_id"         yaml:"tenant_id"`
	AdministrationID string `json:"administration_id" yaml:"administration_id"`
	APIKey           string `json:"api_key"           yaml:"api_key"`
}

// Validate checks that every credential is non-empty after trimming.
func (c Credentials) Validate() error {
	fields := []struct {
		name  string
		value string
	}{
		{"base_url", c.BaseURL},
		{"tenant_id", c.TenantID},
		{"administration_id", c.AdministrationID},
		{"api_key", c.APIKey},
	}

	for _, field := range fields {
		if strings.TrimSpace(field.value) == "" {
			return NewRequestBuildError(field.name, ErrMissingCredential)
		}
	}

	return nil
}

// PageParams carries optional pagination. A nil pointer means "not supplied".
type PageParams struct {
	Page *int
	Size *int
}

// Options are the additional per-record request options.
type Options struct {
	Page                *int           `json:"page,omitempty"                  yaml:"page,omitempty"`
	PageSize            *int           `json:"page_size,omitempty"             yaml:"page_size,omitempty"`
	Sort                string         `json:"sort,omitempty"                  yaml:"sort,omitempty"`
	FilterMode          FilterMode     `json:"filter_mode,omitempty"           yaml:"filter_mode,omitempty"`
	Filters             []FilterClause `json:"filters,omitempty"               yaml:"filters,omitempty"`
	AdvancedFilterQuery string         `json:"advanced_filter_query,omitempty" yaml:"advanced_filter_query,omitempty"`
}

// PageParams returns the pagination part of the options.
func (o Options) PageParams() PageParams {
	return PageParams{Page: o.Page, Size: o.PageSize}
}

// Record is one unit of work: a single request against the API.
type Record struct {
	ID       string  `json:"id,omitempty"        yaml:"id,omitempty"`
	Version  Version `json:"version,omitempty"   yaml:"version,omitempty"`
	Endpoint string  `json:"endpoint"            yaml:"endpoint"`
	Method   Method  `json:"method,omitempty"    yaml:"method,omitempty"`
	BodyJSON string  `json:"body_json,omitempty" yaml:"body_json,omitempty"`
	Options  Options `json:"options,omitempty"   yaml:"options,omitempty"`
}

// Normalize validates the enumerated fields of the record and returns a copy
// with canonical values. Unset method, version and filter mode take their defaults.
func (r Record) Normalize() (Record, error) {
	normalized := r

	method := MethodGet
	if r.Method != "" {
		parsed, err := ParseMethod(string(r.Method))
		if err != nil {
			return Record{}, NewValidationError("method", err)
		}

		method = parsed
	}

	normalized.Method = method

	version := DefaultVersion
	if r.Version != "" {
		parsed, err := ParseVersion(string(r.Version))
		if err != nil {
			return Record{}, NewValidationError("version", err)
		}

		version = parsed
	}

	normalized.Version = version

	mode := FilterModeSimple
	if r.Options.FilterMode != "" {
		parsed, err := ParseFilterMode(string(r.Options.FilterMode))
		if err != nil {
			return Record{}, NewValidationError("filter_mode", err)
		}

		mode = parsed
	}

	normalized.Options.FilterMode = mode

	return normalized, nil
}

// RequestDescriptor is a fully built request, ready for the transport.
type RequestDescriptor struct {
	URL     string            `json:"url"`
	Method  Method            `json:"method"`
	Headers map[string]string `json:"headers"`
	Body    json.RawMessage   `json:"body,omitempty"`
	Query   url.Values        `json:"query,omitempty"`
}

// Response is what the transport hands back for a completed call.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// Transport performs a single HTTP call. Implementations return a *StatusError
// together with the response when the API answers with a status >= 400.
type Transport interface {
	Do(ctx context.Context, req *RequestDescriptor) (*Response, error)
}

// ErrorRecord is the structured failure carried by an Outcome.
type ErrorRecord struct {
	Message     string `json:"message"     yaml:"message"`
	Description string `json:"description" yaml:"description"`
}

// Outcome is the result of processing one record.
type Outcome struct {
	Index      int             `json:"index"                 yaml:"index"`
	ID         string          `json:"id"                    yaml:"id"`
	Success    bool            `json:"success"               yaml:"success"`
	StatusCode int             `json:"status_code,omitempty" yaml:"status_code,omitempty"`
	Payload    json.RawMessage `json:"payload,omitempty"     yaml:"-"`
	Error      *ErrorRecord    `json:"error,omitempty"       yaml:"error,omitempty"`
	Duration   time.Duration   `json:"duration"              yaml:"duration"`
}

// OutcomeHandler is called after each record has been processed.
type OutcomeHandler func(ctx context.Context, outcome *Outcome)

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

type noopLogger struct{}

func (noopLogger) Debug(string, map[string]interface{}) {}
func (noopLogger) Info(string, map[string]interface{})  {}
func (noopLogger) Warn(string, map[string]interface{})  {}
func (noopLogger) Error(string, map[string]interface{}) {}
