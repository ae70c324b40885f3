package ridderiq

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/fivetwenty-io/ridderiq-client/internal/constants"
)

var emptyJSONObject = json.RawMessage(`{}`)

// Build composes the request descriptor for a normalized record.
//
// The URL is base/tenant/administration/version/endpoint. Tenant and
// administration are trimmed and path-escaped; the endpoint is trimmed and
// joined as given so it may contain its own sub-path.
func Build(creds Credentials, rec Record, query *QueryParams) (*RequestDescriptor, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	endpoint := trimEndpoint(rec.Endpoint)
	if endpoint == "" {
		return nil, NewRequestBuildError("endpoint", ErrMissingPathSegment)
	}

	descriptor := compose(creds, rec, endpoint)
	descriptor.Query = query.ToValues()

	if descriptor.Method.HasBody() {
		body, err := parseBody(rec.BodyJSON)
		if err != nil {
			descriptor.Body = json.RawMessage(rec.BodyJSON)
			attachRequest(err, descriptor)

			return nil, err
		}

		descriptor.Body = body
		descriptor.Headers[constants.HeaderContentType] = constants.MediaTypeJSON
	}

	return descriptor, nil
}

// describeRecord builds as much of a descriptor as the record allows without
// validating anything. It only feeds error descriptions; the body is the raw
// text and may not be valid JSON.
func describeRecord(creds Credentials, rec Record) *RequestDescriptor {
	descriptor := compose(creds, rec, trimEndpoint(rec.Endpoint))

	if descriptor.Method.HasBody() && strings.TrimSpace(rec.BodyJSON) != "" {
		descriptor.Body = json.RawMessage(rec.BodyJSON)
	}

	return descriptor
}

// attachRequest records req on a validation or build error that does not
// carry one yet.
func attachRequest(err error, req *RequestDescriptor) {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) && validationErr.Request == nil {
		validationErr.Request = req

		return
	}

	var buildErr *RequestBuildError
	if errors.As(err, &buildErr) && buildErr.Request == nil {
		buildErr.Request = req
	}
}

func compose(creds Credentials, rec Record, endpoint string) *RequestDescriptor {
	version := rec.Version
	if version == "" {
		version = DefaultVersion
	}

	method := rec.Method
	if method == "" {
		method = MethodGet
	}

	parts := []string{
		strings.TrimRight(strings.TrimSpace(creds.BaseURL), "/"),
		url.PathEscape(strings.TrimSpace(creds.TenantID)),
		url.PathEscape(strings.TrimSpace(creds.AdministrationID)),
		string(version),
		endpoint,
	}

	return &RequestDescriptor{
		URL:    strings.Join(parts, "/"),
		Method: method,
		Headers: map[string]string{
			constants.HeaderAccept: constants.MediaTypeJSON,
			constants.HeaderAPIKey: strings.TrimSpace(creds.APIKey),
		},
	}
}

func trimEndpoint(endpoint string) string {
	return strings.TrimLeft(strings.TrimSpace(endpoint), "/")
}

func parseBody(text string) (json.RawMessage, error) {
	if strings.TrimSpace(text) == "" {
		return emptyJSONObject, nil
	}

	var body json.RawMessage

	if err := json.Unmarshal([]byte(text), &body); err != nil {
		return nil, NewValidationError("body_json", fmt.Errorf("%w: %w", ErrInvalidJSONBody, err))
	}

	return body, nil
}
