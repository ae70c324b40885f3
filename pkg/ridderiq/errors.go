package ridderiq

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/fivetwenty-io/ridderiq-client/internal/constants"
)

// Static errors for err113 compliance.
var (
	ErrUnsupportedMethod  = errors.New("unsupported HTTP method")
	ErrUnsupportedVersion = errors.New("unsupported API version")
	ErrUnknownOperator    = errors.New("unknown filter operator")
	ErrUnknownFilterMode  = errors.New("unknown filter mode")
	ErrPageSizeOutOfRange = errors.New("page size must be between 1 and 200")
	ErrPageOutOfRange     = errors.New("page must be greater than 0")
	ErrInvalidJSONBody    = errors.New("invalid JSON body")
	ErrMissingCredential  = errors.New("credential is required")
	ErrMissingPathSegment = errors.New("path segment is required")
	ErrTransportRequired  = errors.New("transport is required")
	ErrRemoteAPI          = errors.New("RidderIQ API request failed")
)

// ValidationError reports bad per-record input detected before any network call.
//
// Request holds as much of the request as was known when validation failed.
type ValidationError struct {
	Field   string
	Err     error
	Request *RequestDescriptor
}

// NewValidationError creates a validation error for a field.
func NewValidationError(field string, err error) *ValidationError {
	return &ValidationError{Field: field, Err: err}
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %v", e.Field, e.Err)
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Description renders the known request context as indented JSON.
func (e *ValidationError) Description() string {
	return describeWithField(e.Request, e.Field)
}

// RequestBuildError reports a missing credential or URL segment.
type RequestBuildError struct {
	Field   string
	Err     error
	Request *RequestDescriptor
}

// NewRequestBuildError creates a request build error for a field.
func NewRequestBuildError(field string, err error) *RequestBuildError {
	return &RequestBuildError{Field: field, Err: err}
}

// Error implements the error interface.
func (e *RequestBuildError) Error() string {
	return fmt.Sprintf("cannot build request: %s: %v", e.Field, e.Err)
}

// Unwrap returns the underlying error.
func (e *RequestBuildError) Unwrap() error {
	return e.Err
}

// Description renders the known request context as indented JSON.
func (e *RequestBuildError) Description() string {
	return describeWithField(e.Request, e.Field)
}

// StatusError is returned by transports when the API answers with status >= 400.
type StatusError struct {
	StatusCode int
	Body       []byte
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("RidderIQ API returned status %d", e.StatusCode)
}

// RemoteAPIError is a failed call, with the request that caused it.
type RemoteAPIError struct {
	StatusCode   int
	Request      *RequestDescriptor
	ResponseBody []byte
	Err          error
}

// Error implements the error interface.
func (e *RemoteAPIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("RidderIQ API returned status %d", e.StatusCode)
	}

	return fmt.Sprintf("%v: %v", ErrRemoteAPI, e.Err)
}

// Unwrap returns the underlying error.
func (e *RemoteAPIError) Unwrap() error {
	return e.Err
}

// Description renders the request context as indented JSON, with the API key masked.
func (e *RemoteAPIError) Description() string {
	diagnostics := requestDiagnostics(e.Request)

	if len(e.ResponseBody) > 0 {
		diagnostics["response"] = jsonOrText(e.ResponseBody)
	}

	if e.Err != nil && e.StatusCode == 0 {
		diagnostics["error"] = e.Err.Error()
	}

	return renderDiagnostics(diagnostics)
}

// requestDiagnostics lists the parts of a request worth showing in an error
// description. Headers are redacted.
func requestDiagnostics(req *RequestDescriptor) map[string]interface{} {
	diagnostics := map[string]interface{}{}

	if req == nil {
		return diagnostics
	}

	if req.URL != "" {
		diagnostics["url"] = req.URL
	}

	if req.Method != "" {
		diagnostics["method"] = req.Method
	}

	if len(req.Headers) > 0 {
		diagnostics["headers"] = RedactHeaders(req.Headers)
	}

	if len(req.Query) > 0 {
		diagnostics["query"] = req.Query
	}

	if len(req.Body) > 0 {
		diagnostics["body"] = jsonOrText(req.Body)
	}

	return diagnostics
}

// jsonOrText keeps valid JSON structured and falls back to a plain string,
// so a rejected body still renders.
func jsonOrText(data []byte) interface{} {
	if json.Valid(data) {
		return json.RawMessage(data)
	}

	return string(data)
}

func renderDiagnostics(diagnostics map[string]interface{}) string {
	data, err := json.MarshalIndent(diagnostics, "", strings.Repeat(" ", constants.JSONIndentSize))
	if err != nil {
		return ""
	}

	return string(data)
}

// describeWithField renders request context for errors raised before the
// call. Without a request there is nothing to add to the message.
func describeWithField(req *RequestDescriptor, field string) string {
	if req == nil {
		return ""
	}

	diagnostics := requestDiagnostics(req)
	diagnostics["field"] = field

	return renderDiagnostics(diagnostics)
}

// IsValidationError checks if the error is a validation error.
func IsValidationError(err error) bool {
	validationErr := &ValidationError{}

	return errors.As(err, &validationErr)
}

// IsRequestBuildError checks if the error is a request build error.
func IsRequestBuildError(err error) bool {
	buildErr := &RequestBuildError{}

	return errors.As(err, &buildErr)
}

// IsRemoteAPIError checks if the error is a remote API error.
func IsRemoteAPIError(err error) bool {
	remoteErr := &RemoteAPIError{}

	return errors.As(err, &remoteErr)
}

// ToErrorRecord converts any error into the outcome error shape.
func ToErrorRecord(err error) *ErrorRecord {
	if err == nil {
		return nil
	}

	record := &ErrorRecord{Message: err.Error()}

	var describer interface{ Description() string }
	if errors.As(err, &describer) {
		record.Description = describer.Description()
	}

	return record
}

// MaskSecret hides all but the last few characters of a secret.
func MaskSecret(secret string) string {
	if len(secret) <= constants.MaskVisibleChars*2 {
		return constants.MaskedSecret
	}

	return constants.MaskedSecret + secret[len(secret)-constants.MaskVisibleChars:]
}

// RedactHeaders returns a copy of headers with the API key masked.
func RedactHeaders(headers map[string]string) map[string]string {
	redacted := make(map[string]string, len(headers))

	for key, value := range headers {
		if strings.EqualFold(key, constants.HeaderAPIKey) {
			redacted[key] = MaskSecret(value)

			continue
		}

		redacted[key] = value
	}

	return redacted
}
