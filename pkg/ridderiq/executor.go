package ridderiq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/fivetwenty-io/ridderiq-client/internal/constants"
)

// ExecutionMode decides what happens to the rest of a batch after a record fails.
type ExecutionMode int

const (
	// FailFast stops at the first failing record and returns its error.
	FailFast ExecutionMode = iota
	// ContinueOnFailure records the failure as an outcome and moves on.
	ContinueOnFailure
)

// String returns the mode name.
func (m ExecutionMode) String() string {
	if m == ContinueOnFailure {
		return "continue-on-failure"
	}

	return "fail-fast"
}

// Executor runs records one at a time against a transport.
type Executor struct {
	transport Transport
	mode      ExecutionMode
	logger    Logger
	limiter   *rate.Limiter
	onOutcome OutcomeHandler
	newID     func() string
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithMode sets the execution mode.
func WithMode(mode ExecutionMode) ExecutorOption {
	return func(e *Executor) {
		e.mode = mode
	}
}

// WithLogger sets the logger.
func WithLogger(logger Logger) ExecutorOption {
	return func(e *Executor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLimiter paces transport calls. A nil limiter disables pacing.
func WithLimiter(limiter *rate.Limiter) ExecutorOption {
	return func(e *Executor) {
		e.limiter = limiter
	}
}

// WithOutcomeHandler registers a callback invoked after each record.
func WithOutcomeHandler(handler OutcomeHandler) ExecutorOption {
	return func(e *Executor) {
		e.onOutcome = handler
	}
}

// WithIDGenerator overrides how IDs are assigned to records without one.
func WithIDGenerator(newID func() string) ExecutorOption {
	return func(e *Executor) {
		if newID != nil {
			e.newID = newID
		}
	}
}

// NewExecutor creates a new executor. The default mode is FailFast.
func NewExecutor(transport Transport, opts ...ExecutorOption) *Executor {
	executor := &Executor{
		transport: transport,
		mode:      FailFast,
		logger:    noopLogger{},
		newID:     uuid.NewString,
	}

	for _, opt := range opts {
		opt(executor)
	}

	return executor
}

// Mode returns the configured execution mode.
func (e *Executor) Mode() ExecutionMode {
	return e.mode
}

// Execute processes records in order. The returned outcomes line up with the
// input; in FailFast mode they stop before the failing record and its error
// is returned. Cancellation is honored between records.
func (e *Executor) Execute(ctx context.Context, creds Credentials, records []Record) ([]Outcome, error) {
	if e.transport == nil {
		return nil, ErrTransportRequired
	}

	outcomes := make([]Outcome, 0, len(records))

	for index, record := range records {
		if err := ctx.Err(); err != nil {
			e.logger.Warn("Batch cancelled", map[string]interface{}{
				"completed": len(outcomes),
				"total":     len(records),
			})

			return outcomes, err
		}

		outcome, err := e.executeRecord(ctx, index, creds, record)

		if e.onOutcome != nil {
			e.onOutcome(ctx, outcome)
		}

		if err != nil && e.mode == FailFast {
			return outcomes, fmt.Errorf("record %d (%s): %w", index, outcome.ID, err)
		}

		outcomes = append(outcomes, *outcome)
	}

	return outcomes, nil
}

func (e *Executor) executeRecord(ctx context.Context, index int, creds Credentials, record Record) (*Outcome, error) {
	start := time.Now()

	outcome := &Outcome{Index: index, ID: record.ID}
	if outcome.ID == "" {
		outcome.ID = e.newID()
	}

	fields := map[string]interface{}{
		"index": index,
		"id":    outcome.ID,
	}

	response, err := e.send(ctx, creds, record, fields)

	outcome.Duration = time.Since(start)
	fields["duration"] = outcome.Duration.String()

	if response != nil {
		outcome.StatusCode = response.StatusCode
		fields["status"] = response.StatusCode
	}

	if err != nil {
		outcome.Error = ToErrorRecord(err)
		fields["error"] = err.Error()
		e.logger.Warn("Record failed", fields)

		return outcome, err
	}

	outcome.Success = true
	outcome.Payload = payloadOf(response.Body)
	e.logger.Info("Record completed", fields)

	return outcome, nil
}

func (e *Executor) send(ctx context.Context, creds Credentials, record Record, fields map[string]interface{}) (*Response, error) {
	normalized, err := record.Normalize()
	if err != nil {
		attachRequest(err, describeRecord(creds, record))

		return nil, err
	}

	descriptor, err := prepare(creds, normalized)
	if err != nil {
		attachRequest(err, describeRecord(creds, normalized))

		return nil, err
	}

	fields["method"] = string(descriptor.Method)
	fields["url"] = descriptor.URL
	e.logger.Debug("Sending record", fields)

	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("waiting for rate limiter: %w", err)
		}
	}

	return Call(ctx, e.transport, descriptor)
}

// prepare runs compile, assemble and build for a normalized record.
func prepare(creds Credentials, record Record) (*RequestDescriptor, error) {
	options := record.Options

	filter, err := Compile(options.FilterMode, options.Filters, options.AdvancedFilterQuery)
	if err != nil {
		return nil, err
	}

	query, err := Assemble(record.Method, options.PageParams(), options.Sort, filter)
	if err != nil {
		return nil, err
	}

	return Build(creds, record, query)
}

// Call sends a built request and converts failures into a *RemoteAPIError.
func Call(ctx context.Context, transport Transport, descriptor *RequestDescriptor) (*Response, error) {
	response, err := transport.Do(ctx, descriptor)
	if err != nil {
		remoteErr := &RemoteAPIError{Request: descriptor, Err: err}

		statusErr := &StatusError{}
		if errors.As(err, &statusErr) {
			remoteErr.StatusCode = statusErr.StatusCode
			remoteErr.ResponseBody = statusErr.Body
		} else if response != nil && response.StatusCode >= constants.HTTPStatusBadRequest {
			remoteErr.StatusCode = response.StatusCode
			remoteErr.ResponseBody = response.Body
		}

		return response, remoteErr
	}

	if response.StatusCode >= constants.HTTPStatusBadRequest {
		return response, &RemoteAPIError{
			StatusCode:   response.StatusCode,
			Request:      descriptor,
			ResponseBody: response.Body,
			Err:          &StatusError{StatusCode: response.StatusCode, Body: response.Body},
		}
	}

	return response, nil
}

// payloadOf keeps JSON bodies as they are and wraps anything else as a JSON string.
func payloadOf(body []byte) json.RawMessage {
	if len(body) == 0 {
		return nil
	}

	if json.Valid(body) {
		return json.RawMessage(body)
	}

	wrapped, err := json.Marshal(string(body))
	if err != nil {
		return nil
	}

	return wrapped
}
