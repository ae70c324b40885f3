package ridderiqclient

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/time/rate"

	"github.com/fivetwenty-io/ridderiq-client/internal/constants"
	riqhttp "github.com/fivetwenty-io/ridderiq-client/internal/http"
	"github.com/fivetwenty-io/ridderiq-client/pkg/ridderiq"
)

// Static errors for err113 compliance.
var (
	ErrConfigRequired = errors.New("configuration is required")
	ErrNoOutcome      = errors.New("record produced no outcome")
)

// Config holds everything needed to build a client.
type Config struct {
	Credentials ridderiq.Credentials

	// Transport settings. Zero values take the package defaults.
	Timeout      time.Duration
	RetryMax     *int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	UserAgent    string
	HTTPClient   *http.Client
	Debug        bool

	// Execution settings.
	Mode          ridderiq.ExecutionMode
	RatePerSecond float64
	OnOutcome     ridderiq.OutcomeHandler
	Logger        ridderiq.Logger

	// Transport replaces the HTTP transport entirely when set.
	Transport ridderiq.Transport
}

// Client bundles a transport and an executor bound to one set of credentials.
type Client struct {
	credentials ridderiq.Credentials
	transport   ridderiq.Transport
	executor    *ridderiq.Executor
}

// New creates a client. Credentials are checked when a request is built, so a
// client can be created before every value is known.
func New(config *Config) (*Client, error) {
	if config == nil {
		return nil, ErrConfigRequired
	}

	transport := config.Transport
	if transport == nil {
		transport = newHTTPTransport(config)
	}

	opts := []ridderiq.ExecutorOption{
		ridderiq.WithMode(config.Mode),
		ridderiq.WithLogger(config.Logger),
		ridderiq.WithOutcomeHandler(config.OnOutcome),
	}

	if config.RatePerSecond > 0 {
		opts = append(opts, ridderiq.WithLimiter(rate.NewLimiter(rate.Limit(config.RatePerSecond), 1)))
	}

	return &Client{
		credentials: config.Credentials,
		transport:   transport,
		executor:    ridderiq.NewExecutor(transport, opts...),
	}, nil
}

// NewFromEnv creates a client from the RIDDERIQ_* environment variables.
func NewFromEnv() (*Client, error) {
	return New(&Config{
		Credentials: ridderiq.Credentials{
			BaseURL:          os.Getenv(constants.EnvPrefix + "_BASE_URL"),
			TenantID:         os.Getenv(constants.EnvPrefix + "_TENANT_ID"),
			AdministrationID: os.Getenv(constants.EnvPrefix + "_ADMINISTRATION_ID"),
			APIKey:           os.Getenv(constants.EnvPrefix + "_API_KEY"),
		},
	})
}

func newHTTPTransport(config *Config) *riqhttp.Client {
	retryMax := constants.DefaultRetryMax
	if config.RetryMax != nil {
		retryMax = *config.RetryMax
	}

	waitMin := config.RetryWaitMin
	if waitMin <= 0 {
		waitMin = constants.DefaultRetryWaitMin
	}

	waitMax := config.RetryWaitMax
	if waitMax <= 0 {
		waitMax = constants.DefaultRetryWaitMax
	}

	opts := []riqhttp.Option{
		riqhttp.WithHTTPClient(config.HTTPClient),
		riqhttp.WithRetryConfig(retryMax, waitMin, waitMax),
		riqhttp.WithTimeout(config.Timeout),
		riqhttp.WithUserAgent(config.UserAgent),
		riqhttp.WithDebug(config.Debug),
	}

	if config.Logger != nil {
		opts = append(opts, riqhttp.WithLogger(config.Logger))
	}

	return riqhttp.NewClient(opts...)
}

// Execute runs records against the configured administration.
func (c *Client) Execute(ctx context.Context, records []ridderiq.Record) ([]ridderiq.Outcome, error) {
	return c.executor.Execute(ctx, c.credentials, records)
}

// Do runs a single record. In ContinueOnFailure mode a failed call is
// reported through the outcome instead of the error.
func (c *Client) Do(ctx context.Context, record ridderiq.Record) (*ridderiq.Outcome, error) {
	outcomes, err := c.executor.Execute(ctx, c.credentials, []ridderiq.Record{record})
	if err != nil {
		return nil, err
	}

	if len(outcomes) == 0 {
		return nil, ErrNoOutcome
	}

	return &outcomes[0], nil
}

// Test checks connectivity with the configured credentials.
func (c *Client) Test(ctx context.Context) (*ridderiq.Response, error) {
	return ridderiq.TestCredentials(ctx, c.transport, c.credentials)
}

// Credentials returns the credentials the client was built with.
func (c *Client) Credentials() ridderiq.Credentials {
	return c.credentials
}

// Mode returns the execution mode.
func (c *Client) Mode() ridderiq.ExecutionMode {
	return c.executor.Mode()
}
