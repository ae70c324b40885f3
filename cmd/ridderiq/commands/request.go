package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fivetwenty-io/ridderiq-client/internal/constants"
	"github.com/fivetwenty-io/ridderiq-client/internal/sink"
	"github.com/fivetwenty-io/ridderiq-client/pkg/ridderiq"
	"github.com/fivetwenty-io/ridderiq-client/pkg/ridderiqclient"
)

// Flags that describe a single record. They cannot be combined with --input.
var recordFlags = []string{
	"version", "endpoint", "method", "body", "page", "page-size",
	"sort", "filter-mode", "filter", "advanced-filter",
}

type requestOptions struct {
	version        string
	endpoint       string
	method         string
	body           string
	page           int
	pageSize       int
	sort           string
	filterMode     string
	filters        []string
	advancedFilter string

	input          string
	continueOnFail bool
	rate           float64
	retryMax       int
	timeout        time.Duration
	natsURL        string
	natsSubject    string
}

// NewRequestCommand creates the request command.
func NewRequestCommand() *cobra.Command {
	opts := &requestOptions{}

	cmd := &cobra.Command{
		Use:          "request",
		Short:        "Send one or more requests to the RidderIQ API",
		SilenceUsage: true,
		Long: `Send a request built from flags, or a batch of records read from a YAML or JSON file.

Filters use the form field:operator:value, or field:between:low:high.
Operators: eq, ne, gt, gte, lt, lte, contains, startsWith, endsWith, like, in, between.`,
		Example: `  ridderiq request --endpoint crm/todos --filter 'name:eq:Test' --filter 'age:gt:20'
  ridderiq request --endpoint crm/todos --filter-mode advanced --advanced-filter 'name=="test" AND age>20'
  ridderiq request --endpoint crm/todos --method POST --body '{"description":"call back"}'
  ridderiq request --input records.yml --continue-on-fail --rate 5`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRequest(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.version, "version", string(ridderiq.DefaultVersion), "API version (v1, v2)")
	flags.StringVarP(&opts.endpoint, "endpoint", "e", "", "resource path, e.g. crm/todos")
	flags.StringVarP(&opts.method, "method", "X", string(ridderiq.MethodGet), "HTTP method (GET, POST, PUT, DELETE)")
	flags.StringVar(&opts.body, "body", "", "JSON body for POST and PUT, or @file")
	flags.IntVar(&opts.page, "page", 0, "page number (GET defaults to 1)")
	flags.IntVar(&opts.pageSize, "page-size", 0, "page size, 1-200 (GET defaults to 20)")
	flags.StringVar(&opts.sort, "sort", "", "sort expression passed to the API")
	flags.StringVar(&opts.filterMode, "filter-mode", string(ridderiq.FilterModeSimple), "filter mode (simple, advanced)")
	flags.StringArrayVarP(&opts.filters, "filter", "f", nil, "filter clause field:operator:value (repeatable)")
	flags.StringVar(&opts.advancedFilter, "advanced-filter", "", "raw filter query for advanced mode")

	flags.StringVarP(&opts.input, "input", "i", "", "read records from a YAML or JSON file (- for stdin)")
	flags.BoolVar(&opts.continueOnFail, "continue-on-fail", false, "record failures and keep going")
	flags.Float64Var(&opts.rate, "rate", 0, "maximum requests per second (0 for unlimited)")
	flags.IntVar(&opts.retryMax, "retry-max", constants.DefaultRetryMax, "maximum retries on 5xx and 429 responses")
	flags.DurationVar(&opts.timeout, "timeout", constants.DefaultHTTPTimeout, "timeout per HTTP attempt")
	flags.StringVar(&opts.natsURL, "nats-url", "", "publish outcomes to this NATS server")
	flags.StringVar(&opts.natsSubject, "nats-subject", "", "subject for published outcomes")

	return cmd
}

func runRequest(cmd *cobra.Command, opts *requestOptions) error {
	records, err := collectRecords(cmd, opts)
	if err != nil {
		return err
	}

	applyConfigDefaults(cmd, opts)

	if opts.natsURL != "" && opts.natsSubject == "" {
		return constants.ErrNATSSubjectRequired
	}

	creds, err := resolveCredentials(cmd)
	if err != nil {
		return err
	}

	logger, err := newLogger()
	if err != nil {
		return err
	}

	defer func() { _ = logger.Sync() }()

	config := &ridderiqclient.Config{
		Credentials:   creds,
		Timeout:       opts.timeout,
		RetryMax:      &opts.retryMax,
		Debug:         viper.GetBool(keyVerbose),
		RatePerSecond: opts.rate,
		Logger:        logger,
	}

	if opts.continueOnFail {
		config.Mode = ridderiq.ContinueOnFailure
	}

	if opts.natsURL != "" {
		publisher, err := sink.Connect(opts.natsURL, opts.natsSubject, uuid.NewString(), logger.Named("sink"))
		if err != nil {
			return err
		}

		defer func() {
			if err := publisher.Close(); err != nil {
				logger.Warn("Failed to flush outcomes", map[string]interface{}{"error": err.Error()})
			}
		}()

		config.OnOutcome = publisher.Handler()
	}

	client, err := ridderiqclient.New(config)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	outcomes, execErr := client.Execute(commandContext(cmd), records)

	if renderErr := renderOutcomes(cmd.OutOrStdout(), outcomes, viper.GetString(keyOutput)); renderErr != nil {
		return renderErr
	}

	if execErr != nil {
		return execErr
	}

	if failed := countFailed(outcomes); failed > 0 {
		return fmt.Errorf("%w: %d of %d", constants.ErrBatchFailed, failed, len(outcomes))
	}

	return nil
}

func collectRecords(cmd *cobra.Command, opts *requestOptions) ([]ridderiq.Record, error) {
	if opts.input != "" {
		for _, name := range recordFlags {
			if cmd.Flags().Changed(name) {
				return nil, fmt.Errorf("%w: --%s", constants.ErrInputAndFlagsMixed, name)
			}
		}

		data, err := readAll(opts.input)
		if err != nil {
			return nil, err
		}

		return parseRecords(data)
	}

	record, err := recordFromFlags(cmd, opts)
	if err != nil {
		return nil, err
	}

	return []ridderiq.Record{record}, nil
}

func recordFromFlags(cmd *cobra.Command, opts *requestOptions) (ridderiq.Record, error) {
	clauses, err := parseFilterFlags(opts.filters)
	if err != nil {
		return ridderiq.Record{}, err
	}

	body := opts.body
	if len(body) > 1 && body[0] == '@' {
		data, err := readAll(body[1:])
		if err != nil {
			return ridderiq.Record{}, err
		}

		body = string(data)
	}

	record := ridderiq.Record{
		Version:  ridderiq.Version(opts.version),
		Endpoint: opts.endpoint,
		Method:   ridderiq.Method(opts.method),
		BodyJSON: body,
		Options: ridderiq.Options{
			Sort:                opts.sort,
			FilterMode:          ridderiq.FilterMode(opts.filterMode),
			Filters:             clauses,
			AdvancedFilterQuery: opts.advancedFilter,
		},
	}

	// Only flags the user set count as supplied; the assembler fills in defaults.
	if cmd.Flags().Changed("page") {
		record.Options.Page = &opts.page
	}

	if cmd.Flags().Changed("page-size") {
		record.Options.PageSize = &opts.pageSize
	}

	return record, nil
}

// applyConfigDefaults lets config file and environment values stand in for
// flags the user did not set.
func applyConfigDefaults(cmd *cobra.Command, opts *requestOptions) {
	flags := cmd.Flags()

	if !flags.Changed("rate") && viper.IsSet(keyRate) {
		opts.rate = viper.GetFloat64(keyRate)
	}

	if !flags.Changed("retry-max") && viper.IsSet(keyRetryMax) {
		opts.retryMax = viper.GetInt(keyRetryMax)
	}

	if !flags.Changed("timeout") && viper.IsSet(keyTimeout) {
		opts.timeout = viper.GetDuration(keyTimeout)
	}

	if !flags.Changed("nats-url") && viper.IsSet(keyNATSURL) {
		opts.natsURL = viper.GetString(keyNATSURL)
	}

	if !flags.Changed("nats-subject") && viper.IsSet(keyNATSSubject) {
		opts.natsSubject = viper.GetString(keyNATSSubject)
	}
}

func countFailed(outcomes []ridderiq.Outcome) int {
	failed := 0

	for _, outcome := range outcomes {
		if !outcome.Success {
			failed++
		}
	}

	return failed
}

// commandContext returns the command context or a background context.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}

	return context.Background()
}
