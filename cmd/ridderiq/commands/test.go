package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fivetwenty-io/ridderiq-client/internal/constants"
	"github.com/fivetwenty-io/ridderiq-client/pkg/ridderiq"
	"github.com/fivetwenty-io/ridderiq-client/pkg/ridderiqclient"
)

type testResult struct {
	BaseURL          string `json:"base_url"          yaml:"base_url"`
	TenantID         string `json:"tenant_id"         yaml:"tenant_id"`
	AdministrationID string `json:"administration_id" yaml:"administration_id"`
	APIKey           string `json:"api_key"           yaml:"api_key"`
	StatusCode       int    `json:"status_code"       yaml:"status_code"`
	Reachable        bool   `json:"reachable"         yaml:"reachable"`
}

// NewTestCommand creates the connectivity check command.
func NewTestCommand() *cobra.Command {
	return &cobra.Command{
		Use:          "test",
		Short:        "Check the configured credentials",
		Long:         "Send a minimal list request to verify the base URL, tenant, administration and API key",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			creds, err := resolveCredentials(cmd)
			if err != nil {
				return err
			}

			logger, err := newLogger()
			if err != nil {
				return err
			}

			defer func() { _ = logger.Sync() }()

			client, err := ridderiqclient.New(&ridderiqclient.Config{
				Credentials: creds,
				Timeout:     constants.ShortHTTPTimeout,
				Debug:       viper.GetBool(keyVerbose),
				Logger:      logger,
			})
			if err != nil {
				return fmt.Errorf("failed to create client: %w", err)
			}

			result := testResult{
				BaseURL:          creds.BaseURL,
				TenantID:         creds.TenantID,
				AdministrationID: creds.AdministrationID,
				APIKey:           ridderiq.MaskSecret(creds.APIKey),
			}

			resp, testErr := client.Test(commandContext(cmd))
			if resp != nil {
				result.StatusCode = resp.StatusCode
			}

			var remote *ridderiq.RemoteAPIError
			if errors.As(testErr, &remote) && remote.StatusCode > 0 {
				result.StatusCode = remote.StatusCode
			}

			result.Reachable = testErr == nil

			renderer := &OutputRenderer[testResult]{
				RenderJSON:  func(v testResult) error { return StandardJSONRenderer(cmd.OutOrStdout(), v) },
				RenderYAML:  func(v testResult) error { return StandardYAMLRenderer(cmd.OutOrStdout(), v) },
				RenderTable: func(v testResult) error { return renderTestTable(cmd.OutOrStdout(), v) },
			}

			if err := renderer.Render(result, viper.GetString(keyOutput)); err != nil {
				return err
			}

			if testErr != nil {
				return fmt.Errorf("connectivity check failed: %w", testErr)
			}

			return nil
		},
	}
}

func renderTestTable(out io.Writer, result testResult) error {
	table := tablewriter.NewWriter(out)
	table.Header("Property", "Value")

	status := constants.NotAvailable
	if result.StatusCode > 0 {
		status = fmt.Sprint(result.StatusCode)
	}

	reachable := constants.BooleanFalse
	if result.Reachable {
		reachable = constants.BooleanTrue
	}

	_ = table.Append("Base URL", valueOrNA(result.BaseURL))
	_ = table.Append("Tenant", valueOrNA(result.TenantID))
	_ = table.Append("Administration", valueOrNA(result.AdministrationID))
	_ = table.Append("API Key", result.APIKey)
	_ = table.Append("HTTP Status", status)
	_ = table.Append("Reachable", reachable)

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}
