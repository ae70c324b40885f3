package commands

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/ridderiq-client/internal/constants"
	"github.com/fivetwenty-io/ridderiq-client/internal/logging"
	"github.com/fivetwenty-io/ridderiq-client/pkg/ridderiq"
)

// OutputRenderer handles different output formats.
type OutputRenderer[T any] struct {
	RenderJSON  func(data T) error
	RenderYAML  func(data T) error
	RenderTable func(data T) error
}

// Render outputs data in the specified format.
func (o *OutputRenderer[T]) Render(data T, format string) error {
	switch format {
	case constants.FormatJSON:
		return o.RenderJSON(data)
	case constants.FormatYAML:
		return o.RenderYAML(data)
	default:
		return o.RenderTable(data)
	}
}

// StandardJSONRenderer writes indented JSON.
func StandardJSONRenderer[T any](out io.Writer, data T) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", strings.Repeat(" ", constants.JSONIndentSize))

	err := encoder.Encode(data)
	if err != nil {
		return fmt.Errorf("encoding data to JSON: %w", err)
	}

	return nil
}

// StandardYAMLRenderer writes YAML.
func StandardYAMLRenderer[T any](out io.Writer, data T) error {
	encoder := yaml.NewEncoder(out)
	encoder.SetIndent(constants.JSONIndentSize)

	err := encoder.Encode(data)
	if err != nil {
		return fmt.Errorf("encoding data to YAML: %w", err)
	}

	return encoder.Close()
}

// outcomeView is the printable form of an outcome. The payload is decoded so
// YAML output shows structure instead of raw bytes.
type outcomeView struct {
	Index      int                   `json:"index"                 yaml:"index"`
	ID         string                `json:"id"                    yaml:"id"`
	Success    bool                  `json:"success"               yaml:"success"`
	StatusCode int                   `json:"status_code,omitempty" yaml:"status_code,omitempty"`
	Duration   string                `json:"duration"              yaml:"duration"`
	Payload    interface{}           `json:"payload,omitempty"     yaml:"payload,omitempty"`
	Error      *ridderiq.ErrorRecord `json:"error,omitempty"       yaml:"error,omitempty"`
}

func toOutcomeViews(outcomes []ridderiq.Outcome) []outcomeView {
	views := make([]outcomeView, 0, len(outcomes))

	for _, outcome := range outcomes {
		view := outcomeView{
			Index:      outcome.Index,
			ID:         outcome.ID,
			Success:    outcome.Success,
			StatusCode: outcome.StatusCode,
			Duration:   outcome.Duration.Round(time.Millisecond).String(),
			Error:      outcome.Error,
		}

		if len(outcome.Payload) > 0 {
			var payload interface{}
			if err := json.Unmarshal(outcome.Payload, &payload); err == nil {
				view.Payload = payload
			}
		}

		views = append(views, view)
	}

	return views
}

func renderOutcomes(out io.Writer, outcomes []ridderiq.Outcome, format string) error {
	renderer := &OutputRenderer[[]outcomeView]{
		RenderJSON:  func(v []outcomeView) error { return StandardJSONRenderer(out, v) },
		RenderYAML:  func(v []outcomeView) error { return StandardYAMLRenderer(out, v) },
		RenderTable: func(v []outcomeView) error { return renderOutcomeTable(out, v) },
	}

	return renderer.Render(toOutcomeViews(outcomes), format)
}

func renderOutcomeTable(out io.Writer, views []outcomeView) error {
	table := tablewriter.NewWriter(out)
	table.Header("#", "ID", "Status", "HTTP", "Duration", "Result")

	for _, view := range views {
		status := constants.StatusOK
		result := summarizePayload(view.Payload)

		if !view.Success {
			status = constants.StatusFailed
			result = constants.NotAvailable

			if view.Error != nil {
				result = view.Error.Message
			}
		}

		httpStatus := constants.NotAvailable
		if view.StatusCode > 0 {
			httpStatus = strconv.Itoa(view.StatusCode)
		}

		_ = table.Append([]string{strconv.Itoa(view.Index), view.ID, status, httpStatus, view.Duration, result})
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

func summarizePayload(payload interface{}) string {
	switch value := payload.(type) {
	case nil:
		return constants.NotAvailable
	case []interface{}:
		return fmt.Sprintf("%d items", len(value))
	case map[string]interface{}:
		return fmt.Sprintf("object (%d fields)", len(value))
	default:
		return fmt.Sprint(value)
	}
}

// newLogger builds the CLI logger. --verbose forces debug level.
func newLogger() (*logging.Logger, error) {
	level := viper.GetString(keyLogLevel)
	if viper.GetBool(keyVerbose) {
		level = "debug"
	}

	logger, err := logging.New(logging.Config{Level: level, Development: true})
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	return logger, nil
}

// resolveCredentials reads credentials from viper and prompts for the API key
// when it is missing and stdin is a terminal. A prompted key is not stored.
func resolveCredentials(cmd *cobra.Command) (ridderiq.Credentials, error) {
	creds := ridderiq.Credentials{
		BaseURL:          viper.GetString(keyBaseURL),
		TenantID:         viper.GetString(keyTenantID),
		AdministrationID: viper.GetString(keyAdministrationID),
		APIKey:           viper.GetString(keyAPIKey),
	}

	if strings.TrimSpace(creds.APIKey) != "" {
		return creds, nil
	}

	fd := int(os.Stdin.Fd()) //nolint:gosec // file descriptors fit in int
	if !term.IsTerminal(fd) {
		return creds, constants.ErrAPIKeyPromptRequired
	}

	_, _ = fmt.Fprint(cmd.ErrOrStderr(), "API key: ")

	key, err := term.ReadPassword(fd)

	_, _ = fmt.Fprintln(cmd.ErrOrStderr())

	if err != nil {
		return creds, fmt.Errorf("failed to read API key: %w", err)
	}

	creds.APIKey = strings.TrimSpace(string(key))

	return creds, nil
}

// readAll reads a file or stdin when path is "-".
func readAll(path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(bufio.NewReader(os.Stdin))
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}

		return data, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s", constants.ErrNotRegularFile, path)
	}

	// path is an explicit user argument
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	return data, nil
}
