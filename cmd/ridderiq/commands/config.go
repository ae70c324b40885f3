package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/ridderiq-client/internal/constants"
	"github.com/fivetwenty-io/ridderiq-client/pkg/ridderiq"
)

// Configuration keys. Each maps to a RIDDERIQ_* environment variable.
const (
	keyBaseURL          = "base_url"
	keyTenantID         = "tenant_id"
	keyAdministrationID = "administration_id"
	keyAPIKey           = "api_key"
	keyOutput           = "output"
	keyLogLevel         = "log_level"
	keyVerbose          = "verbose"
	keyTimeout          = "timeout"
	keyRetryMax         = "retry_max"
	keyRate             = "rate"
	keyNATSURL          = "nats_url"
	keyNATSSubject      = "nats_subject"
)

// Config represents the persisted CLI configuration. The API key is never written.
type Config struct {
	BaseURL          string `json:"base_url,omitempty"          yaml:"base_url,omitempty"`
	TenantID         string `json:"tenant_id,omitempty"         yaml:"tenant_id,omitempty"`
	AdministrationID string `json:"administration_id,omitempty" yaml:"administration_id,omitempty"`
	Output           string `json:"output,omitempty"            yaml:"output,omitempty"`
	LogLevel         string `json:"log_level,omitempty"         yaml:"log_level,omitempty"`
	Timeout          string `json:"timeout,omitempty"           yaml:"timeout,omitempty"`
	RetryMax         string `json:"retry_max,omitempty"         yaml:"retry_max,omitempty"`
	Rate             string `json:"rate,omitempty"              yaml:"rate,omitempty"`
	NATSURL          string `json:"nats_url,omitempty"          yaml:"nats_url,omitempty"`
	NATSSubject      string `json:"nats_subject,omitempty"      yaml:"nats_subject,omitempty"`
}

type configField struct {
	get      func(*Config) string
	set      func(*Config, string)
	validate func(string) error
}

var configFields = map[string]configField{
	keyBaseURL: {
		get: func(c *Config) string { return c.BaseURL },
		set: func(c *Config, v string) { c.BaseURL = v },
	},
	keyTenantID: {
		get: func(c *Config) string { return c.TenantID },
		set: func(c *Config, v string) { c.TenantID = v },
	},
	keyAdministrationID: {
		get: func(c *Config) string { return c.AdministrationID },
		set: func(c *Config, v string) { c.AdministrationID = v },
	},
	keyOutput: {
		get:      func(c *Config) string { return c.Output },
		set:      func(c *Config, v string) { c.Output = v },
		validate: validateOutput,
	},
	keyLogLevel: {
		get: func(c *Config) string { return c.LogLevel },
		set: func(c *Config, v string) { c.LogLevel = v },
	},
	keyTimeout: {
		get: func(c *Config) string { return c.Timeout },
		set: func(c *Config, v string) { c.Timeout = v },
		validate: func(v string) error {
			_, err := time.ParseDuration(v)

			return err
		},
	},
	keyRetryMax: {
		get: func(c *Config) string { return c.RetryMax },
		set: func(c *Config, v string) { c.RetryMax = v },
		validate: func(v string) error {
			_, err := strconv.Atoi(v)

			return err
		},
	},
	keyRate: {
		get: func(c *Config) string { return c.Rate },
		set: func(c *Config, v string) { c.Rate = v },
		validate: func(v string) error {
			_, err := strconv.ParseFloat(v, 64)

			return err
		},
	},
	keyNATSURL: {
		get: func(c *Config) string { return c.NATSURL },
		set: func(c *Config, v string) { c.NATSURL = v },
	},
	keyNATSSubject: {
		get: func(c *Config) string { return c.NATSSubject },
		set: func(c *Config, v string) { c.NATSSubject = v },
	},
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "config",
		Short:        "Manage CLI configuration",
		Long:         "Manage the RidderIQ connection settings stored in the config file",
		SilenceUsage: true,
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigUnsetCommand())
	cmd.AddCommand(newConfigClearCommand())

	return cmd
}

// configView is what config show prints: the effective values including the masked key.
type configView struct {
	Config `yaml:",inline"`

	APIKey     string `json:"api_key"     yaml:"api_key"`
	ConfigFile string `json:"config_file" yaml:"config_file"`
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the effective configuration from file, environment and flags. The API key is masked.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			view := configView{
				Config:     *effectiveConfig(),
				APIKey:     constants.NotAvailable,
				ConfigFile: viper.ConfigFileUsed(),
			}

			if key := viper.GetString(keyAPIKey); key != "" {
				view.APIKey = ridderiq.MaskSecret(key)
			}

			renderer := &OutputRenderer[configView]{
				RenderJSON:  func(v configView) error { return StandardJSONRenderer(cmd.OutOrStdout(), v) },
				RenderYAML:  func(v configView) error { return StandardYAMLRenderer(cmd.OutOrStdout(), v) },
				RenderTable: func(v configView) error { return renderConfigTable(cmd.OutOrStdout(), v) },
			}

			return renderer.Render(view, viper.GetString(keyOutput))
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long:  "Set a configuration value. Known keys: " + knownKeys(),
		Args:  cobra.ExactArgs(2), //nolint:mnd // key and value
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]

			field, err := lookupField(key)
			if err != nil {
				return err
			}

			if field.validate != nil {
				if err := field.validate(value); err != nil {
					return fmt.Errorf("invalid value for %s: %w", key, err)
				}
			}

			config := loadConfig()
			field.set(config, value)

			if err := saveConfigStruct(config); err != nil {
				return err
			}

			viper.Set(key, value)

			return outputConfigUpdateResult(cmd.OutOrStdout(), "Set", key, value)
		},
	}
}

func newConfigUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset KEY",
		Short: "Unset a configuration value",
		Long:  "Remove a configuration value from the config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]

			field, err := lookupField(key)
			if err != nil {
				return err
			}

			config := loadConfig()
			field.set(config, "")

			if err := saveConfigStruct(config); err != nil {
				return err
			}

			return outputConfigUpdateResult(cmd.OutOrStdout(), "Unset", key, "")
		},
	}
}

func newConfigClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear configuration",
		Long:  "Remove the config file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			configFile, err := configFilePath()
			if err != nil {
				return err
			}

			err = os.Remove(configFile)
			if err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("failed to remove config file: %w", err)
			}

			return outputConfigUpdateResult(cmd.OutOrStdout(), "Cleared", "all configuration", "")
		},
	}
}

func lookupField(key string) (configField, error) {
	if key == keyAPIKey {
		return configField{}, constants.ErrSecretNotSettable
	}

	field, ok := configFields[key]
	if !ok {
		return configField{}, fmt.Errorf("%w: %s (known keys: %s)", constants.ErrUnknownConfigKey, key, knownKeys())
	}

	return field, nil
}

func knownKeys() string {
	keys := make([]string, 0, len(configFields))
	for key := range configFields {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return strings.Join(keys, ", ")
}

func validateOutput(value string) error {
	switch value {
	case constants.FormatJSON, constants.FormatYAML, constants.FormatTable:
		return nil
	default:
		return constants.ErrInvalidOutputValue
	}
}

// loadConfig reads the persisted values only, ignoring environment and flags.
func loadConfig() *Config {
	config := &Config{}

	configFile, err := configFilePath()
	if err != nil {
		return config
	}

	// configFile is derived from the --config flag or the user's home directory
	// #nosec G304
	data, err := os.ReadFile(configFile)
	if err != nil {
		return config
	}

	_ = yaml.Unmarshal(data, config)

	return config
}

// effectiveConfig merges file, environment and flag values through viper.
func effectiveConfig() *Config {
	config := &Config{}

	for key, field := range configFields {
		field.set(config, viper.GetString(key))
	}

	return config
}

func configFilePath() (string, error) {
	if configFile := viper.ConfigFileUsed(); configFile != "" {
		return configFile, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("%w: %w", constants.ErrConfigDirNotFound, err)
	}

	return filepath.Join(home, constants.ConfigDirName, constants.ConfigFileName+"."+constants.ConfigFileType), nil
}

func saveConfigStruct(config *Config) error {
	configFile, err := configFilePath()
	if err != nil {
		return err
	}

	err = os.MkdirAll(filepath.Dir(configFile), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	err = os.WriteFile(configFile, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func renderConfigTable(out io.Writer, view configView) error {
	table := tablewriter.NewWriter(out)
	table.Header("Property", "Value")

	keys := make([]string, 0, len(configFields))
	for key := range configFields {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	for _, key := range keys {
		value := configFields[key].get(&view.Config)
		if value == "" {
			value = constants.NotAvailable
		}

		_ = table.Append([]string{key, value})
	}

	_ = table.Append([]string{keyAPIKey, view.APIKey})
	_ = table.Append([]string{"config_file", valueOrNA(view.ConfigFile)})

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

func outputConfigUpdateResult(out io.Writer, action, key, value string) error {
	result := map[string]string{
		"action": action,
		"key":    key,
	}

	if value != "" {
		result["value"] = value
	}

	switch viper.GetString(keyOutput) {
	case constants.FormatJSON:
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")

		return encoder.Encode(result)
	case constants.FormatYAML:
		return yaml.NewEncoder(out).Encode(result)
	default:
		if value != "" {
			_, _ = fmt.Fprintf(out, "%s %s = %s\n", action, key, value)
		} else {
			_, _ = fmt.Fprintf(out, "%s %s\n", action, key)
		}

		return nil
	}
}

func valueOrNA(value string) string {
	if value == "" {
		return constants.NotAvailable
	}

	return value
}
