package commands

import (
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// VersionInfo describes the build.
type VersionInfo struct {
	Version string `json:"version" yaml:"version"`
	Commit  string `json:"commit"  yaml:"commit"`
	Built   string `json:"built"   yaml:"built"`
}

// NewVersionCommand creates the version command.
func NewVersionCommand(version, commit, date string) *cobra.Command {
	return &cobra.Command{
		Use:          "version",
		Short:        "Display version information",
		Long:         "Display detailed version information about the RidderIQ CLI",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()

			renderer := &OutputRenderer[VersionInfo]{
				RenderJSON: func(v VersionInfo) error { return StandardJSONRenderer(out, v) },
				RenderYAML: func(v VersionInfo) error { return StandardYAMLRenderer(out, v) },
				RenderTable: func(v VersionInfo) error {
					table := tablewriter.NewWriter(out)
					table.Header("Property", "Value")
					_ = table.Append("Version", v.Version)
					_ = table.Append("Commit", v.Commit)
					_ = table.Append("Built", v.Built)

					if err := table.Render(); err != nil {
						return fmt.Errorf("failed to render table: %w", err)
					}

					return nil
				},
			}

			return renderer.Render(VersionInfo{Version: version, Commit: commit, Built: date}, viper.GetString(keyOutput))
		},
	}
}
