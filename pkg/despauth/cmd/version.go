package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/destine-eu/despauth/pkg/despauth/output"
	"github.com/destine-eu/despauth/pkg/version"
)

func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show despauth version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			info := version.GetBuildInfo()
			switch format := output.Format(rt.OutputFormat()); format {
			case output.FormatJSON, output.FormatYAML:
				return output.WriteObject(rt.Writer(), format, info)
			default:
				_, _ = fmt.Fprintf(rt.Writer(), "despauth %s (commit: %s, built: %s)\n", info.Version, info.GitCommit, info.BuildDate)
				return nil
			}
		},
	}
}
