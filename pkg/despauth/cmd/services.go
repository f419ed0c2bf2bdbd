package cmd

import (
	"github.com/spf13/cobra"

	"github.com/destine-eu/despauth/pkg/despauth/output"
	"github.com/destine-eu/despauth/pkg/despauth/registry"
)

func NewServicesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "services",
		Short: "List registered DESP services",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			rows := make([]output.ServiceRow, 0, len(registry.List()))
			for _, name := range registry.List() {
				svc, err := registry.Get(name)
				if err != nil {
					return err
				}
				rows = append(rows, output.ServiceRow{
					Name:        svc.Name,
					Scope:       svc.Scope,
					Client:      svc.Defaults.IAMClient,
					RedirectURI: svc.Defaults.IAMRedirectURI,
					Exchange:    svc.Exchange != nil,
				})
			}
			switch format := output.Format(rt.OutputFormat()); format {
			case output.FormatJSON, output.FormatYAML:
				return output.WriteObject(rt.Writer(), format, rows)
			default:
				output.WriteServiceTable(rt.Writer(), rows)
				return nil
			}
		},
	}
}
