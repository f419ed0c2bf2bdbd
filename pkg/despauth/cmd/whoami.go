package cmd

import (
	"fmt"

	"github.com/Nerzal/gocloak/v13"
	"github.com/spf13/cobra"

	"github.com/destine-eu/despauth/pkg/despauth/output"
	"github.com/destine-eu/despauth/pkg/despauth/store"
)

func NewWhoamiCommand() *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "whoami <service>",
		Short: "Show the account behind a token via the IAM userinfo endpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			serviceName := args[0]
			cfg, err := rt.loadConfig(serviceName)
			if err != nil {
				return err
			}
			if token == "" {
				if token, err = (store.Keychain{}).Get(serviceName); err != nil {
					return err
				}
			}

			client := gocloak.NewClient(cfg.IAMURL)
			info, err := client.GetUserInfo(cmd.Context(), token, cfg.IAMRealm)
			if err != nil {
				return fmt.Errorf("userinfo request failed: %w", err)
			}

			switch format := output.Format(rt.OutputFormat()); format {
			case output.FormatJSON, output.FormatYAML:
				return output.WriteObject(rt.Writer(), format, info)
			default:
				_, _ = fmt.Fprintf(rt.Writer(), "Username: %s\nEmail:    %s\nSubject:  %s\n",
					gocloak.PString(info.PreferredUsername),
					gocloak.PString(info.Email),
					gocloak.PString(info.Sub))
				return nil
			}
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "Access token to inspect (default: token stored in the keychain)")

	return cmd
}
