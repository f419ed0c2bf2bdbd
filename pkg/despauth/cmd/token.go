package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/destine-eu/despauth/pkg/despauth/store"
)

func NewTokenCommand() *cobra.Command {
	var remove bool

	cmd := &cobra.Command{
		Use:   "token <service>",
		Short: "Print or delete a token stored in the system keychain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			keychain := store.Keychain{}
			if remove {
				if err := keychain.Delete(args[0]); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(rt.Writer(), "Token for %s removed from the system keychain\n", args[0])
				return nil
			}
			token, err := keychain.Get(args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(rt.Writer(), token)
			return nil
		},
	}

	cmd.Flags().BoolVar(&remove, "delete", false, "Remove the stored token instead of printing it")

	return cmd
}
