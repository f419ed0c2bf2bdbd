package cmd

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/spf13/cobra"

	"github.com/destine-eu/despauth/pkg/despauth/auth"
	"github.com/destine-eu/despauth/pkg/despauth/config"
	"github.com/destine-eu/despauth/pkg/despauth/output"
	"github.com/destine-eu/despauth/pkg/despauth/store"
)

type loginResult struct {
	AccessToken string       `json:"access_token" yaml:"access-token"`
	TokenType   string       `json:"token_type,omitempty" yaml:"token-type,omitempty"`
	ExpiresAt   string       `json:"expires_at,omitempty" yaml:"expires-at,omitempty"`
	Exchanged   bool         `json:"exchanged" yaml:"exchanged"`
	Claims      jwt.MapClaims `json:"claims,omitempty" yaml:"claims,omitempty"`
}

func NewLoginCommand() *cobra.Command {
	var (
		writeNetrc  bool
		twoFA       bool
		useKeychain bool
		otp         string
	)

	cmd := &cobra.Command{
		Use:   "login <service>",
		Short: "Authenticate and obtain an access token for a DESP service",
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

			service := &auth.Service{
				Config:      cfg,
				Credentials: rt.credentialSource(),
				Logger:      rt.logger,
			}

			ctx := cmd.Context()
			var result *auth.TokenResult
			if twoFA {
				result, err = service.Login2FA(ctx, writeNetrc, otp)
			} else {
				result, err = service.Login(ctx, writeNetrc)
			}
			if err != nil {
				return err
			}

			if writeNetrc {
				host, _ := cfg.ResolveNetrcHost()
				_, _ = fmt.Fprintf(rt.Writer(), "Token for %s written to %s\n", host, config.DefaultNetrcPath())
				return nil
			}
			if useKeychain {
				if err := (store.Keychain{}).Set(serviceName, result.AccessToken()); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(rt.Writer(), "Token for %s stored in the system keychain\n", serviceName)
				return nil
			}
			return writeLoginResult(rt, result)
		},
	}

	cmd.Flags().BoolVar(&writeNetrc, "netrc", false, "Write the token to the netrc file instead of printing it")
	cmd.Flags().BoolVar(&useKeychain, "keyring", false, "Store the token in the OS keychain instead of printing it")
	cmd.Flags().BoolVar(&twoFA, "2fa", false, "Use the explicit 2FA (OTP) login flow")
	cmd.Flags().StringVar(&otp, "otp", "", "One-time password for non-interactive 2FA")

	return cmd
}

func writeLoginResult(rt *runtimeState, result *auth.TokenResult) error {
	switch format := output.Format(rt.OutputFormat()); format {
	case output.FormatJSON, output.FormatYAML:
		out := loginResult{
			AccessToken: result.AccessToken(),
			Exchanged:   result.Exchanged,
			Claims:      result.Claims,
		}
		if result.Token != nil {
			out.TokenType = result.Token.TokenType
			if !result.Token.Expiry.IsZero() {
				out.ExpiresAt = result.Token.Expiry.UTC().Format(time.RFC3339)
			}
		}
		return output.WriteObject(rt.Writer(), format, out)
	default:
		// Bare token on stdout so the output can be piped into other tools.
		_, err := fmt.Fprintln(rt.Writer(), result.AccessToken())
		return err
	}
}
