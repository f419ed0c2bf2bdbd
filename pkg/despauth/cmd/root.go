package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/destine-eu/despauth/pkg/despauth/auth"
	"github.com/destine-eu/despauth/pkg/despauth/config"
	"github.com/destine-eu/despauth/pkg/despauth/registry"
)

type Config struct {
	ConfigPath   string
	OutputWriter io.Writer
}

type runtimeState struct {
	configPath     string
	outputFormat   string
	verbose        bool
	nonInteractive bool
	writer         io.Writer
	logger         *zap.Logger
	overrides      config.AuthConfig
}

type runtimeKey struct{}

func DefaultConfig() Config {
	return Config{
		ConfigPath:   config.DefaultConfigPath(),
		OutputWriter: os.Stdout,
	}
}

func NewRootCommand(cfg Config) *cobra.Command {
	rt := &runtimeState{configPath: cfg.ConfigPath, writer: cfg.OutputWriter}

	root := &cobra.Command{
		Use:   "despauth",
		Short: "Authenticate against the DESP IAM for Destination Earth services",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if rt.writer == nil {
				rt.writer = os.Stdout
			}
			if rt.configPath == "" {
				rt.configPath = config.DefaultConfigPath()
			}
			if !rt.nonInteractive {
				rt.nonInteractive = strings.EqualFold(os.Getenv("DESPAUTH_NON_INTERACTIVE"), "true")
			}
			if !rt.verbose {
				rt.verbose = strings.EqualFold(os.Getenv("DESPAUTH_VERBOSE"), "true")
			}
			logger, err := setupLogger(rt.verbose)
			if err != nil {
				return err
			}
			rt.logger = logger
			return nil
		},
	}

	root.PersistentFlags().StringVar(&rt.configPath, "config", rt.configPath, "Path to config file")
	root.PersistentFlags().StringVarP(&rt.outputFormat, "output", "o", "", "Output format: text, json, yaml")
	root.PersistentFlags().BoolVarP(&rt.verbose, "verbose", "v", false, "Enable debug logging")
	root.PersistentFlags().BoolVar(&rt.nonInteractive, "non-interactive", false, "Fail instead of prompting")
	root.PersistentFlags().StringVar(&rt.overrides.User, "user", "", "DESP username (DESPAUTH_USER)")
	root.PersistentFlags().StringVar(&rt.overrides.IAMURL, "iam-url", "", "IAM server URL")
	root.PersistentFlags().StringVar(&rt.overrides.IAMRealm, "iam-realm", "", "IAM realm")
	root.PersistentFlags().StringVar(&rt.overrides.IAMClient, "iam-client", "", "IAM client ID")
	root.PersistentFlags().StringVar(&rt.overrides.IAMRedirectURI, "redirect-uri", "", "Redirect URI")
	root.PersistentFlags().StringVar(&rt.overrides.Scope, "scope", "", "OAuth2 scope")
	root.PersistentFlags().StringVar(&rt.overrides.NetrcHost, "netrc-host", "", "Host override for the netrc entry")

	root.SetContext(context.WithValue(context.Background(), runtimeKey{}, rt))

	root.AddCommand(
		NewLoginCommand(),
		NewServicesCommand(),
		NewWhoamiCommand(),
		NewTokenCommand(),
		NewVersionCommand(),
		NewCompletionCommand(),
	)

	return root
}

func getRuntime(cmd *cobra.Command) (*runtimeState, error) {
	rt, ok := cmd.Context().Value(runtimeKey{}).(*runtimeState)
	if !ok || rt == nil {
		return nil, errors.New("runtime not initialized")
	}
	return rt, nil
}

func (rt *runtimeState) Writer() io.Writer {
	if rt.writer != nil {
		return rt.writer
	}
	return os.Stdout
}

func (rt *runtimeState) OutputFormat() string {
	if rt.outputFormat != "" {
		return rt.outputFormat
	}
	return "text"
}

// loadConfig assembles the effective config for a service: registry defaults,
// config file, environment, then CLI flag overrides.
func (rt *runtimeState) loadConfig(service string) (*config.AuthConfig, error) {
	cfg, err := registry.Load(service, rt.configPath)
	if err != nil {
		return nil, err
	}
	overrides := rt.overrides
	config.Merge(cfg, &overrides)
	return cfg, nil
}

// credentialSource picks prompting or fail-fast resolution depending on
// --non-interactive.
func (rt *runtimeState) credentialSource() auth.CredentialSource {
	if rt.nonInteractive {
		return &auth.StaticSource{}
	}
	return &auth.TerminalSource{Out: os.Stderr}
}

func setupLogger(verbose bool) (*zap.Logger, error) {
	var logger *zap.Logger
	var err error
	if verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, fmt.Errorf("unable to create logger: %w", err)
	}
	return logger, nil
}
