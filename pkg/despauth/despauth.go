// Package despauth is the high-level entry point for authenticating against
// the DESP IAM on behalf of a registered service.
package despauth

import (
	"context"

	"go.uber.org/zap"

	"github.com/destine-eu/despauth/pkg/despauth/auth"
	"github.com/destine-eu/despauth/pkg/despauth/config"
	"github.com/destine-eu/despauth/pkg/despauth/registry"
)

// Options controls one GetToken call.
type Options struct {
	// Service is the registered service name, e.g. "highway" or "eden".
	Service string
	// WriteNetrc persists the token to the user's netrc file instead of
	// returning it.
	WriteNetrc bool
	// TwoFA uses the explicit 2FA login flow.
	TwoFA bool
	// OTP is the one-time password for non-interactive 2FA; when empty and
	// the server challenges, the terminal is prompted.
	OTP string
	// Logger receives debug/info events; nil disables logging.
	Logger *zap.Logger
}

// GetToken authenticates against the DESP IAM for a service and returns the
// resulting token. Credentials come from DESPAUTH_USER/DESPAUTH_PASSWORD or
// an interactive masked prompt. The returned result is nil when WriteNetrc is
// set, so the secret is not echoed to logs or terminals.
func GetToken(ctx context.Context, opts Options) (*auth.TokenResult, error) {
	cfg, err := registry.Load(opts.Service, config.DefaultConfigPath())
	if err != nil {
		return nil, err
	}
	service := &auth.Service{Config: cfg, Logger: opts.Logger}
	if opts.TwoFA {
		return service.Login2FA(ctx, opts.WriteNetrc, opts.OTP)
	}
	return service.Login(ctx, opts.WriteNetrc)
}
