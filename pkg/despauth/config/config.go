package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	env "github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v2"
)

// EnvPrefix is prepended to every environment variable consumed by despauth,
// e.g. DESPAUTH_USER, DESPAUTH_PASSWORD, DESPAUTH_IAM_URL.
const EnvPrefix = "DESPAUTH_"

const (
	DefaultIAMURL   = "https://auth.destine.eu"
	DefaultIAMRealm = "desp"
	DefaultScope    = "openid"
)

// AuthConfig carries everything one login run needs. It is assembled from
// (in increasing precedence) built-in defaults, the service registry, the
// optional config file, DESPAUTH_* environment variables, and CLI flags, and
// is not mutated once the authentication service starts.
type AuthConfig struct {
	User           string `env:"USER" yaml:"user,omitempty"`
	Password       string `env:"PASSWORD" yaml:"-"`
	IAMURL         string `env:"IAM_URL" yaml:"iam-url,omitempty"`
	IAMRealm       string `env:"REALM" yaml:"iam-realm,omitempty"`
	IAMClient      string `env:"CLIENT_ID" yaml:"iam-client,omitempty"`
	IAMRedirectURI string `env:"REDIRECT_URI" yaml:"iam-redirect-uri,omitempty"`
	Scope          string `env:"SCOPE" yaml:"scope,omitempty"`
	NetrcHost      string `env:"NETRC_HOST" yaml:"netrc-host,omitempty"`

	// Exchange, when non-nil, enables the RFC 8693 token-exchange step after
	// login. Optional field rather than a callback so the engine's behavior
	// stays inspectable.
	Exchange *ExchangeConfig `yaml:"exchange,omitempty"`
}

// ExchangeConfig configures the token-exchange step for services that
// validate tokens against a different issuer than the login IAM.
type ExchangeConfig struct {
	TokenURL      string `env:"TOKEN_URL" yaml:"token-url,omitempty"`
	Audience      string `env:"AUDIENCE" yaml:"audience,omitempty"`
	SubjectIssuer string `env:"SUBJECT_ISSUER" yaml:"subject-issuer,omitempty"`
	ClientID      string `env:"CLIENT_ID" yaml:"client-id,omitempty"`
}

// Default returns an AuthConfig carrying the built-in IAM defaults.
func Default() *AuthConfig {
	return &AuthConfig{
		IAMURL:   DefaultIAMURL,
		IAMRealm: DefaultIAMRealm,
		Scope:    DefaultScope,
	}
}

// ApplyEnv overlays DESPAUTH_* environment variables onto cfg. Exchange
// fields are only read from the environment when an exchange is already
// configured; the environment cannot turn the exchange step on by itself.
func ApplyEnv(cfg *AuthConfig) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("failed to parse environment: %w", err)
	}
	if cfg.Exchange != nil {
		if err := env.ParseWithOptions(cfg.Exchange, env.Options{Prefix: EnvPrefix}); err != nil {
			return fmt.Errorf("failed to parse exchange environment: %w", err)
		}
	}
	return nil
}

// ApplyFile overlays a YAML config file onto cfg. A missing file is not an
// error; the file is strictly optional.
func ApplyFile(cfg *AuthConfig, path string) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	if path == "" {
		return nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	var overlay AuthConfig
	if err := yaml.Unmarshal(content, &overlay); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	Merge(cfg, &overlay)
	return nil
}

// Merge copies every non-empty field of src over dst.
func Merge(dst, src *AuthConfig) {
	if dst == nil || src == nil {
		return
	}
	if src.User != "" {
		dst.User = src.User
	}
	if src.Password != "" {
		dst.Password = src.Password
	}
	if src.IAMURL != "" {
		dst.IAMURL = src.IAMURL
	}
	if src.IAMRealm != "" {
		dst.IAMRealm = src.IAMRealm
	}
	if src.IAMClient != "" {
		dst.IAMClient = src.IAMClient
	}
	if src.IAMRedirectURI != "" {
		dst.IAMRedirectURI = src.IAMRedirectURI
	}
	if src.Scope != "" {
		dst.Scope = src.Scope
	}
	if src.NetrcHost != "" {
		dst.NetrcHost = src.NetrcHost
	}
	if src.Exchange != nil {
		if dst.Exchange == nil {
			dst.Exchange = &ExchangeConfig{}
		}
		if src.Exchange.TokenURL != "" {
			dst.Exchange.TokenURL = src.Exchange.TokenURL
		}
		if src.Exchange.Audience != "" {
			dst.Exchange.Audience = src.Exchange.Audience
		}
		if src.Exchange.SubjectIssuer != "" {
			dst.Exchange.SubjectIssuer = src.Exchange.SubjectIssuer
		}
		if src.Exchange.ClientID != "" {
			dst.Exchange.ClientID = src.Exchange.ClientID
		}
	}
}

// TokenEndpoint returns the Keycloak-style token endpoint for the configured
// IAM server and realm.
func (c *AuthConfig) TokenEndpoint() string {
	return fmt.Sprintf("%s/realms/%s/protocol/openid-connect/token",
		strings.TrimRight(c.IAMURL, "/"), c.IAMRealm)
}

// ResolveNetrcHost returns the host the netrc entry is keyed by: the explicit
// override when set, otherwise the hostname of the redirect URI.
func (c *AuthConfig) ResolveNetrcHost() (string, error) {
	if c.NetrcHost != "" {
		return c.NetrcHost, nil
	}
	if c.IAMRedirectURI == "" {
		return "", errors.New("cannot derive netrc host: no redirect URI configured")
	}
	parsed, err := url.Parse(c.IAMRedirectURI)
	if err != nil {
		return "", fmt.Errorf("cannot derive netrc host from redirect URI: %w", err)
	}
	host := parsed.Hostname()
	if host == "" {
		return "", fmt.Errorf("cannot derive netrc host from redirect URI %q", c.IAMRedirectURI)
	}
	return host, nil
}

// Validate checks that the fields required for a direct grant are present.
func (c *AuthConfig) Validate() error {
	if c.IAMURL == "" {
		return errors.New("iam-url is required")
	}
	if c.IAMRealm == "" {
		return errors.New("iam-realm is required")
	}
	if c.IAMClient == "" {
		return errors.New("iam-client is required")
	}
	return nil
}
