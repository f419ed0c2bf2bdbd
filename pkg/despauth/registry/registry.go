// Package registry holds the static table of DESP services despauth can
// authenticate against, with per-service scope, IAM client defaults, and the
// optional token-exchange configuration.
package registry

import (
	"fmt"
	"sort"
	"strings"

	"github.com/destine-eu/despauth/pkg/despauth/auth"
	"github.com/destine-eu/despauth/pkg/despauth/config"
)

// Service describes one registered DESP service. Exchange is nil for
// services whose tokens are valid as issued by the login IAM.
type Service struct {
	Name     string
	Scope    string
	Defaults config.AuthConfig
	Exchange *config.ExchangeConfig
}

var services = map[string]Service{
	"cacheb": {
		Name:  "cacheb",
		Scope: "openid offline_access",
		Defaults: config.AuthConfig{
			IAMClient:      "edh-public",
			IAMRedirectURI: "https://cacheb.dcms.destine.eu/",
		},
	},
	"streamer": {
		Name:  "streamer",
		Scope: "openid",
		Defaults: config.AuthConfig{
			IAMClient:      "streaming-fe",
			IAMRedirectURI: "https://streamer.destine.eu/",
		},
	},
	"insula": {
		Name:  "insula",
		Scope: "openid",
		Defaults: config.AuthConfig{
			IAMClient:      "insula-public",
			IAMRedirectURI: "https://insula.destine.eu/",
		},
	},
	"eden": {
		Name:  "eden",
		Scope: "openid",
		Defaults: config.AuthConfig{
			IAMClient:      "hda-broker-public",
			IAMRedirectURI: "https://broker.eden.destine.eu/",
		},
	},
	"dea": {
		Name:  "dea",
		Scope: "openid",
		Defaults: config.AuthConfig{
			IAMClient:      "dea_client",
			IAMRedirectURI: "https://dea.destine.eu/",
		},
	},
	"highway": {
		Name:  "highway",
		Scope: "openid",
		Defaults: config.AuthConfig{
			IAMClient:      "highway-public",
			IAMRedirectURI: "https://highway.esa.int/sso/auth/realms/highway/broker/DESP_IAM_PROD/endpoint",
		},
		Exchange: &config.ExchangeConfig{
			TokenURL:      "https://highway.esa.int/sso/auth/realms/highway/protocol/openid-connect/token",
			Audience:      "highway-public",
			SubjectIssuer: "DESP_IAM_PROD",
			ClientID:      "highway-public",
		},
	},
	"polytope": {
		Name:  "polytope",
		Scope: "openid offline_access",
		Defaults: config.AuthConfig{
			IAMClient:      "polytope-api-public",
			IAMRedirectURI: "https://polytope.lumi.apps.dte.destination-earth.eu/",
		},
	},
	"hda": {
		Name:  "hda",
		Scope: "openid",
		Defaults: config.AuthConfig{
			IAMClient:      "dedl-hda",
			IAMRedirectURI: "https://hda.data.destination-earth.eu/stac",
		},
		Exchange: &config.ExchangeConfig{
			TokenURL:      "https://identity.data.destination-earth.eu/auth/realms/dedl/protocol/openid-connect/token",
			Audience:      "hda-public",
			SubjectIssuer: "desp-oidc",
			ClientID:      "hda-public",
		},
	},
}

// List returns all registered service names, sorted.
func List() []string {
	names := make([]string, 0, len(services))
	for name := range services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns the descriptor for a service name.
func Get(name string) (Service, error) {
	svc, ok := services[name]
	if !ok {
		return Service{}, &auth.ConfigurationError{
			Message: fmt.Sprintf("unknown service %q (available: %s)", name, strings.Join(List(), ", ")),
		}
	}
	return svc, nil
}

// Load builds the AuthConfig for a service in increasing precedence:
// built-in IAM defaults, the service's registry defaults and scope, the
// optional config file (empty path skips it), then DESPAUTH_* environment
// variables. CLI flags, when present, are overlaid by the caller.
func Load(name, configFile string) (*config.AuthConfig, error) {
	svc, err := Get(name)
	if err != nil {
		return nil, err
	}
	cfg := config.Default()
	cfg.Scope = svc.Scope
	defaults := svc.Defaults
	config.Merge(cfg, &defaults)
	if svc.Exchange != nil {
		exchange := *svc.Exchange
		cfg.Exchange = &exchange
	}
	if err := config.ApplyFile(cfg, configFile); err != nil {
		return nil, &auth.ConfigurationError{Message: "failed to load config file", Err: err}
	}
	if err := config.ApplyEnv(cfg); err != nil {
		return nil, &auth.ConfigurationError{Message: "failed to load environment configuration", Err: err}
	}
	return cfg, nil
}
