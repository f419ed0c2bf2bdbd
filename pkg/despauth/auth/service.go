package auth

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/destine-eu/despauth/pkg/despauth/config"
	"github.com/destine-eu/despauth/pkg/despauth/netrc"
)

const defaultHTTPTimeout = 30 * time.Second

// CredentialWriter persists the final token for a host. Satisfied by
// netrc.Writer; swappable in tests.
type CredentialWriter interface {
	Upsert(host, token string) error
}

// Service runs one login flow end to end: resolve credentials, perform the
// direct (or 2FA) grant, exchange the token when configured, persist it when
// requested. A Service holds no token state between calls and performs no
// retries; concurrent calls for different users are independent.
type Service struct {
	Config      *config.AuthConfig
	Credentials CredentialSource // default: TerminalSource
	HTTPClient  *http.Client     // default: 30s timeout
	Writer      CredentialWriter // default: netrc.Writer at the conventional path
	Logger      *zap.Logger      // default: zap.NewNop()
}

type loginOptions struct {
	writeNetrc bool
	twoFA      bool
	otp        string
}

// Login authenticates with the direct resource-owner grant. When writeNetrc
// is true the token is persisted and the returned result is nil so the
// secret does not leak into logs or terminals.
func (s *Service) Login(ctx context.Context, writeNetrc bool) (*TokenResult, error) {
	result, err := s.login(ctx, loginOptions{writeNetrc: writeNetrc})
	if err != nil || writeNetrc {
		return nil, err
	}
	return result, nil
}

// Login2FA authenticates with the explicit 2FA flow: the first grant request
// is identical to Login; if the server challenges for a one-time password a
// second request carries it (otp argument, or an interactive prompt when
// empty). A server that does not challenge completes in a single call and
// never needs the otp.
func (s *Service) Login2FA(ctx context.Context, writeNetrc bool, otp string) (*TokenResult, error) {
	result, err := s.login(ctx, loginOptions{writeNetrc: writeNetrc, twoFA: true, otp: otp})
	if err != nil || writeNetrc {
		return nil, err
	}
	return result, nil
}

// login always produces a full result on success, regardless of writeNetrc;
// the exported methods decide what the caller gets to see.
func (s *Service) login(ctx context.Context, opts loginOptions) (*TokenResult, error) {
	cfg := s.Config
	if cfg == nil {
		return nil, &ConfigurationError{Message: "no configuration provided"}
	}
	if err := cfg.Validate(); err != nil {
		return nil, &ConfigurationError{Message: "incomplete configuration", Err: err}
	}

	log := s.logger().With(zap.String("attempt", uuid.NewString()))

	creds, err := s.source().Credentials(cfg)
	if err != nil {
		return nil, err
	}
	log.Debug("credentials resolved", zap.String("username", creds.Username))

	resp, err := s.grantRequest(ctx, creds, "")
	if err != nil {
		return nil, err
	}

	if opts.twoFA && resp.otpChallenge() {
		otp := opts.otp
		if otp == "" {
			if otp, err = s.source().OTP(); err != nil {
				return nil, err
			}
		}
		log.Debug("submitting one-time password")
		if resp, err = s.grantRequest(ctx, creds, otp); err != nil {
			return nil, err
		}
	}

	if !resp.succeeded() {
		log.Debug("grant rejected", zap.Int("status", resp.status), zap.String("error", resp.Error))
		return nil, &AuthenticationError{Message: "authentication failed: " + resp.errorMessage()}
	}
	log.Debug("access token received")

	claims, err := DecodeClaims(resp.AccessToken)
	if err != nil {
		return nil, err
	}
	result := &TokenResult{Token: resp.token(), IDToken: resp.IDToken, Claims: claims}

	if cfg.Exchange != nil {
		exchanged, err := Exchange(ctx, s.client(), ExchangeRequest{
			TokenURL:      cfg.Exchange.TokenURL,
			SubjectToken:  resp.AccessToken,
			ClientID:      cfg.Exchange.ClientID,
			Audience:      cfg.Exchange.Audience,
			SubjectIssuer: cfg.Exchange.SubjectIssuer,
		})
		if err != nil {
			return nil, err
		}
		log.Debug("token exchanged", zap.String("audience", cfg.Exchange.Audience))
		if result.Claims, err = DecodeClaims(exchanged); err != nil {
			return nil, err
		}
		result.Token = &oauth2.Token{AccessToken: exchanged, TokenType: "Bearer"}
		result.Exchanged = true
	}

	if opts.writeNetrc {
		host, err := cfg.ResolveNetrcHost()
		if err != nil {
			return nil, &ConfigurationError{Message: "cannot persist token", Err: err}
		}
		if err := s.writer().Upsert(host, result.AccessToken()); err != nil {
			return nil, err
		}
		log.Info("token persisted", zap.String("host", host))
	}

	return result, nil
}

func (s *Service) grantRequest(ctx context.Context, creds Credentials, otp string) (*tokenResponse, error) {
	cfg := s.Config
	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("client_id", cfg.IAMClient)
	form.Set("scope", cfg.Scope)
	form.Set("username", creds.Username)
	form.Set("password", creds.Password)
	if cfg.IAMRedirectURI != "" {
		form.Set("redirect_uri", cfg.IAMRedirectURI)
	}
	if otp != "" {
		form.Set("totp", otp)
	}
	return postTokenRequest(ctx, s.client(), cfg.TokenEndpoint(), form)
}

func (s *Service) source() CredentialSource {
	if s.Credentials != nil {
		return s.Credentials
	}
	return &TerminalSource{}
}

func (s *Service) client() *http.Client {
	if s.HTTPClient != nil {
		return s.HTTPClient
	}
	return &http.Client{Timeout: defaultHTTPTimeout}
}

func (s *Service) writer() CredentialWriter {
	if s.Writer != nil {
		return s.Writer
	}
	return &netrc.Writer{Path: config.DefaultNetrcPath()}
}

func (s *Service) logger() *zap.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return zap.NewNop()
}
