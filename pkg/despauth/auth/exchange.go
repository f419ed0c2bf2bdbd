package auth

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

const (
	// GrantTypeTokenExchange is the RFC 8693 token-exchange grant type.
	GrantTypeTokenExchange = "urn:ietf:params:oauth:grant-type:token-exchange"
	// SubjectTokenTypeAccessToken identifies the subject token as an OAuth2
	// access token.
	SubjectTokenTypeAccessToken = "urn:ietf:params:oauth:token-type:access_token"

	defaultExchangeTimeout = 10 * time.Second
)

// ExchangeRequest describes one RFC 8693 token exchange: converting a token
// issued by the login IAM into one valid for a service that trusts a
// different issuer or audience.
type ExchangeRequest struct {
	TokenURL         string
	SubjectToken     string
	ClientID         string
	Audience         string
	SubjectIssuer    string
	SubjectTokenType string        // defaults to SubjectTokenTypeAccessToken
	Timeout          time.Duration // defaults to 10s
}

// Exchange performs the token-exchange grant and returns the exchanged access
// token. A non-200 response or a missing access_token field is an
// AuthenticationError carrying the server's error description when one could
// be parsed. Single attempt, no retry.
func Exchange(ctx context.Context, client *http.Client, req ExchangeRequest) (string, error) {
	if req.TokenURL == "" {
		return "", &ConfigurationError{Message: "exchange token URL is required"}
	}
	subjectTokenType := req.SubjectTokenType
	if subjectTokenType == "" {
		subjectTokenType = SubjectTokenTypeAccessToken
	}
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = defaultExchangeTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	form := url.Values{}
	form.Set("grant_type", GrantTypeTokenExchange)
	form.Set("subject_token", req.SubjectToken)
	form.Set("subject_issuer", req.SubjectIssuer)
	form.Set("subject_token_type", subjectTokenType)
	form.Set("client_id", req.ClientID)
	form.Set("audience", req.Audience)

	resp, err := postTokenRequest(ctx, client, req.TokenURL, form)
	if err != nil {
		return "", err
	}
	if resp.status != http.StatusOK || resp.AccessToken == "" {
		return "", &AuthenticationError{Message: "token exchange failed: " + resp.errorMessage()}
	}
	return resp.AccessToken, nil
}
