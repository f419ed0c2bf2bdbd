package auth

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

const maxErrorBodyLen = 200

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	IDToken      string `json:"id_token,omitempty"`
	TokenType    string `json:"token_type,omitempty"`
	ExpiresIn    int    `json:"expires_in,omitempty"`
	Error        string `json:"error,omitempty"`
	ErrorDesc    string `json:"error_description,omitempty"`

	status int
	raw    string
}

func (t *tokenResponse) succeeded() bool {
	return t.status >= 200 && t.status < 300 && t.AccessToken != ""
}

// otpChallenge reports whether the response asks for a one-time password
// rather than rejecting the credentials outright. Keycloak signals a missing
// or invalid OTP on the direct grant as invalid_grant with a totp-specific
// description; some deployments answer 2xx without a token instead.
func (t *tokenResponse) otpChallenge() bool {
	if t.status >= 200 && t.status < 300 && t.AccessToken == "" {
		return true
	}
	if t.Error == "invalid_grant" {
		desc := strings.ToLower(t.ErrorDesc)
		return strings.Contains(desc, "totp") || strings.Contains(desc, "otp") || strings.Contains(desc, "one-time")
	}
	return false
}

// errorMessage describes a grant that did not produce a token, preferring
// the server-reported description over the raw body.
func (t *tokenResponse) errorMessage() string {
	msg := t.ErrorDesc
	if msg == "" {
		msg = t.Error
	}
	if msg == "" {
		msg = strings.TrimSpace(t.raw)
		if len(msg) > maxErrorBodyLen {
			msg = msg[:maxErrorBodyLen]
		}
	}
	if msg == "" {
		msg = http.StatusText(t.status)
	}
	return msg
}

func (t *tokenResponse) token() *oauth2.Token {
	tok := &oauth2.Token{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		TokenType:    t.TokenType,
	}
	if t.ExpiresIn > 0 {
		tok.Expiry = time.Now().Add(time.Duration(t.ExpiresIn) * time.Second)
	}
	return tok
}

// postTokenRequest sends a form-encoded POST to an OAuth2 token endpoint and
// decodes the response without judging it; callers inspect status and fields.
func postTokenRequest(ctx context.Context, client *http.Client, endpoint string, form url.Values) (*tokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &AuthenticationError{Message: "failed to build token request", Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := client.Do(req)
	if err != nil {
		return nil, &AuthenticationError{Message: "token endpoint unreachable", Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &AuthenticationError{Message: "failed to read token response", Err: err}
	}

	payload := &tokenResponse{status: resp.StatusCode, raw: string(body)}
	// Non-JSON bodies are kept verbatim in raw for error reporting.
	_ = json.Unmarshal(body, payload)
	return payload, nil
}
