package auth

import (
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/oauth2"
)

// TokenResult is what a successful login produces. Token and Claims describe
// the final token: when an exchange was configured they belong to the
// exchanged token, otherwise to the one issued by the login IAM.
type TokenResult struct {
	Token     *oauth2.Token
	IDToken   string
	Claims    jwt.MapClaims
	Exchanged bool
}

// AccessToken returns the final access token value.
func (r *TokenResult) AccessToken() string {
	if r == nil || r.Token == nil {
		return ""
	}
	return r.Token.AccessToken
}

// DecodeClaims extracts the claims from a JWT without verifying its
// signature. The token comes straight from the IAM over TLS, which is the
// trust boundary here; the claims are decoded for display and host
// derivation, not for authorization decisions.
func DecodeClaims(token string) (jwt.MapClaims, error) {
	parser := jwt.Parser{}
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, &AuthenticationError{Message: "failed to decode token payload", Err: err}
	}
	return claims, nil
}
