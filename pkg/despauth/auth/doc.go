// Package auth implements the DESP authentication engine: credential
// resolution, the direct and 2FA/OTP login flows against the IAM token
// endpoint, RFC 8693 token exchange, and unverified claim decoding.
package auth
