// Package cmd implements the cobra command tree for the despauth CLI:
// login (direct and 2FA), service listing, userinfo lookup, keychain token
// access, version, and shell completion.
package cmd
