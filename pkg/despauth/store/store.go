// Package store keeps access tokens in the operating system keychain as an
// alternative to the netrc file, keyed by service name.
package store

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const keyringService = "despauth"

// ErrNotFound is returned when no token is stored for a service.
var ErrNotFound = errors.New("no token stored for service")

// Keychain reads and writes tokens in the OS keychain.
type Keychain struct {
	// Service overrides the keyring service name; used in tests together
	// with keyring.MockInit.
	Service string
}

func (k Keychain) service() string {
	if k.Service != "" {
		return k.Service
	}
	return keyringService
}

func (k Keychain) Set(name, token string) error {
	if err := keyring.Set(k.service(), name, token); err != nil {
		return fmt.Errorf("failed to store token in keychain: %w", err)
	}
	return nil
}

func (k Keychain) Get(name string) (string, error) {
	token, err := keyring.Get(k.service(), name)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return "", fmt.Errorf("failed to read token from keychain: %w", err)
	}
	return token, nil
}

func (k Keychain) Delete(name string) error {
	if err := keyring.Delete(k.service(), name); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return fmt.Errorf("failed to delete token from keychain: %w", err)
	}
	return nil
}
