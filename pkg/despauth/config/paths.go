package config

import (
	"os"
	"path/filepath"
)

const (
	defaultConfigDirName = "despauth"
	defaultConfigFile    = "config.yaml"
)

// DefaultConfigPath returns the path of the optional despauth config file.
func DefaultConfigPath() string {
	if env := os.Getenv("DESPAUTH_CONFIG"); env != "" {
		return env
	}
	base, err := os.UserConfigDir()
	if err == nil {
		return filepath.Join(base, defaultConfigDirName, defaultConfigFile)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, "."+defaultConfigDirName, defaultConfigFile)
}

// DefaultNetrcPath returns the netrc file used by the persisted-credential
// writer, honoring the NETRC override convention used by curl and friends.
func DefaultNetrcPath() string {
	if env := os.Getenv("NETRC"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".netrc")
}
