package auth

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/destine-eu/despauth/pkg/despauth/config"
)

// Credentials holds a username/password pair. The password is consumed by the
// grant request and discarded; it is never logged and never part of a result.
type Credentials struct {
	Username string
	Password string
}

// CredentialSource supplies credentials and one-time passwords to the
// authentication service. Implementations decide whether values come from
// configuration, the environment, or an interactive prompt, which keeps the
// engine deterministic under test.
type CredentialSource interface {
	Credentials(cfg *config.AuthConfig) (Credentials, error)
	OTP() (string, error)
}

// TerminalSource resolves credentials from the config (already merged from
// environment, file and flags) and prompts on the terminal for anything still
// missing. The password prompt disables terminal echo.
type TerminalSource struct {
	In  *os.File
	Out io.Writer
}

func (s *TerminalSource) input() *os.File {
	if s.In != nil {
		return s.In
	}
	return os.Stdin
}

func (s *TerminalSource) output() io.Writer {
	if s.Out != nil {
		return s.Out
	}
	return os.Stderr
}

func (s *TerminalSource) interactive() bool {
	return term.IsTerminal(int(s.input().Fd()))
}

func (s *TerminalSource) Credentials(cfg *config.AuthConfig) (Credentials, error) {
	creds := Credentials{Username: cfg.User, Password: cfg.Password}
	if creds.Username != "" && creds.Password != "" {
		return creds, nil
	}
	if !s.interactive() {
		return Credentials{}, &AuthenticationError{
			Message: "credentials not configured (DESPAUTH_USER/DESPAUTH_PASSWORD) and no terminal available for prompting",
		}
	}
	if creds.Username == "" {
		username, err := s.readLine("Username: ")
		if err != nil {
			return Credentials{}, &AuthenticationError{Message: "failed to read username", Err: err}
		}
		creds.Username = username
	}
	if creds.Password == "" {
		password, err := s.readSecret("Password: ")
		if err != nil {
			return Credentials{}, &AuthenticationError{Message: "failed to read password", Err: err}
		}
		creds.Password = password
	}
	return creds, nil
}

func (s *TerminalSource) OTP() (string, error) {
	if !s.interactive() {
		return "", &AuthenticationError{
			Message: "server requires a one-time password and no terminal is available for prompting",
		}
	}
	otp, err := s.readSecret("One-time password: ")
	if err != nil {
		return "", &AuthenticationError{Message: "failed to read one-time password", Err: err}
	}
	return otp, nil
}

func (s *TerminalSource) readLine(prompt string) (string, error) {
	_, _ = fmt.Fprint(s.output(), prompt)
	reader := bufio.NewReader(s.input())
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (s *TerminalSource) readSecret(prompt string) (string, error) {
	_, _ = fmt.Fprint(s.output(), prompt)
	secret, err := term.ReadPassword(int(s.input().Fd()))
	_, _ = fmt.Fprintln(s.output())
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(secret)), nil
}

// StaticSource returns fixed values. It backs the non-interactive OTP path
// and is handy in tests.
type StaticSource struct {
	Username string
	Password string
	OTPCode  string
}

func (s *StaticSource) Credentials(cfg *config.AuthConfig) (Credentials, error) {
	creds := Credentials{Username: cfg.User, Password: cfg.Password}
	if s.Username != "" {
		creds.Username = s.Username
	}
	if s.Password != "" {
		creds.Password = s.Password
	}
	if creds.Username == "" || creds.Password == "" {
		return Credentials{}, &AuthenticationError{Message: "credentials not configured"}
	}
	return creds, nil
}

func (s *StaticSource) OTP() (string, error) {
	if s.OTPCode == "" {
		return "", &AuthenticationError{Message: "server requires a one-time password and none was provided"}
	}
	return s.OTPCode, nil
}
