// Package netrc persists access tokens into the user's netrc file so HTTP
// tooling can reuse them without re-prompting. Writes are serialized across
// processes with a sidecar flock.
package netrc

import (
	"fmt"
	"os"
	"strings"
	"time"

	gonetrc "github.com/bgentry/go-netrc/netrc"
	"github.com/gofrs/flock"
)

// TokenLogin is the fixed login marking an entry as a token entry.
const TokenLogin = "token"

const (
	maxLockRetries = 50
	lockRetryDelay = 10 * time.Millisecond
)

// PersistenceError indicates the credential file could not be updated. It is
// distinct from an authentication failure: the caller got a token but could
// not save it.
type PersistenceError struct {
	Message string
	Err     error
}

func (e *PersistenceError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Writer upserts token entries in a netrc file.
type Writer struct {
	Path string
}

// Upsert replaces or appends the entry for host with login "token" and the
// given token as password, preserving all other hosts' entries. At most one
// entry per host survives. The file ends up readable and writable only by
// the owning user.
func (w *Writer) Upsert(host, token string) error {
	if w.Path == "" {
		return &PersistenceError{Message: "netrc path is not set"}
	}
	if host == "" {
		return &PersistenceError{Message: "netrc host is empty"}
	}

	lock := flock.New(w.Path + ".lock")
	locked := false
	var err error
	for i := 0; i < maxLockRetries; i++ {
		locked, err = lock.TryLock()
		if err != nil {
			return &PersistenceError{Message: "failed to lock netrc file", Err: err}
		}
		if locked {
			break
		}
		time.Sleep(lockRetryDelay)
	}
	if !locked {
		return &PersistenceError{Message: fmt.Sprintf("netrc file %s is locked by another process", w.Path)}
	}
	defer func() {
		_ = lock.Unlock()
	}()

	return w.upsertLocked(host, token)
}

func (w *Writer) upsertLocked(host, token string) error {
	entries, err := w.load()
	if err != nil {
		return err
	}

	if machine := entries.FindMachine(host); machine != nil && !machine.IsDefault() {
		machine.UpdateLogin(TokenLogin)
		machine.UpdatePassword(token)
	} else {
		entries.NewMachine(host, TokenLogin, token, "")
	}

	content, err := entries.MarshalText()
	if err != nil {
		return &PersistenceError{Message: "failed to serialize netrc file", Err: err}
	}
	if err := os.WriteFile(w.Path, content, 0o600); err != nil {
		return &PersistenceError{Message: "failed to write netrc file", Err: err}
	}
	// An existing file keeps its old mode through WriteFile; tighten it.
	if err := os.Chmod(w.Path, 0o600); err != nil {
		return &PersistenceError{Message: "failed to set netrc file permissions", Err: err}
	}
	return nil
}

func (w *Writer) load() (*gonetrc.Netrc, error) {
	entries, err := gonetrc.ParseFile(w.Path)
	if err == nil {
		return entries, nil
	}
	if os.IsNotExist(err) {
		empty, parseErr := gonetrc.Parse(strings.NewReader(""))
		if parseErr != nil {
			return nil, &PersistenceError{Message: "failed to initialize netrc file", Err: parseErr}
		}
		return empty, nil
	}
	return nil, &PersistenceError{Message: "failed to parse netrc file", Err: err}
}
