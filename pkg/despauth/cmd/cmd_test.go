package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	gonetrc "github.com/bgentry/go-netrc/netrc"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	root := NewRootCommand(Config{
		ConfigPath:   filepath.Join(t.TempDir(), "absent.yaml"),
		OutputWriter: &buf,
	})
	root.SetArgs(args)
	root.SetOut(&buf)
	root.SetErr(&buf)
	err := root.Execute()
	return buf.String(), err
}

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("k"))
	require.NoError(t, err)
	return token
}

func fakeIAM(t *testing.T, claims jwt.MapClaims) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/realms/desp/protocol/openid-connect/token", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": signedToken(t, claims),
			"token_type":   "Bearer",
			"expires_in":   300,
		})
	}))
	t.Cleanup(server.Close)
	return server
}

func TestServicesCommand(t *testing.T) {
	t.Run("table lists all services", func(t *testing.T) {
		out, err := runCommand(t, "services")
		require.NoError(t, err)
		for _, name := range []string{"cacheb", "streamer", "insula", "eden", "dea", "highway", "polytope", "hda"} {
			assert.Contains(t, out, name)
		}
		assert.Contains(t, out, "EXCHANGE")
	})

	t.Run("json output", func(t *testing.T) {
		out, err := runCommand(t, "services", "-o", "json")
		require.NoError(t, err)

		var rows []map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &rows))
		assert.Len(t, rows, 8)
	})
}

func TestVersionCommand(t *testing.T) {
	out, err := runCommand(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "despauth")

	out, err = runCommand(t, "version", "-o", "json")
	require.NoError(t, err)
	var info map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "dev", info["version"])
}

func TestLoginCommand(t *testing.T) {
	t.Run("prints the bare token", func(t *testing.T) {
		server := fakeIAM(t, jwt.MapClaims{"sub": "alice-id"})
		t.Setenv("DESPAUTH_USER", "alice")
		t.Setenv("DESPAUTH_PASSWORD", "secret")

		out, err := runCommand(t, "login", "eden", "--iam-url", server.URL, "--non-interactive")
		require.NoError(t, err)
		token := strings.TrimSpace(out)
		assert.Equal(t, 3, len(strings.Split(token, ".")), "expected a JWT on stdout")
	})

	t.Run("json output carries claims", func(t *testing.T) {
		server := fakeIAM(t, jwt.MapClaims{"sub": "alice-id"})
		t.Setenv("DESPAUTH_USER", "alice")
		t.Setenv("DESPAUTH_PASSWORD", "secret")

		out, err := runCommand(t, "login", "eden", "--iam-url", server.URL, "--non-interactive", "-o", "json")
		require.NoError(t, err)

		var result map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &result))
		claims, ok := result["claims"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "alice-id", claims["sub"])
		assert.Equal(t, false, result["exchanged"])
	})

	t.Run("netrc suppresses the token", func(t *testing.T) {
		server := fakeIAM(t, jwt.MapClaims{"sub": "alice-id"})
		netrcPath := filepath.Join(t.TempDir(), ".netrc")
		t.Setenv("NETRC", netrcPath)
		t.Setenv("DESPAUTH_USER", "alice")
		t.Setenv("DESPAUTH_PASSWORD", "secret")

		out, err := runCommand(t, "login", "eden", "--iam-url", server.URL, "--non-interactive", "--netrc")
		require.NoError(t, err)
		assert.Contains(t, out, "written to")
		assert.Contains(t, out, "broker.eden.destine.eu")

		entries, err := gonetrc.ParseFile(netrcPath)
		require.NoError(t, err)
		machine := entries.FindMachine("broker.eden.destine.eu")
		require.NotNil(t, machine)
		assert.Equal(t, "token", machine.Login)
		assert.NotEmpty(t, machine.Password)

		info, err := os.Stat(netrcPath)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	})

	t.Run("missing credentials fail non-interactively", func(t *testing.T) {
		server := fakeIAM(t, jwt.MapClaims{"sub": "alice-id"})

		_, err := runCommand(t, "login", "eden", "--iam-url", server.URL, "--non-interactive")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "credentials not configured")
	})

	t.Run("unknown service fails", func(t *testing.T) {
		_, err := runCommand(t, "login", "nope", "--non-interactive")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown service")
	})
}
