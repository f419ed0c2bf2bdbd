package despauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/destine-eu/despauth/pkg/despauth/auth"
)

func TestGetToken(t *testing.T) {
	t.Run("unknown service is a ConfigurationError", func(t *testing.T) {
		t.Setenv("DESPAUTH_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))

		_, err := GetToken(context.Background(), Options{Service: "nope"})

		var cfgErr *auth.ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
	})

	t.Run("authenticates with environment credentials", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "alice-id"}).
			SignedString([]byte("k"))
		require.NoError(t, err)

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/realms/desp/protocol/openid-connect/token", r.URL.Path)
			_ = json.NewEncoder(w).Encode(map[string]any{"access_token": token})
		}))
		defer server.Close()

		t.Setenv("DESPAUTH_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))
		t.Setenv("DESPAUTH_IAM_URL", server.URL)
		t.Setenv("DESPAUTH_USER", "alice")
		t.Setenv("DESPAUTH_PASSWORD", "secret")

		result, err := GetToken(context.Background(), Options{Service: "eden"})
		require.NoError(t, err)
		require.NotNil(t, result)
		assert.Equal(t, token, result.AccessToken())
		assert.Equal(t, "alice-id", result.Claims["sub"])
	})
}
