package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestKeychain(t *testing.T) {
	keyring.MockInit()
	k := Keychain{Service: "despauth-test"}

	t.Run("set and get round-trip", func(t *testing.T) {
		require.NoError(t, k.Set("highway", "tok-1"))
		token, err := k.Get("highway")
		require.NoError(t, err)
		assert.Equal(t, "tok-1", token)
	})

	t.Run("set replaces", func(t *testing.T) {
		require.NoError(t, k.Set("highway", "tok-2"))
		token, err := k.Get("highway")
		require.NoError(t, err)
		assert.Equal(t, "tok-2", token)
	})

	t.Run("missing entry is ErrNotFound", func(t *testing.T) {
		_, err := k.Get("absent")
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("delete removes the entry", func(t *testing.T) {
		require.NoError(t, k.Set("eden", "tok"))
		require.NoError(t, k.Delete("eden"))
		_, err := k.Get("eden")
		require.ErrorIs(t, err, ErrNotFound)

		require.ErrorIs(t, k.Delete("eden"), ErrNotFound)
	})
}
