package netrc

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	gonetrc "github.com/bgentry/go-netrc/netrc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsert(t *testing.T) {
	t.Run("creates the file with a token entry", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".netrc")
		w := &Writer{Path: path}

		require.NoError(t, w.Upsert("highway.esa.int", "tok-1"))

		entries, err := gonetrc.ParseFile(path)
		require.NoError(t, err)
		machine := entries.FindMachine("highway.esa.int")
		require.NotNil(t, machine)
		assert.Equal(t, TokenLogin, machine.Login)
		assert.Equal(t, "tok-1", machine.Password)

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	})

	t.Run("replaces rather than duplicates", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".netrc")
		w := &Writer{Path: path}

		require.NoError(t, w.Upsert("highway.esa.int", "tok-1"))
		require.NoError(t, w.Upsert("highway.esa.int", "tok-2"))

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, 1, strings.Count(string(content), "highway.esa.int"))

		entries, err := gonetrc.ParseFile(path)
		require.NoError(t, err)
		assert.Equal(t, "tok-2", entries.FindMachine("highway.esa.int").Password)
	})

	t.Run("preserves other hosts", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".netrc")
		existing := "machine data.example.org\n  login bob\n  password hunter2\n"
		require.NoError(t, os.WriteFile(path, []byte(existing), 0o600))

		w := &Writer{Path: path}
		require.NoError(t, w.Upsert("highway.esa.int", "tok-1"))

		entries, err := gonetrc.ParseFile(path)
		require.NoError(t, err)
		other := entries.FindMachine("data.example.org")
		require.NotNil(t, other)
		assert.Equal(t, "bob", other.Login)
		assert.Equal(t, "hunter2", other.Password)
		require.NotNil(t, entries.FindMachine("highway.esa.int"))
	})

	t.Run("tightens permissions of an existing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".netrc")
		require.NoError(t, os.WriteFile(path, []byte(""), 0o644))

		w := &Writer{Path: path}
		require.NoError(t, w.Upsert("highway.esa.int", "tok-1"))

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	})

	t.Run("concurrent writers do not lose updates", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".netrc")
		hosts := []string{"a.example.org", "b.example.org", "c.example.org", "d.example.org"}

		var wg sync.WaitGroup
		errs := make([]error, len(hosts))
		for i, host := range hosts {
			wg.Add(1)
			go func(i int, host string) {
				defer wg.Done()
				errs[i] = (&Writer{Path: path}).Upsert(host, "tok-"+host)
			}(i, host)
		}
		wg.Wait()

		for i, err := range errs {
			require.NoError(t, err, hosts[i])
		}
		entries, err := gonetrc.ParseFile(path)
		require.NoError(t, err)
		for _, host := range hosts {
			machine := entries.FindMachine(host)
			require.NotNil(t, machine, host)
			assert.Equal(t, "tok-"+host, machine.Password)
		}
	})

	t.Run("missing directory is a PersistenceError", func(t *testing.T) {
		w := &Writer{Path: filepath.Join(t.TempDir(), "absent", "sub", ".netrc")}
		err := w.Upsert("highway.esa.int", "tok-1")

		var persErr *PersistenceError
		require.ErrorAs(t, err, &persErr)
	})

	t.Run("empty path or host fail", func(t *testing.T) {
		var persErr *PersistenceError
		require.ErrorAs(t, (&Writer{}).Upsert("host", "tok"), &persErr)
		require.ErrorAs(t, (&Writer{Path: filepath.Join(t.TempDir(), ".netrc")}).Upsert("", "tok"), &persErr)
	})
}
