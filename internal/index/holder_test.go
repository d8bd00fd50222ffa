package index

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/rnc-cli/internal/rnc"
)

func TestHolder_Reload(t *testing.T) {
	path := writeFile(t, []byte("RNC,RAZON SOCIAL,ESTADO\n131000001,UNO,ACTIVO\n"))
	opts := Options{}

	h := NewHolder(LoadOrEmpty(context.Background(), path, opts), path, opts)
	rec, ok := h.Lookup("131000001")
	require.True(t, ok)
	assert.Equal(t, "UNO", rec.Name)

	require.NoError(t, os.WriteFile(path, []byte("RNC,RAZON SOCIAL,ESTADO\n131000001,UNO SRL,ACTIVO\n131000002,DOS,ACTIVO\n"), 0o644))
	next, err := h.Reload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, next.Len())
	assert.Equal(t, 2, h.Len())

	rec, ok = h.Lookup("131000001")
	require.True(t, ok)
	assert.Equal(t, "UNO SRL", rec.Name)
}

func TestHolder_ReloadFailureKeepsCurrent(t *testing.T) {
	path := writeFile(t, []byte("RNC,ESTADO\n131000001,ACTIVO\n"))
	h := NewHolder(LoadOrEmpty(context.Background(), path, Options{}), path, Options{})

	require.NoError(t, os.WriteFile(path, []byte("NOMBRE\nX\n"), 0o644))
	cur, err := h.Reload(context.Background())
	require.Error(t, err)
	assert.True(t, rnc.IsKind(err, rnc.KindLoad))
	assert.Equal(t, 1, cur.Len())
	assert.Equal(t, 1, h.Len())
}

func TestHolder_ReloadVanishedFileKeepsCurrent(t *testing.T) {
	path := writeFile(t, []byte("RNC,ESTADO\n131000001,ACTIVO\n"))
	h := NewHolder(LoadOrEmpty(context.Background(), path, Options{}), path, Options{})

	require.NoError(t, os.Remove(path))
	_, err := h.Reload(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, h.Len())
}

func TestHolder_ReloadFromEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "later.csv")
	h := NewHolder(LoadOrEmpty(context.Background(), path, Options{}), path, Options{})
	assert.Equal(t, 0, h.Len())
	assert.True(t, h.LoadedAt().IsZero())

	require.NoError(t, os.WriteFile(path, []byte("RNC,ESTADO\n131000001,ACTIVO\n"), 0o644))
	_, err := h.Reload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, h.Len())
	assert.False(t, h.LoadedAt().IsZero())
}

func TestHolder_ConcurrentLookupDuringReload(t *testing.T) {
	path := writeFile(t, []byte("RNC,ESTADO\n131000001,ACTIVO\n"))
	h := NewHolder(LoadOrEmpty(context.Background(), path, Options{}), path, Options{})

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 200 {
				_, ok := h.Lookup("131000001")
				assert.True(t, ok)
			}
		}()
	}
	for range 5 {
		_, err := h.Reload(context.Background())
		require.NoError(t, err)
	}
	wg.Wait()
}

func TestNewHolder_NilInitial(t *testing.T) {
	h := NewHolder(nil, "", Options{})
	assert.NotNil(t, h.Current())
	assert.Equal(t, 0, h.Len())
}
