package storage

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackends(t *testing.T) {
	backends := map[string]Storage{
		"memory": NewMemory(),
		"file":   NewFileStorage(t.TempDir(), nil),
	}

	for name, s := range backends {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := s.Load(ctx, "order-store")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, s.Save(ctx, "order-store", []byte(`{"version":2}`)))
			data, err := s.Load(ctx, "order-store")
			require.NoError(t, err)
			assert.Equal(t, `{"version":2}`, string(data))

			require.NoError(t, s.Save(ctx, "order-store", []byte(`{"version":3}`)))
			data, err = s.Load(ctx, "order-store")
			require.NoError(t, err)
			assert.Equal(t, `{"version":3}`, string(data))

			require.NoError(t, s.Delete(ctx, "order-store"))
			require.NoError(t, s.Delete(ctx, "order-store"))
			_, err = s.Load(ctx, "order-store")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestMemory_CopiesData(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	data := []byte("abc")
	require.NoError(t, m.Save(ctx, "k", data))
	data[0] = 'x'

	got, err := m.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestFileStorage_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStorage(dir, nil)

	require.NoError(t, s.Save(context.Background(), "access_token", []byte("tok")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "access_token.json", entries[0].Name())
	assert.Equal(t, filepath.Join(dir, "access_token.json"), s.Path("access_token"))
}

func TestFileStorage_EscapesKeys(t *testing.T) {
	s := NewFileStorage(t.TempDir(), nil)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "../escape", []byte("x")))
	assert.Equal(t, s.Dir(), filepath.Dir(s.Path("../escape")))

	data, err := s.Load(ctx, "../escape")
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))
}

func TestFileStorage_Watch(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStorage(dir, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var changes atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- s.Watch(ctx, "order-store", func() { changes.Add(1) })
	}()

	// Give the watcher time to register.
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, s.Save(context.Background(), "unrelated", []byte("x")))
	require.NoError(t, s.Save(context.Background(), "order-store", []byte("{}")))

	assert.Eventually(t, func() bool { return changes.Load() > 0 }, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}
