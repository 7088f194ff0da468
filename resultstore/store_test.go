package resultstore

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hupe1980/biclique"
	"github.com/hupe1980/biclique/archive"
	"github.com/hupe1980/biclique/cipher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stores(t *testing.T) map[string]Store {
	return map[string]Store{
		"memory":      NewMemoryStore(),
		"local":       NewLocalStore(filepath.Join(t.TempDir(), "archives")),
		"local-limit": NewLocalStore(filepath.Join(t.TempDir(), "limited"), WithWriteLimit(1<<20)),
		"ratelimited": NewRateLimited(NewMemoryStore(), 1<<20),
	}
}

func readAll(t *testing.T, s Store, name string) []byte {
	t.Helper()
	rc, err := s.Get(t.Context(), name)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	return data
}

func TestStore_Contract(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := t.Context()

			names, err := s.List(ctx, "")
			require.NoError(t, err)
			assert.Empty(t, names)

			_, err = s.Get(ctx, "runs/missing.bcq")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, s.Put(ctx, "runs/b.bcq", bytes.NewReader([]byte("bbb"))))
			require.NoError(t, s.Put(ctx, "runs/a.bcq", bytes.NewReader([]byte("aaa"))))
			require.NoError(t, s.Put(ctx, "other/c.bcq", bytes.NewReader([]byte("ccc"))))

			assert.Equal(t, []byte("aaa"), readAll(t, s, "runs/a.bcq"))

			require.NoError(t, s.Put(ctx, "runs/a.bcq", bytes.NewReader([]byte("replaced"))))
			assert.Equal(t, []byte("replaced"), readAll(t, s, "runs/a.bcq"))

			names, err = s.List(ctx, "runs/")
			require.NoError(t, err)
			assert.Equal(t, []string{"runs/a.bcq", "runs/b.bcq"}, names)

			names, err = s.List(ctx, "")
			require.NoError(t, err)
			assert.Len(t, names, 3)

			require.NoError(t, s.Delete(ctx, "runs/a.bcq"))
			require.NoError(t, s.Delete(ctx, "runs/a.bcq"), "deleting twice is fine")
			_, err = s.Get(ctx, "runs/a.bcq")
			assert.ErrorIs(t, err, ErrNotFound)

			assert.ErrorIs(t, s.Put(ctx, "../x", bytes.NewReader(nil)), ErrInvalidName)
			assert.ErrorIs(t, s.Put(ctx, "/abs", bytes.NewReader(nil)), ErrInvalidName)
		})
	}
}

func TestValidateName(t *testing.T) {
	for _, ok := range []string{"a.bcq", "runs/a.bcq", "runs/2024/a.bcq"} {
		assert.NoError(t, ValidateName(ok), ok)
	}
	for _, bad := range []string{"", "/a", "..", "../a", "runs/../../a", "runs//a", "runs/./a", "runs/"} {
		assert.ErrorIs(t, ValidateName(bad), ErrInvalidName, bad)
	}
}

func TestLocalStore_NoPartialFiles(t *testing.T) {
	root := t.TempDir()
	s := NewLocalStore(root)

	require.NoError(t, os.WriteFile(filepath.Join(root, ".tmp-123"), []byte("junk"), 0o600))
	require.NoError(t, s.Put(t.Context(), "a.bcq", bytes.NewReader([]byte("data"))))

	names, err := s.List(t.Context(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.bcq"}, names)
	assert.Equal(t, root, s.Root())
}

func TestLocalStore_CancelledPut(t *testing.T) {
	root := t.TempDir()
	s := NewLocalStore(root)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	err := s.Put(ctx, "a.bcq", bytes.NewReader([]byte("data")))
	assert.Error(t, err)

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries, "the temporary file is removed")
}

func TestRateLimited_Throttles(t *testing.T) {
	s := NewRateLimited(NewMemoryStore(), 1000)
	data := bytes.Repeat([]byte{0xab}, 1500)

	start := time.Now()
	require.NoError(t, s.Put(t.Context(), "a.bcq", bytes.NewReader(data)))
	assert.GreaterOrEqual(t, time.Since(start), 400*time.Millisecond, "500 bytes beyond the burst wait for refill")

	assert.Equal(t, data, readAll(t, NewRateLimited(s.Store, 0), "a.bcq"))
}

func TestLocalStore_WriteLimit(t *testing.T) {
	s := NewLocalStore(t.TempDir(), WithWriteLimit(1000))
	data := bytes.Repeat([]byte{0xcd}, 1500)

	start := time.Now()
	require.NoError(t, s.Put(t.Context(), "runs/a.bcq", bytes.NewReader(data)))
	assert.GreaterOrEqual(t, time.Since(start), 400*time.Millisecond)
	assert.Equal(t, data, readAll(t, s, "runs/a.bcq"))

	unlimited := NewLocalStore(t.TempDir(), WithWriteLimit(0))
	assert.Nil(t, unlimited.rc)
}

func TestSaveLoadRecord(t *testing.T) {
	s := NewMemoryStore()
	rec := &archive.Record{
		RunID:     "run-1",
		CreatedAt: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		Results: []*biclique.Result{{
			CipherName: "toy8",
			Window:     cipher.Window{FromRound: 1, ToRound: 2},
			Dimension:  1,
		}},
	}

	name := ArchiveName(rec.RunID)
	assert.Equal(t, "runs/run-1.bcq", name)

	h, err := SaveRecord(t.Context(), s, name, rec, archive.WithCompression(archive.CompressionLZ4))
	require.NoError(t, err)
	assert.Equal(t, archive.CompressionLZ4, h.Compression)

	out, got, err := LoadRecord(t.Context(), s, name)
	require.NoError(t, err)
	assert.Equal(t, h, got)
	assert.Equal(t, "run-1", out.RunID)
	require.Len(t, out.Results, 1)
	assert.Equal(t, rec.Results[0].Window, out.Results[0].Window)

	_, _, err = LoadRecord(t.Context(), s, "runs/none.bcq")
	assert.ErrorIs(t, err, ErrNotFound)
}
