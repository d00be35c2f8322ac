package storage

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/transaction-importer/internal/config"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestObjectKey(t *testing.T) {
	id := uuid.MustParse("6f1c1f0e-4b3a-4a52-9c43-2f5e1d0c9a10")
	now := time.Date(2026, 3, 9, 23, 30, 0, 0, time.UTC)

	tests := []struct {
		name     string
		filename string
		expected string
	}{
		{"plain name", "sales.csv", "import_requests/2026/03/" + id.String() + "_sales.csv"},
		{"strips directories", "../../etc/sales.csv", "import_requests/2026/03/" + id.String() + "_sales.csv"},
		{"windows path", `C:\exports\q1 sales.csv`, "import_requests/2026/03/" + id.String() + "_q1_sales.csv"},
		{"empty name", "", "import_requests/2026/03/" + id.String() + "_upload.csv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ObjectKey(now, id, tt.filename))
		})
	}
}

func TestValidateKey(t *testing.T) {
	assert.NoError(t, validateKey("import_requests/2026/03/a.csv"))

	for _, key := range []string{"", "  ", "/abs/a.csv", "a/../b.csv", "a//b.csv", "./a.csv", `a\b.csv`} {
		assert.ErrorIs(t, validateKey(key), ErrInvalidKey, "key %q", key)
	}
}

func TestLocalStore_SaveAndOpen(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()

	store, err := NewLocalStore(newTestLogger(), root)
	require.NoError(t, err)

	key := "import_requests/2026/03/id_sales.csv"
	content := "timestamp,amount\n2026-03-01T10:00:00Z,1.00\n"

	require.NoError(t, store.Save(ctx, key, strings.NewReader(content)))

	_, err = os.Stat(filepath.Join(root, "import_requests", "2026", "03", "id_sales.csv"))
	require.NoError(t, err)

	rc, err := store.Open(ctx, key)
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, content, string(data))

	entries, err := os.ReadDir(filepath.Join(root, "import_requests", "2026", "03"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestLocalStore_OpenMissing(t *testing.T) {
	store, err := NewLocalStore(newTestLogger(), t.TempDir())
	require.NoError(t, err)

	rc, err := store.Open(context.Background(), "import_requests/missing.csv")
	assert.Nil(t, rc)
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestLocalStore_Delete(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStore(newTestLogger(), t.TempDir())
	require.NoError(t, err)

	key := "import_requests/2026/03/id_sales.csv"
	require.NoError(t, store.Save(ctx, key, strings.NewReader("x")))
	require.NoError(t, store.Delete(ctx, key))

	_, err = store.Open(ctx, key)
	assert.ErrorIs(t, err, ErrObjectNotFound)

	assert.ErrorIs(t, store.Delete(ctx, key), ErrObjectNotFound)
	assert.ErrorIs(t, store.Delete(ctx, "../outside.csv"), ErrInvalidKey)
}

func TestLocalStore_RejectsInvalidKeys(t *testing.T) {
	store, err := NewLocalStore(newTestLogger(), t.TempDir())
	require.NoError(t, err)

	_, err = store.Open(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidKey)

	err = store.Save(context.Background(), "../outside.csv", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestURI(t *testing.T) {
	assert.Equal(t, "gs://bucket/import_requests/a.csv", URI("bucket", "import_requests/a.csv"))
}

func TestNewFileStore(t *testing.T) {
	t.Run("local backend", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "uploads")
		store, closeFn, err := NewFileStore(context.Background(), newTestLogger(), &config.StorageConfig{
			Backend:  config.StorageBackendLocal,
			LocalDir: dir,
		})
		require.NoError(t, err)
		require.NotNil(t, closeFn)
		assert.IsType(t, &LocalStore{}, store)
		assert.DirExists(t, dir)
		assert.NoError(t, closeFn())
	})

	t.Run("unknown backend", func(t *testing.T) {
		store, _, err := NewFileStore(context.Background(), newTestLogger(), &config.StorageConfig{Backend: "s3"})
		assert.Nil(t, store)
		assert.ErrorContains(t, err, "unsupported storage backend")
	})
}
