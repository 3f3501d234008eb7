package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"eagler-tiers/internal/config"
	"eagler-tiers/internal/domain"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog(t *testing.T) *config.Catalog {
	t.Helper()
	c, err := config.DefaultCatalog()
	require.NoError(t, err)
	return c
}

func sampleTiers(t *testing.T) domain.Tiers {
	t.Helper()
	by := "mod#0001"
	doc := domain.NewTiers(testCatalog(t))
	doc["smp"]["HT3"] = append(doc["smp"]["HT3"], domain.PlayerEntry{
		Name:           "Steve",
		LastModifiedBy: &by,
		LastModifiedAt: "2025-11-26T10:00:00.000Z",
	})
	return doc
}

// exerciseStore runs the behaviour every driver must share.
func exerciseStore(t *testing.T, store Store) {
	ctx := context.Background()

	_, err := store.Load(ctx)
	require.ErrorIs(t, err, ErrSnapshotNotFound)

	want := sampleTiers(t)
	require.NoError(t, store.Save(ctx, want))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}

	want["smp"]["HT3"] = []domain.PlayerEntry{}
	require.NoError(t, store.Save(ctx, want))

	got, err = store.Load(ctx)
	require.NoError(t, err)
	assert.NotNil(t, got["smp"]["HT3"])
	assert.Empty(t, got["smp"]["HT3"])
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "tiers.json")
	exerciseStore(t, NewFileStore(path, testCatalog(t), zerolog.Nop()))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must not be left behind")
	assert.Equal(t, "tiers.json", entries[0].Name())
}

func TestFileStoreWritesEmptyBucketsAsArrays(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tiers.json")
	store := NewFileStore(path, testCatalog(t), zerolog.Nop())
	require.NoError(t, store.Save(context.Background(), domain.Tiers{"smp": {"HT1": []domain.PlayerEntry{}}}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"smp":{"HT1":[]}}`, string(raw))
}

func TestFileStoreWritesCatalogOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tiers.json")
	store := NewFileStore(path, testCatalog(t), zerolog.Nop())
	require.NoError(t, store.Save(context.Background(), domain.Tiers{
		"uhc":      {"LT1": {}, "HT2": {}, "HT1": {}, "custom": {}},
		"smp":      {"LT5": {}, "HT1": {}},
		"archived": {},
	}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	want := `{
  "smp": {
    "HT1": [],
    "LT5": []
  },
  "uhc": {
    "HT1": [],
    "LT1": [],
    "HT2": [],
    "custom": []
  },
  "archived": {}
}`
	assert.Equal(t, want, string(raw))
}

func TestFileStoreKeepsLegacyEntries(t *testing.T) {
	legacy := `{
  "smp": {
    "HT1": [
      {
        "name": "Alex",
        "lastModifiedAt": "Wed Nov 26 2025",
        "note": "hand edited"
      },
      {
        "name": "Bob"
      }
    ]
  }
}`
	path := filepath.Join(t.TempDir(), "tiers.json")
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))
	store := NewFileStore(path, testCatalog(t), zerolog.Nop())

	got, err := store.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, got["smp"]["HT1"], 2)
	alex := got["smp"]["HT1"][0]
	assert.Equal(t, "Alex", alex.Name)
	assert.Equal(t, "Wed Nov 26 2025", alex.LastModifiedAt)
	assert.Nil(t, alex.LastModifiedBy)
	assert.Empty(t, got["smp"]["HT1"][1].LastModifiedAt)

	require.NoError(t, store.Save(context.Background(), got))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, legacy, string(raw))
}

func TestFileStoreCorruptSnapshot(t *testing.T) {
	for name, content := range map[string]string{
		"truncated": `{"smp": {"HT1": [`,
		"null":      `null`,
		"not json":  `hello`,
		"nameless":  `{"smp": {"HT1": [{"lastModifiedAt": "x"}]}}`,
	} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "tiers.json")
			require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

			_, err := NewFileStore(path, testCatalog(t), zerolog.Nop()).Load(context.Background())
			require.Error(t, err)
			assert.NotErrorIs(t, err, ErrSnapshotNotFound)
			assert.True(t, domain.IsStorage(err))
		})
	}
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tiers.db")
	store, err := NewSQLiteStore(path, testCatalog(t), zerolog.Nop())
	require.NoError(t, err)
	exerciseStore(t, store)
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(path, testCatalog(t), zerolog.Nop())
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Load(context.Background())
	require.NoError(t, err)
	assert.Contains(t, got, "smp")
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	key := "eagler:tiers:test:" + time.Now().Format("150405.000000000")
	store, err := NewRedisStore(addr, key, testCatalog(t), zerolog.Nop())
	require.NoError(t, err)
	defer func() {
		_ = store.client.Del(context.Background(), key).Err()
		_ = store.Close()
	}()

	exerciseStore(t, store)
}

func TestNewSelectsDriver(t *testing.T) {
	dir := t.TempDir()
	c := testCatalog(t)

	store, err := New(&config.Config{StorageDriver: config.DriverFile, DataFile: filepath.Join(dir, "t.json")}, c, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, store)

	store, err = New(&config.Config{StorageDriver: config.DriverSQLite, DBPath: filepath.Join(dir, "t.db")}, c, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, store)
	require.NoError(t, store.Close())

	_, err = New(&config.Config{StorageDriver: "mongo"}, c, zerolog.Nop())
	assert.Error(t, err)
}
