package hydrive

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/hydrive/ai/mock"
	"github.com/poiesic/hydrive/core"
	"github.com/poiesic/hydrive/precompute"
	"github.com/poiesic/hydrive/search"
	"github.com/poiesic/hydrive/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type manualSection struct {
	SectionNumber string   `json:"section_number"`
	Title         string   `json:"title"`
	PageRange     []int    `json:"page_range,omitempty"`
	Content       string   `json:"content"`
	Keywords      []string `json:"keywords,omitempty"`
}

func writeManual(t *testing.T, dir, fileName string, sections ...manualSection) string {
	t.Helper()
	data, err := json.Marshal(map[string]any{"file_name": fileName, "sections": sections})
	require.NoError(t, err)
	path := filepath.Join(dir, fileName)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func santafeSections() []manualSection {
	return []manualSection{
		{SectionNumber: "1", Title: "타이어 공기압 점검", PageRange: []int{12, 15},
			Content: "정기적으로 타이어 공기압을 점검하세요.", Keywords: []string{"타이어", "공기압"}},
		{SectionNumber: "2", Title: "엔진 오일 교체", Content: "엔진 오일은 주기적으로 교체하십시오."},
	}
}

func newTestDatabase(t *testing.T, opts ...DatabaseOption) (*Database, *mock.MockProvider) {
	t.Helper()
	provider := mock.NewMockProvider()
	db, err := NewDatabase("", append([]DatabaseOption{InMemory(), WithProvider(provider)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, provider
}

func TestNewDatabase(t *testing.T) {
	t.Run("create new database", func(t *testing.T) {
		tmpDir := filepath.Join(t.TempDir(), "test_db")
		db, err := NewDatabase(tmpDir, WithProvider(mock.NewMockProvider()))
		require.NoError(t, err)
		require.NotNil(t, db)
		defer db.Close()

		assert.NotNil(t, db.DocumentRepository())
		assert.NotNil(t, db.EmbeddingRepository())
		assert.NotNil(t, db.backend)
		assert.NotNil(t, db.pool)
	})

	t.Run("error with invalid path", func(t *testing.T) {
		tmpFile := filepath.Join(t.TempDir(), "not_a_dir")
		require.NoError(t, os.WriteFile(tmpFile, []byte("test"), 0o644))

		db, err := NewDatabase(tmpFile, WithProvider(mock.NewMockProvider()))
		assert.Error(t, err)
		assert.Nil(t, db)
	})

	t.Run("invalid search config", func(t *testing.T) {
		cfg := search.DefaultConfig()
		cfg.Threshold = 2
		db, err := NewDatabase("", InMemory(), WithProvider(mock.NewMockProvider()), WithSearchConfig(cfg))
		assert.ErrorIs(t, err, search.ErrInvalidConfig)
		assert.Nil(t, db)
	})
}

func TestDatabase_CloseClosesProvider(t *testing.T) {
	provider := mock.NewMockProvider()
	db, err := NewDatabase("", InMemory(), WithProvider(provider))
	require.NoError(t, err)
	require.NoError(t, db.Close())
	assert.True(t, provider.Closed())
}

func TestDatabase_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "db")
	path := writeManual(t, dir, "santafe.json", santafeSections()...)

	db, err := NewDatabase(dbPath, WithProvider(mock.NewMockProvider()))
	require.NoError(t, err)
	_, err = db.ImportDocument(ctx, path, ImportOptions{})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = NewDatabase(dbPath, WithProvider(mock.NewMockProvider()))
	require.NoError(t, err)
	defer db.Close()

	docs, err := db.ListDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "santafe", docs[0].ID)
	assert.Equal(t, core.Vehicle("싼타페"), docs[0].Vehicle)
}

func TestDatabase_ImportDocument(t *testing.T) {
	ctx := context.Background()
	db, provider := newTestDatabase(t)
	dir := t.TempDir()

	t.Run("stores manual", func(t *testing.T) {
		doc, err := db.ImportDocument(ctx, writeManual(t, dir, "santafe.json", santafeSections()...), ImportOptions{})
		require.NoError(t, err)
		assert.Equal(t, "santafe", doc.ID)
		assert.Equal(t, 2, doc.SectionCount())

		stored, err := db.DocumentRepository().GetDocument(ctx, "santafe")
		require.NoError(t, err)
		assert.Equal(t, doc.Sections[0].Title, stored.Sections[0].Title)
		assert.Zero(t, provider.GetMockExtractor().CallCount())
	})

	t.Run("extracts keywords when asked", func(t *testing.T) {
		doc, err := db.ImportDocument(ctx, writeManual(t, dir, "kona.json", santafeSections()...), ImportOptions{ExtractKeywords: true})
		require.NoError(t, err)
		assert.Equal(t, []string{"타이어", "공기압"}, doc.Sections[0].Keywords, "existing keywords are kept")
		assert.NotEmpty(t, doc.Sections[1].Keywords)
		assert.Equal(t, 1, provider.GetMockExtractor().CallCount())
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := db.ImportDocument(ctx, filepath.Join(dir, "missing.json"), ImportOptions{})
		assert.Error(t, err)
	})

	t.Run("missing sections", func(t *testing.T) {
		path := filepath.Join(dir, "broken.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"file_name": "broken.json"}`), 0o644))
		_, err := db.ImportDocument(ctx, path, ImportOptions{})
		assert.ErrorIs(t, err, core.ErrInvalidDocument)
	})
}

func TestDatabase_ReimportDropsStaleCache(t *testing.T) {
	ctx := context.Background()
	db, _ := newTestDatabase(t)
	dir := t.TempDir()

	path := writeManual(t, dir, "santafe.json", santafeSections()...)
	_, err := db.ImportDocument(ctx, path, ImportOptions{})
	require.NoError(t, err)
	_, err = db.BuildCache(ctx, "santafe", precompute.WithConfig(&precompute.Config{BatchSize: 1}))
	require.NoError(t, err)

	// Unchanged manual keeps its cache.
	_, err = db.ImportDocument(ctx, path, ImportOptions{})
	require.NoError(t, err)
	_, err = db.EmbeddingRepository().GetEmbeddings(ctx, "santafe")
	require.NoError(t, err)

	changed := santafeSections()
	changed[1].Content = "엔진 오일은 10,000km마다 교체하십시오."
	_, err = db.ImportDocument(ctx, writeManual(t, dir, "santafe.json", changed...), ImportOptions{})
	require.NoError(t, err)
	_, err = db.EmbeddingRepository().GetEmbeddings(ctx, "santafe")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDatabase_BuildCacheUnknownDocument(t *testing.T) {
	db, _ := newTestDatabase(t)
	_, err := db.BuildCache(context.Background(), "nope")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDatabase_LoadRegistry(t *testing.T) {
	ctx := context.Background()
	db, _ := newTestDatabase(t)
	dir := t.TempDir()

	_, err := db.ImportDocument(ctx, writeManual(t, dir, "santafe.json", santafeSections()...), ImportOptions{})
	require.NoError(t, err)
	_, err = db.ImportDocument(ctx, writeManual(t, dir, "owners_manual.json", santafeSections()...), ImportOptions{})
	require.NoError(t, err)
	_, err = db.BuildCache(ctx, "santafe")
	require.NoError(t, err)

	registry, err := db.LoadRegistry(ctx)
	require.NoError(t, err)
	defer registry.Close()

	assert.Equal(t, []string{"owners_manual", "싼타페"}, registry.Vehicles())

	results, err := registry.Search(ctx, "SANTAFE", "타이어 공기압 확인 방법", 3)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, core.ModeSemantic, results[0].Mode, "cache built, auto mode goes semantic")
	found := false
	for _, r := range results {
		found = found || r.Section.SectionNumber == "1"
	}
	assert.True(t, found, "tire section is returned")

	engine, err := registry.Get("owners_manual")
	require.NoError(t, err)
	stats := engine.Stats()
	assert.Equal(t, "owners_manual", stats.DocumentID)
	assert.Equal(t, 2, stats.Sections)

	results, err = registry.Search(ctx, "owners_manual", "타이어 공기압", 3)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, core.ModeLexical, results[0].Mode, "no cache, auto mode falls back")

	_, err = registry.Search(ctx, "KONA", "타이어", 3)
	assert.ErrorIs(t, err, ErrUnknownVehicle)
}
