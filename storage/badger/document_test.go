package badger

import (
	"context"
	"testing"

	"github.com/poiesic/hydrive/core"
	"github.com/poiesic/hydrive/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDocument(id, title string) *core.Document {
	return &core.Document{
		ID:       id,
		FileName: id + ".pdf",
		Vehicle:  core.ClassifyVehicle(id),
		Sections: []core.Section{
			{Source: id, SectionNumber: "1", Title: title, Pages: core.NewPageRange(3, 4), Content: "내용", Keywords: []string{"키워드"}},
		},
	}
}

func TestDocumentRepository_SaveGet(t *testing.T) {
	docRepo, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()
	doc := testDocument("santafe", "타이어 공기압 점검")
	require.NoError(t, docRepo.SaveDocument(ctx, doc))

	got, err := docRepo.GetDocument(ctx, "santafe")
	require.NoError(t, err)
	assert.Equal(t, doc, got)

	// Saving again replaces the previous version.
	replacement := testDocument("santafe", "엔진 오일")
	require.NoError(t, docRepo.SaveDocument(ctx, replacement))
	got, err = docRepo.GetDocument(ctx, "santafe")
	require.NoError(t, err)
	assert.Equal(t, "엔진 오일", got.Sections[0].Title)
}

func TestDocumentRepository_NotFound(t *testing.T) {
	docRepo, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()
	_, err = docRepo.GetDocument(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	err = docRepo.DeleteDocument(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDocumentRepository_RejectsInvalid(t *testing.T) {
	docRepo, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	err = docRepo.SaveDocument(context.Background(), &core.Document{ID: "kona"})
	assert.ErrorIs(t, err, core.ErrInvalidDocument)
}

func TestDocumentRepository_ListDelete(t *testing.T) {
	docRepo, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()
	for _, id := range []string{"tucson", "kona", "avante"} {
		require.NoError(t, docRepo.SaveDocument(ctx, testDocument(id, "시동")))
	}

	docs, err := docRepo.ListDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "avante", docs[0].ID)
	assert.Equal(t, "kona", docs[1].ID)
	assert.Equal(t, "tucson", docs[2].ID)

	require.NoError(t, docRepo.DeleteDocument(ctx, "kona"))
	docs, err = docRepo.ListDocuments(ctx)
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}
