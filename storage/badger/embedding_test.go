package badger

import (
	"context"
	"testing"
	"time"

	"github.com/poiesic/hydrive/core"
	"github.com/poiesic/hydrive/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddingRepository(t *testing.T) {
	_, embRepo, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()
	doc := testDocument("kona", "시동")
	set := &core.EmbeddingSet{
		DocumentID: "kona",
		Model:      "bge-m3",
		Dimension:  2,
		Vectors:    [][]float32{{0.6, 0.8}},
		Sections:   []core.SectionMeta{core.MetaFor(&doc.Sections[0])},
		CreatedAt:  time.Now().UTC().Truncate(time.Microsecond),
	}

	_, err = embRepo.GetEmbeddings(ctx, "kona")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, embRepo.SaveEmbeddings(ctx, set))
	got, err := embRepo.GetEmbeddings(ctx, "kona")
	require.NoError(t, err)
	assert.Equal(t, set, got)

	require.NoError(t, embRepo.DeleteEmbeddings(ctx, "kona"))
	_, err = embRepo.GetEmbeddings(ctx, "kona")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// Deleting a missing set is not an error.
	assert.NoError(t, embRepo.DeleteEmbeddings(ctx, "kona"))
}

func TestEmbeddingRepository_RejectsInconsistentSet(t *testing.T) {
	_, embRepo, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	set := &core.EmbeddingSet{
		DocumentID: "kona",
		Dimension:  3,
		Vectors:    [][]float32{{0.6, 0.8}},
		Sections:   []core.SectionMeta{{Title: "시동"}},
	}
	err = embRepo.SaveEmbeddings(context.Background(), set)
	assert.ErrorIs(t, err, core.ErrDimensionMismatch)
}
