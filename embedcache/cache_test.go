package embedcache

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/hydrive/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type loaderFunc func(ctx context.Context, documentID string) (*core.EmbeddingSet, error)

func (f loaderFunc) GetEmbeddings(ctx context.Context, documentID string) (*core.EmbeddingSet, error) {
	return f(ctx, documentID)
}

func testDoc() *core.Document {
	return &core.Document{
		ID: "kona",
		Sections: []core.Section{
			{SectionNumber: "1", Title: "타이어", Content: "공기압"},
			{SectionNumber: "2", Title: "엔진", Content: "오일"},
			{SectionNumber: "3", Title: "브레이크", Content: "패드"},
		},
	}
}

func setFor(doc *core.Document, vectors [][]float32) *core.EmbeddingSet {
	metas := make([]core.SectionMeta, len(doc.Sections))
	for i := range doc.Sections {
		metas[i] = core.MetaFor(&doc.Sections[i])
	}
	dim := 0
	if len(vectors) > 0 {
		dim = len(vectors[0])
	}
	return &core.EmbeddingSet{DocumentID: doc.ID, Model: "test", Dimension: dim, Vectors: vectors, Sections: metas}
}

func staticLoader(set *core.EmbeddingSet, err error) Loader {
	return loaderFunc(func(ctx context.Context, documentID string) (*core.EmbeddingSet, error) {
		return set, err
	})
}

func TestCache_LoadReady(t *testing.T) {
	doc := testDoc()
	c := New(nil)
	assert.Equal(t, StateEmpty, c.State())

	set := setFor(doc, [][]float32{{2, 0}, {0, 3}, {1, 1}})
	require.NoError(t, c.Load(context.Background(), staticLoader(set, nil), doc))

	assert.Equal(t, StateReady, c.State())
	assert.NoError(t, c.Err())
	assert.Equal(t, "test", c.Model())
	assert.Equal(t, 2, c.Dimension())

	sims, err := c.Similarities([]float32{5, 0})
	require.NoError(t, err)
	require.Len(t, sims, 3)
	assert.InDelta(t, 1.0, sims[0], 1e-9)
	assert.InDelta(t, 0.0, sims[1], 1e-9)
	assert.InDelta(t, 0.7071067811865476, sims[2], 1e-9)
}

func TestCache_NegativeSimilarityClamped(t *testing.T) {
	doc := testDoc()
	c := New(nil)
	set := setFor(doc, [][]float32{{-1, 0}, {1, 0}, {0, 1}})
	require.NoError(t, c.Load(context.Background(), staticLoader(set, nil), doc))

	sims, err := c.Similarities([]float32{1, 0})
	require.NoError(t, err)
	assert.Equal(t, 0.0, sims[0])
	for _, s := range sims {
		assert.GreaterOrEqual(t, s, 0.0)
		assert.LessOrEqual(t, s, 1.0)
	}
}

func TestCache_Unavailable(t *testing.T) {
	doc := testDoc()
	good := setFor(doc, [][]float32{{1, 0}, {0, 1}, {1, 1}})

	changed := testDoc()
	changed.Sections[1].Content = "새 내용"

	short := setFor(doc, [][]float32{{1, 0}, {0, 1}, {1, 1}})
	short.Sections = short.Sections[:2]
	short.Vectors = short.Vectors[:2]

	tests := []struct {
		name    string
		loader  Loader
		doc     *core.Document
		wantErr error
	}{
		{"no loader", nil, doc, ErrNoLoader},
		{"missing artifact", staticLoader(nil, errors.New("not found")), doc, nil},
		{"section count mismatch", staticLoader(short, nil), doc, ErrStaleCache},
		{"section content changed", staticLoader(good, nil), changed, ErrStaleCache},
		{"inconsistent set", staticLoader(&core.EmbeddingSet{DocumentID: "kona", Dimension: 3, Vectors: [][]float32{{1}}, Sections: []core.SectionMeta{{}}}, nil), doc, core.ErrDimensionMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(nil)
			err := c.Load(context.Background(), tt.loader, tt.doc)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.Equal(t, StateUnavailable, c.State())
			assert.Equal(t, err, c.Err())

			_, err = c.Similarities([]float32{1, 0})
			assert.ErrorIs(t, err, ErrNotReady)
		})
	}
}

func TestCache_ReloadRecovers(t *testing.T) {
	doc := testDoc()
	c := New(nil)
	require.Error(t, c.Load(context.Background(), nil, doc))
	assert.Equal(t, StateUnavailable, c.State())

	set := setFor(doc, [][]float32{{1, 0}, {0, 1}, {1, 1}})
	require.NoError(t, c.Load(context.Background(), staticLoader(set, nil), doc))
	assert.Equal(t, StateReady, c.State())
	assert.NoError(t, c.Err())
}

func TestCache_NotReadyBeforeLoad(t *testing.T) {
	_, err := New(nil).Similarities([]float32{1})
	assert.ErrorIs(t, err, ErrNotReady)
}

func TestCache_DimensionMismatch(t *testing.T) {
	doc := testDoc()
	c := New(nil)
	set := setFor(doc, [][]float32{{1, 0}, {0, 1}, {1, 1}})
	require.NoError(t, c.Load(context.Background(), staticLoader(set, nil), doc))

	_, err := c.Similarities([]float32{1, 0, 0})
	assert.ErrorIs(t, err, core.ErrDimensionMismatch)
}

func TestCache_EmptyDocument(t *testing.T) {
	doc := &core.Document{ID: "empty", Sections: []core.Section{}}
	c := New(nil)
	require.NoError(t, c.Load(context.Background(), staticLoader(setFor(doc, nil), nil), doc))
	sims, err := c.Similarities([]float32{1, 2, 3})
	require.NoError(t, err)
	assert.Empty(t, sims)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "empty", StateEmpty.String())
	assert.Equal(t, "loading", StateLoading.String())
	assert.Equal(t, "ready", StateReady.String())
	assert.Equal(t, "unavailable", StateUnavailable.String())
	assert.Equal(t, "invalid", State(42).String())
}
