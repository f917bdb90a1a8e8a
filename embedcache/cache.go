// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package embedcache

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/poiesic/hydrive/core"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Loader fetches the persisted embedding set for a document.
// storage.EmbeddingRepository satisfies it.
type Loader interface {
	GetEmbeddings(ctx context.Context, documentID string) (*core.EmbeddingSet, error)
}

// Cache holds one document's normalized section vectors as a matrix with one
// row per top-level section.
type Cache struct {
	mu        sync.RWMutex
	state     State
	err       error
	matrix    *mat.Dense
	rows      int
	dimension int
	model     string
	logger    *slog.Logger
}

// New creates an empty cache.
func New(logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		state:  StateEmpty,
		logger: logger.With("component", "embedcache"),
	}
}

// Load fetches and validates the embedding set for doc. On any failure the
// cache becomes Unavailable and the cause is logged and returned; callers are
// expected to keep serving in lexical mode.
func (c *Cache) Load(ctx context.Context, loader Loader, doc *core.Document) error {
	c.mu.Lock()
	c.state = StateLoading
	c.err = nil
	c.mu.Unlock()

	matrix, set, err := c.load(ctx, loader, doc)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.state = StateUnavailable
		c.err = err
		c.matrix = nil
		c.rows, c.dimension, c.model = 0, 0, ""
		c.logger.Warn("embedding cache unavailable", "document", doc.ID, "err", err)
		return err
	}
	c.state = StateReady
	c.matrix = matrix
	c.rows = set.Len()
	c.dimension = set.Dimension
	c.model = set.Model
	c.logger.Info("embedding cache ready", "document", doc.ID, "sections", c.rows, "model", c.model)
	return nil
}

func (c *Cache) load(ctx context.Context, loader Loader, doc *core.Document) (*mat.Dense, *core.EmbeddingSet, error) {
	if loader == nil {
		return nil, nil, ErrNoLoader
	}
	set, err := loader.GetEmbeddings(ctx, doc.ID)
	if err != nil {
		return nil, nil, err
	}
	if err := core.ValidateEmbeddingSet(set); err != nil {
		return nil, nil, err
	}
	if err := checkAligned(set, doc); err != nil {
		return nil, nil, err
	}
	if set.Len() == 0 {
		return nil, set, nil
	}

	data := make([]float64, 0, set.Len()*set.Dimension)
	for _, v := range set.Vectors {
		row := make([]float64, len(v))
		for i, f := range v {
			row[i] = float64(f)
		}
		normalize(row)
		data = append(data, row...)
	}
	return mat.NewDense(set.Len(), set.Dimension, data), set, nil
}

// checkAligned verifies that vector i belongs to top-level section i of doc.
func checkAligned(set *core.EmbeddingSet, doc *core.Document) error {
	if len(set.Sections) != len(doc.Sections) {
		return fmt.Errorf("%w: %d cached sections, document has %d",
			ErrStaleCache, len(set.Sections), len(doc.Sections))
	}
	for i := range doc.Sections {
		if set.Sections[i].Fingerprint != core.SectionFingerprint(&doc.Sections[i]) {
			return fmt.Errorf("%w: section %d (%q) changed", ErrStaleCache, i, doc.Sections[i].Title)
		}
	}
	return nil
}

// State returns the current lifecycle state.
func (c *Cache) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Err returns the reason the cache is Unavailable, or nil.
func (c *Cache) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}

// Model returns the embedding model the cached vectors were built with.
func (c *Cache) Model() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.model
}

// Len returns the number of cached section vectors, or 0 when not ready.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.rows
}

// Dimension returns the cached vector dimension, or 0 when not ready.
func (c *Cache) Dimension() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dimension
}

// Similarities returns the cosine similarity between query and every cached
// section, in section order. Negative similarities are clamped to 0.
func (c *Cache) Similarities(query []float32) ([]float64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.state != StateReady {
		return nil, ErrNotReady
	}
	if c.rows == 0 {
		return []float64{}, nil
	}
	if len(query) != c.dimension {
		return nil, fmt.Errorf("%w: query has %d values, cache has %d",
			core.ErrDimensionMismatch, len(query), c.dimension)
	}

	q := make([]float64, len(query))
	for i, f := range query {
		q[i] = float64(f)
	}
	normalize(q)

	var out mat.VecDense
	out.MulVec(c.matrix, mat.NewVecDense(len(q), q))

	sims := make([]float64, c.rows)
	for i := range sims {
		sims[i] = min(1, max(0, out.AtVec(i)))
	}
	return sims, nil
}

// normalize scales v to unit L2 length in place. Zero vectors are left as is.
func normalize(v []float64) {
	n := floats.Norm(v, 2)
	if n == 0 {
		return
	}
	floats.Scale(1/n, v)
}
