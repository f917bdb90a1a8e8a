package badger

import (
	"context"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/hydrive/core"
	"github.com/poiesic/hydrive/storage"
)

// EmbeddingRepository implements storage.EmbeddingRepository for BadgerDB.
type EmbeddingRepository struct {
	backend *Backend
}

var _ storage.EmbeddingRepository = (*EmbeddingRepository)(nil)

// NewEmbeddingRepository creates a new EmbeddingRepository.
func NewEmbeddingRepository(backend *Backend) (*EmbeddingRepository, error) {
	return &EmbeddingRepository{
		backend: backend,
	}, nil
}

// Close releases resources. EmbeddingRepository has no resources to release.
func (r *EmbeddingRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *EmbeddingRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// SaveEmbeddings validates and stores an embedding set.
func (r *EmbeddingRepository) SaveEmbeddings(ctx context.Context, set *core.EmbeddingSet) error {
	if err := core.ValidateEmbeddingSet(set); err != nil {
		return err
	}
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeEmbeddingKey(set.DocumentID), storage.MarshalEmbeddingSet(set)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetEmbeddings retrieves the embedding set for a document.
func (r *EmbeddingRepository) GetEmbeddings(ctx context.Context, documentID string) (*core.EmbeddingSet, error) {
	var set *core.EmbeddingSet
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		set, err = getValue(tx, makeEmbeddingKey(documentID), storage.UnmarshalEmbeddingSet)
		return err
	}, false)
	return set, err
}

// DeleteEmbeddings removes the embedding set for a document if present.
func (r *EmbeddingRepository) DeleteEmbeddings(ctx context.Context, documentID string) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Delete(makeEmbeddingKey(documentID)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}
