package storage

import (
	"context"

	"github.com/poiesic/hydrive/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// DocumentRepository persists ingested manuals.
type DocumentRepository interface {
	Repository

	// SaveDocument stores a document, replacing any existing document with the same ID.
	SaveDocument(ctx context.Context, doc *core.Document) error

	// GetDocument retrieves a document by ID.
	// Returns ErrNotFound if the document doesn't exist.
	GetDocument(ctx context.Context, id string) (*core.Document, error)

	// ListDocuments returns every stored document ordered by ID.
	ListDocuments(ctx context.Context) ([]*core.Document, error)

	// DeleteDocument removes a document.
	// Returns ErrNotFound if the document doesn't exist.
	DeleteDocument(ctx context.Context, id string) error
}

// EmbeddingRepository persists precomputed section embedding sets, one per document.
type EmbeddingRepository interface {
	Repository

	// SaveEmbeddings stores a set, replacing any existing set for the same document.
	SaveEmbeddings(ctx context.Context, set *core.EmbeddingSet) error

	// GetEmbeddings retrieves the set for a document.
	// Returns ErrNotFound if no set has been built.
	GetEmbeddings(ctx context.Context, documentID string) (*core.EmbeddingSet, error)

	// DeleteEmbeddings removes the set for a document. Missing sets are not an error.
	DeleteEmbeddings(ctx context.Context, documentID string) error
}
