package precompute

import "errors"

var (
	// ErrInvalidMaxAttempts is returned when the retry budget is not positive.
	ErrInvalidMaxAttempts = errors.New("max attempts must be greater than 0")

	// ErrEmbeddingCount is returned when the embedder returns a different number
	// of vectors than texts it was given.
	ErrEmbeddingCount = errors.New("embedder returned wrong number of vectors")

	// ErrNothingToEmbed is returned when no section has any text.
	ErrNothingToEmbed = errors.New("document has no embeddable text")

	// ErrEmbedderRequired is returned by NewBuilder without an embedder.
	ErrEmbedderRequired = errors.New("embedder is required")

	// ErrRepositoryRequired is returned by NewBuilder without a repository.
	ErrRepositoryRequired = errors.New("embedding repository is required")
)
