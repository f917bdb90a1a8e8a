package badger

// Key prefixes for different data types
const (
	documentPrefix  = "doc:"
	embeddingPrefix = "emb:"
)

// makeDocumentKey generates a key for a document by ID.
func makeDocumentKey(id string) []byte {
	return []byte(documentPrefix + id)
}

// makeEmbeddingKey generates a key for a document's embedding set.
func makeEmbeddingKey(documentID string) []byte {
	return []byte(embeddingPrefix + documentID)
}
