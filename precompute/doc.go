// Package precompute builds the offline embedding cache for a manual.
//
// A Builder embeds the title and content of every top-level section in
// batches, retrying failed batches with exponential backoff, L2-normalizes
// the vectors and stores them as a core.EmbeddingSet. The set carries a
// fingerprint per section so a search engine can detect when the manual has
// changed since the cache was built.
package precompute
