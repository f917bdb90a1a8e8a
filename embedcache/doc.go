// Package embedcache holds the precomputed section embeddings of one loaded
// manual and scores a query embedding against all of them with a single
// matrix-vector product.
//
// A Cache moves through Empty, Loading and then Ready or Unavailable. It is
// never rebuilt while serving; building vectors is the job of the precompute
// package. A cache whose stored section fingerprints disagree with the loaded
// document is treated as Unavailable.
package embedcache
