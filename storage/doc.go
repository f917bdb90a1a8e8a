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

// Package storage provides the storage abstraction layer for hydrive.
//
// This package defines repository interfaces that decouple persistence from the
// search engine. Documents and embedding sets are stored as opaque blobs
// encoded with mus-go; the engine never reads storage at query time.
//
// # Architecture
//
//   - Repository: shared transaction and lifecycle operations
//   - DocumentRepository: ingested manuals keyed by document ID
//   - EmbeddingRepository: precomputed section vectors keyed by document ID
//
// # Usage
//
//	docs, embeddings, backend, err := badger.NewRepositories("/path/to/db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//
// Use in tests with in-memory storage:
//
//	docs, embeddings, backend, err := badger.NewMemoryRepositories()
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
package storage
