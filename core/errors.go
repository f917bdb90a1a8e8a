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

package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidDocument indicates a Document failed validation.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrMissingSections indicates the document has no sections collection.
	ErrMissingSections = errors.New("document has no sections collection")

	// ErrEmptyDocumentID indicates the document identifier could not be derived.
	ErrEmptyDocumentID = errors.New("document id cannot be empty")

	// ErrInvalidSection indicates a Section failed validation.
	ErrInvalidSection = errors.New("invalid section")

	// ErrInvalidPageRange indicates a page range could not be parsed or is inverted.
	ErrInvalidPageRange = errors.New("invalid page range")

	// ErrInvalidEmbeddingSet indicates a persisted embedding set is malformed.
	ErrInvalidEmbeddingSet = errors.New("invalid embedding set")

	// ErrDimensionMismatch indicates vectors of differing length.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrInvalidMode indicates an unknown search mode string.
	ErrInvalidMode = errors.New("invalid search mode")
)
