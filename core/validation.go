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

import (
	"fmt"
)

// ValidateDocument validates a Document according to domain rules.
//
// Validation rules:
//   - ID must not be empty
//   - Sections must not be nil (an empty, non-nil slice is a valid empty manual)
//   - Every section must pass ValidateSection
//
// NOT validated:
//   - Vehicle (unknown manuals are searchable)
//   - Keywords (sections without keywords score 0 on that signal)
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}

	if doc.ID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyDocumentID)
	}

	if doc.Sections == nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrMissingSections)
	}

	for i := range doc.Sections {
		if err := ValidateSection(&doc.Sections[i]); err != nil {
			return fmt.Errorf("%w: section %d: %w", ErrInvalidDocument, i, err)
		}
	}

	return nil
}

// ValidateSection checks structural invariants of a single section.
// A missing title is allowed; scoring degrades the title signal to 0.
func ValidateSection(section *Section) error {
	if section == nil {
		return fmt.Errorf("%w: section is nil", ErrInvalidSection)
	}
	if section.Pages.Start > section.Pages.End {
		return fmt.Errorf("%w: %w: %d > %d", ErrInvalidSection, ErrInvalidPageRange,
			section.Pages.Start, section.Pages.End)
	}
	for i := range section.Subsections {
		if err := ValidateSection(&section.Subsections[i]); err != nil {
			return err
		}
	}
	return nil
}

// ValidateEmbeddingSet checks that an embedding set is internally consistent:
// vectors and metadata are aligned and every vector has the declared dimension.
func ValidateEmbeddingSet(set *EmbeddingSet) error {
	if set == nil {
		return fmt.Errorf("%w: set is nil", ErrInvalidEmbeddingSet)
	}
	if set.DocumentID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEmbeddingSet, ErrEmptyDocumentID)
	}
	if len(set.Vectors) != len(set.Sections) {
		return fmt.Errorf("%w: %d vectors for %d sections", ErrInvalidEmbeddingSet,
			len(set.Vectors), len(set.Sections))
	}
	if len(set.Vectors) > 0 && set.Dimension <= 0 {
		return fmt.Errorf("%w: dimension must be positive", ErrInvalidEmbeddingSet)
	}
	for i, v := range set.Vectors {
		if len(v) != set.Dimension {
			return fmt.Errorf("%w: %w: vector %d has %d values, want %d",
				ErrInvalidEmbeddingSet, ErrDimensionMismatch, i, len(v), set.Dimension)
		}
	}
	return nil
}
