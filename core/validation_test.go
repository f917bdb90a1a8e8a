package core

import (
	"errors"
	"testing"
)

func TestValidateDocument(t *testing.T) {
	tests := []struct {
		name    string
		doc     *Document
		wantErr error
	}{
		{
			name: "valid document",
			doc: &Document{
				ID:       "sonata",
				FileName: "sonata.json",
				Sections: []Section{{Title: "타이어", Pages: PageRange{Start: 1, End: 2}}},
			},
			wantErr: nil,
		},
		{
			name:    "valid empty manual",
			doc:     &Document{ID: "kona", Sections: []Section{}},
			wantErr: nil,
		},
		{
			name: "section without title",
			doc: &Document{
				ID:       "kona",
				Sections: []Section{{Content: "본문만 있는 섹션"}},
			},
			wantErr: nil,
		},
		{
			name:    "nil document",
			doc:     nil,
			wantErr: ErrInvalidDocument,
		},
		{
			name:    "missing sections",
			doc:     &Document{ID: "kona"},
			wantErr: ErrMissingSections,
		},
		{
			name:    "missing id",
			doc:     &Document{Sections: []Section{}},
			wantErr: ErrEmptyDocumentID,
		},
		{
			name: "inverted page range",
			doc: &Document{
				ID:       "kona",
				Sections: []Section{{Title: "x", Pages: PageRange{Start: 9, End: 3}}},
			},
			wantErr: ErrInvalidPageRange,
		},
		{
			name: "inverted page range in subsection",
			doc: &Document{
				ID: "kona",
				Sections: []Section{{
					Title:       "x",
					Subsections: []Section{{Pages: PageRange{Start: 5, End: 4}}},
				}},
			},
			wantErr: ErrInvalidSection,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDocument(tt.doc)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateDocument() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateDocument() error = %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, ErrInvalidDocument) {
				t.Errorf("ValidateDocument() error = %v, should wrap ErrInvalidDocument", err)
			}
		})
	}
}

func TestValidateEmbeddingSet(t *testing.T) {
	meta := []SectionMeta{{Title: "a"}, {Title: "b"}}

	tests := []struct {
		name    string
		set     *EmbeddingSet
		wantErr error
	}{
		{
			name: "valid set",
			set: &EmbeddingSet{
				DocumentID: "kona",
				Dimension:  2,
				Vectors:    [][]float32{{1, 0}, {0, 1}},
				Sections:   meta,
			},
		},
		{
			name:    "empty set is valid",
			set:     &EmbeddingSet{DocumentID: "kona"},
			wantErr: nil,
		},
		{
			name:    "nil set",
			set:     nil,
			wantErr: ErrInvalidEmbeddingSet,
		},
		{
			name: "misaligned metadata",
			set: &EmbeddingSet{
				DocumentID: "kona",
				Dimension:  2,
				Vectors:    [][]float32{{1, 0}},
				Sections:   meta,
			},
			wantErr: ErrInvalidEmbeddingSet,
		},
		{
			name: "ragged vectors",
			set: &EmbeddingSet{
				DocumentID: "kona",
				Dimension:  2,
				Vectors:    [][]float32{{1, 0}, {0, 1, 0}},
				Sections:   meta,
			},
			wantErr: ErrDimensionMismatch,
		},
		{
			name: "zero dimension",
			set: &EmbeddingSet{
				DocumentID: "kona",
				Vectors:    [][]float32{{}, {}},
				Sections:   meta,
			},
			wantErr: ErrInvalidEmbeddingSet,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmbeddingSet(tt.set)
			if tt.wantErr == nil && err != nil {
				t.Errorf("ValidateEmbeddingSet() unexpected error = %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateEmbeddingSet() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
