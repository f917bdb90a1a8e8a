package core

import (
	"strings"
	"time"
)

// SectionMeta is the metadata snapshot stored alongside each cached vector.
// It is compared against the loaded document to detect stale caches.
type SectionMeta struct {
	SectionNumber string
	Title         string
	Fingerprint   ID
}

// EmbeddingSet is the persisted embedding cache for one document.
// Vectors[i] belongs to Sections[i]; both follow the document's section order.
type EmbeddingSet struct {
	DocumentID string
	Model      string
	Dimension  int
	Vectors    [][]float32
	Sections   []SectionMeta
	CreatedAt  time.Time
}

// Len returns the number of cached sections.
func (e *EmbeddingSet) Len() int {
	return len(e.Vectors)
}

// SectionFingerprint identifies a section by the text that is embedded for it.
func SectionFingerprint(s *Section) ID {
	return IDFromContent(s.SectionNumber + "\x00" + s.Title + "\x00" + s.Content)
}

// MetaFor builds the cache metadata entry for a section.
func MetaFor(s *Section) SectionMeta {
	return SectionMeta{
		SectionNumber: s.SectionNumber,
		Title:         s.Title,
		Fingerprint:   SectionFingerprint(s),
	}
}

// EmbeddingText returns the text embedded for a section: its title and content.
func EmbeddingText(s *Section) string {
	return strings.TrimSpace(s.Title + "\n" + s.Content)
}
