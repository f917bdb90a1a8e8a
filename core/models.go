package core

import (
	"encoding/binary"
	"strings"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Mode selects how the content signal is computed.
type Mode string

const (
	// ModeAuto uses semantic scoring when an embedding cache is ready and
	// lexical scoring otherwise.
	ModeAuto Mode = "auto"
	// ModeLexical scores content by token occurrence density.
	ModeLexical Mode = "lexical"
	// ModeSemantic scores content by cosine similarity against cached embeddings.
	ModeSemantic Mode = "semantic"
)

// ParseMode converts a string into a Mode. The empty string maps to ModeAuto.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeAuto:
		return ModeAuto, nil
	case ModeLexical:
		return ModeLexical, nil
	case ModeSemantic:
		return ModeSemantic, nil
	}
	return "", ErrInvalidMode
}

// Section is a titled, paginated unit of manual content.
// Sections are treated as immutable once a document has been ingested.
type Section struct {
	Source        string // ID of the owning document
	SectionNumber string
	Title         string
	Pages         PageRange
	Content       string   // Normalized body text
	Keywords      []string // Short domain terms, deduplicated
	Subsections   []Section
}

// Citation returns a short human readable reference to the section,
// preferring the page range, then the section number, then the title.
func (s *Section) Citation() string {
	if !s.Pages.IsEmpty() {
		return "p. " + s.Pages.String()
	}
	if s.SectionNumber != "" {
		return "§" + s.SectionNumber
	}
	return s.Title
}

// Document is a named collection of sections from one owner manual.
type Document struct {
	ID       string // Derived from the file name
	FileName string
	Vehicle  Vehicle
	Sections []Section
}

// SectionCount returns the number of top-level sections.
func (d *Document) SectionCount() int {
	return len(d.Sections)
}

// ScoreBreakdown holds the four per-signal scores for one (query, section) pair.
// Every field is in [0,1].
type ScoreBreakdown struct {
	Title   float64
	Keyword float64
	Content float64
	Bonus   float64
}

// SearchResult is a ranked section with its aggregate score and signal breakdown.
type SearchResult struct {
	Section   *Section
	Score     float64
	Breakdown ScoreBreakdown
	Mode      Mode // Mode actually used to compute the content signal
}
