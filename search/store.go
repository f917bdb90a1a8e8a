package search

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/poiesic/hydrive/core"
	"github.com/poiesic/hydrive/embedcache"
)

// sectionText is the lower-cased searchable form of one section.
type sectionText struct {
	title        string
	titleTokens  []string
	content      string
	contentRunes int
	keywords     []string
}

func newSectionText(s *core.Section) sectionText {
	keywords := make([]string, 0, len(s.Keywords))
	for _, k := range s.Keywords {
		keywords = append(keywords, strings.ToLower(strings.TrimSpace(k)))
	}
	content := strings.ToLower(s.Content)
	return sectionText{
		title:        strings.ToLower(s.Title),
		titleTokens:  Tokenize(s.Title),
		content:      content,
		contentRunes: utf8.RuneCountInString(content),
		keywords:     keywords,
	}
}

// snapshot is an immutable view of one loaded document. A search reads exactly
// one snapshot, so it never observes a partially replaced store.
type snapshot struct {
	doc      *core.Document
	sections []core.Section
	texts    []sectionText
	cache    *embedcache.Cache
}

func newSnapshot(doc *core.Document, cache *embedcache.Cache) *snapshot {
	snap := &snapshot{doc: doc, cache: cache}
	if doc == nil {
		return snap
	}
	snap.sections = slices.Clone(doc.Sections)
	snap.texts = make([]sectionText, len(snap.sections))
	for i := range snap.sections {
		snap.texts[i] = newSectionText(&snap.sections[i])
	}
	return snap
}

// withCache returns a copy of the snapshot that uses a different cache.
func (s *snapshot) withCache(cache *embedcache.Cache) *snapshot {
	return &snapshot{
		doc:      s.doc,
		sections: s.sections,
		texts:    s.texts,
		cache:    cache,
	}
}

func (s *snapshot) len() int {
	return len(s.sections)
}
