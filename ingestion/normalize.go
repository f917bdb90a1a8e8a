package ingestion

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/poiesic/hydrive/core"
)

var (
	// Template residue left behind by the PDF extraction step.
	artifactPatterns = []*regexp.Regexp{
		regexp.MustCompile(`WL_\w+`),
		regexp.MustCompile(`2C_\w+`),
		regexp.MustCompile(`정기 점검\s*\d+`),
	}

	emphasisPair = regexp.MustCompile(`\*\*([^*]+)\*\*\s*\*\*([^*]+)\*\*`)
	hangulWord   = regexp.MustCompile(`[가-힣]+`)
	spaceRun     = regexp.MustCompile(`[ \t\p{Zs}]+`)
)

// NormalizeDocument cleans every section of doc in place.
func NormalizeDocument(doc *core.Document) {
	for i := range doc.Sections {
		NormalizeSection(&doc.Sections[i])
	}
}

// NormalizeSection cleans a section's title, content and keywords, recursing
// into subsections.
func NormalizeSection(s *core.Section) {
	s.Title = strings.TrimSpace(spaceRun.ReplaceAllString(s.Title, " "))
	s.SectionNumber = strings.TrimSpace(s.SectionNumber)
	s.Content = CleanContent(s.Content)
	s.Keywords = NormalizeKeywords(s.Keywords)
	for i := range s.Subsections {
		NormalizeSection(&s.Subsections[i])
	}
}

// CleanContent strips extraction artifacts and repeated text from a section body.
// It collapses doubled emphasis, immediately repeated Hangul words and
// duplicate sentences, keeping the first occurrence of each.
func CleanContent(content string) string {
	if strings.TrimSpace(content) == "" {
		return ""
	}

	content = collapseEmphasis(content)
	content = collapseRepeatedWords(content)
	for _, p := range artifactPatterns {
		content = p.ReplaceAllString(content, "")
	}
	return dedupSentences(content)
}

// NormalizeKeywords trims keywords, drops blanks and removes case-insensitive duplicates.
func NormalizeKeywords(keywords []string) []string {
	if len(keywords) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(keywords))
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.TrimSpace(spaceRun.ReplaceAllString(k, " "))
		if k == "" {
			continue
		}
		folded := strings.ToLower(k)
		if seen[folded] {
			continue
		}
		seen[folded] = true
		out = append(out, k)
	}
	return out
}

// collapseEmphasis rewrites "**x** **x**" to "**x**".
func collapseEmphasis(s string) string {
	return emphasisPair.ReplaceAllStringFunc(s, func(m string) string {
		parts := emphasisPair.FindStringSubmatch(m)
		if parts[1] == parts[2] {
			return "**" + parts[1] + "**"
		}
		return m
	})
}

// collapseRepeatedWords removes a Hangul word that repeats the previous one
// with only whitespace between them, e.g. "점검 점검" becomes "점검".
func collapseRepeatedWords(s string) string {
	locs := hangulWord.FindAllStringIndex(s, -1)
	if len(locs) < 2 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	last := 0
	prev := locs[0]
	for _, loc := range locs[1:] {
		gap := s[prev[1]:loc[0]]
		if gap != "" && strings.TrimSpace(gap) == "" && s[prev[0]:prev[1]] == s[loc[0]:loc[1]] {
			b.WriteString(s[last:prev[1]])
			last = loc[1]
		}
		prev = loc
	}
	b.WriteString(s[last:])
	return b.String()
}

// dedupSentences splits text into sentences and drops repeats, comparing
// case-insensitively with whitespace collapsed.
func dedupSentences(s string) string {
	sentences := splitSentences(s)
	seen := make(map[string]bool, len(sentences))
	kept := make([]string, 0, len(sentences))
	for _, sentence := range sentences {
		key := strings.ToLower(strings.Join(strings.Fields(sentence), " "))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		kept = append(kept, strings.Join(strings.Fields(sentence), " "))
	}
	return strings.Join(kept, " ")
}

// splitSentences breaks text after '.', '!' or '?' when followed by whitespace
// or the end of input, and at line breaks.
func splitSentences(s string) []string {
	runes := []rune(s)
	var sentences []string
	start := 0
	for i, r := range runes {
		switch {
		case r == '\n':
			sentences = append(sentences, string(runes[start:i]))
			start = i + 1
		case r == '.' || r == '!' || r == '?':
			if i+1 == len(runes) || unicode.IsSpace(runes[i+1]) {
				sentences = append(sentences, string(runes[start:i+1]))
				start = i + 1
			}
		}
	}
	if start < len(runes) {
		sentences = append(sentences, string(runes[start:]))
	}
	return sentences
}
