package search

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Stop words removed from every token set
var stopWords = map[string]bool{
	"the": true, "an": true, "be": true, "is": true, "are": true,
	"was": true, "to": true, "of": true, "and": true, "in": true, "that": true,
	"have": true, "it": true, "for": true, "not": true, "on": true, "with": true,
	"as": true, "you": true, "do": true, "at": true, "this": true, "but": true,
	"by": true, "from": true,
}

// Tokenize splits text into maximal runs of letters and digits of any script,
// lower-cases them and returns the distinct tokens in first-occurrence order.
// Single-character tokens are dropped unless numeric.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	tokens := make([]string, 0, len(fields))
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if utf8.RuneCountInString(f) < 2 && !isNumeric(f) {
			continue
		}
		if stopWords[f] || seen[f] {
			continue
		}
		seen[f] = true
		tokens = append(tokens, f)
	}
	return tokens
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}

// Query is a tokenized search question. It is built once per search.
type Query struct {
	Raw    string
	Lower  string
	Tokens []string
}

// NewQuery prepares text for scoring.
func NewQuery(text string) Query {
	return Query{
		Raw:    text,
		Lower:  strings.ToLower(text),
		Tokens: Tokenize(text),
	}
}

// IsEmpty reports whether the query carries no searchable tokens.
func (q Query) IsEmpty() bool {
	return len(q.Tokens) == 0
}
