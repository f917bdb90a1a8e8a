package search

import "strings"

// titleScore rewards query tokens found in the title. A query token without an
// exact match earns half credit when it contains, or is contained in, a title token.
func titleScore(q Query, st sectionText) float64 {
	if len(q.Tokens) == 0 || len(st.titleTokens) == 0 {
		return 0
	}

	titleSet := make(map[string]bool, len(st.titleTokens))
	for _, t := range st.titleTokens {
		titleSet[t] = true
	}

	var exact, partial int
	for _, qt := range q.Tokens {
		if titleSet[qt] {
			exact++
			continue
		}
		for _, t := range st.titleTokens {
			if strings.Contains(t, qt) || strings.Contains(qt, t) {
				partial++
				break
			}
		}
	}
	return clamp01((float64(exact) + 0.5*float64(partial)) / float64(max(1, len(q.Tokens))))
}

// keywordScore averages per-keyword credit: 1 when the keyword appears in the
// query, 0.5 when some query token is part of the keyword.
func keywordScore(q Query, st sectionText) float64 {
	if len(st.keywords) == 0 {
		return 0
	}

	var total float64
	for _, k := range st.keywords {
		if k == "" {
			continue
		}
		if strings.Contains(q.Lower, k) {
			total += 1
			continue
		}
		for _, qt := range q.Tokens {
			if strings.Contains(k, qt) {
				total += 0.5
				break
			}
		}
	}
	return clamp01(total / float64(len(st.keywords)))
}

// lexicalContentScore measures query token density in the section body per
// hundred characters. Tokens of three or more characters count one and a half
// times.
func lexicalContentScore(q Query, st sectionText) float64 {
	if st.contentRunes == 0 || len(q.Tokens) == 0 {
		return 0
	}

	var hits float64
	for _, qt := range q.Tokens {
		n := float64(strings.Count(st.content, qt))
		hits += n
		if len([]rune(qt)) >= 3 {
			hits += 0.5 * n
		}
	}
	return clamp01(hits / (float64(st.contentRunes) / 100))
}

func clamp01(v float64) float64 {
	return min(1, max(0, v))
}
