// Package search ranks the sections of an owner manual against a question.
//
// Every top-level section gets four signals in [0,1]:
//   - title: query token overlap with the section title
//   - keyword: overlap between the query and the section keywords
//   - content: token density (lexical mode) or embedding similarity (semantic mode)
//   - bonus: a table of intent rules such as procedure or troubleshooting questions
//
// The signals are blended by a per-mode weight profile, thresholded, stable
// sorted and truncated. Subsections travel with their parent but are not
// scored on their own.
package search
