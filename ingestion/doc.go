// Package ingestion turns extracted owner-manual JSON into validated core documents.
//
// A manual passes through three steps:
//   - ParseDocument decodes the loosely typed JSON into core.Document
//   - NormalizeDocument strips extraction artifacts and duplicate sentences
//   - the Pipeline optionally enriches sections that carry no keywords
//
// Keyword enrichment runs concurrently on a worker pool. Failures for a single
// section are logged and leave that section without keywords.
package ingestion
