package ingestion

import "errors"

var (
	// ErrReadFailed is returned when a manual file cannot be read.
	ErrReadFailed = errors.New("failed to read manual")

	// ErrExtractorRequired is returned when WithExtractor is given a nil extractor.
	ErrExtractorRequired = errors.New("keyword extractor required")
)
