package ingestion

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/poiesic/hydrive/core"
)

// rawDocument is the on-disk manual format produced by the extraction step.
type rawDocument struct {
	FileName string        `json:"file_name"`
	Sections *[]rawSection `json:"sections"`
}

type rawSection struct {
	SectionNumber flexString     `json:"section_number"`
	Title         string         `json:"title"`
	PageRange     core.PageRange `json:"page_range"`
	Content       string         `json:"content"`
	Keywords      []string       `json:"keywords"`
	Subsections   []rawSection   `json:"subsections"`
}

// flexString accepts either a JSON string or a JSON number.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// ParseDocument decodes a manual in the JSON section format. fallbackName is
// used when the payload carries no file_name. The returned document is not yet
// normalized.
func ParseDocument(data []byte, fallbackName string) (*core.Document, error) {
	var raw rawDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrInvalidDocument, err)
	}
	if raw.Sections == nil {
		return nil, fmt.Errorf("%w: %w", core.ErrInvalidDocument, core.ErrMissingSections)
	}

	fileName := raw.FileName
	if fileName == "" {
		fileName = fallbackName
	}

	doc := &core.Document{
		ID:       core.DocumentID(fileName),
		FileName: fileName,
		Vehicle:  core.ClassifyVehicle(fileName),
		Sections: convertSections(*raw.Sections, ""),
	}
	setSource(doc.Sections, doc.ID)
	return doc, nil
}

// ReadFile loads and parses a manual from disk.
func ReadFile(path string) (*core.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadFailed, err)
	}
	return ParseDocument(data, filepath.Base(path))
}

func convertSections(raws []rawSection, parentNumber string) []core.Section {
	sections := make([]core.Section, len(raws))
	for i, r := range raws {
		number := string(r.SectionNumber)
		if number == "" && parentNumber != "" {
			number = parentNumber + "." + strconv.Itoa(i+1)
		}
		sections[i] = core.Section{
			SectionNumber: number,
			Title:         r.Title,
			Pages:         r.PageRange,
			Content:       r.Content,
			Keywords:      r.Keywords,
		}
		if len(r.Subsections) > 0 {
			sections[i].Subsections = convertSections(r.Subsections, number)
		}
	}
	return sections
}

func setSource(sections []core.Section, source string) {
	for i := range sections {
		sections[i].Source = source
		setSource(sections[i].Subsections, source)
	}
}
