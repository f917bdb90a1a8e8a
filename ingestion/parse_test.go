package ingestion

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/hydrive/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const santafeManual = `{
  "file_name": "santafe_2024.pdf",
  "sections": [
    {
      "section_number": "1",
      "title": "타이어 공기압 점검",
      "page_range": [12, 15],
      "content": "정기적으로 타이어 공기압을 점검하세요.",
      "keywords": ["타이어", "공기압"],
      "subsections": [
        {"title": "스페어 타이어", "page_range": "14-15", "content": "스페어 타이어도 점검하세요."}
      ]
    },
    {
      "section_number": 2,
      "title": "엔진 오일",
      "page_range": 20,
      "content": "엔진 오일을 교체하십시오."
    }
  ]
}`

func TestParseDocument(t *testing.T) {
	doc, err := ParseDocument([]byte(santafeManual), "ignored.json")
	require.NoError(t, err)

	assert.Equal(t, "santafe", doc.ID)
	assert.Equal(t, "santafe_2024.pdf", doc.FileName)
	assert.Equal(t, core.Vehicle("싼타페"), doc.Vehicle)
	require.Len(t, doc.Sections, 2)

	first := doc.Sections[0]
	assert.Equal(t, "1", first.SectionNumber)
	assert.Equal(t, core.PageRange{Start: 12, End: 15}, first.Pages)
	assert.Equal(t, []string{"타이어", "공기압"}, first.Keywords)
	assert.Equal(t, "santafe", first.Source)
	require.Len(t, first.Subsections, 1)
	assert.Equal(t, "1.1", first.Subsections[0].SectionNumber)
	assert.Equal(t, core.PageRange{Start: 14, End: 15}, first.Subsections[0].Pages)
	assert.Equal(t, "santafe", first.Subsections[0].Source)

	second := doc.Sections[1]
	assert.Equal(t, "2", second.SectionNumber)
	assert.Equal(t, core.PageRange{Start: 20, End: 20}, second.Pages)
	assert.Empty(t, second.Keywords)
}

func TestParseDocument_FallbackName(t *testing.T) {
	doc, err := ParseDocument([]byte(`{"sections": []}`), "Kona_Manual.json")
	require.NoError(t, err)
	assert.Equal(t, "kona", doc.ID)
	assert.Equal(t, "Kona_Manual.json", doc.FileName)
	assert.NotNil(t, doc.Sections)
	assert.Empty(t, doc.Sections)
}

func TestParseDocument_Errors(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantErr error
	}{
		{"missing sections", `{"file_name": "a.pdf"}`, core.ErrMissingSections},
		{"null sections", `{"sections": null}`, core.ErrMissingSections},
		{"malformed json", `{"sections": [`, core.ErrInvalidDocument},
		{"bad page range", `{"sections": [{"page_range": "abc"}]}`, core.ErrInvalidPageRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDocument([]byte(tt.payload), "manual.json")
			require.Error(t, err)
			assert.ErrorIs(t, err, core.ErrInvalidDocument)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tucson.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"sections": [{"title": "시동"}]}`), 0o644))

	doc, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "tucson", doc.ID)
	assert.Equal(t, core.Vehicle("투싼"), doc.Vehicle)

	_, err = ReadFile(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, ErrReadFailed)
}
