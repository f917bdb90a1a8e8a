package openai

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepairJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "valid json unchanged",
			input: `{"keywords": [{"term": "타이어", "importance": 9}]}`,
			want:  `{"keywords": [{"term": "타이어", "importance": 9}]}`,
		},
		{
			name:  "missing opening quote on key",
			input: `{"keywords": [{"term": "타이어", importance": 9}]}`,
			want:  `{"keywords": [{"term": "타이어", "importance": 9}]}`,
		},
		{
			name:  "missing quote on first key",
			input: `{keywords": []}`,
			want:  `{"keywords": []}`,
		},
		{
			name:  "trailing comma in array",
			input: `{"keywords": [{"term": "배터리", "importance": 7},]}`,
			want:  `{"keywords": [{"term": "배터리", "importance": 7}]}`,
		},
		{
			name:  "comma inside string kept",
			input: `{"keywords": [{"term": "a, }", "importance": 7}]}`,
			want:  `{"keywords": [{"term": "a, }", "importance": 7}]}`,
		},
		{
			name:  "bare literal values untouched",
			input: `[1, true, null]`,
			want:  `[1, true, null]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, repairJSON(tt.input))
		})
	}
}

func TestRepairJSON_ProducesParsableOutput(t *testing.T) {
	raw := "```json\n{keywords\": [{\"term\": \"엔진오일\", importance\": 8},]}\n```"

	var result extraction
	require.NoError(t, json.Unmarshal([]byte(repairJSON(stripCodeFence(raw))), &result))
	require.Len(t, result.Keywords, 1)
	assert.Equal(t, "엔진오일", result.Keywords[0].Term)
	assert.Equal(t, 8, result.Keywords[0].Importance)
}

func TestFilterKeywords(t *testing.T) {
	raw := []keyword{
		{Term: "타이어", Importance: 7},
		{Term: "  공기압  ", Importance: 9},
		{Term: "경우", Importance: 2},
		{Term: "", Importance: 10},
		{Term: "TPMS", Importance: 8},
		{Term: "tpms", Importance: 8},
	}

	got := filterKeywords(raw, 6, 2)
	require.Len(t, got, 2)
	assert.Equal(t, "공기압", got[0].Term)
	assert.Equal(t, "TPMS", got[1].Term)

	all := filterKeywords(raw, 6, 0)
	assert.Len(t, all, 3)
}

func TestScrubString(t *testing.T) {
	assert.Equal(t, "엔진오일 점검 하십시오", scrubString("  **엔진오일** 점검... 하십시오! "))
	assert.Equal(t, "", scrubString("...!!"))
}
