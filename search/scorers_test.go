package search

import (
	"strings"
	"testing"

	"github.com/poiesic/hydrive/core"
	"github.com/stretchr/testify/assert"
)

func textOf(title, content string, keywords ...string) sectionText {
	return newSectionText(&core.Section{Title: title, Content: content, Keywords: keywords})
}

func TestTitleScore(t *testing.T) {
	tests := []struct {
		name  string
		query string
		title string
		want  float64
	}{
		{"exact equal sets", "타이어 공기압", "타이어 공기압", 1.0},
		{"query subset of title", "타이어", "타이어 공기압 점검", 1.0},
		{"half overlap", "타이어 공기압 확인 방법", "타이어 공기압 점검", 0.5},
		{"partial credit for inflected token", "공기압을 점검", "타이어 공기압 점검", 0.75},
		{"exact and partial are exclusive", "점검 오일", "점검 점검표", 0.5},
		{"no overlap", "completely unrelated nonsense zzz", "타이어 공기압 점검", 0},
		{"missing title", "타이어", "", 0},
		{"empty query", "", "타이어", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := titleScore(NewQuery(tt.query), textOf(tt.title, ""))
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestKeywordScore(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		keywords []string
		want     float64
	}{
		{"no keywords", "타이어 공기압", nil, 0},
		{"no keywords any query", "completely unrelated", []string{}, 0},
		{"all keywords in query", "타이어 공기압 확인 방법", []string{"타이어", "공기압"}, 1.0},
		{"query token inside keyword", "타이어 점검", []string{"타이어 공기압"}, 0.5},
		{"one of two", "타이어 교체", []string{"타이어", "엔진오일"}, 0.5},
		{"case insensitive", "abs 경고등", []string{"ABS"}, 1.0},
		{"no match", "completely unrelated nonsense zzz", []string{"타이어", "공기압"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := keywordScore(NewQuery(tt.query), textOf("", "", tt.keywords...))
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestLexicalContentScore(t *testing.T) {
	filler := strings.Repeat("가", 200)

	tests := []struct {
		name    string
		query   string
		content string
		want    float64
	}{
		{"empty content", "타이어", "", 0},
		{"short token counted once", "오일", filler + " 오일", 1 / 2.03},
		{"long token counted one and a half times", "브레이크", filler[:len("가")*197] + " 브레이크", 1.5 / 2.02},
		{"dense content clamps", "타이어 공기압", "정기적으로 타이어 공기압을 점검하세요. 적정 공기압을 유지하는 것이 중요합니다.", 1},
		{"no hits", "zzz", filler, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := lexicalContentScore(NewQuery(tt.query), textOf("", tt.content))
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestBonusScore(t *testing.T) {
	rules := DefaultBonusRules()

	tests := []struct {
		name     string
		query    string
		title    string
		content  string
		baseline float64
		want     float64
	}{
		{"procedure", "타이어 교체 방법", "타이어", "잭을 설치하십시오.", 0.1, 0.3},
		{"procedure in english", "how to change a tire", "타이어", "다음 순서로 진행합니다.", 0.1, 0.3},
		{"procedure and troubleshooting", "시동이 안됨 해결 방법", "시동", "배터리를 점검하십시오.", 0.1, 0.5},
		{"safety title only", "벨트", "안전 벨트", "", 0.1, 0.1},
		{"all rules", "브레이크 작동 문제 해결 방법", "경고등 주의", "패드를 점검하고 교체하십시오.", 0.1, 0.6},
		{"trigger without target", "방법", "엔진", "엔진", 0.1, 0.1},
		{"nothing fires uses baseline", "completely unrelated", "타이어", "공기압", 0.1, 0.1},
		{"zero baseline", "completely unrelated", "타이어", "공기압", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := bonusScore(rules, NewQuery(tt.query), textOf(tt.title, tt.content), tt.baseline)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestBonusScore_Clamped(t *testing.T) {
	rules := []BonusRule{
		{Name: "a", Field: FieldContent, Targets: []string{"x"}, Value: 0.8},
		{Name: "b", Field: FieldContent, Targets: []string{"x"}, Value: 0.8},
	}
	assert.Equal(t, 1.0, bonusScore(rules, NewQuery("q"), textOf("", "x"), 0.1))
}

func TestBonusRule_Validate(t *testing.T) {
	for _, r := range DefaultBonusRules() {
		assert.NoError(t, r.Validate(), r.Name)
	}
	assert.ErrorIs(t, BonusRule{Name: "x", Field: "body", Targets: []string{"a"}}.Validate(), ErrInvalidConfig)
	assert.ErrorIs(t, BonusRule{Name: "x", Field: FieldTitle, Targets: []string{"a"}, Value: 2}.Validate(), ErrInvalidConfig)
	assert.ErrorIs(t, BonusRule{Name: "x", Field: FieldTitle, Value: 0.1}.Validate(), ErrInvalidConfig)
}

func TestWeights(t *testing.T) {
	all := core.ScoreBreakdown{Title: 1, Keyword: 1, Content: 1, Bonus: 1}
	assert.InDelta(t, 1.0, LexicalWeights().Combine(all), 1e-9)
	assert.InDelta(t, 1.0, SemanticWeights().Combine(all), 1e-9)

	b := core.ScoreBreakdown{Title: 0.5, Keyword: 1, Content: 1, Bonus: 0.3}
	assert.InDelta(t, 0.73, LexicalWeights().Combine(b), 1e-9)
	assert.InDelta(t, 0.63, SemanticWeights().Combine(b), 1e-9)

	assert.NoError(t, LexicalWeights().Validate())
	assert.NoError(t, SemanticWeights().Validate())
	assert.ErrorIs(t, Weights{Title: -0.1, Keyword: 0.5}.Validate(), ErrInvalidConfig)
	assert.ErrorIs(t, Weights{}.Validate(), ErrInvalidConfig)
	assert.ErrorIs(t, Weights{Title: 0.9, Keyword: 0.9}.Validate(), ErrInvalidConfig)
}
