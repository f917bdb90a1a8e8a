package search

import (
	"fmt"
	"strings"
)

// Fields a bonus rule can inspect.
const (
	FieldContent = "content"
	FieldTitle   = "title"
)

// BonusRule awards Value when the query contains any trigger term and the
// section field contains any target term. A rule with no triggers only
// inspects the section.
type BonusRule struct {
	Name     string   `yaml:"name"`
	Triggers []string `yaml:"triggers"`
	Field    string   `yaml:"field"`
	Targets  []string `yaml:"targets"`
	Value    float64  `yaml:"value"`
}

// DefaultBonusRules returns the procedure, troubleshooting and safety rules.
func DefaultBonusRules() []BonusRule {
	return []BonusRule{
		{
			Name:     "procedure",
			Triggers: []string{"방법", "절차", "어떻게", "how"},
			Field:    FieldContent,
			Targets:  []string{"방법", "절차", "단계", "하십시오", "하세요", "순서"},
			Value:    0.3,
		},
		{
			Name:     "troubleshooting",
			Triggers: []string{"문제", "오류", "고장", "안됨", "작동"},
			Field:    FieldContent,
			Targets:  []string{"점검", "확인", "교체", "정비", "수리"},
			Value:    0.2,
		},
		{
			Name:    "safety",
			Field:   FieldTitle,
			Targets: []string{"안전", "주의", "경고", "중요"},
			Value:   0.1,
		},
	}
}

// Validate checks that the rule inspects a known field with a value in [0,1].
func (r BonusRule) Validate() error {
	if r.Field != FieldContent && r.Field != FieldTitle {
		return fmt.Errorf("%w: bonus rule %q: unknown field %q", ErrInvalidConfig, r.Name, r.Field)
	}
	if r.Value < 0 || r.Value > 1 {
		return fmt.Errorf("%w: bonus rule %q: value %v out of range", ErrInvalidConfig, r.Name, r.Value)
	}
	if len(r.Targets) == 0 {
		return fmt.Errorf("%w: bonus rule %q: no targets", ErrInvalidConfig, r.Name)
	}
	return nil
}

func (r BonusRule) applies(q Query, st sectionText) bool {
	if len(r.Triggers) > 0 && !containsAny(q.Lower, r.Triggers) {
		return false
	}
	field := st.content
	if r.Field == FieldTitle {
		field = st.title
	}
	return containsAny(field, r.Targets)
}

// bonusScore sums the values of every rule that fires. When none fires the
// baseline is returned.
func bonusScore(rules []BonusRule, q Query, st sectionText, baseline float64) float64 {
	var total float64
	fired := false
	for _, r := range rules {
		if r.applies(q, st) {
			total += r.Value
			fired = true
		}
	}
	if !fired {
		return clamp01(baseline)
	}
	return clamp01(total)
}

func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if t != "" && strings.Contains(s, strings.ToLower(t)) {
			return true
		}
	}
	return false
}
