package search

import (
	"fmt"

	"github.com/poiesic/hydrive/core"
)

// Weights blends the four signals into one ranking score.
type Weights struct {
	Title   float64 `yaml:"title"`
	Keyword float64 `yaml:"keyword"`
	Content float64 `yaml:"content"`
	Bonus   float64 `yaml:"bonus"`
}

// LexicalWeights is the profile used when content is scored by token density.
func LexicalWeights() Weights {
	return Weights{Title: 0.4, Keyword: 0.3, Content: 0.2, Bonus: 0.1}
}

// SemanticWeights is the profile used when content is scored by embedding similarity.
func SemanticWeights() Weights {
	return Weights{Title: 0.6, Keyword: 0.15, Content: 0.15, Bonus: 0.1}
}

// Combine returns the weighted sum of b, clamped to [0,1].
func (w Weights) Combine(b core.ScoreBreakdown) float64 {
	return clamp01(w.Title*b.Title + w.Keyword*b.Keyword + w.Content*b.Content + w.Bonus*b.Bonus)
}

// Sum returns the total weight.
func (w Weights) Sum() float64 {
	return w.Title + w.Keyword + w.Content + w.Bonus
}

// Validate requires non-negative weights summing to a value in (0,1].
func (w Weights) Validate() error {
	if w.Title < 0 || w.Keyword < 0 || w.Content < 0 || w.Bonus < 0 {
		return fmt.Errorf("%w: negative weight in %+v", ErrInvalidConfig, w)
	}
	if sum := w.Sum(); sum <= 0 || sum > 1+1e-9 {
		return fmt.Errorf("%w: weights sum to %v", ErrInvalidConfig, sum)
	}
	return nil
}
