package search

import (
	"fmt"
	"os"

	"github.com/poiesic/hydrive/core"
	"gopkg.in/yaml.v3"
)

const (
	DefaultThreshold      = 0.05
	DefaultK              = 5
	DefaultBonusBaseline  = 0.1
	DefaultParallelCutoff = 64
)

// Config controls scoring and ranking.
type Config struct {
	// Mode is used when a search does not request one.
	Mode core.Mode `yaml:"mode"`

	LexicalWeights  Weights `yaml:"lexical_weights"`
	SemanticWeights Weights `yaml:"semantic_weights"`

	// Threshold excludes results whose total is at or below it.
	Threshold float64 `yaml:"threshold"`

	// DefaultK applies when a search passes k <= 0.
	DefaultK int `yaml:"default_k"`

	// BonusBaseline is the bonus awarded when no rule fires, in every mode.
	BonusBaseline float64     `yaml:"bonus_baseline"`
	BonusRules    []BonusRule `yaml:"bonus_rules"`

	// PoolSize is the scoring worker count; 0 means runtime.NumCPU().
	PoolSize int `yaml:"pool_size"`

	// ParallelCutoff is the section count below which scoring runs inline.
	ParallelCutoff int `yaml:"parallel_cutoff"`
}

// DefaultConfig returns a Config with the standard profiles and rules.
func DefaultConfig() Config {
	return Config{
		Mode:            core.ModeAuto,
		LexicalWeights:  LexicalWeights(),
		SemanticWeights: SemanticWeights(),
		Threshold:       DefaultThreshold,
		DefaultK:        DefaultK,
		BonusBaseline:   DefaultBonusBaseline,
		BonusRules:      DefaultBonusRules(),
		ParallelCutoff:  DefaultParallelCutoff,
	}
}

// LoadConfig reads a YAML file over DefaultConfig. Keys absent from the file
// keep their default values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read search config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks every field.
func (c Config) Validate() error {
	if _, err := core.ParseMode(string(c.Mode)); err != nil {
		return fmt.Errorf("%w: mode %q", ErrInvalidConfig, c.Mode)
	}
	if err := c.LexicalWeights.Validate(); err != nil {
		return fmt.Errorf("lexical_weights: %w", err)
	}
	if err := c.SemanticWeights.Validate(); err != nil {
		return fmt.Errorf("semantic_weights: %w", err)
	}
	if c.Threshold < 0 || c.Threshold >= 1 {
		return fmt.Errorf("%w: threshold %v out of range", ErrInvalidConfig, c.Threshold)
	}
	if c.DefaultK < 1 {
		return fmt.Errorf("%w: default_k must be positive", ErrInvalidConfig)
	}
	if c.BonusBaseline < 0 || c.BonusBaseline > 1 {
		return fmt.Errorf("%w: bonus_baseline %v out of range", ErrInvalidConfig, c.BonusBaseline)
	}
	for _, r := range c.BonusRules {
		if err := r.Validate(); err != nil {
			return err
		}
	}
	if c.PoolSize < 0 || c.ParallelCutoff < 0 {
		return fmt.Errorf("%w: pool_size and parallel_cutoff must not be negative", ErrInvalidConfig)
	}
	return nil
}

// weightsFor returns the profile for a resolved mode.
func (c Config) weightsFor(mode core.Mode) Weights {
	if mode == core.ModeSemantic {
		return c.SemanticWeights
	}
	return c.LexicalWeights
}
