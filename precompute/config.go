package precompute

import "time"

// Config controls batching, retries and progress output of a build.
type Config struct {
	// BatchSize is the number of sections embedded per request.
	BatchSize int

	// ReportInterval is how many sections pass between progress lines.
	ReportInterval int

	// MaxRetries is the number of attempts made for each batch.
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff.
	RetryDelay time.Duration
}

// DefaultConfig returns the settings used by the CLI.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      32,
		ReportInterval: 32,
		MaxRetries:     3,
		RetryDelay:     time.Second,
	}
}

func (c *Config) normalize() {
	d := DefaultConfig()
	if c.BatchSize <= 0 {
		c.BatchSize = d.BatchSize
	}
	if c.ReportInterval <= 0 {
		c.ReportInterval = c.BatchSize
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = d.MaxRetries
	}
	if c.RetryDelay < 0 {
		c.RetryDelay = 0
	}
}
