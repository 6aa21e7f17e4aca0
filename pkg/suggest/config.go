package suggest

import "time"

// Config tunes one coordinator. Live (interactive typing) and demo/replay
// modes carry distinct values; see internal/config for the presets.
type Config struct {
	RateLimitSpacing    time.Duration
	RequestTimeout      time.Duration
	MaxQueueSize        int
	MaxConcurrent       int
	EnqueueGuardTTL     time.Duration
	DisplayGuardTTL     time.Duration
	ConfidenceThreshold float64

	// ContextLimit caps how many trailing runes of the document are sent to
	// the provider as context.
	ContextLimit int
}

func (c Config) withDefaults() Config {
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 20 * time.Second
	}
	if c.MaxQueueSize <= 0 {
		c.MaxQueueSize = 3
	}
	if c.MaxConcurrent <= 0 {
		c.MaxConcurrent = 1
	}
	if c.EnqueueGuardTTL <= 0 {
		c.EnqueueGuardTTL = 10 * time.Second
	}
	if c.DisplayGuardTTL <= 0 {
		c.DisplayGuardTTL = 2 * time.Minute
	}
	if c.ContextLimit <= 0 {
		c.ContextLimit = 2000
	}
	return c
}
