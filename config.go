package sweepcache

import (
	"errors"
	"fmt"
	"time"
)

const (
	// DefaultTTL is the TTL used when none is configured.
	DefaultTTL = 10 * time.Second

	// MaxSweepInterval bounds the period between two sweeps regardless of the TTL.
	MaxSweepInterval = 10 * time.Second
)

// ErrInvalidTTL is returned when the configured TTL is not a positive duration.
var ErrInvalidTTL = errors.New("ttl must be a positive duration")

// Config is the process-wide expiry configuration.
// It is fixed for the lifetime of a store.
type Config struct {
	// TTL is the maximum age an entry may reach before it becomes eligible for removal.
	TTL time.Duration
}

// DefaultConfig returns a Config with DefaultTTL.
func DefaultConfig() Config {
	return Config{TTL: DefaultTTL}
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.TTL <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidTTL, c.TTL)
	}
	return nil
}

// SweepInterval returns min(TTL, MaxSweepInterval).
// Short TTLs are swept as often as they expire, long TTLs at most MaxSweepInterval apart.
func (c Config) SweepInterval() time.Duration {
	return min(c.TTL, MaxSweepInterval)
}
