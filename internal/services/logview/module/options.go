package module

import (
	"time"

	"evalview/internal/platform/config"
)

// Options tunes the logview module
type Options struct {
	// MaxSampleBytes caps the on-wire bytes of one sample read; zero disables
	MaxSampleBytes int64

	// Concurrency bounds parallel entry reads during summary and full log
	// assembly
	Concurrency int

	// Timeout bounds each transport request to the log host
	Timeout time.Duration

	// OpenTimeout bounds archive opens for callers without a deadline
	OpenTimeout time.Duration

	// CacheSize and CacheTTL tune the warm archive handle cache
	CacheSize int
	CacheTTL  time.Duration

	// UserAgent identifies the reader to log hosts
	UserAgent string

	// AuthToken guards the module's routes when non empty
	AuthToken string
}

// FromConfig loads module options from env config.
// Reader knobs live under READER_, the auth token is shared across the api
func FromConfig(cfg config.Conf) Options {
	rc := cfg.Prefix("READER_")
	return Options{
		MaxSampleBytes: rc.MayBytes("MAX_SAMPLE_BYTES", 100<<20),
		Concurrency:    rc.MayInt("CONCURRENCY", 5),
		Timeout:        rc.MayDuration("TIMEOUT", 30*time.Second),
		OpenTimeout:    rc.MayDuration("OPEN_TIMEOUT", 30*time.Second),
		CacheSize:      rc.MayInt("CACHE_SIZE", 16),
		CacheTTL:       rc.MayDuration("CACHE_TTL", 5*time.Minute),
		UserAgent:      rc.MayString("USER_AGENT", "evalview-reader"),
		AuthToken:      cfg.MayString("AUTH_TOKEN", ""),
	}
}
