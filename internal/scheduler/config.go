package scheduler

import (
	"time"
)

// Config controls scheduler intervals and batch sizes.
type Config struct {
	RunInterval       time.Duration
	BatchSize         int
	JobTimeout        time.Duration
	ResetSweepLockTTL time.Duration
	// EnabledJobs limits the scheduler to the named jobs. Empty means all.
	EnabledJobs []string
}

func DefaultConfig() Config {
	return Config{
		RunInterval:       time.Minute,
		BatchSize:         100,
		JobTimeout:        30 * time.Second,
		ResetSweepLockTTL: 5 * time.Minute,
	}
}

func ProvideConfig() Config {
	return DefaultConfig()
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.RunInterval <= 0 {
		c.RunInterval = defaults.RunInterval
	}
	if c.BatchSize <= 0 {
		c.BatchSize = defaults.BatchSize
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = defaults.JobTimeout
	}
	if c.ResetSweepLockTTL <= 0 {
		c.ResetSweepLockTTL = defaults.ResetSweepLockTTL
	}
	return c
}
