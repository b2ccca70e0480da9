package scheduler

import (
	"strings"
	"time"

	"github.com/smallbiznis/civitas/internal/config"
)

// Config controls the periodic jobs.
type Config struct {
	Enabled bool
	// ReminderSpec is a six field cron expression, seconds first.
	ReminderSpec string
	JobTimeout   time.Duration
}

func DefaultConfig() Config {
	return Config{
		Enabled:      true,
		ReminderSpec: "0 0 * * * *",
		JobTimeout:   2 * time.Minute,
	}
}

func ProvideConfig(cfg config.Config) Config {
	return Config{
		Enabled:      cfg.ReminderEnabled,
		ReminderSpec: strings.TrimSpace(cfg.ReminderCron),
	}.withDefaults()
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.ReminderSpec == "" {
		c.ReminderSpec = defaults.ReminderSpec
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = defaults.JobTimeout
	}
	return c
}
