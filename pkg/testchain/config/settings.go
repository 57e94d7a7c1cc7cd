package config

import (
	"fmt"
	"time"
)

// Recognised settings keys.
const (
	// KeyMaxRetry is the per-invocation retry budget. Default 0.
	KeyMaxRetry = "retry.max"

	// KeyRetryMoreInfo attaches the failure to retry log entries even when
	// debug logging is off.
	KeyRetryMoreInfo = "retry.more_info"

	// KeyTestTimeout is the minimum time limit applied to test units.
	KeyTestTimeout = "timeout.test"

	// KeyPreserveExit keeps the exit attribute carrier across every exit
	// routine of a unit instead of clearing it after the first.
	KeyPreserveExit = "propagation.preserve_exit"
)

// EnvPrefix is the environment variable prefix used by Load.
const EnvPrefix = "TESTCHAIN_"

// Keys returns every recognised settings key.
func Keys() []string {
	return []string{KeyMaxRetry, KeyRetryMoreInfo, KeyTestTimeout, KeyPreserveExit}
}

// Settings is the typed view of the recognised keys.
type Settings struct {
	MaxRetry               int
	RetryMoreInfo          bool
	TestTimeout            time.Duration
	PreserveExitAttributes bool
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{}
}

// Settings extracts the typed settings, falling back to defaults.
func (c Config) Settings() Settings {
	d := DefaultSettings()
	s := Settings{
		MaxRetry:               c.Int(KeyMaxRetry, d.MaxRetry),
		RetryMoreInfo:          c.Bool(KeyRetryMoreInfo, d.RetryMoreInfo),
		TestTimeout:            c.Duration(KeyTestTimeout, d.TestTimeout),
		PreserveExitAttributes: c.Bool(KeyPreserveExit, d.PreserveExitAttributes),
	}
	if s.MaxRetry < 0 {
		s.MaxRetry = 0
	}
	if s.TestTimeout < 0 {
		s.TestTimeout = 0
	}
	return s
}

// Load reads settings from path, applies TESTCHAIN_ environment overrides
// and returns the typed result. An empty path reads only the environment.
func Load(path string) (Settings, error) {
	cfg := New(nil)
	if path != "" {
		var err error
		cfg, err = FromFile(path)
		if err != nil {
			return Settings{}, fmt.Errorf("load settings: %w", err)
		}
	}
	return cfg.WithEnv(EnvPrefix).Settings(), nil
}
