/*
Package config loads the settings that tune listener chain behavior.

# Overview

Config wraps a map[string]any decoded from YAML, JSON or TOML and exposes
typed accessors that fall back to defaults on missing keys or mismatched
types. Keys are dotted paths into nested maps.

	cfg, err := config.FromFile("testchain.yaml")
	if err != nil {
	    log.Fatal(err)
	}
	maxRetry := cfg.Int("retry.max", 0)

# Settings

Settings is the typed view used by the rest of the module:

	retry:
	  max: 2             # retry budget per invocation
	  more_info: true    # log the failure with every granted retry
	timeout:
	  test: 30s          # minimum time limit for test units
	propagation:
	  preserve_exit: false

Load reads a file and then applies environment overrides, which take
precedence over file values:

	TESTCHAIN_RETRY_MAX=3
	TESTCHAIN_TIMEOUT_TEST=45s

# Type Coercion

Durations accept Go duration strings, whole seconds as a string, or any
numeric type interpreted as seconds. Integers and booleans are also parsed
from strings so environment overrides need no special handling.

# Thread Safety

Config is safe for concurrent read access. Set and WithEnv return copies.
*/
package config
