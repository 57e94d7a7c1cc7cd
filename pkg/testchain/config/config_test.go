package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/testchain/pkg/testchain/config"
)

func TestNew(t *testing.T) {
	cfg := config.New(nil)
	assert.NotNil(t, cfg.Raw())
	assert.False(t, cfg.Has("anything"))
}

func TestDottedLookup(t *testing.T) {
	cfg := config.New(map[string]any{
		"retry": map[string]any{
			"max":       2,
			"more_info": true,
		},
		"timeout.test": "5s",
		"flat":         "x",
	})

	assert.Equal(t, 2, cfg.Int("retry.max", 0))
	assert.True(t, cfg.Bool("retry.more_info", false))
	assert.Equal(t, 5*time.Second, cfg.Duration("timeout.test", 0))
	assert.True(t, cfg.Has("retry"))
	assert.False(t, cfg.Has("retry.missing"))
	assert.False(t, cfg.Has("flat.deeper"))
}

func TestLiteralKeyWins(t *testing.T) {
	cfg := config.New(map[string]any{
		"retry":     map[string]any{"max": 1},
		"retry.max": 4,
	})
	assert.Equal(t, 4, cfg.Int("retry.max", 0))
}

func TestAccessors(t *testing.T) {
	cfg := config.New(map[string]any{
		"str":       "hello",
		"int":       3,
		"int64":     int64(7),
		"float":     2.0,
		"frac":      2.5,
		"intstr":    "11",
		"boolstr":   "true",
		"badbool":   "maybe",
		"dur":       "1m",
		"secs":      "30",
		"durint":    2,
		"durfloat":  1.5,
		"durnative": 3 * time.Second,
		"list":      []any{"a", "b"},
		"mixed":     []any{"a", 1},
		"csv":       "a, b,,c",
		"strings":   []string{"x"},
	})

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"string", cfg.String("str", "d"), "hello"},
		{"string default on type mismatch", cfg.String("int", "d"), "d"},
		{"int", cfg.Int("int", 0), 3},
		{"int64", cfg.Int("int64", 0), 7},
		{"whole float", cfg.Int("float", 0), 2},
		{"fractional float", cfg.Int("frac", -1), -1},
		{"int from string", cfg.Int("intstr", 0), 11},
		{"bool from string", cfg.Bool("boolstr", false), true},
		{"bad bool", cfg.Bool("badbool", true), true},
		{"duration string", cfg.Duration("dur", 0), time.Minute},
		{"duration seconds string", cfg.Duration("secs", 0), 30 * time.Second},
		{"duration int", cfg.Duration("durint", 0), 2 * time.Second},
		{"duration float", cfg.Duration("durfloat", 0), 1500 * time.Millisecond},
		{"duration native", cfg.Duration("durnative", 0), 3 * time.Second},
		{"duration default", cfg.Duration("missing", time.Hour), time.Hour},
		{"list", cfg.StringSlice("list", nil), []string{"a", "b"}},
		{"mixed list", cfg.StringSlice("mixed", []string{"d"}), []string{"d"}},
		{"csv", cfg.StringSlice("csv", nil), []string{"a", "b", "c"}},
		{"native strings", cfg.StringSlice("strings", nil), []string{"x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestSetCopies(t *testing.T) {
	orig := config.New(map[string]any{"a": 1})
	next := orig.Set("b", 2)

	assert.False(t, orig.Has("b"))
	assert.Equal(t, 2, next.Int("b", 0))
	assert.Equal(t, 1, next.Int("a", 0))
}

func TestSettings(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		assert.Equal(t, config.DefaultSettings(), config.New(nil).Settings())
	})

	t.Run("values", func(t *testing.T) {
		s := config.New(map[string]any{
			"retry":       map[string]any{"max": 2, "more_info": true},
			"timeout":     map[string]any{"test": "45s"},
			"propagation": map[string]any{"preserve_exit": true},
		}).Settings()

		assert.Equal(t, config.Settings{
			MaxRetry:               2,
			RetryMoreInfo:          true,
			TestTimeout:            45 * time.Second,
			PreserveExitAttributes: true,
		}, s)
	})

	t.Run("negative values are clamped", func(t *testing.T) {
		s := config.New(map[string]any{"retry.max": -3, "timeout.test": "-1s"}).Settings()
		assert.Equal(t, 0, s.MaxRetry)
		assert.Equal(t, time.Duration(0), s.TestTimeout)
	})
}

func TestFromFile(t *testing.T) {
	dir := t.TempDir()

	files := map[string]string{
		"settings.yaml": "retry:\n  max: 2\ntimeout:\n  test: 10s\n",
		"settings.json": `{"retry": {"max": 2}, "timeout": {"test": "10s"}}`,
		"settings.toml": "[retry]\nmax = 2\n\n[timeout]\ntest = \"10s\"\n",
	}

	for name, content := range files {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

			cfg, err := config.FromFile(path)
			require.NoError(t, err)

			s := cfg.Settings()
			assert.Equal(t, 2, s.MaxRetry)
			assert.Equal(t, 10*time.Second, s.TestTimeout)
		})
	}

	t.Run("unsupported extension", func(t *testing.T) {
		path := filepath.Join(dir, "settings.ini")
		require.NoError(t, os.WriteFile(path, []byte("x=1"), 0o644))
		_, err := config.FromFile(path)
		assert.ErrorContains(t, err, "unsupported config file extension")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := config.FromFile(filepath.Join(dir, "nope.yaml"))
		assert.ErrorContains(t, err, "read config file")
	})
}

func TestParseErrors(t *testing.T) {
	_, err := config.FromYAML([]byte("retry: [unclosed"))
	assert.ErrorContains(t, err, "parse yaml")

	_, err = config.FromJSON([]byte("{"))
	assert.ErrorContains(t, err, "parse json")

	_, err = config.FromTOML([]byte("retry = = 1"))
	assert.ErrorContains(t, err, "parse toml")
}

func TestWithEnv(t *testing.T) {
	t.Setenv("TESTCHAIN_RETRY_MAX", "5")
	t.Setenv("TESTCHAIN_TIMEOUT_TEST", "1m")
	t.Setenv("TESTCHAIN_PROPAGATION_PRESERVE_EXIT", "true")

	cfg := config.New(map[string]any{"retry": map[string]any{"max": 1}}).WithEnv(config.EnvPrefix)
	s := cfg.Settings()

	assert.Equal(t, 5, s.MaxRetry, "environment overrides file values")
	assert.Equal(t, time.Minute, s.TestTimeout)
	assert.True(t, s.PreserveExitAttributes)
	assert.False(t, s.RetryMoreInfo)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("retry:\n  max: 1\n  more_info: true\n"), 0o644))

	t.Setenv("TESTCHAIN_RETRY_MAX", "3")

	s, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, s.MaxRetry)
	assert.True(t, s.RetryMoreInfo)

	s, err = config.Load("")
	require.NoError(t, err)
	assert.Equal(t, 3, s.MaxRetry)

	_, err = config.Load(filepath.Join(dir, "missing.yaml"))
	assert.ErrorContains(t, err, "load settings")
}
