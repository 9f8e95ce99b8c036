package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/hostbridge/errors"
)

func TestParse_EmptyUsesDefaults(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParse_Full(t *testing.T) {
	cfg, err := Parse([]byte(`
log:
  level: debug
  development: true
cache:
  initial_capacity: 8
  load_factor: 0.5
classifier: tostring-tag
aliases:
  HTMLDivElement: Element
isolates:
  - name: main
  - name: worker
    hash: 7
`))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.Development)
	assert.Equal(t, 8, cfg.Cache.InitialCapacity)
	assert.InDelta(t, 0.5, cfg.Cache.LoadFactor, 1e-9)
	assert.Equal(t, ClassifierToStringTag, cfg.Classifier)
	assert.Equal(t, map[string]string{"HTMLDivElement": "Element"}, cfg.Aliases)
	require.Len(t, cfg.Isolates, 2)
	assert.Equal(t, IsolateConfig{Name: "worker", Hash: 7}, cfg.Isolates[1])
}

func TestParse_PartialKeepsDefaults(t *testing.T) {
	cfg, err := Parse([]byte("cache:\n  initial_capacity: 16\n"))
	require.NoError(t, err)
	assert.Equal(t, 16, cfg.Cache.InitialCapacity)
	assert.InDelta(t, 0.75, cfg.Cache.LoadFactor, 1e-9)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown key", "bogus: 1\n"},
		{"bad level", "log:\n  level: loud\n"},
		{"capacity not power of two", "cache:\n  initial_capacity: 6\n"},
		{"capacity too large", "cache:\n  initial_capacity: 2048\n"},
		{"load factor too high", "cache:\n  load_factor: 0.99\n"},
		{"bad classifier", "classifier: guess\n"},
		{"isolate without name", "isolates:\n  - hash: 1\n"},
		{"duplicate isolates", "isolates:\n  - name: a\n  - name: a\n"},
		{"empty alias target", "aliases:\n  Text: \"\"\n"},
		{"malformed", "log: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)

			var e *errors.Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, errors.KindInvalidConfig, e.Kind)
		})
	}
}

func TestValidate_NamesFields(t *testing.T) {
	cfg := Default()
	cfg.Cache.LoadFactor = 2

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LoadFactor")
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hostbridge.yaml")
	require.NoError(t, os.WriteFile(path, []byte("classifier: chain\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ClassifierChain, cfg.Classifier)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestMarshal_RoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Isolates = []IsolateConfig{{Name: "main"}}

	data, err := cfg.Marshal()
	require.NoError(t, err)

	back, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, cfg, back)
}

func TestLogConfig(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, LogConfig{Level: "debug"}.ZapLevel())
	assert.Equal(t, zapcore.InfoLevel, LogConfig{Level: "nonsense"}.ZapLevel())

	logger, err := LogConfig{Level: "warn", Development: true}.Build()
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))
}

func TestSchema(t *testing.T) {
	data, err := Schema()
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))

	props, ok := doc["properties"].(map[string]any)
	require.True(t, ok, "schema has no properties")
	for _, key := range []string{"log", "cache", "classifier", "aliases", "isolates"} {
		assert.Contains(t, props, key)
	}
}
