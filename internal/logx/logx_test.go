package logx

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggers(t *testing.T) {
	var (
		dir     = t.TempDir()
		custom  = filepath.Join(dir, "custom.log")
		d3fault = filepath.Join(dir, "default.log")
	)

	obj := &loggers{
		config: Config{
			Default: LoggerConfig{Level: "warn", Output: []string{d3fault}},
			Custom: map[string]LoggerConfig{
				"custom": {Level: "debug", Output: []string{custom}},
			},
		},
		entries: make(map[string]Ptr),
		files:   make(map[string]*os.File),
	}

	defer obj.close()

	logger := obj.get("custom")
	assert.Equal(t, logger, obj.get("custom"))

	logger.Trace("trace")
	logger.Debug("debug")
	logger.WithField("marker", 15).Info("info")

	other := obj.get("other")
	other.Info("info")
	other.Warn("warn")

	data, err := os.ReadFile(custom)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "trace")
	assert.Contains(t, string(data), "DEBUG [custom] debug\n")
	assert.Contains(t, string(data), "INFO  [custom] info\n  marker: (int) 15\n")

	data, err = os.ReadFile(d3fault)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "info")
	assert.Contains(t, string(data), "WARN  [other] warn\n")
}

func TestConfig_For(t *testing.T) {
	config := Config{
		Default: LoggerConfig{Level: "info", Output: []string{"stdout"}},
		Custom: map[string]LoggerConfig{
			"poller": {Level: "debug"},
		},
	}

	assert.Equal(t, LoggerConfig{Level: "debug", Output: []string{"stdout"}}, config.For("poller"))
	assert.Equal(t, LoggerConfig{Level: "info", Output: []string{"stdout"}}, config.For("client"))
	assert.Equal(t, defaultConfig.Default, Config{}.For("client"))
}
