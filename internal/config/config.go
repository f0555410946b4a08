// Package config loads the bot configuration from YAML files and environment variables.
package config

import (
	"bytes"
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/jfk9w/maxbot"
	"github.com/jfk9w/maxbot/internal/httpx"
	"github.com/jfk9w/maxbot/internal/logx"
	"github.com/jfk9w/maxbot/poller"
)

// EnvironPrefix is the prefix of environment variables overriding configuration keys.
const EnvironPrefix = "MAXBOT_"

type (
	PollConfig struct {

		// Limit is the maximum number of updates per request.
		Limit int `yaml:"limit"`

		// Timeout is the long polling timeout.
		Timeout time.Duration `yaml:"timeout"`

		// Types filters received update types. Empty means all types.
		Types []string `yaml:"types"`

		// Queue is the delivery queue capacity.
		Queue int `yaml:"queue"`

		// MaxDecodeFailures is the number of consecutive identical decode failures
		// after which polling stops.
		MaxDecodeFailures int `yaml:"maxDecodeFailures"`

		// Dedup is the number of recently handled updates remembered to drop redeliveries.
		Dedup int `yaml:"dedup"`
	}

	StorageConfig struct {

		// Driver is one of postgres, pgx, sqlite3. Empty means markers are kept in memory.
		Driver string `yaml:"driver"`

		// DSN is the data source name passed to the driver.
		DSN string `yaml:"dsn"`
	}

	MetricsConfig struct {

		// Address to serve Prometheus metrics on. Empty disables metrics.
		Address string `yaml:"address"`
	}

	Config struct {
		Token   string                `yaml:"token"`
		BaseURL string                `yaml:"baseUrl"`
		Poll    PollConfig            `yaml:"poll"`
		Backoff poller.BackoffConfig  `yaml:"backoff"`
		Storage StorageConfig         `yaml:"storage"`
		HTTP    httpx.TransportConfig `yaml:"http"`
		Log     logx.Config           `yaml:"log"`
		Metrics MetricsConfig         `yaml:"metrics"`
	}
)

// Default returns the configuration used for missing keys.
func Default() Config {
	return Config{
		BaseURL: maxbot.DefaultBaseURL,
		Poll: PollConfig{
			Limit:             poller.DefaultLimit,
			Timeout:           poller.DefaultTimeout,
			Types:             []string{},
			Queue:             poller.DefaultQueueSize,
			MaxDecodeFailures: poller.DefaultMaxDecodeFailures,
			Dedup:             maxbot.DefaultDedupSize,
		},
		Backoff: poller.DefaultBackoffConfig,
		Log: logx.Config{
			Default: logx.LoggerConfig{
				Level:  "info",
				Output: []string{"stderr"},
			},
		},
	}
}

// Load reads configuration files and environment variables with EnvironPrefix on top of Default.
func Load(paths ...string) (*Config, error) {
	documents := make([][]byte, 0, len(paths)+1)
	defaults, err := yaml.Marshal(Default())
	if err != nil {
		return nil, errors.Wrap(err, "encode defaults")
	}

	documents = append(documents, defaults)
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "read config %s", path)
		}

		documents = append(documents, data)
	}

	data, err := Collect(EnvironPrefix, documents...)
	if err != nil {
		return nil, err
	}

	return Decode(data)
}

// Decode strictly decodes a collected YAML document and validates the result.
func Decode(data []byte) (*Config, error) {
	config := new(Config)
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(config); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) Validate() error {
	if c.Token == "" {
		return errors.New("token is required")
	}

	switch c.Storage.Driver {
	case "", "postgres", "pgx", "sqlite3":
	default:
		return errors.Errorf("unsupported storage driver %s", c.Storage.Driver)
	}

	if c.Storage.Driver != "" && c.Storage.DSN == "" {
		return errors.New("storage dsn is required")
	}

	if c.Poll.Timeout > 0 && c.HTTP.ResponseHeaderTimeout > 0 && c.HTTP.ResponseHeaderTimeout <= c.Poll.Timeout {
		return errors.Errorf("http response header timeout %s must exceed poll timeout %s",
			c.HTTP.ResponseHeaderTimeout, c.Poll.Timeout)
	}

	return nil
}
