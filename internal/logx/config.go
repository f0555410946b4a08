package logx

type (
	// A single logger config. Defines the minimal level and outputs.
	LoggerConfig struct {

		// Level is the lowest log level to be printed.
		Level string `yaml:"level"`

		// Output is the list of output log files.
		// Two special values exist:
		// stdout - standard output
		// stderr - standard error output
		Output []string `yaml:"output"`
	}

	// Logger factory config.
	Config struct {

		// Default configuration is used when a logger name is not recognized.
		Default LoggerConfig `yaml:"default"`

		// Custom contains logger-specific configurations resolved by name.
		Custom map[string]LoggerConfig `yaml:"custom,omitempty"`
	}
)

var defaultConfig = Config{
	Default: LoggerConfig{
		Level:  "info",
		Output: []string{"stderr"},
	},
}

// For resolves the config of a named logger.
// Empty fields of a custom config are inherited from the default one.
func (c Config) For(name string) LoggerConfig {
	config := c.Default
	if custom, ok := c.Custom[name]; ok {
		if custom.Level != "" {
			config.Level = custom.Level
		}

		if custom.Output != nil {
			config.Output = custom.Output
		}
	}

	if config.Level == "" {
		config.Level = defaultConfig.Default.Level
	}

	if config.Output == nil {
		config.Output = defaultConfig.Default.Output
	}

	return config
}
