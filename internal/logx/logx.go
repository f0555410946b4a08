// Package logx contains named github.com/sirupsen/logrus loggers
// configured per name.
//
// Configuration
//
// Loggers are configured with Configure. Until then all output is printed
// to stderr with info level.
package logx

import (
	"io"
	"os"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type (
	// Alias *logrus.Logger
	Ptr = *logrus.Logger

	// Alias logrus.Fields
	V = logrus.Fields
)

var registry = &loggers{
	config:  defaultConfig,
	entries: make(map[string]Ptr),
	files:   make(map[string]*os.File),
}

// Get a logger with the specified name.
func Get(name string) Ptr {
	return registry.get(name)
}

// Configure applies the config to all existing and future loggers.
func Configure(config Config) error {
	return registry.configure(config)
}

// Close closes all opened log files.
func Close() error {
	return registry.close()
}

type loggers struct {
	config  Config
	entries map[string]Ptr
	files   map[string]*os.File
	mu      sync.Mutex
}

func (l *loggers) get(name string) Ptr {
	l.mu.Lock()
	defer l.mu.Unlock()
	if logger, ok := l.entries[name]; ok {
		return logger
	}

	logger := logrus.New()
	if err := l.apply(logger, name); err != nil {
		logger.Warnf("configure logger [%s]: %v", name, err)
	}

	l.entries[name] = logger
	return logger
}

func (l *loggers) configure(config Config) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.config = config
	for name, logger := range l.entries {
		if err := l.apply(logger, name); err != nil {
			return errors.Wrapf(err, "configure logger %s", name)
		}
	}

	return nil
}

func (l *loggers) apply(logger Ptr, name string) error {
	config := l.config.For(name)
	level, err := logrus.ParseLevel(config.Level)
	if err != nil {
		return err
	}

	colored := true
	writers := make([]io.Writer, 0, len(config.Output))
	for _, output := range config.Output {
		colored = colored && (output == "stdout" || output == "stderr")
		writer, err := l.open(output)
		if err != nil {
			return errors.Wrapf(err, "open %s", output)
		}

		writers = append(writers, writer)
	}

	switch len(writers) {
	case 0:
		logger.Out = io.Discard
	case 1:
		logger.Out = writers[0]
	default:
		logger.Out = io.MultiWriter(writers...)
	}

	logger.Formatter = &format{name: name, noColor: !colored}
	logger.Level = level
	return nil
}

func (l *loggers) open(output string) (io.Writer, error) {
	switch output {
	case "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	}

	if file, ok := l.files[output]; ok {
		return file, nil
	}

	file, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}

	l.files[output] = file
	return file, nil
}

func (l *loggers) close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	var err error
	for path, file := range l.files {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = errors.Wrapf(closeErr, "close %s", path)
		}

		delete(l.files, path)
	}

	return err
}
