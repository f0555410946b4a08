package poller

import (
	"time"

	"github.com/cenkalti/backoff/v4"
)

type BackoffConfig struct {

	// Initial is the first retry delay. Default is 1 second.
	Initial time.Duration `yaml:"initial,omitempty"`

	// Max is the delay ceiling. Default is 1 minute.
	Max time.Duration `yaml:"max,omitempty"`

	// Multiplier is the delay growth factor. Default is 2.
	Multiplier float64 `yaml:"multiplier,omitempty"`
}

var DefaultBackoffConfig = BackoffConfig{
	Initial:    time.Second,
	Max:        time.Minute,
	Multiplier: 2,
}

// Backoff yields non-decreasing delays between consecutive failures
// and restarts from the initial delay after Reset.
type Backoff struct {
	exp *backoff.ExponentialBackOff
}

func NewBackoff(config BackoffConfig) *Backoff {
	if config.Initial <= 0 {
		config.Initial = DefaultBackoffConfig.Initial
	}

	if config.Max <= 0 {
		config.Max = DefaultBackoffConfig.Max
	}

	if config.Max < config.Initial {
		config.Max = config.Initial
	}

	if config.Multiplier < 1 {
		config.Multiplier = DefaultBackoffConfig.Multiplier
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = config.Initial
	exp.MaxInterval = config.Max
	exp.Multiplier = config.Multiplier
	exp.RandomizationFactor = 0
	exp.MaxElapsedTime = 0
	exp.Reset()

	return &Backoff{exp: exp}
}

// Next returns the delay before the next attempt.
// A server-provided retryAfter is used when it exceeds the computed delay.
func (b *Backoff) Next(retryAfter time.Duration) time.Duration {
	delay := b.exp.NextBackOff()
	if delay == backoff.Stop {
		delay = b.exp.MaxInterval
	}

	if retryAfter > delay {
		delay = retryAfter
	}

	return delay
}

func (b *Backoff) Reset() {
	b.exp.Reset()
}
