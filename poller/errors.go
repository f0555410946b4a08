package poller

import (
	"time"

	"github.com/pkg/errors"
)

type fatalError struct {
	error
}

func (e fatalError) Fatal() bool   { return true }
func (e fatalError) Unwrap() error { return e.error }

// Fatal marks err as one which must stop polling.
func Fatal(err error) error {
	if err == nil {
		return nil
	}

	return fatalError{err}
}

// IsFatal reports whether err must stop polling.
// Errors may declare themselves fatal by implementing Fatal() bool.
func IsFatal(err error) bool {
	if errors.Is(err, ErrQueueClosed) {
		return true
	}

	var f interface{ Fatal() bool }
	return errors.As(err, &f) && f.Fatal()
}

// IsMalformed reports whether err is caused by an undecodable response.
func IsMalformed(err error) bool {
	var m interface{ Malformed() bool }
	return errors.As(err, &m) && m.Malformed()
}

// RetryAfter returns the server-provided delay carried by err, if any.
func RetryAfter(err error) time.Duration {
	var d interface{ Delay() time.Duration }
	if errors.As(err, &d) {
		return d.Delay()
	}

	return 0
}
