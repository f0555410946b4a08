// Package poller implements resumable long polling of platform updates
// into a bounded delivery queue.
package poller

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/jfk9w/maxbot/api"
	"github.com/jfk9w/maxbot/internal/logx"
	"github.com/jfk9w/maxbot/metrics"
)

const (
	DefaultLimit             = 100
	DefaultTimeout           = 30 * time.Second
	DefaultMaxDecodeFailures = 5
)

// Query holds long polling request parameters.
type Query struct {

	// Limit is the maximum number of updates in a batch.
	Limit int

	// Timeout is the server-side long polling timeout.
	Timeout time.Duration

	// Marker is the cursor returned with the previous batch.
	// Nil requests updates starting from the current tail.
	Marker *int64

	// Types filters updates by type. Empty means all types.
	Types []string
}

// Transport fetches a single batch of updates.
type Transport interface {
	FetchUpdates(ctx context.Context, query Query) (*api.UpdateList, error)
}

// Poller owns the marker and moves update batches from the Transport
// to the Queue. The marker is advanced only after the whole batch has been
// accepted by the Queue, so a restart may redeliver updates but never skips them.
type Poller struct {
	Transport Transport
	Queue     *Queue
	Markers   MarkerStore
	Metrics   metrics.Registry
	Backoff   *Backoff

	Limit   int
	Timeout time.Duration
	Types   []string

	// MaxDecodeFailures is the number of consecutive identical
	// decode failures after which polling stops.
	MaxDecodeFailures int

	// Sleep waits between retries. Defaults to a timer.
	Sleep func(ctx context.Context, timeout time.Duration) error

	marker *int64
	mu     sync.RWMutex
}

func (p *Poller) String() string {
	return "poller"
}

func log() logx.Ptr {
	return logx.Get("poller")
}

// Marker returns a copy of the current marker.
func (p *Poller) Marker() *int64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return copyMarker(p.marker)
}

func (p *Poller) setMarker(marker *int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.marker = copyMarker(marker)
}

// Run polls until ctx is done or a fatal error occurs.
// The Queue is closed on return. Cancellation is not an error.
func (p *Poller) Run(ctx context.Context) error {
	p.init()
	defer p.Queue.Close()

	marker, err := p.Markers.Load(ctx)
	if err != nil {
		return errors.Wrap(err, "load marker")
	}

	p.setMarker(marker)
	log().Infof("start polling [%s]", markerString(marker))

	var (
		decodeFailures int
		lastDecodeErr  string
	)

	for {
		if ctx.Err() != nil {
			return nil
		}

		query := Query{
			Limit:   p.Limit,
			Timeout: p.Timeout,
			Marker:  p.Marker(),
			Types:   p.Types,
		}

		batch, err := p.Transport.FetchUpdates(ctx, query)
		if err == nil {
			if batch == nil {
				batch = new(api.UpdateList)
			}

			if err := p.deliver(ctx, batch); err != nil {
				if ctx.Err() != nil {
					return nil
				}

				return errors.Wrap(err, "deliver updates")
			}

			p.Backoff.Reset()
			decodeFailures, lastDecodeErr = 0, ""
			continue
		}

		if ctx.Err() != nil {
			return nil
		}

		p.errorCounter(err).Inc()
		if IsFatal(err) {
			log().Errorf("fetch updates [%s]: %v", markerString(query.Marker), err)
			return errors.Wrap(err, "fetch updates")
		}

		if IsMalformed(err) {
			if err.Error() == lastDecodeErr {
				decodeFailures++
			} else {
				decodeFailures, lastDecodeErr = 1, err.Error()
			}

			if decodeFailures >= p.MaxDecodeFailures {
				log().Errorf("fetch updates [%s]: %v (%d times in a row)", markerString(query.Marker), err, decodeFailures)
				return errors.Wrapf(err, "fetch updates: %d consecutive decode failures", decodeFailures)
			}
		} else {
			decodeFailures, lastDecodeErr = 0, ""
		}

		delay := p.Backoff.Next(RetryAfter(err))
		log().Warnf("fetch updates [%s]: %v (retry in %s)", markerString(query.Marker), err, delay)
		if err := p.Sleep(ctx, delay); err != nil {
			return nil
		}
	}
}

func (p *Poller) deliver(ctx context.Context, batch *api.UpdateList) error {
	for _, update := range batch.Updates {
		if api.IsUnknown(update) {
			log().Warnf("decode update [%s]: unknown update type", update.UpdateType())
		}

		if err := p.Queue.Send(ctx, update); err != nil {
			return err
		}

		p.Metrics.Counter("updates", metrics.Labels{"type": string(update.UpdateType())}).Inc()
	}

	if batch.Marker == nil {
		return nil
	}

	marker := *batch.Marker
	p.setMarker(&marker)
	p.Metrics.Gauge("marker", nil).Set(float64(marker))
	if err := p.Markers.Save(ctx, marker); err != nil {
		p.Metrics.Counter("marker_save_errors", nil).Inc()
		log().Warnf("save marker [%d]: %v", marker, err)
	} else {
		log().Debugf("save marker [%d]: ok", marker)
	}

	return nil
}

func (p *Poller) errorCounter(err error) metrics.Counter {
	kind := "transport"
	switch {
	case IsFatal(err):
		kind = "fatal"
	case IsMalformed(err):
		kind = "decode"
	case RetryAfter(err) > 0:
		kind = "rate_limit"
	}

	return p.Metrics.Counter("fetch_errors", metrics.Labels{"kind": kind})
}

func (p *Poller) init() {
	if p.Queue == nil {
		p.Queue = NewQueue(DefaultQueueSize)
	}

	if p.Markers == nil {
		p.Markers = new(MemoryMarkers)
	}

	if p.Metrics == nil {
		p.Metrics = metrics.Dummy
	}

	if p.Backoff == nil {
		p.Backoff = NewBackoff(DefaultBackoffConfig)
	}

	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}

	if p.Timeout <= 0 {
		p.Timeout = DefaultTimeout
	}

	if p.MaxDecodeFailures <= 0 {
		p.MaxDecodeFailures = DefaultMaxDecodeFailures
	}

	if p.Sleep == nil {
		p.Sleep = sleep
	}
}

func sleep(ctx context.Context, timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func markerString(marker *int64) string {
	if marker == nil {
		return "tail"
	}

	return strconv.FormatInt(*marker, 10)
}
