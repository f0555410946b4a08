package maxbot

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/jfk9w/maxbot/internal/logx"
	"github.com/jfk9w/maxbot/metrics"
	"github.com/jfk9w/maxbot/poller"
)

type BotOptions struct {

	// Limit is the maximum number of updates per request. Default is 100.
	Limit int

	// Timeout is the long polling timeout. Default is 30 seconds.
	Timeout time.Duration

	// Types filters received updates. Empty means all types.
	Types []string

	// QueueSize is the delivery queue capacity. Default is 100.
	QueueSize int

	// Backoff configures delays between failed polling requests.
	Backoff poller.BackoffConfig

	// MaxDecodeFailures stops polling after this many consecutive identical
	// undecodable responses. Default is 5.
	MaxDecodeFailures int

	// Markers keeps the polling marker. Default is in-memory.
	// It is closed with the Bot if it implements io.Closer.
	Markers poller.MarkerStore

	Metrics metrics.Registry
}

// Bot is a Client which listens for updates.
type Bot struct {
	*Client
	options BotOptions

	cancel context.CancelFunc
	done   chan struct{}
	err    error
	once   sync.Once
}

func NewBot(client *Client, options BotOptions) *Bot {
	if options.Metrics == nil {
		options.Metrics = metrics.Dummy
	}

	return &Bot{
		Client:  client,
		options: options,
		done:    make(chan struct{}),
	}
}

// Listen starts polling updates in background and returns the delivery queue.
// The queue is closed when polling stops. Subsequent calls return nil.
func (b *Bot) Listen(ctx context.Context) *poller.Queue {
	var queue *poller.Queue
	b.once.Do(func() {
		ctx, b.cancel = context.WithCancel(ctx)
		queue = poller.NewQueue(b.options.QueueSize)
		p := &poller.Poller{
			Transport: b.Client,
			Queue:     queue,
			Markers:   b.options.Markers,
			Metrics:   b.options.Metrics.WithPrefix("poller"),
			Backoff:   poller.NewBackoff(b.options.Backoff),
			Limit:     b.options.Limit,
			Timeout:   b.options.Timeout,
			Types:     b.options.Types,

			MaxDecodeFailures: b.options.MaxDecodeFailures,
		}

		go func() {
			defer close(b.done)
			b.err = p.Run(ctx)
			logx.Get(p.String()).Infof("stop polling [%v]: %v", markerValue(p.Marker()), b.err)
		}()
	})

	return queue
}

// Serve listens for updates and dispatches them until ctx is done or polling fails.
func (b *Bot) Serve(ctx context.Context, dispatcher *Dispatcher) error {
	queue := b.Listen(ctx)
	if queue == nil {
		return errors.New("bot is already listening")
	}

	var result error
	if err := dispatcher.Run(ctx, queue); err != nil {
		result = multierror.Append(result, err)
		queue.Close()
	}

	<-b.done
	if b.err != nil {
		result = multierror.Append(result, b.err)
	}

	return result
}

// Done is closed when polling stops.
func (b *Bot) Done() <-chan struct{} {
	return b.done
}

// Err returns the error which stopped polling, if any.
// It is nil until Done is closed.
func (b *Bot) Err() error {
	select {
	case <-b.done:
		return b.err
	default:
		return nil
	}
}

// Close stops polling and waits for it to finish.
func (b *Bot) Close() error {
	var result error
	started := true
	b.once.Do(func() { started = false })
	if started {
		if b.cancel != nil {
			b.cancel()
		}

		<-b.done
		if b.err != nil {
			result = multierror.Append(result, b.err)
		}
	}

	if closer, ok := b.options.Markers.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			result = multierror.Append(result, errors.Wrap(err, "close marker store"))
		}
	}

	return result
}

func markerValue(marker *int64) interface{} {
	if marker == nil {
		return "tail"
	}

	return *marker
}
