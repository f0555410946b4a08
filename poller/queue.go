package poller

import (
	"context"
	"io"
	"sync"

	"github.com/pkg/errors"

	"github.com/jfk9w/maxbot/api"
)

// DefaultQueueSize is the delivery queue capacity used when none is set.
const DefaultQueueSize = 100

var ErrQueueClosed = errors.New("queue closed")

// Queue is a bounded FIFO of updates between the polling loop and the consumer.
// It may be closed from either side. Buffered updates remain available
// to the consumer after close.
type Queue struct {
	items  chan api.Update
	closed chan struct{}
	once   sync.Once

	stream     sync.Once
	streamChan chan api.Update
}

func NewQueue(size int) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}

	return &Queue{
		items:  make(chan api.Update, size),
		closed: make(chan struct{}),
	}
}

// Send blocks until the update is enqueued, the queue is closed or ctx is done.
// A send which completes concurrently with Close reports ErrQueueClosed
// even though the update may still be received.
func (q *Queue) Send(ctx context.Context, update api.Update) error {
	select {
	case <-q.closed:
		return ErrQueueClosed
	default:
	}

	select {
	case q.items <- update:
		select {
		case <-q.closed:
			return ErrQueueClosed
		default:
			return nil
		}
	case <-q.closed:
		return ErrQueueClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Receive returns the next update. Once the queue is closed and drained
// it returns io.EOF.
func (q *Queue) Receive(ctx context.Context) (api.Update, error) {
	select {
	case update := <-q.items:
		return update, nil
	default:
	}

	select {
	case update := <-q.items:
		return update, nil
	case <-q.closed:
		select {
		case update := <-q.items:
			return update, nil
		default:
			return nil, io.EOF
		}
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Updates returns a channel view of the queue which is closed
// when the queue is closed and drained. The forwarding goroutine holds
// at most one update outside of the queue. It exits only after the channel
// is drained, so a consumer which stops ranging early must keep receiving
// until the channel is closed or the goroutine is leaked.
func (q *Queue) Updates() <-chan api.Update {
	q.stream.Do(func() {
		q.streamChan = make(chan api.Update)
		go func() {
			defer close(q.streamChan)
			for {
				update, err := q.Receive(context.Background())
				if err != nil {
					return
				}

				q.streamChan <- update
			}
		}()
	})

	return q.streamChan
}

// Close is idempotent.
func (q *Queue) Close() {
	q.once.Do(func() { close(q.closed) })
}

// Closed is done once the queue is closed.
func (q *Queue) Closed() <-chan struct{} {
	return q.closed
}

func (q *Queue) Len() int {
	return len(q.items)
}

func (q *Queue) Cap() int {
	return cap(q.items)
}
