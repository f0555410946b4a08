package poller_test

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jfk9w/maxbot/api"
	"github.com/jfk9w/maxbot/poller"
)

type step struct {
	batch *api.UpdateList
	err   error
}

type fakeTransport struct {
	steps   []step
	queries []poller.Query
	done    chan struct{}
	once    sync.Once
	mu      sync.Mutex
}

func newFakeTransport(steps ...step) *fakeTransport {
	return &fakeTransport{steps: steps, done: make(chan struct{})}
}

func (t *fakeTransport) FetchUpdates(ctx context.Context, query poller.Query) (*api.UpdateList, error) {
	t.mu.Lock()
	t.queries = append(t.queries, query)
	if len(t.steps) == 0 {
		t.mu.Unlock()
		t.once.Do(func() { close(t.done) })
		<-ctx.Done()
		return nil, ctx.Err()
	}

	step := t.steps[0]
	t.steps = t.steps[1:]
	t.mu.Unlock()
	return step.batch, step.err
}

func (t *fakeTransport) markers() []*int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	markers := make([]*int64, len(t.queries))
	for i, query := range t.queries {
		markers[i] = query.Marker
	}

	return markers
}

func (t *fakeTransport) calls() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.queries)
}

type sleepRecorder struct {
	delays []time.Duration
	mu     sync.Mutex
}

func (r *sleepRecorder) Sleep(ctx context.Context, timeout time.Duration) error {
	r.mu.Lock()
	r.delays = append(r.delays, timeout)
	r.mu.Unlock()
	return ctx.Err()
}

func (r *sleepRecorder) Delays() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Duration(nil), r.delays...)
}

type malformed string

func (e malformed) Error() string   { return string(e) }
func (e malformed) Malformed() bool { return true }

type rateLimited time.Duration

func (e rateLimited) Error() string        { return "too many requests" }
func (e rateLimited) Delay() time.Duration { return time.Duration(e) }

func update(id int64) api.Update {
	return &api.MessageCreatedUpdate{Timestamp: id}
}

func batch(marker int64, ids ...int64) step {
	updates := make([]api.Update, len(ids))
	for i, id := range ids {
		updates[i] = update(id)
	}

	return step{batch: &api.UpdateList{Updates: updates, Marker: &marker}}
}

func fail(err error) step {
	return step{err: err}
}

func ptr(value int64) *int64 {
	return &value
}

func drain(t *testing.T, queue *poller.Queue) []int64 {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ids := make([]int64, 0)
	for {
		update, err := queue.Receive(ctx)
		if err == io.EOF {
			return ids
		}

		require.NoError(t, err)
		ids = append(ids, update.Time())
	}
}

type run struct {
	cancel context.CancelFunc
	result chan error
}

func start(p *poller.Poller) *run {
	ctx, cancel := context.WithCancel(context.Background())
	r := &run{cancel: cancel, result: make(chan error, 1)}
	go func() { r.result <- p.Run(ctx) }()
	return r
}

func (r *run) wait(t *testing.T) error {
	select {
	case err := <-r.result:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("poller did not stop")
		return nil
	}
}

func (r *run) stop(t *testing.T) error {
	r.cancel()
	return r.wait(t)
}

func waitDone(t *testing.T, transport *fakeTransport) {
	select {
	case <-transport.done:
	case <-time.After(5 * time.Second):
		t.Fatal("transport script was not consumed")
	}
}

func TestPoller_OrderAndMarker(t *testing.T) {
	transport := newFakeTransport(
		batch(10, 1, 2),
		batch(15, 3),
	)

	recorder := new(sleepRecorder)
	p := &poller.Poller{
		Transport: transport,
		Queue:     poller.NewQueue(10),
		Sleep:     recorder.Sleep,
	}

	r := start(p)
	waitDone(t, transport)
	assert.Nil(t, r.stop(t))

	assert.Equal(t, []int64{1, 2, 3}, drain(t, p.Queue))
	assert.Equal(t, []*int64{nil, ptr(10), ptr(15)}, transport.markers())
	assert.Equal(t, ptr(15), p.Marker())
	assert.Empty(t, recorder.Delays())
}

func TestPoller_RetryKeepsMarker(t *testing.T) {
	transport := newFakeTransport(
		fail(errors.New("connection reset")),
		batch(7, 1),
	)

	markers := new(poller.MemoryMarkers)
	require.NoError(t, markers.Save(context.Background(), 5))

	recorder := new(sleepRecorder)
	p := &poller.Poller{
		Transport: transport,
		Queue:     poller.NewQueue(10),
		Markers:   markers,
		Sleep:     recorder.Sleep,
	}

	r := start(p)
	waitDone(t, transport)
	assert.Nil(t, r.stop(t))

	assert.Equal(t, []*int64{ptr(5), ptr(5), ptr(7)}, transport.markers())
	assert.Equal(t, []time.Duration{time.Second}, recorder.Delays())
	assert.Equal(t, []int64{1}, drain(t, p.Queue))

	saved, err := markers.Load(context.Background())
	assert.Nil(t, err)
	assert.Equal(t, ptr(7), saved)
}

func TestPoller_BackoffGrowsAndResets(t *testing.T) {
	transport := newFakeTransport(
		fail(errors.New("e1")),
		fail(errors.New("e2")),
		fail(errors.New("e3")),
		batch(1),
		fail(errors.New("e4")),
	)

	recorder := new(sleepRecorder)
	p := &poller.Poller{
		Transport: transport,
		Queue:     poller.NewQueue(10),
		Sleep:     recorder.Sleep,
	}

	r := start(p)
	waitDone(t, transport)
	assert.Nil(t, r.stop(t))

	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, time.Second}, recorder.Delays())
}

func TestPoller_Backpressure(t *testing.T) {
	transport := newFakeTransport(batch(9, 1, 2, 3, 4, 5))
	p := &poller.Poller{
		Transport: transport,
		Queue:     poller.NewQueue(2),
	}

	r := start(p)
	defer r.stop(t)

	assert.Eventually(t, func() bool { return p.Queue.Len() == 2 }, 5*time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 2, p.Queue.Len())
	assert.Equal(t, 1, transport.calls())
	assert.Nil(t, p.Marker())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for i := int64(1); i <= 5; i++ {
		update, err := p.Queue.Receive(ctx)
		require.NoError(t, err)
		assert.Equal(t, i, update.Time())
	}

	waitDone(t, transport)
	assert.Equal(t, ptr(9), p.Marker())
}

func TestPoller_CancelDuringBatch(t *testing.T) {
	transport := newFakeTransport(batch(3, 1, 2, 3))
	markers := new(poller.MemoryMarkers)
	p := &poller.Poller{
		Transport: transport,
		Queue:     poller.NewQueue(1),
		Markers:   markers,
	}

	r := start(p)
	assert.Eventually(t, func() bool { return p.Queue.Len() == 1 }, 5*time.Second, time.Millisecond)
	assert.Nil(t, r.stop(t))

	assert.Nil(t, p.Marker())
	saved, err := markers.Load(context.Background())
	assert.Nil(t, err)
	assert.Nil(t, saved)

	assert.Equal(t, []int64{1}, drain(t, p.Queue))

	_, err = p.Queue.Receive(context.Background())
	assert.Equal(t, io.EOF, err)
}

func TestPoller_Fatal(t *testing.T) {
	transport := newFakeTransport(fail(poller.Fatal(errors.New("invalid token"))))
	recorder := new(sleepRecorder)
	p := &poller.Poller{
		Transport: transport,
		Queue:     poller.NewQueue(10),
		Sleep:     recorder.Sleep,
	}

	err := start(p).wait(t)
	assert.Error(t, err)
	assert.True(t, poller.IsFatal(err))
	assert.Contains(t, err.Error(), "invalid token")
	assert.Equal(t, 1, transport.calls())
	assert.Empty(t, recorder.Delays())

	_, err = p.Queue.Receive(context.Background())
	assert.Equal(t, io.EOF, err)
}

func TestPoller_RepeatedDecodeFailure(t *testing.T) {
	transport := newFakeTransport(
		fail(malformed("unexpected end of JSON input")),
		fail(malformed("unexpected end of JSON input")),
		fail(malformed("unexpected end of JSON input")),
	)

	recorder := new(sleepRecorder)
	p := &poller.Poller{
		Transport:         transport,
		Queue:             poller.NewQueue(10),
		Sleep:             recorder.Sleep,
		MaxDecodeFailures: 3,
	}

	err := start(p).wait(t)
	assert.Error(t, err)
	assert.True(t, poller.IsMalformed(err))
	assert.Equal(t, 3, transport.calls())
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, recorder.Delays())
}

func TestPoller_DifferentDecodeFailuresAreRetried(t *testing.T) {
	transport := newFakeTransport(
		fail(malformed("a")),
		fail(malformed("a")),
		fail(malformed("b")),
		fail(malformed("b")),
		batch(2, 1),
	)

	p := &poller.Poller{
		Transport:         transport,
		Queue:             poller.NewQueue(10),
		Sleep:             new(sleepRecorder).Sleep,
		MaxDecodeFailures: 3,
	}

	r := start(p)
	waitDone(t, transport)
	assert.Nil(t, r.stop(t))
	assert.Equal(t, ptr(2), p.Marker())
}

func TestPoller_QueueClosedIsFatal(t *testing.T) {
	transport := newFakeTransport(batch(1, 1))
	p := &poller.Poller{
		Transport: transport,
		Queue:     poller.NewQueue(10),
	}

	p.Queue.Close()
	err := start(p).wait(t)
	assert.True(t, errors.Is(err, poller.ErrQueueClosed))
	assert.True(t, poller.IsFatal(err))
	assert.Nil(t, p.Marker())
}

func TestPoller_RetryAfter(t *testing.T) {
	transport := newFakeTransport(
		fail(rateLimited(5*time.Second)),
		batch(1),
	)

	recorder := new(sleepRecorder)
	p := &poller.Poller{
		Transport: transport,
		Queue:     poller.NewQueue(10),
		Sleep:     recorder.Sleep,
	}

	r := start(p)
	waitDone(t, transport)
	assert.Nil(t, r.stop(t))
	assert.Equal(t, []time.Duration{5 * time.Second}, recorder.Delays())
}

func TestPoller_QueryParameters(t *testing.T) {
	transport := newFakeTransport()
	p := &poller.Poller{
		Transport: transport,
		Queue:     poller.NewQueue(10),
		Types:     []string{string(api.MessageCreated)},
	}

	r := start(p)
	waitDone(t, transport)
	assert.Nil(t, r.stop(t))

	require.Equal(t, 1, transport.calls())
	query := transport.queries[0]
	assert.Equal(t, poller.DefaultLimit, query.Limit)
	assert.Equal(t, poller.DefaultTimeout, query.Timeout)
	assert.Equal(t, []string{"message_created"}, query.Types)
	assert.Nil(t, query.Marker)
}

func TestPoller_NilBatch(t *testing.T) {
	transport := newFakeTransport(
		batch(4, 1),
		step{},
		batch(6, 2),
	)

	recorder := new(sleepRecorder)
	p := &poller.Poller{
		Transport: transport,
		Queue:     poller.NewQueue(10),
		Sleep:     recorder.Sleep,
	}

	r := start(p)
	waitDone(t, transport)
	assert.Nil(t, r.stop(t))

	assert.Equal(t, []int64{1, 2}, drain(t, p.Queue))
	assert.Equal(t, []*int64{nil, ptr(4), ptr(4), ptr(6)}, transport.markers())
	assert.Empty(t, recorder.Delays())
}

func TestPoller_RestartReplaysUncommittedBatch(t *testing.T) {
	markers := new(poller.MemoryMarkers)

	first := newFakeTransport(
		batch(3, 1, 2),
		batch(7, 3, 4, 5),
	)

	p := &poller.Poller{
		Transport: first,
		Queue:     poller.NewQueue(2),
		Markers:   markers,
	}

	r := start(p)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, id := range []int64{1, 2} {
		update, err := p.Queue.Receive(ctx)
		require.NoError(t, err)
		assert.Equal(t, id, update.Time())
	}

	assert.Eventually(t, func() bool { return p.Queue.Len() == 2 && first.calls() == 2 }, 5*time.Second, time.Millisecond)
	assert.Nil(t, r.stop(t))
	assert.Equal(t, ptr(3), p.Marker())

	second := newFakeTransport(batch(7, 3, 4, 5))
	restarted := &poller.Poller{
		Transport: second,
		Queue:     poller.NewQueue(10),
		Markers:   markers,
	}

	r = start(restarted)
	waitDone(t, second)
	assert.Nil(t, r.stop(t))

	markersSeen := second.markers()
	require.NotEmpty(t, markersSeen)
	assert.Equal(t, ptr(3), markersSeen[0])
	assert.Equal(t, []int64{3, 4, 5}, drain(t, restarted.Queue))

	saved, err := markers.Load(context.Background())
	assert.Nil(t, err)
	assert.Equal(t, ptr(7), saved)
}

func TestPoller_CallbackBatchThenEmptyBatch(t *testing.T) {
	marker := int64(15)
	transport := newFakeTransport(
		step{batch: &api.UpdateList{
			Updates: []api.Update{
				update(1),
				&api.MessageCallbackUpdate{Timestamp: 2, Callback: api.Callback{CallbackID: "cb"}},
				update(3),
			},
			Marker: &marker,
		}},
		step{batch: &api.UpdateList{Updates: []api.Update{}, Marker: &marker}},
	)

	recorder := new(sleepRecorder)
	p := &poller.Poller{
		Transport: transport,
		Queue:     poller.NewQueue(10),
		Sleep:     recorder.Sleep,
	}

	r := start(p)
	waitDone(t, transport)
	assert.Nil(t, r.stop(t))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var types []api.UpdateType
	var ids []int64
	for {
		update, err := p.Queue.Receive(ctx)
		if err == io.EOF {
			break
		}

		require.NoError(t, err)
		types = append(types, update.UpdateType())
		ids = append(ids, update.Time())
	}

	assert.Equal(t, []int64{1, 2, 3}, ids)
	assert.Equal(t, []api.UpdateType{api.MessageCreated, api.MessageCallback, api.MessageCreated}, types)
	assert.Equal(t, []*int64{nil, ptr(15), ptr(15)}, transport.markers())
	assert.Equal(t, ptr(15), p.Marker())
	assert.Empty(t, recorder.Delays())
}

func TestPoller_TransportFailureBetweenBatches(t *testing.T) {
	transport := newFakeTransport(
		batch(5, 1),
		fail(errors.New("connection reset")),
		batch(7, 2),
	)

	markers := new(poller.MemoryMarkers)
	recorder := new(sleepRecorder)
	p := &poller.Poller{
		Transport: transport,
		Queue:     poller.NewQueue(10),
		Markers:   markers,
		Sleep:     recorder.Sleep,
	}

	r := start(p)
	waitDone(t, transport)
	assert.Nil(t, r.stop(t))

	assert.Equal(t, []int64{1, 2}, drain(t, p.Queue))
	assert.Equal(t, []*int64{nil, ptr(5), ptr(5), ptr(7)}, transport.markers())
	assert.Equal(t, []time.Duration{time.Second}, recorder.Delays())

	saved, err := markers.Load(context.Background())
	assert.Nil(t, err)
	assert.Equal(t, ptr(7), saved)
}
