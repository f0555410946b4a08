package maxbot_test

import (
	"context"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jfk9w/maxbot"
	"github.com/jfk9w/maxbot/api"
	"github.com/jfk9w/maxbot/poller"
)

type closingMarkers struct {
	poller.MemoryMarkers
	closed int32
}

func (m *closingMarkers) Close() error {
	atomic.AddInt32(&m.closed, 1)
	return nil
}

func receiveAll(t *testing.T, queue *poller.Queue, n int) []api.Update {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	updates := make([]api.Update, 0, n)
	for len(updates) < n {
		update, err := queue.Receive(ctx)
		require.NoError(t, err)
		updates = append(updates, update)
	}

	return updates
}

func TestBot_Listen(t *testing.T) {
	var (
		markers []string
		mu      sync.Mutex
	)

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		markers = append(markers, r.URL.Query().Get("marker"))
		call := len(markers)
		mu.Unlock()

		switch call {
		case 1:
			writeJSON(w, http.StatusOK, `{"updates":[
				{"update_type":"bot_started","timestamp":1,"chat_id":1,"user":{"user_id":1,"first_name":"a","is_bot":false,"last_activity_time":0}},
				{"update_type":"bot_started","timestamp":2,"chat_id":1,"user":{"user_id":2,"first_name":"b","is_bot":false,"last_activity_time":0}}
			],"marker":10}`)
		case 2:
			writeJSON(w, http.StatusOK, `{"updates":[
				{"update_type":"message_removed","timestamp":3,"message_id":"mid.3","chat_id":1,"user_id":1}
			],"marker":15}`)
		default:
			<-r.Context().Done()
		}
	})

	store := new(closingMarkers)
	bot := maxbot.NewBot(client, maxbot.BotOptions{Markers: store, Timeout: time.Second})
	queue := bot.Listen(context.Background())
	require.NotNil(t, queue)
	assert.Nil(t, bot.Listen(context.Background()))

	updates := receiveAll(t, queue, 3)
	assert.Equal(t, int64(1), updates[0].Time())
	assert.Equal(t, int64(2), updates[1].Time())
	assert.Equal(t, api.MessageRemoved, updates[2].UpdateType())

	require.Eventually(t, func() bool {
		marker, _ := store.Load(context.Background())
		return marker != nil && *marker == 15
	}, 5*time.Second, 10*time.Millisecond)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(markers) >= 3
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, bot.Close())
	assert.Equal(t, int32(1), atomic.LoadInt32(&store.closed))

	_, err := queue.Receive(context.Background())
	assert.ErrorIs(t, err, io.EOF)
	assert.NoError(t, bot.Err())

	mu.Lock()
	defer mu.Unlock()
	require.GreaterOrEqual(t, len(markers), 3)
	assert.Equal(t, []string{"", "10", "15"}, markers[:3])
}

func TestBot_FatalError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, `{"code":"verify.token","message":"Invalid access_token"}`)
	})

	bot := maxbot.NewBot(client, maxbot.BotOptions{})
	queue := bot.Listen(context.Background())

	_, err := queue.Receive(context.Background())
	assert.ErrorIs(t, err, io.EOF)

	select {
	case <-bot.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("polling did not stop")
	}

	assert.True(t, poller.IsFatal(bot.Err()))
	assert.Error(t, bot.Close())
}

func TestBot_Serve(t *testing.T) {
	var calls int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			writeJSON(w, http.StatusOK, `{"updates":[
				{"update_type":"message_created","timestamp":1,"message":{"sender":{"user_id":5,"first_name":"u","is_bot":false,"last_activity_time":0},"recipient":{"user_id":5,"chat_type":"dialog"},"timestamp":1,"body":{"mid":"mid.1","seq":1,"text":"hi"}}}
			],"marker":1}`)
			return
		}

		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan string, 1)
	dispatcher := maxbot.NewDispatcher().
		OnMessageCreated(func(ctx context.Context, update *api.MessageCreatedUpdate) error {
			received <- *update.Message.Body.Text
			cancel()
			return nil
		})

	bot := maxbot.NewBot(client, maxbot.BotOptions{Timeout: time.Second})
	require.NoError(t, bot.Serve(ctx, dispatcher))
	assert.Equal(t, "hi", <-received)
	assert.NoError(t, bot.Err())
}

func TestBot_CloseWithoutListen(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	store := new(closingMarkers)
	bot := maxbot.NewBot(client, maxbot.BotOptions{Markers: store})
	assert.NoError(t, bot.Close())
	assert.Equal(t, int32(1), atomic.LoadInt32(&store.closed))
	assert.Nil(t, bot.Listen(context.Background()))
}
