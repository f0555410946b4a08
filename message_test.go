package maxbot_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jfk9w/maxbot"
	"github.com/jfk9w/maxbot/api"
)

type sentMessage struct {
	target maxbot.Target
	body   *api.NewMessageBody
}

type fakeSender []sentMessage

func (s *fakeSender) SendMessage(ctx context.Context, target maxbot.Target, body *api.NewMessageBody) (*api.Message, error) {
	*s = append(*s, sentMessage{target: target, body: body})
	return &api.Message{Body: api.MessageBody{MID: "sent"}}, nil
}

func int64Ptr(value int64) *int64 {
	return &value
}

func TestOrigin(t *testing.T) {
	for _, tc := range []struct {
		name     string
		message  api.Message
		expected maxbot.Target
		err      bool
	}{
		{
			name:     "chat",
			message:  api.Message{Recipient: api.Recipient{ChatID: int64Ptr(10)}, Sender: &api.User{UserID: 1}},
			expected: maxbot.ToChat(10),
		},
		{
			name:     "sender",
			message:  api.Message{Sender: &api.User{UserID: 1}},
			expected: maxbot.ToUser(1),
		},
		{
			name:     "recipient user",
			message:  api.Message{Recipient: api.Recipient{UserID: int64Ptr(2)}},
			expected: maxbot.ToUser(2),
		},
		{
			name:    "none",
			message: api.Message{},
			err:     true,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			target, err := maxbot.Origin(&tc.message)
			if tc.err {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expected, target)
		})
	}
}

func TestReplyAndForward(t *testing.T) {
	message := &api.Message{
		Recipient: api.Recipient{ChatID: int64Ptr(10)},
		Body:      api.MessageBody{MID: "mid.1"},
	}

	sender := new(fakeSender)
	_, err := maxbot.Answer(context.Background(), sender, message, "answer")
	require.NoError(t, err)
	_, err = maxbot.Reply(context.Background(), sender, message, "reply")
	require.NoError(t, err)
	_, err = maxbot.Forward(context.Background(), sender, message, "forward")
	require.NoError(t, err)

	sent := *sender
	require.Len(t, sent, 3)
	for _, s := range sent {
		assert.Equal(t, maxbot.ToChat(10), s.target)
	}

	assert.Nil(t, sent[0].body.Link)
	assert.Equal(t, &api.NewMessageLink{Type: api.Reply, MID: "mid.1"}, sent[1].body.Link)
	assert.Equal(t, &api.NewMessageLink{Type: api.Forward, MID: "mid.1"}, sent[2].body.Link)
	require.NotNil(t, sent[2].body.Text)
	assert.Equal(t, "forward", *sent[2].body.Text)
}
