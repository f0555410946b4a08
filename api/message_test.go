package api_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jfk9w/maxbot/api"
)

func TestNewMessage(t *testing.T) {
	body := api.NewMessage("привет").
		LinkTo(api.Reply, "mid.1").
		Attach(&api.InlineKeyboardAttachmentRequest{
			Payload: api.Keyboard{Buttons: api.ButtonRows{{
				&api.CallbackButton{Text: "ok", Payload: "yes"},
			}}},
		})

	data, err := json.Marshal(body)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"text": "привет",
		"notify": false,
		"format": "markdown",
		"link": {"type": "reply", "mid": "mid.1"},
		"attachments": [{
			"type": "inline_keyboard",
			"payload": {"buttons": [[{"type": "callback", "text": "ok", "payload": "yes"}]]}
		}]
	}`, string(data))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", api.Truncate("abc", 5))
	assert.Equal(t, "пр", api.Truncate("привет", 2))

	long := strings.Repeat("я", api.MaxTextLength+10)
	body := api.NewMessage(long)
	assert.Equal(t, api.MaxTextLength, len([]rune(*body.Text)))
}

func TestEmptyTaggedValue(t *testing.T) {
	data, err := json.Marshal(&api.RequestContactButton{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type": "request_contact", "text": ""}`, string(data))

	data, err = json.Marshal(api.Span{Type: api.Heading, From: 1, Length: 2})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type": "heading", "from": 1, "length": 2}`, string(data))
}
