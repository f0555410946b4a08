package cmd_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jfk9w/maxbot/cmd/maxbot/cmd"
	"github.com/jfk9w/maxbot/poller"
)

func execute(t *testing.T, handler http.HandlerFunc, config string, args ...string) (string, error) {
	t.Helper()
	server := httptest.NewServer(handler)
	defer server.Close()

	path := filepath.Join(t.TempDir(), "config.yml")
	content := fmt.Sprintf("token: secret\nbaseUrl: %s\nlog:\n  default:\n    level: error\n%s", server.URL, config)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	out := new(bytes.Buffer)
	root := cmd.RootCmd()
	root.SetOut(out)
	root.SetErr(io.Discard)
	root.SetArgs(append([]string{"--config", path}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestMe(t *testing.T) {
	out, err := execute(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/me", r.URL.Path)
		assert.Equal(t, "secret", r.URL.Query().Get("access_token"))
		_, _ = io.WriteString(w, `{"user_id":1,"first_name":"echo","is_bot":true,"last_activity_time":0}`)
	}, "", "me")

	require.NoError(t, err)
	var info map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, float64(1), info["user_id"])
}

func TestSend_RequiresTarget(t *testing.T) {
	_, err := execute(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s", r.URL.Path)
	}, "", "send", "hello")

	assert.Error(t, err)
}

func TestListen(t *testing.T) {
	var (
		calls   int32
		replies int32
	)

	handler := func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/updates":
			if atomic.AddInt32(&calls, 1) == 1 {
				_, _ = io.WriteString(w, `{"updates":[
					{"update_type":"message_created","timestamp":1,"message":{"sender":{"user_id":5,"first_name":"u","is_bot":false,"last_activity_time":0},"recipient":{"chat_id":10,"chat_type":"chat"},"timestamp":1,"body":{"mid":"mid.1","seq":1,"text":"ping"}}},
					{"update_type":"message_created","timestamp":1,"message":{"sender":{"user_id":5,"first_name":"u","is_bot":false,"last_activity_time":0},"recipient":{"chat_id":10,"chat_type":"chat"},"timestamp":1,"body":{"mid":"mid.1","seq":1,"text":"ping"}}},
					{"update_type":"story_posted","timestamp":2}
				],"marker":3}`)
				return
			}

			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"code":"verify.token","message":"Invalid access_token"}`)
		case "/messages":
			atomic.AddInt32(&replies, 1)
			assert.Equal(t, "10", r.URL.Query().Get("chat_id"))
			_, _ = io.WriteString(w, `{"message":{"recipient":{"chat_id":10,"chat_type":"chat"},"timestamp":2,"body":{"mid":"mid.2","seq":2,"text":"ping"}}}`)
		default:
			t.Errorf("unexpected request %s", r.URL.Path)
		}
	}

	out, err := execute(t, handler, "poll:\n  timeout: 1s\n", "listen", "--echo")
	require.Error(t, err)
	assert.True(t, poller.IsFatal(err))

	decoder := json.NewDecoder(bytes.NewReader([]byte(out)))
	var types []string
	for decoder.More() {
		var update map[string]interface{}
		require.NoError(t, decoder.Decode(&update))
		types = append(types, update["update_type"].(string))
	}

	assert.Equal(t, []string{"message_created", "story_posted"}, types)
	assert.Equal(t, int32(1), atomic.LoadInt32(&replies))
}
