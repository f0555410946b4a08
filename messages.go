package maxbot

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pkg/errors"

	"github.com/jfk9w/maxbot/api"
)

// Target addresses an outgoing message either to a chat or to a user.
type Target struct {
	ChatID int64
	UserID int64
}

func ToChat(chatID int64) Target {
	return Target{ChatID: chatID}
}

func ToUser(userID int64) Target {
	return Target{UserID: userID}
}

func (t Target) query() (url.Values, error) {
	query := make(url.Values)
	switch {
	case t.ChatID != 0:
		query.Set("chat_id", strconv.FormatInt(t.ChatID, 10))
	case t.UserID != 0:
		query.Set("user_id", strconv.FormatInt(t.UserID, 10))
	default:
		return nil, errors.New("message target is empty")
	}

	return query, nil
}

// Sender sends messages.
type Sender interface {
	SendMessage(ctx context.Context, target Target, body *api.NewMessageBody) (*api.Message, error)
}

func (c *Client) SendMessage(ctx context.Context, target Target, body *api.NewMessageBody) (*api.Message, error) {
	query, err := target.query()
	if err != nil {
		return nil, err
	}

	resp := new(api.SendMessageResult)
	if err := c.Execute(ctx, http.MethodPost, "/messages", query, body, resp); err != nil {
		return nil, err
	}

	return &resp.Message, nil
}

func (c *Client) GetMessage(ctx context.Context, mid string) (*api.Message, error) {
	resp := new(api.Message)
	return resp, c.Execute(ctx, http.MethodGet, "/messages/"+url.PathEscape(mid), nil, nil, resp)
}

func (c *Client) EditMessage(ctx context.Context, mid string, body *api.NewMessageBody) (*api.SimpleResult, error) {
	resp := new(api.SimpleResult)
	query := url.Values{"message_id": {mid}}
	return resp, c.Execute(ctx, http.MethodPut, "/messages", query, body, resp)
}

func (c *Client) DeleteMessage(ctx context.Context, mid string) (*api.SimpleResult, error) {
	resp := new(api.SimpleResult)
	query := url.Values{"message_id": {mid}}
	return resp, c.Execute(ctx, http.MethodDelete, "/messages", query, nil, resp)
}
