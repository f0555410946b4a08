package maxbot

import (
	"context"
	"net/http"
	"net/url"

	"github.com/jfk9w/maxbot/api"
)

// GetSubscriptions lists webhook subscriptions.
// Long polling is only served while there are none.
func (c *Client) GetSubscriptions(ctx context.Context) (*api.SubscriptionList, error) {
	resp := new(api.SubscriptionList)
	return resp, c.Execute(ctx, http.MethodGet, "/subscriptions", nil, nil, resp)
}

func (c *Client) Subscribe(ctx context.Context, req *api.SubscriptionRequest) (*api.SimpleResult, error) {
	resp := new(api.SimpleResult)
	return resp, c.Execute(ctx, http.MethodPost, "/subscriptions", nil, req, resp)
}

func (c *Client) Unsubscribe(ctx context.Context, webhookURL string) (*api.SimpleResult, error) {
	resp := new(api.SimpleResult)
	query := url.Values{"url": {webhookURL}}
	return resp, c.Execute(ctx, http.MethodDelete, "/subscriptions", query, nil, resp)
}
