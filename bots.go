package maxbot

import (
	"context"
	"net/http"

	"github.com/jfk9w/maxbot/api"
)

// GetMe returns the bot profile.
func (c *Client) GetMe(ctx context.Context) (*api.BotInfo, error) {
	resp := new(api.BotInfo)
	return resp, c.Execute(ctx, http.MethodGet, "/me", nil, nil, resp)
}

// EditMe updates the bot profile. Only set fields are changed.
func (c *Client) EditMe(ctx context.Context, patch *api.BotPatch) (*api.BotInfo, error) {
	resp := new(api.BotInfo)
	return resp, c.Execute(ctx, http.MethodPatch, "/me", nil, patch, resp)
}
