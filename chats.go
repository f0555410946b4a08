package maxbot

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jfk9w/maxbot/api"
)

// GetChats returns a page of chats the bot participates in.
// Pass the marker of the previous page to get the next one.
func (c *Client) GetChats(ctx context.Context, count int, marker *int64) (*api.ChatList, error) {
	query := make(url.Values)
	if count > 0 {
		query.Set("count", strconv.Itoa(count))
	}

	if marker != nil {
		query.Set("marker", strconv.FormatInt(*marker, 10))
	}

	resp := new(api.ChatList)
	return resp, c.Execute(ctx, http.MethodGet, "/chats", query, nil, resp)
}

func (c *Client) GetChat(ctx context.Context, chatID int64) (*api.Chat, error) {
	resp := new(api.Chat)
	return resp, c.Execute(ctx, http.MethodGet, chatPath(chatID), nil, nil, resp)
}

// GetChatByLink resolves a public chat by its link or username.
func (c *Client) GetChatByLink(ctx context.Context, link string) (*api.Chat, error) {
	resp := new(api.Chat)
	return resp, c.Execute(ctx, http.MethodGet, "/chats/"+url.PathEscape(link), nil, nil, resp)
}

func (c *Client) EditChat(ctx context.Context, chatID int64, patch *api.ChatPatch) (*api.Chat, error) {
	resp := new(api.Chat)
	return resp, c.Execute(ctx, http.MethodPatch, chatPath(chatID), nil, patch, resp)
}

func (c *Client) DeleteChat(ctx context.Context, chatID int64) (*api.SimpleResult, error) {
	resp := new(api.SimpleResult)
	return resp, c.Execute(ctx, http.MethodDelete, chatPath(chatID), nil, nil, resp)
}

func chatPath(chatID int64) string {
	return "/chats/" + strconv.FormatInt(chatID, 10)
}
