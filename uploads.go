package maxbot

import (
	"context"
	"net/http"
	"net/url"

	"github.com/jfk9w/maxbot/api"
)

// GetUploadURL returns the endpoint to upload a file of the given type to.
func (c *Client) GetUploadURL(ctx context.Context, uploadType api.UploadType) (*api.UploadEndpoint, error) {
	resp := new(api.UploadEndpoint)
	query := url.Values{"type": {string(uploadType)}}
	return resp, c.Execute(ctx, http.MethodPost, "/uploads", query, nil, resp)
}
