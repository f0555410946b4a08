package maxbot

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jfk9w/maxbot/api"
	"github.com/jfk9w/maxbot/poller"
)

// FetchUpdates performs a single long polling request.
// It is never retried by the client: retries belong to the polling loop.
func (c *Client) FetchUpdates(ctx context.Context, query poller.Query) (*api.UpdateList, error) {
	values := make(url.Values)
	if query.Limit > 0 {
		values.Set("limit", strconv.Itoa(query.Limit))
	}

	if query.Timeout > 0 {
		values.Set("timeout", strconv.Itoa(int(query.Timeout/time.Second)))
	}

	if query.Marker != nil {
		values.Set("marker", strconv.FormatInt(*query.Marker, 10))
	}

	if len(query.Types) > 0 {
		values.Set("types", strings.Join(query.Types, ","))
	}

	ctx, cancel := context.WithTimeout(ctx, query.Timeout+c.options.PollSlack)
	defer cancel()

	resp := new(api.UpdateList)
	if err := c.execute(ctx, http.MethodGet, "/updates", values, nil, resp); err != nil {
		return nil, err
	}

	return resp, nil
}
